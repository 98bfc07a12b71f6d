// Package main contains the entrypoint for the WhatsApp bot application.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edgard/wabot/internal/bot"
	"github.com/edgard/wabot/internal/bot/handlers"
	"github.com/edgard/wabot/internal/bot/tasks"
	"github.com/edgard/wabot/internal/command"
	"github.com/edgard/wabot/internal/config"
	"github.com/edgard/wabot/internal/database"
	"github.com/edgard/wabot/internal/gemini"
	"github.com/edgard/wabot/internal/httpapi"
	"github.com/edgard/wabot/internal/logger"
	"github.com/edgard/wabot/internal/whatsapp"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires config, logger, storage, commands and the WhatsApp session, then
// blocks until shutdown. It returns the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	var gemClient gemini.Client
	if cfg.Gemini.Enabled() {
		gemClient, err = gemini.NewClient(ctx, cfg.Gemini, cfg.Bot.Name, log)
		if err != nil {
			log.Error("Failed to initialize Gemini client", "error", err)
			return 1
		}
	} else {
		log.Info("Gemini API key not set, ask command will be unavailable")
	}

	hDeps := handlers.HandlerDeps{
		Store:        store,
		GeminiClient: gemClient,
		StartedAt:    time.Now(),
	}
	registry, err := command.Load(cfg.Commands.Dir, handlers.Catalog(hDeps), log)
	if err != nil {
		log.Error("Failed to load commands", "dir", cfg.Commands.Dir, "error", err)
		return 1
	}

	clientLog := logger.NewClientLogger(log, "whatsmeow", cfg.Logger.ClientLevel)
	creds, err := whatsapp.OpenCredentialStore(ctx, cfg.Session.Dir, log, clientLog)
	if err != nil {
		log.Error("Failed to open session store", "dir", cfg.Session.Dir, "error", err)
		return 1
	}
	defer creds.Close()

	router := bot.NewRouter(bot.RouterDeps{
		Logger:   log,
		Config:   cfg.Bot,
		Commands: registry,
		Recorder: store,
	})
	factory := whatsapp.NewFactory(creds, cfg.Session, cfg.Bot.Name, log, clientLog, os.Stdout)
	supervisor := bot.NewSupervisor(factory, router, cfg.Reconnect, cfg.Bot.Name, log)

	sched, err := bot.NewScheduler(log, cfg.Scheduler, tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	}))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	var status bot.Runner
	if cfg.HTTP.Addr != "" {
		status = httpapi.New(cfg.HTTP.Addr, cfg.Bot.Name, supervisor, registry, log)
	}

	app := bot.NewBot(log, supervisor, sched, status)

	log.Info("Starting bot...", "name", cfg.Bot.Name, "prefix", cfg.Bot.Prefix, "commands", registry.Len())
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		if errors.Is(runErr, bot.ErrLoggedOut) {
			log.Error("Session logged out; delete the session directory and restart to pair again", "dir", cfg.Session.Dir)
		} else {
			log.Error("Bot stopped due to error", "error", runErr)
		}
		return 1
	}

	log.Info("Bot stopped gracefully.")
	return 0
}
