package bot

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/edgard/wabot/internal/chat"
	"github.com/edgard/wabot/internal/command"
	"github.com/edgard/wabot/internal/config"
	"github.com/edgard/wabot/internal/database"
	"github.com/edgard/wabot/internal/logger"
)

// followUpTimeout bounds the error reply and the invocation record written
// after a handler returns, independently of the handler's own deadline.
const followUpTimeout = 10 * time.Second

// CommandSource looks up and lists loaded commands.
type CommandSource interface {
	Get(name string) (command.Command, bool)
	All() []command.Command
}

// InvocationRecorder persists the outcome of dispatched commands.
type InvocationRecorder interface {
	SaveInvocation(ctx context.Context, inv *database.Invocation) error
}

// RouterDeps holds the router's collaborators. Recorder may be nil.
type RouterDeps struct {
	Logger   *slog.Logger
	Config   config.BotConfig
	Commands CommandSource
	Recorder InvocationRecorder
}

// Router turns inbound messages into command invocations.
type Router struct {
	log      *slog.Logger
	cfg      config.BotConfig
	commands CommandSource
	recorder InvocationRecorder
	execute  command.Middleware

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewRouter(deps RouterDeps) *Router {
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log = log.With("component", "router")

	return &Router{
		log:      log,
		cfg:      deps.Config,
		commands: deps.Commands,
		recorder: deps.Recorder,
		execute: func(next command.HandlerFunc) command.HandlerFunc {
			return command.Chain(next, logger.CommandMiddleware(log), command.Recover())
		},
		limiters: make(map[string]*rate.Limiter),
	}
}

// ParseCommand splits text into a lowercased command name and its arguments.
// It reports false when text does not start with prefix or names no command.
func ParseCommand(prefix, text string) (name string, args []string, ok bool) {
	if prefix == "" || !strings.HasPrefix(text, prefix) {
		return "", nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(text, prefix))
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

// HandleUpsert routes the first message of an upsert. Handler failures are
// logged and reported to the chat; they never propagate to the caller.
func (r *Router) HandleUpsert(ctx context.Context, client chat.Sender, up chat.Upsert) {
	if len(up.Messages) == 0 {
		return
	}
	msg := up.Messages[0]
	if msg.Content == nil || msg.FromMe {
		return
	}

	text, ok := chat.Text(msg.Content)
	if !ok {
		return
	}
	name, args, ok := ParseCommand(r.cfg.Prefix, text)
	if !ok {
		return
	}

	cmd, ok := r.commands.Get(name)
	if !ok {
		r.log.DebugContext(ctx, "Unknown command", "command", name, "chat", msg.Chat)
		return
	}
	if !r.allow(msg.Sender) {
		r.log.DebugContext(ctx, "Rate limit exceeded, dropping command", "command", name, "sender", msg.Sender)
		return
	}

	r.dispatch(ctx, client, msg, cmd, args)
}

func (r *Router) dispatch(ctx context.Context, client chat.Sender, msg chat.Message, cmd command.Command, args []string) {
	inv := &command.Invocation{
		Command:  cmd,
		Client:   client,
		Message:  msg,
		Args:     args,
		Config:   r.cfg,
		Commands: r.commands,
	}

	execCtx, cancel := r.commandContext(ctx)
	startTime := time.Now()
	err := r.execute(cmd.Execute)(execCtx, inv)
	duration := time.Since(startTime)
	cancel()

	followCtx, cancelFollow := context.WithTimeout(context.WithoutCancel(ctx), followUpTimeout)
	defer cancelFollow()

	if err != nil && r.cfg.Messages.CommandError != "" {
		if replyErr := client.Reply(followCtx, msg, r.cfg.Messages.CommandError); replyErr != nil {
			r.log.WarnContext(ctx, "Failed to report command error to chat", "command", cmd.Name, "error", replyErr)
		}
	}
	r.record(followCtx, inv, err, duration)
}

func (r *Router) commandContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.cfg.CommandTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.cfg.CommandTimeout)
}

func (r *Router) record(ctx context.Context, inv *command.Invocation, execErr error, duration time.Duration) {
	if r.recorder == nil {
		return
	}

	rec := &database.Invocation{
		Command:    inv.Command.Name,
		ChatJID:    inv.Message.Chat,
		SenderJID:  inv.Message.Sender,
		MessageID:  inv.Message.ID,
		Args:       logger.Truncate(strings.Join(inv.Args, " "), 512),
		Status:     database.StatusOK,
		DurationMS: duration.Milliseconds(),
	}
	if execErr != nil {
		rec.Status = database.StatusError
		rec.Error = logger.Truncate(execErr.Error(), 1024)
	}

	if err := r.recorder.SaveInvocation(ctx, rec); err != nil {
		r.log.WarnContext(ctx, "Failed to record command invocation", "command", rec.Command, "error", err)
	}
}

// allow applies the per-sender token bucket. A zero rate disables limiting.
func (r *Router) allow(sender string) bool {
	if r.cfg.RateLimit <= 0 {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	lim, ok := r.limiters[sender]
	if !ok {
		burst := r.cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(r.cfg.RateLimit), burst)
		r.limiters[sender] = lim
	}
	return lim.Allow()
}
