package whatsapp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store"
	waLog "go.mau.fi/whatsmeow/util/log"

	"github.com/edgard/wabot/internal/chat"
	"github.com/edgard/wabot/internal/config"
)

const versionFetchTimeout = 15 * time.Second

// Factory creates a fresh session for every connection attempt.
type Factory struct {
	creds     *CredentialStore
	cfg       config.SessionConfig
	botName   string
	log       *slog.Logger
	clientLog waLog.Logger
	qrOut     io.Writer
}

// NewFactory returns a session factory backed by creds. Pairing QR codes are
// written to qrOut.
func NewFactory(creds *CredentialStore, cfg config.SessionConfig, botName string, logger *slog.Logger, clientLog waLog.Logger, qrOut io.Writer) *Factory {
	return &Factory{
		creds:     creds,
		cfg:       cfg,
		botName:   botName,
		log:       logger.With("component", "whatsapp"),
		clientLog: clientLog,
		qrOut:     qrOut,
	}
}

// NewSession loads the persisted credentials and builds an unconnected client
// with its event handler already registered.
func (f *Factory) NewSession(ctx context.Context) (chat.Session, error) {
	if f.cfg.FetchLatestVersion {
		f.useLatestVersion(ctx)
	}
	store.SetOSInfo(f.botName, [3]uint32{1, 0, 0})

	device, err := f.creds.Load(ctx)
	if err != nil {
		return nil, err
	}

	client := whatsmeow.NewClient(device, f.clientLog.Sub("Client"))
	// Reconnection is owned by the supervisor.
	client.EnableAutoReconnect = false

	return newSession(client, device, f.creds, f.cfg.EventBuffer, f.log, f.qrOut), nil
}

func (f *Factory) useLatestVersion(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, versionFetchTimeout)
	defer cancel()

	version, err := whatsmeow.GetLatestVersion(ctx, nil)
	if err != nil {
		f.log.Warn("Failed to fetch latest WhatsApp web version, using built-in", "error", err)
		return
	}
	store.SetWAVersion(*version)
	f.log.Info("Using WhatsApp web version", "version", fmt.Sprint(*version))
}
