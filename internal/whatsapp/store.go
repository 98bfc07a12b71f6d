// Package whatsapp binds the bot to the whatsmeow protocol client: it persists
// device credentials, creates sessions, and translates protocol events into the
// chat package's types.
package whatsapp

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	waLog "go.mau.fi/whatsmeow/util/log"

	"github.com/edgard/wabot/internal/database"
)

// StoreFile is the credential database file inside the session directory.
const StoreFile = "store.db"

// sqlDialect selects whatsmeow's SQL flavor; the connection itself comes from modernc.
const sqlDialect = "sqlite3"

// CredentialStore loads and saves the paired device's credentials.
type CredentialStore struct {
	db        *sqlx.DB
	container *sqlstore.Container
	log       *slog.Logger
}

// OpenCredentialStore opens (and upgrades) the credential database in dir.
func OpenCredentialStore(ctx context.Context, dir string, logger *slog.Logger, clientLog waLog.Logger) (*CredentialStore, error) {
	path := filepath.Join(dir, StoreFile)
	db, err := database.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	container := sqlstore.NewWithDB(db.DB, sqlDialect, clientLog.Sub("Database"))
	if err := container.Upgrade(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to upgrade credential store: %w", err)
	}

	log := logger.With("component", "credential_store")
	log.Info("Credential store opened", "path", path)
	return &CredentialStore{db: db, container: container, log: log}, nil
}

// Load returns the persisted device, or a fresh unpaired one when none exists.
func (s *CredentialStore) Load(ctx context.Context) (*store.Device, error) {
	device, err := s.container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load device credentials: %w", err)
	}
	if device.ID == nil {
		s.log.Info("No paired device found, pairing will be required")
	} else {
		s.log.Info("Loaded device credentials", "jid", device.ID.String())
	}
	return device, nil
}

// Save persists the device's current credentials.
func (s *CredentialStore) Save(ctx context.Context, device *store.Device) error {
	if device == nil || device.ID == nil {
		return nil
	}
	if err := device.Save(ctx); err != nil {
		return fmt.Errorf("failed to save device credentials: %w", err)
	}
	s.log.Debug("Device credentials saved", "jid", device.ID.String())
	return nil
}

func (s *CredentialStore) Close() error {
	return s.db.Close()
}
