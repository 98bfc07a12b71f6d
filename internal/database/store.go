package database

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations.
// Methods should accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// SaveInvocation inserts a command invocation record and sets its ID.
	SaveInvocation(ctx context.Context, inv *Invocation) error

	// RecentInvocations returns the newest records first.
	RecentInvocations(ctx context.Context, limit int) ([]Invocation, error)

	// PruneInvocations deletes records created before the cutoff and returns how many were removed.
	PruneInvocations(ctx context.Context, before time.Time) (int64, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) SaveInvocation(ctx context.Context, inv *Invocation) error {
	if inv == nil {
		return errors.New("cannot save nil invocation")
	}
	if inv.Command == "" {
		return errors.New("invocation must have a command name")
	}
	if inv.Status != StatusOK && inv.Status != StatusError {
		return fmt.Errorf("invalid invocation status %q", inv.Status)
	}
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}
	inv.CreatedAt = inv.CreatedAt.UTC()

	res, err := s.db.NamedExecContext(ctx, `
		INSERT INTO invocations (created_at, command, chat_jid, sender_jid, message_id, args, status, error, duration_ms)
		VALUES (:created_at, :command, :chat_jid, :sender_jid, :message_id, :args, :status, :error, :duration_ms)`,
		inv)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to insert invocation", "command", inv.Command, "error", err)
		return fmt.Errorf("failed to insert invocation: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read invocation id: %w", err)
	}
	inv.ID = id
	return nil
}

func (s *sqlxStore) RecentInvocations(ctx context.Context, limit int) ([]Invocation, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	var out []Invocation
	err := s.db.SelectContext(ctx, &out, `
		SELECT id, created_at, command, chat_jid, sender_jid, message_id, args, status, error, duration_ms
		FROM invocations ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query invocations: %w", err)
	}
	return out, nil
}

func (s *sqlxStore) PruneInvocations(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM invocations WHERE created_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune invocations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read pruned row count: %w", err)
	}
	s.logger.InfoContext(ctx, "Pruned invocation records", "deleted", n, "before", before)
	return n, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite
	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}
