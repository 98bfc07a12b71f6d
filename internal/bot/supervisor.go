package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/avast/retry-go/v4"

	"github.com/edgard/wabot/internal/chat"
	"github.com/edgard/wabot/internal/config"
)

var (
	// ErrLoggedOut is returned when the server invalidated the session. It is terminal.
	ErrLoggedOut = errors.New("session logged out")
	// ErrAttemptsExhausted wraps the last startup error once the reconnect budget is spent.
	ErrAttemptsExhausted = errors.New("connection attempts exhausted")

	errClosedBeforeOpen = errors.New("connection closed before it was established")
)

// SessionFactory builds a new, unconnected session for each startup.
type SessionFactory interface {
	NewSession(ctx context.Context) (chat.Session, error)
}

// UpsertHandler consumes inbound messages. The router implements it.
type UpsertHandler interface {
	HandleUpsert(ctx context.Context, client chat.Sender, up chat.Upsert)
}

// Supervisor owns the session lifecycle: it starts a session, serves its events
// until the connection closes, tears it down, and starts a new one unless the
// session was logged out.
type Supervisor struct {
	factory SessionFactory
	handler UpsertHandler
	cfg     config.ReconnectConfig
	botName string
	log     *slog.Logger

	state      atomic.Int32
	reconnects atomic.Int64
}

func NewSupervisor(factory SessionFactory, handler UpsertHandler, cfg config.ReconnectConfig, botName string, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Supervisor{
		factory: factory,
		handler: handler,
		cfg:     cfg,
		botName: botName,
		log:     logger.With("component", "supervisor"),
	}
	s.state.Store(int32(chat.StateClose))
	return s
}

// State returns the current connection state.
func (s *Supervisor) State() chat.ConnectionState {
	return chat.ConnectionState(s.state.Load())
}

// Reconnects returns how many times an established connection was lost and restarted.
func (s *Supervisor) Reconnects() int64 {
	return s.reconnects.Load()
}

// Run blocks until ctx is canceled (nil), the session is logged out
// (ErrLoggedOut) or startup keeps failing past the attempt budget
// (ErrAttemptsExhausted).
func (s *Supervisor) Run(ctx context.Context) error {
	defer s.setState(chat.StateClose)

	for {
		err := retry.Do(
			func() error { return s.runSession(ctx) },
			retry.Context(ctx),
			retry.Attempts(s.cfg.MaxAttempts),
			retry.Delay(s.cfg.InitialDelay),
			retry.MaxDelay(s.cfg.MaxDelay),
			retry.DelayType(retry.BackOffDelay),
			retry.LastErrorOnly(true),
			retry.OnRetry(func(n uint, err error) {
				s.log.Warn("Session startup failed, retrying", "attempt", n+1, "max_attempts", s.cfg.MaxAttempts, "error", err)
			}),
		)

		switch {
		case ctx.Err() != nil:
			s.log.Info("Supervisor stopped")
			return nil
		case errors.Is(err, ErrLoggedOut):
			s.log.Error("Session was logged out, not reconnecting. Remove the session directory and pair again.")
			return ErrLoggedOut
		case err != nil:
			return fmt.Errorf("%w: %w", ErrAttemptsExhausted, err)
		}

		s.reconnects.Add(1)
	}
}

// runSession performs one startup and serves the session until its connection
// closes. A nil return means an established connection was lost and a fresh
// startup (with a fresh attempt budget) should follow.
func (s *Supervisor) runSession(ctx context.Context) error {
	s.setState(chat.StateConnecting)

	sess, err := s.factory.NewSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	// Subscriptions of this session must be gone before the next one exists.
	defer sess.Close()

	if err := sess.Connect(ctx); err != nil {
		return err
	}

	opened := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt := <-sess.Events():
			switch e := evt.(type) {
			case chat.Upsert:
				s.handler.HandleUpsert(ctx, sess, e)
			case chat.ConnectionUpdate:
				if done, err := s.onConnectionUpdate(e, &opened); done {
					return err
				}
			}
		}
	}
}

func (s *Supervisor) onConnectionUpdate(update chat.ConnectionUpdate, opened *bool) (bool, error) {
	s.setState(update.State)

	switch update.State {
	case chat.StateOpen:
		*opened = true
		s.log.Info("Connection ready", "bot", s.botName)
		return false, nil
	case chat.StateClose:
		if update.Reason.IsLoggedOut() {
			return true, retry.Unrecoverable(ErrLoggedOut)
		}
		s.log.Warn("Connection closed, reconnecting", "reason", update.Reason.String(), "status_code", update.Reason.Code())
		if *opened {
			return true, nil
		}
		return true, fmt.Errorf("%w: %s", errClosedBeforeOpen, update.Reason)
	default:
		return false, nil
	}
}

func (s *Supervisor) setState(state chat.ConnectionState) {
	s.state.Store(int32(state))
}
