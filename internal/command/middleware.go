package command

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// ErrPanic wraps a panic recovered from a handler.
var ErrPanic = errors.New("command panicked")

// Middleware wraps a handler (logging, permission checks, recovery).
type Middleware func(HandlerFunc) HandlerFunc

// Chain wraps h with mws. The first middleware in the list is the outermost.
func Chain(h HandlerFunc, mws ...Middleware) HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// Recover turns a handler panic into an error wrapping ErrPanic.
func Recover() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, inv *Invocation) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: %v\n%s", ErrPanic, r, debug.Stack())
				}
			}()
			return next(ctx, inv)
		}
	}
}

// OwnerOnly lets the invocation through only when the sender is the configured owner.
// Everyone else gets the not-authorized text (if configured) and the handler is skipped.
func OwnerOnly() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, inv *Invocation) error {
			owner := inv.Config.Owner
			if owner != "" && UserOf(inv.Message.Sender) == owner {
				return next(ctx, inv)
			}
			if text := inv.Config.Messages.NotAuthorized; text != "" {
				return inv.Reply(ctx, text)
			}
			return nil
		}
	}
}

// UserOf returns the user part of a JID string: "5511999@s.whatsapp.net" and
// "5511999:12@s.whatsapp.net" both yield "5511999".
func UserOf(jid string) string {
	user, _, _ := strings.Cut(jid, "@")
	user, _, _ = strings.Cut(user, ":")
	return user
}
