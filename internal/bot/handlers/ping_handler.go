package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/edgard/wabot/internal/command"
)

// NewPingHandler answers "pong" with the time elapsed since the message was sent.
func NewPingHandler() command.Factory {
	return func(command.Manifest) (command.HandlerFunc, error) {
		return func(ctx context.Context, inv *command.Invocation) error {
			text := "pong"
			if ts := inv.Message.Timestamp; !ts.IsZero() {
				text = fmt.Sprintf("pong (%s)", time.Since(ts).Round(time.Millisecond))
			}
			return inv.Reply(ctx, text)
		}, nil
	}
}
