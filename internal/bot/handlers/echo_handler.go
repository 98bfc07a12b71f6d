package handlers

import (
	"context"
	"strings"

	"github.com/edgard/wabot/internal/command"
)

// NewEchoHandler repeats the arguments back to the chat.
func NewEchoHandler() command.Factory {
	return func(command.Manifest) (command.HandlerFunc, error) {
		return func(ctx context.Context, inv *command.Invocation) error {
			if len(inv.Args) == 0 {
				return replyUsage(ctx, inv, "<text>")
			}
			return inv.Reply(ctx, strings.Join(inv.Args, " "))
		}, nil
	}
}
