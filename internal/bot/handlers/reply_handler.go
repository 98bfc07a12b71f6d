package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/edgard/wabot/internal/command"
)

// NewReplyHandler answers with the manifest's fixed text. "{name}" in the text
// is replaced with the sender's push name.
func NewReplyHandler() command.Factory {
	return func(m command.Manifest) (command.HandlerFunc, error) {
		if strings.TrimSpace(m.Text) == "" {
			return nil, errors.New("reply handler requires a text")
		}
		text := m.Text
		return func(ctx context.Context, inv *command.Invocation) error {
			return inv.Reply(ctx, strings.ReplaceAll(text, "{name}", inv.Message.PushName))
		}, nil
	}
}
