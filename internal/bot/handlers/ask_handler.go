package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/edgard/wabot/internal/command"
)

// NewAskHandler forwards the arguments to Gemini and replies with the answer.
func NewAskHandler(deps HandlerDeps) command.Factory {
	return func(command.Manifest) (command.HandlerFunc, error) {
		return askHandler{deps}.Handle, nil
	}
}

type askHandler struct {
	deps HandlerDeps
}

func (h askHandler) Handle(ctx context.Context, inv *command.Invocation) error {
	if h.deps.GeminiClient == nil {
		if text := inv.Config.Messages.AIUnavailable; text != "" {
			return inv.Reply(ctx, text)
		}
		return nil
	}
	if len(inv.Args) == 0 {
		return replyUsage(ctx, inv, "<question>")
	}

	answer, err := h.deps.GeminiClient.Ask(ctx, strings.Join(inv.Args, " "), inv.Message.PushName)
	if err != nil {
		return fmt.Errorf("failed to get answer: %w", err)
	}
	return inv.Reply(ctx, answer)
}
