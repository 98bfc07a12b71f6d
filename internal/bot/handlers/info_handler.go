package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/edgard/wabot/internal/command"
)

const recentInvocationsShown = 5

// NewInfoHandler reports uptime and the most recent command invocations.
func NewInfoHandler(deps HandlerDeps) command.Factory {
	return func(command.Manifest) (command.HandlerFunc, error) {
		return infoHandler{deps}.Handle, nil
	}
}

type infoHandler struct {
	deps HandlerDeps
}

func (h infoHandler) Handle(ctx context.Context, inv *command.Invocation) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s*\n", inv.Config.Name)
	if !h.deps.StartedAt.IsZero() {
		fmt.Fprintf(&sb, "Uptime: %s\n", time.Since(h.deps.StartedAt).Round(time.Second))
	}
	if inv.Commands != nil {
		fmt.Fprintf(&sb, "Commands: %d\n", len(inv.Commands.All()))
	}

	if h.deps.Store != nil {
		recent, err := h.deps.Store.RecentInvocations(ctx, recentInvocationsShown)
		if err != nil {
			return fmt.Errorf("failed to load recent invocations: %w", err)
		}
		if len(recent) > 0 {
			sb.WriteString("\nRecent:\n")
			for _, r := range recent {
				fmt.Fprintf(&sb, "%s %s%s (%s, %dms)\n",
					r.CreatedAt.Local().Format("01-02 15:04"), inv.Config.Prefix, r.Command, r.Status, r.DurationMS)
			}
		}
	}

	return inv.Reply(ctx, strings.TrimRight(sb.String(), "\n"))
}
