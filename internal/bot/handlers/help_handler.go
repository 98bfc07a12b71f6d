package handlers

import (
	"context"
	"strings"

	"github.com/edgard/wabot/internal/command"
)

// NewHelpHandler lists the loaded commands. Owner-only commands are listed
// only for the owner.
func NewHelpHandler() command.Factory {
	return func(command.Manifest) (command.HandlerFunc, error) {
		return handleHelp, nil
	}
}

func handleHelp(ctx context.Context, inv *command.Invocation) error {
	isOwner := inv.Config.Owner != "" && command.UserOf(inv.Message.Sender) == inv.Config.Owner

	var sb strings.Builder
	sb.WriteString("*" + inv.Config.Name + "* commands:\n")

	listed := 0
	if inv.Commands != nil {
		for _, c := range inv.Commands.All() {
			if c.OwnerOnly && !isOwner {
				continue
			}
			sb.WriteString("\n" + inv.Config.Prefix + c.Name)
			if c.Description != "" {
				sb.WriteString(" - " + c.Description)
			}
			listed++
		}
	}
	if listed == 0 {
		sb.WriteString("\nNo commands available.")
	}

	return inv.Reply(ctx, sb.String())
}
