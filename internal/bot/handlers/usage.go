package handlers

import (
	"context"
	"strings"

	"github.com/edgard/wabot/internal/command"
)

// replyUsage sends the configured usage text. "{usage}" expands to the full
// command syntax, e.g. "!echo <text>".
func replyUsage(ctx context.Context, inv *command.Invocation, syntax string) error {
	tmpl := inv.Config.Messages.Usage
	if tmpl == "" {
		return nil
	}
	usage := inv.Config.Prefix + inv.Command.Name + " " + syntax
	return inv.Reply(ctx, strings.ReplaceAll(tmpl, "{usage}", usage))
}
