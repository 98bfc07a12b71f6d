// Package command holds the command plugin contract, the middleware that wraps
// handlers, and the registry that loads command manifests from disk.
package command

import (
	"context"

	"github.com/edgard/wabot/internal/chat"
	"github.com/edgard/wabot/internal/config"
)

// HandlerFunc executes one command invocation.
type HandlerFunc func(ctx context.Context, inv *Invocation) error

// Command is a registered command. It is immutable once loaded.
type Command struct {
	Name        string
	Description string
	// Handler names the catalog entry the command was built from.
	Handler   string
	OwnerOnly bool
	// Source is the manifest file the command was loaded from.
	Source  string
	Execute HandlerFunc
}

// Lister exposes the loaded commands to handlers that describe them (help).
type Lister interface {
	All() []Command
}

// Invocation carries everything a handler receives: the client to answer with,
// the triggering message, the parsed arguments and the bot settings.
type Invocation struct {
	Command  Command
	Client   chat.Sender
	Message  chat.Message
	Args     []string
	Config   config.BotConfig
	Commands Lister
}

// Reply answers the triggering message.
func (inv *Invocation) Reply(ctx context.Context, text string) error {
	return inv.Client.Reply(ctx, inv.Message, text)
}
