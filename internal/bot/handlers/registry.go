package handlers

import (
	"github.com/edgard/wabot/internal/command"
)

// Catalog returns the factories for every compiled handler, keyed by the
// handler name manifests refer to.
func Catalog(deps HandlerDeps) command.Catalog {
	return command.Catalog{
		"ping":  NewPingHandler(),
		"help":  NewHelpHandler(),
		"echo":  NewEchoHandler(),
		"reply": NewReplyHandler(),
		"info":  NewInfoHandler(deps),
		"ask":   NewAskHandler(deps),
	}
}
