package chat

import (
	"context"
	"fmt"
	"strconv"
)

// Event is anything a session delivers on its event stream.
type Event interface {
	isEvent()
}

// Upsert is a batch of new or updated inbound messages.
type Upsert struct {
	Messages []Message
}

// ConnectionState is the observed state of the underlying connection.
type ConnectionState int

const (
	StateConnecting ConnectionState = iota
	StateOpen
	StateClose
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClose:
		return "close"
	default:
		return "unknown"
	}
}

// ConnectionUpdate reports a connection state change. Reason is only
// meaningful when State is StateClose.
type ConnectionUpdate struct {
	State  ConnectionState
	Reason DisconnectReason
}

func (Upsert) isEvent()           {}
func (ConnectionUpdate) isEvent() {}

// DisconnectReason is the status code attached to a closed connection.
// Values follow the codes WhatsApp web clients commonly report.
type DisconnectReason int

const (
	ReasonUnknown            DisconnectReason = 0
	ReasonLoggedOut          DisconnectReason = 401
	ReasonForbidden          DisconnectReason = 403
	ReasonClientOutdated     DisconnectReason = 405
	ReasonConnectionLost     DisconnectReason = 408
	ReasonConnectionClosed   DisconnectReason = 428
	ReasonConnectionReplaced DisconnectReason = 440
	ReasonBadSession         DisconnectReason = 500
	ReasonUnavailable        DisconnectReason = 503
	ReasonRestartRequired    DisconnectReason = 515
)

var reasonNames = map[DisconnectReason]string{
	ReasonUnknown:            "unknown",
	ReasonLoggedOut:          "logged out",
	ReasonForbidden:          "forbidden",
	ReasonClientOutdated:     "client outdated",
	ReasonConnectionLost:     "connection lost",
	ReasonConnectionClosed:   "connection closed",
	ReasonConnectionReplaced: "connection replaced",
	ReasonBadSession:         "bad session",
	ReasonUnavailable:        "service unavailable",
	ReasonRestartRequired:    "restart required",
}

// IsLoggedOut reports whether the session was invalidated and must not be resumed.
func (r DisconnectReason) IsLoggedOut() bool {
	return r == ReasonLoggedOut
}

// Code returns the numeric status code.
func (r DisconnectReason) Code() int {
	return int(r)
}

func (r DisconnectReason) String() string {
	if name, ok := reasonNames[r]; ok {
		return fmt.Sprintf("%s (%d)", name, int(r))
	}
	return strconv.Itoa(int(r))
}

// Session is one live connection to the messaging network. Events are delivered
// in order on the channel returned by Events until Close is called.
type Session interface {
	Sender
	Connect(ctx context.Context) error
	Events() <-chan Event
	// Close tears down event subscriptions and disconnects. It is safe to call more than once.
	Close()
}
