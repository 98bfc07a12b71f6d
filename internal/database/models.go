package database

import "time"

// Invocation status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Invocation records one dispatched command and its outcome.
type Invocation struct {
	ID         int64     `db:"id"`
	CreatedAt  time.Time `db:"created_at"`
	Command    string    `db:"command"`
	ChatJID    string    `db:"chat_jid"`
	SenderJID  string    `db:"sender_jid"`
	MessageID  string    `db:"message_id"`
	Args       string    `db:"args"`
	Status     string    `db:"status"`
	Error      string    `db:"error"`
	DurationMS int64     `db:"duration_ms"`
}
