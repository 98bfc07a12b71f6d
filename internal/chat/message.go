// Package chat defines the transport-neutral message and connection types the bot
// core works with. The WhatsApp adapter translates protocol events into these types.
package chat

import (
	"context"
	"time"
)

// Content is the recognized payload shape of an inbound message.
// A nil Content means the message carried no content at all.
type Content interface {
	isContent()
}

// Conversation is a plain text message.
type Conversation struct {
	Text string
}

// ExtendedText is a text message with extra metadata (quotes, link previews, mentions).
type ExtendedText struct {
	Text string
}

// ImageCaption is the caption attached to an image message.
type ImageCaption struct {
	Caption string
}

// Unsupported is content the bot does not read text from (stickers, audio, reactions, ...).
type Unsupported struct {
	Kind string
}

func (Conversation) isContent() {}
func (ExtendedText) isContent() {}
func (ImageCaption) isContent() {}
func (Unsupported) isContent()  {}

// Text returns the textual body of c and whether one was present.
// Empty bodies count as absent.
func Text(c Content) (string, bool) {
	var text string
	switch v := c.(type) {
	case Conversation:
		text = v.Text
	case ExtendedText:
		text = v.Text
	case ImageCaption:
		text = v.Caption
	default:
		return "", false
	}
	return text, text != ""
}

// Message is a single inbound message.
type Message struct {
	ID        string
	Chat      string
	Sender    string
	PushName  string
	FromMe    bool
	IsGroup   bool
	Timestamp time.Time
	Content   Content

	// Raw is the protocol event the message was decoded from. Handlers that need
	// protocol-level detail may type-assert it; the core never reads it.
	Raw any
}

// Text is shorthand for Text(m.Content).
func (m Message) Text() (string, bool) {
	return Text(m.Content)
}

// Sender is the outbound surface handlers use to answer.
type Sender interface {
	// SendText sends a plain text message to the chat identified by chatID.
	SendText(ctx context.Context, chatID, text string) error
	// Reply answers msg in its chat, quoting it.
	Reply(ctx context.Context, msg Message, text string) error
}
