package whatsapp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"

	"github.com/edgard/wabot/internal/chat"
)

const credentialSaveTimeout = 10 * time.Second

// Session wraps one whatsmeow client for the lifetime of a single connection.
type Session struct {
	client    *whatsmeow.Client
	device    *store.Device
	creds     *CredentialStore
	log       *slog.Logger
	qrOut     io.Writer
	events    chan chat.Event
	done      chan struct{}
	handlerID uint32
	closeOnce sync.Once
}

var _ chat.Session = (*Session)(nil)

func newSession(client *whatsmeow.Client, device *store.Device, creds *CredentialStore, buffer int, log *slog.Logger, qrOut io.Writer) *Session {
	s := &Session{
		client: client,
		device: device,
		creds:  creds,
		log:    log,
		qrOut:  qrOut,
		events: make(chan chat.Event, buffer),
		done:   make(chan struct{}),
	}
	s.handlerID = client.AddEventHandler(s.handleEvent)
	return s
}

// Events returns the session's ordered event stream.
func (s *Session) Events() <-chan chat.Event {
	return s.events
}

// Connect opens the connection. Unpaired devices get a QR code rendered to the
// configured writer for every code the server issues.
func (s *Session) Connect(ctx context.Context) error {
	if s.client.Store.ID == nil {
		qrChan, err := s.client.GetQRChannel(ctx)
		if err != nil {
			return fmt.Errorf("failed to open pairing channel: %w", err)
		}
		go s.renderPairing(qrChan)
	}

	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	return nil
}

// Close unsubscribes from the client and disconnects it.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		// done first: a handler blocked on a full queue must return before
		// RemoveEventHandler can take the client's handler lock.
		close(s.done)
		s.client.RemoveEventHandler(s.handlerID)
		s.client.Disconnect()
		s.log.Debug("Session closed")
	})
}

func (s *Session) SendText(ctx context.Context, chatID, text string) error {
	to, err := types.ParseJID(chatID)
	if err != nil {
		return fmt.Errorf("invalid chat jid %q: %w", chatID, err)
	}
	if _, err := s.client.SendMessage(ctx, to, &waE2E.Message{Conversation: proto.String(text)}); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (s *Session) Reply(ctx context.Context, msg chat.Message, text string) error {
	to, err := types.ParseJID(msg.Chat)
	if err != nil {
		return fmt.Errorf("invalid chat jid %q: %w", msg.Chat, err)
	}
	if _, err := s.client.SendMessage(ctx, to, buildReply(msg, text)); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

// buildReply creates a text message quoting msg.
func buildReply(msg chat.Message, text string) *waE2E.Message {
	var quoted *waE2E.Message
	if raw, ok := msg.Raw.(*events.Message); ok && raw.Message != nil {
		quoted = raw.Message
	} else if body, ok := msg.Text(); ok {
		quoted = &waE2E.Message{Conversation: proto.String(body)}
	}

	return &waE2E.Message{
		ExtendedTextMessage: &waE2E.ExtendedTextMessage{
			Text: proto.String(text),
			ContextInfo: &waE2E.ContextInfo{
				StanzaID:      proto.String(msg.ID),
				Participant:   proto.String(msg.Sender),
				QuotedMessage: quoted,
			},
		},
	}
}

func (s *Session) handleEvent(evt any) {
	switch e := evt.(type) {
	case *events.PairSuccess:
		s.log.Info("Device paired", "jid", e.ID.String(), "platform", e.Platform)
		s.persistCredentials()
	case *events.PushNameSetting:
		s.persistCredentials()
	case *events.KeepAliveTimeout:
		s.log.Warn("Keepalive timed out", "error_count", e.ErrorCount, "last_success", e.LastSuccess)
	case *events.StreamError:
		s.log.Warn("Stream error", "code", e.Code)
	}

	if out, ok := translateEvent(evt); ok {
		s.emit(out)
	}
}

// persistCredentials is the credential-update callback.
func (s *Session) persistCredentials() {
	ctx, cancel := context.WithTimeout(context.Background(), credentialSaveTimeout)
	defer cancel()
	if err := s.creds.Save(ctx, s.device); err != nil {
		s.log.Error("Failed to persist credentials", "error", err)
	}
}

func (s *Session) emit(evt chat.Event) {
	select {
	case s.events <- evt:
	case <-s.done:
	}
}

func (s *Session) renderPairing(qrChan <-chan whatsmeow.QRChannelItem) {
	for item := range qrChan {
		switch item.Event {
		case whatsmeow.QRChannelEventCode:
			s.log.Info("Scan the QR code with WhatsApp to link this device", "expires_in", item.Timeout)
			qrterminal.GenerateHalfBlock(item.Code, qrterminal.L, s.qrOut)
		case whatsmeow.QRChannelSuccess.Event:
			s.log.Info("Pairing succeeded")
		default:
			// Timeouts and pairing errors leave the client disconnected without a
			// Disconnected event, so the supervisor is told explicitly.
			s.log.Warn("Pairing ended without success", "event", item.Event, "error", item.Error)
			s.emit(closed(chat.ReasonConnectionClosed))
		}
	}
}
