package whatsapp

import (
	"time"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types/events"

	"github.com/edgard/wabot/internal/chat"
)

// DecodeMessage converts an inbound message event into a chat.Message.
func DecodeMessage(evt *events.Message) chat.Message {
	info := evt.Info
	return chat.Message{
		ID:        string(info.ID),
		Chat:      info.Chat.String(),
		Sender:    info.Sender.ToNonAD().String(),
		PushName:  info.PushName,
		FromMe:    info.IsFromMe,
		IsGroup:   info.IsGroup,
		Timestamp: info.Timestamp,
		Content:   decodeContent(evt.Message),
		Raw:       evt,
	}
}

// decodeContent picks the first non-empty text shape: conversation, extended
// text, image caption. Messages without any of them decode as Unsupported.
func decodeContent(m *waE2E.Message) chat.Content {
	if m == nil {
		return nil
	}
	if text := m.GetConversation(); text != "" {
		return chat.Conversation{Text: text}
	}
	if text := m.GetExtendedTextMessage().GetText(); text != "" {
		return chat.ExtendedText{Text: text}
	}
	if caption := m.GetImageMessage().GetCaption(); caption != "" {
		return chat.ImageCaption{Caption: caption}
	}
	return chat.Unsupported{Kind: kindOf(m)}
}

func kindOf(m *waE2E.Message) string {
	switch {
	case m.GetImageMessage() != nil:
		return "image"
	case m.GetVideoMessage() != nil:
		return "video"
	case m.GetAudioMessage() != nil:
		return "audio"
	case m.GetStickerMessage() != nil:
		return "sticker"
	case m.GetDocumentMessage() != nil:
		return "document"
	case m.GetReactionMessage() != nil:
		return "reaction"
	case m.GetProtocolMessage() != nil:
		return "protocol"
	default:
		return "other"
	}
}

// translateEvent maps a whatsmeow event to the bot's event stream.
// Events the core does not consume return false.
func translateEvent(evt any) (chat.Event, bool) {
	switch e := evt.(type) {
	case *events.Message:
		return chat.Upsert{Messages: []chat.Message{DecodeMessage(e)}}, true
	case *events.Connected:
		return chat.ConnectionUpdate{State: chat.StateOpen}, true
	case *events.Disconnected:
		return closed(chat.ReasonConnectionClosed), true
	case *events.LoggedOut:
		return closed(chat.ReasonLoggedOut), true
	case *events.StreamReplaced:
		return closed(chat.ReasonConnectionReplaced), true
	case *events.TemporaryBan:
		return closed(chat.ReasonForbidden), true
	case *events.ClientOutdated:
		return closed(chat.ReasonClientOutdated), true
	case *events.KeepAliveTimeout:
		// With auto-reconnect off the client never drops a dead socket by itself.
		if time.Since(e.LastSuccess) > whatsmeow.KeepAliveMaxFailTime {
			return closed(chat.ReasonConnectionLost), true
		}
		return nil, false
	case *events.ConnectFailure:
		if e.Reason.IsLoggedOut() {
			return closed(chat.ReasonLoggedOut), true
		}
		return closed(chat.DisconnectReason(int(e.Reason))), true
	default:
		return nil, false
	}
}

func closed(reason chat.DisconnectReason) chat.ConnectionUpdate {
	return chat.ConnectionUpdate{State: chat.StateClose, Reason: reason}
}
