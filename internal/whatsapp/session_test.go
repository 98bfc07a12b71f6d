package whatsapp

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types/events"

	"github.com/edgard/wabot/internal/chat"
)

func newTestSession(t *testing.T, buffer int) (*Session, *CredentialStore) {
	t.Helper()

	creds := openTestStore(t, t.TempDir())
	device, err := creds.Load(context.Background())
	require.NoError(t, err)

	s := newSession(whatsmeow.NewClient(device, nil), device, creds, buffer, discardLogger(), io.Discard)
	t.Cleanup(s.Close)
	return s, creds
}

func TestSession_PairSuccessPersistsCredentials(t *testing.T) {
	t.Parallel()

	s, creds := newTestSession(t, 4)
	pair(s.device, "5511999")

	s.handleEvent(&events.PairSuccess{ID: *s.device.ID, Platform: "android"})

	loaded, err := creds.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, loaded.ID)
	assert.Equal(t, "5511999", loaded.ID.User)
	assert.Empty(t, s.events, "pairing is not forwarded to the event stream")
}

func TestSession_HandleEventForwardsTranslatedEvents(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t, 4)

	s.handleEvent(&events.Connected{})
	s.handleEvent(&events.KeepAliveTimeout{ErrorCount: 1, LastSuccess: time.Now()})
	s.handleEvent(&events.KeepAliveTimeout{ErrorCount: 9, LastSuccess: time.Now().Add(-time.Hour)})

	require.Len(t, s.events, 2)
	assert.Equal(t, chat.ConnectionUpdate{State: chat.StateOpen}, <-s.Events())
	assert.Equal(t, closed(chat.ReasonConnectionLost), <-s.Events())
}

func TestSession_CloseReleasesBlockedEmit(t *testing.T) {
	t.Parallel()

	s, _ := newTestSession(t, 1)
	s.emit(chat.ConnectionUpdate{State: chat.StateOpen})

	released := make(chan struct{})
	go func() {
		s.emit(closed(chat.ReasonConnectionLost))
		close(released)
	}()

	select {
	case <-released:
		t.Fatal("emit returned while the queue was full")
	case <-time.After(50 * time.Millisecond):
	}

	s.Close()
	s.Close()

	select {
	case <-released:
	case <-time.After(time.Second):
		t.Fatal("emit still blocked after Close")
	}
	assert.Len(t, s.events, 1)
}
