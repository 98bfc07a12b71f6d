package httpapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/wabot/internal/chat"
	"github.com/edgard/wabot/internal/command"
)

type fakeStatus struct {
	state      chat.ConnectionState
	reconnects int64
}

func (f fakeStatus) State() chat.ConnectionState { return f.state }
func (f fakeStatus) Reconnects() int64           { return f.reconnects }

type fakeLister []command.Command

func (l fakeLister) All() []command.Command { return l }

func newTestServer(status StatusSource) *httptest.Server {
	s := New(":0", "WaBot", status, fakeLister{{Name: "help"}, {Name: "ping"}}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return httptest.NewServer(s.Handler())
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	ts := newTestServer(fakeStatus{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   fakeStatus
		wantCode int
		wantStat string
	}{
		{name: "open", status: fakeStatus{state: chat.StateOpen, reconnects: 2}, wantCode: http.StatusOK, wantStat: "open"},
		{name: "connecting", status: fakeStatus{state: chat.StateConnecting}, wantCode: http.StatusServiceUnavailable, wantStat: "connecting"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ts := newTestServer(tt.status)
			defer ts.Close()

			resp, err := http.Get(ts.URL + "/status")
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantCode, resp.StatusCode)

			var body Status
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, "WaBot", body.Bot)
			assert.Equal(t, tt.wantStat, body.State)
			assert.Equal(t, tt.status.reconnects, body.Reconnects)
			assert.Equal(t, []string{"help", "ping"}, body.Commands)
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()

	ts := newTestServer(fakeStatus{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
