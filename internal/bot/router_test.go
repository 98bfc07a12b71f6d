package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/wabot/internal/chat"
	"github.com/edgard/wabot/internal/command"
	"github.com/edgard/wabot/internal/config"
	"github.com/edgard/wabot/internal/database"
)

type recordingSender struct {
	mu      sync.Mutex
	replies []string
}

func (s *recordingSender) SendText(_ context.Context, _ string, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, text)
	return nil
}

func (s *recordingSender) Reply(_ context.Context, _ chat.Message, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, text)
	return nil
}

func (s *recordingSender) Replies() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.replies...)
}

type memRecorder struct {
	records []database.Invocation
}

func (m *memRecorder) SaveInvocation(_ context.Context, inv *database.Invocation) error {
	m.records = append(m.records, *inv)
	return nil
}

type call struct {
	name string
	args []string
}

func testBotConfig() config.BotConfig {
	return config.BotConfig{
		Name:           "WaBot",
		Prefix:         "!",
		CommandTimeout: time.Second,
		Messages:       config.MessagesConfig{CommandError: "oops"},
	}
}

func newTestRouter(t *testing.T, cfg config.BotConfig, handlers map[string]command.HandlerFunc) (*Router, *memRecorder) {
	t.Helper()

	reg := command.NewRegistry()
	for name, h := range handlers {
		reg.Register(command.Command{Name: name, Handler: name, Execute: h})
	}
	rec := &memRecorder{}
	return NewRouter(RouterDeps{Config: cfg, Commands: reg, Recorder: rec}), rec
}

func textMessage(text string) chat.Message {
	return chat.Message{
		ID:      "MSG",
		Chat:    "123@g.us",
		Sender:  "5511@s.whatsapp.net",
		Content: chat.Conversation{Text: text},
	}
}

func upsert(msgs ...chat.Message) chat.Upsert {
	return chat.Upsert{Messages: msgs}
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		wantName string
		wantArgs []string
		wantOK   bool
	}{
		{name: "with args", text: "!ping foo bar", wantName: "ping", wantArgs: []string{"foo", "bar"}, wantOK: true},
		{name: "no args", text: "!ping", wantName: "ping", wantArgs: []string{}, wantOK: true},
		{name: "whitespace runs", text: "!echo   a \t b\n", wantName: "echo", wantArgs: []string{"a", "b"}, wantOK: true},
		{name: "space after prefix", text: "! ping", wantName: "ping", wantArgs: []string{}, wantOK: true},
		{name: "uppercase name", text: "!PING X", wantName: "ping", wantArgs: []string{"X"}, wantOK: true},
		{name: "no prefix", text: "ping", wantOK: false},
		{name: "prefix only", text: "!", wantOK: false},
		{name: "prefix and spaces", text: "!   ", wantOK: false},
		{name: "prefix not at start", text: "hey !ping", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			name, args, ok := ParseCommand("!", tt.text)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantName, name)
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func TestParseCommand_MultiCharPrefix(t *testing.T) {
	t.Parallel()

	name, args, ok := ParseCommand("/bot", "/bot help me")
	require.True(t, ok)
	assert.Equal(t, "help", name)
	assert.Equal(t, []string{"me"}, args)

	_, _, ok = ParseCommand("", "ping")
	assert.False(t, ok)
}

func TestRouter_Dispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		msg   chat.Message
		calls []call
	}{
		{name: "command with args", msg: textMessage("!ping foo bar"), calls: []call{{"ping", []string{"foo", "bar"}}}},
		{name: "no prefix", msg: textMessage("ping foo")},
		{name: "unknown command", msg: textMessage("!nope")},
		{name: "prefix only", msg: textMessage("!")},
		{
			name: "from me",
			msg: func() chat.Message {
				m := textMessage("!ping")
				m.FromMe = true
				return m
			}(),
		},
		{name: "no content", msg: chat.Message{ID: "X", Chat: "1@g.us"}},
		{name: "unsupported content", msg: chat.Message{Content: chat.Unsupported{Kind: "sticker"}}},
		{
			name:  "extended text",
			msg:   chat.Message{Content: chat.ExtendedText{Text: "!ping x"}},
			calls: []call{{"ping", []string{"x"}}},
		},
		{
			name:  "image caption",
			msg:   chat.Message{Content: chat.ImageCaption{Caption: "!PING"}},
			calls: []call{{"ping", []string{}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var calls []call
			router, _ := newTestRouter(t, testBotConfig(), map[string]command.HandlerFunc{
				"ping": func(_ context.Context, inv *command.Invocation) error {
					calls = append(calls, call{inv.Command.Name, inv.Args})
					return nil
				},
			})

			router.HandleUpsert(context.Background(), &recordingSender{}, upsert(tt.msg))
			assert.Equal(t, tt.calls, calls)
		})
	}
}

func TestRouter_OnlyFirstMessageOfUpsert(t *testing.T) {
	t.Parallel()

	count := 0
	router, _ := newTestRouter(t, testBotConfig(), map[string]command.HandlerFunc{
		"ping": func(context.Context, *command.Invocation) error {
			count++
			return nil
		},
	})

	router.HandleUpsert(context.Background(), &recordingSender{}, upsert(textMessage("!ping"), textMessage("!ping")))
	router.HandleUpsert(context.Background(), &recordingSender{}, upsert())
	assert.Equal(t, 1, count)
}

func TestRouter_InvocationCarriesContext(t *testing.T) {
	t.Parallel()

	var got *command.Invocation
	var deadline bool
	router, _ := newTestRouter(t, testBotConfig(), map[string]command.HandlerFunc{
		"ping": func(ctx context.Context, inv *command.Invocation) error {
			got = inv
			_, deadline = ctx.Deadline()
			return nil
		},
	})

	sender := &recordingSender{}
	msg := textMessage("!ping a")
	router.HandleUpsert(context.Background(), sender, upsert(msg))

	require.NotNil(t, got)
	assert.Same(t, sender, got.Client)
	assert.Equal(t, msg, got.Message)
	assert.Equal(t, "WaBot", got.Config.Name)
	require.NotNil(t, got.Commands)
	assert.Len(t, got.Commands.All(), 1)
	assert.True(t, deadline)
}

func TestRouter_FailuresAreContained(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	okCalls := 0
	router, rec := newTestRouter(t, testBotConfig(), map[string]command.HandlerFunc{
		"fail": func(context.Context, *command.Invocation) error { return boom },
		"panic": func(context.Context, *command.Invocation) error {
			panic("kaboom")
		},
		"ok": func(context.Context, *command.Invocation) error {
			okCalls++
			return nil
		},
	})

	sender := &recordingSender{}
	ctx := context.Background()
	require.NotPanics(t, func() {
		router.HandleUpsert(ctx, sender, upsert(textMessage("!fail")))
		router.HandleUpsert(ctx, sender, upsert(textMessage("!panic")))
		router.HandleUpsert(ctx, sender, upsert(textMessage("!ok")))
	})

	assert.Equal(t, 1, okCalls)
	assert.Equal(t, []string{"oops", "oops"}, sender.Replies())

	require.Len(t, rec.records, 3)
	assert.Equal(t, "fail", rec.records[0].Command)
	assert.Equal(t, database.StatusError, rec.records[0].Status)
	assert.Contains(t, rec.records[0].Error, "boom")
	assert.Equal(t, database.StatusError, rec.records[1].Status)
	assert.Contains(t, rec.records[1].Error, "kaboom")
	assert.Equal(t, database.StatusOK, rec.records[2].Status)
	assert.Equal(t, "5511@s.whatsapp.net", rec.records[2].SenderJID)
	assert.Equal(t, "123@g.us", rec.records[2].ChatJID)
}

func TestRouter_NoErrorReplyWhenDisabled(t *testing.T) {
	t.Parallel()

	cfg := testBotConfig()
	cfg.Messages.CommandError = ""
	router, _ := newTestRouter(t, cfg, map[string]command.HandlerFunc{
		"fail": func(context.Context, *command.Invocation) error { return errors.New("x") },
	})

	sender := &recordingSender{}
	router.HandleUpsert(context.Background(), sender, upsert(textMessage("!fail")))
	assert.Empty(t, sender.Replies())
}

func TestRouter_CommandTimeout(t *testing.T) {
	t.Parallel()

	cfg := testBotConfig()
	cfg.CommandTimeout = 10 * time.Millisecond
	router, rec := newTestRouter(t, cfg, map[string]command.HandlerFunc{
		"slow": func(ctx context.Context, _ *command.Invocation) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})

	sender := &recordingSender{}
	router.HandleUpsert(context.Background(), sender, upsert(textMessage("!slow")))

	require.Len(t, rec.records, 1)
	assert.Equal(t, database.StatusError, rec.records[0].Status)
	assert.Equal(t, []string{"oops"}, sender.Replies())
}

func TestRouter_EmptyRegistryDiscards(t *testing.T) {
	t.Parallel()

	router, rec := newTestRouter(t, testBotConfig(), nil)
	sender := &recordingSender{}
	router.HandleUpsert(context.Background(), sender, upsert(textMessage("!ping")))
	router.HandleUpsert(context.Background(), sender, upsert(textMessage("!help")))

	assert.Empty(t, sender.Replies())
	assert.Empty(t, rec.records)
}

func TestRouter_RateLimit(t *testing.T) {
	t.Parallel()

	cfg := testBotConfig()
	cfg.RateLimit = 0.001
	cfg.RateBurst = 1

	count := 0
	router, _ := newTestRouter(t, cfg, map[string]command.HandlerFunc{
		"ping": func(context.Context, *command.Invocation) error {
			count++
			return nil
		},
	})

	ctx := context.Background()
	router.HandleUpsert(ctx, &recordingSender{}, upsert(textMessage("!ping")))
	router.HandleUpsert(ctx, &recordingSender{}, upsert(textMessage("!ping")))

	other := textMessage("!ping")
	other.Sender = "7777@s.whatsapp.net"
	router.HandleUpsert(ctx, &recordingSender{}, upsert(other))

	assert.Equal(t, 2, count)
}

func TestRouter_NilRecorder(t *testing.T) {
	t.Parallel()

	reg := command.NewRegistry()
	called := false
	reg.Register(command.Command{Name: "ping", Execute: func(context.Context, *command.Invocation) error {
		called = true
		return nil
	}})

	router := NewRouter(RouterDeps{Config: testBotConfig(), Commands: reg})
	router.HandleUpsert(context.Background(), &recordingSender{}, upsert(textMessage("!ping")))
	assert.True(t, called)
}
