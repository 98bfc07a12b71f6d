package command_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/wabot/internal/command"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func noop(context.Context, *command.Invocation) error { return nil }

func testCatalog() command.Catalog {
	return command.Catalog{
		"ping": func(command.Manifest) (command.HandlerFunc, error) { return noop, nil },
		"reply": func(m command.Manifest) (command.HandlerFunc, error) {
			if m.Text == "" {
				return nil, errors.New("reply needs text")
			}
			return func(ctx context.Context, inv *command.Invocation) error {
				return inv.Reply(ctx, m.Text)
			}, nil
		},
	}
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
	return dir
}

func TestLoad_LooksUpRegisteredCommand(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"ping.yaml": "name: ping\ndescription: Check the bot is alive\nhandler: ping\n",
	})

	reg, err := command.Load(dir, testCatalog(), discard)
	require.NoError(t, err)

	cmd, ok := reg.Get("ping")
	require.True(t, ok)
	assert.Equal(t, "ping", cmd.Name)
	assert.Equal(t, "Check the bot is alive", cmd.Description)
	assert.Equal(t, filepath.Join(dir, "ping.yaml"), cmd.Source)
	assert.NotNil(t, cmd.Execute)

	_, ok = reg.Get("pong")
	assert.False(t, ok)
	assert.Equal(t, 1, reg.Len())
}

func TestLoad_EmptyOrMissingDirectory(t *testing.T) {
	t.Parallel()

	reg, err := command.Load(filepath.Join(t.TempDir(), "nope"), testCatalog(), discard)
	require.NoError(t, err)
	assert.Zero(t, reg.Len())

	reg, err = command.Load(t.TempDir(), testCatalog(), discard)
	require.NoError(t, err)
	assert.Zero(t, reg.Len())
}

func TestLoad_SkipsUnrecognizedFiles(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"ping.yml":  "name: PING\nhandler: ping\n",
		"README.md": "# not a command",
		"ping.js":   "export default {}",
	})
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.yaml"), 0o700))

	reg, err := command.Load(dir, testCatalog(), discard)
	require.NoError(t, err)
	assert.Equal(t, 1, reg.Len())

	_, ok := reg.Get("ping")
	assert.True(t, ok, "names are lowercased at load time")
}

func TestLoad_DuplicateNameLastFileWins(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{
		"a_hello.yaml": "name: hello\nhandler: reply\ntext: first\n",
		"b_hello.yaml": "name: hello\nhandler: reply\ntext: second\n",
	})

	reg, err := command.Load(dir, testCatalog(), discard)
	require.NoError(t, err)
	require.Equal(t, 1, reg.Len())

	cmd, ok := reg.Get("hello")
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "b_hello.yaml"), cmd.Source)

	sender := &recordingSender{}
	require.NoError(t, cmd.Execute(context.Background(), &command.Invocation{Client: sender}))
	assert.Equal(t, []string{"second"}, sender.replies)
}

func TestLoad_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "malformed yaml", body: "name: [ping\n", wantErr: command.ErrInvalidManifest},
		{name: "missing name", body: "handler: ping\n", wantErr: command.ErrInvalidManifest},
		{name: "missing handler", body: "name: ping\n", wantErr: command.ErrInvalidManifest},
		{name: "name with spaces", body: "name: two words\nhandler: ping\n", wantErr: command.ErrInvalidManifest},
		{name: "unknown field", body: "name: ping\nhandler: ping\nexecute: yes\n", wantErr: command.ErrInvalidManifest},
		{name: "empty file", body: "", wantErr: command.ErrInvalidManifest},
		{name: "unknown handler", body: "name: ping\nhandler: missing\n", wantErr: command.ErrUnknownHandler},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := writeFiles(t, map[string]string{"cmd.yaml": tt.body})
			_, err := command.Load(dir, testCatalog(), discard)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), "cmd.yaml")
		})
	}
}

func TestLoad_FactoryError(t *testing.T) {
	t.Parallel()

	dir := writeFiles(t, map[string]string{"hello.yaml": "name: hello\nhandler: reply\n"})
	_, err := command.Load(dir, testCatalog(), discard)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "reply needs text"))
}

func TestRegistry_AllSorted(t *testing.T) {
	t.Parallel()

	reg := command.NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		reg.Register(command.Command{Name: name})
	}

	var names []string
	for _, c := range reg.All() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}
