package cmd

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonandersen/tdam/internal/config"
	"github.com/jonandersen/tdam/internal/keyring"
)

// mockPasswordReader hands out passwords in order.
type mockPasswordReader struct {
	passwords  []string
	err        error
	isTerminal bool
	reads      int
}

func newMockPasswordReader(isTerminal bool, passwords ...string) *mockPasswordReader {
	return &mockPasswordReader{passwords: passwords, isTerminal: isTerminal}
}

func (m *mockPasswordReader) ReadPassword() (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.reads >= len(m.passwords) {
		return "", nil
	}
	p := m.passwords[m.reads]
	m.reads++
	return p, nil
}

func (m *mockPasswordReader) IsTerminal() bool {
	return m.isTerminal
}

// mockPrompt answers menu selections and line reads from fixed values.
type mockPrompt struct {
	selection int
	lines     []string
	asked     []string
}

func (m *mockPrompt) SelectOption(options []string) (int, error) {
	return m.selection, nil
}

func (m *mockPrompt) ReadLine(prompt string) (string, error) {
	m.asked = append(m.asked, prompt)
	if len(m.lines) == 0 {
		return "", nil
	}
	line := m.lines[0]
	m.lines = m.lines[1:]
	return line, nil
}

func runConfigureCmd(t *testing.T, opts configureOptions, args ...string) (string, error) {
	t.Helper()
	cmd := newConfigureCmd(opts)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigureCmd_WithBothTokens(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	store := keyring.NewMemoryStore()

	out, err := runConfigureCmd(t, configureOptions{
		configPath:     configPath,
		baseURL:        "http://localhost:1",
		store:          store,
		passwordReader: newMockPasswordReader(true, "my-refresh", "my-access"),
		prompt:         &mockPrompt{lines: []string{"my-app"}},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration saved")

	creds, err := keyring.LoadCredentials(store)
	require.NoError(t, err)
	assert.Equal(t, keyring.Credentials{AccessToken: "my-access", RefreshToken: "my-refresh", AppID: "my-app"}, creds)

	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	assert.False(t, cfg.Public)
}

func TestConfigureCmd_ObtainsAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oauth2/token", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "my-refresh", r.PostForm.Get("refresh_token"))
		assert.Equal(t, "my-app", r.PostForm.Get("client_id"))
		_, _ = w.Write([]byte(`{"access_token":"issued-token","expires_in":1800}`))
	}))
	defer server.Close()

	store := keyring.NewMemoryStore()
	_, err := runConfigureCmd(t, configureOptions{
		configPath:     filepath.Join(t.TempDir(), "config.yaml"),
		baseURL:        server.URL,
		store:          store,
		passwordReader: newMockPasswordReader(true, "my-refresh", ""),
		prompt:         &mockPrompt{lines: []string{"my-app"}},
	})
	require.NoError(t, err)

	token, err := store.Get(keyring.ServiceName, keyring.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, "issued-token", token)
}

func TestConfigureCmd_RefreshRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
	}))
	defer server.Close()

	store := keyring.NewMemoryStore()
	_, err := runConfigureCmd(t, configureOptions{
		configPath:     filepath.Join(t.TempDir(), "config.yaml"),
		baseURL:        server.URL,
		store:          store,
		passwordReader: newMockPasswordReader(true, "bad-refresh", ""),
		prompt:         &mockPrompt{lines: []string{"my-app"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to validate refresh token")

	_, err = store.Get(keyring.ServiceName, keyring.KeyRefreshToken)
	assert.ErrorIs(t, err, keyring.ErrNotFound)
}

func TestConfigureCmd_Public(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	store := keyring.NewMemoryStore()
	pw := newMockPasswordReader(true)

	_, err := runConfigureCmd(t, configureOptions{
		configPath:     configPath,
		store:          store,
		passwordReader: pw,
		prompt:         &mockPrompt{lines: []string{"my-app"}},
	}, "--public")
	require.NoError(t, err)
	assert.Zero(t, pw.reads)

	creds, err := keyring.LoadCredentials(store)
	require.NoError(t, err)
	assert.Equal(t, "my-app", creds.AppID)
	assert.Empty(t, creds.RefreshToken)

	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	assert.True(t, cfg.Public)
}

func TestConfigureCmd_Validation(t *testing.T) {
	tests := []struct {
		name      string
		passwords []string
		appID     string
		wantErr   string
	}{
		{name: "empty app id", passwords: []string{"r", "a"}, wantErr: "application id cannot be empty"},
		{name: "empty refresh token", appID: "my-app", wantErr: "refresh token cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runConfigureCmd(t, configureOptions{
				configPath:     filepath.Join(t.TempDir(), "config.yaml"),
				store:          keyring.NewMemoryStore(),
				passwordReader: newMockPasswordReader(true, tt.passwords...),
				prompt:         &mockPrompt{lines: []string{tt.appID}},
			})
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConfigureCmd_KeyringFailure(t *testing.T) {
	store := keyring.NewMockStore().WithSetError(errors.New("keyring locked"))

	_, err := runConfigureCmd(t, configureOptions{
		configPath:     filepath.Join(t.TempDir(), "config.yaml"),
		store:          store,
		passwordReader: newMockPasswordReader(true, "r", "a"),
		prompt:         &mockPrompt{lines: []string{"my-app"}},
	})
	assert.ErrorContains(t, err, "keyring locked")
}

func TestConfigureCmd_NotTerminal(t *testing.T) {
	_, err := runConfigureCmd(t, configureOptions{
		store:          keyring.NewMemoryStore(),
		passwordReader: newMockPasswordReader(false),
		prompt:         &mockPrompt{},
	})
	assert.ErrorContains(t, err, "interactive terminal")
}

func TestConfigureCmd_ReadError(t *testing.T) {
	pw := newMockPasswordReader(true)
	pw.err = errors.New("tty gone")

	_, err := runConfigureCmd(t, configureOptions{
		configPath:     filepath.Join(t.TempDir(), "config.yaml"),
		store:          keyring.NewMemoryStore(),
		passwordReader: pw,
		prompt:         &mockPrompt{lines: []string{"my-app"}},
	})
	assert.ErrorContains(t, err, "tty gone")
}

func configuredStore() *keyring.MockStore {
	return keyring.NewMockStore().WithCredentials(keyring.Credentials{
		AccessToken: "stored-access", RefreshToken: "stored-refresh", AppID: "stored-app",
	})
}

func TestConfigureCmd_ReconfigureView(t *testing.T) {
	out, err := runConfigureCmd(t, configureOptions{
		configPath:     filepath.Join(t.TempDir(), "config.yaml"),
		store:          configuredStore(),
		passwordReader: newMockPasswordReader(true),
		prompt:         &mockPrompt{selection: 1},
	})
	require.NoError(t, err)

	assert.Contains(t, out, "already configured")
	assert.Contains(t, out, "Application id: stored-app")
	assert.Contains(t, out, "Access token: Configured")
	assert.Contains(t, out, "Public mode: false")
	assert.NotContains(t, out, "stored-access")
}

func TestConfigureCmd_ReconfigureNewCredentials(t *testing.T) {
	store := configuredStore()
	_, err := runConfigureCmd(t, configureOptions{
		configPath:     filepath.Join(t.TempDir(), "config.yaml"),
		store:          store,
		passwordReader: newMockPasswordReader(true, "new-refresh", "new-access"),
		prompt:         &mockPrompt{selection: 0, lines: []string{"new-app"}},
	})
	require.NoError(t, err)

	creds, err := keyring.LoadCredentials(store)
	require.NoError(t, err)
	assert.Equal(t, "new-app", creds.AppID)
	assert.Equal(t, "new-access", creds.AccessToken)
}

func TestConfigureCmd_Clear(t *testing.T) {
	for _, tc := range []struct {
		name   string
		args   []string
		prompt *mockPrompt
	}{
		{name: "flag", args: []string{"--clear"}, prompt: &mockPrompt{}},
		{name: "menu", prompt: &mockPrompt{selection: 2}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			store := configuredStore()
			out, err := runConfigureCmd(t, configureOptions{
				configPath:     filepath.Join(t.TempDir(), "config.yaml"),
				store:          store,
				passwordReader: newMockPasswordReader(true),
				prompt:         tc.prompt,
			}, tc.args...)
			require.NoError(t, err)
			assert.True(t, strings.Contains(out, "Credentials cleared"))

			creds, err := keyring.LoadCredentials(store)
			require.NoError(t, err)
			assert.Equal(t, keyring.Credentials{}, creds)
		})
	}
}

func TestTerminalPrompter(t *testing.T) {
	var out bytes.Buffer
	p := newTerminalPrompter(strings.NewReader("abc\n9\n2\nmy-app\n"), &out)

	idx, err := p.SelectOption([]string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Equal(t, 1, idx)
	assert.Contains(t, out.String(), "between 1 and 3")

	line, err := p.ReadLine("App: ")
	require.NoError(t, err)
	assert.Equal(t, "my-app", line)
}
