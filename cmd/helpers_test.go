package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
)

// publicOptions returns API-key-only options pointed at baseURL.
func publicOptions(baseURL string) *clientOptions {
	return &clientOptions{
		baseURL: baseURL,
		appID:   "test-app",
		public:  true,
	}
}

// authOptions returns token-authenticated options pointed at baseURL.
func authOptions(baseURL string) *clientOptions {
	return &clientOptions{
		baseURL:      baseURL,
		accessToken:  "test-token",
		refreshToken: "test-refresh",
		appID:        "test-app",
	}
}

// serve starts a server answering every request with status and body.
func serve(t *testing.T, status int, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

// execute runs cmd with args and returns its standard output.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
