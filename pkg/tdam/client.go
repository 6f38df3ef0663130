// Package tdam provides a Go client for the TD Ameritrade market data and
// trading REST API.
//
// A Client runs in one of two modes. Authenticated clients send a bearer
// access token and, on a 401, exchange the refresh token for a new access
// token once and retry. Public clients send only the application id as the
// apikey query parameter and can reach the unauthenticated market data
// endpoints.
//
// A Client is not safe for concurrent use: the access token is replaced in
// place by a refresh. Callers sharing one Client across goroutines must
// serialize their calls.
package tdam

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// HTTPClient is the transport used to issue requests. *http.Client
// satisfies it.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOpts configures NewClient. Empty credential fields fall back to the
// TDAM_* environment variables.
type ClientOpts struct {
	AccessToken  string
	RefreshToken string
	AppID        string

	// Public selects API-key-only mode. Token fields are ignored.
	Public bool

	// BaseURL overrides DefaultBaseURL. Ignored when Endpoints is set.
	BaseURL   string
	Endpoints *Endpoints

	HTTPClient HTTPClient
	Logger     *zerolog.Logger

	// Now is the clock used for date window checks. Defaults to time.Now.
	Now func() time.Time
}

// Client issues requests against the API and decodes the responses.
type Client struct {
	endpoints  *Endpoints
	httpClient HTTPClient
	creds      Credentials
	log        zerolog.Logger
	now        func() time.Time
}

// NewClient resolves credentials and returns a ready client. It fails with
// ErrMissingCredentials when a required credential cannot be found.
func NewClient(opts ClientOpts) (*Client, error) {
	creds, err := ResolveCredentials(opts.AccessToken, opts.RefreshToken, opts.AppID, !opts.Public)
	if err != nil {
		return nil, err
	}

	c := &Client{
		endpoints:  opts.Endpoints,
		httpClient: opts.HTTPClient,
		creds:      creds,
		log:        zerolog.Nop(),
		now:        opts.Now,
	}
	if c.endpoints == nil {
		c.endpoints = NewEndpoints(opts.BaseURL)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Logger != nil {
		c.log = opts.Logger.With().Str("component", "tdam").Logger()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

// Endpoints returns the endpoint table the client was built with.
func (c *Client) Endpoints() *Endpoints { return c.endpoints }

// Authenticated reports whether the client runs with bearer tokens.
func (c *Client) Authenticated() bool { return c.creds.Authenticated }

// AccessToken returns the current access token. It changes after a refresh.
func (c *Client) AccessToken() string { return c.creds.AccessToken }

func (c *Client) requireAuth(op string) error {
	if !c.creds.Authenticated {
		return fmt.Errorf("%s: %w", op, ErrAuthenticationRequired)
	}
	return nil
}

// attemptState tracks where a request is in the refresh-and-retry protocol.
type attemptState int

const (
	firstAttempt attemptState = iota
	retriedAfterRefresh
)

func (s attemptState) String() string {
	if s == retriedAfterRefresh {
		return "retry"
	}
	return "first"
}

// request is one logical call; it may be sent twice.
type request struct {
	method      string
	url         string
	params      url.Values
	body        []byte
	contentType string
}

// Get performs a GET against rawURL with the given query parameters and
// returns the response body of a 2xx answer.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	q := url.Values{}
	for k, v := range params {
		q[k] = append([]string(nil), v...)
	}

	if !c.creds.Authenticated {
		q.Set("apikey", c.creds.AppID)
		status, body, err := c.send(ctx, request{method: http.MethodGet, url: rawURL, params: q}, "")
		if err != nil {
			return nil, err
		}
		c.log.Debug().Str("method", http.MethodGet).Str("url", rawURL).Int("status", status).Msg("public api request")
		if !isSuccess(status) {
			return nil, newHTTPError(status, body)
		}
		return body, nil
	}

	return c.do(ctx, request{method: http.MethodGet, url: rawURL, params: q})
}

// Post sends data as a JSON body to rawURL. Authenticated clients only.
func (c *Client) Post(ctx context.Context, rawURL string, data any) ([]byte, error) {
	if err := c.requireAuth("post"); err != nil {
		return nil, err
	}

	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	return c.do(ctx, request{
		method:      http.MethodPost,
		url:         rawURL,
		body:        body,
		contentType: "application/json",
	})
}

// do runs an authenticated request. A 401 on the first attempt refreshes the
// access token once and retries; any other failure, or a failed retry, is
// returned as an *HTTPError carrying the last response.
func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	state := firstAttempt
	for {
		status, body, err := c.send(ctx, req, c.creds.AccessToken)
		if err != nil {
			return nil, err
		}

		c.log.Debug().
			Str("method", req.method).
			Str("url", req.url).
			Int("status", status).
			Stringer("attempt", state).
			Msg("api request")

		if isSuccess(status) {
			return body, nil
		}
		if status != http.StatusUnauthorized || state == retriedAfterRefresh {
			return nil, newHTTPError(status, body)
		}

		if err := c.RefreshAccessToken(ctx); err != nil {
			return nil, err
		}
		state = retriedAfterRefresh
	}
}

// tokenResponse is the body of a successful token grant.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// RefreshAccessToken exchanges the refresh token for a new access token.
// On any failure the stored access token is left unchanged.
func (c *Client) RefreshAccessToken(ctx context.Context) error {
	if err := c.requireAuth("refresh access token"); err != nil {
		return err
	}

	tokenResp, err := c.grantAccessToken(ctx, c.creds.RefreshToken)
	if err != nil {
		return err
	}

	c.creds.AccessToken = tokenResp.AccessToken
	c.log.Info().Int64("expires_in", tokenResp.ExpiresIn).Msg("access token refreshed")
	return nil
}

// grantAccessToken runs the refresh_token grant for refreshToken. It reads
// only the app id from the client's credentials and changes nothing.
func (c *Client) grantAccessToken(ctx context.Context, refreshToken string) (tokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", c.creds.AppID)

	status, body, err := c.send(ctx, request{
		method:      http.MethodPost,
		url:         c.endpoints.Auth(),
		body:        []byte(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}, "")
	if err != nil {
		return tokenResponse{}, fmt.Errorf("failed to refresh access token: %w", err)
	}
	if !isSuccess(status) {
		return tokenResponse{}, newHTTPError(status, body)
	}

	var tokenResp tokenResponse
	if err := decodeJSON(body, &tokenResp); err != nil {
		return tokenResponse{}, err
	}
	if tokenResp.AccessToken == "" {
		return tokenResponse{}, fmt.Errorf("%w: empty access_token in token response", ErrMissingField)
	}
	return tokenResp, nil
}

// ObtainAccessToken exchanges a refresh token for an access token without
// needing a current one. The grant runs on a public client, so only
// RefreshToken and AppID of opts are used; AccessToken is ignored.
func ObtainAccessToken(ctx context.Context, opts ClientOpts) (string, error) {
	refresh, err := Resolve(opts.RefreshToken, EnvRefreshToken)
	if err != nil {
		return "", err
	}

	opts.Public = true
	c, err := NewClient(opts)
	if err != nil {
		return "", err
	}

	tokenResp, err := c.grantAccessToken(ctx, refresh)
	if err != nil {
		return "", err
	}
	c.log.Info().Int64("expires_in", tokenResp.ExpiresIn).Msg("access token obtained")
	return tokenResp.AccessToken, nil
}

// send performs a single HTTP exchange and reads the whole body. A non-empty
// token is sent as a bearer Authorization header.
func (c *Client) send(ctx context.Context, r request, token string) (int, []byte, error) {
	target := r.url
	if len(r.params) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + r.params.Encode()
	}

	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
