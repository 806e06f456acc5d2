// Package auth owns the OAuth token lifecycle for the Inoreader API:
// persistence, validation probes, single-flight refresh, and the
// interactive / automatic / headless authentication flows.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultAuthURL  = "https://www.inoreader.com/oauth2/auth"
	DefaultTokenURL = "https://www.inoreader.com/oauth2/token"
	DefaultProbeURL = "https://www.inoreader.com/reader/api/0/user-info"
)

type Config struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	ProbeURL     string
	RedirectURI  string
	Scope        string
}

// InoreaderConfig returns a Config pointed at the Inoreader OAuth endpoints.
func InoreaderConfig(clientID, clientSecret, redirectURI string) Config {
	return Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		AuthURL:      DefaultAuthURL,
		TokenURL:     DefaultTokenURL,
		ProbeURL:     DefaultProbeURL,
		RedirectURI:  redirectURI,
		Scope:        "read",
	}
}

// HTTPClient allows injecting a fake client in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Session owns the current TokenSet. All mutation goes through it; there is
// no ambient token state anywhere else in the program.
type Session struct {
	cfg        Config
	store      *TokenStore
	httpClient HTTPClient
	log        *slog.Logger

	mu    sync.RWMutex
	token *TokenSet

	// refreshGroup collapses concurrent refresh attempts into one network
	// call; every waiter observes the same outcome.
	refreshGroup singleflight.Group

	input   io.Reader
	openURL func(string) error
}

type SessionOption func(*Session)

func WithHTTPClient(client HTTPClient) SessionOption {
	return func(s *Session) { s.httpClient = client }
}

// WithInput overrides the reader used by the interactive flow (default stdin).
func WithInput(r io.Reader) SessionOption {
	return func(s *Session) { s.input = r }
}

// WithURLOpener overrides how the authorization URL is opened in a browser.
func WithURLOpener(fn func(string) error) SessionOption {
	return func(s *Session) { s.openURL = fn }
}

func WithLogger(log *slog.Logger) SessionOption {
	return func(s *Session) { s.log = log }
}

func NewSession(cfg Config, store *TokenStore, opts ...SessionOption) *Session {
	s := &Session{
		cfg:        cfg,
		store:      store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        slog.Default(),
		input:      os.Stdin,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load pulls the token set from the store. Absent or malformed state leaves
// the session unauthenticated; it is never an error.
func (s *Session) Load() bool {
	ts, err := s.store.Load()
	if err != nil {
		return false
	}
	s.mu.Lock()
	s.token = ts
	s.mu.Unlock()
	return true
}

// Authenticated reports whether an access token is currently held.
func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != nil && s.token.AccessToken != ""
}

// AccessToken returns the current access token, if any.
func (s *Session) AccessToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil || s.token.AccessToken == "" {
		return "", false
	}
	return s.token.AccessToken, true
}

// AuthorizationURL builds the user-facing authorization URL for the given
// CSRF state.
func (s *Session) AuthorizationURL(state string) string {
	params := url.Values{}
	params.Set("client_id", s.cfg.ClientID)
	params.Set("redirect_uri", s.cfg.RedirectURI)
	params.Set("response_type", "code")
	params.Set("scope", s.cfg.Scope)
	params.Set("state", state)
	return s.cfg.AuthURL + "?" + params.Encode()
}

// applyHeaders attaches the bearer credential plus the two static
// application-identity headers Inoreader requires.
func (s *Session) applyHeaders(req *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token != nil {
		req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	}
	req.Header.Set("AppId", s.cfg.ClientID)
	req.Header.Set("AppKey", s.cfg.ClientSecret)
}

// ExchangeCode trades an authorization code for a TokenSet and persists it.
func (s *Session) ExchangeCode(ctx context.Context, code string) error {
	data := url.Values{}
	data.Set("client_id", s.cfg.ClientID)
	data.Set("client_secret", s.cfg.ClientSecret)
	data.Set("code", code)
	data.Set("redirect_uri", s.cfg.RedirectURI)
	data.Set("grant_type", "authorization_code")

	ts, status, err := s.tokenRequest(ctx, data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransientAuth, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("code exchange failed: token endpoint status %d", status)
	}
	s.setToken(ts)
	return nil
}

// Refresh exchanges the refresh token for a new TokenSet. Concurrent callers
// share a single network call. An HTTP 400 from the token endpoint means the
// grant is dead: the token set is cleared from memory and from the store and
// ErrAuthExpired is returned. Any other failure is ErrTransientAuth.
func (s *Session) Refresh(ctx context.Context) error {
	_, err, _ := s.refreshGroup.Do("refresh", func() (interface{}, error) {
		return nil, s.refreshOnce(ctx)
	})
	return err
}

func (s *Session) refreshOnce(ctx context.Context) error {
	s.mu.RLock()
	var refreshToken string
	if s.token != nil {
		refreshToken = s.token.RefreshToken
	}
	s.mu.RUnlock()

	if refreshToken == "" {
		return fmt.Errorf("%w: no refresh token available", ErrAuthExpired)
	}

	data := url.Values{}
	data.Set("client_id", s.cfg.ClientID)
	data.Set("client_secret", s.cfg.ClientSecret)
	data.Set("refresh_token", refreshToken)
	data.Set("grant_type", "refresh_token")

	ts, status, err := s.tokenRequest(ctx, data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransientAuth, err)
	}
	switch {
	case status == http.StatusOK:
		if ts.RefreshToken == "" {
			// Inoreader may omit the refresh token on rotation; keep the old one.
			ts.RefreshToken = refreshToken
		}
		s.setToken(ts)
		return nil
	case status == http.StatusBadRequest:
		s.clear()
		return fmt.Errorf("%w: refresh grant rejected", ErrAuthExpired)
	default:
		return fmt.Errorf("%w: token endpoint status %d", ErrTransientAuth, status)
	}
}

func (s *Session) tokenRequest(ctx context.Context, data url.Values) (*TokenSet, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, 0, fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("token endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}

	var ts TokenSet
	if err := json.Unmarshal(body, &ts); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("parse token response: %w", err)
	}
	if ts.AccessToken == "" {
		return nil, resp.StatusCode, fmt.Errorf("token response missing access_token")
	}
	ts.ObtainedAt = time.Now().UTC()
	return &ts, resp.StatusCode, nil
}

func (s *Session) setToken(ts *TokenSet) {
	s.mu.Lock()
	s.token = ts
	s.mu.Unlock()
	if err := s.store.Save(ts); err != nil {
		s.log.Warn("failed to persist token set", "error", err)
	}
}

func (s *Session) clear() {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()
	if err := s.store.Clear(); err != nil {
		s.log.Warn("failed to clear token store", "error", err)
	}
}

// Validate issues one lightweight authenticated probe. It never mutates the
// token set.
func (s *Session) Validate(ctx context.Context) error {
	if !s.Authenticated() {
		return ErrNotAuthenticated
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.ProbeURL, nil)
	if err != nil {
		return fmt.Errorf("create probe request: %w", err)
	}
	s.applyHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("probe request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("probe returned status %d", resp.StatusCode)
	}
	return nil
}

// AuthenticateAutomatic is the unattended flow: load, validate, and refresh
// once if the probe fails. It never prompts and never blocks on stdin.
func (s *Session) AuthenticateAutomatic(ctx context.Context) error {
	if !s.Authenticated() {
		s.Load()
	}
	if !s.Authenticated() {
		return ErrNotAuthenticated
	}

	if err := s.Validate(ctx); err == nil {
		return nil
	}

	if err := s.Refresh(ctx); err != nil {
		return err
	}
	if err := s.Validate(ctx); err != nil {
		return fmt.Errorf("%w: validation failed after refresh: %v", ErrTransientAuth, err)
	}
	return nil
}

// Client returns an HTTP client whose transport attaches credentials and
// performs the 401 → refresh → retry-once dance. A second 401 on the same
// request surfaces as ErrAuthExpired; it is never retried again.
func (s *Session) Client(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &authTransport{session: s, base: http.DefaultTransport},
	}
}

type authTransport struct {
	session *Session
	base    http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s := t.session
	if !s.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	first := req.Clone(req.Context())
	s.applyHeaders(first)
	resp, err := t.base.RoundTrip(first)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	if err := s.Refresh(req.Context()); err != nil {
		return nil, err
	}

	second := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("rewind request body: %w", err)
		}
		second.Body = body
	}
	s.applyHeaders(second)
	resp, err = t.base.RoundTrip(second)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		return nil, ErrAuthExpired
	}
	return resp, nil
}

func randomState() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("state-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
