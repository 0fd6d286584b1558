// Package session holds the process-wide authentication session: an
// explicit state machine gating every calendar call behind the two-phase
// readiness check (remote API reachable AND identity client configured),
// plus the signed-in token state once ready.
package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/hpungsan/chronobox/internal/config"
	"github.com/hpungsan/chronobox/internal/errors"
)

// Scope restricts access to calendar-events write operations.
const Scope = "https://www.googleapis.com/auth/calendar.events"

// State is the session lifecycle state. Error is terminal until the
// process restarts.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateInitializing  State = "initializing"
	StateReady         State = "ready"
	StateError         State = "error"
)

// Endpoints groups the external URLs the session talks to. Tests override
// them with httptest servers.
type Endpoints struct {
	AuthURL         string
	TokenURL        string
	RevokeURL       string
	DiscoveryURL    string // probed during init to confirm the API surface is reachable
	CalendarBaseURL string // passed to the calendar gateway
}

// GoogleEndpoints returns the production Google endpoints.
func GoogleEndpoints() Endpoints {
	return Endpoints{
		AuthURL:         "https://accounts.google.com/o/oauth2/auth",
		TokenURL:        "https://oauth2.googleapis.com/token",
		RevokeURL:       "https://oauth2.googleapis.com/revoke",
		DiscoveryURL:    "https://www.googleapis.com/discovery/v1/apis/calendar/v3/rest",
		CalendarBaseURL: "https://www.googleapis.com/calendar/v3/",
	}
}

// Reachability probe bounds. The probe replaces the original fast-poll
// wait with a bounded exponential backoff and a single terminal error.
const (
	probeAttempts  = 3
	probeBaseDelay = 200 * time.Millisecond
)

// Session is the authentication session value object.
type Session struct {
	mu        sync.Mutex
	state     State
	signingIn bool

	cfg       *config.Config
	endpoints Endpoints
	baseDir   string

	httpClient *http.Client
	oauthCfg   *oauth2.Config
	token      *oauth2.Token

	// openBrowser launches the interactive consent window; injectable so
	// tests can stand in for a real browser.
	openBrowser func(url string) error
}

// New creates a session in the Uninitialized state. baseDir is where the
// token cache lives.
func New(cfg *config.Config, endpoints Endpoints, baseDir string) *Session {
	return &Session{
		state:       StateUninitialized,
		cfg:         cfg,
		endpoints:   endpoints,
		baseDir:     baseDir,
		httpClient:  &http.Client{Timeout: cfg.HTTPTimeout()},
		openBrowser: launchBrowser,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsSignedIn reports whether an access token is held.
func (s *Session) IsSignedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateReady && s.token != nil
}

// Endpoints returns the configured endpoint set.
func (s *Session) Endpoints() Endpoints {
	return s.endpoints
}

// Init performs the two independent setup steps: (a) confirm the remote
// API surface is reachable, (b) build the identity client from the
// configured client identifier. The session becomes Ready only when both
// succeed; any failure moves it to Error, which is terminal. Calling Init
// on a Ready session is a no-op.
func (s *Session) Init(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case StateReady:
		s.mu.Unlock()
		return nil
	case StateInitializing:
		s.mu.Unlock()
		return errors.NewInitialization("session initialization already in progress")
	case StateError:
		s.mu.Unlock()
		return errors.NewConfiguration("session initialization previously failed; restart required")
	}
	s.state = StateInitializing
	s.mu.Unlock()

	// Identity client setup fails immediately, with no network call,
	// when the client identifier is missing.
	if s.cfg.GoogleClientID == "" {
		s.fail()
		return errors.NewConfiguration("missing Google client ID; configure google_client_id")
	}

	if err := s.probeAPI(ctx); err != nil {
		s.fail()
		return err
	}

	oauthCfg := &oauth2.Config{
		ClientID:     s.cfg.GoogleClientID,
		ClientSecret: s.cfg.GoogleClientSecret,
		Scopes:       []string{Scope},
		Endpoint: oauth2.Endpoint{
			AuthURL:  s.endpoints.AuthURL,
			TokenURL: s.endpoints.TokenURL,
		},
	}

	s.mu.Lock()
	s.oauthCfg = oauthCfg
	// A previously cached token restores the signed-in state across runs.
	if tok, err := loadToken(s.baseDir); err == nil {
		s.token = tok
	}
	s.state = StateReady
	s.mu.Unlock()
	return nil
}

// fail moves the session to the terminal Error state.
func (s *Session) fail() {
	s.mu.Lock()
	s.state = StateError
	s.mu.Unlock()
}

// probeAPI checks that the calendar API surface is reachable, retrying
// with exponential backoff before giving up.
func (s *Session) probeAPI(ctx context.Context) error {
	var lastErr error
	delay := probeBaseDelay
	for attempt := 0; attempt < probeAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return errors.NewInitialization("calendar API probe cancelled")
			}
			delay *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoints.DiscoveryURL, nil)
		if err != nil {
			return errors.NewInitialization(fmt.Sprintf("invalid discovery URL: %v", err))
		}
		resp, err := s.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()
		if resp.StatusCode < 500 {
			return nil
		}
		lastErr = fmt.Errorf("discovery returned status %d", resp.StatusCode)
	}
	return errors.NewInitialization(fmt.Sprintf("calendar API unreachable: %v", lastErr))
}

// readyError maps a non-Ready state to the error a gateway operation
// should reject with, without any network call.
func readyError(state State) *errors.ChronoError {
	switch state {
	case StateError:
		return errors.NewConfiguration("session initialization failed; restart required")
	default:
		return errors.NewInitialization("session not initialized; call Init first")
	}
}

// SignIn acquires an access token. With a cached token the request is
// silent (refresh); otherwise it runs the interactive consent flow.
// Concurrent attempts are rejected.
func (s *Session) SignIn(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateReady {
		defer s.mu.Unlock()
		return readyError(s.state)
	}
	if s.signingIn {
		s.mu.Unlock()
		return errors.NewAuthentication("a sign-in attempt is already in progress")
	}
	s.signingIn = true
	cached := s.token
	oauthCfg := s.oauthCfg
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.signingIn = false
		s.mu.Unlock()
	}()

	var tok *oauth2.Token
	var err error
	if cached != nil {
		tok, err = s.silentSignIn(ctx, oauthCfg, cached)
	} else {
		tok, err = s.interactiveSignIn(ctx, oauthCfg)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token = tok
	s.mu.Unlock()
	// Cache failures are not fatal: the session stays signed in, only
	// restart persistence is lost.
	_ = saveToken(s.baseDir, tok)
	return nil
}

// silentSignIn refreshes an existing token without user interaction.
func (s *Session) silentSignIn(ctx context.Context, oauthCfg *oauth2.Config, cached *oauth2.Token) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	tok, err := oauthCfg.TokenSource(ctx, cached).Token()
	if err != nil {
		return nil, errors.NewAuthentication(providerErrorDescription(err))
	}
	return tok, nil
}

// SignOut revokes the held token with the provider and clears the local
// cache. Idempotent when no token is held. Revocation is best-effort: the
// local state is cleared even when the provider call fails.
func (s *Session) SignOut(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateReady {
		defer s.mu.Unlock()
		return readyError(s.state)
	}
	tok := s.token
	s.token = nil
	s.mu.Unlock()

	clearToken(s.baseDir)
	if tok == nil {
		return nil
	}
	s.revoke(ctx, tok.AccessToken)
	return nil
}

// revoke posts the token to the provider's revocation endpoint.
func (s *Session) revoke(ctx context.Context, accessToken string) {
	url := s.endpoints.RevokeURL + "?token=" + accessToken
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if resp, err := s.httpClient.Do(req); err == nil {
		resp.Body.Close()
	}
}

// TokenSource returns an oauth2.TokenSource backed by the session. Each
// Token call re-checks readiness and the signed-in state, so a gateway
// holding the source fails fast after sign-out or a failed init.
func (s *Session) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &sessionTokenSource{s: s, ctx: ctx}
}

type sessionTokenSource struct {
	s   *Session
	ctx context.Context
}

// Token implements oauth2.TokenSource.
func (ts *sessionTokenSource) Token() (*oauth2.Token, error) {
	s := ts.s
	s.mu.Lock()
	if s.state != StateReady {
		defer s.mu.Unlock()
		return nil, readyError(s.state)
	}
	if s.token == nil {
		s.mu.Unlock()
		return nil, errors.NewAuthentication("sign in required")
	}
	cached := s.token
	oauthCfg := s.oauthCfg
	s.mu.Unlock()

	ctx := context.WithValue(ts.ctx, oauth2.HTTPClient, s.httpClient)
	tok, err := oauthCfg.TokenSource(ctx, cached).Token()
	if err != nil {
		return nil, errors.NewAuthentication(providerErrorDescription(err))
	}

	if tok.AccessToken != cached.AccessToken {
		s.mu.Lock()
		s.token = tok
		s.mu.Unlock()
		_ = saveToken(s.baseDir, tok)
	}
	return tok, nil
}

// providerErrorDescription extracts a human-readable description from a
// provider error response, falling back to the raw error text.
func providerErrorDescription(err error) string {
	if rErr, ok := err.(*oauth2.RetrieveError); ok {
		if rErr.ErrorDescription != "" {
			return fmt.Sprintf("%s: %s", rErr.ErrorCode, rErr.ErrorDescription)
		}
		if rErr.ErrorCode != "" {
			return rErr.ErrorCode
		}
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
