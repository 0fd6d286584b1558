package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"

	"golang.org/x/oauth2"

	"github.com/hpungsan/chronobox/internal/errors"
)

// callbackResult carries the outcome of the loopback redirect.
type callbackResult struct {
	code string
	err  error
}

// interactiveSignIn runs the authorization-code flow against a loopback
// redirect: start a one-shot listener, open the consent page in the
// browser (forcing the account chooser and consent screen, matching a
// first-time sign-in), wait for the redirect, then exchange the code.
func (s *Session) interactiveSignIn(ctx context.Context, oauthCfg *oauth2.Config) (*oauth2.Token, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to start redirect listener: %w", err))
	}
	defer listener.Close()

	state, err := randomState()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	cfg := *oauthCfg
	cfg.RedirectURL = fmt.Sprintf("http://%s/callback", listener.Addr().String())

	results := make(chan callbackResult, 1)
	srv := &http.Server{Handler: callbackHandler(state, results)}
	go func() { _ = srv.Serve(listener) }()
	defer srv.Close()

	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent select_account"),
	)
	if err := s.openBrowser(authURL); err != nil {
		return nil, errors.NewPopupBlocked()
	}

	var result callbackResult
	select {
	case result = <-results:
	case <-ctx.Done():
		return nil, errors.NewAuthentication("sign-in timed out waiting for the browser")
	}
	if result.err != nil {
		return nil, result.err
	}

	exchangeCtx := context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	tok, err := cfg.Exchange(exchangeCtx, result.code)
	if err != nil {
		return nil, errors.NewAuthentication(providerErrorDescription(err))
	}
	return tok, nil
}

// callbackHandler accepts the provider redirect, validates the state
// parameter, and reports the authorization code or provider error.
func callbackHandler(state string, results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/callback" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()

		if errCode := q.Get("error"); errCode != "" {
			desc := q.Get("error_description")
			if desc == "" {
				desc = errCode
			}
			results <- callbackResult{err: errors.NewAuthentication(desc)}
			fmt.Fprint(w, "Sign-in failed. You can close this window.")
			return
		}
		if q.Get("state") != state {
			results <- callbackResult{err: errors.NewAuthentication("state mismatch in sign-in redirect")}
			fmt.Fprint(w, "Sign-in failed. You can close this window.")
			return
		}

		results <- callbackResult{code: q.Get("code")}
		fmt.Fprint(w, "Signed in. You can close this window and return to ChronoBox.")
	})
}

// randomState generates the CSRF state parameter.
func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// launchBrowser opens url in the platform's default browser.
func launchBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
