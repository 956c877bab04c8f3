// Package googleauth runs the installed-app OAuth flow against Google with a
// loopback redirect. Tokens are held in memory only.
package googleauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	oauth2api "google.golang.org/api/oauth2/v2"
)

// Scopes covers the identity lookup and Gmail attachment import
var Scopes = []string{
	oauth2api.UserinfoEmailScope,
	oauth2api.UserinfoProfileScope,
	gmail.GmailReadonlyScope,
}

// ConfigFromFile reads an OAuth client credentials file downloaded from the
// Google Cloud console
func ConfigFromFile(path string, scopes ...string) (*oauth2.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}
	return config, nil
}

// Flow obtains and holds one user's token
type Flow struct {
	config  *oauth2.Config
	openURL func(string) error
	log     *slog.Logger

	mu    sync.Mutex
	token *oauth2.Token
}

// NewFlow creates a flow. openURL sends the user to the consent page; when it
// is nil or fails, the URL is logged for the user to open by hand.
func NewFlow(config *oauth2.Config, openURL func(string) error, log *slog.Logger) *Flow {
	return &Flow{
		config:  config,
		openURL: openURL,
		log:     log,
	}
}

type callbackResult struct {
	code string
	err  error
}

// Token returns the held token or runs the consent flow to obtain one
func (f *Flow) Token(ctx context.Context) (*oauth2.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.token != nil {
		return f.token, nil
	}

	tok, err := f.authorize(ctx)
	if err != nil {
		return nil, err
	}
	f.token = tok
	return tok, nil
}

// Client returns an HTTP client authorized with the user's token
func (f *Flow) Client(ctx context.Context) (*http.Client, error) {
	tok, err := f.Token(ctx)
	if err != nil {
		return nil, err
	}
	return f.config.Client(ctx, tok), nil
}

// Forget drops the held token, e.g. on sign-out
func (f *Flow) Forget() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = nil
}

func (f *Flow) authorize(ctx context.Context) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to start oauth callback listener: %w", err)
	}

	config := *f.config
	config.RedirectURL = fmt.Sprintf("http://%s/callback", ln.Addr().String())
	state := uuid.NewString()

	results := make(chan callbackResult, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("state") != state:
			http.Error(w, "invalid state", http.StatusBadRequest)
			deliver(results, callbackResult{err: errors.New("oauth callback state mismatch")})
		case q.Get("error") != "":
			http.Error(w, "authorization denied", http.StatusForbidden)
			deliver(results, callbackResult{err: fmt.Errorf("authorization denied: %s", q.Get("error"))})
		default:
			fmt.Fprint(w, "Sign-in complete. You can close this window.")
			deliver(results, callbackResult{code: q.Get("code")})
		}
	})

	srv := &http.Server{Handler: mux}
	go srv.Serve(ln)
	defer srv.Shutdown(context.Background())

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline)
	if f.openURL == nil || f.openURL(authURL) != nil {
		f.log.Info("open this link in your browser to continue", "url", authURL)
	}

	var res callbackResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-results:
	}
	if res.err != nil {
		return nil, res.err
	}

	tok, err := config.Exchange(ctx, res.code)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token from web: %w", err)
	}
	return tok, nil
}

// deliver keeps the first callback; later hits are ignored
func deliver(ch chan callbackResult, res callbackResult) {
	select {
	case ch <- res:
	default:
	}
}
