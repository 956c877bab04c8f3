package googleauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fmuoria/veriskill/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func tokenServer(t *testing.T, exchanges *atomic.Int32) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		exchanges.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"access-123","token_type":"Bearer","expires_in":3600}`))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testConfig(tokenURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		Scopes:       Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.example.com/auth",
			TokenURL: tokenURL,
		},
	}
}

// browser follows the consent URL straight to the redirect, as if the user approved
func browser(t *testing.T, override url.Values) func(string) error {
	return func(authURL string) error {
		u, err := url.Parse(authURL)
		require.NoError(t, err)

		q := url.Values{
			"code":  {"auth-code"},
			"state": {u.Query().Get("state")},
		}
		for k, v := range override {
			q[k] = v
		}

		resp, err := http.Get(u.Query().Get("redirect_uri") + "?" + q.Encode())
		if err != nil {
			return err
		}
		resp.Body.Close()
		return nil
	}
}

func TestFlowObtainsAndHoldsToken(t *testing.T) {
	var exchanges atomic.Int32
	ts := tokenServer(t, &exchanges)
	flow := NewFlow(testConfig(ts.URL), browser(t, nil), logging.Discard())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tok, err := flow.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-123", tok.AccessToken)

	again, err := flow.Token(ctx)
	require.NoError(t, err)
	assert.Same(t, tok, again)
	assert.Equal(t, int32(1), exchanges.Load())

	flow.Forget()
	_, err = flow.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), exchanges.Load())
}

func TestFlowRejectsBadCallbacks(t *testing.T) {
	tests := []struct {
		name     string
		override url.Values
		want     string
	}{
		{name: "State mismatch", override: url.Values{"state": {"forged"}}, want: "state mismatch"},
		{name: "User denied", override: url.Values{"error": {"access_denied"}}, want: "access_denied"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var exchanges atomic.Int32
			ts := tokenServer(t, &exchanges)
			flow := NewFlow(testConfig(ts.URL), browser(t, tt.override), logging.Discard())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_, err := flow.Token(ctx)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Zero(t, exchanges.Load())
		})
	}
}

func TestFlowHonoursContext(t *testing.T) {
	flow := NewFlow(testConfig("http://127.0.0.1:1/token"), nil, logging.Discard())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := flow.Token(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	creds := `{"installed":{"client_id":"id.apps.googleusercontent.com","client_secret":"s","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`
	require.NoError(t, os.WriteFile(path, []byte(creds), 0600))

	config, err := ConfigFromFile(path, Scopes...)
	require.NoError(t, err)
	assert.Equal(t, "id.apps.googleusercontent.com", config.ClientID)
	assert.Equal(t, Scopes, config.Scopes)

	_, err = ConfigFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
