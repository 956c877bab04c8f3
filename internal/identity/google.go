package identity

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/fmuoria/veriskill/internal/models"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// Authorizer hands out an HTTP client carrying the user's Google token
type Authorizer interface {
	Client(ctx context.Context) (*http.Client, error)
	Forget()
}

// Google signs in for real through the Google button and falls back to the
// simulation for every other path
type Google struct {
	Simulated
	auth Authorizer
	log  *slog.Logger

	// endpoint overrides the userinfo base URL in tests
	endpoint string
}

// NewGoogle creates a Google-backed provider
func NewGoogle(auth Authorizer, log *slog.Logger) *Google {
	return &Google{
		auth: auth,
		log:  log,
	}
}

// Social implements Provider
func (g *Google) Social(ctx context.Context, provider string) (models.Credential, error) {
	canonical, ok := LookupProvider(provider)
	if !ok || canonical != "Google" {
		return g.Simulated.Social(ctx, provider)
	}

	client, err := g.auth.Client(ctx)
	if err != nil {
		return models.Credential{}, fmt.Errorf("google sign-in failed: %w", err)
	}

	opts := []option.ClientOption{option.WithHTTPClient(client)}
	if g.endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.endpoint))
	}
	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return models.Credential{}, fmt.Errorf("unable to create userinfo client: %w", err)
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return models.Credential{}, fmt.Errorf("failed to get user info: %w", err)
	}

	name := info.Name
	if name == "" {
		name = info.Email
	}
	g.log.Info("google sign-in", "email", info.Email)

	return models.Credential{
		Email:  info.Email,
		Name:   name,
		Avatar: info.Picture,
	}, nil
}

// SignOut drops the held Google token
func (g *Google) SignOut() {
	g.auth.Forget()
}
