// Package identity captures who is using the app. The default provider is a
// simulation: any credential input succeeds and nothing is verified.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fmuoria/veriskill/internal/models"
)

var (
	// ErrMissingField is returned when a required form field is blank
	ErrMissingField = errors.New("please fill in all required fields")

	// ErrUnknownProvider is returned for social providers not offered
	ErrUnknownProvider = errors.New("unknown sign-in provider")
)

// SocialProviders are the social sign-in buttons, in display order
var SocialProviders = []string{"Google", "GitHub", "LinkedIn"}

// Provider turns credential form input into a Credential
type Provider interface {
	SignIn(ctx context.Context, email, password string) (models.Credential, error)
	SignUp(ctx context.Context, name, email, password string) (models.Credential, error)
	Social(ctx context.Context, provider string) (models.Credential, error)
	SignOut()
}

// Simulated accepts any input. Sign-in derives the display name from the
// email local part; sign-up uses the entered name.
type Simulated struct{}

// SignIn implements Provider
func (Simulated) SignIn(_ context.Context, email, password string) (models.Credential, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return models.Credential{}, ErrMissingField
	}

	name, _, _ := strings.Cut(email, "@")
	return models.Credential{Email: email, Name: name}, nil
}

// SignUp implements Provider
func (Simulated) SignUp(_ context.Context, name, email, password string) (models.Credential, error) {
	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return models.Credential{}, ErrMissingField
	}
	return models.Credential{Email: email, Name: name}, nil
}

// Social implements Provider
func (Simulated) Social(_ context.Context, provider string) (models.Credential, error) {
	canonical, ok := LookupProvider(provider)
	if !ok {
		return models.Credential{}, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	return models.Credential{
		Email: strings.ToLower(canonical) + "@example.com",
		Name:  fmt.Sprintf("Social User (%s)", canonical),
	}, nil
}

// SignOut implements Provider; there is nothing to forget
func (Simulated) SignOut() {}

// LookupProvider returns the display spelling of a social provider name
func LookupProvider(name string) (string, bool) {
	for _, p := range SocialProviders {
		if strings.EqualFold(strings.TrimSpace(name), p) {
			return p, true
		}
	}
	return "", false
}
