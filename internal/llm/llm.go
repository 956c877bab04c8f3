// Package llm is the transport to the hosted generative model. Requests are
// described in backend-neutral terms and translated by each Generator.
package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/fmuoria/veriskill/internal/config"
)

// Backend names accepted in configuration
const (
	BackendGemini = "gemini"
	BackendVertex = "vertex"
)

// Generator performs exactly one generate-content round trip and returns
// the reply text
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Request is one multi-part prompt plus output constraints
type Request struct {
	SystemInstruction string
	Parts             []Part
	ResponseMIMEType  string
	ResponseSchema    *Schema
}

// Part is either text or inline binary data carried as base64
type Part struct {
	Text     string
	MIMEType string
	Data     string
}

// TextPart builds a text part
func TextPart(text string) Part {
	return Part{Text: text}
}

// InlinePart builds an inline data part from base64-encoded bytes
func InlinePart(mimeType, base64Data string) Part {
	return Part{MIMEType: mimeType, Data: base64Data}
}

// IsInline reports whether the part carries binary data
func (p Part) IsInline() bool {
	return p.MIMEType != ""
}

// Bytes decodes the inline payload
func (p Part) Bytes() ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(p.Data)
	if err != nil {
		return nil, fmt.Errorf("invalid inline data for %s: %w", p.MIMEType, err)
	}
	return data, nil
}

// New returns the generator selected by cfg.Backend
func New(cfg *config.Config) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendGemini:
		return &GeminiGenerator{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.Model,
		}, nil
	case BackendVertex:
		return &VertexGenerator{
			ProjectID:       cfg.GoogleCloudProject,
			Location:        cfg.GoogleCloudLocation,
			CredentialsPath: cfg.GoogleCredentialsPath,
			Model:           cfg.Model,
		}, nil
	default:
		return nil, fmt.Errorf("unknown model backend %q (want %q or %q)", cfg.Backend, BackendGemini, BackendVertex)
	}
}
