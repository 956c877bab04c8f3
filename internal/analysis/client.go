// Package analysis runs the skill authenticity audit against the hosted model.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/fmuoria/veriskill/internal/document"
	"github.com/fmuoria/veriskill/internal/llm"
	"github.com/fmuoria/veriskill/internal/models"
	"github.com/xeipuuv/gojsonschema"
)

// Both messages are shown to users verbatim.
var (
	// ErrUnsupportedDocument is returned before any request when the document is not a PDF
	ErrUnsupportedDocument = errors.New("Currently, only PDF files are processed for technical analysis. Please use PDF format.") //nolint:stylecheck // ST1005: user-facing sentence

	// ErrAnalysisFailed replaces every transport, parse and schema failure
	ErrAnalysisFailed = errors.New("Failed to analyze resume. Please check your file and try again.") //nolint:stylecheck // ST1005: user-facing sentence
)

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(responseSchema.JSONSchema()))
})

// Client audits one resume per call
type Client struct {
	generator llm.Generator
	log       *slog.Logger
}

// NewClient creates a new analysis client
func NewClient(generator llm.Generator, log *slog.Logger) *Client {
	return &Client{
		generator: generator,
		log:       log,
	}
}

// CheckMediaType fails fast for any document type other than PDF
func CheckMediaType(mediaType string) error {
	if mediaType != document.MediaTypePDF {
		return ErrUnsupportedDocument
	}
	return nil
}

// Analyze sends the encoded document and profile link to the model and
// returns its verdict. Exactly one request is made; there is no retry.
func (c *Client) Analyze(ctx context.Context, encodedDoc, mediaType, profileLink string) (models.AnalysisResult, error) {
	if err := CheckMediaType(mediaType); err != nil {
		return models.AnalysisResult{}, err
	}

	reply, err := c.generator.Generate(ctx, buildRequest(encodedDoc, mediaType, profileLink))
	if err != nil {
		c.log.Error("gemini analysis error", "err", err)
		return models.AnalysisResult{}, ErrAnalysisFailed
	}

	result, err := parseResult(reply)
	if err != nil {
		c.log.Error("gemini analysis error", "err", err, "reply", reply)
		return models.AnalysisResult{}, ErrAnalysisFailed
	}

	c.log.Info("analysis complete",
		"score", result.Score,
		"risk", result.RiskLevel,
		"skills", len(result.Skills))

	return result, nil
}

// parseResult validates the reply against the response schema and decodes it
func parseResult(reply string) (models.AnalysisResult, error) {
	cleaned := cleanJSON(reply)
	if cleaned == "" {
		return models.AnalysisResult{}, errors.New("empty response from model")
	}

	schema, err := compiledSchema()
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("failed to compile response schema: %w", err)
	}

	res, err := schema.Validate(gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return models.AnalysisResult{}, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return models.AnalysisResult{}, fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return models.AnalysisResult{}, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	result.RiskLevel = models.ParseRiskLevel(string(result.RiskLevel))
	for i := range result.Skills {
		result.Skills[i].Status = models.ParseSkillStatus(string(result.Skills[i].Status))
	}

	return result, nil
}

// cleanJSON strips surrounding whitespace and markdown code fences
func cleanJSON(input string) string {
	clean := strings.TrimSpace(input)

	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")

	return strings.TrimSpace(clean)
}
