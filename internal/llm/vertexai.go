package llm

import (
	"context"
	"fmt"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

// VertexGenerator calls Gemini through Vertex AI using project credentials
type VertexGenerator struct {
	ProjectID       string
	Location        string
	CredentialsPath string
	Model           string
}

// Generate sends the request to Vertex AI and returns the reply text
func (v *VertexGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if v.ProjectID == "" {
		return "", fmt.Errorf("google_cloud_project is required for the vertex backend")
	}

	location := v.Location
	if location == "" {
		location = "us-central1" // Default location
	}

	var opts []option.ClientOption
	if v.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(v.CredentialsPath))
	}

	client, err := genai.NewClient(ctx, v.ProjectID, location, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create Vertex AI client: %w", err)
	}
	defer client.Close()

	name := v.Model
	if name == "" {
		name = DefaultModel
	}
	model := client.GenerativeModel(name)
	model.ResponseMIMEType = req.ResponseMIMEType
	model.ResponseSchema = vertexSchema(req.ResponseSchema)
	if req.SystemInstruction != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemInstruction)}}
	}

	parts, err := vertexParts(req.Parts)
	if err != nil {
		return "", err
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response candidates returned")
	}

	// Extract text from response
	var result string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			result += string(text)
		}
	}

	return result, nil
}

func vertexParts(parts []Part) ([]genai.Part, error) {
	out := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		if !p.IsInline() {
			out = append(out, genai.Text(p.Text))
			continue
		}
		data, err := p.Bytes()
		if err != nil {
			return nil, err
		}
		out = append(out, genai.Blob{MIMEType: p.MIMEType, Data: data})
	}
	return out, nil
}

func vertexSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        vertexType(s.Type),
		Description: s.Description,
		Required:    s.Required,
		Items:       vertexSchema(s.Items),
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = vertexSchema(prop)
		}
	}
	return out
}

func vertexType(t Type) genai.Type {
	switch t {
	case TypeObject:
		return genai.TypeObject
	case TypeArray:
		return genai.TypeArray
	case TypeNumber:
		return genai.TypeNumber
	case TypeInteger:
		return genai.TypeInteger
	case TypeBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}
