package analysis

import (
	"fmt"

	"github.com/fmuoria/veriskill/internal/llm"
)

const systemInstruction = `
You are a world-class Technical Auditor and Expert Recruiter.
Analyze the provided Resume (PDF) and reference the LinkedIn profile link provided.

1. Extract all technical skills mentioned in the resume.
2. Assess the authenticity of each skill based on:
   - Logical consistency within the project descriptions.
   - Context of career progression and professional history.
   - Technical depth described (e.g., does the description match real-world complexity?).
   - Presence of common 'buzzword padding' or 'tutorial hell' patterns.
3. Use the LinkedIn profile URL as a contextual reference to cross-verify professional history and endorsements where possible through logical deduction.
4. Calculate an overall Authenticity Score (100 is perfectly genuine, < 50 is high risk).
5. Categorize the Risk Level (Low, Medium, High).

Output must be strictly JSON according to the schema.
`

const auditInstruction = "Please perform the skill authenticity audit now."

// responseSchema is sent to the model and used to validate its reply
var responseSchema = &llm.Schema{
	Type: llm.TypeObject,
	Properties: map[string]*llm.Schema{
		"score":         {Type: llm.TypeNumber, Description: "Authenticity score from 0-100"},
		"riskLevel":     {Type: llm.TypeString, Description: "Risk level: Low, Medium, or High"},
		"candidateName": {Type: llm.TypeString, Description: "Extracted name of the candidate"},
		"skills": {
			Type: llm.TypeArray,
			Items: &llm.Schema{
				Type: llm.TypeObject,
				Properties: map[string]*llm.Schema{
					"name":       {Type: llm.TypeString},
					"confidence": {Type: llm.TypeNumber, Description: "Confidence score 0-100"},
					"status":     {Type: llm.TypeString, Description: "Genuine, Exaggerated, or Fake"},
					"reason":     {Type: llm.TypeString, Description: "Brief justification for this assessment"},
				},
				Required: []string{"name", "confidence", "status", "reason"},
			},
		},
		"explanation": {Type: llm.TypeString, Description: "A detailed summary of the findings"},
	},
	Required: []string{"score", "riskLevel", "skills", "explanation"},
}

// buildRequest assembles the audit prompt: instructions, profile link,
// the encoded document and the trailing audit instruction
func buildRequest(encodedDoc, mediaType, profileLink string) llm.Request {
	return llm.Request{
		SystemInstruction: systemInstruction,
		Parts: []llm.Part{
			llm.TextPart(fmt.Sprintf("LinkedIn Profile: %s", profileLink)),
			llm.InlinePart(mediaType, encodedDoc),
			llm.TextPart(auditInstruction),
		},
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	}
}
