package models

import (
	"encoding/json"
	"testing"

	"github.com/fmuoria/veriskill/internal/document"
)

func TestAnalysisResultDecodesModelReply(t *testing.T) {
	reply := `{"score":72,"riskLevel":"Medium","skills":[{"name":"Rust","confidence":60,"status":"Exaggerated","reason":"depth mismatch"}],"explanation":"..."}`

	var result AnalysisResult
	if err := json.Unmarshal([]byte(reply), &result); err != nil {
		t.Fatalf("Failed to unmarshal AnalysisResult: %v", err)
	}

	if result.Score != 72 {
		t.Errorf("Expected score 72, got %v", result.Score)
	}
	if result.RiskLevel != RiskMedium {
		t.Errorf("Expected risk %s, got %s", RiskMedium, result.RiskLevel)
	}
	if result.CandidateName != "" {
		t.Errorf("Expected empty candidate name, got %q", result.CandidateName)
	}
	if len(result.Skills) != 1 || result.Skills[0].Status != StatusExaggerated {
		t.Errorf("Unexpected skills: %+v", result.Skills)
	}
}

func TestCandidateNameOmittedWhenEmpty(t *testing.T) {
	data, err := json.Marshal(AnalysisResult{Score: 10, RiskLevel: RiskHigh})
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}
	if _, ok := raw["candidateName"]; ok {
		t.Errorf("Expected candidateName to be omitted, got %s", data)
	}
}

func TestParseRiskLevel(t *testing.T) {
	tests := []struct {
		in   string
		want RiskLevel
	}{
		{"Low", RiskLow},
		{"medium", RiskMedium},
		{" HIGH ", RiskHigh},
		{"Severe", RiskLevel("Severe")},
	}
	for _, tt := range tests {
		if got := ParseRiskLevel(tt.in); got != tt.want {
			t.Errorf("ParseRiskLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseSkillStatus(t *testing.T) {
	tests := []struct {
		in   string
		want SkillStatus
	}{
		{"Genuine", StatusGenuine},
		{"exaggerated", StatusExaggerated},
		{"FAKE", StatusFake},
		{"Unclear", SkillStatus("Unclear")},
	}
	for _, tt := range tests {
		if got := ParseSkillStatus(tt.in); got != tt.want {
			t.Errorf("ParseSkillStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSubmissionFormComplete(t *testing.T) {
	doc := document.FromBytes("cv.pdf", "application/pdf", []byte("%PDF-1.4"))

	tests := []struct {
		name string
		form SubmissionForm
		want bool
	}{
		{"Link and document", SubmissionForm{ProfileLink: "https://linkedin.com/in/jdoe", Document: doc}, true},
		{"Missing document", SubmissionForm{ProfileLink: "https://linkedin.com/in/jdoe"}, false},
		{"Blank link", SubmissionForm{ProfileLink: "   ", Document: doc}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.form.Complete(); got != tt.want {
				t.Errorf("Complete() = %v, want %v", got, tt.want)
			}
		})
	}
}
