package models

import (
	"strings"

	"github.com/fmuoria/veriskill/internal/document"
)

// RiskLevel is the coarse classification derived from the authenticity score
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// SkillStatus is the per-skill verdict
type SkillStatus string

const (
	StatusGenuine     SkillStatus = "Genuine"
	StatusExaggerated SkillStatus = "Exaggerated"
	StatusFake        SkillStatus = "Fake"
)

// ParseRiskLevel maps a model-supplied value onto its canonical spelling.
// Unknown values are returned unchanged so views can fall back to a neutral style.
func ParseRiskLevel(s string) RiskLevel {
	for _, r := range []RiskLevel{RiskLow, RiskMedium, RiskHigh} {
		if strings.EqualFold(strings.TrimSpace(s), string(r)) {
			return r
		}
	}
	return RiskLevel(s)
}

// ParseSkillStatus maps a model-supplied value onto its canonical spelling
func ParseSkillStatus(s string) SkillStatus {
	for _, st := range []SkillStatus{StatusGenuine, StatusExaggerated, StatusFake} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st
		}
	}
	return SkillStatus(s)
}

// SkillFinding is the model's assessment of one claimed skill
type SkillFinding struct {
	Name       string      `json:"name"`
	Confidence float64     `json:"confidence"` // 0-100
	Status     SkillStatus `json:"status"`
	Reason     string      `json:"reason"`
}

// AnalysisResult is the structured verdict returned by the model
type AnalysisResult struct {
	Score         float64        `json:"score"` // 0-100
	RiskLevel     RiskLevel      `json:"riskLevel"`
	Skills        []SkillFinding `json:"skills"`
	Explanation   string         `json:"explanation"`
	CandidateName string         `json:"candidateName,omitempty"`
}

// Credential is the client-side identity stand-in. It is never verified.
type Credential struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// SubmissionForm holds the user's input for one analysis
type SubmissionForm struct {
	ProfileLink string
	Document    *document.Document
}

// Complete reports whether both a profile link and a document are present
func (f SubmissionForm) Complete() bool {
	return strings.TrimSpace(f.ProfileLink) != "" && f.Document != nil
}

// View enumerates the screens of the front-end
type View string

const (
	ViewLanding         View = "landing"
	ViewCredentialEntry View = "credential-entry"
	ViewUpload          View = "upload-and-submit"
	ViewInProgress      View = "in-progress"
	ViewResults         View = "results"
)
