// Package views holds the view-models shared by the web, desktop and terminal
// front-ends. Everything here is a pure function of controller state, except
// the Rotator which owns a timer local to the loading view.
package views

import (
	"fmt"
	"strconv"

	"github.com/fmuoria/veriskill/internal/models"
)

// ringCircumference is the stroke length of the score ring (r=70)
const ringCircumference = 440

// Tone is the colour family used for badges, icons and bars
type Tone string

const (
	ToneGreen  Tone = "green"
	ToneYellow Tone = "yellow"
	ToneRed    Tone = "red"
	ToneGray   Tone = "gray"
)

// Hex returns the foreground colour of the tone
func (t Tone) Hex() string {
	switch t {
	case ToneGreen:
		return "#4ade80"
	case ToneYellow:
		return "#facc15"
	case ToneRed:
		return "#f87171"
	default:
		return "#9ca3af"
	}
}

// RiskTone maps a risk level to its badge colour. Unknown levels are gray.
func RiskTone(r models.RiskLevel) Tone {
	switch r {
	case models.RiskLow:
		return ToneGreen
	case models.RiskMedium:
		return ToneYellow
	case models.RiskHigh:
		return ToneRed
	default:
		return ToneGray
	}
}

// StatusTone maps a skill status to its indicator colour. Unknown statuses are gray.
func StatusTone(s models.SkillStatus) Tone {
	switch s {
	case models.StatusGenuine:
		return ToneGreen
	case models.StatusExaggerated:
		return ToneYellow
	case models.StatusFake:
		return ToneRed
	default:
		return ToneGray
	}
}

// StatusIcon returns the icon name shown next to a skill, or "" for unknown statuses
func StatusIcon(s models.SkillStatus) string {
	switch s {
	case models.StatusGenuine:
		return "fa-check-circle"
	case models.StatusExaggerated:
		return "fa-circle-exclamation"
	case models.StatusFake:
		return "fa-triangle-exclamation"
	default:
		return ""
	}
}

// SkillCard is one entry of the skill breakdown
type SkillCard struct {
	Name            string
	Status          models.SkillStatus
	Icon            string
	Tone            Tone
	ConfidenceLabel string
	BarWidth        float64 // percent, clamped to 0-100
	Reason          string
}

// Dashboard is the results view
type Dashboard struct {
	Score       float64
	ScoreLabel  string
	DashOffset  float64
	RiskLevel   models.RiskLevel
	RiskLabel   string
	RiskTone    Tone
	Candidate   string
	Summary     string
	Explanation string
	Skills      []SkillCard
}

// NewDashboard builds the results view for a verdict
func NewDashboard(result models.AnalysisResult) Dashboard {
	scoreLabel := formatNumber(result.Score)

	candidate := result.CandidateName
	if candidate == "" {
		candidate = "the candidate"
	}

	d := Dashboard{
		Score:       result.Score,
		ScoreLabel:  scoreLabel,
		DashOffset:  ringCircumference - ringCircumference*clampPercent(result.Score)/100,
		RiskLevel:   result.RiskLevel,
		RiskLabel:   fmt.Sprintf("%s Risk Detected", result.RiskLevel),
		RiskTone:    RiskTone(result.RiskLevel),
		Candidate:   candidate,
		Summary:     fmt.Sprintf("Analysis for %s reveals an authenticity score of %s/100.", candidate, scoreLabel),
		Explanation: result.Explanation,
		Skills:      make([]SkillCard, 0, len(result.Skills)),
	}

	for _, s := range result.Skills {
		d.Skills = append(d.Skills, SkillCard{
			Name:            s.Name,
			Status:          s.Status,
			Icon:            StatusIcon(s.Status),
			Tone:            StatusTone(s.Status),
			ConfidenceLabel: formatNumber(s.Confidence) + "%",
			BarWidth:        clampPercent(s.Confidence),
			Reason:          s.Reason,
		})
	}

	return d
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
