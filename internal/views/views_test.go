package views

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/fmuoria/veriskill/internal/document"
	"github.com/fmuoria/veriskill/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardScenario(t *testing.T) {
	d := NewDashboard(models.AnalysisResult{
		Score:     72,
		RiskLevel: models.RiskMedium,
		Skills: []models.SkillFinding{
			{Name: "Rust", Confidence: 60, Status: models.StatusExaggerated, Reason: "depth mismatch"},
		},
		Explanation: "...",
	})

	assert.Equal(t, "72", d.ScoreLabel)
	assert.Equal(t, "Medium Risk Detected", d.RiskLabel)
	assert.Equal(t, ToneYellow, d.RiskTone)
	assert.InDelta(t, 123.2, d.DashOffset, 1e-9)
	assert.Equal(t, "the candidate", d.Candidate)
	assert.Equal(t, "Analysis for the candidate reveals an authenticity score of 72/100.", d.Summary)
	assert.Equal(t, "...", d.Explanation)

	require.Len(t, d.Skills, 1)
	card := d.Skills[0]
	assert.Equal(t, "Rust", card.Name)
	assert.Equal(t, ToneYellow, card.Tone)
	assert.Equal(t, "fa-circle-exclamation", card.Icon)
	assert.Equal(t, "60%", card.ConfidenceLabel)
	assert.Equal(t, 60.0, card.BarWidth)
	assert.Equal(t, "depth mismatch", card.Reason)
}

func TestDashboardUsesCandidateName(t *testing.T) {
	d := NewDashboard(models.AnalysisResult{Score: 88.5, RiskLevel: models.RiskLow, CandidateName: "Jane Doe"})
	assert.Equal(t, "Jane Doe", d.Candidate)
	assert.Equal(t, "88.5", d.ScoreLabel)
	assert.Empty(t, d.Skills)
}

func TestDashOffsetClamped(t *testing.T) {
	tests := []struct {
		score float64
		want  float64
	}{
		{0, 440},
		{100, 0},
		{50, 220},
		{-5, 440},
		{150, 0},
	}
	for _, tt := range tests {
		if got := NewDashboard(models.AnalysisResult{Score: tt.score}).DashOffset; got != tt.want {
			t.Errorf("DashOffset for %v = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestTones(t *testing.T) {
	assert.Equal(t, ToneGreen, RiskTone(models.RiskLow))
	assert.Equal(t, ToneRed, RiskTone(models.RiskHigh))
	assert.Equal(t, ToneGray, RiskTone("Severe"))

	assert.Equal(t, ToneGreen, StatusTone(models.StatusGenuine))
	assert.Equal(t, ToneRed, StatusTone(models.StatusFake))
	assert.Equal(t, ToneGray, StatusTone("Unclear"))
	assert.Empty(t, StatusIcon("Unclear"))

	assert.Equal(t, "#facc15", ToneYellow.Hex())
	assert.Equal(t, "#9ca3af", Tone("").Hex())
}

func TestDashboardKeepsModelTextVerbatim(t *testing.T) {
	d := NewDashboard(models.AnalysisResult{
		CandidateName: "Ada <Lovelace>",
		Explanation:   "Claims fluency with Vec<T> and Option<Box<dyn Error>> but shows none.",
		Skills: []models.SkillFinding{{
			Name:   "C++ <templates>",
			Reason: "uses std::vector<int> only; a<b comparisons &amp; nothing else",
			Status: models.StatusFake,
		}},
	})
	assert.Equal(t, "Claims fluency with Vec<T> and Option<Box<dyn Error>> but shows none.", d.Explanation)
	assert.Equal(t, "Ada <Lovelace>", d.Candidate)
	assert.Equal(t, "C++ <templates>", d.Skills[0].Name)
	assert.Equal(t, "uses std::vector<int> only; a<b comparisons &amp; nothing else", d.Skills[0].Reason)
}

func TestIsDroppable(t *testing.T) {
	tests := []struct {
		mediaType string
		want      bool
	}{
		{document.MediaTypePDF, true},
		{document.MediaTypeDOC, true},
		{document.MediaTypeDOCX, true},
		{"image/png", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsDroppable(tt.mediaType); got != tt.want {
			t.Errorf("IsDroppable(%q) = %v, want %v", tt.mediaType, got, tt.want)
		}
	}
}

func TestUploadHint(t *testing.T) {
	assert.Equal(t, "or browse your files", UploadHint(0))
	assert.Equal(t, "or browse your files (Max 5MB)", UploadHint(5<<20))
}

func TestNavbar(t *testing.T) {
	assert.False(t, Navbar(nil).SignedIn)

	nav := Navbar(&models.Credential{Email: "jane@corp.com", Name: "Jane Doe"})
	assert.True(t, nav.SignedIn)
	assert.Equal(t, "https://ui-avatars.com/api/?name=Jane+Doe&background=5b7cfa&color=fff", nav.AvatarURL)

	nav = Navbar(&models.Credential{Email: "a@b.c", Name: "A", Avatar: "https://img/a.png"})
	assert.Equal(t, "https://img/a.png", nav.AvatarURL)
}

func TestAuthText(t *testing.T) {
	assert.Equal(t, "Welcome Back", Auth(false).Title)
	assert.Equal(t, "Sign Up", Auth(false).ToggleAction)
	assert.Equal(t, "Create Account", Auth(true).Submit)
	assert.True(t, Auth(true).SignUp)
}

func TestRotatorCyclesAndStops(t *testing.T) {
	var changes atomic.Int32
	r := NewRotator(5*time.Millisecond, []string{"a", "b", "c"}, func(string) { changes.Add(1) })
	assert.Equal(t, "a", r.Current())

	require.Eventually(t, func() bool { return changes.Load() >= 3 }, time.Second, time.Millisecond)

	r.Stop()
	r.Stop()
	settled := changes.Load()
	time.Sleep(30 * time.Millisecond)
	assert.LessOrEqual(t, changes.Load(), settled+1, "no ticks after stop")
}

func TestLoaderMessages(t *testing.T) {
	msgs := LoaderMessages()
	require.Len(t, msgs, 6)
	assert.Equal(t, "Extracting candidate metadata...", msgs[0])
	assert.Equal(t, 2500*time.Millisecond, LoaderInterval)
}
