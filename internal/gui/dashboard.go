package gui

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/fmuoria/veriskill/internal/views"
)

// newDashboardView draws the results: score, risk badge, summary and one card per skill
func newDashboardView(dash views.Dashboard, onReset, onExport func()) fyne.CanvasObject {
	score := canvas.NewText(dash.ScoreLabel, toneColor(dash.RiskTone))
	score.TextSize = 56
	score.TextStyle = fyne.TextStyle{Bold: true}
	score.Alignment = fyne.TextAlignCenter

	outOf := widget.NewLabelWithStyle("/ 100", fyne.TextAlignCenter, fyne.TextStyle{Monospace: true})

	ring := widget.NewProgressBar()
	ring.SetValue(dash.Score / 100)
	ring.TextFormatter = func() string { return "Authenticity Score" }

	badge := newBadge(dash.RiskLabel, dash.RiskTone)

	scoreCard := widget.NewCard("", "", container.NewVBox(score, outOf, ring, container.NewCenter(badge)))

	summary := widget.NewLabel(dash.Summary)
	summary.Wrapping = fyne.TextWrapWord
	summary.TextStyle = fyne.TextStyle{Bold: true}

	explanation := widget.NewLabel(dash.Explanation)
	explanation.Wrapping = fyne.TextWrapWord

	reset := widget.NewButtonWithIcon("Check Another Resume", theme.ViewRefreshIcon(), onReset)
	export := widget.NewButtonWithIcon("Download Report", theme.DownloadIcon(), onExport)
	export.Importance = widget.HighImportance

	summaryCard := widget.NewCard("AI Audit Summary", "", container.NewVBox(
		summary,
		explanation,
		container.NewHBox(reset, export),
	))

	skills := container.NewGridWithColumns(2)
	for _, s := range dash.Skills {
		skills.Add(newSkillCard(s))
	}

	return container.NewPadded(container.NewVBox(
		container.NewGridWithColumns(2, scoreCard, summaryCard),
		widget.NewLabelWithStyle("Skill Verification Breakdown", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		skills,
	))
}

func newSkillCard(s views.SkillCard) fyne.CanvasObject {
	name := widget.NewLabelWithStyle(s.Name, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})

	var status fyne.CanvasObject = newBadge(string(s.Status), s.Tone)
	if icon := statusResource(s.Icon); icon != nil {
		status = container.NewHBox(widget.NewIcon(icon), status)
	}

	confidence := widget.NewProgressBar()
	confidence.SetValue(s.BarWidth / 100)
	label := s.ConfidenceLabel
	confidence.TextFormatter = func() string { return "Confidence " + label }

	reason := widget.NewLabel(fmt.Sprintf("%q", s.Reason))
	reason.Wrapping = fyne.TextWrapWord
	reason.TextStyle = fyne.TextStyle{Italic: true}

	return widget.NewCard("", "", container.NewVBox(
		container.NewBorder(nil, nil, name, status),
		confidence,
		reason,
	))
}

// newBadge is a tinted pill with the text in the tone colour
func newBadge(text string, tone views.Tone) fyne.CanvasObject {
	c := toneColor(tone)

	bg := canvas.NewRectangle(withAlpha(c, 0x33))
	bg.CornerRadius = 10
	bg.StrokeColor = withAlpha(c, 0x80)
	bg.StrokeWidth = 1

	label := canvas.NewText(text, c)
	label.TextStyle = fyne.TextStyle{Bold: true}
	label.Alignment = fyne.TextAlignCenter

	return container.NewStack(bg, container.NewPadded(label))
}

// statusResource maps the dashboard's icon names onto theme icons
func statusResource(icon string) fyne.Resource {
	switch icon {
	case "fa-check-circle":
		return theme.ConfirmIcon()
	case "fa-circle-exclamation":
		return theme.WarningIcon()
	case "fa-triangle-exclamation":
		return theme.ErrorIcon()
	}
	return nil
}

func layoutSpacer() fyne.CanvasObject {
	return layout.NewSpacer()
}

// toneColor parses the tone's #rrggbb colour
func toneColor(t views.Tone) color.NRGBA {
	c, err := parseHex(t.Hex())
	if err != nil {
		return color.NRGBA{R: 0x9c, G: 0xa3, B: 0xaf, A: 0xff}
	}
	return c
}

func parseHex(s string) (color.NRGBA, error) {
	c := color.NRGBA{A: 0xff}
	if len(s) != 7 || s[0] != '#' {
		return c, fmt.Errorf("invalid colour %q", s)
	}
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return c, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return c, nil
}

func withAlpha(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}
