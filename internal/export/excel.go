package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fmuoria/veriskill/internal/models"
	"github.com/fmuoria/veriskill/internal/views"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	skillsSheet  = "Skills"
)

// ReportMeta describes the submission a report was produced for
type ReportMeta struct {
	ID           string
	ProfileLink  string
	DocumentName string
	Generated    time.Time
}

// NewReportMeta stamps a fresh report id and the current time
func NewReportMeta(profileLink, documentName string) ReportMeta {
	return ReportMeta{
		ID:           uuid.NewString(),
		ProfileLink:  profileLink,
		DocumentName: documentName,
		Generated:    time.Now(),
	}
}

// WriteReport writes the audit report as an xlsx workbook to w
func WriteReport(w io.Writer, result models.AnalysisResult, meta ReportMeta) error {
	f, err := buildWorkbook(result, meta)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel report: %w", err)
	}
	return nil
}

// ExportToExcel saves the audit report to outputPath, adding .xlsx if missing
func ExportToExcel(result models.AnalysisResult, meta ReportMeta, outputPath string) error {
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	f, err := buildWorkbook(result, meta)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(outputPath); err != nil {
		// Some filesystems reject excelize's direct save; write through a buffer instead
		var buf bytes.Buffer
		if writeErr := f.Write(&buf); writeErr != nil {
			return fmt.Errorf("failed to save Excel file: direct save failed (%v), buffer write also failed: %w", err, writeErr)
		}
		if fileErr := os.WriteFile(outputPath, buf.Bytes(), 0644); fileErr != nil {
			return fmt.Errorf("failed to save Excel file: direct save failed (%v), file write failed: %w", err, fileErr)
		}
	}

	return nil
}

func buildWorkbook(result models.AnalysisResult, meta ReportMeta) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(skillsSheet); err != nil {
		f.Close()
		return nil, err
	}

	if err := createSummarySheet(f, result, meta); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := createSkillsSheet(f, result.Skills); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create skills sheet: %w", err)
	}

	return f, nil
}

func createSummarySheet(f *excelize.File, result models.AnalysisResult, meta ReportMeta) error {
	f.SetColWidth(summarySheet, "A", "A", 25)
	f.SetColWidth(summarySheet, "B", "B", 70)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"5B7CFA"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	labelStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return err
	}

	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return err
	}

	riskStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: fillFor(views.RiskTone(result.RiskLevel)),
	})
	if err != nil {
		return err
	}

	dash := views.NewDashboard(result)

	f.SetCellValue(summarySheet, "A1", "Skill Authenticity Report")
	f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)
	f.MergeCell(summarySheet, "A1", "B1")

	rows := []struct {
		label string
		value any
	}{
		{"Candidate:", dash.Candidate},
		{"LinkedIn Profile:", meta.ProfileLink},
		{"Document:", meta.DocumentName},
		{"Generated:", meta.Generated.Format("2006-01-02 15:04:05")},
		{"Report ID:", meta.ID},
		{"Authenticity Score:", result.Score},
		{"Risk Level:", dash.RiskLabel},
		{"Skills Assessed:", len(result.Skills)},
	}

	row := 3
	for _, r := range rows {
		label := fmt.Sprintf("A%d", row)
		f.SetCellValue(summarySheet, label, r.label)
		f.SetCellStyle(summarySheet, label, label, labelStyle)
		f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), r.value)
		if r.label == "Risk Level:" {
			cell := fmt.Sprintf("B%d", row)
			f.SetCellStyle(summarySheet, cell, cell, riskStyle)
		}
		row++
	}
	row++

	f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "AI Audit Summary")
	f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), headerStyle)
	f.MergeCell(summarySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row))
	row++

	f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), dash.Summary+"\n\n"+dash.Explanation)
	f.MergeCell(summarySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row))
	f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), wrapStyle)
	f.SetRowHeight(summarySheet, row, 120)

	return nil
}

func createSkillsSheet(f *excelize.File, skills []models.SkillFinding) error {
	f.SetColWidth(skillsSheet, "A", "A", 25)
	f.SetColWidth(skillsSheet, "B", "B", 15)
	f.SetColWidth(skillsSheet, "C", "C", 12)
	f.SetColWidth(skillsSheet, "D", "D", 70)

	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"5B7CFA"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return err
	}

	// one row style per tone, created lazily
	styles := make(map[views.Tone]int)
	styleFor := func(t views.Tone) (int, error) {
		if id, ok := styles[t]; ok {
			return id, nil
		}
		id, err := f.NewStyle(&excelize.Style{
			Fill:      fillFor(t),
			Border:    border,
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		})
		if err != nil {
			return 0, err
		}
		styles[t] = id
		return id, nil
	}

	headers := []string{"Skill", "Status", "Confidence", "Reason"}
	for col, header := range headers {
		cell := fmt.Sprintf("%s1", string(rune('A'+col)))
		f.SetCellValue(skillsSheet, cell, header)
		f.SetCellStyle(skillsSheet, cell, cell, headerStyle)
	}

	for i, s := range skills {
		row := i + 2
		f.SetCellValue(skillsSheet, fmt.Sprintf("A%d", row), s.Name)
		f.SetCellValue(skillsSheet, fmt.Sprintf("B%d", row), string(s.Status))
		f.SetCellValue(skillsSheet, fmt.Sprintf("C%d", row), s.Confidence)
		f.SetCellValue(skillsSheet, fmt.Sprintf("D%d", row), s.Reason)

		style, err := styleFor(views.StatusTone(s.Status))
		if err != nil {
			return err
		}
		f.SetCellStyle(skillsSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), style)
	}

	if len(skills) > 0 {
		f.AutoFilter(skillsSheet, fmt.Sprintf("A1:D%d", len(skills)+1), []excelize.AutoFilterOptions{})
	}

	f.SetPanes(skillsSheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	return nil
}

// fillFor maps a tone to the spreadsheet's pale background colours
func fillFor(t views.Tone) excelize.Fill {
	var color string
	switch t {
	case views.ToneGreen:
		color = "C6EFCE"
	case views.ToneYellow:
		color = "FFEB9C"
	case views.ToneRed:
		color = "FFC7CE"
	default:
		color = "EDEDED"
	}
	return excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
}
