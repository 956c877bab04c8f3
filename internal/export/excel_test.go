package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fmuoria/veriskill/internal/models"
	"github.com/xuri/excelize/v2"
)

func sampleResult() models.AnalysisResult {
	return models.AnalysisResult{
		Score:         72,
		RiskLevel:     models.RiskMedium,
		CandidateName: "Jane Doe",
		Skills: []models.SkillFinding{
			{Name: "Rust", Confidence: 60, Status: models.StatusExaggerated, Reason: "depth mismatch"},
			{Name: "Go", Confidence: 95, Status: models.StatusGenuine, Reason: "consistent projects"},
		},
		Explanation: "Mostly consistent.",
	}
}

func sampleMeta() ReportMeta {
	return ReportMeta{
		ID:           "report-1",
		ProfileLink:  "https://linkedin.com/in/jdoe",
		DocumentName: "resume.pdf",
		Generated:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// TestWriteReport_Contents checks the workbook written to a stream
func TestWriteReport_Contents(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, sampleResult(), sampleMeta()); err != nil {
		t.Fatalf("WriteReport() failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Summary" || sheets[1] != "Skills" {
		t.Fatalf("unexpected sheets: %v", sheets)
	}

	checks := []struct {
		sheet, cell, want string
	}{
		{"Summary", "A1", "Skill Authenticity Report"},
		{"Summary", "B3", "Jane Doe"},
		{"Summary", "B4", "https://linkedin.com/in/jdoe"},
		{"Summary", "B5", "resume.pdf"},
		{"Summary", "B6", "2025-01-02 03:04:05"},
		{"Summary", "B7", "report-1"},
		{"Summary", "B8", "72"},
		{"Summary", "B9", "Medium Risk Detected"},
		{"Summary", "B10", "2"},
		{"Skills", "A1", "Skill"},
		{"Skills", "A2", "Rust"},
		{"Skills", "B2", "Exaggerated"},
		{"Skills", "C2", "60"},
		{"Skills", "D3", "consistent projects"},
	}
	for _, c := range checks {
		got, err := f.GetCellValue(c.sheet, c.cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s!%s) error: %v", c.sheet, c.cell, err)
		}
		if got != c.want {
			t.Errorf("%s!%s = %q, want %q", c.sheet, c.cell, got, c.want)
		}
	}

	summary, _ := f.GetCellValue("Summary", "A13")
	if !strings.Contains(summary, "Mostly consistent.") {
		t.Errorf("summary cell = %q, want explanation included", summary)
	}
}

// TestExportToExcel_EnsuresXlsxExtension tests that .xlsx extension is added if missing
func TestExportToExcel_EnsuresXlsxExtension(t *testing.T) {
	tmpDir := t.TempDir()

	outputPath := filepath.Join(tmpDir, "test_report")
	if err := ExportToExcel(sampleResult(), sampleMeta(), outputPath); err != nil {
		t.Fatalf("ExportToExcel() failed: %v", err)
	}

	expectedPath := outputPath + ".xlsx"
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Errorf("Expected file at %s but it doesn't exist", expectedPath)
	}
}

// TestExportToExcel_HandlesExistingXlsxExtension tests that existing .xlsx extension is preserved
func TestExportToExcel_HandlesExistingXlsxExtension(t *testing.T) {
	tmpDir := t.TempDir()

	outputPath := filepath.Join(tmpDir, "test_report.XLSX")
	if err := ExportToExcel(models.AnalysisResult{Score: 10, RiskLevel: models.RiskHigh}, sampleMeta(), outputPath); err != nil {
		t.Fatalf("ExportToExcel() failed: %v", err)
	}

	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		t.Errorf("Expected file at %s but it doesn't exist", outputPath)
	}
	if _, err := os.Stat(outputPath + ".xlsx"); err == nil {
		t.Errorf("extension should not be doubled")
	}
}

// TestWriteReport_KeepsModelText checks that angle brackets survive export
func TestWriteReport_KeepsModelText(t *testing.T) {
	result := sampleResult()
	result.Skills[0].Name = "C++ <templates>"
	result.Skills[0].Reason = "uses std::vector<int> only; a<b comparisons"

	var buf bytes.Buffer
	if err := WriteReport(&buf, result, sampleMeta()); err != nil {
		t.Fatalf("WriteReport() failed: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue("Skills", "A2"); got != "C++ <templates>" {
		t.Errorf("Skills!A2 = %q, want %q", got, "C++ <templates>")
	}
	if got, _ := f.GetCellValue("Skills", "D2"); got != "uses std::vector<int> only; a<b comparisons" {
		t.Errorf("Skills!D2 = %q, want the reason unchanged", got)
	}
}

func TestNewReportMeta(t *testing.T) {
	a := NewReportMeta("link", "cv.pdf")
	b := NewReportMeta("link", "cv.pdf")
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("report ids should be unique, got %q and %q", a.ID, b.ID)
	}
	if a.Generated.IsZero() {
		t.Error("Generated should be set")
	}
}
