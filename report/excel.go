// Package report exports ranked search results as spreadsheets.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/poiesic/scout/core"
	"github.com/xuri/excelize/v2"
)

// Sheet names.
const (
	SummarySheet    = "Summary"
	CandidatesSheet = "Ranked Candidates"
)

// Score bands used for row colors and the summary counts.
const (
	StrongScore   = 80.0
	ModerateScore = 60.0
)

var candidateHeaders = []string{
	"Rank", "Candidate", "Role", "Industry", "Experience (years)", "Salary (€/month)", "City", "Match Score", "Explanation",
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// WriteExcel writes a workbook with a summary sheet and one row per result.
func WriteExcel(w io.Writer, query string, results []core.RankedResult) error {
	return writeExcel(w, query, results, time.Now())
}

func writeExcel(w io.Writer, query string, results []core.RankedResult, generated time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(CandidatesSheet); err != nil {
		return err
	}

	if err := writeSummary(f, query, results, generated); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeCandidates(f, results); err != nil {
		return fmt.Errorf("failed to create ranked candidates sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// band classifies a match score.
func band(score float64) string {
	switch {
	case score >= StrongScore:
		return "strong"
	case score >= ModerateScore:
		return "moderate"
	default:
		return "weak"
	}
}

func writeSummary(f *excelize.File, query string, results []core.RankedResult, generated time.Time) error {
	sheet := SummarySheet
	if err := f.SetColWidth(sheet, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "B", "B", 60); err != nil {
		return err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	counts := map[string]int{}
	for _, r := range results {
		counts[band(r.MatchScore)]++
	}

	rows := [][2]any{
		{"Query:", query},
		{"Generated:", generated.Format("2006-01-02 15:04:05")},
		{"Candidates:", len(results)},
		{fmt.Sprintf("Strong (>= %.0f):", StrongScore), counts["strong"]},
		{fmt.Sprintf("Moderate (%.0f-%.0f):", ModerateScore, StrongScore), counts["moderate"]},
		{fmt.Sprintf("Weak (< %.0f):", ModerateScore), counts["weak"]},
	}

	if err := f.SetCellValue(sheet, "A1", "Candidate Search Report"); err != nil {
		return err
	}
	if err := f.MergeCell(sheet, "A1", "B1"); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", "B1", titleStyle); err != nil {
		return err
	}
	for i, kv := range rows {
		row := i + 3
		label := fmt.Sprintf("A%d", row)
		if err := f.SetCellValue(sheet, label, kv[0]); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, label, label, labelStyle); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", row), kv[1]); err != nil {
			return err
		}
	}
	return nil
}

func writeCandidates(f *excelize.File, results []core.RankedResult) error {
	sheet := CandidatesSheet
	widths := []float64{8, 25, 25, 18, 12, 14, 15, 12, 80}
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return err
	}
	bandStyles := map[string]int{}
	for name, color := range map[string]string{"strong": "C6EFCE", "moderate": "FFEB9C", "weak": "FFC7CE"} {
		style, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
			Border:    thinBorder,
		})
		if err != nil {
			return err
		}
		bandStyles[name] = style
	}

	for i, header := range candidateHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for i, r := range results {
		row := i + 2
		values := []any{
			i + 1,
			r.Name,
			r.RoleEn,
			r.Industry,
			r.ExperienceYears,
			r.Salary,
			r.Location.City,
			r.MatchScore,
			r.Explanation,
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return err
		}
		last, err := excelize.CoordinatesToCellName(len(values), row)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), last, bandStyles[band(r.MatchScore)]); err != nil {
			return err
		}
	}

	if len(results) > 0 {
		lastCol, err := excelize.ColumnNumberToName(len(candidateHeaders))
		if err != nil {
			return err
		}
		ref := fmt.Sprintf("A1:%s%d", lastCol, len(results)+1)
		if err := f.AutoFilter(sheet, ref, []excelize.AutoFilterOptions{}); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
