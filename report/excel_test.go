package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/poiesic/scout/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleResults() []core.RankedResult {
	return []core.RankedResult{
		{
			Candidate: core.Candidate{
				Name: "Aino Virtanen", RoleEn: "Welder", Industry: "Construction",
				ExperienceYears: 7, Salary: 3400, Location: core.Location{City: "Lahti"},
			},
			MatchScore:  91.5,
			Explanation: "Holds the hot work license.",
		},
		{Candidate: core.Candidate{Name: "Bo Lindqvist"}, MatchScore: 64},
		{Candidate: core.Candidate{Name: "Cai Niemi"}, MatchScore: 12.25},
	}
}

func TestBand(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{100, "strong"},
		{80, "strong"},
		{79.99, "moderate"},
		{60, "moderate"},
		{59.99, "weak"},
		{-8, "weak"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, band(tt.score), "score %v", tt.score)
	}
}

func TestWriteExcel(t *testing.T) {
	var buf bytes.Buffer
	generated := time.Date(2025, 5, 4, 9, 30, 0, 0, time.UTC)
	require.NoError(t, writeExcel(&buf, "welder in Lahti", sampleResults(), generated))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet, CandidatesSheet}, f.GetSheetList())

	t.Run("summary", func(t *testing.T) {
		cells := map[string]string{
			"A1": "Candidate Search Report",
			"B3": "welder in Lahti",
			"B4": "2025-05-04 09:30:00",
			"B5": "3",
			"B6": "1",
			"B7": "1",
			"B8": "1",
		}
		for cell, want := range cells {
			got, err := f.GetCellValue(SummarySheet, cell)
			require.NoError(t, err)
			assert.Equal(t, want, got, cell)
		}
	})

	t.Run("candidates", func(t *testing.T) {
		rows, err := f.GetRows(CandidatesSheet)
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, candidateHeaders, rows[0])
		assert.Equal(t, []string{"1", "Aino Virtanen", "Welder", "Construction", "7", "3400", "Lahti", "91.5", "Holds the hot work license."}, rows[1])
		assert.Equal(t, "Cai Niemi", rows[3][1])
		assert.Equal(t, "12.25", rows[3][7])
	})
}

func TestWriteExcel_NoResults(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, "nothing", nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(CandidatesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
