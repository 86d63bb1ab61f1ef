package analysis

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/footy-forecast/internal/models"
)

func row(fixtureID int, league string, date time.Time, similarity, confidence float64) models.PredictionRow {
	return models.PredictionRow{
		Date:          date,
		FixtureID:     fixtureID,
		League:        league,
		HomeTeam:      "Home",
		AwayTeam:      "Away",
		BetType:       models.BetTypeMatchWinner,
		BetValue:      "Home",
		TargetOdd:     1.9,
		SimilarityPct: similarity,
		Confidence:    confidence,
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	report := NewAnalyzer(0, 0).Analyze(nil)
	assert.Zero(t, report.TotalRows)
	assert.Empty(t, report.Leagues)
}

func TestAnalyzeAggregatesByLeague(t *testing.T) {
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	rows := []models.PredictionRow{
		row(1, "ENG1", day, 80, 60),
		row(2, "ENG1", day, 40, 40),
		row(3, "FRA1", day, 90, 90),
	}

	report := NewAnalyzer(0, 0).Analyze(rows)

	assert.Equal(t, 3, report.TotalRows)
	assert.Equal(t, 3, report.TotalFixtures)
	require.Len(t, report.Leagues, 2)

	// Sorted by row volume, ENG1 first
	assert.Equal(t, "ENG1", report.Leagues[0].League)
	assert.Equal(t, 2, report.Leagues[0].Rows)
	assert.InDelta(t, 60.0, report.Leagues[0].AvgSimilarity, 1e-9)
	assert.InDelta(t, 50.0, report.Leagues[0].AvgConfidence, 1e-9)
}

func TestAnalyzeExcludesMarkerRowsFromAggregates(t *testing.T) {
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	marker := models.PredictionRow{
		Date: day, FixtureID: 9, League: "ENG1",
		BetType: models.BetTypeNone, InsufficientData: true,
	}
	rows := []models.PredictionRow{row(1, "ENG1", day, 80, 60), marker}

	report := NewAnalyzer(0, 0).Analyze(rows)

	assert.Equal(t, 1, report.InsufficientData)
	require.Len(t, report.Leagues, 1)
	assert.Equal(t, 1, report.Leagues[0].Rows)
	assert.InDelta(t, 80.0, report.Leagues[0].AvgSimilarity, 1e-9)
}

func TestAnalyzeSimilarityBuckets(t *testing.T) {
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	rows := []models.PredictionRow{
		row(1, "ENG1", day, 5, 10),
		row(2, "ENG1", day, 25, 10),
		row(3, "ENG1", day, 100, 10),
	}

	report := NewAnalyzer(0, 0).Analyze(rows)
	require.Len(t, report.Similarity, 5)

	assert.Equal(t, 1, report.Similarity[0].Count) // [0,20)
	assert.Equal(t, 1, report.Similarity[1].Count) // [20,40)
	assert.Equal(t, 1, report.Similarity[4].Count) // [80,100]
}

func TestAnalyzeHighlightsSortedAndCapped(t *testing.T) {
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	rows := []models.PredictionRow{
		row(1, "ENG1", day, 70, 75),
		row(2, "ENG1", day, 90, 95),
		row(3, "ENG1", day, 60, 50), // below threshold
		row(4, "ENG1", day, 85, 80),
	}

	report := NewAnalyzer(70, 2).Analyze(rows)
	require.Len(t, report.Highlights, 2)

	assert.InDelta(t, 95.0, report.Highlights[0].Confidence, 1e-9)
	assert.InDelta(t, 80.0, report.Highlights[1].Confidence, 1e-9)
}

func TestAnalyzeDateFilters(t *testing.T) {
	dayOne := time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC)
	dayTwo := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	rows := []models.PredictionRow{
		row(1, "ENG1", dayOne, 50, 50),
		row(2, "ENG1", dayTwo, 50, 50),
		row(3, "ENG1", dayTwo, 50, 50),
	}

	report := NewAnalyzer(0, 0).AnalyzeDate(rows, dayTwo)
	assert.Equal(t, 2, report.TotalRows)
	assert.Equal(t, "2026-08-24", report.FirstDate)
	assert.Equal(t, "2026-08-24", report.LastDate)
}

func TestFormatConsoleReport(t *testing.T) {
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	report := NewAnalyzer(0, 0).Analyze([]models.PredictionRow{
		row(1, "ENG1", day, 80, 75),
	})

	out := FormatConsoleReport(report)
	assert.True(t, strings.Contains(out, "Prediction Archive Report"))
	assert.True(t, strings.Contains(out, "ENG1"))
	assert.True(t, strings.Contains(out, "2026-08-24"))
}
