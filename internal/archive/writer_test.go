package archive

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/footy-forecast/internal/models"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func sampleRow(fixtureID int, betType, betValue string, date time.Time) models.PredictionRow {
	homeRating := 1607.2
	return models.PredictionRow{
		RunID:          uuid.New(),
		Date:           date,
		FixtureID:      fixtureID,
		League:         "ENG1",
		HomeTeam:       "Arsenal",
		AwayTeam:       "Everton",
		BetType:        betType,
		BetValue:       betValue,
		TargetOdd:      1.85,
		SimilarityPct:  73.5,
		SimilarCount:   25,
		ReferenceCount: 34,
		Confidence:     68.0,
		HomeRating:     &homeRating,
		GeneratedAt:    time.Now().UTC(),
	}
}

func newTestWriter(t *testing.T) (*Writer, string) {
	t.Helper()
	dir := t.TempDir()
	historical := filepath.Join(dir, "historical_predictions.csv")
	return NewWriter(dir, historical, quietLogger()), historical
}

func TestWriteDailyRoundTrip(t *testing.T) {
	writer, _ := newTestWriter(t)
	date := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	rows := []models.PredictionRow{
		sampleRow(100, models.BetTypeMatchWinner, "Home", date),
		sampleRow(100, models.BetTypeOverUnder, "Over 2.5", date),
	}
	require.NoError(t, writer.WriteDaily(date, rows))

	loaded, err := ReadRows(writer.DailyPath(date))
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	assert.Equal(t, rows[0].Key(), loaded[0].Key())
	assert.Equal(t, rows[0].RunID, loaded[0].RunID)
	assert.InDelta(t, 1.85, loaded[0].TargetOdd, 1e-9)
	assert.InDelta(t, 73.5, loaded[0].SimilarityPct, 1e-9)
	assert.Equal(t, 25, loaded[0].SimilarCount)
	require.NotNil(t, loaded[0].HomeRating)
	assert.InDelta(t, 1607.2, *loaded[0].HomeRating, 1e-9)
	assert.Nil(t, loaded[0].AwayRating)
}

func TestWriteDailyReplacesPreviousReport(t *testing.T) {
	writer, _ := newTestWriter(t)
	date := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	require.NoError(t, writer.WriteDaily(date, []models.PredictionRow{
		sampleRow(100, models.BetTypeMatchWinner, "Home", date),
		sampleRow(101, models.BetTypeMatchWinner, "Home", date),
	}))
	require.NoError(t, writer.WriteDaily(date, []models.PredictionRow{
		sampleRow(100, models.BetTypeMatchWinner, "Home", date),
	}))

	loaded, err := ReadRows(writer.DailyPath(date))
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestAppendHistoricalOverwritesByKey(t *testing.T) {
	writer, historical := newTestWriter(t)
	date := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	first := sampleRow(100, models.BetTypeMatchWinner, "Home", date)
	first.SimilarityPct = 50.0
	require.NoError(t, writer.AppendHistorical([]models.PredictionRow{first}))

	other := sampleRow(200, models.BetTypeOverUnder, "Over 2.5", date.AddDate(0, 0, -1))
	require.NoError(t, writer.AppendHistorical([]models.PredictionRow{other}))

	// Re-run for the same key must replace, not duplicate
	rerun := sampleRow(100, models.BetTypeMatchWinner, "Home", date)
	rerun.SimilarityPct = 80.0
	require.NoError(t, writer.AppendHistorical([]models.PredictionRow{rerun}))

	loaded, err := ReadRows(historical)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	byKey := make(map[models.PredictionKey]models.PredictionRow)
	for i := range loaded {
		byKey[loaded[i].Key()] = loaded[i]
	}
	assert.InDelta(t, 80.0, byKey[rerun.Key()].SimilarityPct, 1e-9)
	assert.Contains(t, byKey, other.Key())
}

func TestUpsertRowsWritesBothFiles(t *testing.T) {
	writer, historical := newTestWriter(t)
	date := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	rows := []models.PredictionRow{sampleRow(100, models.BetTypeMatchWinner, "Home", date)}
	require.NoError(t, writer.UpsertRows(context.Background(), rows))

	_, err := os.Stat(writer.DailyPath(date))
	assert.NoError(t, err)
	_, err = os.Stat(historical)
	assert.NoError(t, err)
}

func TestWriteLeavesNoTempFiles(t *testing.T) {
	writer, _ := newTestWriter(t)
	date := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	require.NoError(t, writer.UpsertRows(context.Background(), []models.PredictionRow{
		sampleRow(100, models.BetTypeMatchWinner, "Home", date),
	}))

	entries, err := os.ReadDir(writer.outputDir)
	require.NoError(t, err)
	for _, entry := range entries {
		assert.NotContains(t, entry.Name(), ".tmp-")
	}
}

func TestReadRowsMissingFile(t *testing.T) {
	_, err := ReadRows(filepath.Join(t.TempDir(), "nope.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestReadRowsSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dirty.csv")
	content := "run_id,date,fixture_id,league,home_team,away_team,bet_type,bet_value,target_odd,similarity_pct,similar_matches_count,similarity_reference_count,confidence,insufficient_data,low_sample,home_rating,away_rating,rating_diff,home_win_probability,draw_probability,away_win_probability,home_win_odds,draw_odds,away_win_odds,generated_at\n" +
		"00000000-0000-0000-0000-000000000000,2026-08-24,100,ENG1,Arsenal,Everton,Match Winner,Home,1.85,50,5,10,20,false,true,,,,,,,,,,2026-08-24T06:30:00Z\n" +
		"00000000-0000-0000-0000-000000000000,not-a-date,101,ENG1,A,B,Match Winner,Home,1.85,50,5,10,20,false,true,,,,,,,,,,2026-08-24T06:30:00Z\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rows, err := ReadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 100, rows[0].FixtureID)
	assert.True(t, rows[0].LowSample)
}
