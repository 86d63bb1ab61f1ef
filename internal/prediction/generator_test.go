package prediction

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/footy-forecast/internal/metrics"
	"github.com/yourusername/footy-forecast/internal/models"
	"github.com/yourusername/footy-forecast/internal/similarity"
)

type fakeMatchSource struct {
	matches []models.MatchResult
}

func (f *fakeMatchSource) GetByDateRange(ctx context.Context, start, end time.Time) ([]models.MatchResult, error) {
	var out []models.MatchResult
	for _, m := range f.matches {
		if !m.Date.Before(start) && m.Date.Before(end) {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeFixtureSource struct {
	fixtures []models.Fixture
}

func (f *fakeFixtureSource) GetByDate(ctx context.Context, date time.Time) ([]models.Fixture, error) {
	return f.fixtures, nil
}

type fakeOddsSource struct {
	current    map[int][]models.OddsRecord
	references map[string][]models.OddsRecord
	failFor    map[int]bool
}

func (f *fakeOddsSource) GetCurrentByFixture(ctx context.Context, fixtureID int) ([]models.OddsRecord, error) {
	if f.failFor[fixtureID] {
		return nil, fmt.Errorf("odds unavailable for fixture %d", fixtureID)
	}
	return f.current[fixtureID], nil
}

func (f *fakeOddsSource) GetHistoricalByBet(ctx context.Context) (map[string][]models.OddsRecord, error) {
	return f.references, nil
}

// keyedSink upserts rows by archive key, mirroring the real sinks
type keyedSink struct {
	rows map[models.PredictionKey]models.PredictionRow
}

func newKeyedSink() *keyedSink {
	return &keyedSink{rows: make(map[models.PredictionKey]models.PredictionRow)}
}

func (s *keyedSink) UpsertRows(ctx context.Context, rows []models.PredictionRow) error {
	for i := range rows {
		s.rows[rows[i].Key()] = rows[i]
	}
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func referenceSet(betType, betValue string, count int, odd float64) []models.OddsRecord {
	out := make([]models.OddsRecord, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, models.OddsRecord{
			FixtureID:  9000 + i,
			BetType:    betType,
			BetValue:   betValue,
			AverageOdd: odd,
			Bookmakers: 5,
		})
	}
	return out
}

func testSetup(day time.Time) (*fakeMatchSource, *fakeFixtureSource, *fakeOddsSource) {
	matches := &fakeMatchSource{matches: []models.MatchResult{
		{FixtureID: 1, Date: day.AddDate(0, 0, -30), League: "ENG1", HomeTeam: "Arsenal", AwayTeam: "Everton", HomeGoals: 2, AwayGoals: 0},
		{FixtureID: 2, Date: day.AddDate(0, 0, -20), League: "ENG1", HomeTeam: "Everton", AwayTeam: "Arsenal", HomeGoals: 1, AwayGoals: 1},
	}}

	fixtures := &fakeFixtureSource{fixtures: []models.Fixture{
		{ID: 100, Date: day, League: "ENG1", HomeTeam: "Arsenal", AwayTeam: "Everton"},
		{ID: 101, Date: day, League: "ENG1", HomeTeam: "Fulham", AwayTeam: "Brentford"},
	}}

	odds := &fakeOddsSource{
		current: map[int][]models.OddsRecord{
			100: {
				{FixtureID: 100, BetType: models.BetTypeMatchWinner, BetValue: "Home", AverageOdd: 1.85, Bookmakers: 6},
				{FixtureID: 100, BetType: models.BetTypeOverUnder, BetValue: "Over 2.5", AverageOdd: 2.0, Bookmakers: 6},
			},
			// Fixture 101 has no odds yet
		},
		references: map[string][]models.OddsRecord{
			"Match Winner_Home":   referenceSet(models.BetTypeMatchWinner, "Home", 60, 1.9),
			"Over/Under_Over 2.5": referenceSet(models.BetTypeOverUnder, "Over 2.5", 20, 2.05),
		},
		failFor: map[int]bool{},
	}

	return matches, fixtures, odds
}

func defaultConfig() Config {
	return Config{
		KFactor:       40,
		InitialRating: 1500,
		LookbackDays:  365,
		Similarity:    similarity.Config{},
	}
}

func TestNewGeneratorValidation(t *testing.T) {
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	matches, fixtures, odds := testSetup(day)

	_, err := NewGenerator(defaultConfig(), nil, fixtures, odds, quietLogger(), newKeyedSink())
	assert.Error(t, err)

	_, err = NewGenerator(defaultConfig(), matches, fixtures, odds, quietLogger())
	assert.Error(t, err)

	_, err = NewGenerator(defaultConfig(), matches, fixtures, odds, quietLogger(), newKeyedSink())
	assert.NoError(t, err)
}

func TestGenerateEmitsRowsPerSelection(t *testing.T) {
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	matches, fixtures, odds := testSetup(day)
	sink := newKeyedSink()

	gen, err := NewGenerator(defaultConfig(), matches, fixtures, odds, quietLogger(), sink)
	require.NoError(t, err)

	summary, err := gen.Generate(context.Background(), day)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.MatchesFolded)
	assert.Equal(t, 2, summary.FixturesTotal)
	assert.Equal(t, 0, summary.FixturesSkipped)
	// Two priced selections plus one marker row for the odds-less fixture
	assert.Equal(t, 3, summary.RowsEmitted)
	assert.Len(t, sink.rows, 3)
}

func TestGenerateAttachesELOToMatchWinnerOnly(t *testing.T) {
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	matches, fixtures, odds := testSetup(day)
	sink := newKeyedSink()

	gen, err := NewGenerator(defaultConfig(), matches, fixtures, odds, quietLogger(), sink)
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), day)
	require.NoError(t, err)

	winner := sink.rows[models.PredictionKey{FixtureID: 100, BetType: models.BetTypeMatchWinner, BetValue: "Home", Date: "2026-08-24"}]
	require.True(t, winner.HasELO())
	assert.InDelta(t, 1.0, *winner.HomeWinProb+*winner.DrawProb+*winner.AwayWinProb, 1e-9)
	assert.InDelta(t, *winner.HomeRating-*winner.AwayRating, *winner.RatingDiff, 1e-9)

	overUnder := sink.rows[models.PredictionKey{FixtureID: 100, BetType: models.BetTypeOverUnder, BetValue: "Over 2.5", Date: "2026-08-24"}]
	assert.False(t, overUnder.HasELO())
	assert.Equal(t, 20, overUnder.ReferenceCount)
	assert.InDelta(t, 100.0, overUnder.SimilarityPct, 1e-9)
}

func TestGenerateMarkerRowForOddslessFixture(t *testing.T) {
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	matches, fixtures, odds := testSetup(day)
	sink := newKeyedSink()

	gen, err := NewGenerator(defaultConfig(), matches, fixtures, odds, quietLogger(), sink)
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), day)
	require.NoError(t, err)

	marker := sink.rows[models.PredictionKey{FixtureID: 101, BetType: models.BetTypeNone, Date: "2026-08-24"}]
	assert.True(t, marker.InsufficientData)
	assert.Equal(t, "Fulham", marker.HomeTeam)
}

func TestGenerateSkipsFixtureOnOddsError(t *testing.T) {
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	matches, fixtures, odds := testSetup(day)
	odds.failFor[100] = true
	sink := newKeyedSink()

	gen, err := NewGenerator(defaultConfig(), matches, fixtures, odds, quietLogger(), sink)
	require.NoError(t, err)

	summary, err := gen.Generate(context.Background(), day)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.FixturesSkipped)
	// Only the marker row from fixture 101 survives
	assert.Equal(t, 1, summary.RowsEmitted)
}

func TestGenerateIsIdempotent(t *testing.T) {
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	matches, fixtures, odds := testSetup(day)
	sink := newKeyedSink()

	gen, err := NewGenerator(defaultConfig(), matches, fixtures, odds, quietLogger(), sink)
	require.NoError(t, err)

	first, err := gen.Generate(context.Background(), day)
	require.NoError(t, err)
	countAfterFirst := len(sink.rows)

	second, err := gen.Generate(context.Background(), day)
	require.NoError(t, err)

	assert.Equal(t, first.RowsEmitted, second.RowsEmitted)
	assert.Equal(t, countAfterFirst, len(sink.rows))
	assert.NotEqual(t, first.RunID, second.RunID)

	// Scores are pure functions of the same inputs
	key := models.PredictionKey{FixtureID: 100, BetType: models.BetTypeOverUnder, BetValue: "Over 2.5", Date: "2026-08-24"}
	assert.Equal(t, second.RunID, sink.rows[key].RunID)
	assert.InDelta(t, 100.0, sink.rows[key].SimilarityPct, 1e-9)
}

func TestGenerateRecordsReferenceMetrics(t *testing.T) {
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	matches, fixtures, odds := testSetup(day)
	sink := newKeyedSink()

	gen, err := NewGenerator(defaultConfig(), matches, fixtures, odds, quietLogger(), sink)
	require.NoError(t, err)

	// The counter is process-global, so assert on the delta
	before := testutil.ToFloat64(metrics.InsufficientDataTotal)

	_, err = gen.Generate(context.Background(), day)
	require.NoError(t, err)

	// 60 Match Winner references + 20 Over/Under references
	assert.InDelta(t, 80, testutil.ToFloat64(metrics.HistoricalReferenceRecords), 1e-9)
	// The marker row for the odds-less fixture is the only insufficient one
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.InsufficientDataTotal)-before, 1e-9)
}

func TestRatingsSnapshot(t *testing.T) {
	day := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	matches, fixtures, odds := testSetup(day)

	gen, err := NewGenerator(defaultConfig(), matches, fixtures, odds, quietLogger(), newKeyedSink())
	require.NoError(t, err)

	ratings, err := gen.Ratings(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, ratings, 2)

	total := ratings[0].Rating + ratings[1].Rating
	assert.InDelta(t, 3000, total, 1e-6)
}
