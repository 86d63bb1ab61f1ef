package prediction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-forecast/internal/metrics"
	"github.com/yourusername/footy-forecast/internal/models"
	"github.com/yourusername/footy-forecast/internal/rating"
	"github.com/yourusername/footy-forecast/internal/similarity"
)

// MatchSource supplies resolved match results for rating computation.
type MatchSource interface {
	GetByDateRange(ctx context.Context, start, end time.Time) ([]models.MatchResult, error)
}

// FixtureSource supplies the fixtures scheduled on a given day.
type FixtureSource interface {
	GetByDate(ctx context.Context, date time.Time) ([]models.Fixture, error)
}

// OddsSource supplies current odds per fixture and the historical
// reference sets grouped by bet identifier.
type OddsSource interface {
	GetCurrentByFixture(ctx context.Context, fixtureID int) ([]models.OddsRecord, error)
	GetHistoricalByBet(ctx context.Context) (map[string][]models.OddsRecord, error)
}

// RowSink persists assembled rows. Implementations must upsert by
// (fixture_id, bet_type, bet_value, date) so re-runs stay idempotent.
type RowSink interface {
	UpsertRows(ctx context.Context, rows []models.PredictionRow) error
}

// Config holds generation tuning.
type Config struct {
	KFactor              float64
	InitialRating        float64
	LeagueInitialRatings map[string]float64
	LookbackDays         int
	Similarity           similarity.Config
}

// RunSummary reports what one generation run produced.
type RunSummary struct {
	RunID           uuid.UUID
	Date            time.Time
	MatchesFolded   int
	TeamsRated      int
	FixturesTotal   int
	FixturesSkipped int
	RowsEmitted     int
	Duration        time.Duration
}

// Generator drives one daily generation run: rebuild ratings from the
// lookback window, load historical references, and assemble one row per
// fixture per bet selection. Execution is a single-threaded batch; runs
// for the same date are independent and idempotent.
type Generator struct {
	cfg      Config
	matches  MatchSource
	fixtures FixtureSource
	odds     OddsSource
	sinks    []RowSink
	logger   *logrus.Logger
}

// NewGenerator creates a generator. At least one sink is required.
func NewGenerator(
	cfg Config,
	matches MatchSource,
	fixtures FixtureSource,
	odds OddsSource,
	logger *logrus.Logger,
	sinks ...RowSink,
) (*Generator, error) {
	if matches == nil || fixtures == nil || odds == nil {
		return nil, fmt.Errorf("match, fixture and odds sources are required")
	}
	if len(sinks) == 0 {
		return nil, fmt.Errorf("at least one row sink is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Generator{
		cfg:      cfg,
		matches:  matches,
		fixtures: fixtures,
		odds:     odds,
		sinks:    sinks,
		logger:   logger,
	}, nil
}

// Generate runs the full pipeline for one date. A fixture whose odds
// cannot be loaded is skipped with a warning; it never blocks the rest
// of the day's slate.
func (g *Generator) Generate(ctx context.Context, date time.Time) (*RunSummary, error) {
	started := time.Now()
	runID := uuid.New()
	day := truncateToDay(date)

	log := g.logger.WithFields(logrus.Fields{
		"run_id": runID,
		"date":   day.Format("2006-01-02"),
	})
	log.Info("Starting prediction generation run")

	store, folded, err := g.buildRatings(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to build ratings: %w", err)
	}

	references, err := g.odds.GetHistoricalByBet(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load historical odds: %w", err)
	}
	refRecords := 0
	for _, refs := range references {
		refRecords += len(refs)
	}
	metrics.HistoricalReferenceRecords.Set(float64(refRecords))
	log.WithFields(logrus.Fields{
		"bet_identifiers":   len(references),
		"reference_records": refRecords,
	}).Info("Historical reference sets loaded")

	fixtures, err := g.fixtures.GetByDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("failed to load fixtures: %w", err)
	}
	if len(fixtures) == 0 {
		log.Info("No fixtures scheduled, nothing to generate")
		return &RunSummary{RunID: runID, Date: day, MatchesFolded: folded, TeamsRated: store.Len(), Duration: time.Since(started)}, nil
	}

	assembler := NewAssembler(store, rating.NewConverter(), similarity.NewScorer(g.cfg.Similarity), g.logger)

	var rows []models.PredictionRow
	skipped := 0
	for _, fixture := range fixtures {
		current, err := g.odds.GetCurrentByFixture(ctx, fixture.ID)
		if err != nil {
			log.WithError(err).WithField("fixture_id", fixture.ID).Warn("Failed to load odds for fixture, skipping")
			skipped++
			continue
		}
		rows = append(rows, assembler.AssembleFixture(runID, day, fixture, current, references)...)
		metrics.FixturesProcessedTotal.Inc()
	}

	for _, sink := range g.sinks {
		if err := sink.UpsertRows(ctx, rows); err != nil {
			return nil, fmt.Errorf("failed to persist prediction rows: %w", err)
		}
	}
	insufficient := 0
	for i := range rows {
		if rows[i].InsufficientData {
			insufficient++
		}
	}
	metrics.InsufficientDataTotal.Add(float64(insufficient))
	metrics.PredictionRowsTotal.Add(float64(len(rows)))
	metrics.GenerationRunsTotal.Inc()
	metrics.GenerationDuration.Observe(time.Since(started).Seconds())

	summary := &RunSummary{
		RunID:           runID,
		Date:            day,
		MatchesFolded:   folded,
		TeamsRated:      store.Len(),
		FixturesTotal:   len(fixtures),
		FixturesSkipped: skipped,
		RowsEmitted:     len(rows),
		Duration:        time.Since(started),
	}

	log.WithFields(logrus.Fields{
		"fixtures": summary.FixturesTotal,
		"skipped":  summary.FixturesSkipped,
		"rows":     summary.RowsEmitted,
		"duration": summary.Duration,
	}).Info("Prediction generation run complete")

	return summary, nil
}

// Ratings rebuilds the rating store for an as-of date and returns its
// snapshot, for the status and ratings-export commands.
func (g *Generator) Ratings(ctx context.Context, asOf time.Time) ([]models.TeamRating, error) {
	store, _, err := g.buildRatings(ctx, truncateToDay(asOf))
	if err != nil {
		return nil, err
	}
	return store.Snapshot(asOf), nil
}

// buildRatings folds the lookback window of results into a fresh store.
// Ratings are derived, not accumulated, so rebuilding from scratch each
// run is the correctness-preserving choice.
func (g *Generator) buildRatings(ctx context.Context, asOf time.Time) (*rating.Store, int, error) {
	lookback := g.cfg.LookbackDays
	if lookback <= 0 {
		lookback = rating.DefaultLookbackDays
	}
	start := asOf.AddDate(0, 0, -lookback)

	results, err := g.matches.GetByDateRange(ctx, start, asOf)
	if err != nil {
		return nil, 0, err
	}

	initials := g.cfg.LeagueInitialRatings
	if len(initials) == 0 {
		initials = rating.DefaultLeagueInitialRatings
	}
	store := rating.NewStore(g.cfg.InitialRating, initials)
	updater := rating.NewUpdater(g.cfg.KFactor, lookback, g.logger)
	folded := updater.ProcessMatches(store, results, asOf)
	metrics.RatingUpdatesTotal.Add(float64(folded))

	return store, folded, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
