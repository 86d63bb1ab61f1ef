// Package service contains the data collection workflows that keep the
// database in sync with the upstream football feed.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-forecast/internal/datasource"
	"github.com/yourusername/footy-forecast/internal/metrics"
	"github.com/yourusername/footy-forecast/internal/models"
	"github.com/yourusername/footy-forecast/internal/repository"
)

// IngestionService pulls fixtures, results and odds for the configured
// leagues and persists them through the repositories.
type IngestionService struct {
	source      datasource.FootballDataSource
	matchRepo   repository.MatchRepository
	fixtureRepo repository.FixtureRepository
	oddsRepo    repository.OddsRepository
	leagues     []string
	batchSize   int
	logger      *logrus.Logger
}

// IngestionSummary reports what one sync run did
type IngestionSummary struct {
	Fixtures  int
	Results   int
	OddsRows  int
	Errors    int
	Duration  time.Duration
	StartedAt time.Time
}

func (s IngestionSummary) String() string {
	return fmt.Sprintf("fixtures=%d results=%d odds=%d errors=%d duration=%s",
		s.Fixtures, s.Results, s.OddsRows, s.Errors, s.Duration.Round(time.Millisecond))
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	source datasource.FootballDataSource,
	matchRepo repository.MatchRepository,
	fixtureRepo repository.FixtureRepository,
	oddsRepo repository.OddsRepository,
	leagues []string,
	batchSize int,
	logger *logrus.Logger,
) *IngestionService {
	if batchSize <= 0 {
		batchSize = 100
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &IngestionService{
		source:      source,
		matchRepo:   matchRepo,
		fixtureRepo: fixtureRepo,
		oddsRepo:    oddsRepo,
		leagues:     leagues,
		batchSize:   batchSize,
		logger:      logger,
	}
}

// SyncResults fetches finished matches for all leagues within the date
// range and persists them. A failing league is logged and skipped so one
// provider hiccup does not starve the rest of the run.
func (s *IngestionService) SyncResults(ctx context.Context, start, end time.Time) (IngestionSummary, error) {
	summary := IngestionSummary{StartedAt: time.Now()}

	for _, league := range s.leagues {
		results, err := s.source.FetchResults(ctx, league, start, end)
		if err != nil {
			summary.Errors++
			metrics.IngestionErrorsTotal.Inc()
			s.logger.WithError(err).WithField("league", league).Warn("Failed to fetch results, skipping league")
			continue
		}

		for i := 0; i < len(results); i += s.batchSize {
			endIdx := i + s.batchSize
			if endIdx > len(results) {
				endIdx = len(results)
			}
			batch := make([]*models.MatchResult, 0, endIdx-i)
			for j := i; j < endIdx; j++ {
				batch = append(batch, &results[j])
			}
			if err := s.matchRepo.InsertBatch(ctx, batch); err != nil {
				summary.Errors++
				metrics.IngestionErrorsTotal.Inc()
				s.logger.WithError(err).WithField("league", league).Warn("Failed to persist result batch")
				continue
			}
			summary.Results += endIdx - i
		}
	}

	summary.Duration = time.Since(summary.StartedAt)
	s.logger.WithFields(logrus.Fields{
		"results": summary.Results,
		"errors":  summary.Errors,
	}).Info("Result sync complete")

	return summary, nil
}

// SyncFixtures fetches fixtures scheduled on the date for all leagues
// and upserts them, returning the fixtures collected.
func (s *IngestionService) SyncFixtures(ctx context.Context, date time.Time) ([]models.Fixture, IngestionSummary, error) {
	summary := IngestionSummary{StartedAt: time.Now()}
	var collected []models.Fixture

	for _, league := range s.leagues {
		fixtures, err := s.source.FetchFixtures(ctx, league, date)
		if err != nil {
			summary.Errors++
			metrics.IngestionErrorsTotal.Inc()
			s.logger.WithError(err).WithField("league", league).Warn("Failed to fetch fixtures, skipping league")
			continue
		}

		for i := range fixtures {
			if err := s.fixtureRepo.Upsert(ctx, &fixtures[i]); err != nil {
				summary.Errors++
				metrics.IngestionErrorsTotal.Inc()
				s.logger.WithError(err).WithField("fixture_id", fixtures[i].ID).Warn("Failed to upsert fixture")
				continue
			}
			collected = append(collected, fixtures[i])
			summary.Fixtures++
		}
	}

	summary.Duration = time.Since(summary.StartedAt)
	s.logger.WithFields(logrus.Fields{
		"date":     date.Format("2006-01-02"),
		"fixtures": summary.Fixtures,
		"errors":   summary.Errors,
	}).Info("Fixture sync complete")

	return collected, summary, nil
}

// SyncOdds fetches current market odds for each fixture and persists
// them. Fixtures without odds yet are normal early in the day and are
// not counted as errors.
func (s *IngestionService) SyncOdds(ctx context.Context, fixtures []models.Fixture) (IngestionSummary, error) {
	summary := IngestionSummary{StartedAt: time.Now()}

	for i := range fixtures {
		records, err := s.source.FetchOdds(ctx, fixtures[i].ID)
		if err != nil {
			summary.Errors++
			metrics.IngestionErrorsTotal.Inc()
			s.logger.WithError(err).WithField("fixture_id", fixtures[i].ID).Warn("Failed to fetch odds")
			continue
		}
		if len(records) == 0 {
			continue
		}

		// The provider keys odds by fixture only; the league comes from
		// the fixture being synced.
		batch := make([]*models.OddsRecord, 0, len(records))
		for j := range records {
			records[j].League = fixtures[i].League
			batch = append(batch, &records[j])
		}
		if err := s.oddsRepo.InsertBatch(ctx, batch); err != nil {
			summary.Errors++
			metrics.IngestionErrorsTotal.Inc()
			s.logger.WithError(err).WithField("fixture_id", fixtures[i].ID).Warn("Failed to persist odds")
			continue
		}
		summary.OddsRows += len(records)
	}

	summary.Duration = time.Since(summary.StartedAt)
	s.logger.WithFields(logrus.Fields{
		"odds_rows": summary.OddsRows,
		"errors":    summary.Errors,
	}).Info("Odds sync complete")

	return summary, nil
}

// SyncDay runs the full collection pass for one date: results catch-up
// for the trailing week, then the day's fixtures, then their odds.
func (s *IngestionService) SyncDay(ctx context.Context, date time.Time) (IngestionSummary, error) {
	total := IngestionSummary{StartedAt: time.Now()}

	resultEnd := date
	resultStart := date.AddDate(0, 0, -7)
	resSummary, err := s.SyncResults(ctx, resultStart, resultEnd)
	if err != nil {
		return total, fmt.Errorf("result sync failed: %w", err)
	}
	total.Results = resSummary.Results
	total.Errors += resSummary.Errors

	fixtures, fixSummary, err := s.SyncFixtures(ctx, date)
	if err != nil {
		return total, fmt.Errorf("fixture sync failed: %w", err)
	}
	total.Fixtures = fixSummary.Fixtures
	total.Errors += fixSummary.Errors

	oddsSummary, err := s.SyncOdds(ctx, fixtures)
	if err != nil {
		return total, fmt.Errorf("odds sync failed: %w", err)
	}
	total.OddsRows = oddsSummary.OddsRows
	total.Errors += oddsSummary.Errors

	total.Duration = time.Since(total.StartedAt)
	s.logger.WithField("summary", total.String()).Info("Daily data sync complete")

	return total, nil
}
