package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-forecast/internal/metrics"
	"github.com/yourusername/footy-forecast/internal/models"
	"github.com/yourusername/footy-forecast/internal/prediction"
	"github.com/yourusername/footy-forecast/internal/repository"
)

// PredictionService wraps the generator with the persistence work that
// surrounds a run: the ratings snapshot and the freshness gauges.
type PredictionService struct {
	generator  *prediction.Generator
	ratingRepo repository.RatingRepository
	logger     *logrus.Logger
}

// NewPredictionService creates a new prediction service. The rating
// repository is optional; without it the snapshot step is skipped.
func NewPredictionService(generator *prediction.Generator, ratingRepo repository.RatingRepository, logger *logrus.Logger) *PredictionService {
	if logger == nil {
		logger = logrus.New()
	}
	return &PredictionService{
		generator:  generator,
		ratingRepo: ratingRepo,
		logger:     logger,
	}
}

// GenerateDaily runs the full generation pipeline for a date and then
// persists the resulting ratings snapshot. Snapshot failure is logged
// but does not fail the run: the report already exists and ratings are
// rebuilt from results on the next run anyway.
func (s *PredictionService) GenerateDaily(ctx context.Context, date time.Time) (*prediction.RunSummary, error) {
	summary, err := s.generator.Generate(ctx, date)
	if err != nil {
		return nil, err
	}

	metrics.TeamsRated.Set(float64(summary.TeamsRated))
	metrics.LastGenerationTimestamp.SetToCurrentTime()

	if s.ratingRepo != nil {
		if err := s.snapshotRatings(ctx, date); err != nil {
			s.logger.WithError(err).Warn("Failed to persist ratings snapshot")
		}
	}

	return summary, nil
}

// Ratings rebuilds and returns the current ratings table
func (s *PredictionService) Ratings(ctx context.Context, asOf time.Time) ([]models.TeamRating, error) {
	return s.generator.Ratings(ctx, asOf)
}

func (s *PredictionService) snapshotRatings(ctx context.Context, asOf time.Time) error {
	ratings, err := s.generator.Ratings(ctx, asOf)
	if err != nil {
		return fmt.Errorf("failed to rebuild ratings: %w", err)
	}
	if len(ratings) == 0 {
		return nil
	}
	if err := s.ratingRepo.ReplaceSnapshot(ctx, ratings); err != nil {
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	s.logger.WithField("teams", len(ratings)).Info("Ratings snapshot persisted")
	return nil
}
