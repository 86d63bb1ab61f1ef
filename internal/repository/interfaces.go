package repository

import (
	"context"
	"time"

	"github.com/yourusername/footy-forecast/internal/models"
)

// MatchRepository defines the interface for resolved match data access
type MatchRepository interface {
	Insert(ctx context.Context, match *models.MatchResult) error
	InsertBatch(ctx context.Context, matches []*models.MatchResult) error
	GetByDateRange(ctx context.Context, start, end time.Time) ([]models.MatchResult, error)
	GetByLeague(ctx context.Context, league string, start, end time.Time) ([]models.MatchResult, error)
	Exists(ctx context.Context, fixtureID int) (bool, error)
}

// FixtureRepository defines the interface for scheduled fixture data access
type FixtureRepository interface {
	Upsert(ctx context.Context, fixture *models.Fixture) error
	GetByID(ctx context.Context, id int) (*models.Fixture, error)
	GetByDate(ctx context.Context, date time.Time) ([]models.Fixture, error)
	GetUpcoming(ctx context.Context, limit int) ([]models.Fixture, error)
}

// OddsRepository defines the interface for odds data access
type OddsRepository interface {
	Insert(ctx context.Context, odds *models.OddsRecord) error
	InsertBatch(ctx context.Context, odds []*models.OddsRecord) error
	GetCurrentByFixture(ctx context.Context, fixtureID int) ([]models.OddsRecord, error)
	GetHistoricalByBet(ctx context.Context) (map[string][]models.OddsRecord, error)
}

// PredictionRepository defines the interface for prediction row persistence.
// UpsertRows must overwrite by (fixture_id, bet_type, bet_value, date) so
// generation re-runs stay idempotent.
type PredictionRepository interface {
	UpsertRows(ctx context.Context, rows []models.PredictionRow) error
	GetByDate(ctx context.Context, date time.Time) ([]models.PredictionRow, error)
	CountByDate(ctx context.Context, date time.Time) (int, error)
}

// RatingRepository defines the interface for rating snapshot persistence
type RatingRepository interface {
	ReplaceSnapshot(ctx context.Context, ratings []models.TeamRating) error
	GetLatest(ctx context.Context) ([]models.TeamRating, error)
}
