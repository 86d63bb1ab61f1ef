package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/footy-forecast/internal/database"
	"github.com/yourusername/footy-forecast/internal/models"
)

// PostgresMatchRepository implements MatchRepository for PostgreSQL
type PostgresMatchRepository struct {
	db *database.DB
}

// NewPostgresMatchRepository creates a new match repository
func NewPostgresMatchRepository(db *database.DB) MatchRepository {
	return &PostgresMatchRepository{db: db}
}

// Insert inserts a single match result. Results are immutable once
// ingested, so conflicts on fixture id are ignored rather than updated.
func (r *PostgresMatchRepository) Insert(ctx context.Context, match *models.MatchResult) error {
	query := `
		INSERT INTO match_results (fixture_id, date, league, home_team, away_team, home_goals, away_goals, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (fixture_id) DO NOTHING
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		match.FixtureID, match.Date, match.League, match.HomeTeam,
		match.AwayTeam, match.HomeGoals, match.AwayGoals,
	)
	if err != nil {
		return fmt.Errorf("failed to insert match result: %w", err)
	}

	return nil
}

// InsertBatch inserts multiple match results using a high-performance batch insert
func (r *PostgresMatchRepository) InsertBatch(ctx context.Context, matches []*models.MatchResult) error {
	if len(matches) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO match_results (fixture_id, date, league, home_team, away_team, home_goals, away_goals, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (fixture_id) DO NOTHING
	`
	for _, m := range matches {
		batch.Queue(query, m.FixtureID, m.Date, m.League, m.HomeTeam, m.AwayTeam, m.HomeGoals, m.AwayGoals)
	}

	results := r.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()

	for range matches {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to batch insert match results: %w", err)
		}
	}

	return nil
}

// GetByDateRange retrieves match results within a date range, oldest first.
// The rating updater depends on this chronological order.
func (r *PostgresMatchRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]models.MatchResult, error) {
	query := `
		SELECT fixture_id, date, league, home_team, away_team, home_goals, away_goals, created_at
		FROM match_results
		WHERE date >= $1 AND date < $2
		ORDER BY date ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query match results: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// GetByLeague retrieves match results for one league within a date range
func (r *PostgresMatchRepository) GetByLeague(ctx context.Context, league string, start, end time.Time) ([]models.MatchResult, error) {
	query := `
		SELECT fixture_id, date, league, home_team, away_team, home_goals, away_goals, created_at
		FROM match_results
		WHERE league = $1 AND date >= $2 AND date < $3
		ORDER BY date ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, league, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query league match results: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// Exists reports whether a result for the fixture has been ingested
func (r *PostgresMatchRepository) Exists(ctx context.Context, fixtureID int) (bool, error) {
	var exists bool
	err := r.db.GetPool().QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM match_results WHERE fixture_id = $1)`, fixtureID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check match existence: %w", err)
	}
	return exists, nil
}

func scanMatches(rows pgx.Rows) ([]models.MatchResult, error) {
	var matches []models.MatchResult
	for rows.Next() {
		var m models.MatchResult
		err := rows.Scan(
			&m.FixtureID, &m.Date, &m.League, &m.HomeTeam,
			&m.AwayTeam, &m.HomeGoals, &m.AwayGoals, &m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match result: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
