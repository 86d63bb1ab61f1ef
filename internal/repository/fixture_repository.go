package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/footy-forecast/internal/database"
	"github.com/yourusername/footy-forecast/internal/models"
)

// PostgresFixtureRepository implements FixtureRepository for PostgreSQL
type PostgresFixtureRepository struct {
	db *database.DB
}

// NewPostgresFixtureRepository creates a new fixture repository
func NewPostgresFixtureRepository(db *database.DB) FixtureRepository {
	return &PostgresFixtureRepository{db: db}
}

// Upsert inserts or refreshes a fixture. Status and kickoff time change
// between collection runs, so conflicts update in place.
func (r *PostgresFixtureRepository) Upsert(ctx context.Context, fixture *models.Fixture) error {
	query := `
		INSERT INTO fixtures (id, date, league, league_name, country, home_team, away_team, venue, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			date = EXCLUDED.date,
			status = EXCLUDED.status,
			venue = EXCLUDED.venue
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		fixture.ID, fixture.Date, fixture.League, fixture.LeagueName, fixture.Country,
		fixture.HomeTeam, fixture.AwayTeam, fixture.Venue, fixture.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert fixture: %w", err)
	}

	return nil
}

// GetByID retrieves a single fixture
func (r *PostgresFixtureRepository) GetByID(ctx context.Context, id int) (*models.Fixture, error) {
	query := `
		SELECT id, date, league, league_name, country, home_team, away_team, venue, status
		FROM fixtures
		WHERE id = $1
	`

	f := &models.Fixture{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&f.ID, &f.Date, &f.League, &f.LeagueName, &f.Country,
		&f.HomeTeam, &f.AwayTeam, &f.Venue, &f.Status,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fixture: %w", err)
	}

	return f, nil
}

// GetByDate retrieves all fixtures scheduled on a calendar day
func (r *PostgresFixtureRepository) GetByDate(ctx context.Context, date time.Time) ([]models.Fixture, error) {
	query := `
		SELECT id, date, league, league_name, country, home_team, away_team, venue, status
		FROM fixtures
		WHERE date >= $1 AND date < $2
		ORDER BY date ASC, id ASC
	`

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	rows, err := r.db.GetPool().Query(ctx, query, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to query fixtures by date: %w", err)
	}
	defer rows.Close()

	return scanFixtures(rows)
}

// GetUpcoming retrieves the next scheduled fixtures
func (r *PostgresFixtureRepository) GetUpcoming(ctx context.Context, limit int) ([]models.Fixture, error) {
	query := `
		SELECT id, date, league, league_name, country, home_team, away_team, venue, status
		FROM fixtures
		WHERE date >= NOW()
		ORDER BY date ASC
		LIMIT $1
	`

	rows, err := r.db.GetPool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming fixtures: %w", err)
	}
	defer rows.Close()

	return scanFixtures(rows)
}

func scanFixtures(rows pgx.Rows) ([]models.Fixture, error) {
	var fixtures []models.Fixture
	for rows.Next() {
		var f models.Fixture
		err := rows.Scan(
			&f.ID, &f.Date, &f.League, &f.LeagueName, &f.Country,
			&f.HomeTeam, &f.AwayTeam, &f.Venue, &f.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fixture: %w", err)
		}
		fixtures = append(fixtures, f)
	}
	return fixtures, rows.Err()
}
