package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/footy-forecast/internal/database"
	"github.com/yourusername/footy-forecast/internal/models"
)

// PostgresOddsRepository implements OddsRepository for PostgreSQL
type PostgresOddsRepository struct {
	db *database.DB
}

// NewPostgresOddsRepository creates a new odds repository
func NewPostgresOddsRepository(db *database.DB) OddsRepository {
	return &PostgresOddsRepository{db: db}
}

// Insert inserts a single odds record
func (r *PostgresOddsRepository) Insert(ctx context.Context, odds *models.OddsRecord) error {
	query := `
		INSERT INTO odds_records (fixture_id, league, bet_type, bet_value, average_odd, bookmakers, collected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (fixture_id, bet_type, bet_value) DO UPDATE SET
			average_odd = EXCLUDED.average_odd,
			bookmakers = EXCLUDED.bookmakers,
			collected_at = EXCLUDED.collected_at
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		odds.FixtureID, odds.League, odds.BetType, odds.BetValue,
		odds.AverageOdd, odds.Bookmakers, odds.CollectedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert odds record: %w", err)
	}

	return nil
}

// InsertBatch inserts multiple odds records using COPY for bulk performance.
// Used for the initial historical backfill where no conflicts exist.
func (r *PostgresOddsRepository) InsertBatch(ctx context.Context, odds []*models.OddsRecord) error {
	if len(odds) == 0 {
		return nil
	}

	columns := []string{"fixture_id", "league", "bet_type", "bet_value", "average_odd", "bookmakers", "collected_at"}

	copyFromSource := make([][]interface{}, len(odds))
	for i, o := range odds {
		copyFromSource[i] = []interface{}{
			o.FixtureID, o.League, o.BetType, o.BetValue, o.AverageOdd, o.Bookmakers, o.CollectedAt,
		}
	}

	count, err := r.db.GetPool().CopyFrom(ctx, pgx.Identifier{"odds_records"}, columns, pgx.CopyFromRows(copyFromSource))
	if err != nil {
		return fmt.Errorf("failed to batch insert odds records: %w", err)
	}

	if count != int64(len(odds)) {
		return fmt.Errorf("inserted %d rows, expected %d", count, len(odds))
	}

	return nil
}

// GetCurrentByFixture retrieves the captured odds for one fixture
func (r *PostgresOddsRepository) GetCurrentByFixture(ctx context.Context, fixtureID int) ([]models.OddsRecord, error) {
	query := `
		SELECT fixture_id, league, bet_type, bet_value, average_odd, bookmakers, collected_at
		FROM odds_records
		WHERE fixture_id = $1
		ORDER BY bet_type, bet_value
	`

	rows, err := r.db.GetPool().Query(ctx, query, fixtureID)
	if err != nil {
		return nil, fmt.Errorf("failed to query odds by fixture: %w", err)
	}
	defer rows.Close()

	return scanOdds(rows)
}

// GetHistoricalByBet retrieves odds for resolved fixtures grouped by bet
// identifier. These form the similarity reference sets.
func (r *PostgresOddsRepository) GetHistoricalByBet(ctx context.Context) (map[string][]models.OddsRecord, error) {
	query := `
		SELECT o.fixture_id, o.league, o.bet_type, o.bet_value, o.average_odd, o.bookmakers, o.collected_at
		FROM odds_records o
		JOIN match_results m ON m.fixture_id = o.fixture_id
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query historical odds: %w", err)
	}
	defer rows.Close()

	records, err := scanOdds(rows)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]models.OddsRecord)
	for _, rec := range records {
		key := rec.BetIdentifier()
		grouped[key] = append(grouped[key], rec)
	}

	return grouped, nil
}

func scanOdds(rows pgx.Rows) ([]models.OddsRecord, error) {
	var records []models.OddsRecord
	for rows.Next() {
		var o models.OddsRecord
		err := rows.Scan(
			&o.FixtureID, &o.League, &o.BetType, &o.BetValue,
			&o.AverageOdd, &o.Bookmakers, &o.CollectedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan odds record: %w", err)
		}
		records = append(records, o)
	}
	return records, rows.Err()
}
