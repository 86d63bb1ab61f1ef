package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/footy-forecast/internal/database"
	"github.com/yourusername/footy-forecast/internal/models"
)

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// UpsertRows writes prediction rows, overwriting by the archive key so a
// re-run for the same date replaces rather than duplicates.
func (r *PostgresPredictionRepository) UpsertRows(ctx context.Context, rows []models.PredictionRow) error {
	if len(rows) == 0 {
		return nil
	}

	query := `
		INSERT INTO predictions (
			run_id, date, fixture_id, league, home_team, away_team,
			bet_type, bet_value, target_odd,
			similarity_pct, similar_count, reference_count, confidence,
			insufficient_data, low_sample,
			home_rating, away_rating, rating_diff,
			home_win_prob, draw_prob, away_win_prob,
			home_win_odds, draw_odds, away_win_odds,
			generated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		ON CONFLICT (fixture_id, bet_type, bet_value, date) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			target_odd = EXCLUDED.target_odd,
			similarity_pct = EXCLUDED.similarity_pct,
			similar_count = EXCLUDED.similar_count,
			reference_count = EXCLUDED.reference_count,
			confidence = EXCLUDED.confidence,
			insufficient_data = EXCLUDED.insufficient_data,
			low_sample = EXCLUDED.low_sample,
			home_rating = EXCLUDED.home_rating,
			away_rating = EXCLUDED.away_rating,
			rating_diff = EXCLUDED.rating_diff,
			home_win_prob = EXCLUDED.home_win_prob,
			draw_prob = EXCLUDED.draw_prob,
			away_win_prob = EXCLUDED.away_win_prob,
			home_win_odds = EXCLUDED.home_win_odds,
			draw_odds = EXCLUDED.draw_odds,
			away_win_odds = EXCLUDED.away_win_odds,
			generated_at = EXCLUDED.generated_at
	`

	batch := &pgx.Batch{}
	for i := range rows {
		row := &rows[i]
		batch.Queue(query,
			row.RunID, row.Date, row.FixtureID, row.League, row.HomeTeam, row.AwayTeam,
			row.BetType, row.BetValue, row.TargetOdd,
			row.SimilarityPct, row.SimilarCount, row.ReferenceCount, row.Confidence,
			row.InsufficientData, row.LowSample,
			row.HomeRating, row.AwayRating, row.RatingDiff,
			row.HomeWinProb, row.DrawProb, row.AwayWinProb,
			row.HomeWinOdds, row.DrawOdds, row.AwayWinOdds,
			row.GeneratedAt,
		)
	}

	results := r.db.GetPool().SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert prediction row: %w", err)
		}
	}

	return nil
}

// GetByDate retrieves prediction rows generated for a calendar day
func (r *PostgresPredictionRepository) GetByDate(ctx context.Context, date time.Time) ([]models.PredictionRow, error) {
	query := `
		SELECT run_id, date, fixture_id, league, home_team, away_team,
			bet_type, bet_value, target_odd,
			similarity_pct, similar_count, reference_count, confidence,
			insufficient_data, low_sample,
			home_rating, away_rating, rating_diff,
			home_win_prob, draw_prob, away_win_prob,
			home_win_odds, draw_odds, away_win_odds,
			generated_at
		FROM predictions
		WHERE date = $1
		ORDER BY fixture_id, bet_type, bet_value
	`

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	rows, err := r.db.GetPool().Query(ctx, query, day)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions by date: %w", err)
	}
	defer rows.Close()

	var out []models.PredictionRow
	for rows.Next() {
		var p models.PredictionRow
		err := rows.Scan(
			&p.RunID, &p.Date, &p.FixtureID, &p.League, &p.HomeTeam, &p.AwayTeam,
			&p.BetType, &p.BetValue, &p.TargetOdd,
			&p.SimilarityPct, &p.SimilarCount, &p.ReferenceCount, &p.Confidence,
			&p.InsufficientData, &p.LowSample,
			&p.HomeRating, &p.AwayRating, &p.RatingDiff,
			&p.HomeWinProb, &p.DrawProb, &p.AwayWinProb,
			&p.HomeWinOdds, &p.DrawOdds, &p.AwayWinOdds,
			&p.GeneratedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction row: %w", err)
		}
		out = append(out, p)
	}

	return out, rows.Err()
}

// CountByDate returns the number of archived rows for a date. Used by the
// idempotence checks and the status command.
func (r *PostgresPredictionRepository) CountByDate(ctx context.Context, date time.Time) (int, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)

	var count int
	err := r.db.GetPool().QueryRow(ctx,
		`SELECT COUNT(*) FROM predictions WHERE date = $1`, day,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count predictions: %w", err)
	}

	return count, nil
}
