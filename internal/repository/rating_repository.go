package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/footy-forecast/internal/database"
	"github.com/yourusername/footy-forecast/internal/models"
)

// PostgresRatingRepository implements RatingRepository for PostgreSQL
type PostgresRatingRepository struct {
	db *database.DB
}

// NewPostgresRatingRepository creates a new rating repository
func NewPostgresRatingRepository(db *database.DB) RatingRepository {
	return &PostgresRatingRepository{db: db}
}

// ReplaceSnapshot swaps the published ratings table for a fresh fold.
// Ratings are derived state, so the whole snapshot is replaced inside
// one transaction rather than reconciled row by row.
func (r *PostgresRatingRepository) ReplaceSnapshot(ctx context.Context, ratings []models.TeamRating) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `TRUNCATE team_ratings`); err != nil {
			return fmt.Errorf("failed to clear ratings snapshot: %w", err)
		}

		if len(ratings) == 0 {
			return nil
		}

		columns := []string{"league", "team_name", "rating", "as_of"}
		source := make([][]interface{}, len(ratings))
		for i, tr := range ratings {
			source[i] = []interface{}{tr.League, tr.TeamName, tr.Rating, tr.AsOf}
		}

		count, err := tx.CopyFrom(ctx, pgx.Identifier{"team_ratings"}, columns, pgx.CopyFromRows(source))
		if err != nil {
			return fmt.Errorf("failed to copy ratings snapshot: %w", err)
		}
		if count != int64(len(ratings)) {
			return fmt.Errorf("copied %d ratings, expected %d", count, len(ratings))
		}

		return nil
	})
}

// GetLatest retrieves the published ratings snapshot
func (r *PostgresRatingRepository) GetLatest(ctx context.Context) ([]models.TeamRating, error) {
	query := `
		SELECT league, team_name, rating, as_of
		FROM team_ratings
		ORDER BY league ASC, rating DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer rows.Close()

	var ratings []models.TeamRating
	for rows.Next() {
		var tr models.TeamRating
		if err := rows.Scan(&tr.League, &tr.TeamName, &tr.Rating, &tr.AsOf); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, tr)
	}

	return ratings, rows.Err()
}
