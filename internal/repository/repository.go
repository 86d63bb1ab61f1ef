package repository

import (
	"fmt"

	"github.com/yourusername/footy-forecast/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Match      MatchRepository
	Fixture    FixtureRepository
	Odds       OddsRepository
	Prediction PredictionRepository
	Rating     RatingRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Match:      NewPostgresMatchRepository(db),
		Fixture:    NewPostgresFixtureRepository(db),
		Odds:       NewPostgresOddsRepository(db),
		Prediction: NewPostgresPredictionRepository(db),
		Rating:     NewPostgresRatingRepository(db),
	}, nil
}
