// Package datasource fetches fixtures, results and odds from external
// football data providers and normalizes them into domain records.
package datasource

import (
	"context"
	"time"

	"github.com/yourusername/footy-forecast/internal/models"
)

// FootballDataSource defines the interface for fetching football data
// from an external provider.
type FootballDataSource interface {
	// FetchFixtures retrieves the fixtures scheduled on a date for one league
	FetchFixtures(ctx context.Context, league string, date time.Time) ([]models.Fixture, error)

	// FetchResults retrieves finished matches for one league within a date range
	FetchResults(ctx context.Context, league string, start, end time.Time) ([]models.MatchResult, error)

	// FetchOdds retrieves the averaged market odds for one fixture
	FetchOdds(ctx context.Context, fixtureID int) ([]models.OddsRecord, error)

	// Name returns the name of the data source
	Name() string
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
