package models

import (
	"fmt"
	"time"
)

// OddsRecord represents an averaged market price for one bet selection on
// one fixture. Immutable once captured; exists for both resolved
// (historical) and upcoming (unresolved) fixtures.
type OddsRecord struct {
	FixtureID   int       `db:"fixture_id" json:"fixture_id" validate:"required,gt=0"`
	League      string    `db:"league" json:"league" validate:"required"`
	BetType     string    `db:"bet_type" json:"bet_type" validate:"required"`
	BetValue    string    `db:"bet_value" json:"bet_value" validate:"required"`
	AverageOdd  float64   `db:"average_odd" json:"average_odd" validate:"required,gt=1"`
	Bookmakers  int       `db:"bookmakers" json:"bookmakers" validate:"gte=0"`
	CollectedAt time.Time `db:"collected_at" json:"collected_at"`
}

// BetIdentifier joins bet type and value into the key used to group
// reference sets, e.g. "Over/Under_Over 2.5".
func (o *OddsRecord) BetIdentifier() string {
	return fmt.Sprintf("%s_%s", o.BetType, o.BetValue)
}

// IsReliable reports whether enough bookmakers priced the selection for
// the record to qualify as a similarity reference.
func (o *OddsRecord) IsReliable(minBookmakers int) bool {
	return o.Bookmakers >= minBookmakers && o.AverageOdd > 1
}

// ImpliedProbability returns the probability implied by the average odd.
func (o *OddsRecord) ImpliedProbability() float64 {
	if o.AverageOdd <= 0 {
		return 0
	}
	return 1.0 / o.AverageOdd
}
