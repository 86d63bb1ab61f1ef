package models

import (
	"time"

	"github.com/google/uuid"
)

// Bet type constants for the markets the assembler understands natively.
const (
	BetTypeMatchWinner  = "Match Winner"
	BetTypeOverUnder    = "Over/Under"
	BetTypeBothToScore  = "Both Teams Score"
	BetTypeDoubleChance = "Double Chance"

	// BetTypeNone marks a row emitted for a fixture that had no usable odds.
	BetTypeNone = "NO_BETS"
)

// PredictionRow is one line of the daily report: one fixture, one bet
// selection, its similarity metrics and (for Match Winner rows) the
// ELO-derived probabilities. Appended to the historical archive and
// never mutated after creation.
type PredictionRow struct {
	RunID     uuid.UUID `db:"run_id" json:"run_id"`
	Date      time.Time `db:"date" json:"date" validate:"required"`
	FixtureID int       `db:"fixture_id" json:"fixture_id" validate:"required,gt=0"`
	League    string    `db:"league" json:"league" validate:"required"`
	HomeTeam  string    `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam  string    `db:"away_team" json:"away_team" validate:"required"`

	BetType   string  `db:"bet_type" json:"bet_type" validate:"required"`
	BetValue  string  `db:"bet_value" json:"bet_value"`
	TargetOdd float64 `db:"target_odd" json:"target_odd"`

	SimilarityPct    float64 `db:"similarity_pct" json:"similarity_pct"`
	SimilarCount     int     `db:"similar_count" json:"similar_matches_count"`
	ReferenceCount   int     `db:"reference_count" json:"similarity_reference_count"`
	Confidence       float64 `db:"confidence" json:"confidence"`
	InsufficientData bool    `db:"insufficient_data" json:"insufficient_data"`
	LowSample        bool    `db:"low_sample" json:"low_sample"`

	// ELO fields are populated only for Match Winner rows.
	HomeRating  *float64 `db:"home_rating" json:"home_rating,omitempty"`
	AwayRating  *float64 `db:"away_rating" json:"away_rating,omitempty"`
	RatingDiff  *float64 `db:"rating_diff" json:"rating_diff,omitempty"`
	HomeWinProb *float64 `db:"home_win_prob" json:"home_win_probability,omitempty"`
	DrawProb    *float64 `db:"draw_prob" json:"draw_probability,omitempty"`
	AwayWinProb *float64 `db:"away_win_prob" json:"away_win_probability,omitempty"`
	HomeWinOdds *float64 `db:"home_win_odds" json:"home_win_odds,omitempty"`
	DrawOdds    *float64 `db:"draw_odds" json:"draw_odds,omitempty"`
	AwayWinOdds *float64 `db:"away_win_odds" json:"away_win_odds,omitempty"`

	GeneratedAt time.Time `db:"generated_at" json:"generated_at"`
}

// Key returns the archive upsert key. Re-runs for the same date overwrite
// by this key rather than appending duplicates.
func (p *PredictionRow) Key() PredictionKey {
	return PredictionKey{
		FixtureID: p.FixtureID,
		BetType:   p.BetType,
		BetValue:  p.BetValue,
		Date:      p.Date.Format("2006-01-02"),
	}
}

// HasELO reports whether the row carries ELO-derived probabilities.
func (p *PredictionRow) HasELO() bool {
	return p.HomeWinProb != nil && p.DrawProb != nil && p.AwayWinProb != nil
}

// PredictionKey uniquely identifies a prediction row in the archive.
type PredictionKey struct {
	FixtureID int
	BetType   string
	BetValue  string
	Date      string
}
