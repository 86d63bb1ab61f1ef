package models

import "time"

// TeamRating is a snapshot of one team's ELO value as of a given date.
// Ratings are derived state: rebuilt from the match history on every
// generation run, never accumulated across runs.
type TeamRating struct {
	League   string    `db:"league" json:"league" validate:"required"`
	TeamName string    `db:"team_name" json:"team_name" validate:"required"`
	Rating   float64   `db:"rating" json:"rating" validate:"required"`
	AsOf     time.Time `db:"as_of" json:"as_of"`
}

// OutcomeProbabilities holds the three-way probabilities derived from a
// rating pair, together with their implied fair odds.
type OutcomeProbabilities struct {
	HomeWin float64 `json:"home_win_probability"`
	Draw    float64 `json:"draw_probability"`
	AwayWin float64 `json:"away_win_probability"`

	HomeOdds float64 `json:"home_win_odds"`
	DrawOdds float64 `json:"draw_odds"`
	AwayOdds float64 `json:"away_win_odds"`
}

// Sum returns the probability mass, which must be 1 within floating
// tolerance for any rating pair.
func (p OutcomeProbabilities) Sum() float64 {
	return p.HomeWin + p.Draw + p.AwayWin
}
