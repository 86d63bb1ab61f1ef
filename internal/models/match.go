package models

import (
	"time"
)

// Team identifies a club within a league. Teams have no independent
// lifecycle; they exist only as references from matches and ratings.
type Team struct {
	Name   string `db:"name" json:"name" validate:"required"`
	League string `db:"league" json:"league" validate:"required"`
}

// MatchResult represents a finished fixture. Immutable once ingested;
// it is the source of truth for rating updates.
type MatchResult struct {
	FixtureID int       `db:"fixture_id" json:"fixture_id" validate:"required,gt=0"`
	Date      time.Time `db:"date" json:"date" validate:"required"`
	League    string    `db:"league" json:"league" validate:"required"`
	HomeTeam  string    `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam  string    `db:"away_team" json:"away_team" validate:"required"`
	HomeGoals int       `db:"home_goals" json:"home_goals" validate:"gte=0"`
	AwayGoals int       `db:"away_goals" json:"away_goals" validate:"gte=0"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Outcome returns the home side's actual score for rating purposes:
// 1 for a win, 0.5 for a draw, 0 for a loss.
func (m *MatchResult) Outcome() float64 {
	switch {
	case m.HomeGoals > m.AwayGoals:
		return 1.0
	case m.HomeGoals < m.AwayGoals:
		return 0.0
	default:
		return 0.5
	}
}

// IsValid reports whether the record carries everything a rating update
// needs. Malformed records are skipped with a warning, never fatal.
func (m *MatchResult) IsValid() bool {
	return m.FixtureID > 0 &&
		!m.Date.IsZero() &&
		m.League != "" &&
		m.HomeTeam != "" &&
		m.AwayTeam != "" &&
		m.HomeTeam != m.AwayTeam &&
		m.HomeGoals >= 0 &&
		m.AwayGoals >= 0
}

// Fixture represents a scheduled match, resolved or not.
type Fixture struct {
	ID         int       `db:"id" json:"id" validate:"required,gt=0"`
	Date       time.Time `db:"date" json:"date" validate:"required"`
	League     string    `db:"league" json:"league" validate:"required"`
	LeagueName string    `db:"league_name" json:"league_name"`
	Country    string    `db:"country" json:"country"`
	HomeTeam   string    `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam   string    `db:"away_team" json:"away_team" validate:"required"`
	Venue      string    `db:"venue" json:"venue"`
	Status     string    `db:"status" json:"status"`
}

// IsUpcoming checks if the fixture has not been played yet.
func (f *Fixture) IsUpcoming() bool {
	return f.Status == "" || f.Status == "Not Started" || f.Status == "Time to be defined"
}
