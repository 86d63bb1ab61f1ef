// Package rating implements the ELO rating store, the chronological
// match-fold updater and the rating-to-probability converter.
package rating

import (
	"sort"
	"time"

	"github.com/yourusername/footy-forecast/internal/models"
)

// Store maps team identity to its current ELO value. It is explicit
// mutable state passed by reference into the Updater and Converter;
// there is no ambient singleton. Not safe for concurrent mutation;
// generation runs are single-threaded batches.
type Store struct {
	initial        float64
	leagueInitials map[string]float64
	ratings        map[string]map[string]float64
}

// NewStore creates a rating store. Unseen teams are seeded at the
// league-specific initial rating, falling back to the default.
func NewStore(initial float64, leagueInitials map[string]float64) *Store {
	if initial <= 0 {
		initial = DefaultInitialRating
	}
	return &Store{
		initial:        initial,
		leagueInitials: leagueInitials,
		ratings:        make(map[string]map[string]float64),
	}
}

// Get returns the current rating for a team, seeding it on first sight.
func (s *Store) Get(league, team string) float64 {
	if teams, ok := s.ratings[league]; ok {
		if elo, ok := teams[team]; ok {
			return elo
		}
	}
	return s.initialFor(league)
}

// Set stores a team's rating, creating the league bucket if needed.
func (s *Store) Set(league, team string, elo float64) {
	if _, ok := s.ratings[league]; !ok {
		s.ratings[league] = make(map[string]float64)
	}
	s.ratings[league][team] = elo
}

// Has reports whether the team has been rated at least once.
func (s *Store) Has(league, team string) bool {
	teams, ok := s.ratings[league]
	if !ok {
		return false
	}
	_, ok = teams[team]
	return ok
}

// Len returns the number of rated teams across all leagues.
func (s *Store) Len() int {
	n := 0
	for _, teams := range s.ratings {
		n += len(teams)
	}
	return n
}

// Snapshot returns all ratings as of the given date, sorted by league
// then descending rating, matching the published ratings table order.
func (s *Store) Snapshot(asOf time.Time) []models.TeamRating {
	out := make([]models.TeamRating, 0, s.Len())
	for league, teams := range s.ratings {
		for team, elo := range teams {
			out = append(out, models.TeamRating{
				League:   league,
				TeamName: team,
				Rating:   elo,
				AsOf:     asOf,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].League != out[j].League {
			return out[i].League < out[j].League
		}
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].TeamName < out[j].TeamName
	})
	return out
}

func (s *Store) initialFor(league string) float64 {
	if elo, ok := s.leagueInitials[league]; ok {
		return elo
	}
	return s.initial
}
