package rating

import (
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-forecast/internal/models"
)

// Rating constants. K controls how hard a single result moves a rating;
// the lookback window weights recent form by ignoring older matches.
const (
	DefaultKFactor       = 40.0
	DefaultInitialRating = 1500.0
	DefaultLookbackDays  = 365
)

// DefaultLeagueInitialRatings seeds stronger leagues above weaker ones so
// newly promoted or newly covered teams start at a plausible level.
var DefaultLeagueInitialRatings = map[string]float64{
	"ENG1": 1500, "FRA1": 1500, "ITA1": 1500, "GER1": 1500, "SPA1": 1500,
	"POR1": 1450, "NED1": 1450,
	"BEL1": 1400, "TUR1": 1400,
	"ENG2": 1350, "FRA2": 1350, "ITA2": 1350, "GER2": 1350, "SPA2": 1350,
	"SAU1": 1300,
}

// Updater folds match results into a rating store in strict
// chronological order.
type Updater struct {
	kFactor      float64
	lookbackDays int
	logger       *logrus.Logger
}

// NewUpdater creates an updater with the given K-factor and lookback
// window in days. Non-positive arguments fall back to the defaults.
func NewUpdater(kFactor float64, lookbackDays int, logger *logrus.Logger) *Updater {
	if kFactor <= 0 {
		kFactor = DefaultKFactor
	}
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Updater{kFactor: kFactor, lookbackDays: lookbackDays, logger: logger}
}

// ExpectedScore returns the logistic win expectation for the home side:
// 1 / (1 + 10^((awayElo-homeElo)/400)).
func ExpectedScore(homeElo, awayElo float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (awayElo-homeElo)/400.0))
}

// ProcessMatches updates both teams' ratings after each result, in date
// order. Only matches inside the lookback window relative to asOf are
// folded, and matches on or after asOf are excluded so a rating at time
// t never reflects results from t onward. Malformed records are skipped
// with a warning and do not abort the batch. Returns the number of
// matches applied.
func (u *Updater) ProcessMatches(store *Store, matches []models.MatchResult, asOf time.Time) int {
	ordered := make([]models.MatchResult, len(matches))
	copy(ordered, matches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	cutoff := asOf.AddDate(0, 0, -u.lookbackDays)
	applied := 0

	for i := range ordered {
		m := &ordered[i]
		if !m.IsValid() {
			u.logger.WithFields(logrus.Fields{
				"fixture_id": m.FixtureID,
				"league":     m.League,
			}).Warn("Skipping malformed match record")
			continue
		}
		if m.Date.Before(cutoff) || !m.Date.Before(asOf) {
			continue
		}
		u.applyMatch(store, m)
		applied++
	}

	u.logger.WithFields(logrus.Fields{
		"matches_applied": applied,
		"teams_rated":     store.Len(),
		"as_of":           asOf.Format("2006-01-02"),
	}).Info("Rating fold complete")

	return applied
}

// applyMatch performs the zero-sum ELO exchange for one result.
func (u *Updater) applyMatch(store *Store, m *models.MatchResult) {
	homeElo := store.Get(m.League, m.HomeTeam)
	awayElo := store.Get(m.League, m.AwayTeam)

	expectedHome := ExpectedScore(homeElo, awayElo)
	expectedAway := 1 - expectedHome

	scoreHome := m.Outcome()
	scoreAway := 1 - scoreHome

	store.Set(m.League, m.HomeTeam, homeElo+u.kFactor*(scoreHome-expectedHome))
	store.Set(m.League, m.AwayTeam, awayElo+u.kFactor*(scoreAway-expectedAway))
}
