package rating

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/footy-forecast/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func match(id int, date time.Time, home, away string, hg, ag int) models.MatchResult {
	return models.MatchResult{
		FixtureID: id,
		Date:      date,
		League:    "ENG1",
		HomeTeam:  home,
		AwayTeam:  away,
		HomeGoals: hg,
		AwayGoals: ag,
	}
}

func TestExpectedScore(t *testing.T) {
	assert.InDelta(t, 0.5, ExpectedScore(1500, 1500), 1e-9)
	assert.InDelta(t, 0.640065, ExpectedScore(1600, 1500), 1e-5)

	// Complementary by construction
	assert.InDelta(t, 1.0, ExpectedScore(1600, 1500)+ExpectedScore(1500, 1600), 1e-9)
}

func TestProcessMatchesKnownExchange(t *testing.T) {
	asOf := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	store := NewStore(1500, nil)
	store.Set("ENG1", "Arsenal", 1600)
	store.Set("ENG1", "Everton", 1500)

	updater := NewUpdater(20, 365, testLogger())
	applied := updater.ProcessMatches(store, []models.MatchResult{
		match(1, asOf.AddDate(0, 0, -1), "Arsenal", "Everton", 2, 0),
	}, asOf)

	require.Equal(t, 1, applied)
	assert.InDelta(t, 1607.2, store.Get("ENG1", "Arsenal"), 0.01)
	assert.InDelta(t, 1492.8, store.Get("ENG1", "Everton"), 0.01)
}

func TestProcessMatchesDraw(t *testing.T) {
	asOf := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	store := NewStore(1500, nil)

	updater := NewUpdater(40, 365, testLogger())
	updater.ProcessMatches(store, []models.MatchResult{
		match(1, asOf.AddDate(0, 0, -1), "Fulham", "Brentford", 1, 1),
	}, asOf)

	// Equal ratings and a draw move nothing
	assert.InDelta(t, 1500, store.Get("ENG1", "Fulham"), 1e-9)
	assert.InDelta(t, 1500, store.Get("ENG1", "Brentford"), 1e-9)
}

func TestProcessMatchesZeroSum(t *testing.T) {
	asOf := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	store := NewStore(1500, nil)

	matches := []models.MatchResult{
		match(1, asOf.AddDate(0, 0, -30), "Arsenal", "Everton", 3, 1),
		match(2, asOf.AddDate(0, 0, -20), "Everton", "Fulham", 0, 2),
		match(3, asOf.AddDate(0, 0, -10), "Fulham", "Arsenal", 1, 1),
	}

	updater := NewUpdater(40, 365, testLogger())
	applied := updater.ProcessMatches(store, matches, asOf)
	require.Equal(t, 3, applied)

	sum := store.Get("ENG1", "Arsenal") + store.Get("ENG1", "Everton") + store.Get("ENG1", "Fulham")
	assert.InDelta(t, 4500, sum, 1e-6)
}

func TestProcessMatchesOrderIndependentOfInputOrder(t *testing.T) {
	asOf := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)

	matches := []models.MatchResult{
		match(1, asOf.AddDate(0, 0, -30), "Arsenal", "Everton", 2, 0),
		match(2, asOf.AddDate(0, 0, -20), "Everton", "Arsenal", 1, 0),
		match(3, asOf.AddDate(0, 0, -10), "Arsenal", "Everton", 0, 3),
	}
	reversed := []models.MatchResult{matches[2], matches[0], matches[1]}

	updater := NewUpdater(40, 365, testLogger())

	sorted := NewStore(1500, nil)
	updater.ProcessMatches(sorted, matches, asOf)

	shuffled := NewStore(1500, nil)
	updater.ProcessMatches(shuffled, reversed, asOf)

	assert.InDelta(t, sorted.Get("ENG1", "Arsenal"), shuffled.Get("ENG1", "Arsenal"), 1e-9)
	assert.InDelta(t, sorted.Get("ENG1", "Everton"), shuffled.Get("ENG1", "Everton"), 1e-9)
}

func TestProcessMatchesLookbackWindow(t *testing.T) {
	asOf := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	store := NewStore(1500, nil)

	matches := []models.MatchResult{
		match(1, asOf.AddDate(0, 0, -400), "Arsenal", "Everton", 5, 0), // too old
		match(2, asOf, "Arsenal", "Everton", 5, 0),                     // on asOf, excluded
		match(3, asOf.AddDate(0, 0, 1), "Arsenal", "Everton", 5, 0),    // future
		match(4, asOf.AddDate(0, 0, -1), "Arsenal", "Everton", 2, 1),   // inside
	}

	updater := NewUpdater(40, 365, testLogger())
	applied := updater.ProcessMatches(store, matches, asOf)

	assert.Equal(t, 1, applied)
}

func TestProcessMatchesSkipsMalformed(t *testing.T) {
	asOf := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	store := NewStore(1500, nil)

	bad := match(0, asOf.AddDate(0, 0, -1), "Arsenal", "Everton", 1, 0) // missing fixture id
	sameTeam := match(2, asOf.AddDate(0, 0, -1), "Arsenal", "Arsenal", 1, 0)
	good := match(3, asOf.AddDate(0, 0, -1), "Arsenal", "Everton", 1, 0)

	updater := NewUpdater(40, 365, testLogger())
	applied := updater.ProcessMatches(store, []models.MatchResult{bad, sameTeam, good}, asOf)

	assert.Equal(t, 1, applied)
}

func TestStoreSeedsLeagueInitial(t *testing.T) {
	store := NewStore(1500, map[string]float64{"SAU1": 1300, "ENG2": 1350})

	assert.InDelta(t, 1300, store.Get("SAU1", "Al Hilal"), 1e-9)
	assert.InDelta(t, 1350, store.Get("ENG2", "Leeds"), 1e-9)
	assert.InDelta(t, 1500, store.Get("ENG1", "Arsenal"), 1e-9)
}

func TestStoreSnapshotOrdering(t *testing.T) {
	store := NewStore(1500, nil)
	store.Set("ENG1", "Arsenal", 1550)
	store.Set("ENG1", "Everton", 1450)
	store.Set("BEL1", "Genk", 1400)

	snapshot := store.Snapshot(time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC))
	require.Len(t, snapshot, 3)

	// Leagues ascending, ratings descending within a league
	assert.Equal(t, "BEL1", snapshot[0].League)
	assert.Equal(t, "Arsenal", snapshot[1].TeamName)
	assert.Equal(t, "Everton", snapshot[2].TeamName)
}
