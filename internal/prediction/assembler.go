// Package prediction assembles ELO probabilities and odds-similarity
// scores into the daily prediction report.
package prediction

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-forecast/internal/models"
	"github.com/yourusername/footy-forecast/internal/rating"
	"github.com/yourusername/footy-forecast/internal/similarity"
)

// Assembler combines the rating store, probability converter and
// similarity scorer into output rows. It holds no mutable state of its
// own; one instance serves a whole generation run.
type Assembler struct {
	store     *rating.Store
	converter *rating.Converter
	scorer    *similarity.Scorer
	logger    *logrus.Logger
}

// NewAssembler creates an assembler over a populated rating store.
func NewAssembler(store *rating.Store, converter *rating.Converter, scorer *similarity.Scorer, logger *logrus.Logger) *Assembler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Assembler{
		store:     store,
		converter: converter,
		scorer:    scorer,
		logger:    logger,
	}
}

// AssembleFixture emits one row per bet selection priced for the
// fixture. Similarity is scored for every bet type; ELO probabilities
// are attached to Match Winner rows when both teams have a rating
// history. A fixture with no usable odds yields a single marker row so
// the day's slate stays complete.
func (a *Assembler) AssembleFixture(
	runID uuid.UUID,
	date time.Time,
	fixture models.Fixture,
	current []models.OddsRecord,
	references map[string][]models.OddsRecord,
) []models.PredictionRow {
	now := time.Now().UTC()

	if len(current) == 0 {
		a.logger.WithFields(logrus.Fields{
			"fixture_id": fixture.ID,
			"league":     fixture.League,
		}).Warn("No usable odds for fixture, emitting marker row")
		return []models.PredictionRow{a.markerRow(runID, date, fixture, now)}
	}

	rows := make([]models.PredictionRow, 0, len(current))
	for i := range current {
		odds := &current[i]
		score := a.scorer.Score(odds.AverageOdd, references[odds.BetIdentifier()])

		row := models.PredictionRow{
			RunID:            runID,
			Date:             date,
			FixtureID:        fixture.ID,
			League:           fixture.League,
			HomeTeam:         fixture.HomeTeam,
			AwayTeam:         fixture.AwayTeam,
			BetType:          odds.BetType,
			BetValue:         odds.BetValue,
			TargetOdd:        odds.AverageOdd,
			SimilarityPct:    score.SimilarityPct,
			SimilarCount:     score.SimilarCount,
			ReferenceCount:   score.ReferenceCount,
			Confidence:       score.Confidence,
			InsufficientData: score.InsufficientData,
			LowSample:        score.LowSample,
			GeneratedAt:      now,
		}

		if odds.BetType == models.BetTypeMatchWinner {
			a.attachELO(&row, fixture)
		}

		rows = append(rows, row)
	}

	return rows
}

// attachELO fills the rating-derived fields when both sides are known to
// the store. A team on first sight has no history worth predicting from,
// so the row keeps its similarity metrics and nothing else.
func (a *Assembler) attachELO(row *models.PredictionRow, fixture models.Fixture) {
	if !a.store.Has(fixture.League, fixture.HomeTeam) || !a.store.Has(fixture.League, fixture.AwayTeam) {
		a.logger.WithFields(logrus.Fields{
			"fixture_id": fixture.ID,
			"home_team":  fixture.HomeTeam,
			"away_team":  fixture.AwayTeam,
		}).Debug("Rating history missing for one side, skipping ELO fields")
		return
	}

	homeElo := a.store.Get(fixture.League, fixture.HomeTeam)
	awayElo := a.store.Get(fixture.League, fixture.AwayTeam)
	diff := homeElo - awayElo
	probs := a.converter.Probabilities(homeElo, awayElo)

	row.HomeRating = &homeElo
	row.AwayRating = &awayElo
	row.RatingDiff = &diff
	row.HomeWinProb = &probs.HomeWin
	row.DrawProb = &probs.Draw
	row.AwayWinProb = &probs.AwayWin
	row.HomeWinOdds = &probs.HomeOdds
	row.DrawOdds = &probs.DrawOdds
	row.AwayWinOdds = &probs.AwayOdds
}

func (a *Assembler) markerRow(runID uuid.UUID, date time.Time, fixture models.Fixture, now time.Time) models.PredictionRow {
	return models.PredictionRow{
		RunID:            runID,
		Date:             date,
		FixtureID:        fixture.ID,
		League:           fixture.League,
		HomeTeam:         fixture.HomeTeam,
		AwayTeam:         fixture.AwayTeam,
		BetType:          models.BetTypeNone,
		InsufficientData: true,
		GeneratedAt:      now,
	}
}
