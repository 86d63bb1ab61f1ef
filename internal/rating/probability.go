package rating

import (
	"math"

	"github.com/yourusername/footy-forecast/internal/models"
)

// Converter turns a rating pair into three-way outcome probabilities.
type Converter struct{}

// NewConverter creates a probability converter.
func NewConverter() *Converter {
	return &Converter{}
}

// Probabilities returns (home win, draw, away win) probabilities summing
// to 1 for the given rating pair, with implied fair odds.
//
// The draw share is 1 - |p_home - p_away| before normalization: maximal
// at rating parity and shrinking monotonically as the gap widens. A
// Poisson goal model would be sharper, but this keeps the converter a
// closed-form function of the two ratings.
func (c *Converter) Probabilities(homeElo, awayElo float64) models.OutcomeProbabilities {
	probHome := ExpectedScore(homeElo, awayElo)
	probAway := 1 - probHome

	probDraw := 1 - math.Abs(probHome-probAway)

	total := probHome + probAway + probDraw
	probHome /= total
	probAway /= total
	probDraw /= total

	return models.OutcomeProbabilities{
		HomeWin:  probHome,
		Draw:     probDraw,
		AwayWin:  probAway,
		HomeOdds: impliedOdds(probHome),
		DrawOdds: impliedOdds(probDraw),
		AwayOdds: impliedOdds(probAway),
	}
}

// impliedOdds is the reciprocal of a probability; zero probability maps
// to zero odds rather than infinity.
func impliedOdds(p float64) float64 {
	if p <= 0 {
		return 0
	}
	return 1.0 / p
}
