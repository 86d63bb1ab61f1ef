package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/footy-forecast/internal/models"
)

func refs(odds ...float64) []models.OddsRecord {
	out := make([]models.OddsRecord, 0, len(odds))
	for i, odd := range odds {
		out = append(out, models.OddsRecord{
			FixtureID:  1000 + i,
			BetType:    "Over/Under",
			BetValue:   "Over 2.5",
			AverageOdd: odd,
			Bookmakers: 5,
		})
	}
	return out
}

func TestScoreAllWithinBand(t *testing.T) {
	scorer := NewScorer(Config{})

	// Target 2.0 with threshold 0.15 accepts [1.7, 2.3]
	references := refs(1.70, 1.80, 1.85, 1.90, 1.95, 2.00, 2.10, 2.20, 2.25, 2.30)
	result := scorer.Score(2.0, references)

	assert.False(t, result.InsufficientData)
	assert.Equal(t, 10, result.ReferenceCount)
	assert.Equal(t, 10, result.SimilarCount)
	assert.InDelta(t, 100.0, result.SimilarityPct, 1e-9)
	assert.False(t, result.LowSample)
}

func TestScoreBoundaryInclusive(t *testing.T) {
	scorer := NewScorer(Config{})

	result := scorer.Score(2.0, refs(2.30, 2.3000001, 1.70, 1.6999999))
	assert.Equal(t, 2, result.SimilarCount)
	assert.Equal(t, 4, result.ReferenceCount)
}

func TestScoreLowerBoundaryExactEdge(t *testing.T) {
	scorer := NewScorer(Config{})

	// 0.15*2.0 rounds just below 2.0-1.70 in float64; a reference at the
	// exact -15% edge must still qualify.
	result := scorer.Score(2.0, refs(1.70))
	assert.Equal(t, 1, result.SimilarCount)
	assert.Equal(t, 1, result.ReferenceCount)
}

func TestScoreFiltersThinlyPricedReferences(t *testing.T) {
	scorer := NewScorer(Config{MinBookmakers: 3})

	references := refs(2.0, 2.0, 2.0)
	references[0].Bookmakers = 1
	references[1].Bookmakers = 2

	result := scorer.Score(2.0, references)

	// Filtered references count toward neither numerator nor denominator
	assert.Equal(t, 1, result.ReferenceCount)
	assert.Equal(t, 1, result.SimilarCount)
	assert.InDelta(t, 100.0, result.SimilarityPct, 1e-9)
}

func TestScoreEmptyReferences(t *testing.T) {
	scorer := NewScorer(Config{})

	result := scorer.Score(2.0, nil)
	assert.True(t, result.InsufficientData)
	assert.Zero(t, result.SimilarityPct)
	assert.Zero(t, result.Confidence)
}

func TestScoreInvalidTarget(t *testing.T) {
	scorer := NewScorer(Config{})

	for _, target := range []float64{0, 1, 0.5, -2} {
		result := scorer.Score(target, refs(2.0, 2.1))
		assert.True(t, result.InsufficientData, "target %v", target)
	}
}

func TestScoreLowSampleFlag(t *testing.T) {
	scorer := NewScorer(Config{MinSimilarMatches: 10})

	// 5 similar out of 20: percentage stands, but the sample is thin
	references := append(refs(2.0, 2.0, 2.0, 2.0, 2.0), refs(5.0, 5.0, 5.0, 5.0, 5.0, 5.0, 5.0, 5.0, 5.0, 5.0, 5.0, 5.0, 5.0, 5.0, 5.0)...)
	result := scorer.Score(2.0, references)

	assert.Equal(t, 5, result.SimilarCount)
	assert.Equal(t, 20, result.ReferenceCount)
	assert.InDelta(t, 25.0, result.SimilarityPct, 1e-9)
	assert.True(t, result.LowSample)
}

func TestConfidenceSaturates(t *testing.T) {
	scorer := NewScorer(Config{ConfidenceSaturation: 50})

	references25 := make([]models.OddsRecord, 0, 25)
	for i := 0; i < 25; i++ {
		references25 = append(references25, models.OddsRecord{FixtureID: i + 1, AverageOdd: 2.0, Bookmakers: 5})
	}
	result := scorer.Score(2.0, references25)
	assert.InDelta(t, 50.0, result.Confidence, 1e-9)

	references100 := make([]models.OddsRecord, 0, 100)
	for i := 0; i < 100; i++ {
		references100 = append(references100, models.OddsRecord{FixtureID: i + 1, AverageOdd: 2.0, Bookmakers: 5})
	}
	result = scorer.Score(2.0, references100)
	assert.InDelta(t, 100.0, result.Confidence, 1e-9)
}

func TestScoreDeterministic(t *testing.T) {
	scorer := NewScorer(Config{})
	references := refs(1.8, 2.0, 2.6, 3.1, 2.2)

	first := scorer.Score(2.0, references)
	second := scorer.Score(2.0, references)
	assert.Equal(t, first, second)
}
