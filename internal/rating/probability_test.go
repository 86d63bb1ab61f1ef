package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbabilitiesSumToOne(t *testing.T) {
	converter := NewConverter()

	pairs := [][2]float64{
		{1500, 1500},
		{1600, 1500},
		{1500, 1600},
		{1800, 1300},
		{1300, 1800},
	}

	for _, pair := range pairs {
		probs := converter.Probabilities(pair[0], pair[1])
		assert.InDelta(t, 1.0, probs.Sum(), 1e-9, "ratings %v", pair)
		assert.Greater(t, probs.HomeWin, 0.0)
		assert.Greater(t, probs.Draw, 0.0)
		assert.Greater(t, probs.AwayWin, 0.0)
	}
}

func TestProbabilitiesParity(t *testing.T) {
	converter := NewConverter()
	probs := converter.Probabilities(1500, 1500)

	assert.InDelta(t, probs.HomeWin, probs.AwayWin, 1e-9)
	// At parity the raw draw share is 1 against 0.5 each side, so the
	// normalized split is 1/4, 1/2, 1/4.
	assert.InDelta(t, 0.25, probs.HomeWin, 1e-9)
	assert.InDelta(t, 0.50, probs.Draw, 1e-9)
}

func TestDrawShrinksWithRatingGap(t *testing.T) {
	converter := NewConverter()

	prev := converter.Probabilities(1500, 1500).Draw
	for gap := 50.0; gap <= 500; gap += 50 {
		draw := converter.Probabilities(1500+gap, 1500).Draw
		assert.Less(t, draw, prev, "gap %v", gap)
		prev = draw
	}
}

func TestProbabilitiesMirror(t *testing.T) {
	converter := NewConverter()

	a := converter.Probabilities(1650, 1480)
	b := converter.Probabilities(1480, 1650)

	assert.InDelta(t, a.HomeWin, b.AwayWin, 1e-9)
	assert.InDelta(t, a.AwayWin, b.HomeWin, 1e-9)
	assert.InDelta(t, a.Draw, b.Draw, 1e-9)
}

func TestImpliedOddsAreReciprocal(t *testing.T) {
	converter := NewConverter()
	probs := converter.Probabilities(1620, 1540)

	assert.InDelta(t, 1/probs.HomeWin, probs.HomeOdds, 1e-9)
	assert.InDelta(t, 1/probs.Draw, probs.DrawOdds, 1e-9)
	assert.InDelta(t, 1/probs.AwayWin, probs.AwayOdds, 1e-9)
}
