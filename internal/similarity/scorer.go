// Package similarity implements the odds-similarity scorer: a
// frequency-based lookup of how often the market has priced a selection
// near the current odd.
package similarity

import (
	"math"

	"github.com/yourusername/footy-forecast/internal/models"
)

// Scorer defaults. The threshold is relative: a reference odd r matches
// target t iff |r-t| <= Threshold*t, boundary inclusive.
const (
	DefaultThreshold            = 0.15
	DefaultMinBookmakers        = 2
	DefaultMinSimilarMatches    = 10
	DefaultConfidenceSaturation = 50

	// boundaryEpsilon absorbs float64 rounding at the band edges. Odds
	// are quoted to at most four decimals, so 1e-9 cannot admit a price
	// that is genuinely outside the band.
	boundaryEpsilon = 1e-9
)

// Result is the outcome of scoring one target odd against a historical
// reference set. When the qualifying reference set is empty the result
// is flagged insufficient rather than carrying a divided-by-zero
// percentage.
type Result struct {
	TargetOdd        float64 `json:"target_odd"`
	SimilarCount     int     `json:"similar_matches_count"`
	ReferenceCount   int     `json:"similarity_reference_count"`
	SimilarityPct    float64 `json:"similarity_pct"`
	Confidence       float64 `json:"confidence"`
	InsufficientData bool    `json:"insufficient_data"`
	LowSample        bool    `json:"low_sample"`
}

// Scorer compares a fixture's current odds against resolved historical
// odds for the same bet selection. Pure function over the two record
// collections; safe to call repeatedly with identical results.
type Scorer struct {
	threshold            float64
	minBookmakers        int
	minSimilarMatches    int
	confidenceSaturation int
}

// Config holds scorer tuning knobs. Zero values fall back to defaults.
type Config struct {
	Threshold            float64
	MinBookmakers        int
	MinSimilarMatches    int
	ConfidenceSaturation int
}

// NewScorer creates a scorer from config, applying defaults for unset fields.
func NewScorer(cfg Config) *Scorer {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.MinBookmakers <= 0 {
		cfg.MinBookmakers = DefaultMinBookmakers
	}
	if cfg.MinSimilarMatches <= 0 {
		cfg.MinSimilarMatches = DefaultMinSimilarMatches
	}
	if cfg.ConfidenceSaturation <= 0 {
		cfg.ConfidenceSaturation = DefaultConfidenceSaturation
	}
	return &Scorer{
		threshold:            cfg.Threshold,
		minBookmakers:        cfg.MinBookmakers,
		minSimilarMatches:    cfg.MinSimilarMatches,
		confidenceSaturation: cfg.ConfidenceSaturation,
	}
}

// Score counts how many qualifying historical records fall within the
// tolerance band around the target odd. References priced by fewer than
// the minimum bookmaker count are filtered out before anything is
// counted, so they inflate neither the numerator nor the denominator.
func (s *Scorer) Score(targetOdd float64, references []models.OddsRecord) Result {
	result := Result{TargetOdd: targetOdd}

	if targetOdd <= 1 {
		result.InsufficientData = true
		return result
	}

	// The band comparison carries a small epsilon so a reference sitting
	// exactly on the boundary is included regardless of float64 rounding:
	// 0.15*2.0 rounds below 2.0-1.70, which would drop an exact -15% edge.
	band := s.threshold*targetOdd + boundaryEpsilon
	for i := range references {
		ref := &references[i]
		if !ref.IsReliable(s.minBookmakers) {
			continue
		}
		result.ReferenceCount++
		if math.Abs(ref.AverageOdd-targetOdd) <= band {
			result.SimilarCount++
		}
	}

	if result.ReferenceCount == 0 {
		result.InsufficientData = true
		return result
	}

	result.SimilarityPct = float64(result.SimilarCount) / float64(result.ReferenceCount) * 100
	result.Confidence = s.confidence(result.ReferenceCount)
	result.LowSample = result.SimilarCount < s.minSimilarMatches

	return result
}

// confidence scales linearly with reference volume and saturates at 100.
func (s *Scorer) confidence(referenceCount int) float64 {
	c := float64(referenceCount) / float64(s.confidenceSaturation) * 100
	if c > 100 {
		return 100
	}
	return c
}
