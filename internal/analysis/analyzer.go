// Package analysis summarizes the historical prediction archive: volume
// and confidence per league and per date, the similarity distribution,
// and the highest-confidence selections.
package analysis

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/yourusername/footy-forecast/internal/models"
)

// LeagueStats aggregates archive rows for one league
type LeagueStats struct {
	League        string
	Rows          int
	Fixtures      int
	AvgConfidence float64
	AvgSimilarity float64
}

// DateStats aggregates archive rows for one report date
type DateStats struct {
	Date          string
	Rows          int
	Fixtures      int
	AvgConfidence float64
}

// SimilarityBucket counts rows whose similarity falls in [Low, High)
type SimilarityBucket struct {
	Low   float64
	High  float64
	Count int
}

// Highlight is one high-confidence selection
type Highlight struct {
	Date          string
	League        string
	HomeTeam      string
	AwayTeam      string
	BetType       string
	BetValue      string
	TargetOdd     float64
	SimilarityPct float64
	Confidence    float64
}

// Report is the complete archive summary
type Report struct {
	TotalRows        int
	TotalFixtures    int
	FirstDate        string
	LastDate         string
	InsufficientData int
	LowSample        int
	Leagues          []LeagueStats
	Dates            []DateStats
	Similarity       []SimilarityBucket
	Highlights       []Highlight
}

// Analyzer computes archive summaries
type Analyzer struct {
	minConfidence float64
	maxHighlights int
}

// NewAnalyzer creates an analyzer. minConfidence bounds the highlights
// section; maxHighlights caps its length.
func NewAnalyzer(minConfidence float64, maxHighlights int) *Analyzer {
	if minConfidence <= 0 {
		minConfidence = 70.0
	}
	if maxHighlights <= 0 {
		maxHighlights = 20
	}
	return &Analyzer{minConfidence: minConfidence, maxHighlights: maxHighlights}
}

// Analyze summarizes the given archive rows. Marker rows (no scored bet)
// are counted toward the insufficient-data total but excluded from the
// per-league and similarity aggregates so they do not drag averages down.
func (a *Analyzer) Analyze(rows []models.PredictionRow) *Report {
	report := &Report{TotalRows: len(rows)}
	if len(rows) == 0 {
		return report
	}

	fixtures := make(map[int]struct{})
	leagueAgg := make(map[string]*leagueAccumulator)
	dateAgg := make(map[string]*dateAccumulator)
	buckets := newSimilarityBuckets()

	for i := range rows {
		row := &rows[i]
		fixtures[row.FixtureID] = struct{}{}

		dateKey := row.Date.Format("2006-01-02")
		if report.FirstDate == "" || dateKey < report.FirstDate {
			report.FirstDate = dateKey
		}
		if dateKey > report.LastDate {
			report.LastDate = dateKey
		}

		if row.InsufficientData {
			report.InsufficientData++
			continue
		}
		if row.LowSample {
			report.LowSample++
		}

		la, ok := leagueAgg[row.League]
		if !ok {
			la = &leagueAccumulator{fixtures: make(map[int]struct{})}
			leagueAgg[row.League] = la
		}
		la.rows++
		la.confidenceSum += row.Confidence
		la.similaritySum += row.SimilarityPct
		la.fixtures[row.FixtureID] = struct{}{}

		da, ok := dateAgg[dateKey]
		if !ok {
			da = &dateAccumulator{fixtures: make(map[int]struct{})}
			dateAgg[dateKey] = da
		}
		da.rows++
		da.confidenceSum += row.Confidence
		da.fixtures[row.FixtureID] = struct{}{}

		buckets.add(row.SimilarityPct)

		if row.Confidence >= a.minConfidence {
			report.Highlights = append(report.Highlights, Highlight{
				Date:          dateKey,
				League:        row.League,
				HomeTeam:      row.HomeTeam,
				AwayTeam:      row.AwayTeam,
				BetType:       row.BetType,
				BetValue:      row.BetValue,
				TargetOdd:     row.TargetOdd,
				SimilarityPct: row.SimilarityPct,
				Confidence:    row.Confidence,
			})
		}
	}

	report.TotalFixtures = len(fixtures)
	report.Leagues = flattenLeagues(leagueAgg)
	report.Dates = flattenDates(dateAgg)
	report.Similarity = buckets.slice()

	sort.Slice(report.Highlights, func(i, j int) bool {
		if report.Highlights[i].Confidence != report.Highlights[j].Confidence {
			return report.Highlights[i].Confidence > report.Highlights[j].Confidence
		}
		return report.Highlights[i].SimilarityPct > report.Highlights[j].SimilarityPct
	})
	if len(report.Highlights) > a.maxHighlights {
		report.Highlights = report.Highlights[:a.maxHighlights]
	}

	return report
}

// AnalyzeDate summarizes only the rows for one report date
func (a *Analyzer) AnalyzeDate(rows []models.PredictionRow, date time.Time) *Report {
	day := date.Format("2006-01-02")
	filtered := make([]models.PredictionRow, 0, len(rows))
	for i := range rows {
		if rows[i].Date.Format("2006-01-02") == day {
			filtered = append(filtered, rows[i])
		}
	}
	return a.Analyze(filtered)
}

type leagueAccumulator struct {
	rows          int
	confidenceSum float64
	similaritySum float64
	fixtures      map[int]struct{}
}

type dateAccumulator struct {
	rows          int
	confidenceSum float64
	fixtures      map[int]struct{}
}

func flattenLeagues(agg map[string]*leagueAccumulator) []LeagueStats {
	out := make([]LeagueStats, 0, len(agg))
	for league, la := range agg {
		out = append(out, LeagueStats{
			League:        league,
			Rows:          la.rows,
			Fixtures:      len(la.fixtures),
			AvgConfidence: la.confidenceSum / float64(la.rows),
			AvgSimilarity: la.similaritySum / float64(la.rows),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rows > out[j].Rows })
	return out
}

func flattenDates(agg map[string]*dateAccumulator) []DateStats {
	out := make([]DateStats, 0, len(agg))
	for date, da := range agg {
		out = append(out, DateStats{
			Date:          date,
			Rows:          da.rows,
			Fixtures:      len(da.fixtures),
			AvgConfidence: da.confidenceSum / float64(da.rows),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

type similarityBuckets struct {
	counts [5]int
}

func newSimilarityBuckets() *similarityBuckets {
	return &similarityBuckets{}
}

func (b *similarityBuckets) add(pct float64) {
	switch {
	case pct < 20:
		b.counts[0]++
	case pct < 40:
		b.counts[1]++
	case pct < 60:
		b.counts[2]++
	case pct < 80:
		b.counts[3]++
	default:
		b.counts[4]++
	}
}

func (b *similarityBuckets) slice() []SimilarityBucket {
	out := make([]SimilarityBucket, 0, len(b.counts))
	for i, count := range b.counts {
		low := float64(i * 20)
		high := low + 20
		if i == len(b.counts)-1 {
			high = 100
		}
		out = append(out, SimilarityBucket{Low: low, High: high, Count: count})
	}
	return out
}

// FormatConsoleReport renders the report for terminal output
func FormatConsoleReport(report *Report) string {
	var builder strings.Builder
	builder.WriteString("Prediction Archive Report\n")
	builder.WriteString("=========================\n")
	builder.WriteString(fmt.Sprintf("Rows: %d across %d fixtures\n", report.TotalRows, report.TotalFixtures))
	if report.FirstDate != "" {
		builder.WriteString(fmt.Sprintf("Period: %s to %s\n", report.FirstDate, report.LastDate))
	}
	builder.WriteString(fmt.Sprintf("Insufficient data rows: %d\n", report.InsufficientData))
	builder.WriteString(fmt.Sprintf("Low sample rows: %d\n", report.LowSample))

	if len(report.Leagues) > 0 {
		builder.WriteString("\nBy league:\n")
		for _, ls := range report.Leagues {
			builder.WriteString(fmt.Sprintf("  %-6s rows=%-5d fixtures=%-4d avg_conf=%5.1f%% avg_sim=%5.1f%%\n",
				ls.League, ls.Rows, ls.Fixtures, ls.AvgConfidence, ls.AvgSimilarity))
		}
	}

	if len(report.Similarity) > 0 {
		builder.WriteString("\nSimilarity distribution:\n")
		for _, bucket := range report.Similarity {
			builder.WriteString(fmt.Sprintf("  %3.0f-%3.0f%%: %d\n", bucket.Low, bucket.High, bucket.Count))
		}
	}

	if len(report.Highlights) > 0 {
		builder.WriteString("\nHigh-confidence selections:\n")
		for _, h := range report.Highlights {
			builder.WriteString(fmt.Sprintf("  %s | %s | %s vs %s | %s %s @ %.2f | sim %.1f%% conf %.1f%%\n",
				h.Date, h.League, h.HomeTeam, h.AwayTeam, h.BetType, h.BetValue, h.TargetOdd, h.SimilarityPct, h.Confidence))
		}
	}

	return builder.String()
}
