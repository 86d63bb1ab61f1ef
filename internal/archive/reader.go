package archive

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/footy-forecast/internal/models"
)

// ReadRows loads a prediction CSV written by this package. Rows that fail
// to parse are dropped rather than failing the whole file: the archive
// outlives code changes and a single bad line must not lock it.
func ReadRows(path string) ([]models.PredictionRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}

	var rows []models.PredictionRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		row, ok := decodeRow(record, index)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func decodeRow(record []string, index map[string]int) (models.PredictionRow, bool) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	fixtureID, err := strconv.Atoi(field("fixture_id"))
	if err != nil {
		return models.PredictionRow{}, false
	}
	date, err := time.Parse("2006-01-02", field("date"))
	if err != nil {
		return models.PredictionRow{}, false
	}

	runID, _ := uuid.Parse(field("run_id"))
	generatedAt, _ := time.Parse(time.RFC3339, field("generated_at"))

	row := models.PredictionRow{
		RunID:            runID,
		Date:             date,
		FixtureID:        fixtureID,
		League:           field("league"),
		HomeTeam:         field("home_team"),
		AwayTeam:         field("away_team"),
		BetType:          field("bet_type"),
		BetValue:         field("bet_value"),
		TargetOdd:        parseFloat(field("target_odd")),
		SimilarityPct:    parseFloat(field("similarity_pct")),
		SimilarCount:     parseInt(field("similar_matches_count")),
		ReferenceCount:   parseInt(field("similarity_reference_count")),
		Confidence:       parseFloat(field("confidence")),
		InsufficientData: field("insufficient_data") == "true",
		LowSample:        field("low_sample") == "true",
		HomeRating:       parseFloatPtr(field("home_rating")),
		AwayRating:       parseFloatPtr(field("away_rating")),
		RatingDiff:       parseFloatPtr(field("rating_diff")),
		HomeWinProb:      parseFloatPtr(field("home_win_probability")),
		DrawProb:         parseFloatPtr(field("draw_probability")),
		AwayWinProb:      parseFloatPtr(field("away_win_probability")),
		HomeWinOdds:      parseFloatPtr(field("home_win_odds")),
		DrawOdds:         parseFloatPtr(field("draw_odds")),
		AwayWinOdds:      parseFloatPtr(field("away_win_odds")),
		GeneratedAt:      generatedAt,
	}

	return row, true
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func parseFloatPtr(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseInt(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
