// Package archive persists prediction rows as CSV: a per-day report plus
// an append-only historical archive. Both files are replaced atomically
// (write-to-temp-then-rename) so an interrupted run never leaves a
// partial file, and the historical archive overwrites by key so re-runs
// for a date stay idempotent.
package archive

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-forecast/internal/models"
)

var columns = []string{
	"run_id", "date", "fixture_id", "league", "home_team", "away_team",
	"bet_type", "bet_value", "target_odd",
	"similarity_pct", "similar_matches_count", "similarity_reference_count",
	"confidence", "insufficient_data", "low_sample",
	"home_rating", "away_rating", "rating_diff",
	"home_win_probability", "draw_probability", "away_win_probability",
	"home_win_odds", "draw_odds", "away_win_odds",
	"generated_at",
}

// Writer is the CSV sink for prediction rows.
type Writer struct {
	outputDir      string
	historicalPath string
	logger         *logrus.Logger
}

// NewWriter creates a writer rooted at the output directory.
func NewWriter(outputDir, historicalPath string, logger *logrus.Logger) *Writer {
	if logger == nil {
		logger = logrus.New()
	}
	return &Writer{
		outputDir:      outputDir,
		historicalPath: historicalPath,
		logger:         logger,
	}
}

// UpsertRows writes the daily report for the rows' date and merges them
// into the historical archive. Satisfies prediction.RowSink.
func (w *Writer) UpsertRows(ctx context.Context, rows []models.PredictionRow) error {
	if len(rows) == 0 {
		return nil
	}

	date := rows[0].Date
	if err := w.WriteDaily(date, rows); err != nil {
		return err
	}
	return w.AppendHistorical(rows)
}

// WriteDaily replaces the per-day report file for the given date.
func (w *Writer) WriteDaily(date time.Time, rows []models.PredictionRow) error {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := w.DailyPath(date)
	if err := writeAtomic(path, rows); err != nil {
		return fmt.Errorf("failed to write daily report: %w", err)
	}

	w.logger.WithFields(logrus.Fields{
		"path": path,
		"rows": len(rows),
	}).Info("Daily prediction report written")

	return nil
}

// AppendHistorical merges rows into the archive, overwriting any existing
// row with the same (fixture_id, bet_type, bet_value, date) key. Existing
// rows with other keys are preserved untouched.
func (w *Writer) AppendHistorical(rows []models.PredictionRow) error {
	if err := os.MkdirAll(filepath.Dir(w.historicalPath), 0o755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	existing, err := ReadRows(w.historicalPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read historical archive: %w", err)
	}

	replaced := make(map[models.PredictionKey]struct{}, len(rows))
	for i := range rows {
		replaced[rows[i].Key()] = struct{}{}
	}

	merged := make([]models.PredictionRow, 0, len(existing)+len(rows))
	for i := range existing {
		if _, ok := replaced[existing[i].Key()]; ok {
			continue
		}
		merged = append(merged, existing[i])
	}
	merged = append(merged, rows...)

	if err := writeAtomic(w.historicalPath, merged); err != nil {
		return fmt.Errorf("failed to write historical archive: %w", err)
	}

	w.logger.WithFields(logrus.Fields{
		"path":  w.historicalPath,
		"total": len(merged),
		"new":   len(rows),
	}).Info("Historical archive updated")

	return nil
}

// DailyPath returns the per-day report path for a date.
func (w *Writer) DailyPath(date time.Time) string {
	return filepath.Join(w.outputDir, fmt.Sprintf("daily_%s.csv", date.Format("2006-01-02")))
}

// writeAtomic writes all rows to a temp file in the target directory and
// renames it over the destination.
func writeAtomic(path string, rows []models.PredictionRow) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	cw := csv.NewWriter(tmp)
	if err := cw.Write(columns); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := range rows {
		if err := cw.Write(encodeRow(&rows[i])); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}

func encodeRow(row *models.PredictionRow) []string {
	return []string{
		row.RunID.String(),
		row.Date.Format("2006-01-02"),
		strconv.Itoa(row.FixtureID),
		row.League,
		row.HomeTeam,
		row.AwayTeam,
		row.BetType,
		row.BetValue,
		formatFloat(row.TargetOdd),
		formatFloat(row.SimilarityPct),
		strconv.Itoa(row.SimilarCount),
		strconv.Itoa(row.ReferenceCount),
		formatFloat(row.Confidence),
		strconv.FormatBool(row.InsufficientData),
		strconv.FormatBool(row.LowSample),
		formatFloatPtr(row.HomeRating),
		formatFloatPtr(row.AwayRating),
		formatFloatPtr(row.RatingDiff),
		formatFloatPtr(row.HomeWinProb),
		formatFloatPtr(row.DrawProb),
		formatFloatPtr(row.AwayWinProb),
		formatFloatPtr(row.HomeWinOdds),
		formatFloatPtr(row.DrawOdds),
		formatFloatPtr(row.AwayWinOdds),
		row.GeneratedAt.UTC().Format(time.RFC3339),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatFloatPtr(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}
