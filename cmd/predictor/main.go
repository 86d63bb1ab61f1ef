// Package main provides the predictor CLI: on-demand generation runs,
// ratings inspection and archive analysis.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/footy-forecast/internal/analysis"
	"github.com/yourusername/footy-forecast/internal/archive"
	"github.com/yourusername/footy-forecast/internal/config"
	"github.com/yourusername/footy-forecast/internal/database"
	"github.com/yourusername/footy-forecast/internal/datasource"
	"github.com/yourusername/footy-forecast/internal/logger"
	"github.com/yourusername/footy-forecast/internal/metrics"
	"github.com/yourusername/footy-forecast/internal/prediction"
	"github.com/yourusername/footy-forecast/internal/repository"
	"github.com/yourusername/footy-forecast/internal/scheduler"
	"github.com/yourusername/footy-forecast/internal/service"
	"github.com/yourusername/footy-forecast/internal/similarity"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	dateFlag   string
	appLog     *logrus.Logger
	cfg        *config.Config
	db         *database.DB
	repos      *repository.Repositories
)

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit %s)", Version, GitCommit)
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&dateFlag, "date", "d", "", "Report date (YYYY-MM-DD, default today UTC)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(ratingsCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(scheduleCmd)
}

var rootCmd = &cobra.Command{
	Use:   "predictor",
	Short: "Football prediction report generator",
	Long:  `Generates daily CSV prediction reports from ELO ratings and odds-similarity scoring.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Analysis reads the CSV archive only; no database needed
		needsDB := cmd.Name() != "analyze"
		return setup(needsDB)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if db != nil {
			db.Close()
		}
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run prediction generation for a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := reportDate()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Hour)
		defer cancel()

		svc, err := buildPredictionService()
		if err != nil {
			return err
		}

		summary, err := svc.GenerateDaily(ctx, date)
		if err != nil {
			return fmt.Errorf("generation failed: %w", err)
		}

		fmt.Printf("Run %s complete for %s\n", summary.RunID, summary.Date.Format("2006-01-02"))
		fmt.Printf("  Matches folded:   %d\n", summary.MatchesFolded)
		fmt.Printf("  Teams rated:      %d\n", summary.TeamsRated)
		fmt.Printf("  Fixtures:         %d (%d skipped)\n", summary.FixturesTotal, summary.FixturesSkipped)
		fmt.Printf("  Rows emitted:     %d\n", summary.RowsEmitted)
		fmt.Printf("  Duration:         %s\n", summary.Duration.Round(time.Millisecond))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored prediction counts for a date",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := reportDate()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		count, err := repos.Prediction.CountByDate(ctx, date)
		if err != nil {
			return fmt.Errorf("failed to count predictions: %w", err)
		}

		fixtures, err := repos.Fixture.GetByDate(ctx, date)
		if err != nil {
			return fmt.Errorf("failed to load fixtures: %w", err)
		}

		fmt.Printf("Date:        %s\n", date.Format("2006-01-02"))
		fmt.Printf("Fixtures:    %d\n", len(fixtures))
		fmt.Printf("Predictions: %d\n", count)

		writer := archive.NewWriter(cfg.Predictions.OutputDir, cfg.Predictions.HistoricalFile, appLog)
		if _, err := os.Stat(writer.DailyPath(date)); err == nil {
			fmt.Printf("Report:      %s\n", writer.DailyPath(date))
		} else {
			fmt.Println("Report:      not written")
		}
		return nil
	},
}

var ratingsCmd = &cobra.Command{
	Use:   "ratings",
	Short: "Print the current ELO ratings table",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := reportDate()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		svc, err := buildPredictionService()
		if err != nil {
			return err
		}

		ratings, err := svc.Ratings(ctx, date)
		if err != nil {
			return fmt.Errorf("failed to compute ratings: %w", err)
		}

		fmt.Printf("%-6s %-30s %8s\n", "LEAGUE", "TEAM", "RATING")
		for _, r := range ratings {
			fmt.Printf("%-6s %-30s %8.1f\n", r.League, r.TeamName, r.Rating)
		}
		return nil
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Summarize the historical prediction archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := archive.ReadRows(cfg.Predictions.HistoricalFile)
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("no archive at %s yet", cfg.Predictions.HistoricalFile)
			}
			return fmt.Errorf("failed to read archive: %w", err)
		}

		analyzer := analysis.NewAnalyzer(70.0, 20)
		var report *analysis.Report
		if dateFlag != "" {
			date, err := reportDate()
			if err != nil {
				return err
			}
			report = analyzer.AnalyzeDate(rows, date)
		} else {
			report = analyzer.Analyze(rows)
		}

		fmt.Print(analysis.FormatConsoleReport(report))
		return nil
	},
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Check database and upstream API connectivity",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}
		fmt.Println("Database:  OK")

		source, closeSource := buildDataSource()
		defer closeSource()

		league := cfg.LeagueCodes()[0]
		fixtures, err := source.FetchFixtures(ctx, league, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("API check failed for %s: %w", league, err)
		}
		fmt.Printf("API:       OK (%s, %d fixtures today)\n", league, len(fixtures))
		return nil
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the sync and generation jobs on their cron schedules",
	RunE: func(cmd *cobra.Command, args []string) error {
		source, closeSource := buildDataSource()
		defer closeSource()

		ingestionSvc := service.NewIngestionService(
			source,
			repos.Match,
			repos.Fixture,
			repos.Odds,
			cfg.LeagueCodes(),
			cfg.Ingestion.BatchSize,
			appLog,
		)
		predictionSvc, err := buildPredictionService()
		if err != nil {
			return err
		}

		sched := scheduler.NewScheduler(ingestionSvc, predictionSvc, appLog)
		if err := sched.ScheduleDataSync(cfg.Ingestion.Schedule.DataSync); err != nil {
			return fmt.Errorf("failed to schedule data sync: %w", err)
		}
		if err := sched.ScheduleDailyGeneration(cfg.Ingestion.Schedule.DailyGeneration); err != nil {
			return fmt.Errorf("failed to schedule daily generation: %w", err)
		}
		if err := sched.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		fmt.Printf("Scheduler running, next run %s. Ctrl-C to stop.\n",
			sched.GetNextRun().Format(time.RFC3339))

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		return sched.Stop()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func buildDataSource() (*datasource.APIFootballClient, func()) {
	httpClient := datasource.NewRateLimitedHTTPClient(datasource.HTTPClientConfig{
		Timeout:      cfg.APITimeout(),
		MaxRetries:   cfg.APIFootball.MaxRetries,
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 10 * time.Second,
		RateLimit:    cfg.APIFootball.RateLimitPerSecond,
	}, appLog)
	closeFn := func() {
		if err := httpClient.Close(); err != nil {
			appLog.WithError(err).Warn("Failed to close HTTP client")
		}
	}
	return datasource.NewAPIFootballClient(cfg, httpClient, appLog), closeFn
}

func setup(needsDB bool) error {
	// .env is a development convenience; absence is fine
	_ = godotenv.Load()

	var err error
	cfg, err = config.LoadWithDefaults(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	appLog = logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"version": Version,
		"commit":  GitCommit,
	}).Debug("Predictor starting")
	metrics.InitRegistry()

	if !needsDB {
		return nil
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err = database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	repos, err = repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	return nil
}

func buildPredictionService() (*service.PredictionService, error) {
	writer := archive.NewWriter(cfg.Predictions.OutputDir, cfg.Predictions.HistoricalFile, appLog)

	generator, err := prediction.NewGenerator(
		prediction.Config{
			KFactor:              cfg.Rating.KFactor,
			InitialRating:        cfg.Rating.InitialRating,
			LeagueInitialRatings: cfg.LeagueInitialRatings(),
			LookbackDays:         cfg.Rating.LookbackDays,
			Similarity: similarity.Config{
				Threshold:            cfg.Similarity.Threshold,
				MinBookmakers:        cfg.Similarity.MinBookmakers,
				MinSimilarMatches:    cfg.Similarity.MinSimilarMatches,
				ConfidenceSaturation: cfg.Similarity.ConfidenceSaturation,
			},
		},
		repos.Match,
		repos.Fixture,
		repos.Odds,
		appLog,
		repos.Prediction,
		writer,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}

	return service.NewPredictionService(generator, repos.Rating, appLog), nil
}

func reportDate() (time.Time, error) {
	if dateFlag == "" {
		return time.Now().UTC(), nil
	}
	date, err := time.Parse("2006-01-02", dateFlag)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", dateFlag)
	}
	return date, nil
}
