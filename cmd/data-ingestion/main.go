// Package main provides the entry point for the data collection and
// scheduled prediction service.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/footy-forecast/internal/archive"
	"github.com/yourusername/footy-forecast/internal/config"
	"github.com/yourusername/footy-forecast/internal/database"
	"github.com/yourusername/footy-forecast/internal/datasource"
	"github.com/yourusername/footy-forecast/internal/health"
	"github.com/yourusername/footy-forecast/internal/logger"
	"github.com/yourusername/footy-forecast/internal/metrics"
	"github.com/yourusername/footy-forecast/internal/prediction"
	"github.com/yourusername/footy-forecast/internal/repository"
	"github.com/yourusername/footy-forecast/internal/scheduler"
	"github.com/yourusername/footy-forecast/internal/service"
	"github.com/yourusername/footy-forecast/internal/similarity"
)

// Build information - set via ldflags
var Version = "dev"

func main() {
	configFile := flag.String("config", "config/config.yaml", "Path to configuration file")
	runOnce := flag.Bool("once", false, "Run one sync and generation pass, then exit")
	flag.Parse()

	// .env is a development convenience; absence is fine
	_ = godotenv.Load()

	cfg, err := config.LoadWithDefaults(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     Version,
	}).Info("Footy Forecast data service starting")

	metrics.InitRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := database.NewDB(connectCtx, &cfg.Database)
	connectCancel()
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()
	appLog.Info("Database connection established")

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	httpClient := datasource.NewRateLimitedHTTPClient(datasource.HTTPClientConfig{
		Timeout:      cfg.APITimeout(),
		MaxRetries:   cfg.APIFootball.MaxRetries,
		RetryWaitMin: 500 * time.Millisecond,
		RetryWaitMax: 10 * time.Second,
		RateLimit:    cfg.APIFootball.RateLimitPerSecond,
	}, appLog)
	defer httpClient.Close()

	source := datasource.NewAPIFootballClient(cfg, httpClient, appLog)
	appLog.WithField("source", source.Name()).Info("Data source initialized")

	ingestionSvc := service.NewIngestionService(
		source,
		repos.Match,
		repos.Fixture,
		repos.Odds,
		cfg.LeagueCodes(),
		cfg.Ingestion.BatchSize,
		appLog,
	)

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
		appLog.WithError(err).Fatal("Failed to create generator")
	}
	predictionSvc := service.NewPredictionService(generator, repos.Rating, appLog)

	if *runOnce {
		runSinglePass(ctx, ingestionSvc, predictionSvc, appLog)
		return
	}

	sched := scheduler.NewScheduler(ingestionSvc, predictionSvc, appLog)
	if err := sched.ScheduleDataSync(cfg.Ingestion.Schedule.DataSync); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule data sync")
	}
	if err := sched.ScheduleDailyGeneration(cfg.Ingestion.Schedule.DailyGeneration); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule daily generation")
	}
	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}
	defer sched.Stop()

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Logger:      appLog,
		DB:          db,
		Scheduler:   sched,
	})
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}
	healthServer.SetReady(true)

	if cfg.Metrics.Enabled {
		startMetricsServer(ctx, cfg, appLog)
	}

	appLog.WithFields(logrus.Fields{
		"data_sync":        cfg.Ingestion.Schedule.DataSync,
		"daily_generation": cfg.Ingestion.Schedule.DailyGeneration,
		"next_run":         sched.GetNextRun().Format(time.RFC3339),
	}).Info("Service is running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	healthServer.SetReady(false)
	cancel()
	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Error during scheduler shutdown")
	}

	appLog.Info("Footy Forecast data service shut down successfully")
}

// runSinglePass does one sync plus one generation for today and exits,
// for cron-managed deployments and manual backfills.
func runSinglePass(ctx context.Context, ingestionSvc *service.IngestionService, predictionSvc *service.PredictionService, appLog *logrus.Logger) {
	date := time.Now().UTC()

	summary, err := ingestionSvc.SyncDay(ctx, date)
	if err != nil {
		appLog.WithError(err).Fatal("Data sync failed")
	}
	appLog.WithField("summary", summary.String()).Info("Data sync complete")

	runSummary, err := predictionSvc.GenerateDaily(ctx, date)
	if err != nil {
		appLog.WithError(err).Fatal("Prediction generation failed")
	}
	appLog.WithFields(logrus.Fields{
		"run_id": runSummary.RunID,
		"rows":   runSummary.RowsEmitted,
	}).Info("Prediction generation complete")
}

func startMetricsServer(ctx context.Context, cfg *config.Config, appLog *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Metrics.Path, metrics.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		appLog.WithFields(logrus.Fields{
			"port": cfg.Metrics.Port,
			"path": cfg.Metrics.Path,
		}).Info("Metrics server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.WithError(err).Error("Metrics server error")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()
}
