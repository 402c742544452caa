// Package main is the entry point for the turnip price ingestion service.
// It loads community spreadsheets of weekly turnip prices, classifies the
// free-text pattern labels, stores the resulting records and serves them,
// together with the training dataset derived from them, over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/turnips/internal/config"
	"github.com/aristath/turnips/internal/database"
	"github.com/aristath/turnips/internal/events"
	"github.com/aristath/turnips/internal/modules/ingestion"
	"github.com/aristath/turnips/internal/modules/patterns"
	"github.com/aristath/turnips/internal/modules/records"
	"github.com/aristath/turnips/internal/reliability"
	"github.com/aristath/turnips/internal/scheduler"
	"github.com/aristath/turnips/internal/server"
	"github.com/aristath/turnips/internal/sources"
	"github.com/aristath/turnips/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	log.Info().Str("data_dir", cfg.DataDir).Msg("Starting turnips")

	db, err := database.New(database.Config{
		Path:    cfg.DatabasePath(),
		Profile: database.ProfileStandard,
		Name:    "records",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open records database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate records database")
	}

	repo := records.NewRepository(db.Conn(), log)

	bus := events.NewBus()
	eventManager := events.NewManager(bus, log)

	classifier := patterns.NewClassifier(patterns.Options{
		MaxDistance:       cfg.MaxPatternDistance,
		UseDistanceMetric: cfg.UseDistanceMetric,
	})
	assembler := ingestion.NewAssembler(
		ingestion.NewParser(classifier),
		log,
		ingestion.AssemblerOptions{Verbose: cfg.VerboseParse},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshotExporter := newSnapshotExporter(ctx, cfg, log)

	// A nil *SnapshotExporter must not reach the service as a non-nil interface.
	var exporter ingestion.SnapshotExporter
	if snapshotExporter != nil {
		exporter = snapshotExporter
	}
	ingestService := ingestion.NewService(assembler, repo, eventManager, exporter, log)

	var source sources.RowSource
	if cfg.SourcePath != "" {
		source, err = sources.FromPath(cfg.SourcePath, cfg.SourceSheet)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.SourcePath).Msg("Unsupported source spreadsheet")
		}
	}

	sched := scheduler.New(log)
	var jobs []scheduler.Job

	maintenance := reliability.NewMaintenanceJob(db, repo, snapshotExporter, eventManager, reliability.MaintenanceConfig{
		DataDir:       cfg.DataDir,
		KeepBatches:   cfg.KeepBatches,
		KeepSnapshots: cfg.KeepSnapshots,
	}, log)
	jobs = append(jobs, maintenance)
	if cfg.MaintenanceSchedule != "" {
		if err := sched.AddJob(cfg.MaintenanceSchedule, maintenance); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule maintenance")
		}
	}

	if source != nil {
		ingestJob := scheduler.NewIngestJob(ingestService, source, cfg.Layout(), 0, log)
		jobs = append(jobs, ingestJob)
		if cfg.IngestSchedule != "" {
			if err := sched.AddJob(cfg.IngestSchedule, ingestJob); err != nil {
				log.Fatal().Err(err).Msg("Failed to schedule ingestion")
			}
		}
	}

	sched.Start()
	log.Info().Int("entries", sched.Entries()).Msg("Scheduler started")

	srv := server.New(server.Config{
		Log:        log,
		DB:         db,
		Records:    repo,
		Ingestion:  ingestService,
		Classifier: classifier,
		EventBus:   bus,
		Scheduler:  sched,
		Jobs:       jobs,
		Source:     source,
		Layout:     cfg.Layout(),
		MinPrices:  cfg.MinPrices,
		Port:       cfg.Port,
		DevMode:    cfg.DevMode,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

// newSnapshotExporter builds the S3 snapshot exporter, or returns nil when no
// bucket is configured or the client cannot be created.
func newSnapshotExporter(ctx context.Context, cfg *config.Config, log zerolog.Logger) *reliability.SnapshotExporter {
	if !cfg.Export.Enabled() {
		log.Info().Msg("Snapshot export disabled (EXPORT_BUCKET not set)")
		return nil
	}

	store, err := reliability.NewS3Store(ctx, reliability.S3Config{
		Bucket:          cfg.Export.Bucket,
		Region:          cfg.Export.Region,
		Endpoint:        cfg.Export.Endpoint,
		AccessKeyID:     cfg.Export.AccessKeyID,
		SecretAccessKey: cfg.Export.SecretAccessKey,
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to create S3 client, snapshot export disabled")
		return nil
	}

	log.Info().Str("bucket", cfg.Export.Bucket).Str("prefix", cfg.Export.Prefix).Msg("Snapshot export enabled")
	return reliability.NewSnapshotExporter(store, cfg.Export.Prefix, log)
}
