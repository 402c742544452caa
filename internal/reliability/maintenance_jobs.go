package reliability

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/aristath/turnips/internal/database"
	"github.com/aristath/turnips/internal/events"
	"github.com/aristath/turnips/internal/utils"
)

// Disk space thresholds for the data directory.
const (
	criticalFreeBytes = 100 << 20 // 100MB
	lowFreeBytes      = 1 << 30   // 1GB
)

// BatchPruner removes old ingestion batches.
type BatchPruner interface {
	PruneBatches(ctx context.Context, keep int) (int, error)
}

// EventEmitter publishes typed events.
type EventEmitter interface {
	EmitTyped(module string, data events.EventData)
}

// MaintenanceConfig tunes the maintenance job.
type MaintenanceConfig struct {
	DataDir       string
	KeepBatches   int // 0 disables batch pruning
	KeepSnapshots int // 0 disables snapshot rotation
	Timeout       time.Duration
}

// MaintenanceJob checks the records database, prunes old batches and rotates
// exported snapshots.
type MaintenanceJob struct {
	db       *database.DB
	pruner   BatchPruner
	exporter *SnapshotExporter // optional
	events   EventEmitter      // optional
	cfg      MaintenanceConfig
	diskFree func(path string) (uint64, error)
	log      zerolog.Logger
}

// NewMaintenanceJob creates a new maintenance job
func NewMaintenanceJob(
	db *database.DB,
	pruner BatchPruner,
	exporter *SnapshotExporter,
	emitter EventEmitter,
	cfg MaintenanceConfig,
	log zerolog.Logger,
) *MaintenanceJob {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &MaintenanceJob{
		db:       db,
		pruner:   pruner,
		exporter: exporter,
		events:   emitter,
		cfg:      cfg,
		diskFree: freeBytes,
		log:      log.With().Str("job", "maintenance").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *MaintenanceJob) Name() string {
	return "maintenance"
}

// Run executes the maintenance job
func (j *MaintenanceJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.cfg.Timeout)
	defer cancel()

	j.log.Info().Msg("Starting maintenance")
	timer := utils.NewTimer("maintenance", j.log)

	if err := j.db.HealthCheck(ctx); err != nil {
		j.log.Error().Err(err).Msg("CRITICAL: Records database failed health check")
		return fmt.Errorf("health check failed: %w", err)
	}

	if err := j.db.WALCheckpoint("TRUNCATE"); err != nil {
		// not critical
		j.log.Warn().Err(err).Msg("WAL checkpoint failed")
	}

	if err := j.checkDiskSpace(); err != nil {
		return err
	}

	if j.cfg.KeepBatches > 0 && j.pruner != nil {
		removed, err := j.pruner.PruneBatches(ctx, j.cfg.KeepBatches)
		if err != nil {
			return fmt.Errorf("failed to prune batches: %w", err)
		}
		if removed > 0 && j.events != nil {
			j.events.EmitTyped("reliability", &events.BatchesPrunedData{Removed: removed, Kept: j.cfg.KeepBatches})
		}
		j.log.Debug().Int("removed", removed).Msg("Pruned batches")
	}

	if j.cfg.KeepSnapshots > 0 && j.exporter != nil {
		if _, err := j.exporter.RotateSnapshots(ctx, j.cfg.KeepSnapshots); err != nil {
			j.log.Error().Err(err).Msg("Snapshot rotation failed")
		}
	}

	j.log.Info().
		Dur("duration_ms", timer.Stop()).
		Msg("Maintenance completed")
	return nil
}

func (j *MaintenanceJob) checkDiskSpace() error {
	if j.cfg.DataDir == "" {
		return nil
	}

	free, err := j.diskFree(j.cfg.DataDir)
	if err != nil {
		j.log.Warn().Err(err).Str("path", j.cfg.DataDir).Msg("Failed to read disk usage")
		return nil
	}

	availableGB := float64(free) / 1e9
	j.log.Debug().Float64("available_gb", availableGB).Msg("Disk space check")

	if free < criticalFreeBytes {
		j.log.Error().
			Float64("available_gb", availableGB).
			Msg("CRITICAL: Insufficient disk space")
		return fmt.Errorf("CRITICAL: only %.2f GB free in %s", availableGB, j.cfg.DataDir)
	}
	if free < lowFreeBytes {
		j.log.Warn().
			Float64("available_gb", availableGB).
			Msg("Disk space running low")
	}
	return nil
}

func freeBytes(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}
