package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/turnips/internal/modules/ingestion"
	"github.com/aristath/turnips/internal/sources"
)

// Ingester runs one ingestion over a source.
type Ingester interface {
	Ingest(ctx context.Context, source sources.RowSource, layout ingestion.Layout) (*ingestion.BatchResult, error)
}

// IngestJob re-ingests the configured spreadsheet
type IngestJob struct {
	ingester Ingester
	source   sources.RowSource
	layout   ingestion.Layout
	timeout  time.Duration
	log      zerolog.Logger
}

// NewIngestJob creates a new IngestJob
func NewIngestJob(ingester Ingester, source sources.RowSource, layout ingestion.Layout, timeout time.Duration, log zerolog.Logger) *IngestJob {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &IngestJob{
		ingester: ingester,
		source:   source,
		layout:   layout,
		timeout:  timeout,
		log:      log.With().Str("job", "ingest").Logger(),
	}
}

// Name returns the job name
func (j *IngestJob) Name() string {
	return "ingest"
}

// Run executes the ingestion
func (j *IngestJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	result, err := j.ingester.Ingest(ctx, j.source, j.layout)
	if err != nil {
		return fmt.Errorf("failed to ingest %s: %w", j.source.Name(), err)
	}

	j.log.Info().
		Str("batch_id", result.Batch.ID).
		Int("records", result.Report.Parsed).
		Int("skipped", result.Report.Skipped).
		Msg("Scheduled ingestion completed")
	return nil
}
