package ingestion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/turnips/internal/domain"
	"github.com/aristath/turnips/internal/events"
	"github.com/aristath/turnips/internal/modules/records"
	"github.com/aristath/turnips/internal/reliability"
	"github.com/aristath/turnips/internal/sources"
	"github.com/aristath/turnips/internal/utils"
)

const eventModule = "ingestion"

// RecordStore persists assembled batches.
type RecordStore interface {
	SaveBatch(ctx context.Context, batch records.Batch, recs []domain.WeeklyRecord, skipped []records.SkippedRow) error
}

// EventEmitter publishes ingestion events.
type EventEmitter interface {
	EmitTyped(module string, data events.EventData)
	EmitError(module string, err error, context map[string]interface{})
}

// SnapshotExporter uploads the training snapshot of a batch.
type SnapshotExporter interface {
	Export(ctx context.Context, batchID, source, layout string, recs []domain.WeeklyRecord) (*reliability.ExportResult, error)
}

// BatchResult is the outcome of one ingestion run.
type BatchResult struct {
	Batch    records.Batch             `json:"batch"`
	Report   Report                    `json:"report"`
	Perfect  int                       `json:"perfect"`
	Snapshot *reliability.ExportResult `json:"snapshot,omitempty"`
	Records  []domain.WeeklyRecord     `json:"-"`
}

// Service runs spreadsheets through the assembler and stores the result.
// Runs are serialized.
type Service struct {
	mu        sync.Mutex
	assembler *Assembler
	store     RecordStore
	events    EventEmitter     // optional
	exporter  SnapshotExporter // optional
	now       func() time.Time
	newID     func() string
	log       zerolog.Logger
}

// NewService creates an ingestion service. events and exporter may be nil.
func NewService(assembler *Assembler, store RecordStore, emitter EventEmitter, exporter SnapshotExporter, log zerolog.Logger) *Service {
	return &Service{
		assembler: assembler,
		store:     store,
		events:    emitter,
		exporter:  exporter,
		now:       time.Now,
		newID:     uuid.NewString,
		log:       log.With().Str("service", "ingestion").Logger(),
	}
}

// Ingest reads every row of source and ingests it.
func (s *Service) Ingest(ctx context.Context, source sources.RowSource, layout Layout) (*BatchResult, error) {
	rows, err := source.Rows(ctx)
	if err != nil {
		err = fmt.Errorf("failed to read %s: %w", source.Name(), err)
		s.fail(source.Name(), layout, err)
		return nil, err
	}
	return s.IngestRows(ctx, source.Name(), rows, layout)
}

// IngestRows assembles rows into a new batch, persists it, and exports its
// snapshot when an exporter is configured. A failed export does not fail the
// batch.
func (s *Service) IngestRows(ctx context.Context, name string, rows [][]string, layout Layout) (*BatchResult, error) {
	if !layout.IsValid() {
		err := fmt.Errorf("%w: %q", ErrUnknownLayout, string(layout))
		s.fail(name, layout, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	started := s.now()
	batchID := s.newID()
	if s.events != nil {
		s.events.EmitTyped(eventModule, &events.IngestStartedData{BatchID: batchID, Source: name, Layout: layout.String()})
	}

	timer := utils.NewTimer("assemble", s.log)
	recs, report := s.assembler.AssembleWithReport(rows, layout)
	timer.StopWithFields(map[string]interface{}{"batch_id": batchID, "rows": report.Rows})

	batch := records.Batch{
		ID:            batchID,
		Source:        name,
		Layout:        layout.String(),
		StartedAt:     started,
		FinishedAt:    s.now(),
		RowsTotal:     report.Rows,
		RowsBlank:     report.Blank,
		RecordsParsed: report.Parsed,
		RowsSkipped:   report.Skipped,
		Weeks:         report.Weeks,
	}
	if err := s.store.SaveBatch(ctx, batch, recs, skippedRows(report.Failures)); err != nil {
		err = fmt.Errorf("failed to store batch: %w", err)
		s.fail(name, layout, err)
		return nil, err
	}

	result := &BatchResult{
		Batch:   batch,
		Report:  report,
		Perfect: countPerfect(recs),
		Records: recs,
	}

	if s.exporter != nil {
		snap, err := s.exporter.Export(ctx, batchID, name, layout.String(), recs)
		if err != nil {
			s.log.Error().Err(err).Str("batch_id", batchID).Msg("Snapshot export failed")
			if s.events != nil {
				s.events.EmitError(eventModule, err, map[string]interface{}{"batch_id": batchID})
			}
		} else {
			result.Snapshot = snap
			if s.events != nil {
				s.events.EmitTyped("reliability", &events.SnapshotExportedData{
					BatchID:  batchID,
					Location: snap.Location,
					Records:  snap.Records,
					Bytes:    snap.Bytes,
				})
			}
		}
	}

	if s.events != nil {
		s.events.EmitTyped(eventModule, &events.IngestCompletedData{
			BatchID:    batchID,
			Source:     name,
			Layout:     layout.String(),
			Rows:       report.Rows,
			Parsed:     report.Parsed,
			Skipped:    report.Skipped,
			Weeks:      report.Weeks,
			Perfect:    result.Perfect,
			DurationMs: s.now().Sub(started).Milliseconds(),
		})
	}

	s.log.Info().
		Str("batch_id", batchID).
		Str("source", name).
		Int("parsed", report.Parsed).
		Int("perfect", result.Perfect).
		Msg("Batch ingested")
	return result, nil
}

func (s *Service) fail(name string, layout Layout, err error) {
	s.log.Error().Err(err).Str("source", name).Msg("Ingestion failed")
	if s.events != nil {
		s.events.EmitTyped(eventModule, &events.IngestFailedData{
			Source: name,
			Layout: string(layout),
			Error:  err.Error(),
		})
	}
}

func skippedRows(failures []*ParseFailure) []records.SkippedRow {
	rows := make([]records.SkippedRow, len(failures))
	for i, f := range failures {
		rows[i] = records.SkippedRow{WeekIndex: f.WeekIndex, Reason: f.Reason, Cells: f.Row}
	}
	return rows
}

func countPerfect(recs []domain.WeeklyRecord) int {
	n := 0
	for _, r := range recs {
		if r.IsPerfect() {
			n++
		}
	}
	return n
}
