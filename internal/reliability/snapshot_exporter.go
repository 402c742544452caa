package reliability

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/turnips/internal/domain"
)

const snapshotExt = ".msgpack"

// ExportResult describes an uploaded snapshot.
type ExportResult struct {
	Key      string `json:"key"`
	Location string `json:"location"`
	Records  int    `json:"records"`
	Bytes    int    `json:"bytes"`
}

// SnapshotExporter uploads batch snapshots to an object store
type SnapshotExporter struct {
	store  ObjectStore
	prefix string
	now    func() time.Time
	log    zerolog.Logger
}

// NewSnapshotExporter creates an exporter writing under prefix.
func NewSnapshotExporter(store ObjectStore, prefix string, log zerolog.Logger) *SnapshotExporter {
	return &SnapshotExporter{
		store:  store,
		prefix: strings.Trim(prefix, "/"),
		now:    time.Now,
		log:    log.With().Str("service", "snapshot_export").Logger(),
	}
}

// Key returns the object key of a batch snapshot: <prefix>/<batchID>.msgpack.
func (e *SnapshotExporter) Key(batchID string) string {
	if e.prefix == "" {
		return batchID + snapshotExt
	}
	return path.Join(e.prefix, batchID+snapshotExt)
}

// Export uploads the perfect-data snapshot of records.
func (e *SnapshotExporter) Export(ctx context.Context, batchID, source, layout string, records []domain.WeeklyRecord) (*ExportResult, error) {
	snap := NewSnapshot(batchID, source, layout, records, e.now())
	data, err := snap.Encode()
	if err != nil {
		return nil, err
	}

	key := e.Key(batchID)
	if err := e.store.Upload(ctx, key, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to export snapshot %s: %w", batchID, err)
	}

	result := &ExportResult{
		Key:      key,
		Location: e.store.Location(key),
		Records:  len(snap.Records),
		Bytes:    len(data),
	}
	e.log.Info().
		Str("batch_id", batchID).
		Str("location", result.Location).
		Int("records", result.Records).
		Int("bytes", result.Bytes).
		Msg("Snapshot exported")
	return result, nil
}

// ListSnapshots returns stored snapshots, newest first.
func (e *SnapshotExporter) ListSnapshots(ctx context.Context) ([]ObjectInfo, error) {
	prefix := ""
	if e.prefix != "" {
		prefix = e.prefix + "/"
	}
	objects, err := e.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	snapshots := make([]ObjectInfo, 0, len(objects))
	for _, obj := range objects {
		if strings.HasSuffix(obj.Key, snapshotExt) {
			snapshots = append(snapshots, obj)
		}
	}
	sort.SliceStable(snapshots, func(i, j int) bool {
		return snapshots[i].LastModified.After(snapshots[j].LastModified)
	})
	return snapshots, nil
}

// RotateSnapshots deletes all but the newest keep snapshots. Failed deletes
// are logged and skipped. Returns the number deleted.
func (e *SnapshotExporter) RotateSnapshots(ctx context.Context, keep int) (int, error) {
	snapshots, err := e.ListSnapshots(ctx)
	if err != nil {
		return 0, err
	}
	if keep < 1 {
		keep = 1
	}
	if len(snapshots) <= keep {
		return 0, nil
	}

	deleted := 0
	for _, snap := range snapshots[keep:] {
		if err := e.store.Delete(ctx, snap.Key); err != nil {
			e.log.Error().Err(err).Str("key", snap.Key).Msg("Failed to delete old snapshot")
			continue
		}
		deleted++
	}

	e.log.Info().
		Int("deleted", deleted).
		Int("remaining", len(snapshots)-deleted).
		Msg("Snapshot rotation completed")
	return deleted, nil
}
