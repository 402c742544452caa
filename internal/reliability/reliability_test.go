package reliability

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/turnips/internal/domain"
	"github.com/aristath/turnips/internal/events"
	testingpkg "github.com/aristath/turnips/internal/testing"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	fixtures := testingpkg.NewRecordFixtures()
	now := time.Date(2026, 4, 2, 8, 30, 0, 0, time.UTC)

	snap := NewSnapshot("b1", "sheet.xlsx", "community", fixtures, now)
	require.Len(t, snap.Records, 2, "only perfect records are exported")
	assert.Len(t, snap.Features, 2)
	assert.Equal(t, []int{domain.PatternDecreasing.Ordinal(), domain.PatternHighSpike.Ordinal()}, snap.Labels)

	data, err := snap.Encode()
	require.NoError(t, err)

	decoded, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, "b1", decoded.BatchID)
	assert.True(t, now.Equal(decoded.CreatedAt))
	assert.Equal(t, snap.Labels, decoded.Labels)
	assert.Equal(t, fixtures[:2], decoded.WeeklyRecords())
}

func TestDecodeSnapshot_RejectsUnknownVersion(t *testing.T) {
	snap := &Snapshot{Version: 99}
	data, err := snap.Encode()
	require.NoError(t, err)

	_, err = DecodeSnapshot(data)
	assert.ErrorContains(t, err, "unsupported snapshot version")

	_, err = DecodeSnapshot([]byte("not msgpack"))
	assert.Error(t, err)
}

func TestSnapshotExporter_Export(t *testing.T) {
	store := NewMemoryStore()
	exporter := NewSnapshotExporter(store, "/snapshots/", zerolog.Nop())

	result, err := exporter.Export(context.Background(), "b1", "sheet.xlsx", "community", testingpkg.NewRecordFixtures())
	require.NoError(t, err)
	assert.Equal(t, "snapshots/b1.msgpack", result.Key)
	assert.Equal(t, "mem://snapshots/b1.msgpack", result.Location)
	assert.Equal(t, 2, result.Records)

	data, ok := store.Get(result.Key)
	require.True(t, ok)
	assert.Equal(t, result.Bytes, len(data))

	snap, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, "community", snap.Layout)
}

func TestSnapshotExporter_KeyWithoutPrefix(t *testing.T) {
	exporter := NewSnapshotExporter(NewMemoryStore(), "", zerolog.Nop())
	assert.Equal(t, "b2.msgpack", exporter.Key("b2"))
}

type failingStore struct {
	*MemoryStore
	uploadErr error
	deleteErr error
}

func (f *failingStore) Upload(ctx context.Context, key string, body io.Reader) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	return f.MemoryStore.Upload(ctx, key, body)
}

func (f *failingStore) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.MemoryStore.Delete(ctx, key)
}

func TestSnapshotExporter_UploadError(t *testing.T) {
	boom := errors.New("bucket gone")
	exporter := NewSnapshotExporter(&failingStore{MemoryStore: NewMemoryStore(), uploadErr: boom}, "s", zerolog.Nop())

	_, err := exporter.Export(context.Background(), "b1", "src", "community", nil)
	assert.ErrorIs(t, err, boom)
}

func seedSnapshots(t *testing.T, store *MemoryStore, keys ...string) {
	t.Helper()
	base := time.Unix(1_700_000_000, 0)
	for i, key := range keys {
		at := base.Add(time.Duration(i) * time.Hour)
		store.now = func() time.Time { return at }
		require.NoError(t, store.Upload(context.Background(), key, bytes.NewReader([]byte("x"))))
	}
}

func TestSnapshotExporter_ListAndRotate(t *testing.T) {
	store := NewMemoryStore()
	seedSnapshots(t, store, "s/a.msgpack", "s/b.msgpack", "s/c.msgpack", "s/notes.txt", "other/d.msgpack")
	exporter := NewSnapshotExporter(store, "s", zerolog.Nop())

	snaps, err := exporter.ListSnapshots(context.Background())
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, "s/c.msgpack", snaps[0].Key)

	deleted, err := exporter.RotateSnapshots(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, ok := store.Get("s/a.msgpack")
	assert.False(t, ok)
	_, ok = store.Get("s/notes.txt")
	assert.True(t, ok)

	deleted, err = exporter.RotateSnapshots(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}

func TestSnapshotExporter_RotateSkipsFailedDeletes(t *testing.T) {
	store := &failingStore{MemoryStore: NewMemoryStore(), deleteErr: errors.New("denied")}
	seedSnapshots(t, store.MemoryStore, "a.msgpack", "b.msgpack")
	exporter := NewSnapshotExporter(store, "", zerolog.Nop())

	deleted, err := exporter.RotateSnapshots(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}

type stubPruner struct {
	removed int
	err     error
	keep    int
}

func (s *stubPruner) PruneBatches(ctx context.Context, keep int) (int, error) {
	s.keep = keep
	return s.removed, s.err
}

type recordingEmitter struct {
	events []events.EventData
}

func (r *recordingEmitter) EmitTyped(module string, data events.EventData) {
	r.events = append(r.events, data)
}

func TestMaintenanceJob_Run(t *testing.T) {
	db := testingpkg.NewTestDB(t, "records")
	pruner := &stubPruner{removed: 3}
	emitter := &recordingEmitter{}
	store := NewMemoryStore()
	seedSnapshots(t, store, "a.msgpack", "b.msgpack", "c.msgpack")

	job := NewMaintenanceJob(db, pruner, NewSnapshotExporter(store, "", zerolog.Nop()), emitter,
		MaintenanceConfig{DataDir: t.TempDir(), KeepBatches: 10, KeepSnapshots: 1}, zerolog.Nop())
	job.diskFree = func(string) (uint64, error) { return 50 << 30, nil }

	require.NoError(t, job.Run())
	assert.Equal(t, "maintenance", job.Name())
	assert.Equal(t, 10, pruner.keep)
	require.Len(t, emitter.events, 1)
	assert.Equal(t, &events.BatchesPrunedData{Removed: 3, Kept: 10}, emitter.events[0])

	remaining, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestMaintenanceJob_DiskSpace(t *testing.T) {
	db := testingpkg.NewTestDB(t, "records")

	tests := []struct {
		name    string
		free    uint64
		diskErr error
		wantErr bool
	}{
		{"plenty", 20 << 30, nil, false},
		{"low but usable", 500 << 20, nil, false},
		{"critical", 10 << 20, nil, true},
		{"unreadable usage is tolerated", 0, errors.New("no such device"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewMaintenanceJob(db, nil, nil, nil, MaintenanceConfig{DataDir: "/data"}, zerolog.Nop())
			job.diskFree = func(string) (uint64, error) { return tt.free, tt.diskErr }

			err := job.Run()
			if tt.wantErr {
				assert.ErrorContains(t, err, "CRITICAL")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMaintenanceJob_PruneError(t *testing.T) {
	db := testingpkg.NewTestDB(t, "records")
	job := NewMaintenanceJob(db, &stubPruner{err: errors.New("locked")}, nil, nil,
		MaintenanceConfig{KeepBatches: 1}, zerolog.Nop())

	assert.ErrorContains(t, job.Run(), "failed to prune batches")
}
