package events

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_SubscribeAndEmit(t *testing.T) {
	bus := NewBus()

	var all, ingest []Event
	unsubAll := bus.Subscribe(func(e Event) { all = append(all, e) })
	bus.Subscribe(func(e Event) { ingest = append(ingest, e) }, IngestCompleted, IngestFailed)

	bus.Emit(IngestCompleted, "ingestion", map[string]interface{}{"batch_id": "b1"})
	bus.Emit(SnapshotExported, "reliability", nil)

	require.Len(t, all, 2)
	require.Len(t, ingest, 1)
	assert.Equal(t, "b1", ingest[0].Data["batch_id"])
	assert.Equal(t, "ingestion", ingest[0].Module)
	assert.False(t, ingest[0].Timestamp.IsZero())

	unsubAll()
	unsubAll()
	assert.Equal(t, 1, bus.SubscriberCount())

	bus.Emit(IngestFailed, "ingestion", nil)
	assert.Len(t, all, 2)
	assert.Len(t, ingest, 2)
}

func TestBus_ConcurrentEmit(t *testing.T) {
	bus := NewBus()
	var mu sync.Mutex
	count := 0
	bus.Subscribe(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Emit(IngestStarted, "test", nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, count)
}

func TestManager_EmitTypedLogsAndPublishes(t *testing.T) {
	var buf bytes.Buffer
	manager := NewManager(NewBus(), zerolog.New(&buf))

	var received []Event
	manager.Bus().Subscribe(func(e Event) { received = append(received, e) })

	manager.EmitTyped("ingestion", &IngestCompletedData{BatchID: "b1", Parsed: 3, Weeks: 2})

	require.Len(t, received, 1)
	assert.Equal(t, IngestCompleted, received[0].Type)
	assert.Contains(t, buf.String(), `"event_type":"INGEST_COMPLETED"`)
	assert.Contains(t, buf.String(), "Event emitted")

	typed, ok := received[0].GetTypedData().(*IngestCompletedData)
	require.True(t, ok)
	assert.Equal(t, "b1", typed.BatchID)
	assert.Equal(t, 3, typed.Parsed)
	assert.Equal(t, 2, typed.Weeks)
}

func TestManager_EmitError(t *testing.T) {
	manager := NewManager(NewBus(), zerolog.Nop())

	var received Event
	manager.Bus().Subscribe(func(e Event) { received = e }, ErrorOccurred)
	manager.EmitError("scheduler", errors.New("disk full"), map[string]interface{}{"job": "ingest"})

	data, ok := received.GetTypedData().(*ErrorEventData)
	require.True(t, ok)
	assert.Equal(t, "disk full", data.Error)
	assert.Equal(t, "ingest", data.Context["job"])
}

func TestEvent_GetTypedData(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		expected EventData
	}{
		{
			name:     "failed",
			event:    Event{Type: IngestFailed, Data: map[string]interface{}{"source": "a.xlsx", "error": "boom"}},
			expected: &IngestFailedData{Source: "a.xlsx", Error: "boom"},
		},
		{
			name:     "snapshot",
			event:    Event{Type: SnapshotExported, Data: map[string]interface{}{"batch_id": "b", "records": 4}},
			expected: &SnapshotExportedData{BatchID: "b", Records: 4},
		},
		{
			name:     "pruned",
			event:    Event{Type: BatchesPruned, Data: map[string]interface{}{"removed": 2, "kept": 5}},
			expected: &BatchesPrunedData{Removed: 2, Kept: 5},
		},
		{
			name:     "nil data",
			event:    Event{Type: IngestCompleted},
			expected: nil,
		},
		{
			name:     "unknown type",
			event:    Event{Type: "OTHER", Data: map[string]interface{}{}},
			expected: nil,
		},
		{
			name:     "mistyped field",
			event:    Event{Type: BatchesPruned, Data: map[string]interface{}{"removed": "two"}},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.event.GetTypedData()
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.event.Type, got.EventType())
		})
	}
}
