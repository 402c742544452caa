// Package events provides event management functionality.
package events

import (
	"encoding/json"
	"time"
)

// EventType represents different event types
type EventType string

const (
	IngestStarted    EventType = "INGEST_STARTED"
	IngestCompleted  EventType = "INGEST_COMPLETED"
	IngestFailed     EventType = "INGEST_FAILED"
	SnapshotExported EventType = "SNAPSHOT_EXPORTED"
	BatchesPruned    EventType = "BATCHES_PRUNED"
	ErrorOccurred    EventType = "ERROR_OCCURRED"
)

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}

// GetTypedData converts Data to the typed payload for the event type.
// Returns nil for unknown types or undecodable data.
func (e *Event) GetTypedData() EventData {
	if e.Data == nil {
		return nil
	}

	var data EventData
	switch e.Type {
	case IngestStarted:
		data = &IngestStartedData{}
	case IngestCompleted:
		data = &IngestCompletedData{}
	case IngestFailed:
		data = &IngestFailedData{}
	case SnapshotExported:
		data = &SnapshotExportedData{}
	case BatchesPruned:
		data = &BatchesPrunedData{}
	case ErrorOccurred:
		data = &ErrorEventData{}
	default:
		return nil
	}

	if err := convertMapToStruct(e.Data, data); err != nil {
		return nil
	}
	return data
}

func convertMapToStruct(m map[string]interface{}, v interface{}) error {
	jsonBytes, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(jsonBytes, v)
}
