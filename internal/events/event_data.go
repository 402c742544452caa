package events

// EventData is the interface that all event data types must implement
type EventData interface {
	EventType() EventType
}

// IngestStartedData contains data for IngestStarted events
type IngestStartedData struct {
	BatchID string `json:"batch_id"`
	Source  string `json:"source"`
	Layout  string `json:"layout"`
}

// EventType returns the event type for IngestStartedData
func (d *IngestStartedData) EventType() EventType {
	return IngestStarted
}

// IngestCompletedData contains data for IngestCompleted events
type IngestCompletedData struct {
	BatchID    string `json:"batch_id"`
	Source     string `json:"source"`
	Layout     string `json:"layout"`
	Rows       int    `json:"rows"`
	Parsed     int    `json:"parsed"`
	Skipped    int    `json:"skipped"`
	Weeks      int    `json:"weeks"`
	Perfect    int    `json:"perfect"`
	DurationMs int64  `json:"duration_ms"`
}

// EventType returns the event type for IngestCompletedData
func (d *IngestCompletedData) EventType() EventType {
	return IngestCompleted
}

// IngestFailedData contains data for IngestFailed events
type IngestFailedData struct {
	Source string `json:"source"`
	Layout string `json:"layout"`
	Error  string `json:"error"`
}

// EventType returns the event type for IngestFailedData
func (d *IngestFailedData) EventType() EventType {
	return IngestFailed
}

// SnapshotExportedData contains data for SnapshotExported events
type SnapshotExportedData struct {
	BatchID  string `json:"batch_id"`
	Location string `json:"location"`
	Records  int    `json:"records"`
	Bytes    int    `json:"bytes"`
}

// EventType returns the event type for SnapshotExportedData
func (d *SnapshotExportedData) EventType() EventType {
	return SnapshotExported
}

// BatchesPrunedData contains data for BatchesPruned events
type BatchesPrunedData struct {
	Removed int `json:"removed"`
	Kept    int `json:"kept"`
}

// EventType returns the event type for BatchesPrunedData
func (d *BatchesPrunedData) EventType() EventType {
	return BatchesPruned
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}
