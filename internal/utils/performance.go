// Package utils holds small helpers shared by the service packages.
package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// SlowOperationThreshold is the duration above which timed operations warn.
const SlowOperationThreshold = 10 * time.Second

// Timer measures one operation and logs its duration when stopped.
type Timer struct {
	start time.Time
	name  string
	log   zerolog.Logger
	now   func() time.Time
}

// NewTimer starts a timer for the named operation.
func NewTimer(name string, log zerolog.Logger) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
		log:   log,
		now:   time.Now,
	}
}

// Stop logs the elapsed time at debug, or warn above SlowOperationThreshold.
func (t *Timer) Stop() time.Duration {
	return t.StopWithFields(nil)
}

// StopWithFields is Stop with extra log fields.
func (t *Timer) StopWithFields(fields map[string]interface{}) time.Duration {
	duration := t.now().Sub(t.start)

	event := t.log.Debug()
	msg := "Operation completed"
	if duration > SlowOperationThreshold {
		event = t.log.Warn()
		msg = "Slow operation detected"
	}

	event.
		Str("operation", t.name).
		Dur("duration_ms", duration).
		Fields(fields).
		Msg(msg)

	return duration
}

// OperationTimer provides a defer-friendly way to measure operation duration
//
// Usage:
//
//	func (j *MaintenanceJob) Run() error {
//	    defer utils.OperationTimer("maintenance", j.log)()
//	}
func OperationTimer(operation string, log zerolog.Logger) func() {
	timer := NewTimer(operation, log)
	return func() {
		timer.Stop()
	}
}
