package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/turnips/internal/database"
	"github.com/aristath/turnips/internal/scheduler"
)

// RecordCounter counts stored records
type RecordCounter interface {
	CountRecords(ctx context.Context) (int, error)
}

// SystemHandlers handles system-wide monitoring and job endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	db          *database.DB
	records     RecordCounter
	scheduler   *scheduler.Scheduler
	jobs        map[string]scheduler.Job
	startupTime time.Time
	// stats samples CPU and RAM usage; replaced in tests
	stats func() (float64, float64)
}

// NewSystemHandlers creates a new system handlers instance.
// records and sched may be nil.
func NewSystemHandlers(log zerolog.Logger, db *database.DB, records RecordCounter, sched *scheduler.Scheduler, jobs []scheduler.Job) *SystemHandlers {
	h := &SystemHandlers{
		log:         log.With().Str("service", "system").Logger(),
		db:          db,
		records:     records,
		scheduler:   sched,
		jobs:        make(map[string]scheduler.Job, len(jobs)),
		startupTime: time.Now(),
	}
	for _, job := range jobs {
		h.jobs[job.Name()] = job
	}
	h.stats = h.getSystemStats
	return h
}

// SystemStatusResponse is the body of GET /api/system/status
type SystemStatusResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
	Goroutines    int     `json:"goroutines"`
	Records       int     `json:"records"`
	ScheduledJobs int     `json:"scheduled_jobs"`
	LastChecked   string  `json:"last_checked"`
}

// HandleSystemStatus returns process and host status
// GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPercent, memPercent := h.stats()
	response := SystemStatusResponse{
		Status:        "healthy",
		UptimeSeconds: time.Since(h.startupTime).Seconds(),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Goroutines:    runtime.NumGoroutine(),
		LastChecked:   time.Now().Format(time.RFC3339),
	}

	if h.records != nil {
		count, err := h.records.CountRecords(r.Context())
		if err != nil {
			h.log.Warn().Err(err).Msg("Failed to count records")
			response.Status = "degraded"
		}
		response.Records = count
	}
	if h.scheduler != nil {
		response.ScheduledJobs = h.scheduler.Entries()
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleDatabaseStats returns database statistics
// GET /api/system/database
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	if h.db == nil {
		h.writeError(w, http.StatusServiceUnavailable, "Database not configured")
		return
	}

	stats, err := h.db.GetStats()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to get database stats")
		h.writeError(w, http.StatusInternalServerError, "Failed to get database stats")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":    h.db.Name(),
		"path":    h.db.Path(),
		"profile": h.db.Profile(),
		"stats":   stats,
	})
}

// HandleListJobs lists jobs available for manual triggering
// GET /api/system/jobs
func (h *SystemHandlers) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(h.jobs))
	for name := range h.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": names})
}

// HandleTriggerJob runs a registered job immediately
// POST /api/system/jobs/{name}
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if h.scheduler == nil {
		h.writeError(w, http.StatusServiceUnavailable, "Scheduler not running")
		return
	}
	job, ok := h.jobs[name]
	if !ok {
		h.log.Warn().Str("job", name).Msg("Job not registered")
		h.writeError(w, http.StatusNotFound, "Job not registered: "+name)
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job triggered")

	if err := h.scheduler.RunNow(job); err != nil {
		if errors.Is(err, scheduler.ErrJobRunning) {
			h.writeError(w, http.StatusConflict, err.Error())
			return
		}
		h.log.Error().Err(err).Str("job", name).Msg("Failed to run job")
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": name + " completed successfully",
	})
}

// getSystemStats calculates CPU and RAM usage percentages over a 100ms window
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *SystemHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
	})
}
