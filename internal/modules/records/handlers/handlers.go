// Package handlers provides HTTP handlers for stored records, their curve
// analytics, and the training dataset built from them.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/turnips/internal/modules/analytics"
	"github.com/aristath/turnips/internal/modules/dataset"
	"github.com/aristath/turnips/internal/modules/records"
)

// RecordReader reads stored records
type RecordReader interface {
	LatestBatch(ctx context.Context) (*records.Batch, error)
	GetRecords(ctx context.Context, batchID string, week *int) ([]records.StoredRecord, error)
	GetRecord(ctx context.Context, id int64) (*records.StoredRecord, error)
}

// Handlers provides HTTP handlers for records
type Handlers struct {
	repo      RecordReader
	minPrices int
	log       zerolog.Logger
}

// NewHandlers creates new record handlers. minPrices is the default validity
// threshold of the dataset endpoint.
func NewHandlers(repo RecordReader, minPrices int, log zerolog.Logger) *Handlers {
	return &Handlers{
		repo:      repo,
		minPrices: minPrices,
		log:       log.With().Str("component", "record_handlers").Logger(),
	}
}

// RegisterRoutes registers record routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/records", func(r chi.Router) {
		r.Get("/", h.HandleGetRecords)
		r.Get("/{id}", h.HandleGetRecord)
		r.Get("/{id}/curve", h.HandleGetCurve)
	})
	r.Get("/dataset", h.HandleGetDataset)
}

// HandleGetRecords lists the records of a batch, the latest by default
// GET /api/records?batch=ID&week=N
func (h *Handlers) HandleGetRecords(w http.ResponseWriter, r *http.Request) {
	batchID, ok := h.resolveBatch(w, r)
	if !ok {
		return
	}

	var week *int
	if raw := r.URL.Query().Get("week"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.respondError(w, http.StatusBadRequest, "week must be a non-negative integer")
			return
		}
		week = &n
	}

	recs, err := h.repo.GetRecords(r.Context(), batchID, week)
	if err != nil {
		h.log.Error().Err(err).Str("batch_id", batchID).Msg("Failed to load records")
		h.respondError(w, http.StatusInternalServerError, "Failed to load records")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"batch_id": batchID,
		"records":  recs,
		"count":    len(recs),
	})
}

// HandleGetRecord returns one record
// GET /api/records/{id}
func (h *Handlers) HandleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadRecord(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, rec)
}

// HandleGetCurve returns the curve summary of one record
// GET /api/records/{id}/curve
func (h *Handlers) HandleGetCurve(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.loadRecord(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"record_id": rec.ID,
		"owner":     rec.Owner,
		"pattern":   rec.CurrentPattern,
		"curve":     analytics.Summarize(rec.WeeklyRecord),
	})
}

// HandleGetDataset projects a batch into features and labels
// GET /api/dataset?batch=ID&perfect=true&min_prices=N
func (h *Handlers) HandleGetDataset(w http.ResponseWriter, r *http.Request) {
	batchID, ok := h.resolveBatch(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := dataset.PerfectFilter()
	if raw := q.Get("perfect"); raw != "" {
		perfect, err := strconv.ParseBool(raw)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "perfect must be a boolean")
			return
		}
		if !perfect {
			filter = dataset.ValidFilter(h.minPrices)
		}
	}
	if raw := q.Get("min_prices"); raw != "" && !filter.PerfectOnly {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.respondError(w, http.StatusBadRequest, "min_prices must be a non-negative integer")
			return
		}
		filter.MinPrices = n
	}

	stored, err := h.repo.GetRecords(r.Context(), batchID, nil)
	if err != nil {
		h.log.Error().Err(err).Str("batch_id", batchID).Msg("Failed to load records")
		h.respondError(w, http.StatusInternalServerError, "Failed to load records")
		return
	}

	ds := dataset.Build(records.Records(stored), filter)
	counts := make(map[string]int)
	for pattern, n := range dataset.ClassCounts(ds.Labels) {
		counts[pattern.String()] = n
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"batch_id":     batchID,
		"filter":       ds.Filter,
		"features":     ds.Features,
		"labels":       ds.Labels,
		"count":        ds.Len(),
		"class_counts": counts,
		"max_cv_folds": dataset.MaxCVFolds(ds.Labels),
	})
}

func (h *Handlers) resolveBatch(w http.ResponseWriter, r *http.Request) (string, bool) {
	if id := r.URL.Query().Get("batch"); id != "" {
		return id, true
	}
	batch, err := h.repo.LatestBatch(r.Context())
	if errors.Is(err, records.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "No batches ingested yet")
		return "", false
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load latest batch")
		h.respondError(w, http.StatusInternalServerError, "Failed to load latest batch")
		return "", false
	}
	return batch.ID, true
}

func (h *Handlers) loadRecord(w http.ResponseWriter, r *http.Request) (*records.StoredRecord, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid record ID")
		return nil, false
	}

	rec, err := h.repo.GetRecord(r.Context(), id)
	if errors.Is(err, records.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, "Record not found")
		return nil, false
	}
	if err != nil {
		h.log.Error().Err(err).Int64("record_id", id).Msg("Failed to load record")
		h.respondError(w, http.StatusInternalServerError, "Failed to load record")
		return nil, false
	}
	return rec, true
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
	})
}
