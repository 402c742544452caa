// Package handlers provides HTTP handlers for spreadsheet ingestion and batches.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/aristath/turnips/internal/modules/ingestion"
	"github.com/aristath/turnips/internal/modules/records"
	"github.com/aristath/turnips/internal/sources"
)

var validate = validator.New()

const defaultBatchLimit = 20

// Ingester runs rows through the ingestion pipeline
type Ingester interface {
	Ingest(ctx context.Context, source sources.RowSource, layout ingestion.Layout) (*ingestion.BatchResult, error)
	IngestRows(ctx context.Context, name string, rows [][]string, layout ingestion.Layout) (*ingestion.BatchResult, error)
}

// BatchReader reads stored batches
type BatchReader interface {
	GetBatch(ctx context.Context, id string) (*records.Batch, error)
	ListBatches(ctx context.Context, limit int) ([]records.Batch, error)
	GetSkippedRows(ctx context.Context, batchID string) ([]records.SkippedRow, error)
}

// Handlers provides HTTP handlers for ingestion
type Handlers struct {
	ingester Ingester
	batches  BatchReader
	source   sources.RowSource // configured spreadsheet, may be nil
	layout   ingestion.Layout
	log      zerolog.Logger
}

// NewHandlers creates new ingestion handlers. source may be nil when no
// spreadsheet is configured.
func NewHandlers(ingester Ingester, batches BatchReader, source sources.RowSource, layout ingestion.Layout, log zerolog.Logger) *Handlers {
	return &Handlers{
		ingester: ingester,
		batches:  batches,
		source:   source,
		layout:   layout,
		log:      log.With().Str("component", "ingestion_handlers").Logger(),
	}
}

// RegisterRoutes registers ingestion routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/ingest", func(r chi.Router) {
		r.Post("/", h.HandleIngestRows)
		r.Post("/run", h.HandleRunSource)
	})
	r.Route("/batches", func(r chi.Router) {
		r.Get("/", h.HandleListBatches)
		r.Get("/{id}", h.HandleGetBatch)
		r.Get("/{id}/skipped", h.HandleGetSkipped)
	})
}

// IngestRequest is the body of POST /api/ingest
type IngestRequest struct {
	Source string     `json:"source" validate:"omitempty,max=256"`
	Layout string     `json:"layout" validate:"required,oneof=community personal"`
	Rows   [][]string `json:"rows" validate:"required,max=100000"`
}

// HandleIngestRows ingests rows posted in the request body
// POST /api/ingest
func (h *Handlers) HandleIngestRows(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	layout, err := ingestion.ParseLayout(req.Layout)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := req.Source
	if name == "" {
		name = "api"
	}

	result, err := h.ingester.IngestRows(r.Context(), name, req.Rows, layout)
	if err != nil {
		h.log.Error().Err(err).Str("source", name).Msg("Ingestion failed")
		h.respondError(w, http.StatusInternalServerError, "Ingestion failed")
		return
	}

	h.respondJSON(w, http.StatusCreated, result)
}

// HandleRunSource ingests the configured spreadsheet
// POST /api/ingest/run
func (h *Handlers) HandleRunSource(w http.ResponseWriter, r *http.Request) {
	if h.source == nil {
		h.respondError(w, http.StatusServiceUnavailable, "No source spreadsheet configured")
		return
	}

	result, err := h.ingester.Ingest(r.Context(), h.source, h.layout)
	if err != nil {
		h.log.Error().Err(err).Str("source", h.source.Name()).Msg("Ingestion failed")
		h.respondError(w, http.StatusInternalServerError, "Ingestion failed: "+err.Error())
		return
	}

	h.respondJSON(w, http.StatusCreated, result)
}

// HandleListBatches lists recent batches, newest first
// GET /api/batches?limit=N
func (h *Handlers) HandleListBatches(w http.ResponseWriter, r *http.Request) {
	limit := defaultBatchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	batches, err := h.batches.ListBatches(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list batches")
		h.respondError(w, http.StatusInternalServerError, "Failed to list batches")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"batches": batches,
		"count":   len(batches),
	})
}

// HandleGetBatch returns one batch
// GET /api/batches/{id}
func (h *Handlers) HandleGetBatch(w http.ResponseWriter, r *http.Request) {
	batch, err := h.batches.GetBatch(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondLookupError(w, err, "Batch not found")
		return
	}
	h.respondJSON(w, http.StatusOK, batch)
}

// HandleGetSkipped returns the rows a batch skipped
// GET /api/batches/{id}/skipped
func (h *Handlers) HandleGetSkipped(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.batches.GetBatch(r.Context(), id); err != nil {
		h.respondLookupError(w, err, "Batch not found")
		return
	}

	skipped, err := h.batches.GetSkippedRows(r.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("batch_id", id).Msg("Failed to load skipped rows")
		h.respondError(w, http.StatusInternalServerError, "Failed to load skipped rows")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"batch_id": id,
		"skipped":  skipped,
		"count":    len(skipped),
	})
}

func (h *Handlers) respondLookupError(w http.ResponseWriter, err error, notFound string) {
	if errors.Is(err, records.ErrNotFound) {
		h.respondError(w, http.StatusNotFound, notFound)
		return
	}
	h.log.Error().Err(err).Msg("Lookup failed")
	h.respondError(w, http.StatusInternalServerError, "Lookup failed")
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
