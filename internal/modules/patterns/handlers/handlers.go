// Package handlers provides HTTP handlers for pattern label classification.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/aristath/turnips/internal/domain"
	"github.com/aristath/turnips/internal/modules/patterns"
)

var validate = validator.New()

// Handlers provides HTTP handlers for the pattern classifier
type Handlers struct {
	classifier *patterns.Classifier
	log        zerolog.Logger
}

// NewHandlers creates new pattern handlers
func NewHandlers(classifier *patterns.Classifier, log zerolog.Logger) *Handlers {
	return &Handlers{
		classifier: classifier,
		log:        log.With().Str("component", "pattern_handlers").Logger(),
	}
}

// RegisterRoutes registers pattern routes
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/patterns", func(r chi.Router) {
		r.Post("/classify", h.HandleClassify)
		r.Get("/aliases", h.HandleAliases)
	})
}

// ClassifyRequest is the body of POST /api/patterns/classify
type ClassifyRequest struct {
	Labels []string `json:"labels" validate:"required,min=1,max=1000,dive,max=256"`
}

// Classification is the result for one label
type Classification struct {
	Label   string                 `json:"label"`
	Pattern domain.PatternCategory `json:"pattern"`
	Ordinal int                    `json:"ordinal"`
}

// HandleClassify resolves free-text labels to pattern categories
// POST /api/patterns/classify
func (h *Handlers) HandleClassify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	results := make([]Classification, len(req.Labels))
	for i, label := range req.Labels {
		pattern := h.classifier.Classify(label)
		results[i] = Classification{Label: label, Pattern: pattern, Ordinal: pattern.Ordinal()}
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"options": h.classifier.Options(),
	})
}

// HandleAliases lists the alias table in matching order
// GET /api/patterns/aliases
func (h *Handlers) HandleAliases(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"aliases": patterns.Aliases(),
	})
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
