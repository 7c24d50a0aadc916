// Wanderkit Adapt - Behavioral Personalization for Travel Recommendations
// Copyright 2026 Wanderkit Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wanderkit/adapt

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/wanderkit/adapt/internal/adapt"
)

// Handlers serves the engine's external interface over HTTP.
type Handlers struct {
	engine   *adapt.Engine
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewHandlers creates the handler set.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandlers(engine *adapt.Engine, logger zerolog.Logger) *Handlers {
	return &Handlers{
		engine:   engine,
		validate: validator.New(),
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

// TrackEvent handles POST /api/v1/events. Tracking is accepted as long as
// the event type is known; payload problems degrade to an empty pattern.
func (h *Handlers) TrackEvent(w http.ResponseWriter, r *http.Request) {
	var req TrackEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "type is required")
		return
	}

	eventType := adapt.EventType(req.Type)
	if !eventType.Valid() {
		h.writeError(w, http.StatusBadRequest, "unknown event type")
		return
	}

	payload := adapt.NewPayload(eventType)
	if payload != nil && len(req.Payload) > 0 {
		// Best effort by design: a bad payload still tracks.
		_ = json.Unmarshal(req.Payload, payload)
	}

	h.engine.TrackInteraction(eventType, payload)
	w.WriteHeader(http.StatusAccepted)
}

// AdaptCandidates handles POST /api/v1/adapt.
func (h *Handlers) AdaptCandidates(w http.ResponseWriter, r *http.Request) {
	var req AdaptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "candidates are required")
		return
	}

	ranked := h.engine.Adapt(req.Candidates, req.UserID)
	h.writeJSON(w, http.StatusOK, AdaptResponse{Candidates: ranked})
}

// StartSession handles POST /api/v1/sessions.
func (h *Handlers) StartSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := h.engine.StartSession(req.UserID)
	h.writeJSON(w, http.StatusCreated, StartSessionResponse{SessionID: id})
}

// EndSession handles DELETE /api/v1/sessions.
func (h *Handlers) EndSession(w http.ResponseWriter, _ *http.Request) {
	summary, ok := h.engine.EndSession()
	if !ok {
		h.writeError(w, http.StatusNotFound, "no active session")
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

// GetContext handles GET /api/v1/context.
func (h *Handlers) GetContext(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.engine.CurrentContext())
}

// GetStats handles GET /api/v1/stats.
func (h *Handlers) GetStats(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.engine.Stats())
}

// GetUserRules handles GET /api/v1/users/{userID}/rules.
func (h *Handlers) GetUserRules(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		h.writeError(w, http.StatusBadRequest, "user id required")
		return
	}
	h.writeJSON(w, http.StatusOK, h.engine.UserRules(userID))
}

// Healthz handles GET /healthz.
func (h *Handlers) Healthz(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn().Err(err).Msg("response encode failed")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, errorResponse{Error: msg})
}
