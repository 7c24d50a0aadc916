// Wanderkit Adapt - Behavioral Personalization for Travel Recommendations
// Copyright 2026 Wanderkit Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wanderkit/adapt

package api

import (
	"github.com/goccy/go-json"

	"github.com/wanderkit/adapt/internal/adapt"
)

// TrackEventRequest is the body of POST /api/v1/events. The payload blob is
// decoded by the event type; a malformed payload is accepted and learned as
// an empty pattern, matching the engine's never-block contract.
type TrackEventRequest struct {
	Type    string          `json:"type" validate:"required"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// AdaptRequest is the body of POST /api/v1/adapt.
type AdaptRequest struct {
	UserID     string            `json:"user_id,omitempty"`
	Candidates []adapt.Candidate `json:"candidates" validate:"required"`
}

// AdaptResponse is the re-ranked candidate list.
type AdaptResponse struct {
	Candidates []adapt.Candidate `json:"candidates"`
}

// StartSessionRequest is the body of POST /api/v1/sessions.
type StartSessionRequest struct {
	UserID string `json:"user_id,omitempty"`
}

// StartSessionResponse carries the new session id.
type StartSessionResponse struct {
	SessionID string `json:"session_id"`
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}
