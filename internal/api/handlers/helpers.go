// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/shareconnect/internal/models"
)

// maxRequestBody bounds JSON request bodies. Shared URLs are short.
const maxRequestBody = 64 << 10

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(data); err != nil {
			log.Error().Err(err).Msg("Failed to encode JSON response")
		}
	}
}

// RespondError sends an error response
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{
		Error: message,
	})
}

// DecodeJSON decodes the request body into the provided struct.
// Returns false if decoding fails (error already sent to client).
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, dest *T) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(dest); err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// ParseStringParam extracts and validates a generic string URL parameter.
// The value is trimmed of whitespace before validation.
// Returns the trimmed value and true on success, or empty string and false if missing (error already sent).
func ParseStringParam(w http.ResponseWriter, r *http.Request, paramName, displayName string) (string, bool) {
	value := strings.TrimSpace(chi.URLParam(r, paramName))
	if value == "" {
		RespondError(w, http.StatusBadRequest, displayName+" is required")
		return "", false
	}
	return value, true
}

// ParseProfileID extracts the profile UUID from the "profileID" URL parameter.
func ParseProfileID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	str, ok := ParseStringParam(w, r, "profileID", "profile ID")
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(str)
	if err != nil {
		RespondError(w, http.StatusBadRequest, "Invalid profile ID")
		return uuid.Nil, false
	}
	return id, true
}

// RespondProfileError maps store errors to 404 or 500.
func RespondProfileError(w http.ResponseWriter, err error, fallbackMessage string) {
	if errors.Is(err, models.ErrProfileNotFound) {
		RespondError(w, http.StatusNotFound, "Profile not found")
		return
	}
	log.Error().Err(err).Msg(fallbackMessage)
	RespondError(w, http.StatusInternalServerError, fallbackMessage)
}

// requireURL trims raw and reports a 400 when it is empty.
func requireURL(w http.ResponseWriter, raw, field string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		RespondError(w, http.StatusBadRequest, field+" is required")
		return "", false
	}
	return raw, true
}
