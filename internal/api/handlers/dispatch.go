// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/autobrr/shareconnect/internal/classify"
	"github.com/autobrr/shareconnect/internal/dispatch"
	"github.com/autobrr/shareconnect/internal/models"
)

// Dispatcher delivers a URL to a profile.
type Dispatcher interface {
	Dispatch(ctx context.Context, p models.Profile, rawURL string) dispatch.Outcome
}

type DispatchHandler struct {
	store      ProfileStore
	dispatcher Dispatcher
}

func NewDispatchHandler(store ProfileStore, dispatcher Dispatcher) *DispatchHandler {
	return &DispatchHandler{
		store:      store,
		dispatcher: dispatcher,
	}
}

func (h *DispatchHandler) Routes(r chi.Router) {
	r.Post("/", h.Dispatch)
}

type DispatchRequest struct {
	URL string `json:"url"`
	// ProfileID selects the target explicitly and must accept the URL. When
	// empty the default profile is used if it accepts the URL, otherwise the
	// first one that does.
	ProfileID string `json:"profileId,omitempty"`
}

type DispatchResponse struct {
	Profile models.Profile   `json:"profile"`
	Type    classify.URLType `json:"type"`
	Outcome dispatch.Outcome `json:"outcome"`
}

// Dispatch answers 200 on success, 422 for configuration errors and 502 when
// the service could not be reached or rejected the URL. The outcome is in the
// body either way.
func (h *DispatchHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req DispatchRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	raw, ok := requireURL(w, req.URL, "url")
	if !ok {
		return
	}

	var p models.Profile
	if ref := strings.TrimSpace(req.ProfileID); ref != "" {
		id, err := uuid.Parse(ref)
		if err != nil {
			RespondError(w, http.StatusBadRequest, "Invalid profile ID")
			return
		}
		if p, err = h.store.Get(id); err != nil {
			RespondProfileError(w, err, "Failed to load profile")
			return
		}
		if !classify.IsCompatible(p.ServiceKind, classify.Classify(raw)) {
			RespondError(w, http.StatusUnprocessableEntity, p.ServiceName()+" does not accept "+classify.Classify(raw).Description()+" urls")
			return
		}
	} else {
		selected, found := classify.SelectProfile(h.store.List(), raw)
		if !found {
			RespondError(w, http.StatusUnprocessableEntity, classify.ErrNoCompatibleProfile.Error())
			return
		}
		p = selected
	}

	outcome := h.dispatcher.Dispatch(r.Context(), p, raw)

	status := http.StatusOK
	switch {
	case outcome.Success:
	case outcome.ErrorKind == dispatch.ErrorKindConfiguration:
		status = http.StatusUnprocessableEntity
	default:
		status = http.StatusBadGateway
	}

	RespondJSON(w, status, DispatchResponse{
		Profile: p,
		Type:    classify.Classify(raw),
		Outcome: outcome,
	})
}
