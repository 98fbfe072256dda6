// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type HealthHandler struct {
	profiles ProfileLister
}

func NewHealthHandler(profiles ProfileLister) *HealthHandler {
	return &HealthHandler{profiles: profiles}
}

func (h *HealthHandler) Routes(r chi.Router) {
	r.Get("/", h.HandleHealth)
	r.Get("/readiness", h.HandleReady)
	r.Get("/liveness", h.HandleLiveness)
}

func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type readinessResponse struct {
	Status   string `json:"status"`
	Profiles int    `json:"profiles"`
}

// HandleReady answers 503 until at least one profile is configured.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	var count int
	if h.profiles != nil {
		count = len(h.profiles.List())
	}

	if count == 0 {
		RespondJSON(w, http.StatusServiceUnavailable, readinessResponse{Status: "no profiles configured"})
		return
	}
	RespondJSON(w, http.StatusOK, readinessResponse{Status: "ready", Profiles: count})
}

func (h *HealthHandler) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}
