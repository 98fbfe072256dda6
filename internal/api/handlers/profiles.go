// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/shareconnect/internal/models"
	"github.com/autobrr/shareconnect/internal/probe"
)

// ProfileStore is the subset of models.ProfileStore the API uses.
type ProfileStore interface {
	ProfileLister
	Get(id uuid.UUID) (models.Profile, error)
	SetDefault(id uuid.UUID) error
}

// Prober checks whether a profile's backend is reachable.
type Prober interface {
	Probe(ctx context.Context, p models.Profile) probe.Result
}

type ProfilesHandler struct {
	store  ProfileStore
	prober Prober
}

func NewProfilesHandler(store ProfileStore, prober Prober) *ProfilesHandler {
	return &ProfilesHandler{
		store:  store,
		prober: prober,
	}
}

func (h *ProfilesHandler) Routes(r chi.Router) {
	r.Get("/", h.ListProfiles)
	r.Route("/{profileID}", func(r chi.Router) {
		r.Get("/", h.GetProfile)
		r.Put("/default", h.SetDefault)
		r.Post("/probe", h.Probe)
	})
}

func (h *ProfilesHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	RespondJSON(w, http.StatusOK, h.store.List())
}

func (h *ProfilesHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseProfileID(w, r)
	if !ok {
		return
	}

	p, err := h.store.Get(id)
	if err != nil {
		RespondProfileError(w, err, "Failed to load profile")
		return
	}
	RespondJSON(w, http.StatusOK, p)
}

// SetDefault makes the profile the default and clears the flag on every
// other profile.
func (h *ProfilesHandler) SetDefault(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseProfileID(w, r)
	if !ok {
		return
	}

	if err := h.store.SetDefault(id); err != nil {
		RespondProfileError(w, err, "Failed to set default profile")
		return
	}

	log.Info().Str("profileID", id.String()).Msg("Default profile changed")

	p, err := h.store.Get(id)
	if err != nil {
		RespondProfileError(w, err, "Failed to load profile")
		return
	}
	RespondJSON(w, http.StatusOK, p)
}

func (h *ProfilesHandler) Probe(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseProfileID(w, r)
	if !ok {
		return
	}
	if h.prober == nil {
		RespondError(w, http.StatusServiceUnavailable, "Probing is not available")
		return
	}

	p, err := h.store.Get(id)
	if err != nil {
		RespondProfileError(w, err, "Failed to load profile")
		return
	}

	RespondJSON(w, http.StatusOK, h.prober.Probe(r.Context(), p))
}
