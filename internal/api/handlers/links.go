// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/autobrr/shareconnect/internal/classify"
	"github.com/autobrr/shareconnect/internal/magnet"
	"github.com/autobrr/shareconnect/internal/metadata"
	"github.com/autobrr/shareconnect/internal/models"
)

// ProfileLister is the read side of the profile store.
type ProfileLister interface {
	List() []models.Profile
}

// MetadataFetcher builds link previews.
type MetadataFetcher interface {
	Fetch(ctx context.Context, rawURL string) metadata.Metadata
}

// LinksHandler serves the side-effect free URL operations: classification,
// magnet parsing and previews.
type LinksHandler struct {
	profiles ProfileLister
	fetcher  MetadataFetcher
}

func NewLinksHandler(profiles ProfileLister, fetcher MetadataFetcher) *LinksHandler {
	return &LinksHandler{
		profiles: profiles,
		fetcher:  fetcher,
	}
}

func (h *LinksHandler) Routes(r chi.Router) {
	r.Post("/classify", h.Classify)
	r.Post("/magnet", h.ParseMagnet)
	r.Post("/metadata", h.Metadata)
}

type urlRequest struct {
	URL string `json:"url"`
}

type ClassifyResponse struct {
	URL                string           `json:"url"`
	Type               classify.URLType `json:"type"`
	Description        string           `json:"description"`
	Provider           string           `json:"provider"`
	MediaType          string           `json:"mediaType"`
	CompatibleProfiles []models.Profile `json:"compatibleProfiles"`
	SelectedProfile    *models.Profile  `json:"selectedProfile,omitempty"`
}

func (h *LinksHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	raw, ok := requireURL(w, req.URL, "url")
	if !ok {
		return
	}

	t := classify.Classify(raw)
	resp := ClassifyResponse{
		URL:                raw,
		Type:               t,
		Description:        t.Description(),
		Provider:           classify.ServiceProvider(raw),
		MediaType:          classify.MediaType(raw),
		CompatibleProfiles: []models.Profile{},
	}

	if h.profiles != nil {
		profiles := h.profiles.List()
		resp.CompatibleProfiles = classify.FilterCompatible(profiles, raw)
		if selected, ok := classify.SelectProfile(profiles, raw); ok {
			resp.SelectedProfile = &selected
		}
	}

	RespondJSON(w, http.StatusOK, resp)
}

type magnetRequest struct {
	URI string `json:"uri"`
}

func (h *LinksHandler) ParseMagnet(w http.ResponseWriter, r *http.Request) {
	var req magnetRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	uri, ok := requireURL(w, req.URI, "uri")
	if !ok {
		return
	}

	RespondJSON(w, http.StatusOK, magnet.Parse(uri))
}

func (h *LinksHandler) Metadata(w http.ResponseWriter, r *http.Request) {
	var req urlRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	raw, ok := requireURL(w, req.URL, "url")
	if !ok {
		return
	}
	if h.fetcher == nil {
		RespondError(w, http.StatusServiceUnavailable, "Metadata fetching is not available")
		return
	}

	RespondJSON(w, http.StatusOK, h.fetcher.Fetch(r.Context(), raw))
}
