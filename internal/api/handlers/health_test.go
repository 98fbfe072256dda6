// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/shareconnect/internal/models"
)

type staticProfiles []models.Profile

func (s staticProfiles) List() []models.Profile {
	return s
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	configured := staticProfiles{
		{Name: "MeTube", ServiceKind: models.ServiceMeTube},
		{Name: "qBittorrent", ServiceKind: models.ServiceTorrent, TorrentClient: models.ClientQBittorrent},
	}

	tests := []struct {
		name       string
		profiles   ProfileLister
		path       string
		wantStatus int
		wantBody   map[string]any
	}{
		{
			name:       "health",
			path:       "/",
			wantStatus: http.StatusOK,
			wantBody:   map[string]any{"status": "ok"},
		},
		{
			name:       "liveness",
			path:       "/liveness",
			wantStatus: http.StatusOK,
			wantBody:   map[string]any{"status": "alive"},
		},
		{
			name:       "ready with profiles",
			profiles:   configured,
			path:       "/readiness",
			wantStatus: http.StatusOK,
			wantBody:   map[string]any{"status": "ready", "profiles": float64(2)},
		},
		{
			name:       "not ready without profiles",
			profiles:   staticProfiles{},
			path:       "/readiness",
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   map[string]any{"status": "no profiles configured", "profiles": float64(0)},
		},
		{
			name:       "not ready without store",
			path:       "/readiness",
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   map[string]any{"status": "no profiles configured", "profiles": float64(0)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := chi.NewRouter()
			NewHealthHandler(tt.profiles).Routes(r)

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}

func TestHealthHandlerRejectsOtherMethods(t *testing.T) {
	t.Parallel()

	r := chi.NewRouter()
	NewHealthHandler(nil).Routes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
