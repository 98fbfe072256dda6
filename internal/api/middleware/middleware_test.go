// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveLogged(t *testing.T, h http.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var logBuf bytes.Buffer
	logger := zerolog.New(&logBuf).Level(zerolog.TraceLevel)

	rec := httptest.NewRecorder()
	RequestID(Logger(logger)(h)).ServeHTTP(rec, req)

	lines := strings.Split(strings.TrimSpace(logBuf.String()), "\n")
	require.Len(t, lines, 1, logBuf.String())

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	return rec, entry
}

func TestLoggerAccessLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		method     string
		body       string
		handler    http.HandlerFunc
		wantStatus int
		wantOut    float64
	}{
		{
			name:   "dispatch accepted",
			method: http.MethodPost,
			body:   `{"url":"magnet:?xt=urn:btih:abcd"}`,
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{"success":true}`))
			},
			wantStatus: http.StatusOK,
			wantOut:    16,
		},
		{
			name:   "implicit ok",
			method: http.MethodGet,
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("ok"))
			},
			wantStatus: http.StatusOK,
			wantOut:    2,
		},
		{
			name:   "no compatible profile",
			method: http.MethodPost,
			body:   `{"url":"magnet:?xt=urn:btih:abcd"}`,
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:   "service unreachable",
			method: http.MethodPut,
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tt.method, "/api/dispatch?source=share", strings.NewReader(tt.body))
			req.Header.Set("User-Agent", "shareconnect-test/1.0")

			rec, entry := serveLogged(t, tt.handler, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "trace", entry["level"])
			assert.Equal(t, "access", entry["type"])
			assert.Equal(t, "/api/dispatch?source=share", entry["url"])
			assert.Equal(t, tt.method, entry["method"])
			assert.Equal(t, float64(tt.wantStatus), entry["status"])
			assert.Equal(t, "shareconnect-test/1.0", entry["user_agent"])
			assert.Equal(t, float64(len(tt.body)), entry["bytes_in"])
			assert.Equal(t, tt.wantOut, entry["bytes_out"])
			assert.NotEmpty(t, entry["request_id"])
			assert.Contains(t, entry, "latency_ms")
		})
	}
}

func TestLoggerRecoversPanics(t *testing.T) {
	t.Parallel()

	t.Run("before write", func(t *testing.T) {
		t.Parallel()

		rec, entry := serveLogged(t, func(http.ResponseWriter, *http.Request) {
			panic("adapter exploded")
		}, httptest.NewRequest(http.MethodPost, "/api/dispatch", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "error", entry["level"])
		assert.Equal(t, "error", entry["type"])
		assert.Equal(t, "adapter exploded", entry["panic"])
		assert.Equal(t, "/api/dispatch", entry["url"])
	})

	t.Run("after write keeps status", func(t *testing.T) {
		t.Parallel()

		rec, entry := serveLogged(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusAccepted)
			panic("late failure")
		}, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, "late failure", entry["panic"])
	})
}

func TestLoggerRepanicsOnAbort(t *testing.T) {
	t.Parallel()

	handler := Logger(zerolog.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
