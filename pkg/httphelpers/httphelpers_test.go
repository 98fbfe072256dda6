// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package httphelpers

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBasePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"just slash", "/", ""},
		{"whitespace", "   ", ""},
		{"simple path", "/share", "/share"},
		{"trailing slash", "share/", "/share"},
		{"nested", "/proxy/share/", "/proxy/share"},
		{"many slashes", "///", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, NormalizeBasePath(tt.input))
		})
	}
}

func TestJoinBasePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		basePath string
		suffix   string
		expected string
	}{
		{"empty base, empty suffix", "", "", "/"},
		{"empty base, absolute suffix", "", "/api", "/api"},
		{"with base, empty suffix", "/share", "", "/share"},
		{"with base, relative suffix", "/share", "api", "/share/api"},
		{"with base, absolute suffix", "/share", "/api", "/share/api"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, JoinBasePath(tt.basePath, tt.suffix))
		})
	}
}

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func TestDrainAndClose(t *testing.T) {
	t.Parallel()

	DrainAndClose(nil)
	DrainAndClose(&http.Response{})

	body := &trackingBody{Reader: bytes.NewReader([]byte("payload"))}
	DrainAndClose(&http.Response{Body: body})
	assert.True(t, body.closed)
}

func TestReadBody(t *testing.T) {
	t.Parallel()

	resp := &http.Response{Body: io.NopCloser(strings.NewReader("Unauthorized access"))}
	assert.Equal(t, "Unauthorized", ReadBody(resp, 12))
	assert.Equal(t, "", ReadBody(nil, 10))
}
