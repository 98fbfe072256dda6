// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package buildinfo

import (
	"encoding/json"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	t.Parallel()

	lines := strings.Split(strings.TrimSpace(String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Version: "))
	assert.True(t, strings.HasPrefix(lines[1], "Commit: "))
	assert.True(t, strings.HasPrefix(lines[2], "Build date: "))
}

func TestJSON(t *testing.T) {
	t.Parallel()

	data, err := JSON()
	require.NoError(t, err)

	var info struct {
		Version string `json:"version"`
		Commit  string `json:"commit"`
		Date    string `json:"date"`
	}
	require.NoError(t, json.Unmarshal(data, &info))

	assert.Equal(t, Version, info.Version)
	assert.Equal(t, Commit, info.Commit)
	assert.Equal(t, Date, info.Date)
}

func TestUserAgent(t *testing.T) {
	t.Parallel()

	assert.True(t, strings.HasPrefix(UserAgent, "shareconnect/"+Version))
	assert.Contains(t, UserAgent, runtime.GOOS)
	assert.Contains(t, UserAgent, runtime.GOARCH)
}
