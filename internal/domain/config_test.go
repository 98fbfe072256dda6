// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() Config {
		return Config{LogLevel: "INFO", Port: 7480, MetricsPort: 9074, InjectMaxAttempts: 30}
	}

	t.Run("accepts defaults", func(t *testing.T) {
		t.Parallel()
		cfg := valid()
		require.NoError(t, cfg.Validate())
	})

	t.Run("log level is case insensitive", func(t *testing.T) {
		t.Parallel()
		cfg := valid()
		cfg.LogLevel = "debug"
		require.NoError(t, cfg.Validate())
	})

	t.Run("rejects unknown log level", func(t *testing.T) {
		t.Parallel()
		cfg := valid()
		cfg.LogLevel = "VERBOSE"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "logLevel")
	})

	t.Run("rejects bad metrics port when enabled", func(t *testing.T) {
		t.Parallel()
		cfg := valid()
		cfg.MetricsEnabled = true
		cfg.MetricsPort = 0
		require.Error(t, cfg.Validate())
	})

	t.Run("rejects negative inject attempts", func(t *testing.T) {
		t.Parallel()
		cfg := valid()
		cfg.InjectMaxAttempts = -1
		require.Error(t, cfg.Validate())
	})
}
