// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Config represents the application configuration
type Config struct {
	Version               string
	Host                  string `toml:"host" mapstructure:"host"`
	Port                  int    `toml:"port" mapstructure:"port"`
	BaseURL               string `toml:"baseUrl" mapstructure:"baseUrl"`
	LogLevel              string `toml:"logLevel" mapstructure:"logLevel"`
	LogPath               string `toml:"logPath" mapstructure:"logPath"`
	LogMaxSize            int    `toml:"logMaxSize" mapstructure:"logMaxSize"`
	LogMaxBackups         int    `toml:"logMaxBackups" mapstructure:"logMaxBackups"`
	MetricsEnabled        bool   `toml:"metricsEnabled" mapstructure:"metricsEnabled"`
	MetricsHost           string `toml:"metricsHost" mapstructure:"metricsHost"`
	MetricsPort           int    `toml:"metricsPort" mapstructure:"metricsPort"`
	MetricsBasicAuthUsers string `toml:"metricsBasicAuthUsers" mapstructure:"metricsBasicAuthUsers"`

	// ProfilesPath points at the YAML file holding service profiles.
	// Relative paths resolve against the config directory.
	ProfilesPath string `toml:"profilesPath" mapstructure:"profilesPath"`

	// DispatchTimeout caps a single dispatch request in seconds. 0 leaves the
	// HTTP client without a timeout.
	DispatchTimeout int `toml:"dispatchTimeout" mapstructure:"dispatchTimeout"`

	// InjectMaxAttempts bounds how often the web session retries URL injection.
	// 0 retries until the session is closed.
	InjectMaxAttempts int `toml:"injectMaxAttempts" mapstructure:"injectMaxAttempts"`

	CORSAllowedOrigins []string `toml:"corsAllowedOrigins" mapstructure:"corsAllowedOrigins"`
}

var validLogLevels = []string{"ERROR", "WARN", "INFO", "DEBUG", "TRACE"}

// Validate checks values that viper cannot type-check on its own.
func (c *Config) Validate() error {
	level := strings.ToUpper(strings.TrimSpace(c.LogLevel))
	valid := false
	for _, l := range validLogLevels {
		if level == l {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid logLevel %q: must be one of %s", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MetricsEnabled && (c.MetricsPort <= 0 || c.MetricsPort > 65535) {
		return fmt.Errorf("invalid metricsPort %d", c.MetricsPort)
	}
	if c.InjectMaxAttempts < 0 {
		return errors.New("injectMaxAttempts cannot be negative")
	}

	return nil
}
