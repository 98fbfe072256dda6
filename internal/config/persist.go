// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// UpdateLogSettings validates the new values, rewrites them in config.toml
// and reconfigures the global logger.
func (c *AppConfig) UpdateLogSettings(level, path string, maxSize, maxBackups int) error {
	next := *c.Config
	next.LogLevel = strings.ToUpper(strings.TrimSpace(level))
	next.LogPath = strings.TrimSpace(path)
	next.LogMaxSize = maxSize
	next.LogMaxBackups = maxBackups

	if err := next.Validate(); err != nil {
		return err
	}
	if maxSize <= 0 {
		return fmt.Errorf("invalid logMaxSize %d", maxSize)
	}
	if maxBackups < 0 {
		return fmt.Errorf("invalid logMaxBackups %d", maxBackups)
	}

	content, err := os.ReadFile(c.configPath)
	if err != nil {
		return errors.Wrapf(err, "failed to read config %s", c.configPath)
	}

	updated := updateLogSettingsInTOML(string(content), next.LogLevel, next.LogPath, maxSize, maxBackups)
	if err := os.WriteFile(c.configPath, []byte(updated), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write config %s", c.configPath)
	}

	c.Config.LogLevel = next.LogLevel
	c.Config.LogPath = next.LogPath
	c.Config.LogMaxSize = maxSize
	c.Config.LogMaxBackups = maxBackups
	c.ApplyLogConfig()

	return nil
}

var tableHeader = regexp.MustCompile(`(?m)^\s*\[`)

// updateLogSettingsInTOML replaces the log keys in place, including their
// commented-out template lines. Keys that are missing entirely are inserted
// before the first table so they stay top-level.
func updateLogSettingsInTOML(content, level, path string, maxSize, maxBackups int) string {
	pathLine := fmt.Sprintf("logPath = %s", strconv.Quote(path))
	if path == "" {
		pathLine = `#logPath = "log/shareconnect.log"`
	}

	settings := []struct {
		key  string
		line string
	}{
		{"logLevel", fmt.Sprintf("logLevel = %s", strconv.Quote(level))},
		{"logPath", pathLine},
		{"logMaxSize", fmt.Sprintf("logMaxSize = %d", maxSize)},
		{"logMaxBackups", fmt.Sprintf("logMaxBackups = %d", maxBackups)},
	}

	var missing []string
	for _, s := range settings {
		var replaced bool
		content, replaced = replaceTopLevelKey(content, s.key, s.line)
		if !replaced {
			missing = append(missing, s.line)
		}
	}

	if len(missing) == 0 {
		return content
	}

	block := "# Log settings\n" + strings.Join(missing, "\n") + "\n"
	if loc := tableHeader.FindStringIndex(content); loc != nil {
		return content[:loc[0]] + block + "\n" + content[loc[0]:]
	}
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + "\n" + block
}

// replaceTopLevelKey rewrites the first line assigning key, commented or not,
// that appears before any table header.
func replaceTopLevelKey(content, key, line string) (string, bool) {
	top := content
	rest := ""
	if loc := tableHeader.FindStringIndex(content); loc != nil {
		top, rest = content[:loc[0]], content[loc[0]:]
	}

	re := regexp.MustCompile(`(?m)^[ \t]*#?[ \t]*` + regexp.QuoteMeta(key) + `[ \t]*=.*$`)
	loc := re.FindStringIndex(top)
	if loc == nil {
		return content, false
	}
	return top[:loc[0]] + line + top[loc[1]:] + rest, true
}
