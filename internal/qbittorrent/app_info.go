// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package qbittorrent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const appInfoRequestTimeout = 10 * time.Second

// AppBuildInfo represents the qBittorrent build information reported by the API.
type AppBuildInfo struct {
	Qt         string `json:"qt"`
	Libtorrent string `json:"libtorrent"`
	Boost      string `json:"boost"`
	OpenSSL    string `json:"openssl"`
	Zlib       string `json:"zlib"`
	Bitness    int    `json:"bitness"`
	Platform   string `json:"platform,omitempty"`
}

// AppInfo captures the qBittorrent application metadata exposed via the API.
type AppInfo struct {
	Version       string        `json:"version"`
	WebAPIVersion string        `json:"webAPIVersion,omitempty"`
	BuildInfo     *AppBuildInfo `json:"buildInfo,omitempty"`
}

// GetAppInfo fetches version and build information. Build info is optional:
// older releases do not serve it.
func (c *Client) GetAppInfo(ctx context.Context) (*AppInfo, error) {
	requestCtx, cancel := context.WithTimeout(ctx, appInfoRequestTimeout)
	defer cancel()

	version, err := c.GetAppVersionCtx(requestCtx)
	if err != nil {
		return nil, fmt.Errorf("get app version: %w", err)
	}

	webAPIVersion, err := c.GetWebAPIVersionCtx(requestCtx)
	if err != nil {
		return nil, fmt.Errorf("get web API version: %w", err)
	}

	webAPIVersion = strings.TrimSpace(webAPIVersion)
	if webAPIVersion == "" {
		return nil, errors.New("web API version is empty")
	}

	info := &AppInfo{
		Version:       strings.TrimSpace(version),
		WebAPIVersion: webAPIVersion,
	}

	if buildInfo, err := c.GetBuildInfoCtx(requestCtx); err == nil {
		info.BuildInfo = &AppBuildInfo{
			Qt:         buildInfo.Qt,
			Libtorrent: buildInfo.Libtorrent,
			Boost:      buildInfo.Boost,
			OpenSSL:    buildInfo.Openssl,
			Zlib:       buildInfo.Zlib,
			Bitness:    buildInfo.Bitness,
			Platform:   buildInfo.Platform,
		}
	} else {
		log.Trace().Err(err).Str("profile", c.profile).Msg("qBittorrent build info unavailable")
	}

	c.mu.Lock()
	previous := c.webAPIVersion
	c.webAPIVersion = webAPIVersion
	c.supportsV2 = supportsAPIv2(webAPIVersion)
	c.mu.Unlock()

	if previous != webAPIVersion {
		log.Trace().
			Str("profile", c.profile).
			Str("previousWebAPIVersion", previous).
			Str("webAPIVersion", webAPIVersion).
			Msg("Updated qBittorrent capabilities from app info refresh")
	}

	return info, nil
}
