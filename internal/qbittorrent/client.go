// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package qbittorrent talks to the qBittorrent Web API with a cookie session,
// for probing profiles and adding URLs without driving the web UI.
package qbittorrent

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	qbt "github.com/autobrr/go-qbittorrent"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/shareconnect/internal/models"
	"github.com/autobrr/shareconnect/internal/pkg/timeouts"
)

// minWebAPIVersion is the first release serving /api/v2.
var minWebAPIVersion = semver.MustParse("2.0.0")

type Client struct {
	*qbt.Client
	profile       string
	webAPIVersion string
	supportsV2    bool
	mu            sync.RWMutex
}

// filteredWriter wraps stderr to filter out HTTP "unsolicited response" errors.
//
// qBittorrent occasionally sends extra HTTP responses after the main request completes,
// which makes Go's HTTP client log "Unsolicited response received on idle HTTP channel".
// go-qbittorrent does not expose its HTTP client, so the message is dropped at the
// standard library log level.
type filteredWriter struct {
	writer io.Writer
}

func (fw *filteredWriter) Write(p []byte) (n int, err error) {
	if strings.Contains(string(p), "Unsolicited response received on idle HTTP channel") {
		return len(p), nil
	}
	return fw.writer.Write(p)
}

func init() {
	stdlog.SetOutput(&filteredWriter{writer: os.Stderr})
}

// NewClient logs in to the qBittorrent instance behind p. Profiles without
// credentials rely on the instance's auth bypass and skip the login call.
func NewClient(ctx context.Context, p models.Profile) (*Client, error) {
	if p.ServiceKind != models.ServiceTorrent || p.TorrentClient != models.ClientQBittorrent {
		return nil, fmt.Errorf("profile %q is not a qBittorrent profile", p.Name)
	}

	cfg := qbt.Config{
		Host:     p.Origin(),
		Username: p.Username,
		Password: p.Password,
		Timeout:  int(timeouts.ProbeTimeout.Seconds()),
	}

	qbtClient := qbt.NewClient(cfg)

	ctx, cancel := timeouts.WithProbeTimeout(ctx, timeouts.ProbeTimeout)
	defer cancel()

	if p.HasCredentials() {
		if err := qbtClient.LoginCtx(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to qBittorrent instance: %w", err)
		}
	}

	webAPIVersion, err := qbtClient.GetWebAPIVersionCtx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get web API version: %w", err)
	}
	webAPIVersion = strings.TrimSpace(webAPIVersion)

	client := &Client{
		Client:        qbtClient,
		profile:       p.Name,
		webAPIVersion: webAPIVersion,
		supportsV2:    supportsAPIv2(webAPIVersion),
	}

	log.Debug().
		Str("profile", p.Name).
		Str("host", p.Origin()).
		Str("webAPIVersion", webAPIVersion).
		Bool("supportsV2", client.supportsV2).
		Msg("qBittorrent client created successfully")

	return client, nil
}

func supportsAPIv2(webAPIVersion string) bool {
	v, err := semver.NewVersion(webAPIVersion)
	if err != nil {
		return false
	}
	return !v.LessThan(minWebAPIVersion)
}

func (c *Client) GetWebAPIVersion() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.webAPIVersion
}

func (c *Client) SupportsAPIv2() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.supportsV2
}

// AddURL adds a magnet or torrent URL through the authenticated API session.
func (c *Client) AddURL(ctx context.Context, rawURL string) error {
	if !c.SupportsAPIv2() {
		return fmt.Errorf("web API version %q does not support /api/v2", c.GetWebAPIVersion())
	}
	if err := c.AddTorrentFromUrlCtx(ctx, rawURL, map[string]string{}); err != nil {
		return fmt.Errorf("failed to add url: %w", err)
	}
	return nil
}

// AddURL logs in to the profile's instance and adds rawURL.
func AddURL(ctx context.Context, p models.Profile, rawURL string) error {
	client, err := NewClient(ctx, p)
	if err != nil {
		return err
	}
	return client.AddURL(ctx, rawURL)
}
