// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package probe checks whether a profile's backend answers before anything is
// dispatched to it.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/autobrr/shareconnect/internal/buildinfo"
	"github.com/autobrr/shareconnect/internal/models"
	"github.com/autobrr/shareconnect/internal/pkg/timeouts"
	"github.com/autobrr/shareconnect/internal/qbittorrent"
	"github.com/autobrr/shareconnect/pkg/httphelpers"
	"github.com/autobrr/shareconnect/pkg/redact"
)

const (
	transmissionSessionHeader = "X-Transmission-Session-Id"
	maxConcurrentProbes       = 4
)

// Result is the outcome of a single probe. Error is set whenever Reachable is
// false.
type Result struct {
	Profile       string        `json:"profile"`
	Service       string        `json:"service"`
	Reachable     bool          `json:"reachable"`
	Version       string        `json:"version,omitempty"`
	WebAPIVersion string        `json:"webApiVersion,omitempty"`
	HTTPStatus    int           `json:"httpStatus,omitempty"`
	Latency       time.Duration `json:"latency"`
	Error         string        `json:"error,omitempty"`
}

type Prober struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
}

type OptFunc func(*Prober)

func WithHTTPClient(c *http.Client) OptFunc {
	return func(p *Prober) {
		if c != nil {
			p.client = c
		}
	}
}

func WithTimeout(d time.Duration) OptFunc {
	return func(p *Prober) {
		p.timeout = d
	}
}

func NewProber(opts ...OptFunc) *Prober {
	p := &Prober{
		client:    &http.Client{},
		userAgent: buildinfo.UserAgent,
		timeout:   timeouts.ProbeTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe never returns an error; failures are reported through Result.
func (p *Prober) Probe(ctx context.Context, profile models.Profile) Result {
	ctx, cancel := timeouts.WithProbeTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	res := Result{Profile: profile.Name, Service: profile.ServiceName()}

	var err error
	switch {
	case profile.ServiceKind == models.ServiceTorrent && profile.TorrentClient == models.ClientQBittorrent:
		err = p.probeQBittorrent(ctx, profile, &res)
	case profile.ServiceKind == models.ServiceTorrent && profile.TorrentClient == models.ClientTransmission:
		err = p.probeTransmission(ctx, profile, &res)
	default:
		err = p.probeOrigin(ctx, profile, &res)
	}

	res.Latency = time.Since(start)
	if err != nil {
		res.Reachable = false
		res.Error = err.Error()
		log.Debug().Err(err).Str("profile", profile.Name).Str("service", res.Service).Msg("probe failed")
		return res
	}

	res.Reachable = true
	log.Debug().
		Str("profile", profile.Name).
		Str("service", res.Service).
		Str("version", res.Version).
		Dur("latency", res.Latency).
		Msg("probe succeeded")
	return res
}

func (p *Prober) probeQBittorrent(ctx context.Context, profile models.Profile, res *Result) error {
	client, err := qbittorrent.NewClient(ctx, profile)
	if err != nil {
		return err
	}

	info, err := client.GetAppInfo(ctx)
	if err != nil {
		return err
	}

	res.Version = info.Version
	res.WebAPIVersion = info.WebAPIVersion
	if !client.SupportsAPIv2() {
		return fmt.Errorf("web API version %s is too old", info.WebAPIVersion)
	}
	return nil
}

type transmissionRequest struct {
	Method    string         `json:"method"`
	Arguments map[string]any `json:"arguments"`
}

type transmissionResponse struct {
	Result    string `json:"result"`
	Arguments struct {
		Version    string `json:"version"`
		RPCVersion int    `json:"rpc-version"`
	} `json:"arguments"`
}

// probeTransmission sends session-get. The first call usually answers 409
// with a session id, which already proves the daemon is there; the call is
// repeated once with the id to read the version.
func (p *Prober) probeTransmission(ctx context.Context, profile models.Profile, res *Result) error {
	body, err := json.Marshal(transmissionRequest{
		Method:    "session-get",
		Arguments: map[string]any{"fields": []string{"version", "rpc-version"}},
	})
	if err != nil {
		return err
	}

	resp, err := p.do(ctx, profile, http.MethodPost, "/transmission/rpc", body, "")
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusConflict {
		sessionID := resp.Header.Get(transmissionSessionHeader)
		httphelpers.DrainAndClose(resp)
		res.HTTPStatus = resp.StatusCode
		if sessionID == "" {
			return fmt.Errorf("transmission answered 409 without %s", transmissionSessionHeader)
		}

		resp, err = p.do(ctx, profile, http.MethodPost, "/transmission/rpc", body, sessionID)
		if err != nil {
			// The 409 already proved the daemon is reachable.
			log.Trace().Err(err).Str("profile", profile.Name).Msg("transmission version lookup failed")
			return nil
		}
	}
	defer httphelpers.DrainAndClose(resp)

	res.HTTPStatus = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var out transmissionResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&out); err != nil {
		return fmt.Errorf("failed to decode session-get response: %w", err)
	}
	if out.Result != "" && out.Result != "success" {
		return fmt.Errorf("session-get failed: %s", out.Result)
	}
	res.Version = strings.TrimSpace(out.Arguments.Version)
	if out.Arguments.RPCVersion > 0 {
		res.WebAPIVersion = fmt.Sprintf("%d", out.Arguments.RPCVersion)
	}
	return nil
}

// probeOrigin treats anything below 500 as reachable: MeTube and jDownloader
// serve their UI on /, and a 401 still means the service is up.
func (p *Prober) probeOrigin(ctx context.Context, profile models.Profile, res *Result) error {
	resp, err := p.do(ctx, profile, http.MethodGet, "/", nil, "")
	if err != nil {
		return err
	}
	defer httphelpers.DrainAndClose(resp)

	res.HTTPStatus = resp.StatusCode
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("server error %d", resp.StatusCode)
	}
	return nil
}

func (p *Prober) do(ctx context.Context, profile models.Profile, method, path string, body []byte, sessionID string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, profile.Endpoint(path), reader)
	if err != nil {
		return nil, fmt.Errorf("invalid profile url: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionID != "" {
		req.Header.Set(transmissionSessionHeader, sessionID)
	}
	if profile.HasCredentials() {
		req.SetBasicAuth(profile.Username, profile.Password)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, redact.URLError(err)
	}
	return resp, nil
}

// ProbeAll probes every profile concurrently and returns results in input
// order.
func (p *Prober) ProbeAll(ctx context.Context, profiles []models.Profile) []Result {
	results := make([]Result, len(profiles))

	var g errgroup.Group
	g.SetLimit(maxConcurrentProbes)
	for i, profile := range profiles {
		g.Go(func() error {
			results[i] = p.Probe(ctx, profile)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
