// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package dispatch delivers URLs to download services over their HTTP APIs.
package dispatch

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/shareconnect/internal/buildinfo"
	"github.com/autobrr/shareconnect/internal/classify"
	"github.com/autobrr/shareconnect/internal/models"
	"github.com/autobrr/shareconnect/pkg/redact"
)

// Recorder observes finished dispatches.
type Recorder interface {
	ObserveDispatch(p models.Profile, o Outcome, elapsed time.Duration)
}

type Options struct {
	// Client is used for every request. When nil a client with Timeout is built.
	Client *http.Client
	// Timeout bounds a whole dispatch. Zero means no client timeout.
	Timeout   time.Duration
	UserAgent string
	Recorder  Recorder
	Logger    *zerolog.Logger
}

type route struct {
	kind   models.ServiceKind
	client models.TorrentClient
}

// Router picks an adapter by service kind and, for torrent profiles, by
// torrent client.
type Router struct {
	mu       sync.RWMutex
	adapters map[route]Adapter
	recorder Recorder
	log      *zerolog.Logger
}

func NewRouter(opts Options) *Router {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = buildinfo.UserAgent
	}
	logger := opts.Logger
	if logger == nil {
		logger = &log.Logger
	}

	t := &transport{client: client, userAgent: userAgent}
	r := &Router{
		adapters: make(map[route]Adapter),
		recorder: opts.Recorder,
		log:      logger,
	}

	metube := &MeTubeAdapter{t: t}
	r.Register(models.ServiceMeTube, "", metube)
	r.Register(models.ServiceYtDl, "", metube)
	r.Register(models.ServiceTorrent, models.ClientQBittorrent, &QBittorrentAdapter{t: t})
	r.Register(models.ServiceTorrent, models.ClientTransmission, &TransmissionAdapter{t: t})
	r.Register(models.ServiceTorrent, models.ClientUTorrent, &UTorrentAdapter{t: t})
	r.Register(models.ServiceJDownloader, "", &JDownloaderAdapter{t: t})

	return r
}

// Register installs or replaces the adapter for kind. client is only
// meaningful for torrent profiles.
func (r *Router) Register(kind models.ServiceKind, client models.TorrentClient, a Adapter) {
	if kind != models.ServiceTorrent {
		client = ""
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[route{kind: kind, client: client}] = a
}

// AdapterFor returns the adapter for p or a ConfigurationError.
func (r *Router) AdapterFor(p models.Profile) (Adapter, error) {
	key := route{kind: p.ServiceKind}
	if p.ServiceKind == models.ServiceTorrent {
		key.client = p.TorrentClient
	}

	r.mu.RLock()
	a, ok := r.adapters[key]
	r.mu.RUnlock()
	if ok {
		return a, nil
	}

	if p.ServiceKind == models.ServiceTorrent {
		return nil, configErrorf("Unsupported torrent client: %s", p.TorrentClient)
	}
	return nil, configErrorf("Unsupported service type: %s", p.ServiceKind)
}

// Dispatch sends rawURL to the service described by p. Every failure is
// reported through the returned Outcome.
func (r *Router) Dispatch(ctx context.Context, p models.Profile, rawURL string) Outcome {
	start := time.Now()
	status, err := r.send(ctx, p, rawURL)
	elapsed := time.Since(start)
	out := OutcomeFromError(status, err)

	l := r.log.With().
		Str("profile", p.Name).
		Str("service", p.ServiceName()).
		Str("provider", classify.ServiceProvider(rawURL)).
		Str("url", redact.URLString(rawURL)).
		Dur("elapsed", elapsed).
		Logger()

	if out.Success {
		l.Debug().Int("status", out.HTTPStatus).Msg("dispatched url")
	} else {
		l.Warn().
			Str("kind", string(out.ErrorKind)).
			Int("status", out.HTTPStatus).
			Str("error", out.ErrorDetail).
			Msg("dispatch failed")
	}

	if r.recorder != nil {
		r.recorder.ObserveDispatch(p, out, elapsed)
	}
	return out
}

// DispatchAsync runs Dispatch on its own goroutine and calls cb exactly once
// with the result.
func (r *Router) DispatchAsync(ctx context.Context, p models.Profile, rawURL string, cb func(Outcome)) {
	go func() {
		out := r.Dispatch(ctx, p, rawURL)
		if cb != nil {
			cb(out)
		}
	}()
}

func (r *Router) send(ctx context.Context, p models.Profile, rawURL string) (int, error) {
	if strings.TrimSpace(rawURL) == "" {
		return 0, configErrorf("url cannot be empty")
	}

	a, err := r.AdapterFor(p)
	if err != nil {
		return 0, err
	}

	r.log.Debug().
		Str("profile", p.Name).
		Str("endpoint", redact.URLString(p.Origin())).
		Msg("dispatching url")

	return a.Send(ctx, p, rawURL)
}
