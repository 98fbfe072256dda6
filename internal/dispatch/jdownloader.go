// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package dispatch

import (
	"context"
	"net/http"
	"net/url"

	"github.com/rs/zerolog/log"

	"github.com/autobrr/shareconnect/internal/models"
)

type flashAddRequest struct {
	URLs              []string `json:"urls"`
	PackageName       string   `json:"packageName"`
	DestinationFolder string   `json:"destinationFolder"`
}

// JDownloaderAdapter tries the JSON /flash/add endpoint and falls back once
// to the legacy /flashget GET. Only the fallback error is returned.
type JDownloaderAdapter struct {
	t *transport
}

func (a *JDownloaderAdapter) Send(ctx context.Context, p models.Profile, rawURL string) (int, error) {
	status, err := a.sendModern(ctx, p, rawURL)
	if err == nil {
		return status, nil
	}
	if IsConfigurationError(err) {
		return 0, err
	}

	log.Debug().Err(err).Str("profile", p.Name).Msg("jdownloader /flash/add failed, trying /flashget")

	req, err := a.t.newRequest(ctx, http.MethodGet, p.Endpoint("/flashget")+"?url="+url.QueryEscape(rawURL), nil)
	if err != nil {
		return 0, err
	}
	return a.t.send(p, req)
}

func (a *JDownloaderAdapter) sendModern(ctx context.Context, p models.Profile, rawURL string) (int, error) {
	payload := flashAddRequest{URLs: []string{rawURL}}
	req, err := a.t.newJSONRequest(ctx, p.Endpoint("/flash/add"), payload)
	if err != nil {
		return 0, err
	}
	return a.t.send(p, req)
}
