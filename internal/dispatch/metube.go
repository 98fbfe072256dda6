// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package dispatch

import (
	"context"

	"github.com/autobrr/shareconnect/internal/models"
)

type addRequest struct {
	URL     string `json:"url"`
	Quality string `json:"quality"`
}

// MeTubeAdapter posts to the /add endpoint shared by MeTube and yt-dlp web
// frontends.
type MeTubeAdapter struct {
	t *transport
}

func (a *MeTubeAdapter) Send(ctx context.Context, p models.Profile, rawURL string) (int, error) {
	req, err := a.t.newJSONRequest(ctx, p.Endpoint("/add"), addRequest{URL: rawURL, Quality: "best"})
	if err != nil {
		return 0, err
	}
	return a.t.send(p, req)
}
