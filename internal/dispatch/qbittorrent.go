// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package dispatch

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"

	"github.com/autobrr/shareconnect/internal/models"
)

type QBittorrentAdapter struct {
	t *transport
}

func (a *QBittorrentAdapter) Send(ctx context.Context, p models.Profile, rawURL string) (int, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("urls", rawURL); err != nil {
		return 0, configErrorf("failed to build form: %v", err)
	}
	if err := w.Close(); err != nil {
		return 0, configErrorf("failed to build form: %v", err)
	}

	req, err := a.t.newRequest(ctx, http.MethodPost, p.Endpoint("/api/v2/torrents/add"), &body)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return a.t.send(p, req)
}
