// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package dispatch

import (
	"context"

	"github.com/autobrr/shareconnect/internal/models"
)

type rpcRequest struct {
	Method    string `json:"method"`
	Arguments any    `json:"arguments"`
}

type torrentAddArguments struct {
	Filename string `json:"filename"`
}

// TransmissionAdapter issues a single torrent-add RPC. Transmission answers a
// request without a session id with 409, which surfaces as an APIError.
type TransmissionAdapter struct {
	t *transport
}

func (a *TransmissionAdapter) Send(ctx context.Context, p models.Profile, rawURL string) (int, error) {
	payload := rpcRequest{
		Method:    "torrent-add",
		Arguments: torrentAddArguments{Filename: rawURL},
	}

	req, err := a.t.newJSONRequest(ctx, p.Endpoint("/transmission/rpc"), payload)
	if err != nil {
		return 0, err
	}
	return a.t.send(p, req)
}
