// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/autobrr/shareconnect/internal/models"
	"github.com/autobrr/shareconnect/pkg/httphelpers"
	"github.com/autobrr/shareconnect/pkg/redact"
)

const (
	maxErrorBodyBytes = 4096
	jsonContentType   = "application/json; charset=utf-8"
)

// Adapter delivers a URL to one kind of backend. It returns the status of
// the last response it received, or 0 when none was received.
type Adapter interface {
	Send(ctx context.Context, p models.Profile, rawURL string) (int, error)
}

// AdapterFunc lets a plain function act as an Adapter.
type AdapterFunc func(ctx context.Context, p models.Profile, rawURL string) (int, error)

func (f AdapterFunc) Send(ctx context.Context, p models.Profile, rawURL string) (int, error) {
	return f(ctx, p, rawURL)
}

// transport holds what every adapter needs to issue requests.
type transport struct {
	client    *http.Client
	userAgent string
}

func (t *transport) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, configErrorf("invalid endpoint %s: %v", redact.URLString(target), err)
	}
	return req, nil
}

func (t *transport) newJSONRequest(ctx context.Context, target string, payload any) (*http.Request, error) {
	body, err := encodeJSON(payload)
	if err != nil {
		return nil, err
	}
	req, err := t.newRequest(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", jsonContentType)
	return req, nil
}

// roundTrip sends req with the profile credentials and returns the response
// only for 2xx statuses. The caller owns the returned body.
func (t *transport) roundTrip(client *http.Client, p models.Profile, req *http.Request) (*http.Response, error) {
	if p.HasCredentials() {
		req.SetBasicAuth(p.Username, p.Password)
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: redact.URLError(err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := httphelpers.ReadBody(resp, maxErrorBodyBytes)
		httphelpers.DrainAndClose(resp)
		return nil, &APIError{StatusCode: resp.StatusCode, Body: body}
	}

	return resp, nil
}

func (t *transport) send(p models.Profile, req *http.Request) (int, error) {
	resp, err := t.roundTrip(t.client, p, req)
	if err != nil {
		return statusOf(err), err
	}
	httphelpers.DrainAndClose(resp)
	return resp.StatusCode, nil
}

func statusOf(err error) int {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.StatusCode
	}
	return 0
}

// encodeJSON marshals v without HTML escaping so query strings inside URLs
// keep a literal '&'.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, configErrorf("failed to encode request: %v", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
