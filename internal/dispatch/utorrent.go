// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package dispatch

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/autobrr/shareconnect/internal/models"
	"github.com/autobrr/shareconnect/pkg/httphelpers"
)

const maxTokenPageBytes = 64 << 10

// UTorrentAdapter fetches the WebUI token and then calls add-url. uTorrent
// binds the token to a GUID cookie, so both calls share a fresh jar.
type UTorrentAdapter struct {
	t *transport
}

func (a *UTorrentAdapter) Send(ctx context.Context, p models.Profile, rawURL string) (int, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return 0, configErrorf("failed to create cookie jar: %v", err)
	}
	client := *a.t.client
	client.Jar = jar

	token, status, err := a.fetchToken(ctx, &client, p)
	if err != nil {
		return status, err
	}

	q := url.Values{}
	q.Set("action", "add-url")
	q.Set("s", rawURL)
	q.Set("token", token)

	req, err := a.t.newRequest(ctx, http.MethodGet, p.Endpoint("/gui/")+"?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}

	resp, err := a.t.roundTrip(&client, p, req)
	if err != nil {
		return statusOf(err), err
	}
	httphelpers.DrainAndClose(resp)
	return resp.StatusCode, nil
}

func (a *UTorrentAdapter) fetchToken(ctx context.Context, client *http.Client, p models.Profile) (string, int, error) {
	req, err := a.t.newRequest(ctx, http.MethodGet, p.Endpoint("/gui/token.html"), nil)
	if err != nil {
		return "", 0, err
	}

	resp, err := a.t.roundTrip(client, p, req)
	if err != nil {
		return "", statusOf(err), err
	}
	defer httphelpers.DrainAndClose(resp)

	return scrapeToken(io.LimitReader(resp.Body, maxTokenPageBytes)), resp.StatusCode, nil
}

// scrapeToken returns the text of the #token element, or "" when the page
// has none.
func scrapeToken(r io.Reader) string {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("#token").First().Text())
}
