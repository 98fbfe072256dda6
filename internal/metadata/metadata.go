// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package metadata builds link previews for shared URLs.
package metadata

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/shareconnect/internal/classify"
	"github.com/autobrr/shareconnect/internal/magnet"
	"github.com/autobrr/shareconnect/internal/pkg/timeouts"
	"github.com/autobrr/shareconnect/pkg/httphelpers"
	"github.com/autobrr/shareconnect/pkg/redact"
)

// BrowserUserAgent is sent by default; several sites hide their Open Graph
// tags from unknown clients.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

const (
	maxPageBytes    = 2 << 20
	maxTorrentBytes = 10 << 20
)

type Metadata struct {
	Title        string             `json:"title,omitempty"`
	Description  string             `json:"description,omitempty"`
	ThumbnailURL string             `json:"thumbnailUrl,omitempty"`
	SiteName     string             `json:"siteName,omitempty"`
	Torrent      *magnet.Descriptor `json:"torrent,omitempty"`
}

type Fetcher struct {
	client          *http.Client
	userAgent       string
	inspectTorrents bool
}

type OptFunc func(*Fetcher)

func WithHTTPClient(c *http.Client) OptFunc {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

func WithUserAgent(userAgent string) OptFunc {
	return func(f *Fetcher) {
		if userAgent != "" {
			f.userAgent = userAgent
		}
	}
}

// WithTorrentInspection downloads .torrent links and reads their metainfo
// instead of deriving the title from the file name.
func WithTorrentInspection(enabled bool) OptFunc {
	return func(f *Fetcher) {
		f.inspectTorrents = enabled
	}
}

func NewFetcher(opts ...OptFunc) *Fetcher {
	f := &Fetcher{
		client:    newHTTPClient(),
		userAgent: BrowserUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func newHTTPClient() *http.Client {
	dialer := &net.Dialer{Timeout: timeouts.MetadataConnectTimeout}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   timeouts.MetadataConnectTimeout,
			ResponseHeaderTimeout: timeouts.MetadataReadTimeout,
		},
	}
}

// Fetch never fails. When the page cannot be loaded the title and site name
// are derived from the URL itself.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) Metadata {
	md, err := f.fetch(ctx, rawURL)
	if err != nil {
		log.Debug().Err(err).Str("url", redact.URLString(rawURL)).Msg("metadata fetch failed, using url fallback")
		return Metadata{
			Title:    titleFromURL(rawURL),
			SiteName: siteNameFromURL(rawURL),
		}
	}
	return md
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (Metadata, error) {
	if classify.Classify(rawURL) == classify.Torrent {
		return f.torrentMetadata(ctx, rawURL), nil
	}

	resp, err := f.get(ctx, rawURL)
	if err != nil {
		return Metadata{}, err
	}
	defer httphelpers.DrainAndClose(resp)

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to parse page: %w", err)
	}
	return Extract(doc), nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, redact.URLError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httphelpers.DrainAndClose(resp)
		return nil, fmt.Errorf("failed to fetch URL: %d", resp.StatusCode)
	}
	return resp, nil
}

// Extract reads Open Graph tags, then Twitter Card tags, then the page title
// and meta description.
func Extract(doc *goquery.Document) Metadata {
	meta := func(sel string) string {
		v, _ := doc.Find(sel).First().Attr("content")
		return strings.TrimSpace(v)
	}

	return Metadata{
		Title: firstNonEmpty(
			meta(`meta[property="og:title"]`),
			meta(`meta[name="twitter:title"]`),
			strings.Join(strings.Fields(doc.Find("title").First().Text()), " "),
		),
		Description: firstNonEmpty(
			meta(`meta[property="og:description"]`),
			meta(`meta[name="twitter:description"]`),
			meta(`meta[name="description"]`),
		),
		ThumbnailURL: firstNonEmpty(
			meta(`meta[property="og:image"]`),
			meta(`meta[name="twitter:image"]`),
		),
		SiteName: meta(`meta[property="og:site_name"]`),
	}
}

func (f *Fetcher) torrentMetadata(ctx context.Context, rawURL string) Metadata {
	raw := strings.TrimSpace(rawURL)

	if strings.HasPrefix(strings.ToLower(raw), "magnet:") {
		d := magnet.Parse(raw)
		title := d.DisplayName
		if title == "" {
			title = magnet.DefaultDisplayName
		}
		return Metadata{
			Title:       title,
			Description: "Torrent magnet link",
			SiteName:    "BitTorrent",
			Torrent:     &d,
		}
	}

	md := Metadata{
		Title:       torrentFileName(raw),
		Description: "Torrent file",
		SiteName:    "BitTorrent",
	}

	if f.inspectTorrents {
		d, err := f.inspectTorrent(ctx, raw)
		if err != nil {
			log.Debug().Err(err).Str("url", redact.URLString(raw)).Msg("failed to inspect torrent file")
			return md
		}
		md.Title = d.DisplayName
		md.Description = d.Description
		md.Torrent = &d
	}

	return md
}

func (f *Fetcher) inspectTorrent(ctx context.Context, rawURL string) (magnet.Descriptor, error) {
	resp, err := f.get(ctx, rawURL)
	if err != nil {
		return magnet.Descriptor{}, err
	}
	defer httphelpers.DrainAndClose(resp)

	return magnet.ParseTorrentFile(io.LimitReader(resp.Body, maxTorrentBytes))
}

func torrentFileName(raw string) string {
	name := raw
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[:i]
	}
	return name
}

func titleFromURL(raw string) string {
	u, ok := parseAbsolute(raw)
	if !ok {
		if i := strings.LastIndex(raw, "/"); i >= 0 {
			return raw[i+1:]
		}
		return raw
	}

	if u.Path != "" && !strings.HasSuffix(u.Path, "/") {
		if base := path.Base(u.Path); base != "/" && base != "." {
			return base
		}
	}
	return u.Hostname()
}

func siteNameFromURL(raw string) string {
	u, ok := parseAbsolute(raw)
	if !ok {
		return ""
	}
	return strings.ReplaceAll(u.Hostname(), "www.", "")
}

func parseAbsolute(raw string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, false
	}
	return u, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
