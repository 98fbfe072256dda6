// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package htmlhost implements websession.Host without a browser. It loads
// pages over HTTP, keeps filled values in memory and submits forms the way
// a browser would without running scripts.
package htmlhost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/autobrr/shareconnect/internal/websession"
	"github.com/autobrr/shareconnect/pkg/httphelpers"
	"github.com/autobrr/shareconnect/pkg/redact"
)

const maxPageBytes = 4 << 20

var (
	ErrNoPage         = errors.New("htmlhost: no page loaded")
	ErrForeignElement = errors.New("htmlhost: element does not belong to this host")
	ErrNoForm         = errors.New("htmlhost: element is not inside a form")
)

type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.URL, e.StatusCode)
}

type Host struct {
	client    *http.Client
	userAgent string

	mu      sync.Mutex
	doc     *goquery.Document
	pageURL *url.URL
	values  map[*html.Node]string
	hooks   []func(ctx context.Context, url string)
}

var _ websession.Host = (*Host)(nil)
var _ websession.PageLoadHook = (*Host)(nil)

type OptFunc func(*Host)

// WithHTTPClient uses c for every request. A cookie jar is added when c has none.
func WithHTTPClient(c *http.Client) OptFunc {
	return func(h *Host) {
		if c != nil {
			h.client = c
		}
	}
}

func WithUserAgent(userAgent string) OptFunc {
	return func(h *Host) {
		h.userAgent = userAgent
	}
}

func New(opts ...OptFunc) (*Host, error) {
	h := &Host{client: &http.Client{}}
	for _, opt := range opts {
		opt(h)
	}

	if h.client.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		client := *h.client
		client.Jar = jar
		h.client = &client
	}

	return h, nil
}

func (h *Host) OnPageLoaded(fn func(ctx context.Context, url string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, fn)
}

// URL returns the address of the current page.
func (h *Host) URL() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pageURL == nil {
		return ""
	}
	return h.pageURL.String()
}

func (h *Host) Navigate(ctx context.Context, rawURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("invalid url %s: %w", redact.URLString(rawURL), err)
	}
	return h.load(ctx, req)
}

func (h *Host) Find(_ context.Context, selectors []string) (websession.Element, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.doc == nil {
		return nil, false, ErrNoPage
	}

	for _, sel := range selectors {
		var found *html.Node
		h.doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if visible(s.Get(0)) {
				found = s.Get(0)
				return false
			}
			return true
		})
		if found != nil {
			return found, true, nil
		}
	}
	return nil, false, nil
}

func (h *Host) Fill(_ context.Context, el websession.Element, value string) error {
	n, err := h.node(el)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.values[n] = value
	return nil
}

// Click follows links and submits forms. Other elements need scripts and are
// ignored.
func (h *Host) Click(ctx context.Context, el websession.Element) error {
	n, err := h.node(el)
	if err != nil {
		return err
	}

	switch {
	case n.Data == "a":
		href := strings.TrimSpace(attr(n, "href"))
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return nil
		}
		target, err := h.resolve(href)
		if err != nil {
			return err
		}
		return h.Navigate(ctx, target)
	case isSubmitter(n):
		form := enclosingForm(n)
		if form == nil {
			return nil
		}
		return h.submit(ctx, form, n)
	}

	log.Trace().Str("element", n.Data).Msg("htmlhost: click has no effect without scripts")
	return nil
}

func (h *Host) Submit(ctx context.Context, el websession.Element) error {
	n, err := h.node(el)
	if err != nil {
		return err
	}
	form := enclosingForm(n)
	if form == nil {
		return ErrNoForm
	}
	return h.submit(ctx, form, nil)
}

func (h *Host) submit(ctx context.Context, form, submitter *html.Node) error {
	h.mu.Lock()
	req, err := h.buildFormRequest(ctx, form, submitter)
	h.mu.Unlock()
	if err != nil {
		return err
	}
	return h.load(ctx, req)
}

// load performs req, replaces the current page with the response and fires
// the page-loaded hooks.
func (h *Host) load(ctx context.Context, req *http.Request) error {
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return redact.URLError(err)
	}
	defer httphelpers.DrainAndClose(resp)

	if resp.StatusCode >= http.StatusBadRequest {
		return &StatusError{URL: redact.URLString(req.URL.String()), StatusCode: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return fmt.Errorf("failed to parse page: %w", err)
	}

	h.mu.Lock()
	h.doc = doc
	h.pageURL = resp.Request.URL
	h.values = make(map[*html.Node]string)
	hooks := append([]func(context.Context, string){}, h.hooks...)
	pageURL := h.pageURL.String()
	h.mu.Unlock()

	log.Trace().Str("page", redact.URLString(pageURL)).Int("status", resp.StatusCode).Msg("htmlhost: page loaded")

	for _, fn := range hooks {
		fn(ctx, pageURL)
	}
	return nil
}

func (h *Host) node(el websession.Element) (*html.Node, error) {
	n, ok := el.(*html.Node)
	if !ok || n == nil {
		return nil, ErrForeignElement
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.doc == nil {
		return nil, ErrNoPage
	}
	if !contains(h.doc.Get(0), n) {
		return nil, ErrForeignElement
	}
	return n, nil
}

func (h *Host) resolve(ref string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.resolveLocked(ref)
}

func (h *Host) resolveLocked(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid link %q: %w", ref, err)
	}
	if h.pageURL == nil {
		return u.String(), nil
	}
	return h.pageURL.ResolveReference(u).String(), nil
}

func contains(root, n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p == root {
			return true
		}
	}
	return false
}
