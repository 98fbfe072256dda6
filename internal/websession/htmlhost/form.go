// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package htmlhost

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

type field struct {
	name  string
	value string
}

func (h *Host) buildFormRequest(ctx context.Context, form, submitter *html.Node) (*http.Request, error) {
	action := strings.TrimSpace(attr(form, "action"))
	if submitter != nil && hasAttr(submitter, "formaction") {
		action = strings.TrimSpace(attr(submitter, "formaction"))
	}
	target, err := h.resolveLocked(action)
	if err != nil {
		return nil, err
	}

	method := strings.ToUpper(strings.TrimSpace(attr(form, "method")))
	if method != http.MethodPost {
		method = http.MethodGet
	}

	fields := h.collectFields(form, submitter)

	if method == http.MethodGet {
		u, err := url.Parse(target)
		if err != nil {
			return nil, err
		}
		u.RawQuery = encodeFields(fields)
		return http.NewRequestWithContext(ctx, method, u.String(), nil)
	}

	var (
		body        io.Reader
		contentType string
	)
	if strings.EqualFold(strings.TrimSpace(attr(form, "enctype")), "multipart/form-data") {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for _, f := range fields {
			if err := w.WriteField(f.name, f.value); err != nil {
				return nil, err
			}
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		body = &buf
		contentType = w.FormDataContentType()
	} else {
		body = strings.NewReader(encodeFields(fields))
		contentType = "application/x-www-form-urlencoded"
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return req, nil
}

// collectFields returns the successful controls of form in document order.
func (h *Host) collectFields(form, submitter *html.Node) []field {
	var fields []field

	goquery.NewDocumentFromNode(form).Find("input, textarea, select, button").Each(func(_ int, s *goquery.Selection) {
		n := s.Get(0)
		name := attr(n, "name")
		if name == "" || hasAttr(n, "disabled") {
			return
		}

		if n.Data == "button" || isSubmitter(n) {
			if n == submitter {
				fields = append(fields, field{name: name, value: attr(n, "value")})
			}
			return
		}

		if v, ok := h.values[n]; ok {
			fields = append(fields, field{name: name, value: v})
			return
		}

		switch n.Data {
		case "textarea":
			fields = append(fields, field{name: name, value: s.Text()})
		case "select":
			opt := s.Find("option[selected]").First()
			if opt.Length() == 0 {
				opt = s.Find("option").First()
			}
			if opt.Length() > 0 {
				v, ok := opt.Attr("value")
				if !ok {
					v = strings.TrimSpace(opt.Text())
				}
				fields = append(fields, field{name: name, value: v})
			}
		default:
			switch strings.ToLower(attr(n, "type")) {
			case "checkbox", "radio":
				if hasAttr(n, "checked") {
					v := attr(n, "value")
					if v == "" {
						v = "on"
					}
					fields = append(fields, field{name: name, value: v})
				}
			case "file", "reset", "button":
			default:
				fields = append(fields, field{name: name, value: attr(n, "value")})
			}
		}
	})

	return fields
}

func encodeFields(fields []field) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(f.name))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f.value))
	}
	return b.String()
}

func isSubmitter(n *html.Node) bool {
	switch n.Data {
	case "button":
		t := strings.ToLower(attr(n, "type"))
		return t == "" || t == "submit"
	case "input":
		t := strings.ToLower(attr(n, "type"))
		return t == "submit" || t == "image"
	}
	return false
}

func enclosingForm(n *html.Node) *html.Node {
	if id := attr(n, "form"); id != "" {
		root := n
		for root.Parent != nil {
			root = root.Parent
		}
		if sel := goquery.NewDocumentFromNode(root).Find("form#" + id); sel.Length() > 0 {
			return sel.Get(0)
		}
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == "form" {
			return p
		}
	}
	return nil
}

// visible rejects elements a user could not interact with: hidden inputs,
// disabled controls and anything under a hidden ancestor.
func visible(n *html.Node) bool {
	if n == nil {
		return false
	}
	if n.Data == "input" && strings.EqualFold(attr(n, "type"), "hidden") {
		return false
	}
	if hasAttr(n, "disabled") {
		return false
	}
	for p := n; p != nil && p.Type == html.ElementNode; p = p.Parent {
		if hasAttr(p, "hidden") {
			return false
		}
		style := strings.ToLower(strings.ReplaceAll(attr(p, "style"), " ", ""))
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}
