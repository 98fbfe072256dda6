// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package magnet turns magnet URIs and .torrent files into display metadata.
package magnet

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/anacrolix/torrent/metainfo"
)

// DefaultDisplayName is used when a magnet carries no usable name or hash.
const DefaultDisplayName = "Magnet Link"

const descriptionSeparator = " • "

// Descriptor is the metadata extracted from a magnet URI or torrent file.
type Descriptor struct {
	InfoHash          string     `json:"infoHash,omitempty"`
	CanonicalInfoHash string     `json:"canonicalInfoHash,omitempty"`
	DisplayName       string     `json:"displayName"`
	ExactLength       *int64     `json:"exactLength,omitempty"`
	Trackers          []string   `json:"trackers"`
	Category          Category   `json:"category"`
	Description       string     `json:"description"`
	Params            url.Values `json:"params,omitempty"`
	Release           *Release   `json:"release,omitempty"`
}

// Parse decodes a magnet URI. It never fails: malformed input produces a
// descriptor named DefaultDisplayName in the Generic category.
func Parse(uri string) Descriptor {
	params, trackers := splitParams(uri)

	d := Descriptor{
		DisplayName: DefaultDisplayName,
		Trackers:    trackers,
		Category:    Generic,
		Params:      params,
	}

	if xl := params.Get("xl"); xl != "" {
		if n, err := strconv.ParseInt(xl, 10, 64); err == nil && n >= 0 {
			d.ExactLength = &n
		}
	}

	d.InfoHash = infoHashFromTopics(params["xt"])

	if d.InfoHash != "" {
		if dn := params.Get("dn"); dn != "" {
			d.DisplayName = decodeComponent(dn)
			d.Category = InferCategory(d.DisplayName)
			d.Release = ParseRelease(d.DisplayName)
		}
		d.CanonicalInfoHash = canonicalInfoHash(uri)
	}

	d.Description = describe(d)
	return d
}

// splitParams breaks the query part of a magnet into a multi-map while keeping
// trackers in the order they appear.
func splitParams(uri string) (url.Values, []string) {
	params := url.Values{}
	trackers := []string{}

	rest := uri
	if len(rest) >= len("magnet:") && strings.EqualFold(rest[:len("magnet:")], "magnet:") {
		rest = rest[len("magnet:"):]
	}
	rest = strings.TrimPrefix(rest, "?")

	for _, pair := range strings.Split(rest, "&") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			continue
		}
		params.Add(key, value)

		lower := strings.ToLower(value)
		if strings.HasPrefix(lower, "http") || strings.HasPrefix(lower, "udp") {
			trackers = append(trackers, decodeComponent(value))
		}
	}

	return params, trackers
}

func infoHashFromTopics(topics []string) string {
	const btih = "urn:btih:"
	for _, xt := range topics {
		if len(xt) > len(btih) && strings.EqualFold(xt[:len(btih)], btih) {
			return xt[len(btih):]
		}
	}
	if len(topics) > 0 && topics[0] != "" {
		return topics[0]
	}
	return ""
}

// decodeComponent applies form decoding ("+" and %XX). Invalid escapes keep
// the raw text with only "+" replaced.
func decodeComponent(s string) string {
	if decoded, err := url.QueryUnescape(s); err == nil {
		return decoded
	}
	return strings.ReplaceAll(s, "+", " ")
}

// canonicalInfoHash returns the lower-case hex v1 hash when the magnet is
// well-formed enough for metainfo, and "" otherwise.
func canonicalInfoHash(uri string) string {
	m, err := metainfo.ParseMagnetUri(uri)
	if err != nil {
		return ""
	}
	return m.InfoHash.HexString()
}

func describe(d Descriptor) string {
	parts := []string{"BitTorrent magnet link"}

	if d.ExactLength != nil {
		parts = append(parts, "Size: "+FormatBytes(*d.ExactLength))
	}
	if d.InfoHash != "" {
		short := d.InfoHash
		if len(short) > 8 {
			short = short[:8]
		}
		parts = append(parts, "Hash: "+short+"...")
	}
	if len(d.Trackers) > 0 {
		parts = append(parts, fmt.Sprintf("%d tracker(s)", len(d.Trackers)))
	}

	return strings.Join(parts, descriptionSeparator)
}
