// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package classify decides what kind of payload a shared URL carries and which
// configured profiles can accept it.
package classify

import (
	"net/url"
	"strings"
)

// URLType is the payload classification of a shared URL.
type URLType int

const (
	Unknown URLType = iota
	Streaming
	Torrent
	DirectDownload
)

func (t URLType) String() string {
	switch t {
	case Streaming:
		return "streaming"
	case Torrent:
		return "torrent"
	case DirectDownload:
		return "direct_download"
	}
	return "unknown"
}

// Description is the lower-case phrase used in user-facing messages.
func (t URLType) Description() string {
	switch t {
	case Streaming:
		return "streaming video"
	case Torrent:
		return "torrent"
	case DirectDownload:
		return "direct download"
	}
	return "unknown"
}

func (t URLType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

var streamingHosts = []string{
	"youtube.com", "www.youtube.com", "m.youtube.com", "youtu.be",
	"vimeo.com", "www.vimeo.com",
	"twitch.tv", "www.twitch.tv",
	"reddit.com", "www.reddit.com",
	"twitter.com", "www.twitter.com", "x.com", "www.x.com",
	"instagram.com", "www.instagram.com",
	"facebook.com", "www.facebook.com",
	"soundcloud.com", "www.soundcloud.com",
	"dailymotion.com", "www.dailymotion.com",
	"bandcamp.com", "www.bandcamp.com",
}

var streamingHostSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(streamingHosts))
	for _, h := range streamingHosts {
		m[h] = struct{}{}
	}
	return m
}()

// StreamingHosts returns the allow-list of hosts classified as Streaming.
func StreamingHosts() []string {
	out := make([]string, len(streamingHosts))
	copy(out, streamingHosts)
	return out
}

// IsStreamingHost reports whether host is on the streaming allow-list.
func IsStreamingHost(host string) bool {
	_, ok := streamingHostSet[strings.ToLower(host)]
	return ok
}

// Classify returns the URLType of raw. The first matching rule wins:
// magnet prefix, .torrent suffix, streaming host, any http(s) URL.
func Classify(raw string) URLType {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Unknown
	}

	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "magnet:") {
		return Torrent
	}
	if strings.HasSuffix(lower, ".torrent") {
		return Torrent
	}

	u, err := url.Parse(raw)
	if err != nil {
		return classifyUnparsed(lower)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return Unknown
	}
	if IsStreamingHost(u.Hostname()) {
		return Streaming
	}
	return DirectDownload
}

// classifyUnparsed handles input net/url rejects, matching hosts as substrings.
func classifyUnparsed(lower string) URLType {
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return Unknown
	}
	for _, host := range streamingHosts {
		if strings.Contains(lower, host) {
			return Streaming
		}
	}
	return DirectDownload
}
