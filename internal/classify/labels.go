// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package classify

import (
	"net/url"
	"strings"
)

var providers = []struct {
	domain string
	name   string
}{
	{"youtube.com", "YouTube"},
	{"youtu.be", "YouTube"},
	{"vimeo.com", "Vimeo"},
	{"twitch.tv", "Twitch"},
	{"reddit.com", "Reddit"},
	{"twitter.com", "Twitter"},
	{"x.com", "Twitter"},
	{"instagram.com", "Instagram"},
	{"facebook.com", "Facebook"},
	{"soundcloud.com", "SoundCloud"},
	{"dailymotion.com", "Dailymotion"},
	{"bandcamp.com", "Bandcamp"},
}

// ServiceProvider names the platform a URL belongs to, or "Unknown".
func ServiceProvider(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(raw), "magnet:") {
		return "Magnet Link"
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "Unknown"
	}
	host := strings.ToLower(u.Hostname())
	for _, p := range providers {
		if host == p.domain || strings.HasSuffix(host, "."+p.domain) {
			return p.name
		}
	}
	return "Unknown"
}

// MediaType is a coarse guess at what a shared link points to:
// playlist, channel, torrent or single_video.
func MediaType(raw string) string {
	switch {
	case strings.Contains(raw, "/playlist") || strings.Contains(raw, "&list="):
		return "playlist"
	case strings.Contains(raw, "/channel/") || strings.Contains(raw, "/user/"):
		return "channel"
	case strings.HasPrefix(strings.ToLower(raw), "magnet:"):
		return "torrent"
	}
	return "single_video"
}
