// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package magnet

import (
	"strings"

	"github.com/moistari/rls"
)

// Release holds scene-style hints parsed from a torrent name. It is
// informational and never overrides Category.
type Release struct {
	ContentType string   `json:"contentType"`
	Title       string   `json:"title,omitempty"`
	Year        int      `json:"year,omitempty"`
	Season      int      `json:"season,omitempty"`
	Episode     int      `json:"episode,omitempty"`
	Resolution  string   `json:"resolution,omitempty"`
	Source      string   `json:"source,omitempty"`
	Codec       []string `json:"codec,omitempty"`
	Group       string   `json:"group,omitempty"`
}

// ParseRelease parses name with rls. It returns nil for names that yield no
// useful hints at all.
func ParseRelease(name string) *Release {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	r := rls.ParseString(name)
	if r.Type == rls.Music && looksLikeVideo(&r) {
		if r.Series > 0 || r.Episode > 0 {
			r.Type = rls.Episode
		} else {
			r.Type = rls.Movie
		}
	}

	out := &Release{
		ContentType: contentType(&r),
		Title:       r.Title,
		Year:        r.Year,
		Season:      r.Series,
		Episode:     r.Episode,
		Resolution:  r.Resolution,
		Source:      r.Source,
		Codec:       r.Codec,
		Group:       r.Group,
	}

	if out.ContentType == "unknown" && out.Year == 0 && out.Resolution == "" && out.Source == "" && out.Group == "" {
		return nil
	}
	return out
}

func contentType(r *rls.Release) string {
	switch r.Type {
	case rls.Movie:
		return "movie"
	case rls.Episode, rls.Series:
		return "tv"
	case rls.Music:
		return "music"
	case rls.Audiobook:
		return "audiobook"
	case rls.Book, rls.Education, rls.Magazine:
		return "book"
	case rls.Comic:
		return "comic"
	case rls.Game:
		return "game"
	case rls.App:
		return "app"
	}

	switch {
	case r.Series > 0 || r.Episode > 0:
		return "tv"
	case r.Year > 0 && r.Resolution != "":
		return "movie"
	}
	return "unknown"
}

// looksLikeVideo catches video releases rls files under music because of
// dash-separated names.
func looksLikeVideo(r *rls.Release) bool {
	if r.Resolution != "" || len(r.HDR) > 0 {
		return true
	}
	for _, codec := range r.Codec {
		switch strings.ToLower(codec) {
		case "x264", "x265", "h264", "h265", "h.264", "h.265", "hevc", "av1", "xvid", "divx":
			return true
		}
	}
	source := strings.ToLower(r.Source)
	for _, hint := range []string{"bluray", "blu-ray", "web-dl", "webdl", "webrip", "hdtv", "remux", "bdrip", "dvdrip"} {
		if strings.Contains(source, hint) {
			return true
		}
	}
	return false
}
