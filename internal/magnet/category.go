// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package magnet

import (
	"regexp"
	"strings"
)

// Category is a coarse content type guessed from a torrent name.
type Category string

const (
	Movie        Category = "movie"
	TvShow       Category = "tv_show"
	Music        Category = "music"
	SoftwareGame Category = "software_game"
	BookDocument Category = "book_document"
	Generic      Category = "generic"
)

// Label is the display text for the category.
func (c Category) Label() string {
	switch c {
	case Movie:
		return "Movie"
	case TvShow:
		return "TV Show"
	case Music:
		return "Music"
	case SoftwareGame:
		return "Software/Game"
	case BookDocument:
		return "Book/Document"
	}
	return "BitTorrent"
}

type categoryRule struct {
	category   Category
	extensions []string
	keywords   []string
	tokens     []string
	pattern    *regexp.Regexp
}

// Rules are evaluated in order; the first hit wins.
var categoryRules = []categoryRule{
	{
		category:   Movie,
		extensions: []string{"mp4", "mkv", "avi", "mov", "wmv", "flv", "webm", "m4v", "mpg", "mpeg"},
		keywords:   []string{"movie", "film"},
	},
	{
		category: TvShow,
		keywords: []string{"season", "episode"},
		pattern:  regexp.MustCompile(`(?i)s\d+e\d+`),
	},
	{
		category:   Music,
		extensions: []string{"mp3", "flac", "wav", "aac", "ogg", "m4a", "wma", "alac", "opus"},
		keywords:   []string{"album", "music"},
	},
	{
		category:   SoftwareGame,
		extensions: []string{"exe", "msi", "dmg", "pkg", "apk", "deb", "rpm", "iso", "appimage"},
		keywords:   []string{"game", "setup", "installer"},
		tokens:     []string{"pc"},
	},
	{
		category:   BookDocument,
		extensions: []string{"pdf", "epub", "mobi", "azw3", "djvu", "cbz", "cbr", "doc", "docx"},
		keywords:   []string{"book"},
		tokens:     []string{"pdf"},
	},
}

// InferCategory guesses the content category of a torrent display name.
func InferCategory(name string) Category {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return Generic
	}

	tokens := tokenize(lower)

	for _, rule := range categoryRules {
		if rule.matches(lower, tokens) {
			return rule.category
		}
	}
	return Generic
}

func (r categoryRule) matches(lower string, tokens map[string]struct{}) bool {
	for _, ext := range r.extensions {
		if strings.HasSuffix(lower, "."+ext) {
			return true
		}
	}
	for _, kw := range r.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, tok := range r.tokens {
		if _, ok := tokens[tok]; ok {
			return true
		}
	}
	if r.pattern != nil && r.pattern.MatchString(lower) {
		return true
	}
	return false
}

func tokenize(s string) map[string]struct{} {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		out[f] = struct{}{}
	}
	return out
}
