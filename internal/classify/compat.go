// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package classify

import (
	"errors"

	"github.com/autobrr/shareconnect/internal/models"
)

// ErrNoCompatibleProfile is returned when no configured profile accepts a URL.
var ErrNoCompatibleProfile = errors.New("no compatible profile for url")

var compatibility = map[models.ServiceKind][]URLType{
	models.ServiceMeTube:      {Streaming},
	models.ServiceYtDl:        {Streaming, DirectDownload},
	models.ServiceTorrent:     {Torrent},
	models.ServiceJDownloader: {Streaming, DirectDownload},
}

// IsCompatible reports whether a service of the given kind accepts t.
// Unknown URLs are accepted by every kind.
func IsCompatible(kind models.ServiceKind, t URLType) bool {
	if t == Unknown {
		return true
	}
	for _, accepted := range compatibility[kind] {
		if accepted == t {
			return true
		}
	}
	return false
}

// FilterCompatible returns the profiles able to accept raw, keeping list order.
func FilterCompatible(profiles []models.Profile, raw string) []models.Profile {
	t := Classify(raw)
	out := make([]models.Profile, 0, len(profiles))
	for _, p := range profiles {
		if IsCompatible(p.ServiceKind, t) {
			out = append(out, p)
		}
	}
	return out
}

// SelectProfile picks the profile raw should go to: the default profile when
// it is compatible, otherwise the first compatible one.
func SelectProfile(profiles []models.Profile, raw string) (models.Profile, bool) {
	compatible := FilterCompatible(profiles, raw)
	if len(compatible) == 0 {
		return models.Profile{}, false
	}
	for _, p := range compatible {
		if p.IsDefault {
			return p, true
		}
	}
	return compatible[0], true
}

// SupportDescription describes what a service kind accepts.
func SupportDescription(kind models.ServiceKind) string {
	switch kind {
	case models.ServiceMeTube:
		return "Streaming videos (YouTube, Vimeo, etc.)"
	case models.ServiceYtDl:
		return "Streaming videos and direct downloads"
	case models.ServiceTorrent:
		return "Torrent files and magnet links"
	case models.ServiceJDownloader:
		return "Direct downloads and streaming videos"
	}
	return "Unknown content types"
}
