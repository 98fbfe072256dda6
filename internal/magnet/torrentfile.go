// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package magnet

import (
	"fmt"
	"io"
	"strings"

	"github.com/anacrolix/torrent/metainfo"
)

// ParseTorrentFile decodes a .torrent file into a Descriptor. The description
// follows the magnet format with "BitTorrent file" as its label.
func ParseTorrentFile(r io.Reader) (Descriptor, error) {
	mi, err := metainfo.Load(r)
	if err != nil {
		return Descriptor{}, fmt.Errorf("failed to decode torrent: %w", err)
	}

	info, err := mi.UnmarshalInfo()
	if err != nil {
		return Descriptor{}, fmt.Errorf("failed to decode torrent info: %w", err)
	}

	hash := mi.HashInfoBytes().HexString()
	length := info.TotalLength()

	trackers := []string{}
	seen := map[string]struct{}{}
	for _, tier := range mi.UpvertedAnnounceList() {
		for _, tr := range tier {
			if _, ok := seen[tr]; ok || tr == "" {
				continue
			}
			seen[tr] = struct{}{}
			trackers = append(trackers, tr)
		}
	}

	name := strings.TrimSpace(info.BestName())
	if name == "" {
		name = DefaultDisplayName
	}

	d := Descriptor{
		InfoHash:          hash,
		CanonicalInfoHash: hash,
		DisplayName:       name,
		ExactLength:       &length,
		Trackers:          trackers,
		Category:          InferCategory(name),
		Release:           ParseRelease(name),
	}
	d.Description = strings.Replace(describe(d), "BitTorrent magnet link", "BitTorrent file", 1)

	return d, nil
}
