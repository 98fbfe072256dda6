// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package magnet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/anacrolix/torrent/bencode"
	"github.com/anacrolix/torrent/metainfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTorrentBytes(t *testing.T, info metainfo.Info, announce ...string) []byte {
	t.Helper()

	infoBytes, err := bencode.Marshal(info)
	require.NoError(t, err)

	mi := metainfo.MetaInfo{InfoBytes: infoBytes}
	if len(announce) > 0 {
		mi.Announce = announce[0]
		mi.AnnounceList = metainfo.AnnounceList{announce}
	}

	var buf bytes.Buffer
	require.NoError(t, mi.Write(&buf))
	return buf.Bytes()
}

func TestParseTorrentFile(t *testing.T) {
	t.Parallel()

	data := buildTorrentBytes(t, metainfo.Info{
		Name:        "Example.Show.S01.1080p.WEB-DL.x264-GROUP",
		PieceLength: 262144,
		Files: []metainfo.FileInfo{
			{Path: []string{"Example.Show.S01E01.mkv"}, Length: 1 << 30},
			{Path: []string{"Example.Show.S01E02.mkv"}, Length: 1 << 30},
		},
	}, "https://tracker.example/announce", "udp://backup.example:1337", "https://tracker.example/announce")

	d, err := ParseTorrentFile(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, "Example.Show.S01.1080p.WEB-DL.x264-GROUP", d.DisplayName)
	assert.Len(t, d.InfoHash, 40)
	assert.Equal(t, d.InfoHash, d.CanonicalInfoHash)
	require.NotNil(t, d.ExactLength)
	assert.EqualValues(t, 2<<30, *d.ExactLength)
	assert.Equal(t, []string{"https://tracker.example/announce", "udp://backup.example:1337"}, d.Trackers)
	assert.True(t, strings.HasPrefix(d.Description, "BitTorrent file • Size: 2.0 GB • Hash: "))
	assert.Contains(t, d.Description, "2 tracker(s)")
}

func TestParseTorrentFileSingleFile(t *testing.T) {
	t.Parallel()

	data := buildTorrentBytes(t, metainfo.Info{
		Name:        "Programming.Guide.2023.PDF",
		PieceLength: 16384,
		Length:      104857600,
	})

	d, err := ParseTorrentFile(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, BookDocument, d.Category)
	assert.Empty(t, d.Trackers)
	assert.Contains(t, d.Description, "100.0 MB")
}

func TestParseTorrentFileRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := ParseTorrentFile(strings.NewReader("<html>not a torrent</html>"))
	assert.Error(t, err)
}
