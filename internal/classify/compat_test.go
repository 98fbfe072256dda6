// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package classify

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/shareconnect/internal/models"
)

func testProfiles() (metube, ytdl, qbt, jd models.Profile) {
	metube = models.Profile{ID: uuid.New(), Name: "MeTube", ServiceKind: models.ServiceMeTube}
	ytdl = models.Profile{ID: uuid.New(), Name: "YT-DLP", ServiceKind: models.ServiceYtDl}
	qbt = models.Profile{ID: uuid.New(), Name: "qBittorrent", ServiceKind: models.ServiceTorrent, TorrentClient: models.ClientQBittorrent}
	jd = models.Profile{ID: uuid.New(), Name: "jDownloader", ServiceKind: models.ServiceJDownloader}
	return
}

func TestIsCompatible(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind models.ServiceKind
		typ  URLType
		want bool
	}{
		{models.ServiceMeTube, Streaming, true},
		{models.ServiceMeTube, Torrent, false},
		{models.ServiceMeTube, DirectDownload, false},
		{models.ServiceYtDl, Streaming, true},
		{models.ServiceYtDl, Torrent, false},
		{models.ServiceYtDl, DirectDownload, true},
		{models.ServiceTorrent, Streaming, false},
		{models.ServiceTorrent, Torrent, true},
		{models.ServiceTorrent, DirectDownload, false},
		{models.ServiceJDownloader, Streaming, true},
		{models.ServiceJDownloader, Torrent, false},
		{models.ServiceJDownloader, DirectDownload, true},
		{models.ServiceMeTube, Unknown, true},
		{models.ServiceTorrent, Unknown, true},
		{models.ServiceKind("aria2"), Streaming, false},
		{models.ServiceKind("aria2"), Unknown, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.typ.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsCompatible(tt.kind, tt.typ))
		})
	}
}

func TestFilterCompatible(t *testing.T) {
	t.Parallel()

	metube, ytdl, qbt, jd := testProfiles()
	all := []models.Profile{metube, ytdl, qbt, jd}

	t.Run("magnet goes to torrent only", func(t *testing.T) {
		t.Parallel()
		got := FilterCompatible(all, "magnet:?xt=urn:btih:test")
		require.Len(t, got, 1)
		assert.Equal(t, qbt.ID, got[0].ID)
	})

	t.Run("youtube keeps list order", func(t *testing.T) {
		t.Parallel()
		got := FilterCompatible(all, "https://www.youtube.com/watch?v=test")
		require.Len(t, got, 3)
		assert.Equal(t, []uuid.UUID{metube.ID, ytdl.ID, jd.ID}, []uuid.UUID{got[0].ID, got[1].ID, got[2].ID})
	})

	t.Run("direct download", func(t *testing.T) {
		t.Parallel()
		got := FilterCompatible(all, "https://example.com/file.zip")
		require.Len(t, got, 2)
		assert.Equal(t, ytdl.ID, got[0].ID)
		assert.Equal(t, jd.ID, got[1].ID)
	})

	t.Run("unknown fails open", func(t *testing.T) {
		t.Parallel()
		got := FilterCompatible(all, "ftp://example.com/file.txt")
		assert.Len(t, got, 4)
	})

	t.Run("no profiles", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, FilterCompatible(nil, "https://vimeo.com/1"))
	})
}

func TestSelectProfile(t *testing.T) {
	t.Parallel()

	metube, ytdl, qbt, jd := testProfiles()

	t.Run("default wins when compatible", func(t *testing.T) {
		t.Parallel()
		j := jd
		j.IsDefault = true
		got, ok := SelectProfile([]models.Profile{metube, ytdl, qbt, j}, "https://vimeo.com/1")
		require.True(t, ok)
		assert.Equal(t, jd.ID, got.ID)
	})

	t.Run("incompatible default falls back to first compatible", func(t *testing.T) {
		t.Parallel()
		m := metube
		m.IsDefault = true
		got, ok := SelectProfile([]models.Profile{m, ytdl, qbt, jd}, "magnet:?xt=urn:btih:abc")
		require.True(t, ok)
		assert.Equal(t, qbt.ID, got.ID)
	})

	t.Run("nothing compatible", func(t *testing.T) {
		t.Parallel()
		_, ok := SelectProfile([]models.Profile{metube}, "magnet:?xt=urn:btih:abc")
		assert.False(t, ok)
	})
}

func TestSupportDescription(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Streaming videos (YouTube, Vimeo, etc.)", SupportDescription(models.ServiceMeTube))
	assert.Equal(t, "Torrent files and magnet links", SupportDescription(models.ServiceTorrent))
	assert.Equal(t, "Streaming videos and direct downloads", SupportDescription(models.ServiceYtDl))
	assert.Equal(t, "Direct downloads and streaming videos", SupportDescription(models.ServiceJDownloader))
	assert.Equal(t, "Unknown content types", SupportDescription("other"))
}
