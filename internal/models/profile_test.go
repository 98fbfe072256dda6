// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profile Profile
		wantErr error
		wantURL string
	}{
		{
			name:    "metube without scheme gets http",
			profile: Profile{Name: "MeTube", BaseURL: "nas.local", Port: 8081, ServiceKind: ServiceMeTube},
			wantURL: "http://nas.local",
		},
		{
			name:    "trailing slash trimmed",
			profile: Profile{Name: "qbt", BaseURL: "https://seedbox.example.com/", Port: 443, ServiceKind: ServiceTorrent, TorrentClient: ClientQBittorrent},
			wantURL: "https://seedbox.example.com",
		},
		{
			name:    "torrent without client",
			profile: Profile{Name: "t", BaseURL: "http://nas", Port: 9091, ServiceKind: ServiceTorrent},
			wantErr: ErrTorrentClientRequired,
		},
		{
			name:    "client on non torrent profile",
			profile: Profile{Name: "yt", BaseURL: "http://nas", Port: 8080, ServiceKind: ServiceYtDl, TorrentClient: ClientTransmission},
			wantErr: ErrTorrentClientNotAllowed,
		},
		{
			name:    "unknown client",
			profile: Profile{Name: "t", BaseURL: "http://nas", Port: 9091, ServiceKind: ServiceTorrent, TorrentClient: "deluge"},
			wantErr: ErrUnsupportedTorrentClient,
		},
		{
			name:    "unknown kind",
			profile: Profile{Name: "x", BaseURL: "http://nas", Port: 1, ServiceKind: "aria2"},
			wantErr: ErrUnsupportedServiceKind,
		},
		{
			name:    "username without password",
			profile: Profile{Name: "jd", BaseURL: "http://nas", Port: 9666, ServiceKind: ServiceJDownloader, Username: "admin"},
			wantErr: ErrIncompleteCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := tt.profile
			err := p.Validate()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, p.BaseURL)
		})
	}
}

func TestProfileValidateRejectsBadURLs(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "ftp://nas", "http://nas:8080", "http://"} {
		p := Profile{Name: "p", BaseURL: raw, Port: 80, ServiceKind: ServiceMeTube}
		assert.Error(t, p.Validate(), raw)
	}
}

func TestProfileEndpoint(t *testing.T) {
	t.Parallel()

	p := Profile{BaseURL: "http://192.168.1.10/", Port: 8081}
	assert.Equal(t, "http://192.168.1.10:8081", p.Origin())
	assert.Equal(t, "http://192.168.1.10:8081/add", p.Endpoint("/add"))
	assert.Equal(t, "http://192.168.1.10:8081/gui/token.html", p.Endpoint("gui/token.html"))
}

func TestProfileServiceName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "MeTube", Profile{ServiceKind: ServiceMeTube}.ServiceName())
	assert.Equal(t, "YT-DLP", Profile{ServiceKind: ServiceYtDl}.ServiceName())
	assert.Equal(t, "jDownloader", Profile{ServiceKind: ServiceJDownloader}.ServiceName())
	assert.Equal(t, "Torrent (qBittorrent)", Profile{ServiceKind: ServiceTorrent, TorrentClient: ClientQBittorrent}.ServiceName())
	assert.Equal(t, "Torrent (uTorrent)", Profile{ServiceKind: ServiceTorrent, TorrentClient: ClientUTorrent}.ServiceName())
}

func TestProfileHasCredentials(t *testing.T) {
	t.Parallel()

	assert.True(t, Profile{Username: "admin", Password: "adminadmin"}.HasCredentials())
	assert.False(t, Profile{Username: "admin"}.HasCredentials())
	assert.False(t, Profile{Password: "secret"}.HasCredentials())
}

func TestProfileMarshalJSONRedactsPassword(t *testing.T) {
	t.Parallel()

	p := Profile{Name: "qbt", BaseURL: "http://nas", Port: 8080, ServiceKind: ServiceTorrent, TorrentClient: ClientQBittorrent, Username: "admin", Password: "adminadmin"}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "**********", out["password"])
	assert.Equal(t, "Torrent (qBittorrent)", out["serviceName"])
	assert.NotContains(t, string(data), "adminadmin")
}
