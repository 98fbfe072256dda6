// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package websession

import (
	"time"

	"github.com/autobrr/shareconnect/internal/models"
	"github.com/autobrr/shareconnect/internal/pkg/timeouts"
)

// LoginScript locates a login form by ordered selector candidates. A nil
// Username list means the form only asks for a password.
type LoginScript struct {
	Username []string
	Password []string
	Submit   []string
	Settle   time.Duration
}

// InjectScript locates the add-URL field. Openers are clicked when the
// field is not on the page yet.
type InjectScript struct {
	URLField []string
	Submit   []string
	Openers  []string
}

var qbittorrentLogin = LoginScript{
	Username: []string{
		`input[name="username"]`,
		`input[id="username"]`,
		`#username`,
		`input[type="text"]`,
	},
	Password: []string{
		`input[name="password"]`,
		`input[id="password"]`,
		`#password`,
		`input[type="password"]`,
	},
	Submit: []string{
		`input[type="submit"]`,
		`button[type="submit"]`,
		`#login`,
		`.login-button`,
		`input[value*="Login"]`,
		`button[onclick*="login"]`,
	},
	Settle: timeouts.QBittorrentSettleDelay,
}

var utorrentLogin = LoginScript{
	Password: []string{
		`input[name="password"]`,
		`input[type="password"]`,
	},
	Submit: []string{
		`input[type="submit"]`,
		`button[type="submit"]`,
	},
	Settle: timeouts.UTorrentSettleDelay,
}

var qbittorrentInject = InjectScript{
	URLField: []string{
		`input[name="urls"]`,
		`textarea[name="urls"]`,
		`input[placeholder*="URL"]`,
		`input[placeholder*="url"]`,
		`input[placeholder*="magnet"]`,
		`textarea[placeholder*="URL"]`,
		`textarea[placeholder*="url"]`,
		`textarea[placeholder*="magnet"]`,
		`input[id*="url"]`,
		`textarea[id*="url"]`,
		`#urls`,
		`#url`,
		`.torrent-url`,
		`input[type="url"]`,
		`textarea[rows]`,
		`.form-control[placeholder*="URL"]`,
	},
	Submit: []string{
		`input[type="submit"]`,
		`button[type="submit"]`,
		`input[value*="Download"]`,
		`button[onclick*="add"]`,
		`button[onclick*="download"]`,
		`input[value*="Add"]`,
		`button:contains("Add")`,
		`button:contains("OK")`,
		`button:contains("Download")`,
		`.btn-primary`,
		`.btn-success`,
		`#downloadButton`,
		`.dialog-confirm`,
		`.modal-footer button`,
	},
	Openers: []string{
		`button[title*="Add"]`,
		`a[title*="Add"]`,
		`.toolbar button[title*="Add"]`,
		`.toolbar a[title*="Add"]`,
		`button[onclick*="add"]`,
		`a[onclick*="add"]`,
		`#addTorrent`,
		`#add`,
		`.add-torrent`,
		`.toolbar-add`,
		`.add-button`,
		`button:contains("Add")`,
		`a:contains("Add")`,
		`.menu-item[onclick*="add"]`,
		`.dropdown-item[onclick*="add"]`,
	},
}

var transmissionInject = InjectScript{
	URLField: []string{
		`#torrent_upload_url`,
		`input[name="url"]`,
		`input[type="url"]`,
		`#upload_container input[type="text"]`,
		`.dialog input[type="text"]`,
	},
	Openers: []string{
		`button[title*="Add"]`,
		`.toolbar-add`,
		`#toolbar-add`,
		`#toolbar-open`,
	},
}

// loginScriptFor returns the interactive login for p, if its web UI has one.
func loginScriptFor(p models.Profile) (LoginScript, bool) {
	if p.ServiceKind != models.ServiceTorrent {
		return LoginScript{}, false
	}
	switch p.TorrentClient {
	case models.ClientQBittorrent:
		return qbittorrentLogin, true
	case models.ClientUTorrent:
		return utorrentLogin, true
	}
	return LoginScript{}, false
}

func injectScriptFor(p models.Profile) (InjectScript, bool) {
	if p.ServiceKind != models.ServiceTorrent {
		return InjectScript{}, false
	}
	switch p.TorrentClient {
	case models.ClientQBittorrent:
		return qbittorrentInject, true
	case models.ClientTransmission:
		return transmissionInject, true
	}
	return InjectScript{}, false
}
