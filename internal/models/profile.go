// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/autobrr/shareconnect/internal/domain"
)

// ServiceKind identifies the family of backend a profile talks to.
type ServiceKind string

const (
	ServiceMeTube      ServiceKind = "metube"
	ServiceYtDl        ServiceKind = "ytdl"
	ServiceTorrent     ServiceKind = "torrent"
	ServiceJDownloader ServiceKind = "jdownloader"
)

// ServiceKinds lists every supported kind in display order.
var ServiceKinds = []ServiceKind{ServiceMeTube, ServiceYtDl, ServiceTorrent, ServiceJDownloader}

func (k ServiceKind) Valid() bool {
	switch k {
	case ServiceMeTube, ServiceYtDl, ServiceTorrent, ServiceJDownloader:
		return true
	}
	return false
}

// DisplayName returns the label shown to users.
func (k ServiceKind) DisplayName() string {
	switch k {
	case ServiceMeTube:
		return "MeTube"
	case ServiceYtDl:
		return "YT-DLP"
	case ServiceTorrent:
		return "Torrent"
	case ServiceJDownloader:
		return "jDownloader"
	}
	return "Unknown"
}

// TorrentClient identifies the torrent backend of a torrent profile.
type TorrentClient string

const (
	ClientQBittorrent  TorrentClient = "qbittorrent"
	ClientTransmission TorrentClient = "transmission"
	ClientUTorrent     TorrentClient = "utorrent"
)

func (c TorrentClient) Valid() bool {
	switch c {
	case ClientQBittorrent, ClientTransmission, ClientUTorrent:
		return true
	}
	return false
}

func (c TorrentClient) DisplayName() string {
	switch c {
	case ClientQBittorrent:
		return "qBittorrent"
	case ClientTransmission:
		return "Transmission"
	case ClientUTorrent:
		return "uTorrent"
	}
	return "Unknown"
}

var (
	ErrProfileNotFound          = errors.New("profile not found")
	ErrDuplicateProfileID       = errors.New("duplicate profile id")
	ErrMultipleDefaults         = errors.New("more than one default profile")
	ErrTorrentClientRequired    = errors.New("torrentClient is required for torrent profiles")
	ErrTorrentClientNotAllowed  = errors.New("torrentClient is only valid for torrent profiles")
	ErrIncompleteCredentials    = errors.New("username and password must be set together")
	ErrUnsupportedServiceKind   = errors.New("unsupported service type")
	ErrUnsupportedTorrentClient = errors.New("unsupported torrent client")
)

// Profile is a configured download service endpoint.
type Profile struct {
	ID            uuid.UUID     `yaml:"id"`
	Name          string        `yaml:"name"`
	BaseURL       string        `yaml:"url"`
	Port          int           `yaml:"port"`
	ServiceKind   ServiceKind   `yaml:"serviceType"`
	TorrentClient TorrentClient `yaml:"torrentClient,omitempty"`
	Username      string        `yaml:"username,omitempty"`
	Password      string        `yaml:"password,omitempty"`
	IsDefault     bool          `yaml:"isDefault,omitempty"`
}

func (p Profile) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		ID            uuid.UUID     `json:"id"`
		Name          string        `json:"name"`
		BaseURL       string        `json:"url"`
		Port          int           `json:"port"`
		ServiceKind   ServiceKind   `json:"serviceType"`
		ServiceName   string        `json:"serviceName"`
		TorrentClient TorrentClient `json:"torrentClient,omitempty"`
		Username      string        `json:"username,omitempty"`
		Password      string        `json:"password,omitempty"`
		IsDefault     bool          `json:"isDefault"`
	}{
		ID:            p.ID,
		Name:          p.Name,
		BaseURL:       p.BaseURL,
		Port:          p.Port,
		ServiceKind:   p.ServiceKind,
		ServiceName:   p.ServiceName(),
		TorrentClient: p.TorrentClient,
		Username:      p.Username,
		Password:      domain.RedactString(p.Password),
		IsDefault:     p.IsDefault,
	})
}

// HasCredentials reports whether both username and password are set.
func (p Profile) HasCredentials() bool {
	return p.Username != "" && p.Password != ""
}

// ServiceName is the human label of the backend, including the torrent client.
func (p Profile) ServiceName() string {
	if p.ServiceKind == ServiceTorrent {
		return fmt.Sprintf("Torrent (%s)", p.TorrentClient.DisplayName())
	}
	return p.ServiceKind.DisplayName()
}

// Origin returns "{baseUrl}:{port}" without a trailing slash.
func (p Profile) Origin() string {
	return strings.TrimRight(p.BaseURL, "/") + ":" + strconv.Itoa(p.Port)
}

// Endpoint joins path onto Origin.
func (p Profile) Endpoint(path string) string {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return p.Origin() + path
}

// Validate checks the per-profile invariants and normalizes BaseURL.
func (p *Profile) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return errors.New("name cannot be empty")
	}

	baseURL, err := validateAndNormalizeBaseURL(p.BaseURL)
	if err != nil {
		return err
	}
	p.BaseURL = baseURL

	if p.Port <= 0 || p.Port > 65535 {
		return fmt.Errorf("invalid port %d", p.Port)
	}

	if !p.ServiceKind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedServiceKind, p.ServiceKind)
	}

	switch {
	case p.ServiceKind == ServiceTorrent && p.TorrentClient == "":
		return ErrTorrentClientRequired
	case p.ServiceKind == ServiceTorrent && !p.TorrentClient.Valid():
		return fmt.Errorf("%w: %q", ErrUnsupportedTorrentClient, p.TorrentClient)
	case p.ServiceKind != ServiceTorrent && p.TorrentClient != "":
		return ErrTorrentClientNotAllowed
	}

	if (p.Username == "") != (p.Password == "") {
		return ErrIncompleteCredentials
	}

	return nil
}

func validateAndNormalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("url cannot be empty")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q: must be http or https", u.Scheme)
	}

	if u.Host == "" {
		return "", errors.New("URL must include a host")
	}

	if u.Port() != "" {
		return "", errors.New("URL must not include a port, use the port field")
	}

	return strings.TrimRight(u.String(), "/"), nil
}
