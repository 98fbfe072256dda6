// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/autobrr/shareconnect/internal/classify"
	"github.com/autobrr/shareconnect/internal/config"
	"github.com/autobrr/shareconnect/internal/dispatch"
	"github.com/autobrr/shareconnect/internal/models"
)

type app struct {
	cfg      *config.AppConfig
	profiles *models.ProfileStore
}

type appLoader func() (*app, error)

func loadApp(configDir string) (*app, error) {
	cfg, err := config.New(configDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}

	store, err := models.LoadProfileStore(cfg.ProfilesPath())
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load profiles from %s", cfg.ProfilesPath())
	}

	return &app{cfg: cfg, profiles: store}, nil
}

func (a *app) router(recorder dispatch.Recorder) *dispatch.Router {
	return dispatch.NewRouter(dispatch.Options{
		Timeout:  a.cfg.DispatchTimeout(),
		Recorder: recorder,
	})
}

// resolveProfile returns the profile named by ref, or the one rawURL would be
// routed to when ref is empty.
func (a *app) resolveProfile(ref, rawURL string) (models.Profile, error) {
	if strings.TrimSpace(ref) != "" {
		p, err := a.profiles.Lookup(ref)
		if err != nil {
			return models.Profile{}, errors.Wrapf(err, "profile %q", ref)
		}
		return p, nil
	}

	p, ok := classify.SelectProfile(a.profiles.List(), rawURL)
	if !ok {
		return models.Profile{}, classify.ErrNoCompatibleProfile
	}
	return p, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
