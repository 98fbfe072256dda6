// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/shareconnect/internal/models"
)

// ProfileLister is the read side of the profile store.
type ProfileLister interface {
	List() []models.Profile
}

// ProfileCollector exposes the configured profiles at scrape time, so a
// reload of profiles.yaml shows up without re-registering anything.
type ProfileCollector struct {
	profiles ProfileLister

	profilesTotalDesc *prometheus.Desc
	profileInfoDesc   *prometheus.Desc
}

func NewProfileCollector(profiles ProfileLister) *ProfileCollector {
	return &ProfileCollector{
		profiles: profiles,

		profilesTotalDesc: prometheus.NewDesc(
			"shareconnect_profiles_total",
			"Number of configured profiles by service kind",
			[]string{"service"},
			nil,
		),
		profileInfoDesc: prometheus.NewDesc(
			"shareconnect_profile_info",
			"Configured profile (value is 1, is_default marks the default profile)",
			[]string{"profile_id", "profile_name", "service", "torrent_client", "is_default"},
			nil,
		),
	}
}

func (c *ProfileCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.profilesTotalDesc
	ch <- c.profileInfoDesc
}

func (c *ProfileCollector) Collect(ch chan<- prometheus.Metric) {
	if c.profiles == nil {
		log.Debug().Msg("Profile store is nil, skipping profile metrics")
		return
	}

	profiles := c.profiles.List()

	counts := make(map[models.ServiceKind]int, len(models.ServiceKinds))
	for _, kind := range models.ServiceKinds {
		counts[kind] = 0
	}

	for _, p := range profiles {
		counts[p.ServiceKind]++

		isDefault := "false"
		if p.IsDefault {
			isDefault = "true"
		}

		ch <- prometheus.MustNewConstMetric(
			c.profileInfoDesc,
			prometheus.GaugeValue,
			1,
			p.ID.String(),
			p.Name,
			string(p.ServiceKind),
			string(p.TorrentClient),
			isDefault,
		)
	}

	for kind, n := range counts {
		ch <- prometheus.MustNewConstMetric(
			c.profilesTotalDesc,
			prometheus.GaugeValue,
			float64(n),
			string(kind),
		)
	}
}
