// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/shareconnect/internal/metrics/collector"
)

type Manager struct {
	registry          *prometheus.Registry
	profileCollector  *ProfileCollector
	DispatchCollector *collector.DispatchCollector
}

func NewManager(profiles ProfileLister) *Manager {
	registry := prometheus.NewRegistry()

	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	profileCollector := NewProfileCollector(profiles)
	registry.MustRegister(profileCollector)

	dispatchCollector := collector.NewDispatchCollector(registry)

	log.Info().Msg("Metrics manager initialized with profile and dispatch collectors")

	return &Manager{
		registry:          registry,
		profileCollector:  profileCollector,
		DispatchCollector: dispatchCollector,
	}
}

func (m *Manager) GetRegistry() *prometheus.Registry {
	return m.registry
}
