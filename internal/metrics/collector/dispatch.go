// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package collector

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/autobrr/shareconnect/internal/dispatch"
	"github.com/autobrr/shareconnect/internal/models"
)

// DispatchCollector counts dispatches per profile and outcome. It satisfies
// dispatch.Recorder.
type DispatchCollector struct {
	DispatchTotal    *prometheus.CounterVec
	DispatchDuration *prometheus.HistogramVec
	DispatchFailures *prometheus.CounterVec
}

func NewDispatchCollector(r *prometheus.Registry) *DispatchCollector {
	m := &DispatchCollector{
		DispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shareconnect",
			Subsystem: "dispatch",
			Name:      "total",
			Help:      "Total number of dispatched urls by profile and result",
		}, []string{"profile_id", "profile_name", "service", "result"}),
		DispatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "shareconnect",
			Subsystem: "dispatch",
			Name:      "duration_seconds",
			Help:      "Time spent delivering a url to a service",
			Buckets:   prometheus.DefBuckets,
		}, []string{"profile_id", "profile_name", "service"}),
		DispatchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shareconnect",
			Subsystem: "dispatch",
			Name:      "failures_total",
			Help:      "Total number of failed dispatches by error kind and HTTP status",
		}, []string{"profile_id", "profile_name", "service", "kind", "status"}),
	}

	r.MustRegister(m.DispatchTotal)
	r.MustRegister(m.DispatchDuration)
	r.MustRegister(m.DispatchFailures)
	return m
}

func (m *DispatchCollector) ObserveDispatch(p models.Profile, o dispatch.Outcome, elapsed time.Duration) {
	labels := prometheus.Labels{
		"profile_id":   p.ID.String(),
		"profile_name": p.Name,
		"service":      serviceLabel(p),
	}

	result := "success"
	if !o.Success {
		result = "failure"
	}

	m.DispatchTotal.MustCurryWith(labels).WithLabelValues(result).Inc()
	m.DispatchDuration.With(labels).Observe(elapsed.Seconds())

	if !o.Success {
		m.DispatchFailures.MustCurryWith(labels).WithLabelValues(string(o.ErrorKind), strconv.Itoa(o.HTTPStatus)).Inc()
	}
}

func serviceLabel(p models.Profile) string {
	if p.ServiceKind == models.ServiceTorrent && p.TorrentClient != "" {
		return string(p.TorrentClient)
	}
	return string(p.ServiceKind)
}
