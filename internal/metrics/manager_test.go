// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package metrics

import (
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobrr/shareconnect/internal/dispatch"
	"github.com/autobrr/shareconnect/internal/models"
)

type staticProfiles []models.Profile

func (s staticProfiles) List() []models.Profile { return s }

func TestNewManager(t *testing.T) {
	manager := NewManager(nil)

	assert.NotNil(t, manager)
	assert.NotNil(t, manager.registry)
	assert.NotNil(t, manager.profileCollector)
	assert.NotNil(t, manager.DispatchCollector)
}

func TestManager_GetRegistry(t *testing.T) {
	manager := NewManager(nil)

	registry := manager.GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)

	// verify standard collectors are registered
	metricFamilies, err := registry.Gather()
	require.NoError(t, err)

	foundGoMetrics := false
	foundProcessMetrics := false

	for _, mf := range metricFamilies {
		name := mf.GetName()
		if strings.HasPrefix(name, "go_") {
			foundGoMetrics = true
		}
		if strings.HasPrefix(name, "process_") {
			foundProcessMetrics = true
		}
	}

	assert.True(t, foundGoMetrics, "Go runtime metrics should be registered (go_* metrics)")
	if runtime.GOOS == "darwin" {
		assert.False(t, foundProcessMetrics, "Process metrics should NOT be available on macOS")
	} else {
		assert.True(t, foundProcessMetrics, "Process metrics should be registered on Linux/Windows")
	}
}

func TestManager_RegistryIsolation(t *testing.T) {
	manager1 := NewManager(nil)
	manager2 := NewManager(nil)

	assert.NotSame(t, manager1.registry, manager2.registry, "Each manager should have its own registry")
	assert.NotSame(t, manager1.DispatchCollector, manager2.DispatchCollector, "Each manager should have its own collector")
}

func TestProfileCollector(t *testing.T) {
	profiles := staticProfiles{
		{ID: uuid.New(), Name: "tube", ServiceKind: models.ServiceMeTube, IsDefault: true},
		{ID: uuid.New(), Name: "qbt", ServiceKind: models.ServiceTorrent, TorrentClient: models.ClientQBittorrent},
		{ID: uuid.New(), Name: "tr", ServiceKind: models.ServiceTorrent, TorrentClient: models.ClientTransmission},
	}

	c := NewProfileCollector(profiles)

	// one info series per profile plus one total per service kind
	assert.Equal(t, len(profiles)+len(models.ServiceKinds), testutil.CollectAndCount(c))
	assert.Equal(t, len(profiles), testutil.CollectAndCount(c, "shareconnect_profile_info"))

	expected := `
# HELP shareconnect_profiles_total Number of configured profiles by service kind
# TYPE shareconnect_profiles_total gauge
shareconnect_profiles_total{service="jdownloader"} 0
shareconnect_profiles_total{service="metube"} 1
shareconnect_profiles_total{service="torrent"} 2
shareconnect_profiles_total{service="ytdl"} 0
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected), "shareconnect_profiles_total"))
}

func TestDispatchCollectorRecordsOutcomes(t *testing.T) {
	manager := NewManager(nil)
	dc := manager.DispatchCollector

	p := models.Profile{ID: uuid.New(), Name: "qbt", ServiceKind: models.ServiceTorrent, TorrentClient: models.ClientQBittorrent}

	dc.ObserveDispatch(p, dispatch.Outcome{Success: true, HTTPStatus: 200}, 20*time.Millisecond)
	dc.ObserveDispatch(p, dispatch.Outcome{Success: true, HTTPStatus: 200}, 30*time.Millisecond)
	dc.ObserveDispatch(p, dispatch.Outcome{HTTPStatus: 403, ErrorKind: dispatch.ErrorKindAPI, ErrorDetail: "API Error: 403 - Forbidden"}, 10*time.Millisecond)

	base := prometheus.Labels{"profile_id": p.ID.String(), "profile_name": "qbt", "service": "qbittorrent"}

	assert.InDelta(t, 2, testutil.ToFloat64(dc.DispatchTotal.MustCurryWith(base).WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(dc.DispatchTotal.MustCurryWith(base).WithLabelValues("failure")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(dc.DispatchFailures.MustCurryWith(base).WithLabelValues("api", "403")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(dc.DispatchDuration))
}

func TestManager_MetricsCanBeScraped(t *testing.T) {
	manager := NewManager(staticProfiles{{ID: uuid.New(), Name: "tube", ServiceKind: models.ServiceMeTube}})

	metricCount := testutil.CollectAndCount(manager.GetRegistry())

	assert.Greater(t, metricCount, 0, "Should be able to collect metrics")
}
