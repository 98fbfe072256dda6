// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package timeouts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConstants(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 10*time.Second, MetadataConnectTimeout)
	assert.Equal(t, 10*time.Second, MetadataReadTimeout)
	assert.Equal(t, 3*time.Second, QBittorrentSettleDelay)
	assert.Equal(t, 2*time.Second, UTorrentSettleDelay)
	assert.Equal(t, time.Second, InjectRetryDelay)
}

func TestDispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		seconds int
		want    time.Duration
	}{
		{name: "zero means unbounded", seconds: 0, want: 0},
		{name: "negative means unbounded", seconds: -3, want: 0},
		{name: "positive seconds", seconds: 15, want: 15 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Dispatch(tt.seconds))
		})
	}
}

func TestWithProbeTimeout(t *testing.T) {
	t.Parallel()

	t.Run("applies timeout when no deadline", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := WithProbeTimeout(context.Background(), 5*time.Second)
		defer cancel()

		deadline, ok := ctx.Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(5*time.Second), deadline, 100*time.Millisecond)
	})

	t.Run("preserves existing deadline", func(t *testing.T) {
		t.Parallel()

		original := time.Now().Add(10 * time.Second)
		parent, parentCancel := context.WithDeadline(context.Background(), original)
		defer parentCancel()

		ctx, cancel := WithProbeTimeout(parent, 5*time.Second)
		cancel()

		deadline, ok := ctx.Deadline()
		assert.True(t, ok)
		assert.Equal(t, original, deadline)
		assert.NoError(t, ctx.Err())
	})

	t.Run("zero timeout uses default", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := WithProbeTimeout(context.Background(), 0)
		defer cancel()

		deadline, ok := ctx.Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(ProbeTimeout), deadline, 100*time.Millisecond)
	})
}
