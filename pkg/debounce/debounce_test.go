// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncerRunsOnce(t *testing.T) {
	t.Parallel()

	d := New(20 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	d.Do(func() { calls.Add(1) })
	assert.True(t, d.Queued())

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.False(t, d.Queued())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDebouncerKeepsLatestCall(t *testing.T) {
	t.Parallel()

	d := New(30 * time.Millisecond)
	defer d.Stop()

	var last atomic.Int32
	var calls atomic.Int32
	for i := int32(1); i <= 5; i++ {
		d.Do(func() {
			calls.Add(1)
			last.Store(i)
		})
	}

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(5), last.Load())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDebouncerRestartsDelay(t *testing.T) {
	t.Parallel()

	d := New(80 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	start := time.Now()
	d.Do(func() { calls.Add(1) })
	time.Sleep(50 * time.Millisecond)
	d.Do(func() { calls.Add(1) })

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 130*time.Millisecond)
}

func TestDebouncerStopDropsPending(t *testing.T) {
	t.Parallel()

	d := New(20 * time.Millisecond)

	var calls atomic.Int32
	d.Do(func() { calls.Add(1) })
	d.Stop()
	d.Stop()
	assert.False(t, d.Queued())

	d.Do(func() { calls.Add(1) })
	assert.False(t, d.Queued())

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, calls.Load())
}

func TestDebouncerZeroDelay(t *testing.T) {
	t.Parallel()

	d := New(0)
	defer d.Stop()

	done := make(chan struct{})
	d.Do(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("function did not run")
	}
}
