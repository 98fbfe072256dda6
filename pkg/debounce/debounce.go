// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package debounce coalesces bursts of calls into one.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs the most recent function passed to Do once no further call
// has arrived for the configured delay.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()
	gen     uint64
	stopped bool
}

func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Do schedules fn, replacing any call still waiting, and restarts the delay.
// Calls after Stop are ignored.
func (d *Debouncer) Do(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.gen++
	gen := d.gen
	d.pending = fn
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// fire runs the pending call unless a newer Do or Stop superseded gen.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Queued reports whether a call is waiting for its delay to pass.
func (d *Debouncer) Queued() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Stop drops the pending call, if any. It is safe to call more than once.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.pending = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
