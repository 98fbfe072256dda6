// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package timeouts

import (
	"context"
	"time"
)

const (
	// MetadataConnectTimeout bounds dialing a page whose preview is fetched.
	MetadataConnectTimeout = 10 * time.Second
	// MetadataReadTimeout bounds waiting for the response headers of a preview fetch.
	MetadataReadTimeout = 10 * time.Second

	// QBittorrentSettleDelay is how long the web UI gets after a login submit.
	QBittorrentSettleDelay = 3 * time.Second
	// UTorrentSettleDelay is how long the web UI gets after a login submit.
	UTorrentSettleDelay = 2 * time.Second
	// InjectRetryDelay separates injection attempts while the web UI renders.
	InjectRetryDelay = 1 * time.Second

	// ProbeTimeout caps a single connectivity probe.
	ProbeTimeout = 30 * time.Second
)

// Dispatch converts the configured dispatch timeout in seconds to a duration.
// Zero or negative values mean no client-side timeout.
func Dispatch(seconds int) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

// WithProbeTimeout applies ProbeTimeout unless ctx already carries a deadline.
func WithProbeTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	if timeout <= 0 {
		timeout = ProbeTimeout
	}
	return context.WithTimeout(ctx, timeout)
}
