// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package websession

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Element is an opaque handle returned by Host.Find.
type Element any

// Host drives a page in some web-rendering engine.
//
// Find returns the first visible element matching the earliest selector in
// the candidate list. A missing element is not an error.
type Host interface {
	Navigate(ctx context.Context, url string) error
	Find(ctx context.Context, selectors []string) (Element, bool, error)
	Fill(ctx context.Context, el Element, value string) error
	Click(ctx context.Context, el Element) error
	// Submit submits the form that contains el.
	Submit(ctx context.Context, el Element) error
}

// PageLoadHook is implemented by hosts that report page loads themselves,
// including navigations triggered by the page.
type PageLoadHook interface {
	OnPageLoaded(fn func(ctx context.Context, url string))
}

type NotificationLevel string

const (
	LevelInfo  NotificationLevel = "info"
	LevelError NotificationLevel = "error"
)

// Notification is a best-effort message for the user.
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
	URL     string            `json:"url,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

// LogNotifier writes notifications to the global logger.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n Notification) {
	ev := log.Info()
	if n.Level == LevelError {
		ev = log.Error()
	}
	ev.Str("url", n.URL).Msg(n.Message)
}
