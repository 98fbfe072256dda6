// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package websession scripts a service's web UI: it logs in when the UI asks
// for credentials and pastes a URL into the add dialog.
package websession

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/shareconnect/internal/models"
	"github.com/autobrr/shareconnect/internal/pkg/timeouts"
)

const DefaultMaxInjectAttempts = 30

var errFieldNotFound = errors.New("url field not found")

type Phase int

const (
	PhaseLoading Phase = iota
	PhaseLoaded
	PhaseAuthenticating
	PhaseSettling
	PhaseInjecting
	PhaseDone
	PhaseFallback
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseSettling:
		return "settling"
	case PhaseInjecting:
		return "injecting"
	case PhaseDone:
		return "done"
	case PhaseFallback:
		return "fallback"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseFallback
}

type Options struct {
	Notifier Notifier
	// MaxInjectAttempts bounds the injection loop. 0 retries until the session
	// is closed.
	MaxInjectAttempts int
	// SettleDelay overrides the per-service wait after submitting a login.
	SettleDelay time.Duration
	RetryDelay  time.Duration
	Logger      *zerolog.Logger
}

func DefaultOptions() Options {
	return Options{MaxInjectAttempts: DefaultMaxInjectAttempts}
}

func (o *Options) applyDefaults() {
	if o.Notifier == nil {
		o.Notifier = LogNotifier{}
	}
	if o.RetryDelay == 0 {
		o.RetryDelay = timeouts.InjectRetryDelay
	}
	if o.Logger == nil {
		o.Logger = &log.Logger
	}
}

// Session is one scripted visit to a profile's web UI.
type Session struct {
	host     Host
	profile  models.Profile
	url      string
	opts     Options
	log      zerolog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	doneOnce sync.Once

	attemptedAuth atomic.Bool

	mu      sync.Mutex
	phase   Phase
	history []Phase
}

// Open navigates host to the profile's web UI and runs the session in the
// background. rawURL may be empty, in which case the session only logs in.
func Open(ctx context.Context, host Host, p models.Profile, rawURL string, opts Options) (*Session, error) {
	if host == nil {
		return nil, errors.New("websession: nil host")
	}
	if opts.MaxInjectAttempts < 0 {
		return nil, fmt.Errorf("websession: invalid max inject attempts %d", opts.MaxInjectAttempts)
	}
	opts.applyDefaults()

	sctx, cancel := context.WithCancel(ctx)
	s := &Session{
		host:    host,
		profile: p,
		url:     rawURL,
		opts:    opts,
		log:     opts.Logger.With().Str("profile", p.Name).Str("service", p.ServiceName()).Logger(),
		ctx:     sctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		phase:   PhaseLoading,
		history: []Phase{PhaseLoading},
	}

	if hook, ok := host.(PageLoadHook); ok {
		hook.OnPageLoaded(func(_ context.Context, url string) {
			s.pageLoaded(url)
		})
	}

	go s.run()
	return s, nil
}

func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// History returns every phase the session has entered, in order.
func (s *Session) History() []Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Phase, len(s.history))
	copy(out, s.history)
	return out
}

// Done is closed once the session reaches a terminal phase or is closed.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the session finishes or ctx ends.
func (s *Session) Wait(ctx context.Context) (Phase, error) {
	select {
	case <-s.done:
		return s.Phase(), nil
	case <-ctx.Done():
		return s.Phase(), ctx.Err()
	}
}

// Close stops the session. Pending delays are dropped without notification.
func (s *Session) Close() {
	s.cancel()
}

func (s *Session) run() {
	origin := s.profile.Origin()
	if err := s.host.Navigate(s.ctx, origin); err != nil {
		if s.ctx.Err() != nil {
			s.finish()
			return
		}
		// Block later page-load events from starting a second run.
		s.attemptedAuth.Store(true)
		s.log.Error().Err(err).Msg("failed to load web ui")
		s.notify(LevelError, fmt.Sprintf("Error loading page: %v", err))
		s.fallback()
		return
	}
	s.pageLoaded(origin)
}

// pageLoaded starts the script on the first load only. Later loads come from
// the login form or the UI itself and must not log in again.
func (s *Session) pageLoaded(url string) {
	if !s.attemptedAuth.CompareAndSwap(false, true) {
		s.log.Trace().Str("page", url).Msg("ignoring repeated page load")
		return
	}
	go s.afterLoad()
}

func (s *Session) afterLoad() {
	defer s.finish()
	s.setPhase(PhaseLoaded)

	if script, ok := loginScriptFor(s.profile); ok && s.profile.HasCredentials() {
		s.setPhase(PhaseAuthenticating)
		if err := s.login(script); err != nil {
			if s.ctx.Err() != nil {
				return
			}
			s.log.Warn().Err(err).Msg("login script failed")
		}

		s.setPhase(PhaseSettling)
		settle := script.Settle
		if s.opts.SettleDelay > 0 {
			settle = s.opts.SettleDelay
		}
		if !sleep(s.ctx, settle) {
			return
		}
	}

	s.inject()
}

// login fills what it can find and submits. Success is not verified.
func (s *Session) login(script LoginScript) error {
	ctx := s.ctx

	if script.Username != nil {
		el, ok, err := s.host.Find(ctx, script.Username)
		if err != nil {
			return err
		}
		if ok {
			if err := s.host.Fill(ctx, el, s.profile.Username); err != nil {
				return err
			}
		}
	}

	password, ok, err := s.host.Find(ctx, script.Password)
	if err != nil {
		return err
	}
	if !ok {
		s.log.Debug().Msg("no password field on page, skipping login")
		return nil
	}
	if err := s.host.Fill(ctx, password, s.profile.Password); err != nil {
		return err
	}

	button, ok, err := s.host.Find(ctx, script.Submit)
	if err != nil {
		return err
	}
	if ok {
		return s.host.Click(ctx, button)
	}
	return s.host.Submit(ctx, password)
}

func (s *Session) inject() {
	if s.url == "" {
		s.setPhase(PhaseDone)
		return
	}

	script, ok := injectScriptFor(s.profile)
	if !ok {
		s.fallback()
		return
	}

	s.setPhase(PhaseInjecting)

	attempts := uint(math.MaxUint)
	if s.opts.MaxInjectAttempts > 0 {
		attempts = uint(s.opts.MaxInjectAttempts)
	}

	err := retry.Do(
		func() error { return s.tryInject(script) },
		retry.Context(s.ctx),
		retry.Attempts(attempts),
		retry.Delay(s.opts.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.log.Trace().Uint("attempt", n+1).Err(err).Msg("url field not ready")
		}),
	)
	switch {
	case err == nil:
		s.setPhase(PhaseDone)
		s.notify(LevelInfo, fmt.Sprintf("URL passed to %s: %s", s.profile.TorrentClient.DisplayName(), s.url))
	case s.ctx.Err() != nil:
	default:
		s.log.Warn().Err(err).Int("attempts", s.opts.MaxInjectAttempts).Msg("giving up on url injection")
		s.fallback()
	}
}

// tryInject fills the URL field if it is on the page. Otherwise it clicks an
// opener so the next attempt can find the dialog.
func (s *Session) tryInject(script InjectScript) error {
	ctx := s.ctx

	field, ok, err := s.host.Find(ctx, script.URLField)
	if err != nil {
		return err
	}
	if ok {
		if err := s.host.Fill(ctx, field, s.url); err != nil {
			return err
		}
		if len(script.Submit) == 0 {
			return nil
		}
		button, found, err := s.host.Find(ctx, script.Submit)
		if err != nil || !found {
			// The URL is pasted. Leave the confirmation to the user.
			return nil
		}
		if err := s.host.Click(ctx, button); err != nil {
			s.log.Debug().Err(err).Msg("failed to click submit")
		}
		return nil
	}

	opener, ok, err := s.host.Find(ctx, script.Openers)
	if err != nil {
		return err
	}
	if ok {
		if err := s.host.Click(ctx, opener); err != nil {
			return err
		}
	}
	return errFieldNotFound
}

func (s *Session) fallback() {
	s.setPhase(PhaseFallback)
	if s.url != "" {
		s.notify(LevelInfo, fmt.Sprintf("URL to download: %s", s.url))
	}
	s.finish()
}

func (s *Session) notify(level NotificationLevel, msg string) {
	s.opts.Notifier.Notify(s.ctx, Notification{Level: level, Message: msg, URL: s.url})
}

func (s *Session) setPhase(p Phase) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = p
	s.history = append(s.history, p)
	s.log.Debug().Str("phase", p.String()).Msg("web session phase")
}

func (s *Session) finish() {
	s.doneOnce.Do(func() { close(s.done) })
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
