// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/autobrr/shareconnect/internal/buildinfo"
	"github.com/autobrr/shareconnect/internal/classify"
	"github.com/autobrr/shareconnect/internal/models"
	"github.com/autobrr/shareconnect/internal/probe"
	"github.com/autobrr/shareconnect/internal/qbittorrent"
	"github.com/autobrr/shareconnect/internal/websession"
	"github.com/autobrr/shareconnect/internal/websession/htmlhost"
)

func RunDispatchCommand(load appLoader) *cobra.Command {
	var profileRef string

	cmd := &cobra.Command{
		Use:   "dispatch <url>",
		Short: "Send a link to a download service",
		Long: `Send a link to a download service.

Without --profile the default profile is used when it accepts the link,
otherwise the first compatible profile.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}

			raw := args[0]
			p, err := a.resolveProfile(profileRef, raw)
			if err != nil {
				return err
			}

			t := classify.Classify(raw)
			if !classify.IsCompatible(p.ServiceKind, t) {
				return fmt.Errorf("%s does not accept %s links", p.Name, t.Description())
			}

			out := a.router(nil).Dispatch(cmd.Context(), p, raw)
			if !out.Success {
				return fmt.Errorf("failed to send to %s: %s", p.Name, out.ErrorDetail)
			}

			cmd.Printf("Sent to %s (%s)\n", p.Name, p.ServiceName())
			return nil
		},
	}

	cmd.Flags().StringVar(&profileRef, "profile", "", "profile name or ID")
	return cmd
}

func RunSessionCommand(load appLoader) *cobra.Command {
	var (
		timeout time.Duration
		webOnly bool
	)

	cmd := &cobra.Command{
		Use:   "session <profile> [url]",
		Short: "Log in to a profile's web UI and hand it a link",
		Long: `Log in to a profile's web UI and hand it a link.

qBittorrent profiles try the Web API first and only drive the web UI when
that fails. Without a url the session only logs in.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}

			p, err := a.profiles.Lookup(args[0])
			if err != nil {
				return errors.Wrapf(err, "profile %q", args[0])
			}

			var raw string
			if len(args) == 2 {
				raw = args[1]
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			if raw != "" && !webOnly && p.ServiceKind == models.ServiceTorrent && p.TorrentClient == models.ClientQBittorrent {
				err := qbittorrent.AddURL(ctx, p, raw)
				if err == nil {
					cmd.Printf("Added to %s through the Web API\n", p.Name)
					return nil
				}
				log.Warn().Err(err).Str("profile", p.Name).Msg("Web API add failed, falling back to web UI")
			}

			return runWebSession(ctx, cmd, a, p, raw)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "give up after this long")
	cmd.Flags().BoolVar(&webOnly, "web-only", false, "skip the qBittorrent Web API")
	return cmd
}

func runWebSession(ctx context.Context, cmd *cobra.Command, a *app, p models.Profile, raw string) error {
	host, err := htmlhost.New(htmlhost.WithUserAgent(buildinfo.UserAgent))
	if err != nil {
		return err
	}

	opts := websession.DefaultOptions()
	opts.MaxInjectAttempts = a.cfg.Config.InjectMaxAttempts
	opts.Notifier = websession.NotifierFunc(func(_ context.Context, n websession.Notification) {
		cmd.Printf("[%s] %s\n", n.Level, n.Message)
	})

	session, err := websession.Open(ctx, host, p, raw, opts)
	if err != nil {
		return err
	}
	defer session.Close()

	phase, err := session.Wait(ctx)
	if err != nil {
		return errors.Wrapf(err, "session stopped while %s", phase)
	}
	if phase == websession.PhaseFallback {
		return fmt.Errorf("could not hand the link to %s, open %s manually", p.Name, p.Origin())
	}

	cmd.Printf("Session finished: %s\n", phase)
	return nil
}

func RunProbeCommand(load appLoader) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "probe [profile...]",
		Short: "Check that profiles are reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := load()
			if err != nil {
				return err
			}

			profiles := a.profiles.List()
			if len(args) > 0 {
				profiles = profiles[:0:0]
				for _, ref := range args {
					p, err := a.profiles.Lookup(ref)
					if err != nil {
						return errors.Wrapf(err, "profile %q", ref)
					}
					profiles = append(profiles, p)
				}
			}

			results := probe.NewProber().ProbeAll(cmd.Context(), profiles)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), results)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROFILE\tSERVICE\tREACHABLE\tVERSION\tLATENCY\tERROR")
			for _, r := range results {
				fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\t%s\n", r.Profile, r.Service, r.Reachable, r.Version, r.Latency.Round(time.Millisecond), r.Error)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
