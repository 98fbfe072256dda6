// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/autobrr/shareconnect/internal/api"
	"github.com/autobrr/shareconnect/internal/buildinfo"
	"github.com/autobrr/shareconnect/internal/config"
	"github.com/autobrr/shareconnect/internal/metadata"
	"github.com/autobrr/shareconnect/internal/metrics"
	"github.com/autobrr/shareconnect/internal/probe"
)

const shutdownTimeout = 10 * time.Second

func RunServeCommand(load appLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, a)
		},
	}

	return cmd
}

func serve(ctx context.Context, a *app) error {
	log.Info().
		Str("version", buildinfo.Version).
		Str("config", a.cfg.ConfigPath()).
		Int("profiles", len(a.profiles.List())).
		Msg("Starting shareconnect")

	manager := metrics.NewManager(a.profiles)

	apiServer := api.NewServer(&api.Dependencies{
		Config:     a.cfg,
		Profiles:   a.profiles,
		Dispatcher: a.router(manager.DispatchCollector),
		Metadata:   metadata.NewFetcher(),
		Prober:     probe.NewProber(),
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(apiServer.ListenAndServe)

	var metricsServer *metrics.Server
	if a.cfg.Config.MetricsEnabled {
		metricsServer = metrics.NewMetricsServer(manager, a.cfg.Config.MetricsHost, a.cfg.Config.MetricsPort, a.cfg.Config.MetricsBasicAuthUsers)
		g.Go(metricsServer.ListenAndServe)
	}

	if err := config.WatchProfiles(gctx, a.cfg.ProfilesPath(), a.profiles, nil); err != nil {
		log.Warn().Err(err).Msg("Profiles file will not be reloaded on change")
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("API server shutdown failed")
		}
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Metrics server shutdown failed")
			}
		}
		return nil
	})

	return g.Wait()
}
