// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package api

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/autobrr/shareconnect/internal/api/handlers"
	"github.com/autobrr/shareconnect/internal/api/middleware"
	"github.com/autobrr/shareconnect/internal/config"
	"github.com/autobrr/shareconnect/pkg/httphelpers"
)

// Limits for concurrent dispatch requests.
const (
	maxConcurrentDispatches = 8
	dispatchBacklog         = 64
	dispatchBacklogTimeout  = 30 * time.Second
)

type Dependencies struct {
	Config     *config.AppConfig
	Profiles   handlers.ProfileStore
	Dispatcher handlers.Dispatcher
	Metadata   handlers.MetadataFetcher
	Prober     handlers.Prober
}

type Server struct {
	server *http.Server
	logger zerolog.Logger
	deps   *Dependencies
}

func NewServer(deps *Dependencies) *Server {
	s := &Server{
		logger: log.Logger.With().Str("module", "api").Logger(),
		deps:   deps,
	}

	s.server = &http.Server{
		Addr:              net.JoinHostPort(deps.Config.Config.Host, strconv.Itoa(deps.Config.Config.Port)),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Dispatch and metadata calls wait on remote services.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	return s
}

// Handler builds the router, mounted under the configured base URL.
func (s *Server) Handler() (*chi.Mux, error) {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger(s.logger))

	if origins := s.deps.Config.Config.CORSAllowedOrigins; len(origins) > 0 {
		c := cors.New(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
			AllowCredentials: true,
			MaxAge:           300,
		})
		r.Use(c.Handler)
	}

	api := func(r chi.Router) {
		r.Route("/health", handlers.NewHealthHandler(s.deps.Profiles).Routes)
		r.Group(handlers.NewLinksHandler(s.deps.Profiles, s.deps.Metadata).Routes)
		r.Route("/profiles", handlers.NewProfilesHandler(s.deps.Profiles, s.deps.Prober).Routes)
		r.Route("/dispatch", func(r chi.Router) {
			r.Use(middleware.ThrottleBacklog(maxConcurrentDispatches, dispatchBacklog, dispatchBacklogTimeout))
			handlers.NewDispatchHandler(s.deps.Profiles, s.deps.Dispatcher).Routes(r)
		})
	}

	basePath := httphelpers.NormalizeBasePath(s.deps.Config.Config.BaseURL)
	r.Route(httphelpers.JoinBasePath(basePath, "api"), api)

	return r, nil
}

func (s *Server) ListenAndServe() error {
	handler, err := s.Handler()
	if err != nil {
		return err
	}
	s.server.Handler = handler

	s.logger.Info().Str("addr", s.server.Addr).Msg("Starting API server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
