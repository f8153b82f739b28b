// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/diffeo/go-enamel/backend"
	"github.com/diffeo/go-enamel/config"
	"github.com/diffeo/go-enamel/enamel"
	"github.com/diffeo/go-enamel/microversion"
	"github.com/diffeo/go-enamel/restserver"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds how long in-flight requests get after a
// shutdown signal.
const shutdownTimeout = 10 * time.Second

// settings is the resolved server configuration, after flags have
// been applied on top of the configuration file.
type settings struct {
	Bind        string
	MetricsBind string
	Backend     backend.Backend
	Catalog     *microversion.Catalog
	Level       logrus.Level
}

func newSettings(cfg config.Config, store backend.Backend, bind, metricsBind string) (settings, error) {
	var err error
	s := settings{
		Bind:        cfg.Bind(),
		MetricsBind: metricsBind,
		Backend:     store,
	}
	if bind != "" {
		s.Bind = bind
	}
	if s.Backend.Implementation == "" {
		if cfg.Database.Connection != "" {
			s.Backend = backend.Backend{Implementation: "postgres", Address: cfg.Database.Connection}
		} else {
			s.Backend = backend.Backend{Implementation: "memory"}
		}
	}
	s.Catalog, err = cfg.Catalog()
	if err != nil {
		return settings{}, err
	}
	s.Level, err = cfg.LogLevel()
	if err != nil {
		return settings{}, err
	}
	return s, nil
}

// Servers builds the HTTP servers to run: the API, and a separate
// metrics server if one was requested.  Without one, metrics are
// served at /metrics on the API listener.
func (s settings) Servers(
	e enamel.Enamel,
	reg prometheus.Registerer,
	gatherer prometheus.Gatherer,
	reqLogger *logrus.Logger,
) ([]*http.Server, error) {
	api, err := restserver.New(e, s.Catalog, restserver.Options{
		RequestLogger: reqLogger,
		Registerer:    reg,
	})
	if err != nil {
		return nil, err
	}
	metrics := promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})

	if s.MetricsBind != "" {
		return []*http.Server{
			{Addr: s.Bind, Handler: api},
			{Addr: s.MetricsBind, Handler: metrics},
		}, nil
	}
	r := mux.NewRouter()
	r.Handle("/metrics", metrics)
	r.PathPrefix("/").Handler(api)
	return []*http.Server{{Addr: s.Bind, Handler: r}}, nil
}

// serve runs every server until ctx is cancelled or one of them
// fails, then shuts them all down.
func serve(ctx context.Context, servers []*http.Server) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, server := range servers {
		server := server
		g.Go(func() error {
			err := server.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})
	}
	return g.Wait()
}
