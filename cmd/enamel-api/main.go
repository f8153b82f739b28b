// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package enamel-api runs the enamel REST API server.  Settings come
// from an optional YAML configuration file, and command-line flags
// override them.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/diffeo/go-enamel/backend"
	"github.com/diffeo/go-enamel/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

func main() {
	configFile := flag.String("config", "", "YAML configuration file")
	bind := flag.String("bind", "", "[ip]:port for the REST API (overrides api.bind_*)")
	metricsBind := flag.String("metrics", "",
		"[ip]:port for Prometheus metrics (default: /metrics on the API)")
	store := backend.Backend{}
	flag.Var(&store, "backend", "impl[:address] of the storage backend (overrides database.connection)")
	logRequests := flag.Bool("log-requests", false, "log all requests")
	logLevel := flag.String("log-level", "", "minimum log level (overrides log.level)")
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"err":  err,
				"file": *configFile,
			}).Fatal("Could not load YAML configuration")
			return
		}
		for _, key := range cfg.Unused {
			logrus.WithField("key", key).Warn("Unknown configuration key")
		}
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logRequests {
		cfg.Log.Requests = true
	}

	opts, err := newSettings(cfg, store, *bind, *metricsBind)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("Invalid configuration")
		return
	}
	logrus.SetLevel(opts.Level)

	e, err := opts.Backend.Enamel()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"err":     err,
			"backend": opts.Backend.String(),
		}).Fatal("Could not create enamel backend")
		return
	}

	var reqLogger *logrus.Logger
	if cfg.Log.Requests {
		stdlog := logrus.StandardLogger()
		reqLogger = &logrus.Logger{
			Out:       stdlog.Out,
			Formatter: stdlog.Formatter,
			Hooks:     stdlog.Hooks,
			Level:     logrus.DebugLevel,
		}
	}

	servers, err := opts.Servers(e, prometheus.DefaultRegisterer, prometheus.DefaultGatherer, reqLogger)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("Could not build the API server")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logrus.WithFields(logrus.Fields{
		"bind":    opts.Bind,
		"backend": opts.Backend.Implementation,
		"min":     opts.Catalog.MinVersionString(),
		"max":     opts.Catalog.MaxVersionString(),
	}).Info("Starting enamel API")
	err = serve(ctx, servers)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("Server failed")
	}
	logrus.Info("Shut down")
}
