// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsShutdownTimeout = 5 * time.Second

// metricsServer serves a Prometheus registry on /metrics.
type metricsServer struct {
	server    *http.Server
	listener  net.Listener
	logger    *slog.Logger
	serveDone chan error
}

// startMetricsServer binds address before returning so a bad address
// fails startup, then serves in the background. Port 0 picks a free
// port; Addr reports it.
func startMetricsServer(address string, gatherer prometheus.Gatherer, logger *slog.Logger) (*metricsServer, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", address, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	s := &metricsServer{
		server: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		listener:  listener,
		logger:    logger,
		serveDone: make(chan error, 1),
	}

	logger.Info("metrics server listening", "address", listener.Addr().String())
	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.serveDone <- err
		}
		close(s.serveDone)
	}()
	return s, nil
}

// Addr returns the bound address.
func (s *metricsServer) Addr() net.Addr { return s.listener.Addr() }

// Shutdown stops accepting connections and waits for in-flight scrapes.
func (s *metricsServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("metrics server shutdown error", "error", err)
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	if err := <-s.serveDone; err != nil {
		return fmt.Errorf("metrics server: %w", err)
	}
	s.logger.Info("metrics server stopped")
	return nil
}
