// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Monotime-probe exercises the monotime stack end to end. It loads a
// configuration, builds a clock source (the system clock, optionally
// corrected against an NTP server), starts the upkeep loop that
// publishes recent time, and then takes a bounded number of samples.
// Each sample pairs a full clock read with the recent-time cache read
// taken immediately after it, so the reported lag shows how stale the
// cache is at the configured upkeep interval.
//
// Samples are written to stdout as text lines, newline-delimited JSON,
// or a CBOR sequence. With --metrics-listen the probe also serves the
// upkeep collector on /metrics and keeps serving after sampling until
// interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"golang.org/x/term"
	"golang.org/x/time/rate"

	"github.com/bureau-foundation/monotime/lib/clock"
	"github.com/bureau-foundation/monotime/lib/config"
	"github.com/bureau-foundation/monotime/lib/instant"
	"github.com/bureau-foundation/monotime/lib/process"
	"github.com/bureau-foundation/monotime/lib/recent"
	"github.com/bureau-foundation/monotime/lib/upkeep"
	"github.com/bureau-foundation/monotime/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

// options holds the parsed command line. Zero values mean "use the
// configuration file".
type options struct {
	configPath    string
	samples       int
	rate          float64
	format        string
	metricsListen string
	showVersion   bool
	showHelp      bool
}

func parseOptions(args []string) (*options, *pflag.FlagSet, error) {
	var opts options
	flagSet := pflag.NewFlagSet("monotime-probe", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&opts.configPath, "config", "", "path to monotime.yaml (default: $MONOTIME_CONFIG, else built-in defaults)")
	flagSet.IntVarP(&opts.samples, "samples", "n", 0, "number of samples to take")
	flagSet.Float64Var(&opts.rate, "rate", 0, "maximum samples per second")
	flagSet.StringVar(&opts.format, "format", "", "output format: auto, text, json, or cbor")
	flagSet.StringVar(&opts.metricsListen, "metrics-listen", "", "serve Prometheus metrics on this address")
	flagSet.BoolVar(&opts.showVersion, "version", false, "print version information and exit")
	flagSet.BoolVarP(&opts.showHelp, "help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			opts.showHelp = true
			return &opts, flagSet, nil
		}
		return nil, flagSet, err
	}
	if extra := flagSet.Args(); len(extra) > 0 {
		return nil, flagSet, fmt.Errorf("unexpected argument: %s", extra[0])
	}
	return &opts, flagSet, nil
}

// loadConfig resolves the configuration: --config wins, then
// MONOTIME_CONFIG, then Default. Command-line values are applied last
// and the result is validated again.
func loadConfig(opts *options) (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case opts.configPath != "":
		cfg, err = config.LoadFile(opts.configPath)
	default:
		cfg, err = config.Load()
		if errors.Is(err, config.ErrNoConfig) {
			cfg, err = config.Default(), nil
		}
	}
	if err != nil {
		return nil, err
	}

	if opts.samples != 0 {
		cfg.Probe.Samples = opts.samples
	}
	if opts.rate != 0 {
		cfg.Probe.Rate = opts.rate
	}
	if opts.format != "" {
		cfg.Probe.Format = opts.format
	}
	if opts.metricsListen != "" {
		cfg.Metrics.Listen = opts.metricsListen
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

// newLogger writes human-readable records to a terminal and JSON
// records otherwise.
func newLogger() *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}

func run() error {
	opts, flagSet, err := parseOptions(os.Args[1:])
	if err != nil {
		return err
	}
	if opts.showVersion {
		version.Print("monotime-probe")
		return nil
	}
	if opts.showHelp {
		printHelp(os.Stderr, flagSet)
		return nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	format, err := resolveFormat(cfg.Probe.Format, term.IsTerminal(int(os.Stdout.Fd())))
	if err != nil {
		return err
	}

	logger := newLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, err := buildSource(ctx, cfg.Source, clock.Real(), logger)
	if err != nil {
		return err
	}

	handle, err := upkeep.Start(ctx, upkeep.Config{
		Interval: cfg.Upkeep.Interval,
		Source:   source,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("starting upkeep: %w", err)
	}
	defer handle.Stop()

	var metrics *metricsServer
	if cfg.Metrics.Listen != "" {
		registry := prometheus.NewRegistry()
		registry.MustRegister(upkeep.NewCollector(recent.Global(), handle))
		metrics, err = startMetricsServer(cfg.Metrics.Listen, registry, logger)
		if err != nil {
			return err
		}
	}

	writer, err := newSampleWriter(os.Stdout, format)
	if err != nil {
		return err
	}
	sampler := &sampler{
		clock:   instant.NewClock(source),
		recent:  func() instant.Instant { return instant.Recent(ctx) },
		limiter: rate.NewLimiter(rate.Limit(cfg.Probe.Rate), 1),
	}
	taken, err := sampler.run(ctx, cfg.Probe.Samples, writer)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("sampling finished",
		"samples", taken,
		"refreshes", handle.Refreshes(),
		"source", cfg.Source.Kind,
	)

	if metrics != nil {
		if ctx.Err() == nil {
			logger.Info("serving metrics until interrupted", "address", metrics.Addr().String())
			<-ctx.Done()
		}
		return metrics.Shutdown()
	}
	return nil
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `monotime-probe samples the monotime clock and recent-time cache.

Configuration comes from --config, else the file named by
MONOTIME_CONFIG, else built-in defaults. Flags override the file.

Usage:
  monotime-probe [flags]

Flags:
%s`, flagSet.FlagUsages())
}
