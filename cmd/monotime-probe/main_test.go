// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/beevik/ntp"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/bureau-foundation/monotime/lib/clock"
	"github.com/bureau-foundation/monotime/lib/clocksource"
	"github.com/bureau-foundation/monotime/lib/codec"
	"github.com/bureau-foundation/monotime/lib/config"
	"github.com/bureau-foundation/monotime/lib/instant"
	"github.com/bureau-foundation/monotime/lib/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseOptions(t *testing.T) {
	opts, _, err := parseOptions([]string{
		"--config", "/etc/monotime.yaml",
		"-n", "25",
		"--rate", "50",
		"--format", "cbor",
		"--metrics-listen", "127.0.0.1:9100",
	})
	if err != nil {
		t.Fatalf("parseOptions: %v", err)
	}
	if opts.configPath != "/etc/monotime.yaml" {
		t.Errorf("configPath = %q, want /etc/monotime.yaml", opts.configPath)
	}
	if opts.samples != 25 {
		t.Errorf("samples = %d, want 25", opts.samples)
	}
	if opts.rate != 50 {
		t.Errorf("rate = %v, want 50", opts.rate)
	}
	if opts.format != config.FormatCBOR {
		t.Errorf("format = %q, want cbor", opts.format)
	}
	if opts.metricsListen != "127.0.0.1:9100" {
		t.Errorf("metricsListen = %q, want 127.0.0.1:9100", opts.metricsListen)
	}
}

func TestParseOptionsRejectsArguments(t *testing.T) {
	if _, _, err := parseOptions([]string{"extra"}); err == nil {
		t.Fatal("parseOptions accepted a positional argument")
	}
	if _, _, err := parseOptions([]string{"--no-such-flag"}); err == nil {
		t.Fatal("parseOptions accepted an unknown flag")
	}
}

func TestPrintHelpListsFlags(t *testing.T) {
	_, flagSet, err := parseOptions(nil)
	if err != nil {
		t.Fatalf("parseOptions: %v", err)
	}
	var buffer bytes.Buffer
	printHelp(&buffer, flagSet)
	for _, flag := range []string{"--config", "--samples", "--rate", "--format", "--metrics-listen", "--version"} {
		if !strings.Contains(buffer.String(), flag) {
			t.Errorf("help output missing %s", flag)
		}
	}
}

func TestLoadConfigDefaultsWithFlagOverrides(t *testing.T) {
	t.Setenv("MONOTIME_CONFIG", "")

	cfg, err := loadConfig(&options{samples: 3, format: config.FormatJSON})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Probe.Samples != 3 {
		t.Errorf("Probe.Samples = %d, want 3", cfg.Probe.Samples)
	}
	if cfg.Probe.Format != config.FormatJSON {
		t.Errorf("Probe.Format = %q, want json", cfg.Probe.Format)
	}
	if cfg.Probe.Rate != config.Default().Probe.Rate {
		t.Errorf("Probe.Rate = %v, want default %v", cfg.Probe.Rate, config.Default().Probe.Rate)
	}
	if cfg.Source.Kind != config.SourceSystem {
		t.Errorf("Source.Kind = %q, want system", cfg.Source.Kind)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "monotime.yaml")
	data := []byte("environment: production\nprobe:\n  samples: 7\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := loadConfig(&options{configPath: path, rate: 5})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Probe.Samples != 7 {
		t.Errorf("Probe.Samples = %d, want 7", cfg.Probe.Samples)
	}
	if cfg.Probe.Rate != 5 {
		t.Errorf("Probe.Rate = %v, want 5", cfg.Probe.Rate)
	}
	if cfg.Upkeep.Interval != 10*time.Millisecond {
		t.Errorf("Upkeep.Interval = %v, want production default 10ms", cfg.Upkeep.Interval)
	}
}

func TestLoadConfigRejectsInvalidFlags(t *testing.T) {
	t.Setenv("MONOTIME_CONFIG", "")
	if _, err := loadConfig(&options{samples: -1}); err == nil {
		t.Fatal("loadConfig accepted a negative sample count")
	}
	if _, err := loadConfig(&options{format: "xml"}); err == nil {
		t.Fatal("loadConfig accepted an unknown format")
	}
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		format   string
		terminal bool
		want     string
	}{
		{config.FormatAuto, true, config.FormatText},
		{config.FormatAuto, false, config.FormatJSON},
		{config.FormatText, false, config.FormatText},
		{config.FormatJSON, true, config.FormatJSON},
		{config.FormatCBOR, true, config.FormatCBOR},
	}
	for _, test := range tests {
		got, err := resolveFormat(test.format, test.terminal)
		if err != nil {
			t.Fatalf("resolveFormat(%q, %v): %v", test.format, test.terminal, err)
		}
		if got != test.want {
			t.Errorf("resolveFormat(%q, %v) = %q, want %q", test.format, test.terminal, got, test.want)
		}
	}
	if _, err := resolveFormat("yaml", false); err == nil {
		t.Fatal("resolveFormat accepted yaml")
	}
}

// newTestSampler returns a sampler whose full reads come from a
// detached mock and whose recent reads return recentNanos.
func newTestSampler(nowNanos, recentNanos uint64) *sampler {
	clk, m := instant.Mocked(nil)
	m.Increment(nowNanos)
	return &sampler{
		clock:   clk,
		recent:  func() instant.Instant { return instant.FromUnixNanos(recentNanos) },
		limiter: rate.NewLimiter(rate.Inf, 1),
	}
}

func TestSamplerJSON(t *testing.T) {
	var buffer bytes.Buffer
	writer, err := newSampleWriter(&buffer, config.FormatJSON)
	if err != nil {
		t.Fatalf("newSampleWriter: %v", err)
	}

	taken, err := newTestSampler(1500, 1000).run(context.Background(), 2, writer)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if taken != 2 {
		t.Fatalf("run took %d samples, want 2", taken)
	}

	want := `{"sequence":0,"now":"1500","recent":"1000","lag_ns":500}` + "\n" +
		`{"sequence":1,"now":"1500","recent":"1000","lag_ns":500}` + "\n"
	if buffer.String() != want {
		t.Fatalf("JSON output = %q, want %q", buffer.String(), want)
	}
}

func TestSamplerCBORSequence(t *testing.T) {
	var buffer bytes.Buffer
	writer, err := newSampleWriter(&buffer, config.FormatCBOR)
	if err != nil {
		t.Fatalf("newSampleWriter: %v", err)
	}
	if _, err := newTestSampler(2000, 1250).run(context.Background(), 3, writer); err != nil {
		t.Fatalf("run: %v", err)
	}

	decoder := codec.NewDecoder(&buffer)
	for sequence := 0; sequence < 3; sequence++ {
		var got sample
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("decoding sample %d: %v", sequence, err)
		}
		want := sample{
			Sequence: sequence,
			Now:      instant.FromUnixNanos(2000),
			Recent:   instant.FromUnixNanos(1250),
			Lag:      750,
		}
		if got != want {
			t.Fatalf("sample %d = %+v, want %+v", sequence, got, want)
		}
	}
	if buffer.Len() != 0 {
		t.Fatalf("%d trailing bytes after 3 samples", buffer.Len())
	}
}

func TestSamplerCBORDiagnostic(t *testing.T) {
	var buffer bytes.Buffer
	writer, err := newSampleWriter(&buffer, config.FormatCBOR)
	if err != nil {
		t.Fatalf("newSampleWriter: %v", err)
	}
	if _, err := newTestSampler(1500, 1000).run(context.Background(), 1, writer); err != nil {
		t.Fatalf("run: %v", err)
	}

	diagnostic, err := codec.Diagnose(buffer.Bytes())
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	want := `{"now": "1500", "lag_ns": 500, "recent": "1000", "sequence": 0}`
	if diagnostic != want {
		t.Fatalf("Diagnose = %s, want %s", diagnostic, want)
	}
}

func TestSamplerText(t *testing.T) {
	var buffer bytes.Buffer
	writer, err := newSampleWriter(&buffer, config.FormatText)
	if err != nil {
		t.Fatalf("newSampleWriter: %v", err)
	}
	if _, err := newTestSampler(1500, 1000).run(context.Background(), 1, writer); err != nil {
		t.Fatalf("run: %v", err)
	}

	want := "   0  now=1970-01-01T00:00:00.0000015Z  recent=1000  lag=500ns\n"
	if buffer.String() != want {
		t.Fatalf("text output = %q, want %q", buffer.String(), want)
	}
}

func TestSamplerUnpopulatedCacheHasNoLag(t *testing.T) {
	var buffer bytes.Buffer
	writer, _ := newSampleWriter(&buffer, config.FormatJSON)
	if _, err := newTestSampler(1500, 0).run(context.Background(), 1, writer); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(buffer.String(), `"lag_ns":0`) {
		t.Fatalf("output %q, want lag_ns 0 for an unpopulated cache", buffer.String())
	}
}

func TestSamplerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buffer bytes.Buffer
	writer, _ := newSampleWriter(&buffer, config.FormatJSON)
	taken, err := newTestSampler(1, 1).run(ctx, 10, writer)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("run error = %v, want context.Canceled", err)
	}
	if taken != 0 || buffer.Len() != 0 {
		t.Fatalf("run took %d samples (%d bytes) after cancel, want none", taken, buffer.Len())
	}
}

func TestBuildSourceSystem(t *testing.T) {
	source, err := buildSource(context.Background(), config.Default().Source, clock.Real(), discardLogger())
	if err != nil {
		t.Fatalf("buildSource: %v", err)
	}
	if _, ok := source.(*clocksource.SystemSource); !ok {
		t.Fatalf("buildSource returned %T, want *clocksource.SystemSource", source)
	}
}

func TestBuildSourceNTPResyncs(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queries := make(chan string, 8)
	query := func(server string, options ntp.QueryOptions) (*ntp.Response, error) {
		queries <- server
		return &ntp.Response{ClockOffset: 250 * time.Millisecond}, nil
	}

	cfg := config.Default().Source
	cfg.Kind = config.SourceNTP
	cfg.NTP.Server = "time.example.test"
	cfg.NTP.SyncInterval = time.Minute

	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	source, err := buildSourceWithQuery(ctx, cfg, fake, discardLogger(), query)
	if err != nil {
		t.Fatalf("buildSource: %v", err)
	}
	ntpSource, ok := source.(*clocksource.NTPSource)
	if !ok {
		t.Fatalf("buildSource returned %T, want *clocksource.NTPSource", source)
	}

	if server := testutil.RequireReceive(t, queries, 5*time.Second, "initial sync"); server != "time.example.test" {
		t.Fatalf("initial sync queried %q, want time.example.test", server)
	}
	if got := ntpSource.Offset(); got != 250*time.Millisecond {
		t.Fatalf("Offset() after initial sync = %v, want 250ms", got)
	}

	fake.WaitForTickers(1)
	fake.Advance(time.Minute)
	testutil.RequireReceive(t, queries, 5*time.Second, "resync after one interval")
}

func TestBuildSourceNTPStartsUncorrectedOnFailure(t *testing.T) {
	query := func(server string, options ntp.QueryOptions) (*ntp.Response, error) {
		return nil, errors.New("network unreachable")
	}

	cfg := config.Default().Source
	cfg.Kind = config.SourceNTP
	cfg.NTP.SyncInterval = 0

	fake := clock.Fake(time.Unix(0, 0))
	source, err := buildSourceWithQuery(context.Background(), cfg, fake, discardLogger(), query)
	if err != nil {
		t.Fatalf("buildSource: %v", err)
	}
	if got := source.(*clocksource.NTPSource).Offset(); got != 0 {
		t.Fatalf("Offset() after failed sync = %v, want 0", got)
	}
	if running := fake.RunningTickers(); running != 0 {
		t.Fatalf("RunningTickers() = %d with resync disabled, want 0", running)
	}
}

func TestMetricsServer(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "monotime_probe_test_total",
		Help: "Test counter.",
	})
	registry.MustRegister(counter)
	counter.Inc()

	server, err := startMetricsServer("127.0.0.1:0", registry, discardLogger())
	if err != nil {
		t.Fatalf("startMetricsServer: %v", err)
	}

	response, err := http.Get("http://" + server.Addr().String() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, err := io.ReadAll(response.Body)
	response.Body.Close()
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if response.StatusCode != http.StatusOK {
		t.Fatalf("GET /metrics status = %d, want 200", response.StatusCode)
	}
	if !strings.Contains(string(body), "monotime_probe_test_total 1") {
		t.Fatalf("metrics body missing counter:\n%s", body)
	}

	if err := server.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestStartMetricsServerRejectsBadAddress(t *testing.T) {
	if _, err := startMetricsServer("not-an-address", prometheus.NewRegistry(), discardLogger()); err == nil {
		t.Fatal("startMetricsServer accepted an invalid address")
	}
}
