package linkcheckcmd

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.brendoncarroll.net/stdctx/logctx"
	"golang.org/x/sync/errgroup"

	"go.linkcheck.dev/linkcheck/pkg/echotest"
	"go.linkcheck.dev/linkcheck/pkg/linkcheck"
	"go.linkcheck.dev/linkcheck/pkg/tally"
)

// commonFlags are shared by every command which runs an echo test.
type commonFlags struct {
	configPath  string
	metricsAddr string
	count       int
	seed        int64
}

func (f *commonFlags) register(c *cobra.Command) {
	fs := c.Flags()
	fs.StringVar(&f.configPath, "config", "", "--config=./path/to/config.yml")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	fs.IntVar(&f.count, "count", 0, "stop after this many exchanges, 0 runs until interrupted")
	fs.Int64Var(&f.seed, "seed", 0, "seed for payload generation, 0 uses the clock")
}

// load reads the config file if one was given and applies the common flags on top of it.
func (f *commonFlags) load(c *cobra.Command) (*Config, error) {
	cfg := DefaultConfig()
	if f.configPath != "" {
		loaded, err := LoadConfig(f.configPath)
		if err != nil {
			return nil, err
		}
		logctx.Infof(ctx, "using config from path: %v", f.configPath)
		cfg = *loaded
	}
	fs := c.Flags()
	if fs.Changed("metrics-addr") {
		cfg.MetricsAddr = f.metricsAddr
	}
	if fs.Changed("seed") {
		cfg.Seed = f.seed
	}
	return &cfg, nil
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

type testRun struct {
	Mode        string
	Transport   linkcheck.Transport
	Verifier    echotest.Verifier
	Options     echotest.RunOptions
	ReportBytes int64
	MetricsAddr string
	Out         io.Writer
}

// runTest runs an echo test until it fails, reaches its count or the process is interrupted.
// The totals are written to r.Out in every case.
func runTest(ctx context.Context, r testRun) error {
	ctx, cf := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cf()

	reg := prometheus.NewRegistry()
	metrics, err := tally.NewMetrics(reg, r.Mode)
	if err != nil {
		return err
	}
	opts := []tally.Option{tally.WithMetrics(metrics)}
	if r.ReportBytes > 0 {
		opts = append(opts, tally.WithThreshold(r.ReportBytes, func(rate tally.Rate) {
			logctx.Infof(ctx, "%d bits/sec", int64(rate.BitsPerSecond()))
		}))
	}
	tl := tally.New(time.Now(), opts...)

	eg, ctx := errgroup.WithContext(ctx)
	if r.MetricsAddr != "" {
		eg.Go(func() error {
			return runMetricsServer(ctx, r.MetricsAddr, reg)
		})
	}
	var sum echotest.Summary
	eg.Go(func() error {
		defer cf()
		var err error
		sum, err = echotest.Run(ctx, r.Transport, r.Verifier, tl, r.Options)
		return err
	})
	err = eg.Wait()

	tot := tl.Final(time.Now())
	fmt.Fprintf(r.Out, "%d exchanges (%d failed), %d bytes transferred (%d bytes/sec)\n",
		sum.Exchanges, sum.Failures, tot.Bytes, int64(tot.BytesPerSecond()))
	return err
}
