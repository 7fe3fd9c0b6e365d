package linkcheckcmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.brendoncarroll.net/stdctx/logctx"

	"go.linkcheck.dev/linkcheck/pkg/echotest"
	"go.linkcheck.dev/linkcheck/pkg/payload"
	"go.linkcheck.dev/linkcheck/pkg/streamrx"
	"go.linkcheck.dev/linkcheck/pkg/transport"
)

type exactFlags struct {
	commonFlags
	maxLen      int
	maxOffset   int
	idleTimeout time.Duration
	reportBytes int64
}

func (f *exactFlags) register(c *cobra.Command) {
	f.commonFlags.register(c)
	d := DefaultConfig().Exact
	fs := c.Flags()
	fs.IntVar(&f.maxLen, "max-len", d.MaxLen, "maximum payload length")
	fs.IntVar(&f.maxOffset, "max-offset", d.MaxOffset, "maximum payload offset into the random pool")
	fs.DurationVar(&f.idleTimeout, "idle-timeout", d.IdleTimeout, "fail when no data arrives for this long")
	fs.Int64Var(&f.reportBytes, "report-bytes", d.ReportBytes, "log the throughput every time this many bytes have been transferred")
}

func (f *exactFlags) load(c *cobra.Command) (*Config, error) {
	cfg, err := f.commonFlags.load(c)
	if err != nil {
		return nil, err
	}
	fs := c.Flags()
	if fs.Changed("max-len") {
		cfg.Exact.MaxLen = f.maxLen
	}
	if fs.Changed("max-offset") {
		cfg.Exact.MaxOffset = f.maxOffset
	}
	if fs.Changed("idle-timeout") {
		cfg.Exact.IdleTimeout = f.idleTimeout
	}
	if fs.Changed("report-bytes") {
		cfg.Exact.ReportBytes = f.reportBytes
	}
	return cfg, cfg.Validate()
}

func runExact(cmd *cobra.Command, f *exactFlags, cfg *Config, conn transport.Conn) error {
	spec := cfg.Exact
	rng := newRand(cfg.Seed)
	pool := payload.NewRandomPool(rng, spec.MaxOffset, spec.MaxLen)
	v := &echotest.ExactVerifier{
		Generator:   payload.NewWindowGenerator(rng, pool),
		Receiver:    streamrx.New(spec.PollInterval),
		IdleTimeout: spec.IdleTimeout,
	}
	return runTest(ctx, testRun{
		Mode:        "exact",
		Transport:   conn,
		Verifier:    v,
		Options:     echotest.RunOptions{Count: f.count},
		ReportBytes: spec.ReportBytes,
		MetricsAddr: cfg.MetricsAddr,
		Out:         cmd.OutOrStdout(),
	})
}

func newRFCOMMCmd() *cobra.Command {
	f := &exactFlags{}
	var channel uint8
	c := &cobra.Command{
		Use:   "rfcomm <device_name>",
		Short: "runs a fixed length echo test against a bluetooth device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("channel") {
				cfg.Exact.Channel = channel
			}
			addr, err := cfg.Devices.Find(ctx, args[0])
			if err != nil {
				return err
			}
			conn, err := transport.DialRFCOMM(addr, cfg.Exact.Channel, cfg.Exact.PollSlice)
			if err != nil {
				return err
			}
			defer conn.Close()
			logctx.Infof(ctx, "connected to %v", addr)
			return runExact(cmd, f, cfg, conn)
		},
	}
	f.register(c)
	c.Flags().Uint8Var(&channel, "channel", DefaultConfig().Exact.Channel, "rfcomm channel")
	return c
}

func newTCPCmd() *cobra.Command {
	f := &exactFlags{}
	c := &cobra.Command{
		Use:   "tcp <host:port>",
		Short: "runs a fixed length echo test against a tcp echo server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			conn, err := transport.DialTCP(ctx, args[0], cfg.Exact.PollSlice)
			if err != nil {
				return err
			}
			defer conn.Close()
			logctx.Infof(ctx, "connected to %v", args[0])
			return runExact(cmd, f, cfg, conn)
		},
	}
	f.register(c)
	return c
}
