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

func newSerialCmd() *cobra.Command {
	var f commonFlags
	var (
		baud       int
		parity     string
		maxLen     int
		timeout    time.Duration
		delay      time.Duration
		terminator string
	)
	c := &cobra.Command{
		Use:   "serial <port>",
		Short: "runs a framed echo test over a serial port",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			spec := &cfg.Serial
			fs := cmd.Flags()
			if fs.Changed("baud") {
				spec.Port.BaudRate = baud
			}
			if fs.Changed("parity") {
				spec.Port.Parity = parity
			}
			if fs.Changed("max-len") {
				spec.MaxLen = maxLen
			}
			if fs.Changed("timeout") {
				spec.Timeout = timeout
			}
			if fs.Changed("delay") {
				spec.Delay = delay
			}
			if fs.Changed("terminator") {
				spec.Terminator = terminator
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			term, _ := spec.TerminatorByte()

			port, err := transport.OpenSerial(args[0], spec.Port)
			if err != nil {
				return err
			}
			defer port.Close()
			logctx.Infof(ctx, "opened %s at %d baud", args[0], spec.Port.BaudRate)

			v := &echotest.FrameVerifier{
				Generator: payload.NewFrameGenerator(newRand(cfg.Seed), spec.MaxLen),
				// reads already wait for the port's read timeout
				Receiver:   streamrx.New(-1),
				Terminator: term,
				ChunkMax:   spec.ChunkMax,
				Timeout:    spec.Timeout,
			}
			return runTest(ctx, testRun{
				Mode:        "frame",
				Transport:   port,
				Verifier:    v,
				Options:     echotest.RunOptions{Count: f.count, Delay: spec.Delay},
				MetricsAddr: cfg.MetricsAddr,
				Out:         cmd.OutOrStdout(),
			})
		},
	}
	f.register(c)
	d := DefaultConfig().Serial
	fs := c.Flags()
	fs.IntVar(&baud, "baud", d.Port.BaudRate, "baud rate")
	fs.StringVar(&parity, "parity", d.Port.Parity, "parity: none, even, odd, mark or space")
	fs.IntVar(&maxLen, "max-len", d.MaxLen, "maximum length of the repeated part of a frame")
	fs.DurationVar(&timeout, "timeout", d.Timeout, "how long to wait for each response")
	fs.DurationVar(&delay, "delay", d.Delay, "pause between messages")
	fs.StringVar(&terminator, "terminator", d.Terminator, "byte which ends each message")
	return c
}
