package linkcheckcmd

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.brendoncarroll.net/stdctx/logctx"

	"go.linkcheck.dev/linkcheck/pkg/transport"
)

func newEchoCmd() *cobra.Command {
	var serialPort string
	var configPath string
	c := &cobra.Command{
		Use:   "echo [listen_addr]",
		Short: "echo starts a server which echos all bytes it receives",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cf := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer cf()
			if serialPort != "" {
				cfg := DefaultConfig()
				if configPath != "" {
					loaded, err := LoadConfig(configPath)
					if err != nil {
						return err
					}
					cfg = *loaded
				}
				port, err := transport.OpenSerial(serialPort, cfg.Serial.Port)
				if err != nil {
					return err
				}
				go func() {
					<-ctx.Done()
					port.Close()
				}()
				logctx.Infof(ctx, "echoing on %s", serialPort)
				n, err := transport.Echo(port)
				logctx.Infof(ctx, "echoed %d bytes", n)
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			addr := "127.0.0.1:7007"
			if len(args) > 0 {
				addr = args[0]
			}
			l, err := net.Listen("tcp", addr)
			if err != nil {
				return err
			}
			logctx.Infof(ctx, "echoing on %v", l.Addr())
			if err := transport.ServeEcho(ctx, l); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
	c.Flags().StringVar(&serialPort, "serial", "", "echo on this serial port instead of listening for tcp connections")
	c.Flags().StringVar(&configPath, "config", "", "--config=./path/to/config.yml")
	return c
}
