package linkcheckcmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"
)

var ctx = func() context.Context {
	ctx := context.Background()
	l, _ := zap.NewProduction()
	ctx = logctx.NewContext(ctx, l)
	return ctx
}()

func Execute() error {
	return NewRootCmd().Execute()
}

func NewRootCmd() *cobra.Command {
	c := &cobra.Command{
		Use:          "linkcheck",
		Short:        "linkcheck: echo tests for serial and bluetooth links",
		SilenceUsage: true,
	}
	c.AddCommand(newRFCOMMCmd())
	c.AddCommand(newTCPCmd())
	c.AddCommand(newSerialCmd())
	c.AddCommand(newEchoCmd())
	c.AddCommand(newLookupCmd())
	c.AddCommand(newPortsCmd())
	c.AddCommand(newCreateConfigCmd())
	return c
}
