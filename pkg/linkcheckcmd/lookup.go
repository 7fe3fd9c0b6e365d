package linkcheckcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"go.linkcheck.dev/linkcheck/pkg/transport"
)

func newLookupCmd() *cobra.Command {
	var configPath string
	c := &cobra.Command{
		Use:   "lookup [device_name]",
		Short: "prints the address of a device, or lists all known devices",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := DefaultConfig()
			if configPath != "" {
				loaded, err := LoadConfig(configPath)
				if err != nil {
					return err
				}
				cfg = *loaded
			}
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, name := range cfg.Devices.List() {
					fmt.Fprintf(out, "%s\t%v\n", name, cfg.Devices[name])
				}
				return nil
			}
			addr, err := cfg.Devices.Find(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, addr)
			return nil
		},
	}
	c.Flags().StringVar(&configPath, "config", "", "--config=./path/to/config.yml")
	return c
}

func newPortsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "lists the serial ports on this system",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := transport.ListSerialPorts()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
