package cmd

import (
	"github.com/spf13/cobra"

	"github.com/psantana5/timethis/internal/hostinfo"
)

var sysinfoCmd = &cobra.Command{
	Use:   "sysinfo",
	Short: "Show the host details attached to measurements",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printHost(cmd.OutOrStdout(), cfg.Output, hostinfo.Detect())
	},
}

func init() {
	rootCmd.AddCommand(sysinfoCmd)
}
