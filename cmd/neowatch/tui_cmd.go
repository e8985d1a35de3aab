package main

import (
	"github.com/samvad-hq/neowatch/internal/ui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "interactive table (r refresh, d diagnostic, t edit max AU, q quit)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		pipeline, cleanup, err := openSession(cmd, true)
		if err != nil {
			return err
		}
		defer cleanup()

		return ui.Run(cmd.Context(), pipeline)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
