package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var thresholdCmd = &cobra.Command{
	Use:     "threshold",
	Aliases: []string{"max"},
	Short:   "show the maximum distance (AU) an approach may have to be listed",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		pipeline, cleanup, err := openSession(cmd, false)
		if err != nil {
			return err
		}
		defer cleanup()

		t, err := pipeline.Threshold()
		if err != nil {
			return fmt.Errorf("read threshold: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatFloat(float64(t), 'g', -1, 64))
		return nil
	},
}

var thresholdSetCmd = &cobra.Command{
	Use:   "set <au>",
	Short: "store a new maximum distance; anything not a positive number stores 0.05",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline, cleanup, err := openSession(cmd, false)
		if err != nil {
			return err
		}
		defer cleanup()

		t, err := pipeline.SetThresholdText(args[0])
		if err != nil {
			return fmt.Errorf("save threshold: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "max %s AU\n", strconv.FormatFloat(float64(t), 'g', -1, 64))
		return nil
	},
}

func init() {
	thresholdCmd.AddCommand(thresholdSetCmd)
	rootCmd.AddCommand(thresholdCmd)
}
