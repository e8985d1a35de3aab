package main

import (
	"fmt"
	"io"

	"github.com/samvad-hq/neowatch/internal/app"
	"github.com/samvad-hq/neowatch/internal/approach"
	"github.com/samvad-hq/neowatch/internal/domain"
	"github.com/spf13/cobra"
)

var outputFormat string

var refreshCmd = &cobra.Command{
	Use:     "refresh",
	Aliases: []string{"r"},
	Short:   "fetch the feed and print the close approaches",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTrigger(cmd, app.Refresh)
	},
}

var diagCmd = &cobra.Command{
	Use:     "diag",
	Aliases: []string{"diagnostic", "d"},
	Short:   "run the same fetch as refresh and report whether the feed is reachable",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runTrigger(cmd, app.Diagnostic)
	},
}

func init() {
	for _, c := range []*cobra.Command{refreshCmd, diagCmd} {
		c.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format: text or html")
		rootCmd.AddCommand(c)
	}
}

func runTrigger(cmd *cobra.Command, trigger app.Trigger) error {
	render, err := renderer(outputFormat)
	if err != nil {
		return err
	}

	pipeline, cleanup, err := openSession(cmd, false)
	if err != nil {
		return err
	}
	defer cleanup()

	report, out := pipeline.Run(cmd.Context(), app.TriggerState{}, trigger)
	stderr := cmd.ErrOrStderr()
	if out.Err != nil {
		fmt.Fprintln(stderr, out.Notice)
		fmt.Fprintln(stderr, out.State.Status)
		return reportedError{err: out.Err}
	}

	if err := render(cmd.OutOrStdout(), report.Rows); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	fmt.Fprintln(stderr, out.State.Status)
	return nil
}

func renderer(format string) (func(io.Writer, []domain.DisplayRow) error, error) {
	switch format {
	case "", "text":
		return approach.RenderText, nil
	case "html":
		return approach.RenderHTML, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want text or html)", format)
	}
}
