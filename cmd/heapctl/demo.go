package main

import (
	"fmt"
	"io"

	"github.com/joshuapare/fenceheap/internal/logger"
	"github.com/joshuapare/fenceheap/internal/script"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newDemoCmd())
}

func newDemoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the built-in scenarios",
		Long: `The demo command runs the scenarios compiled into heapctl: first-fit
reuse, resize in place, release and classification, fence overrun
detection, and setup/teardown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			override := cmd.Flags().Changed("region") || cmd.Flags().Changed("limit")
			ok, err := runDemos(cmd.OutOrStdout(), override)
			if err != nil {
				return err
			}
			if !ok {
				return errStepsFailed
			}
			return nil
		},
	}
}

type demoResult struct {
	Name   string         `json:"name"`
	Report *script.Report `json:"report"`
}

func runDemos(w io.Writer, override bool) (bool, error) {
	demos, err := script.Demos()
	if err != nil {
		return false, err
	}
	ok := true
	results := make([]demoResult, 0, len(demos))
	for _, d := range demos {
		if override {
			d.Script.Region = regionSpec()
		}
		rep, err := script.Run(d.Script, script.WithLogger(logger.L))
		if err != nil {
			return false, fmt.Errorf("%s: %w", d.Name, err)
		}
		ok = ok && rep.OK()
		results = append(results, demoResult{Name: d.Name, Report: rep})
	}

	if jsonOut {
		return ok, printJSON(w, results)
	}
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printReport(w, r.Name, r.Report)
	}
	return ok, nil
}
