package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/joshuapare/fenceheap/internal/logger"
	"github.com/joshuapare/fenceheap/internal/script"
	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

var (
	runOut   string
	runWatch bool
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().StringVar(&runOut, "out", "", "Write the JSON report to this file")
	cmd.Flags().BoolVar(&runWatch, "watch", false, "Run again whenever the script changes")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <script>",
		Short: "Run a scenario file",
		Long: `The run command executes a HuJSON scenario and reports every step.
The script's region is used unless --region or --limit is given.

Example:
  heapctl run scenarios/overrun.hujson
  heapctl run overrun.hujson --json
  heapctl run overrun.hujson --out report.json --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			override := cmd.Flags().Changed("region") || cmd.Flags().Changed("limit")
			if runWatch {
				return watchScript(cmd.Context(), cmd.OutOrStdout(), args[0], override)
			}
			ok, err := runScript(cmd.OutOrStdout(), args[0], override)
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

// runScript loads, runs and reports one scenario. It returns false when any
// step failed.
func runScript(w io.Writer, path string, override bool) (bool, error) {
	s, err := script.Load(path)
	if err != nil {
		return false, err
	}
	if override {
		s.Region = regionSpec()
	}
	rep, err := script.Run(s, script.WithLogger(logger.L))
	if err != nil {
		return false, err
	}

	if runOut != "" {
		if err := writeReport(runOut, rep); err != nil {
			return false, err
		}
	}
	if jsonOut {
		if err := printJSON(w, rep); err != nil {
			return false, err
		}
	} else {
		printReport(w, filepath.Base(path), rep)
	}
	return rep.OK(), nil
}

// writeReport replaces path with the JSON report in one step, so a reader
// never sees a partial report.
func writeReport(path string, rep *script.Report) error {
	var buf bytes.Buffer
	if err := printJSON(&buf, rep); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// watchScript runs path now and again after every write to it, until ctx is
// done. The directory is watched so editors that replace the file by rename
// are still seen.
func watchScript(ctx context.Context, w io.Writer, path string, override bool) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	rerun := func() {
		if _, err := runScript(w, abs, override); err != nil {
			fmt.Fprintln(w, "Error:", err)
		}
	}
	rerun()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			logger.L.Debug("script changed", "path", abs, "op", ev.Op.String())
			rerun()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, "watch:", err)
		}
	}
}
