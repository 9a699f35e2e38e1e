package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joshuapare/fenceheap/heap"
	"github.com/joshuapare/fenceheap/internal/logger"
	"github.com/joshuapare/fenceheap/internal/script"
	"github.com/joshuapare/fenceheap/region"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose     bool
	jsonOut     bool
	regionKind  string
	regionLimit int
)

// errStepsFailed makes heapctl exit 1 without printing another message.
var errStepsFailed = errors.New("scenario has failed steps")

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Exercise a fenced first-fit heap",
	Long: `heapctl runs allocator scenarios against a fenced first-fit heap and
reports pointer classifications and integrity checks. Scenarios are HuJSON
files; the repl command drives a heap by hand.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger(cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log heap activity to stderr")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&regionKind, "region", "buffer", "Region backing the heap (buffer, mapped)")
	rootCmd.PersistentFlags().IntVar(&regionLimit, "limit", region.DefaultLimit, "Region size limit in bytes")
}

func execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errStepsFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func initLogger(w io.Writer) *slog.Logger {
	opts := logger.Options{Output: w, Level: slog.LevelInfo}
	if verbose {
		opts.Enabled = true
		opts.Level = slog.LevelDebug
	}
	return logger.Init(logger.FromEnv(opts))
}

// regionSpec returns the region selected by the global flags.
func regionSpec() script.RegionSpec {
	return script.RegionSpec{Kind: regionKind, Limit: regionLimit}
}

// openHeap sets up a heap on a fresh region. cleanup releases the region.
func openHeap(spec script.RegionSpec) (h *heap.Heap, src region.Region, cleanup func(), err error) {
	src, err = script.Open(spec)
	if err != nil {
		return nil, nil, nil, err
	}
	cleanup = func() {
		if c, ok := src.(io.Closer); ok {
			c.Close()
		}
	}
	h, err = heap.New(src, heap.WithLogger(logger.L))
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return h, src, cleanup, nil
}

// printJSON outputs data as indented JSON
func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
