// Package logger builds the slog loggers used by heapctl.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// EnvVar enables debug logging when set to a non-empty value other than a
// level name; a level name ("debug", "info", "warn", "error") selects it.
const EnvVar = "FENCEHEAP_LOG"

// L is the global logger instance. It discards all output until Init runs.
var L = slog.New(slog.NewTextHandler(io.Discard, nil))

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Output  io.Writer  // Defaults to os.Stderr
	JSON    bool       // JSON lines instead of logfmt-style text
	Level   slog.Level // Minimum level. Default: LevelInfo
}

// Init configures L from opts and returns it.
func Init(opts Options) *slog.Logger {
	if !opts.Enabled {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return L
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	ho := &slog.HandlerOptions{Level: opts.Level}
	if opts.JSON {
		L = slog.New(slog.NewJSONHandler(out, ho))
	} else {
		L = slog.New(slog.NewTextHandler(out, ho))
	}
	return L
}

// FromEnv applies EnvVar on top of opts: a set variable enables logging and
// may pick the level.
func FromEnv(opts Options) Options {
	v := strings.TrimSpace(os.Getenv(EnvVar))
	if v == "" {
		return opts
	}
	opts.Enabled = true
	if lvl, ok := ParseLevel(v); ok {
		opts.Level = lvl
	} else {
		opts.Level = slog.LevelDebug
	}
	return opts
}

// ParseLevel maps a level name to its slog.Level.
func ParseLevel(name string) (slog.Level, bool) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return 0, false
	}
	return lvl, true
}
