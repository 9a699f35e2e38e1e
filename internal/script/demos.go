package script

import (
	"embed"
	"io/fs"
	"path"
	"slices"
	"strings"
)

//go:embed scenarios/*.hujson
var scenarios embed.FS

// Demo is a built-in scenario.
type Demo struct {
	Name   string
	Script *Script
}

// Demos returns the built-in scenarios sorted by name.
func Demos() ([]Demo, error) {
	names, err := fs.Glob(scenarios, "scenarios/*.hujson")
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	out := make([]Demo, 0, len(names))
	for _, n := range names {
		data, err := scenarios.ReadFile(n)
		if err != nil {
			return nil, err
		}
		s, err := Parse(data)
		if err != nil {
			return nil, err
		}
		out = append(out, Demo{Name: strings.TrimSuffix(path.Base(n), ".hujson"), Script: s})
	}
	return out, nil
}
