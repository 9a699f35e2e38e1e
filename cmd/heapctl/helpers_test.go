package main

import (
	"os"
	"path/filepath"
	"testing"
)

// writeScript writes a scenario into a temp dir and returns its path.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.hujson")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

// resetFlags restores the global flags after a test changes them.
func resetFlags(t *testing.T) {
	t.Helper()
	j, out, watch, kind, limit := jsonOut, runOut, runWatch, regionKind, regionLimit
	t.Cleanup(func() {
		jsonOut, runOut, runWatch, regionKind, regionLimit = j, out, watch, kind, limit
	})
}

const passingScript = `{
  "version": "1.0.0",
  "region": {"limit": 4096},
  "steps": [
    {"op": "malloc", "size": 100, "name": "a"},
    {"op": "classify", "ptr": "a", "expect": "valid"},
    {"op": "validate", "expect": "ok"},
  ],
}`

const failingScript = `{
  "version": "1.0.0",
  "steps": [
    {"op": "malloc", "size": 8, "name": "a"},
    {"op": "overrun", "ptr": "a", "count": 1},
    {"op": "validate", "expect": "ok"},
  ],
}`
