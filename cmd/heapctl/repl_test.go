package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/joshuapare/fenceheap/internal/script"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestREPL(t *testing.T) (*REPL, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	r, err := newREPL(&out, script.RegionSpec{Kind: "buffer", Limit: 4096})
	require.NoError(t, err)
	t.Cleanup(r.close)
	return r, &out
}

// run executes lines and returns what the last one printed.
func run(t *testing.T, r *REPL, out *bytes.Buffer, lines ...string) string {
	t.Helper()
	for _, l := range lines {
		out.Reset()
		require.False(t, r.exec(l), "line %q ended the loop", l)
	}
	return strings.TrimSpace(out.String())
}

func TestREPL_AllocFreeReuse(t *testing.T) {
	r, out := newTestREPL(t)
	assert.Equal(t, "p1 = 0x1030", run(t, r, out, "malloc 100"))
	assert.Equal(t, "p2 = 0x10D4", run(t, r, out, "malloc 50"))
	assert.Empty(t, run(t, r, out, "free p1"))
	assert.Equal(t, "p3 = 0x1030", run(t, r, out, "malloc 40"))
	assert.Equal(t, "valid", run(t, r, out, "classify p3"))
	assert.Equal(t, "inside-fences", run(t, r, out, "classify p2-1"))
	assert.Equal(t, "inside-data-block", run(t, r, out, "classify 0x10D5"))
	assert.Equal(t, "ok", run(t, r, out, "validate"))
}

func TestREPL_WriteAndRealloc(t *testing.T) {
	r, out := newTestREPL(t)
	run(t, r, out, "malloc 16", "malloc 4", "write p1 hello world")
	assert.Equal(t, "hello world", string(r.h.Payload(r.ptrs["p1"])[:11]))

	old := r.ptrs["p1"]
	got := run(t, r, out, "realloc p1 32")
	assert.True(t, strings.HasPrefix(got, "p1 = "), got)
	assert.NotEqual(t, old, r.ptrs["p1"])
	assert.Equal(t, "hello world", string(r.h.Payload(r.ptrs["p1"])[:11]))
	assert.Equal(t, "unallocated", run(t, r, out, "classify "+old.String()))
	assert.Equal(t, "32 bytes", run(t, r, out, "largest"))
}

func TestREPL_Overrun(t *testing.T) {
	r, out := newTestREPL(t)
	run(t, r, out, "malloc 16", "overrun p1 1")
	got := run(t, r, out, "validate")
	assert.True(t, strings.HasPrefix(got, "fence-violation"), got)
	assert.Equal(t, "heap-corrupted", run(t, r, out, "classify p1"))
	assert.Equal(t, "null", run(t, r, out, "malloc 8"))

	run(t, r, out, "reset")
	assert.Equal(t, "ok", run(t, r, out, "validate"))
	assert.Equal(t, "p1 = 0x1030", run(t, r, out, "malloc 8"))
}

func TestREPL_Errors(t *testing.T) {
	r, out := newTestREPL(t)
	assert.Contains(t, run(t, r, out, "sbrk 10"), "unknown command")
	assert.Contains(t, run(t, r, out, "malloc x"), "bad number")
	assert.Contains(t, run(t, r, out, "free ghost"), "unknown pointer")
	assert.Contains(t, run(t, r, out, "free 0x9999"), "error:")
	assert.Contains(t, run(t, r, out, "write null x"), "outside the heap")
}

func TestREPL_DumpStats(t *testing.T) {
	r, out := newTestREPL(t)
	assert.Equal(t, "(empty)", lastLine(run(t, r, out, "dump")))
	run(t, r, out, "malloc 10", "malloc 20", "free p1")
	dump := run(t, r, out, "dump")
	assert.Contains(t, dump, "free")
	assert.Contains(t, dump, "used")

	stats := run(t, r, out, "stats")
	assert.Contains(t, stats, "chunks:      2 (1 used, 1 free)")
	assert.Contains(t, stats, "overhead:    128 bytes")
}

func TestREPL_Quit(t *testing.T) {
	r, _ := newTestREPL(t)
	assert.True(t, r.exec("quit"))
	assert.True(t, r.exec("EXIT"))
}

func TestSkipFields(t *testing.T) {
	assert.Equal(t, "hello  world", skipFields("write p1 hello  world", 2))
	assert.Equal(t, "", skipFields("write p1", 2))
	assert.Equal(t, "x", skipFields("  write   r   x ", 2))
}

func lastLine(s string) string {
	lines := strings.Split(s, "\n")
	return lines[len(lines)-1]
}
