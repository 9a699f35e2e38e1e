// Package testutil holds heap fixtures shared by tests.
package testutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/fenceheap/heap"
	"github.com/joshuapare/fenceheap/region"
)

// SetupHeap creates a heap on a buffer region of the given limit and tears
// it down when the test ends.
//
// Example:
//
//	h, r := testutil.SetupHeap(t, 4096)
//	p := h.Malloc(10)
func SetupHeap(t testing.TB, limit int) (*heap.Heap, *region.Buffer) {
	t.Helper()
	r := region.NewBuffer(region.WithLimit(limit))
	h, err := heap.New(r)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Teardown() })
	return h, r
}

// Chunk is the shape of one chunk: payload size and whether it is free.
type Chunk struct {
	Size uint64
	Free bool
}

// Used is a live chunk of size bytes in an expected layout.
func Used(size uint64) Chunk { return Chunk{Size: size} }

// Free is a free chunk of size bytes in an expected layout.
func Free(size uint64) Chunk { return Chunk{Size: size, Free: true} }

// Layout returns the chain of h in address order.
func Layout(h *heap.Heap) []Chunk {
	var out []Chunk
	for ci := range h.Chunks() {
		out = append(out, Chunk{Size: ci.Size, Free: ci.Free()})
	}
	return out
}

// RequireLayout fails the test unless the chain of h matches want exactly.
func RequireLayout(t testing.TB, h *heap.Heap, want ...Chunk) {
	t.Helper()
	if diff := cmp.Diff(want, Layout(h)); diff != "" {
		t.Fatalf("chunk layout mismatch (-want +got):\n%s", diff)
	}
}
