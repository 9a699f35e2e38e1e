package heap_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/fenceheap/heap"
	"github.com/joshuapare/fenceheap/internal/testutil"
	"github.com/joshuapare/fenceheap/region"
	"github.com/joshuapare/fenceheap/verify"
)

// base is the first address of a fresh buffer region.
const base = region.DefaultBase

// newHeap creates a heap on a buffer region of the given limit and tears it
// down when the test ends.
func newHeap(t testing.TB, limit int) (*heap.Heap, *region.Buffer) {
	t.Helper()
	return testutil.SetupHeap(t, limit)
}

// requireHealthy checks Validate and every external invariant.
func requireHealthy(t testing.TB, h *heap.Heap, r region.Region) {
	t.Helper()
	require.Equal(t, heap.StatusOK, h.Validate())
	require.NoError(t, verify.AllInvariants(h, r))
}

// fill writes a recognizable pattern into the payload at p.
func fill(t testing.TB, h *heap.Heap, p heap.Addr, seed byte) []byte {
	t.Helper()
	payload := h.Payload(p)
	require.NotNil(t, payload, "no payload at %s", p)
	for i := range payload {
		payload[i] = seed + byte(i)
	}
	return append([]byte(nil), payload...)
}

// chunkAddr returns the header address of the block at payload p.
func chunkAddr(p heap.Addr) heap.Addr {
	return p - heap.HeaderSize - heap.FenceSize
}

// pokeHeader overwrites one 8-byte header field of the chunk owning p.
func pokeHeader(t testing.TB, h *heap.Heap, p heap.Addr, field int, v uint64) {
	t.Helper()
	b, ok := h.Bytes(chunkAddr(p)+heap.Addr(field), 8)
	require.True(t, ok)
	binary.LittleEndian.PutUint64(b, v)
}

// Header field offsets, mirrored for tests.
const (
	fieldPrev = 0
	fieldNext = 8
	fieldSize = 16
	fieldFree = 24
)

func chunkCount(h *heap.Heap) int {
	return len(testutil.Layout(h))
}
