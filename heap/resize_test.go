package heap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/fenceheap/heap"
)

func Test_Resize_NilAllocates(t *testing.T) {
	h, r := newHeap(t, 4096)
	p, err := h.Resize(heap.Nil, 32)
	require.NoError(t, err)
	assert.Equal(t, heap.PointerValid, h.Classify(p))
	assert.Len(t, h.Payload(p), 32)
	requireHealthy(t, h, r)
}

func Test_Resize_ZeroReleases(t *testing.T) {
	h, r := newHeap(t, 4096)
	keep := h.Malloc(8)
	p := h.Malloc(32)
	h.Malloc(8)

	assert.Zero(t, h.Realloc(p, 0))
	assert.Equal(t, heap.PointerUnallocated, h.Classify(p))
	assert.Equal(t, heap.PointerValid, h.Classify(keep))
	requireHealthy(t, h, r)
}

func Test_Resize_RejectsNonPayloadPointer(t *testing.T) {
	h, r := newHeap(t, 4096)
	p := h.Malloc(32)
	want := fill(t, h, p, 1)

	for _, bad := range []heap.Addr{p + 1, p - 1, chunkAddr(p), p + 4096} {
		_, err := h.Resize(bad, 64)
		require.ErrorIs(t, err, heap.ErrBadPointer, "addr %s", bad)
		assert.Zero(t, h.Realloc(bad, 64))
	}
	assert.Equal(t, want, h.Payload(p))
	requireHealthy(t, h, r)
}

func Test_Resize_ShrinkInPlace(t *testing.T) {
	h, r := newHeap(t, 4096)
	p := h.Malloc(100)
	next := h.Malloc(10)
	want := fill(t, h, p, 7)
	_, endBefore := h.Bounds()

	q := h.Realloc(p, 40)
	require.Equal(t, p, q)
	assert.Equal(t, want[:40], h.Payload(q))
	assert.Equal(t, heap.PointerInsideFences, h.Classify(p+40))
	assert.Equal(t, heap.PointerUnallocated, h.Classify(p+40+heap.FenceSize), "cut-off bytes are dead space")
	assert.Equal(t, 40, h.LargestUsedBlockSize())
	assert.Equal(t, heap.PointerValid, h.Classify(next))

	_, endAfter := h.Bounds()
	assert.Equal(t, endBefore, endAfter, "shrinking never gives bytes back")
	requireHealthy(t, h, r)
}

func Test_Resize_GrowTail(t *testing.T) {
	h, r := newHeap(t, 4096)
	p := h.Malloc(10)
	want := fill(t, h, p, 3)

	q := h.Realloc(p, 100)
	require.Equal(t, p, q)
	assert.Equal(t, want, h.Payload(q)[:10])

	_, end := h.Bounds()
	assert.Equal(t, chunkAddr(p)+heap.Overhead+100, end)
	requireHealthy(t, h, r)
}

func Test_Resize_GrowTailUsesDeadSpaceFirst(t *testing.T) {
	h, r := newHeap(t, 4096)
	p := h.Malloc(100)
	require.Equal(t, p, h.Realloc(p, 20))
	_, end := h.Bounds()

	require.Equal(t, p, h.Realloc(p, 80))
	_, after := h.Bounds()
	assert.Equal(t, end, after, "no growth while the dead space suffices")

	require.Equal(t, p, h.Realloc(p, 130))
	_, after = h.Bounds()
	assert.Equal(t, end+30, after)
	requireHealthy(t, h, r)
}

func Test_Resize_GrowTailExhaustion(t *testing.T) {
	h, r := newHeap(t, 200)
	p := h.Malloc(100)
	want := fill(t, h, p, 9)

	_, err := h.Resize(p, 200)
	require.ErrorIs(t, err, heap.ErrNoSpace)
	assert.Equal(t, want, h.Payload(p))
	requireHealthy(t, h, r)
}

func Test_Resize_AbsorbsFreeNeighbor(t *testing.T) {
	h, r := newHeap(t, 4096)
	a := h.Malloc(100)
	b := h.Malloc(100)
	c := h.Malloc(10)
	want := fill(t, h, a, 5)
	h.Free(b)
	_, end := h.Bounds()

	// Gap from a to c is 2*(Overhead+100); a can hold up to 200+Overhead.
	q := h.Realloc(a, 200+heap.Overhead)
	require.Equal(t, a, q)
	assert.Equal(t, want, h.Payload(q)[:100])
	assert.Equal(t, 2, chunkCount(h))
	assert.Equal(t, heap.PointerValid, h.Classify(c))

	_, after := h.Bounds()
	assert.Equal(t, end, after)
	requireHealthy(t, h, r)
}

func Test_Resize_MovesWhenNeighborTooSmall(t *testing.T) {
	h, r := newHeap(t, 4096)
	a := h.Malloc(100)
	b := h.Malloc(100)
	h.Malloc(10)
	want := fill(t, h, a, 11)
	h.Free(b)

	q := h.Realloc(a, 200+heap.Overhead+1)
	require.NotZero(t, q)
	require.NotEqual(t, a, q)
	assert.Equal(t, want, h.Payload(q)[:100])

	// a and b merged back into one free chunk in front.
	assert.Equal(t, heap.PointerUnallocated, h.Classify(a))
	assert.Equal(t, 3, chunkCount(h))
	requireHealthy(t, h, r)
}

func Test_Resize_MovesWhenNeighborLive(t *testing.T) {
	h, r := newHeap(t, 4096)
	a := h.Malloc(16)
	b := h.Malloc(16)
	want := fill(t, h, a, 1)

	q := h.Realloc(a, 17)
	require.NotZero(t, q)
	assert.Greater(t, q, b)
	assert.Equal(t, want, h.Payload(q)[:16])
	assert.Equal(t, heap.PointerUnallocated, h.Classify(a))
	requireHealthy(t, h, r)
}

func Test_Resize_MoveExhaustionKeepsOriginal(t *testing.T) {
	h, r := newHeap(t, 2*heap.Overhead+40)
	a := h.Malloc(16)
	h.Malloc(16)
	want := fill(t, h, a, 2)

	_, err := h.Resize(a, 64)
	require.ErrorIs(t, err, heap.ErrNoSpace)
	assert.Equal(t, want, h.Payload(a))
	requireHealthy(t, h, r)
}

func Test_Resize_RoundTripContent(t *testing.T) {
	h, r := newHeap(t, 1<<16)
	p := h.Malloc(50)
	other := h.Malloc(5)
	want := fill(t, h, p, 0x40)

	for _, n := range []int{80, 10, 300, 7, 50} {
		p = h.Realloc(p, n)
		require.NotZero(t, p, "resize to %d", n)
		got := h.Payload(p)
		require.Len(t, got, n)
		k := min(len(want), n)
		require.Equal(t, want[:k], got[:k], "resize to %d", n)
		want = fill(t, h, p, byte(n))
		requireHealthy(t, h, r)
	}
	assert.Equal(t, heap.PointerValid, h.Classify(other))
}
