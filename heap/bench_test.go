package heap_test

import (
	"strconv"
	"testing"

	"github.com/joshuapare/fenceheap/heap"
)

// BenchmarkMallocFree_Fragmented measures first-fit search over a chain of
// alternating live and free chunks.
func BenchmarkMallocFree_Fragmented(b *testing.B) {
	for _, chunks := range []int{16, 256, 2048} {
		b.Run(strconv.Itoa(chunks), func(b *testing.B) {
			h, _ := newHeap(b, 64<<20)
			ptrs := make([]heap.Addr, chunks)
			for i := range ptrs {
				ptrs[i] = h.Malloc(32)
			}
			for i := 0; i < chunks; i += 2 {
				h.Free(ptrs[i])
			}
			b.ResetTimer()
			for range b.N {
				p := h.Malloc(48)
				h.Free(p)
			}
		})
	}
}

// BenchmarkValidate measures a full integrity scan.
func BenchmarkValidate(b *testing.B) {
	h, _ := newHeap(b, 64<<20)
	for range 1024 {
		h.Malloc(64)
	}
	b.ResetTimer()
	for range b.N {
		if h.Validate() != heap.StatusOK {
			b.Fatal("heap invalid")
		}
	}
}
