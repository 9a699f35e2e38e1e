// Package heap implements a first-fit heap allocator with overrun detection
// on top of a single break-moving region primitive.
//
// # Overview
//
// Every allocation is a chunk laid out inside the region bytes:
//
//	[header 32B][leading fence 16B][payload][trailing fence 16B]
//
// Headers hold little-endian prev/next addresses, the payload size and a
// free flag. Chunks form a doubly-linked list ordered by address. Fences of
// live chunks are zero; any other byte there means something wrote past a
// payload boundary.
//
// # Usage Example
//
//	h, err := heap.New(region.NewBuffer(region.WithLimit(1 << 20)))
//	if err != nil {
//	    return err
//	}
//	defer h.Teardown()
//
//	p := h.Malloc(100)
//	copy(h.Payload(p), "hello")
//
//	if st := h.Validate(); st != heap.StatusOK {
//	    return st.Err()
//	}
//	h.Free(p)
//
// # Allocation
//
// Alloc scans the chain for the first free chunk large enough and reuses it
// in place without splitting; otherwise it grows the region and appends a
// chunk at the tail. Resize shrinks in place, grows the tail in place, absorbs
// a free right neighbor, or falls back to allocate-copy-free.
//
// Release marks a chunk free, recomputes its size from the gap to its right
// neighbor, merges runs of free chunks and hands free trailing chunks back to
// the region.
//
// # Sentinel API
//
// Malloc, Calloc, Realloc and Free mirror Alloc, AllocZeroed, Resize and
// Release but report failure only as Nil, for callers that want the classic
// allocator contract. The error-returning forms wrap the package sentinels.
//
// # Integrity
//
// Every operation validates the whole chain first and refuses to run on a
// corrupt heap. Validate returns a Status, Check returns a *CorruptionError
// with the offending chunk, and Classify maps any address to a PointerType.
//
// # Thread Safety
//
// Heap instances are not thread-safe. Callers must serialize access
// externally. Calls into a Heap from within another call on the same Heap are
// not supported.
package heap
