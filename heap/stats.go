package heap

import "iter"

// LargestUsedBlockSize returns the largest payload size among live chunks,
// or 0 when the heap is empty or fails validation.
func (h *Heap) LargestUsedBlockSize() int {
	if h.Validate() != StatusOK {
		return 0
	}
	var largest uint64
	for c := h.head; c != Nil; {
		hd := h.header(c)
		if !hd.isFree() && hd.size > largest {
			largest = hd.size
		}
		c = hd.next
	}
	return int(largest)
}

// ChunkInfo is a decoded chunk header.
type ChunkInfo struct {
	Addr  Addr
	Prev  Addr
	Next  Addr
	Size  uint64
	State uint64 // raw free field; 0 live, 1 free
}

// Free reports whether the chunk is marked free.
func (ci ChunkInfo) Free() bool { return ci.State == stateFree }

// Payload returns the payload start address.
func (ci ChunkInfo) Payload() Addr { return payloadOf(ci.Addr) }

// End returns one past the trailing fence.
func (ci ChunkInfo) End() Addr { return ci.Addr + Overhead + Addr(ci.Size) }

// Chunks walks the chain from the head. It does not validate the heap and
// stops at the first header it cannot read or link that does not ascend, so
// it is safe on a corrupted heap.
func (h *Heap) Chunks() iter.Seq[ChunkInfo] {
	return func(yield func(ChunkInfo) bool) {
		for c := h.head; c != Nil; {
			hd, ok := h.readHeader(c)
			if !ok {
				return
			}
			if !yield(ChunkInfo{Addr: c, Prev: hd.prev, Next: hd.next, Size: hd.size, State: hd.free}) {
				return
			}
			if hd.next != Nil && hd.next <= c {
				return
			}
			c = hd.next
		}
	}
}

// Stats summarizes the heap.
type Stats struct {
	Status       Status
	Chunks       int
	UsedChunks   int
	FreeChunks   int
	UsedBytes    uint64 // payload bytes of live chunks
	FreeBytes    uint64 // payload bytes of free chunks
	OverheadSize uint64 // header and fence bytes of all chunks
	RegionSize   uint64 // end - start
	LargestUsed  int
}

// Stats walks the chain and returns counters. It works on a corrupted heap;
// Status tells the caller whether the numbers can be trusted.
func (h *Heap) Stats() Stats {
	st := Stats{Status: h.Validate(), RegionSize: uint64(h.end - h.start)}
	for ci := range h.Chunks() {
		st.Chunks++
		st.OverheadSize += Overhead
		if ci.Free() {
			st.FreeChunks++
			st.FreeBytes += ci.Size
			continue
		}
		st.UsedChunks++
		st.UsedBytes += ci.Size
	}
	st.LargestUsed = h.LargestUsedBlockSize()
	return st
}

// Payload returns the payload of the live block at ptr, exactly as long as
// the block. It returns nil for anything that is not a valid payload start.
// The slice is invalidated by any later call that may move region memory.
func (h *Heap) Payload(ptr Addr) []byte {
	if h.Classify(ptr) != PointerValid {
		return nil
	}
	b, _ := h.view(ptr, int(h.header(chunkOf(ptr)).size))
	return b
}

// Bytes returns the raw managed bytes [addr, addr+n) regardless of chunk
// boundaries, so a caller can reach fences and headers.
func (h *Heap) Bytes(addr Addr, n int) ([]byte, bool) {
	return h.view(addr, n)
}
