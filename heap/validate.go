package heap

import "github.com/joshuapare/fenceheap/internal/buf"

// Validate scans the whole chain and reports the first problem found.
//
// Chunks are checked in address order and the first bad chunk decides the
// result. Within a chunk the free flag and bounds are checked first, then
// the fences of a live chunk, then its links.
func (h *Heap) Validate() Status {
	if ce := h.scan(); ce != nil {
		return ce.Status
	}
	return StatusOK
}

// Check is Validate with details: it returns a *CorruptionError describing
// the first problem, or nil.
func (h *Heap) Check() error {
	if ce := h.scan(); ce != nil {
		return ce
	}
	return nil
}

func corrupted(c Addr, reason string) *CorruptionError {
	return &CorruptionError{Status: StatusCorrupted, Chunk: c, Reason: reason}
}

func (h *Heap) scan() *CorruptionError {
	if !h.ready {
		return &CorruptionError{Status: StatusUninitialized, Reason: "heap is not set up"}
	}
	if h.head == Nil || h.tail == Nil {
		if h.head != h.tail {
			return corrupted(Nil, "chain has only one end")
		}
		return nil
	}
	if h.head < h.start || h.tail < h.head {
		return corrupted(Nil, "chain ends out of order")
	}
	if _, ok := h.readHeader(h.tail); !ok {
		return corrupted(h.tail, "tail header outside managed region")
	}

	for c := h.head; c != Nil; {
		hd, ok := h.readHeader(c)
		if !ok {
			return corrupted(c, "header outside managed region")
		}
		if hd.free != stateUsed && hd.free != stateFree {
			return corrupted(c, "invalid free flag")
		}
		end, ok := chunkEnd(c, hd.size)
		if !ok || end > h.end {
			return corrupted(c, "chunk extends past region end")
		}
		if !hd.isFree() {
			lead, trail, _ := h.fences(c, hd.size)
			if !buf.AllZero(lead) || !buf.AllZero(trail) {
				return &CorruptionError{Status: StatusFenceViolation, Chunk: c, Reason: "fence bytes overwritten"}
			}
		}
		if c == h.head && hd.prev != Nil {
			return corrupted(c, "head has a previous chunk")
		}
		if hd.prev != Nil && (hd.prev < h.head || hd.prev > h.tail) {
			return corrupted(c, "prev link outside chain")
		}
		if hd.next != Nil && (hd.next < h.head || hd.next > h.tail) {
			return corrupted(c, "next link outside chain")
		}
		if hd.next != Nil && hd.next <= c {
			return corrupted(c, "next link not ascending")
		}
		if hd.prev != Nil && h.header(hd.prev).next != c {
			return corrupted(c, "prev chunk does not link back")
		}
		if hd.next != Nil && h.header(hd.next).prev != c {
			return corrupted(c, "next chunk does not link back")
		}
		if hd.next == Nil && c != h.tail {
			return corrupted(c, "chain ends before tail")
		}
		c = hd.next
	}
	return nil
}
