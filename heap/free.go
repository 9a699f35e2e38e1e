package heap

import "fmt"

// Release frees the block whose payload starts at ptr. Any other address,
// including Nil, is rejected with ErrBadPointer.
//
// The chunk's size is recomputed from the gap to its right neighbor, which
// folds back any dead space left by shrinking or by reuse of a larger chunk.
// Adjacent free chunks are then merged and free chunks at the end of the
// chain are returned to the region.
func (h *Heap) Release(ptr Addr) error {
	switch t := h.Classify(ptr); t {
	case PointerValid:
	case PointerCorrupted:
		return h.precheck("release")
	default:
		return fmt.Errorf("%w: %s is %s", ErrBadPointer, ptr, t)
	}

	target := chunkOf(ptr)
	c := h.head
	for c != Nil && c != target {
		c = h.header(c).next
	}
	if c == Nil {
		return fmt.Errorf("%w: %s not in chain", ErrBadPointer, ptr)
	}

	hd := h.header(c)
	hd.free = stateFree
	if hd.next != Nil {
		hd.size = uint64(hd.next - c - Overhead)
	}
	h.writeHeader(c, hd)

	h.coalesce()
	return h.shrinkTrailing()
}

// coalesce merges every run of adjacent free chunks into its first chunk.
func (h *Heap) coalesce() {
	for c := h.head; c != Nil; {
		hd := h.header(c)
		merged := false
		for hd.isFree() && hd.next != Nil {
			nb := h.header(hd.next)
			if !nb.isFree() {
				break
			}
			hd.size += nb.size + Overhead
			hd.next = nb.next
			if nb.next != Nil {
				h.setPrev(nb.next, c)
			} else {
				h.tail = c
			}
			merged = true
		}
		if merged {
			h.writeHeader(c, hd)
		}
		c = hd.next
	}
}

// shrinkTrailing hands free chunks at the end of the chain back to the
// region. The region is cut at the end of the last live chunk, so dead space
// after it goes too.
func (h *Heap) shrinkTrailing() error {
	for h.tail != Nil {
		hd := h.header(h.tail)
		if !hd.isFree() {
			return nil
		}

		cut := h.start
		var prev header
		if hd.prev != Nil {
			prev = h.header(hd.prev)
			cut, _ = chunkEnd(hd.prev, prev.size)
		}
		if n := int(h.end - cut); n > 0 {
			if _, err := h.src.Sbrk(-n); err != nil {
				return fmt.Errorf("heap: release region bytes: %w", err)
			}
			h.log.Debug("heap shrink", "released", n, "end", cut)
		}
		h.end = cut

		if hd.prev == Nil {
			h.head = Nil
			h.tail = Nil
			return nil
		}
		prev.next = Nil
		h.writeHeader(hd.prev, prev)
		h.tail = hd.prev
	}
	return nil
}
