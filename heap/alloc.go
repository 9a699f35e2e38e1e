package heap

import (
	"fmt"
	"math"

	"github.com/joshuapare/fenceheap/internal/buf"
)

// Alloc returns the payload address of a new block of size bytes.
//
// The first free chunk (in address order) with enough room is reused in
// place and its size set to exactly size; the rest of its capacity is not
// split off and stays unused until the chunk is freed again. Without a fit
// the region grows by size+Overhead and a chunk is appended at the tail.
func (h *Heap) Alloc(size int) (Addr, error) {
	if err := h.precheck("alloc"); err != nil {
		return Nil, err
	}
	if size < 1 {
		return Nil, fmt.Errorf("%w: got %d", ErrBadSize, size)
	}

	if c := h.firstFit(uint64(size)); c != Nil {
		hd := h.header(c)
		hd.size = uint64(size)
		hd.free = stateUsed
		h.writeHeader(c, hd)
		h.writeFences(c, hd.size)
		return payloadOf(c), nil
	}
	return h.appendChunk(size)
}

// AllocZeroed allocates count*elemSize bytes and zero-fills them. A product
// that overflows int fails with ErrOverflow rather than wrapping.
func (h *Heap) AllocZeroed(count, elemSize int) (Addr, error) {
	n, ok := buf.MulOverflowSafe(count, elemSize)
	if !ok {
		return Nil, fmt.Errorf("%w: %d * %d", ErrOverflow, count, elemSize)
	}
	p, err := h.Alloc(n)
	if err != nil {
		return Nil, err
	}
	clear(h.Payload(p))
	return p, nil
}

func (h *Heap) firstFit(size uint64) Addr {
	for c := h.head; c != Nil; {
		hd := h.header(c)
		if hd.isFree() && hd.size >= size {
			return c
		}
		c = hd.next
	}
	return Nil
}

// appendChunk grows the region and links a new live chunk after the tail.
func (h *Heap) appendChunk(size int) (Addr, error) {
	total, ok := buf.AddOverflowSafe(size, Overhead)
	if !ok {
		return Nil, fmt.Errorf("%w: %d bytes", ErrOverflow, size)
	}
	c, err := h.src.Sbrk(total)
	if err != nil {
		h.log.Debug("heap grow failed", "bytes", total, "err", err)
		return Nil, fmt.Errorf("%w: %w", ErrNoSpace, err)
	}
	if c != h.end {
		h.log.Warn("region break moved outside the heap", "expected", h.end, "got", c)
	}

	end, _ := chunkEnd(c, uint64(size))
	h.end = end
	h.writeHeader(c, header{prev: h.tail, size: uint64(size), free: stateUsed})
	if h.tail != Nil {
		h.setNext(h.tail, c)
	} else {
		h.head = c
	}
	h.tail = c
	h.writeFences(c, uint64(size))
	h.log.Debug("heap grow", "chunk", c, "bytes", total, "end", h.end)
	return payloadOf(c), nil
}

// Resize changes the size of the block at ptr and returns its (possibly new)
// address.
//
//   - size < 1 releases ptr and returns Nil.
//   - ptr == Nil allocates.
//   - shrinking happens in place; the cut-off bytes become dead space inside
//     the chunk until it is freed.
//   - the tail chunk grows in place, extending the region only as far as
//     needed.
//   - a chunk followed by a free chunk absorbs it when the gap up to the
//     chunk after that one is large enough.
//   - otherwise the block moves: allocate, copy, release.
//
// On failure the original block is left as it was.
func (h *Heap) Resize(ptr Addr, size int) (Addr, error) {
	if err := h.precheck("resize"); err != nil {
		return Nil, err
	}
	if size < 1 {
		return Nil, h.Release(ptr)
	}
	if ptr == Nil {
		return h.Alloc(size)
	}
	if t := h.Classify(ptr); t != PointerValid {
		return Nil, fmt.Errorf("%w: %s is %s", ErrBadPointer, ptr, t)
	}

	c := chunkOf(ptr)
	hd := h.header(c)
	want := uint64(size)
	switch {
	case want == hd.size:
		return ptr, nil
	case want < hd.size:
		hd.size = want
		h.writeHeader(c, hd)
		h.writeFences(c, want)
		return ptr, nil
	case hd.next == Nil:
		return h.growTail(c, hd, want)
	}

	if nb := h.header(hd.next); nb.isFree() {
		limit := h.end
		if nb.next != Nil {
			limit = nb.next
		}
		if end, ok := chunkEnd(c, want); ok && end <= limit {
			hd.next = nb.next
			if nb.next != Nil {
				h.setPrev(nb.next, c)
			} else {
				h.tail = c
			}
			hd.size = want
			h.writeHeader(c, hd)
			h.writeFences(c, want)
			return ptr, nil
		}
	}
	return h.move(ptr, hd.size, size)
}

// growTail extends the last chunk to want bytes. Dead space already between
// the chunk end and the region end is used before the region grows.
func (h *Heap) growTail(c Addr, hd header, want uint64) (Addr, error) {
	end, ok := chunkEnd(c, want)
	if !ok {
		return Nil, fmt.Errorf("%w: %d bytes", ErrOverflow, want)
	}
	if end > h.end {
		delta := uint64(end - h.end)
		if delta > uint64(math.MaxInt) {
			return Nil, fmt.Errorf("%w: %d bytes", ErrOverflow, want)
		}
		if _, err := h.src.Sbrk(int(delta)); err != nil {
			h.log.Debug("heap grow failed", "bytes", delta, "err", err)
			return Nil, fmt.Errorf("%w: %w", ErrNoSpace, err)
		}
		h.end = end
		h.log.Debug("heap grow tail", "chunk", c, "bytes", delta, "end", h.end)
	}
	hd.size = want
	h.writeHeader(c, hd)
	h.writeFences(c, want)
	return payloadOf(c), nil
}

// move reallocates into a fresh block and copies the old payload over.
func (h *Heap) move(ptr Addr, oldSize uint64, size int) (Addr, error) {
	np, err := h.Alloc(size)
	if err != nil {
		return Nil, err
	}
	src, _ := h.view(ptr, int(oldSize))
	copy(h.Payload(np), src)
	if err := h.Release(ptr); err != nil {
		return Nil, err
	}
	return np, nil
}
