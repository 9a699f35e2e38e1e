package heap

import "github.com/joshuapare/fenceheap/internal/buf"

// Header field offsets.
const (
	offPrev = 0
	offNext = 8
	offSize = 16
	offFree = 24
)

// Values of the free field. Anything else is corruption.
const (
	stateUsed uint64 = 0
	stateFree uint64 = 1
)

// header is the decoded form of a chunk header.
type header struct {
	prev Addr
	next Addr
	size uint64
	free uint64
}

func (hd header) isFree() bool { return hd.free == stateFree }

// payloadOf returns the payload start of the chunk at c.
func payloadOf(c Addr) Addr { return c + HeaderSize + FenceSize }

// chunkOf returns the chunk address owning payload start p.
func chunkOf(p Addr) Addr { return p - HeaderSize - FenceSize }

// chunkEnd returns one past the trailing fence of a chunk at c holding size
// payload bytes, or ok = false on wraparound.
func chunkEnd(c Addr, size uint64) (Addr, bool) {
	end, ok := buf.AddU64(uint64(c)+Overhead, size)
	if !ok || uint64(c)+Overhead < uint64(c) {
		return 0, false
	}
	return Addr(end), true
}

// view returns the managed bytes [addr, addr+n).
func (h *Heap) view(addr Addr, n int) ([]byte, bool) {
	if !h.ready || addr < h.start || n < 0 {
		return nil, false
	}
	end, ok := buf.AddU64(uint64(addr), uint64(n))
	if !ok || Addr(end) > h.end {
		return nil, false
	}
	data := h.src.Bytes()
	base := h.src.Base()
	if addr < base {
		return nil, false
	}
	off := uint64(addr - base)
	if off > uint64(len(data)) {
		return nil, false
	}
	return buf.Slice(data, int(off), n)
}

func (h *Heap) readHeader(c Addr) (header, bool) {
	b, ok := h.view(c, HeaderSize)
	if !ok {
		return header{}, false
	}
	return header{
		prev: Addr(buf.U64LE(b[offPrev:])),
		next: Addr(buf.U64LE(b[offNext:])),
		size: buf.U64LE(b[offSize:]),
		free: buf.U64LE(b[offFree:]),
	}, true
}

// header reads a chunk the caller already knows is in bounds. An unreadable
// header decodes as zero, which ends any walk.
func (h *Heap) header(c Addr) header {
	hd, _ := h.readHeader(c)
	return hd
}

func (h *Heap) writeHeader(c Addr, hd header) {
	b, ok := h.view(c, HeaderSize)
	if !ok {
		panic("heap: header write outside managed region at " + c.String())
	}
	buf.PutU64LE(b[offPrev:], uint64(hd.prev))
	buf.PutU64LE(b[offNext:], uint64(hd.next))
	buf.PutU64LE(b[offSize:], hd.size)
	buf.PutU64LE(b[offFree:], hd.free)
}

func (h *Heap) setPrev(c, prev Addr) {
	if b, ok := h.view(c+offPrev, 8); ok {
		buf.PutU64LE(b, uint64(prev))
	}
}

func (h *Heap) setNext(c, next Addr) {
	if b, ok := h.view(c+offNext, 8); ok {
		buf.PutU64LE(b, uint64(next))
	}
}

// fences returns the leading and trailing fence bytes of a chunk.
func (h *Heap) fences(c Addr, size uint64) (lead, trail []byte, ok bool) {
	lead, ok = h.view(c+HeaderSize, FenceSize)
	if !ok {
		return nil, nil, false
	}
	trail, ok = h.view(payloadOf(c)+Addr(size), FenceSize)
	if !ok {
		return nil, nil, false
	}
	return lead, trail, true
}

// writeFences zeroes both fences of the chunk at c for its current size.
func (h *Heap) writeFences(c Addr, size uint64) {
	lead, trail, ok := h.fences(c, size)
	if !ok {
		panic("heap: fence write outside managed region at " + c.String())
	}
	clear(lead)
	clear(trail)
}
