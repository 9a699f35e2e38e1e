package region

// Buffer is a Region backed by a Go byte slice.
type Buffer struct {
	base Addr
	data []byte // len is the break, cap is the limit
}

// NewBuffer reserves a buffer region. The zero-delta break starts at the base.
func NewBuffer(opts ...Option) *Buffer {
	c := buildConfig(opts)
	return &Buffer{
		base: c.base,
		data: make([]byte, 0, c.limit),
	}
}

// Sbrk implements Region.
func (b *Buffer) Sbrk(delta int) (Addr, error) {
	brk := len(b.data)
	prev := b.base + Addr(brk)
	if delta == 0 {
		return prev, nil
	}
	next, err := move(brk, cap(b.data), delta)
	if err != nil {
		return 0, err
	}
	if next < brk {
		// Released bytes read back as zero when the break grows over them again.
		clear(b.data[next:brk])
	}
	b.data = b.data[:next]
	return prev, nil
}

// Base implements Region.
func (b *Buffer) Base() Addr { return b.base }

// Bytes implements Region.
func (b *Buffer) Bytes() []byte { return b.data }

// Limit returns the capacity of the buffer.
func (b *Buffer) Limit() int { return cap(b.data) }
