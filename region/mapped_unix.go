//go:build unix

package region

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Mapped is a Region backed by an anonymous private mapping. The whole limit
// is reserved up front; only touched pages consume memory.
type Mapped struct {
	mapping []byte // whole page-rounded mapping
	mem     []byte // mapping[:limit]
	base    Addr
	brk     int
	page    int
}

// NewMapped maps a region of the configured limit.
func NewMapped(opts ...Option) (*Mapped, error) {
	c := buildConfig(opts)
	page := unix.Getpagesize()
	size := (c.limit + page - 1) &^ (page - 1)
	if size == 0 {
		size = page
	}
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("region: mmap %d bytes: %w", size, err)
	}
	return &Mapped{
		mapping: mem,
		mem:     mem[:c.limit:c.limit],
		base:    Addr(uintptr(unsafe.Pointer(unsafe.SliceData(mem)))),
		page:    page,
	}, nil
}

// Sbrk implements Region.
func (m *Mapped) Sbrk(delta int) (Addr, error) {
	if m.mem == nil {
		return 0, ErrClosed
	}
	prev := m.Base() + Addr(m.brk)
	if delta == 0 {
		return prev, nil
	}
	next, err := move(m.brk, len(m.mem), delta)
	if err != nil {
		return 0, err
	}
	if next < m.brk {
		m.release(next, m.brk)
	}
	m.brk = next
	return prev, nil
}

// release zeroes [from, to) and returns the whole pages in it to the kernel.
func (m *Mapped) release(from, to int) {
	first := (from + m.page - 1) &^ (m.page - 1)
	last := to &^ (m.page - 1)
	if first >= last {
		clear(m.mem[from:to])
		return
	}
	clear(m.mem[from:first])
	clear(m.mem[last:to])
	// MADV_DONTNEED on a private anonymous mapping refills with zero pages.
	if err := unix.Madvise(m.mem[first:last], unix.MADV_DONTNEED); err != nil {
		clear(m.mem[first:last])
	}
}

// Base implements Region.
func (m *Mapped) Base() Addr {
	return m.base
}

// Bytes implements Region.
func (m *Mapped) Bytes() []byte {
	if m.mem == nil {
		return nil
	}
	return m.mem[:m.brk]
}

// Close unmaps the region. Calling Close twice is a no-op.
func (m *Mapped) Close() error {
	if m.mem == nil {
		return nil
	}
	err := unix.Munmap(m.mapping)
	m.mapping = nil
	m.mem = nil
	m.brk = 0
	return err
}
