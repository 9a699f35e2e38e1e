package region

import "fmt"

// Addr is an address inside a region's address space. Zero is never a valid
// region address.
type Addr uint64

// String formats the address as hex.
func (a Addr) String() string {
	return fmt.Sprintf("0x%X", uint64(a))
}

const (
	// DefaultBase is the first address handed out by a Buffer.
	DefaultBase Addr = 0x1000

	// DefaultLimit is the default capacity of a region (16 MiB).
	DefaultLimit = 16 << 20
)

// Region is the raw break-moving primitive.
//
// Sbrk moves the break by delta bytes and returns the break as it was before
// the call. A zero delta only reports the break. A failed call returns an
// error and leaves the break where it was.
type Region interface {
	Sbrk(delta int) (Addr, error)

	// Base is the address of Bytes()[0].
	Base() Addr

	// Bytes returns the live bytes [Base, break).
	Bytes() []byte
}

type config struct {
	base  Addr
	limit int
}

// Option configures a region.
type Option func(*config)

// WithLimit caps the number of bytes the region may hold.
func WithLimit(n int) Option {
	return func(c *config) {
		c.limit = n
	}
}

// WithBase sets the address of the first byte. Ignored by Mapped, which uses
// the address of the mapping.
func WithBase(base Addr) Option {
	return func(c *config) {
		c.base = base
	}
}

func buildConfig(opts []Option) config {
	c := config{base: DefaultBase, limit: DefaultLimit}
	for _, opt := range opts {
		opt(&c)
	}
	if c.base == 0 {
		c.base = DefaultBase
	}
	if c.limit < 0 {
		c.limit = 0
	}
	return c
}

// move validates delta against the current break and the limit and returns the
// new break offset.
func move(brk, limit, delta int) (int, error) {
	switch {
	case delta > 0 && delta > limit-brk:
		return 0, fmt.Errorf("%w: break=%d delta=%d limit=%d", ErrNoMemory, brk, delta, limit)
	case delta < 0 && -delta > brk:
		return 0, fmt.Errorf("%w: break=%d delta=%d", ErrUnderflow, brk, delta)
	}
	return brk + delta, nil
}
