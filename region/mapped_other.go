//go:build !unix

package region

// Mapped is unavailable on this platform.
type Mapped struct{}

// NewMapped always fails with ErrUnsupported on this platform.
func NewMapped(...Option) (*Mapped, error) {
	return nil, ErrUnsupported
}

// Sbrk implements Region.
func (*Mapped) Sbrk(int) (Addr, error) { return 0, ErrUnsupported }

// Base implements Region.
func (*Mapped) Base() Addr { return 0 }

// Bytes implements Region.
func (*Mapped) Bytes() []byte { return nil }

// Close is a no-op.
func (*Mapped) Close() error { return nil }
