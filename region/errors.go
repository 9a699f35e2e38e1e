package region

import "errors"

var (
	// ErrNoMemory indicates the region cannot grow by the requested amount.
	ErrNoMemory = errors.New("region: out of memory")

	// ErrUnderflow indicates a shrink below the region base.
	ErrUnderflow = errors.New("region: shrink below base")

	// ErrClosed indicates the region was already released.
	ErrClosed = errors.New("region: closed")

	// ErrUnsupported indicates the implementation is not available on this platform.
	ErrUnsupported = errors.New("region: unsupported on this platform")
)
