package heap

import (
	"errors"
	"fmt"
)

var (
	// ErrUninitialized indicates the heap was never set up or was torn down.
	ErrUninitialized = errors.New("heap: not initialized")

	// ErrFenceViolation indicates a non-zero byte in the fence of a live chunk.
	ErrFenceViolation = errors.New("heap: fence violation")

	// ErrCorrupt indicates broken chunk headers or links.
	ErrCorrupt = errors.New("heap: corrupted")

	// ErrBadSize indicates a requested size below 1.
	ErrBadSize = errors.New("heap: size must be >= 1")

	// ErrBadPointer indicates an address that is not the start of a live payload.
	ErrBadPointer = errors.New("heap: not a live payload address")

	// ErrNoSpace indicates the region refused to grow.
	ErrNoSpace = errors.New("heap: region exhausted")

	// ErrOverflow indicates count * size does not fit in an int.
	ErrOverflow = errors.New("heap: size overflow")

	// ErrAlreadySetup indicates Setup on a heap that is still initialized.
	ErrAlreadySetup = errors.New("heap: already set up")
)

// CorruptionError describes the first integrity problem found by a scan.
type CorruptionError struct {
	Status Status
	Chunk  Addr // Nil when the problem is not tied to one chunk
	Reason string
}

func (e *CorruptionError) Error() string {
	if e.Chunk != Nil {
		return fmt.Sprintf("heap: %s at chunk %s: %s", e.Status, e.Chunk, e.Reason)
	}
	return fmt.Sprintf("heap: %s: %s", e.Status, e.Reason)
}

// Unwrap returns the sentinel matching the status.
func (e *CorruptionError) Unwrap() error {
	return e.Status.Err()
}
