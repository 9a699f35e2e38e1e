package heap

import (
	"strconv"

	"github.com/joshuapare/fenceheap/region"
)

// Addr is an address in the heap's region. Nil is the null address.
type Addr = region.Addr

// Nil is the null address returned by failed sentinel-style calls.
const Nil Addr = 0

const (
	// HeaderSize is the size of a chunk header: prev, next, size, free.
	HeaderSize = 32

	// FenceSize is the width of each zero-filled fence around a payload.
	FenceSize = 16

	// Overhead is the number of bytes a chunk needs beyond its payload.
	Overhead = HeaderSize + 2*FenceSize
)

// Status is the result of an integrity scan. The numeric values are stable.
type Status int

const (
	StatusOK             Status = 0
	StatusFenceViolation Status = 1
	StatusUninitialized  Status = 2
	StatusCorrupted      Status = 3
)

var statusNames = [...]string{
	StatusOK:             "ok",
	StatusFenceViolation: "fence-violation",
	StatusUninitialized:  "uninitialized",
	StatusCorrupted:      "corrupted",
}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "status(" + strconv.Itoa(int(s)) + ")"
}

// MarshalText encodes s by name.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Err returns the sentinel error for s, or nil for StatusOK.
func (s Status) Err() error {
	switch s {
	case StatusOK:
		return nil
	case StatusFenceViolation:
		return ErrFenceViolation
	case StatusUninitialized:
		return ErrUninitialized
	default:
		return ErrCorrupt
	}
}

// ParseStatus maps a status name back to its Status.
func ParseStatus(name string) (Status, bool) {
	for i, n := range statusNames {
		if n == name {
			return Status(i), true
		}
	}
	return 0, false
}

// PointerType classifies an address relative to the live chunks.
type PointerType int

const (
	PointerNull            PointerType = iota // the null address
	PointerCorrupted                          // heap failed validation
	PointerControlBlock                       // inside a chunk header
	PointerInsideFences                       // inside a leading or trailing fence
	PointerInsideDataBlock                    // inside a payload, past its first byte
	PointerUnallocated                        // not part of any live chunk
	PointerValid                              // first byte of a live payload
)

var pointerNames = [...]string{
	PointerNull:            "null",
	PointerCorrupted:       "heap-corrupted",
	PointerControlBlock:    "control-block",
	PointerInsideFences:    "inside-fences",
	PointerInsideDataBlock: "inside-data-block",
	PointerUnallocated:     "unallocated",
	PointerValid:           "valid",
}

func (t PointerType) String() string {
	if t >= 0 && int(t) < len(pointerNames) {
		return pointerNames[t]
	}
	return "pointer(" + strconv.Itoa(int(t)) + ")"
}

// MarshalText encodes t by name.
func (t PointerType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// ParsePointerType maps a pointer type name back to its PointerType.
func ParsePointerType(name string) (PointerType, bool) {
	for i, n := range pointerNames {
		if n == name {
			return PointerType(i), true
		}
	}
	return 0, false
}
