package heap

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/joshuapare/fenceheap/region"
)

// Heap is one allocator instance over one region. The zero value is an
// uninitialized heap; every operation on it fails with StatusUninitialized
// until Setup succeeds.
type Heap struct {
	src region.Region
	log *slog.Logger

	start Addr // break captured at Setup
	end   Addr // one past the last managed byte; equals the region break
	head  Addr // lowest chunk, Nil when empty
	tail  Addr // highest chunk, Nil when empty
	ready bool
}

// Option configures a Heap.
type Option func(*Heap)

// WithLogger routes heap diagnostics to l. Heaps log nothing by default.
func WithLogger(l *slog.Logger) Option {
	return func(h *Heap) {
		if l != nil {
			h.log = l
		}
	}
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// New creates a heap and sets it up on src.
func New(src region.Region, opts ...Option) (*Heap, error) {
	h := &Heap{}
	if err := h.Setup(src, opts...); err != nil {
		return nil, err
	}
	return h, nil
}

// Setup captures the current break of src as the heap start. On failure the
// heap is left untouched.
func (h *Heap) Setup(src region.Region, opts ...Option) error {
	if h.ready {
		return ErrAlreadySetup
	}
	if src == nil {
		return fmt.Errorf("heap: setup: nil region")
	}
	brk, err := src.Sbrk(0)
	if err != nil {
		return fmt.Errorf("heap: setup: %w", err)
	}

	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = discard
	}
	h.src = src
	h.start = brk
	h.end = brk
	h.head = Nil
	h.tail = Nil
	h.ready = true
	h.log.Debug("heap setup", "start", brk)
	return nil
}

// Teardown gives every managed byte back to the region and resets the heap
// to uninitialized. Tearing down an uninitialized heap is a no-op.
func (h *Heap) Teardown() error {
	if !h.ready {
		return nil
	}
	if n := int(h.end - h.start); n > 0 {
		if _, err := h.src.Sbrk(-n); err != nil {
			return fmt.Errorf("heap: teardown: %w", err)
		}
	}
	h.log.Debug("heap teardown", "start", h.start, "released", h.end-h.start)
	log := h.log
	*h = Heap{log: log}
	return nil
}

// Initialized reports whether Setup has run and Teardown has not.
func (h *Heap) Initialized() bool {
	return h.ready
}

// Bounds returns the managed range [start, end).
func (h *Heap) Bounds() (start, end Addr) {
	return h.start, h.end
}

// precheck returns the first integrity problem, or nil when the heap is
// usable. Corruption is logged; an uninitialized heap is not.
func (h *Heap) precheck(op string) error {
	ce := h.scan()
	if ce == nil {
		return nil
	}
	if ce.Status != StatusUninitialized {
		h.log.Warn("heap refused operation", "op", op, "status", ce.Status, "chunk", ce.Chunk, "reason", ce.Reason)
	}
	return ce
}
