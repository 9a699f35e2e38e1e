package verify

import (
	"fmt"

	"github.com/joshuapare/fenceheap/heap"
	"github.com/joshuapare/fenceheap/internal/buf"
	"github.com/joshuapare/fenceheap/region"
)

// ValidationError describes one broken invariant.
type ValidationError struct {
	Type    string
	Message string
	Addr    heap.Addr // heap.Nil if not tied to a chunk
}

func (e *ValidationError) Error() string {
	if e.Addr != heap.Nil {
		return fmt.Sprintf("%s at %s: %s", e.Type, e.Addr, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants runs every check. r may be nil to skip the break check.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(h *heap.Heap, r region.Region) error {
	if err := Chain(h); err != nil {
		return err
	}
	if err := Fences(h); err != nil {
		return err
	}
	if err := Reclaimed(h); err != nil {
		return err
	}
	if r != nil {
		if err := Break(h, r); err != nil {
			return err
		}
	}
	return nil
}

func chunks(h *heap.Heap) []heap.ChunkInfo {
	var out []heap.ChunkInfo
	for ci := range h.Chunks() {
		out = append(out, ci)
	}
	return out
}

// Chain checks ordering, links, bounds and free flags.
func Chain(h *heap.Heap) error {
	if !h.Initialized() {
		return &ValidationError{Type: "Chain", Message: "heap not initialized"}
	}
	start, end := h.Bounds()
	cs := chunks(h)
	for i, ci := range cs {
		if ci.State > 1 {
			return &ValidationError{Type: "Chain", Message: fmt.Sprintf("free flag %d", ci.State), Addr: ci.Addr}
		}
		if ci.Addr < start {
			return &ValidationError{Type: "Chain", Message: fmt.Sprintf("chunk below heap start %s", start), Addr: ci.Addr}
		}
		if ci.End() > end || ci.End() < ci.Addr {
			return &ValidationError{Type: "Chain", Message: fmt.Sprintf("chunk end %s past heap end %s", ci.End(), end), Addr: ci.Addr}
		}
		if i == 0 && ci.Prev != heap.Nil {
			return &ValidationError{Type: "Chain", Message: "head has prev link", Addr: ci.Addr}
		}
		if i > 0 && ci.Prev != cs[i-1].Addr {
			return &ValidationError{Type: "Chain", Message: fmt.Sprintf("prev=%s, want %s", ci.Prev, cs[i-1].Addr), Addr: ci.Addr}
		}
		if i+1 < len(cs) {
			if ci.Next <= ci.Addr {
				return &ValidationError{Type: "Chain", Message: "next link not ascending", Addr: ci.Addr}
			}
			if ci.End() > ci.Next {
				return &ValidationError{Type: "Chain", Message: fmt.Sprintf("overlaps next chunk at %s", ci.Next), Addr: ci.Addr}
			}
		} else if ci.Next != heap.Nil {
			return &ValidationError{Type: "Chain", Message: fmt.Sprintf("walk stopped at unreadable next %s", ci.Next), Addr: ci.Addr}
		}
	}
	return nil
}

// Fences checks that every live chunk has zero fences.
func Fences(h *heap.Heap) error {
	for ci := range h.Chunks() {
		if ci.Free() {
			continue
		}
		lead, ok1 := h.Bytes(ci.Addr+heap.HeaderSize, heap.FenceSize)
		trail, ok2 := h.Bytes(ci.Payload()+heap.Addr(ci.Size), heap.FenceSize)
		if !ok1 || !ok2 {
			return &ValidationError{Type: "Fences", Message: "fence outside managed region", Addr: ci.Addr}
		}
		if !buf.AllZero(lead) {
			return &ValidationError{Type: "Fences", Message: fmt.Sprintf("leading fence % x", lead), Addr: ci.Addr}
		}
		if !buf.AllZero(trail) {
			return &ValidationError{Type: "Fences", Message: fmt.Sprintf("trailing fence % x", trail), Addr: ci.Addr}
		}
	}
	return nil
}

// Reclaimed checks the state release leaves behind: free chunks are merged,
// span exactly up to their neighbor, and never sit at the end of the chain.
func Reclaimed(h *heap.Heap) error {
	cs := chunks(h)
	for i, ci := range cs {
		if !ci.Free() {
			continue
		}
		if i+1 == len(cs) {
			return &ValidationError{Type: "Reclaim", Message: "free chunk at tail", Addr: ci.Addr}
		}
		if cs[i+1].Free() {
			return &ValidationError{Type: "Reclaim", Message: "adjacent free chunks not merged", Addr: ci.Addr}
		}
		if ci.End() != ci.Next {
			return &ValidationError{Type: "Reclaim", Message: fmt.Sprintf("free chunk ends at %s, next at %s", ci.End(), ci.Next), Addr: ci.Addr}
		}
	}
	return nil
}

// Break checks that the heap owns exactly the bytes up to the region break.
func Break(h *heap.Heap, r region.Region) error {
	brk, err := r.Sbrk(0)
	if err != nil {
		return &ValidationError{Type: "Break", Message: err.Error()}
	}
	if _, end := h.Bounds(); end != brk {
		return &ValidationError{Type: "Break", Message: fmt.Sprintf("heap end %s, region break %s", end, brk)}
	}
	return nil
}
