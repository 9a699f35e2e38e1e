// Package verify checks heap invariants from the outside.
//
// # Overview
//
// heap.Validate is the allocator's own gate and only answers ok or not ok.
// This package re-derives the invariants from the public chunk walk and
// reports exactly which one broke. It is primarily used by tests that run
// random operation sequences and check the heap after every step.
//
// Validation categories:
//   - Chain: address order, back-links, bounds, free flag values
//   - Fences: zero fences around every live payload
//   - Reclaim: no adjacent free chunks, no free tail, free chunks span the
//     gap to their neighbor
//   - Break: the heap end matches the region break
//
// # Quick Start
//
//	if err := verify.AllInvariants(h, r); err != nil {
//	    t.Fatalf("heap broken: %v", err)
//	}
//
// # ValidationError
//
// All checks return *ValidationError on failure:
//
//	var verr *verify.ValidationError
//	if errors.As(err, &verr) {
//	    fmt.Printf("%s at %s: %s\n", verr.Type, verr.Addr, verr.Message)
//	}
package verify
