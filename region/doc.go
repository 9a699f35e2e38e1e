// Package region provides the raw "move the break" primitive a heap is built on.
//
// # Overview
//
// A Region owns one contiguous run of bytes whose upper bound (the break) can
// be moved with Sbrk, in the manner of the classic sbrk(2) call:
//
//	prev, err := r.Sbrk(4096)  // extend by 4KB, prev is the old break
//	cur, _ := r.Sbrk(0)        // query the break
//	_, err = r.Sbrk(-4096)     // give the bytes back
//
// Addresses are Addr values in the region's own address space. Bytes()
// returns the live bytes [Base(), break) so callers can address them as
// data[addr-Base()].
//
// # Implementations
//
// Buffer: capacity-limited Go byte slice. Capacity is reserved at construction
// so that slices returned by Bytes() stay valid while the break moves.
//
// Mapped: anonymous mmap reservation (unix only). Shrinking hands whole
// pages back to the kernel with madvise(MADV_DONTNEED).
//
// # Thread Safety
//
// Regions are not thread-safe. Callers must synchronize access externally.
package region
