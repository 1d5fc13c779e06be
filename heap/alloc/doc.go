// Package alloc provides a first-fit block allocator over a caller-supplied
// byte region.
//
// # Overview
//
// A Heap carves one contiguous arena into blocks. Every block begins with an
// 8-byte header tag holding its payload size; the low bit of the tag marks
// the block as in use. Free blocks are additionally threaded onto a doubly
// linked free list whose link node lives inside the free payload itself, so
// the allocator needs no memory beyond the arena.
//
// # Operations
//
//   - Init(region, size): format the first size bytes of region as one free block
//   - Alloc(n): first-fit search of the free list, splitting when worthwhile
//   - Free(p): return a block to the list and merge it with free neighbours
//   - Realloc(p, n): resize in place when the right neighbour allows, else move
//   - Validate / Check: full consistency check of headers and list
//   - Dump / DumpTo: print the block layout
//
// # Usage Example
//
//	region := make([]byte, 1<<20)
//	h := alloc.New()
//	if !h.Init(region, len(region)) {
//	    return errors.New("region too small")
//	}
//
//	p := h.Alloc(100)
//	if p == alloc.Nil {
//	    return errors.New("out of memory")
//	}
//	copy(h.Bytes(p), payload)
//
//	p = h.Realloc(p, 400)
//	h.Free(p)
//
// # Sizes
//
// Requests are raised to MinPayload (24 bytes) and rounded up to the 8-byte
// alignment, so a released block can always host its 16-byte link node.
// A free block is split only when the leftover after the request would still
// exceed a header plus a link node; otherwise the whole block is handed out.
//
// # Free List Order
//
// The list is kept in address order. Free inserts a released block between
// its address neighbours, then merges it with the free block immediately to
// its left and any run of free blocks to its right. Alloc splits leave the
// remainder in the position of the block it came from, so order is preserved
// without re-sorting.
//
// # Addresses
//
// Ptr values are byte offsets of payloads within the region, not machine
// pointers. Offset 0 is always a header, so Nil (0) never names a payload.
// Use Bytes to obtain a slice over a payload.
//
// # Thread Safety
//
// A Heap is NOT thread-safe. Callers sharing one across goroutines must
// serialize access themselves. Separate Heaps over disjoint regions are
// independent.
//
// # Debugging
//
// Set ARENAKIT_LOG_ALLOC=1 to log splits, merges, and failed requests to
// stderr when no logger is supplied with WithLogger.
package alloc
