package alloc

import (
	"github.com/joshuapare/arenakit/heap/arena"
	"github.com/joshuapare/arenakit/internal/format"
)

// Free returns the block at p to the free list and merges it with any free
// neighbours. Free(Nil) is a no-op. p must come from Alloc or Realloc on this
// heap and must not have been freed since; a pointer whose block is already
// free is ignored.
func (h *Heap) Free(p Ptr) {
	if p == Nil || h.a == nil {
		return
	}
	h.stats.FreeCalls++

	off := p.Block()
	if h.a.IsFree(off) {
		if h.debug {
			h.log.Debug("free of free block ignored", "ptr", uint64(p))
		}
		return
	}
	h.release(off, h.a.Size(off))
}

// release links the block at off, with the given payload size, into the list
// at its address position and merges it with adjacent free blocks.
func (h *Heap) release(off, size int) {
	next, prev := h.free.Locate(off)
	h.free.Insert(off, size, next, prev)

	start := off
	if prev != arena.Nil && h.a.Next(prev.Block()) == off {
		start = prev.Block()
	}
	merged := h.coalesce(start)
	if start != off {
		h.stats.CoalesceBackward++
		merged--
	}
	h.stats.CoalesceForward += merged

	if h.debug && (start != off || merged > 0) {
		h.log.Debug("coalesce", "released", off, "block", start, "size", h.a.Size(start))
	}
}

// coalesce absorbs the run of free blocks immediately to the right of the
// free block at off and returns how many it absorbed. Because the list is in
// address order, each absorbed block is the list successor of off, so the
// merged block inherits the last absorbed block's successor.
func (h *Heap) coalesce(off int) int {
	p := arena.PtrOf(off)
	next, prev := h.free.Links(p)
	size := h.a.Size(off)
	end := h.a.Len()

	merged := 0
	for nb := off + format.HeaderSize + size; nb < end && h.a.IsFree(nb); nb = off + format.HeaderSize + size {
		next = h.free.Next(arena.PtrOf(nb))
		size += h.a.Tag(nb).TotalSize()
		merged++
	}
	if merged > 0 {
		h.free.Insert(off, size, next, prev)
	}
	return merged
}
