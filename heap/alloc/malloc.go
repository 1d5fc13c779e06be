package alloc

import (
	"github.com/joshuapare/arenakit/heap/arena"
	"github.com/joshuapare/arenakit/internal/format"
)

// needed applies the payload floor and rounds n up to the alignment.
func needed(n int) int {
	if n < format.MinPayload {
		n = format.MinPayload
	}
	return format.RoundUp(n, format.Alignment)
}

// fits reports whether a request of n bytes could ever be served by an arena
// of the current size. It also keeps needed() clear of overflow.
func (h *Heap) fits(n int) bool {
	return n > 0 && n <= h.a.Len()-format.HeaderSize
}

// Alloc returns the payload address of a block with at least n usable bytes,
// or Nil when n is 0 or no free block is large enough. The payload contents
// are unspecified.
func (h *Heap) Alloc(n int) Ptr {
	if h.a == nil {
		return Nil
	}
	h.stats.AllocCalls++

	if !h.fits(n) {
		h.stats.AllocFailures++
		if h.debug {
			h.log.Debug("alloc rejected", "request", n, "arena", h.a.Len())
		}
		return Nil
	}

	p := h.take(needed(n))
	if p == Nil {
		h.stats.AllocFailures++
		if h.debug {
			h.log.Debug("alloc failed", "request", n, "needed", needed(n))
		}
	}
	return p
}

// take removes the first free block with a payload of at least need bytes
// from the list and marks it used, splitting off the tail when the leftover
// can stand as a block of its own.
func (h *Heap) take(need int) Ptr {
	for p := range h.free.All() {
		off := p.Block()
		size := h.a.Size(off)
		if size < need {
			continue
		}
		h.carve(off, size, need, p)
		return p
	}
	return Nil
}

// carve marks the first need payload bytes of the run at off used. The run
// spans size payload bytes and currently occupies the list slot of member.
// The leftover, if any, takes over that slot.
func (h *Heap) carve(off, size, need int, member arena.Ptr) {
	if size-need-format.SplitReserve <= 0 {
		h.free.Remove(member)
		h.a.MarkUsed(off, size)
		return
	}

	next, prev := h.free.Links(member)
	h.a.MarkUsed(off, need)
	rem := off + format.HeaderSize + need
	h.free.Insert(rem, size-need-format.HeaderSize, next, prev)
	h.stats.SplitCount++
	h.stats.CoalesceForward += h.coalesce(rem)

	if h.debug {
		h.log.Debug("split", "block", off, "need", need, "remainder", rem, "remainder_size", size-need-format.HeaderSize)
	}
}
