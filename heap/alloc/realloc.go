package alloc

import (
	"github.com/joshuapare/arenakit/heap/arena"
	"github.com/joshuapare/arenakit/internal/format"
)

// Realloc resizes the block at p to hold at least n bytes and returns its
// address, which may differ from p. The first min(old, new) payload bytes are
// preserved.
//
//   - Realloc(Nil, n) behaves as Alloc(n).
//   - Realloc(p, 0) frees p and returns Nil.
//   - When no block large enough exists it returns Nil and p is left intact.
//
// A free block immediately to the right is absorbed before deciding, so a
// failed Realloc may leave p's right neighbours merged, never reallocated.
func (h *Heap) Realloc(p Ptr, n int) Ptr {
	if p == Nil {
		return h.Alloc(n)
	}
	if h.a == nil {
		return Nil
	}
	if n == 0 {
		h.Free(p)
		return Nil
	}
	h.stats.ReallocCalls++

	if !h.fits(n) {
		h.stats.ReallocFailures++
		if h.debug {
			h.log.Debug("realloc rejected", "ptr", uint64(p), "request", n)
		}
		return Nil
	}

	need := needed(n)
	off := p.Block()
	old := h.a.Size(off)
	right := off + format.HeaderSize + old

	if right < h.a.Len() && h.a.IsFree(right) {
		h.stats.CoalesceForward += h.coalesce(right)
		combined := old + h.a.Tag(right).TotalSize()
		if combined >= need {
			h.carve(off, combined, need, arena.PtrOf(right))
			h.stats.ReallocInPlace++
			return p
		}
		return h.move(p, old, need)
	}

	if old >= need {
		if rest := old - need - format.HeaderSize; old-need-format.SplitReserve > 0 {
			h.a.MarkUsed(off, need)
			tail := off + format.HeaderSize + need
			h.a.MarkUsed(tail, rest)
			h.release(tail, rest)
			h.stats.SplitCount++
		}
		h.stats.ReallocInPlace++
		return p
	}

	return h.move(p, old, need)
}

// move copies the block at p, of payload size old, into a fresh block of need
// bytes and releases the original. On failure p is left untouched.
func (h *Heap) move(p Ptr, old, need int) Ptr {
	np := h.take(need)
	if np == Nil {
		h.stats.ReallocFailures++
		if h.debug {
			h.log.Debug("realloc failed", "ptr", uint64(p), "old", old, "needed", need)
		}
		return Nil
	}
	h.a.Copy(np, p, min(old, need))
	h.release(p.Block(), old)
	h.stats.ReallocMoved++
	return np
}
