package alloc

import (
	"context"
	"io"
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/arenakit/heap/arena"
	"github.com/joshuapare/arenakit/heap/freeset"
	"github.com/joshuapare/arenakit/heap/printer"
	"github.com/joshuapare/arenakit/heap/verify"
	"github.com/joshuapare/arenakit/internal/format"
)

// Heap is a first-fit allocator over one arena.
//
// Create one with New and call Init, or use Open. A Heap is not safe for
// concurrent use.
type Heap struct {
	a     *arena.Arena
	free  *freeset.Set
	log   *slog.Logger
	debug bool // log accepts LevelDebug

	stats Stats
}

// New creates an uninitialized Heap.
func New(opts ...Option) *Heap {
	h := &Heap{log: defaultLogger()}
	for _, opt := range opts {
		opt(h)
	}
	h.debug = h.log.Enabled(context.Background(), slog.LevelDebug)
	return h
}

// Open creates a Heap over the first size bytes of region.
func Open(region []byte, size int, opts ...Option) (*Heap, error) {
	h := New(opts...)
	if err := h.init(region, size); err != nil {
		return nil, err
	}
	return h, nil
}

// Init formats the first size bytes of region as a single free block and
// resets the free list and counters. size is rounded down to the alignment.
// It returns false when the result is too small to hold one header and a
// link node, or when size exceeds len(region). Any state from a previous
// Init is discarded.
func (h *Heap) Init(region []byte, size int) bool {
	if h.log == nil {
		h.log = defaultLogger()
		h.debug = logAlloc
	}
	if err := h.init(region, size); err != nil {
		h.log.Debug("init rejected", "size", size, "region", len(region), "error", err)
		return false
	}
	return true
}

func (h *Heap) init(region []byte, size int) error {
	if size < 0 || size > len(region) {
		return errors.Wrapf(ErrRegionShort, "size %d, region %d", size, len(region))
	}
	size = format.RoundDown(size, format.Alignment)
	if size <= format.SplitReserve {
		return errors.Wrapf(ErrRegionTooSmall, "size %d", size)
	}

	h.a = arena.New(region[:size:size])
	h.free = freeset.New(h.a)
	h.free.Insert(0, size-format.HeaderSize, Nil, Nil)
	h.stats = Stats{}

	h.log.Debug("init", "size", size, "payload", size-format.HeaderSize)
	return nil
}

// Initialized reports whether Init has succeeded.
func (h *Heap) Initialized() bool { return h.a != nil }

// Len returns the managed arena size in bytes, 0 before Init.
func (h *Heap) Len() int {
	if h.a == nil {
		return 0
	}
	return h.a.Len()
}

// Bytes returns the payload of the block at p. The slice aliases the region
// and is invalidated by Free or a moving Realloc of p.
func (h *Heap) Bytes(p Ptr) []byte {
	if p == Nil || h.a == nil {
		return nil
	}
	return h.a.Payload(p.Block())
}

// Size returns the usable payload size of the block at p, which may exceed
// the size requested.
func (h *Heap) Size(p Ptr) int {
	if p == Nil || h.a == nil {
		return 0
	}
	return h.a.Size(p.Block())
}

// Stats returns the call counters accumulated since Init.
func (h *Heap) Stats() Stats { return h.stats }

// Usage walks the arena and summarizes its blocks.
func (h *Heap) Usage() Usage {
	var u Usage
	if h.a == nil {
		return u
	}
	u.ArenaSize = h.a.Len()
	for b := range h.a.Blocks() {
		u.HeaderBytes += format.HeaderSize
		if b.Free {
			u.FreeBlocks++
			u.FreeBytes += b.Size
			u.LargestFree = max(u.LargestFree, b.Size)
		} else {
			u.UsedBlocks++
			u.UsedBytes += b.Size
		}
	}
	return u
}

// Check verifies every header and the free list, returning a
// *verify.ValidationError describing the first inconsistency.
func (h *Heap) Check() error {
	if h.a == nil {
		return ErrNotInitialized
	}
	return verify.Heap(h.a, h.free.Head())
}

// Validate reports whether Check finds the heap consistent.
func (h *Heap) Validate() bool {
	err := h.Check()
	if err != nil && h.debug {
		h.log.Debug("validate failed", "error", err)
	}
	return err == nil
}

// Dump prints one line per block in address order:
//
//	0x0, u, 24
//	0x20, f, 968, node=0x28 next=- prev=-
func (h *Heap) Dump(w io.Writer) error {
	return h.DumpTo(w, printer.Options{Format: printer.FormatPlain})
}

// DumpTo prints the block layout in the format selected by opts.
func (h *Heap) DumpTo(w io.Writer, opts printer.Options) error {
	if h.a == nil {
		return ErrNotInitialized
	}
	return printer.New(w, opts).Print(h.a, h.free.Head())
}
