package alloc

import (
	"log/slog"
	"os"

	"github.com/joshuapare/arenakit/heap/arena"
	"github.com/joshuapare/arenakit/internal/format"
)

// Ptr is the payload offset of an allocated block within the region.
type Ptr = arena.Ptr

// Nil is the failure and "no block" value.
const Nil = arena.Nil

// MinPayload is the smallest payload ever handed out.
const MinPayload = format.MinPayload

// Runtime debug flag for allocation logging - controlled by ARENAKIT_LOG_ALLOC env var.
var logAlloc = os.Getenv("ARENAKIT_LOG_ALLOC") != ""

// Option configures a Heap.
type Option func(*Heap)

// WithLogger routes allocator debug events to l.
func WithLogger(l *slog.Logger) Option {
	return func(h *Heap) {
		if l != nil {
			h.log = l
		}
	}
}

func defaultLogger() *slog.Logger {
	if logAlloc {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.DiscardHandler)
}

// Stats holds allocator call counters since Init.
type Stats struct {
	AllocCalls       int // Alloc() calls, including those made by Realloc(Nil, n)
	AllocFailures    int // Alloc() calls that returned Nil
	FreeCalls        int // Free() calls with a non-Nil pointer
	ReallocCalls     int // Realloc() calls
	ReallocInPlace   int // Realloc() calls satisfied without moving
	ReallocMoved     int // Realloc() calls that copied to a new block
	ReallocFailures  int // Realloc() calls that returned Nil with the block intact
	SplitCount       int // Free blocks split to satisfy a request
	CoalesceForward  int // Right neighbours absorbed
	CoalesceBackward int // Releases absorbed by their left neighbour
}

// Usage summarizes the current block layout of the arena.
type Usage struct {
	ArenaSize   int // bytes under management
	UsedBlocks  int
	FreeBlocks  int
	UsedBytes   int // payload bytes of used blocks
	FreeBytes   int // payload bytes of free blocks
	HeaderBytes int // bytes spent on headers
	LargestFree int // largest free payload, 0 when none
}

// Utilization returns UsedBytes / ArenaSize, or 0 for an empty arena.
func (u Usage) Utilization() float64 {
	if u.ArenaSize == 0 {
		return 0
	}
	return float64(u.UsedBytes) / float64(u.ArenaSize)
}

// Fragmentation returns 1 - LargestFree/FreeBytes: 0 when all free space is
// one block, approaching 1 as it scatters.
func (u Usage) Fragmentation() float64 {
	if u.FreeBytes == 0 {
		return 0
	}
	return 1 - float64(u.LargestFree)/float64(u.FreeBytes)
}
