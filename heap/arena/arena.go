// Package arena provides a typed view over the byte region managed by the
// allocator. All reads and writes of block headers and link words go through
// this package, so the bounds checks live in one place instead of being
// scattered across the allocator.
package arena

import (
	"iter"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/arenakit/internal/buf"
	"github.com/joshuapare/arenakit/internal/format"
)

// Ptr is a payload address: the offset of the first payload byte from the
// start of the arena. Offset 0 always holds a header, so 0 is free to mean
// "no block".
type Ptr uint64

// Nil is the failure/absent pointer.
const Nil Ptr = 0

// IsNil reports whether p is Nil.
func (p Ptr) IsNil() bool { return p == Nil }

// Block returns the offset of the header that precedes p.
func (p Ptr) Block() int { return int(p) - format.HeaderSize }

// PtrOf returns the payload address of the block whose header is at off.
func PtrOf(off int) Ptr { return Ptr(off + format.HeaderSize) }

// ErrCorrupt reports a header that cannot describe a block inside the arena.
var ErrCorrupt = errors.New("arena: corrupt block header")

// Arena is a fixed byte region carved into contiguous blocks.
type Arena struct {
	data []byte
}

// New wraps data. The caller guarantees len(data) is a multiple of
// format.Alignment; Init in heap/alloc rounds down before calling New.
func New(data []byte) *Arena {
	return &Arena{data: data}
}

// Len returns the arena size in bytes. It doubles as the end-of-arena offset.
func (a *Arena) Len() int { return len(a.data) }

// Bytes exposes the underlying region.
func (a *Arena) Bytes() []byte { return a.data }

// check panics when [off, off+n) is not inside the arena.
func (a *Arena) check(off, n int) {
	if !buf.Has(a.data, off, n) {
		panic(errors.AssertionFailedf("arena: access [%d,+%d) outside %d-byte arena", off, n, len(a.data)))
	}
}

// Word reads the 8-byte word at off.
func (a *Arena) Word(off int) uint64 {
	a.check(off, format.WordSize)
	return format.ReadU64(a.data, off)
}

// SetWord writes the 8-byte word at off.
func (a *Arena) SetWord(off int, v uint64) {
	a.check(off, format.WordSize)
	format.PutU64(a.data, off, v)
}

// Tag reads the header of the block at off.
func (a *Arena) Tag(off int) format.Tag {
	return format.Tag(a.Word(off))
}

// SetTag writes the header of the block at off.
func (a *Arena) SetTag(off int, t format.Tag) {
	a.SetWord(off, uint64(t))
}

// MarkUsed stores size+1 in the header at off.
func (a *Arena) MarkUsed(off, size int) {
	a.SetTag(off, format.EncodeTag(size, true))
}

// MarkFree stores size in the header at off. size must be even.
func (a *Arena) MarkFree(off, size int) {
	a.SetTag(off, format.EncodeTag(size, false))
}

// IsFree reports whether the block at off is free.
func (a *Arena) IsFree(off int) bool {
	return a.Tag(off).IsFree()
}

// Size returns the payload size of the block at off.
func (a *Arena) Size(off int) int {
	return a.Tag(off).Size()
}

// Next returns the offset of the block following off in address order.
// The result equals Len() for the last block.
func (a *Arena) Next(off int) int {
	return off + a.Tag(off).TotalSize()
}

// Payload returns the payload bytes of the block at off.
func (a *Arena) Payload(off int) []byte {
	size := a.Size(off)
	start := off + format.HeaderSize
	a.check(start, size)
	return a.data[start : start+size]
}

// Copy moves n bytes of payload from src to dst. Ranges may overlap.
func (a *Arena) Copy(dst, src Ptr, n int) {
	a.check(int(src), n)
	a.check(int(dst), n)
	copy(a.data[dst:int(dst)+n], a.data[src:int(src)+n])
}

// Block describes one block found by walking headers.
type Block struct {
	Off  int  // header offset
	Size int  // payload size
	Free bool // low bit clear
}

// Ptr returns the payload address of b.
func (b Block) Ptr() Ptr { return PtrOf(b.Off) }

// Total returns header plus payload.
func (b Block) Total() int { return format.HeaderSize + b.Size }

// End returns the offset just past b.
func (b Block) End() int { return b.Off + b.Total() }

// At decodes the block header at off without following it.
func (a *Arena) At(off int) (Block, error) {
	if !buf.Has(a.data, off, format.HeaderSize) {
		return Block{}, errors.Wrapf(ErrCorrupt, "header at %d outside %d-byte arena", off, len(a.data))
	}
	size, used := format.ReadTag(a.data, off).Decode()
	b := Block{Off: off, Size: size, Free: !used}
	if size < 0 || !buf.Within(off, b.Total(), 0, len(a.data)) {
		return b, errors.Wrapf(ErrCorrupt, "block at %d with payload %d overruns %d-byte arena", off, size, len(a.data))
	}
	return b, nil
}

// Walk visits every block in address order. It stops at the first header
// that does not describe a block inside the arena and returns that error,
// or returns the first error fn returns.
func (a *Arena) Walk(fn func(Block) error) error {
	for off := 0; off < len(a.data); {
		b, err := a.At(off)
		if err != nil {
			return err
		}
		if err := fn(b); err != nil {
			return err
		}
		off = b.End()
	}
	return nil
}

// Blocks is an iterator form of Walk that silently stops on a corrupt header.
func (a *Arena) Blocks() iter.Seq[Block] {
	return func(yield func(Block) bool) {
		for off := 0; off < len(a.data); {
			b, err := a.At(off)
			if err != nil || !yield(b) {
				return
			}
			off = b.End()
		}
	}
}
