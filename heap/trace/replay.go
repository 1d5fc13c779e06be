package trace

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/arenakit/heap/alloc"
)

// Allocator is the heap surface Replay drives. *alloc.Heap satisfies it.
type Allocator interface {
	Alloc(n int) alloc.Ptr
	Free(p alloc.Ptr)
	Realloc(p alloc.Ptr, n int) alloc.Ptr
	Bytes(p alloc.Ptr) []byte
	Check() error
	Len() int
}

// Options controls replay behavior.
type Options struct {
	// Validate runs the heap consistency check after every operation.
	Validate bool
}

// Result summarizes one replay.
type Result struct {
	Name      string
	Ops       int // operations executed
	Allocs    int
	Reallocs  int
	Frees     int
	Failures  int // non-zero requests answered with Nil
	Live      int // blocks still bound at the end
	Peak      int // largest sum of live requested bytes
	ArenaSize int
}

// Utilization returns Peak / ArenaSize.
func (r *Result) Utilization() float64 {
	if r.ArenaSize == 0 {
		return 0
	}
	return float64(r.Peak) / float64(r.ArenaSize)
}

// OpError reports the operation a replay stopped on.
type OpError struct {
	Op    Op
	Index int
	Err   error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s id %d (line %d): %v", e.Op.Kind, e.Op.ID, e.Op.Line, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// binding is the block currently bound to an id.
type binding struct {
	p alloc.Ptr
	n int // requested size
}

type replayer struct {
	h     Allocator
	live  []binding
	total int
	res   *Result
}

// Replay executes s against h, which should be freshly initialized. It
// returns the result so far together with the first error. A cancelled ctx
// stops the replay between operations.
func Replay(ctx context.Context, s *Script, h Allocator, opts Options) (*Result, error) {
	r := &replayer{
		h:    h,
		live: make([]binding, s.IDs),
		res:  &Result{Name: s.Name, ArenaSize: h.Len()},
	}

	for i, op := range s.Ops {
		if err := ctx.Err(); err != nil {
			return r.finish(), err
		}
		if err := r.step(op); err != nil {
			return r.finish(), &OpError{Op: op, Index: i, Err: err}
		}
		if opts.Validate {
			if err := h.Check(); err != nil {
				return r.finish(), &OpError{Op: op, Index: i, Err: errors.Mark(err, ErrHeap)}
			}
		}
		r.res.Ops++
	}
	return r.finish(), nil
}

func (r *replayer) finish() *Result {
	r.res.Live = 0
	for _, b := range r.live {
		if b.p != alloc.Nil {
			r.res.Live++
		}
	}
	return r.res
}

func (r *replayer) step(op Op) error {
	cur := r.live[op.ID]
	switch op.Kind {
	case KindAlloc:
		r.res.Allocs++
		if cur.p != alloc.Nil {
			// Rebinding an id leaks its block, as the script asked.
			r.unbind(op.ID)
		}
		p := r.h.Alloc(op.Size)
		if p == alloc.Nil {
			if op.Size > 0 {
				r.res.Failures++
			}
			return nil
		}
		return r.bind(op.ID, p, op.Size)

	case KindRealloc:
		r.res.Reallocs++
		if cur.p != alloc.Nil {
			if err := r.verify(op.ID, cur, cur.n); err != nil {
				return err
			}
		}
		p := r.h.Realloc(cur.p, op.Size)
		if p == alloc.Nil {
			if op.Size == 0 {
				r.unbind(op.ID)
				return nil
			}
			r.res.Failures++
			if cur.p != alloc.Nil {
				// The original must survive a failed resize.
				return r.verify(op.ID, cur, cur.n)
			}
			return nil
		}
		r.unbind(op.ID)
		if cur.p != alloc.Nil {
			if err := r.verify(op.ID, binding{p: p, n: op.Size}, min(cur.n, op.Size)); err != nil {
				return err
			}
		}
		return r.bind(op.ID, p, op.Size)

	case KindFree:
		r.res.Frees++
		if cur.p == alloc.Nil {
			r.h.Free(alloc.Nil)
			return nil
		}
		if err := r.verify(op.ID, cur, cur.n); err != nil {
			return err
		}
		r.h.Free(cur.p)
		r.unbind(op.ID)
		return nil
	}
	return errors.Wrapf(ErrSyntax, "unknown operation %q", byte(op.Kind))
}

// bind records p for id after checking it against every live block, then
// fills it with the id's pattern.
func (r *replayer) bind(id int, p alloc.Ptr, n int) error {
	start, end := int(p), int(p)+n
	if end > r.h.Len() {
		return errors.Wrapf(ErrOverlap, "block 0x%X+%d runs past the arena (%d bytes)", uint64(p), n, r.h.Len())
	}
	if len(r.h.Bytes(p)) < n {
		return errors.Wrapf(ErrOverlap, "block 0x%X holds %d bytes, requested %d", uint64(p), len(r.h.Bytes(p)), n)
	}
	for other, b := range r.live {
		if b.p == alloc.Nil || other == id {
			continue
		}
		if start < int(b.p)+b.n && int(b.p) < end {
			return errors.Wrapf(ErrOverlap, "id %d at 0x%X+%d overlaps id %d at 0x%X+%d",
				id, uint64(p), n, other, uint64(b.p), b.n)
		}
	}

	payload := r.h.Bytes(p)[:n]
	for i := range payload {
		payload[i] = pattern(id, i)
	}
	r.live[id] = binding{p: p, n: n}
	r.total += n
	r.res.Peak = max(r.res.Peak, r.total)
	return nil
}

func (r *replayer) unbind(id int) {
	r.total -= r.live[id].n
	r.live[id] = binding{}
}

// verify checks the first n bytes of b against the pattern for id.
func (r *replayer) verify(id int, b binding, n int) error {
	payload := r.h.Bytes(b.p)
	for i := range n {
		if payload[i] != pattern(id, i) {
			return errors.Wrapf(ErrPayload, "id %d at 0x%X: byte %d is 0x%02X, want 0x%02X",
				id, uint64(b.p), i, payload[i], pattern(id, i))
		}
	}
	return nil
}

// pattern is the byte stored at offset i of the block bound to id.
func pattern(id, i int) byte {
	return byte(id*131 + i*7 + 1)
}
