package trace

import "github.com/cockroachdb/errors"

var (
	// ErrSyntax indicates a malformed script line.
	ErrSyntax = errors.New("trace: syntax error")

	// ErrPayload indicates a block whose contents changed while it was live.
	ErrPayload = errors.New("trace: payload corrupted")

	// ErrOverlap indicates two live blocks sharing bytes.
	ErrOverlap = errors.New("trace: blocks overlap")

	// ErrHeap indicates the heap failed its consistency check.
	ErrHeap = errors.New("trace: heap inconsistent")
)
