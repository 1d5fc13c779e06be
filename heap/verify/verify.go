// Package verify provides the consistency checker for arena heaps.
//
// The checker derives block boundaries from headers alone, walking the arena
// by address, and in parallel walks the free list by its links. Each free
// block found by the address walk must be the next unvisited list node. The
// two derivations are independent, so a link spliced to the wrong block, or a
// header whose flag disagrees with list membership, shows up as a mismatch
// even when either walk alone looks fine.
package verify

import (
	"fmt"

	"github.com/joshuapare/arenakit/heap/arena"
	"github.com/joshuapare/arenakit/internal/buf"
	"github.com/joshuapare/arenakit/internal/format"
)

// Error categories reported in ValidationError.Type.
const (
	TypeBlockWalk    = "BlockWalk"
	TypeFreeSet      = "FreeSet"
	TypeConservation = "Conservation"
	TypeSplinter     = "Splinter"
)

// ValidationError describes the first inconsistency found.
type ValidationError struct {
	Type    string
	Message string
	Offset  int
	Details map[string]interface{}
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Heap checks the arena a whose free list starts at header offset head
// (a.Len() for an empty list). It returns nil when:
//   - every header describes an aligned block inside the arena,
//   - every free block can host a link node,
//   - free blocks in address order are exactly the list members in list
//     order, with back links agreeing,
//   - block totals sum to the arena size.
func Heap(a *arena.Arena, head int) error {
	end := a.Len()

	cursor := arena.Nil
	switch {
	case head == end:
	case head < 0 || head > end || !format.IsAligned(head):
		return &ValidationError{
			Type:    TypeFreeSet,
			Message: fmt.Sprintf("free list head %d is neither a block nor the end sentinel %d", head, end),
			Offset:  -1,
			Details: map[string]interface{}{"head": head, "end": end},
		}
	default:
		cursor = arena.PtrOf(head)
	}

	prevNode := arena.Nil
	total := 0
	freeSeen := 0

	for off := 0; off < end; {
		b, err := a.At(off)
		if err != nil {
			return &ValidationError{
				Type:    TypeBlockWalk,
				Message: err.Error(),
				Offset:  off,
			}
		}
		if !format.IsAligned(b.Size) {
			return &ValidationError{
				Type:    TypeBlockWalk,
				Message: fmt.Sprintf("payload size %d not %d-byte aligned", b.Size, format.Alignment),
				Offset:  off,
				Details: map[string]interface{}{"size": b.Size},
			}
		}
		total += b.Total()

		if b.Free {
			freeSeen++
			if b.Size < format.NodeSize {
				return &ValidationError{
					Type:    TypeSplinter,
					Message: fmt.Sprintf("free payload %d cannot host a %d-byte link node", b.Size, format.NodeSize),
					Offset:  off,
				}
			}
			if cursor == arena.Nil {
				return &ValidationError{
					Type:    TypeFreeSet,
					Message: "free block not reachable: free list exhausted",
					Offset:  off,
					Details: map[string]interface{}{"free_seen": freeSeen},
				}
			}
			if cursor != b.Ptr() {
				return &ValidationError{
					Type:    TypeFreeSet,
					Message: fmt.Sprintf("free block does not match next list node 0x%X", uint64(cursor)),
					Offset:  off,
					Details: map[string]interface{}{"expected": uint64(b.Ptr()), "node": uint64(cursor)},
				}
			}
			gotPrev := arena.Ptr(a.Word(int(cursor) + format.NodePrevOffset))
			if gotPrev != prevNode {
				return &ValidationError{
					Type:    TypeFreeSet,
					Message: fmt.Sprintf("back link 0x%X, expected 0x%X", uint64(gotPrev), uint64(prevNode)),
					Offset:  off,
				}
			}
			prevNode = cursor
			cursor = arena.Ptr(a.Word(int(cursor) + format.NodeNextOffset))
			if cursor != arena.Nil && !buf.Within(cursor.Block(), format.HeaderSize+format.NodeSize, 0, end) {
				return &ValidationError{
					Type:    TypeFreeSet,
					Message: fmt.Sprintf("next link 0x%X points outside the arena", uint64(cursor)),
					Offset:  off,
				}
			}
		}
		off = b.End()
	}

	if cursor != arena.Nil {
		return &ValidationError{
			Type:    TypeFreeSet,
			Message: fmt.Sprintf("list node 0x%X left unvisited after the address walk", uint64(cursor)),
			Offset:  cursor.Block(),
			Details: map[string]interface{}{"free_seen": freeSeen},
		}
	}

	if total != end {
		return &ValidationError{
			Type:    TypeConservation,
			Message: fmt.Sprintf("blocks add up to %d bytes, arena is %d", total, end),
			Offset:  -1,
			Details: map[string]interface{}{"total": total, "arena": end},
		}
	}

	return nil
}
