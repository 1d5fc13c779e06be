package verify

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/arenakit/heap/arena"
	"github.com/joshuapare/arenakit/heap/freeset"
	"github.com/joshuapare/arenakit/internal/format"
)

// build lays out used blocks of the given payload sizes, then frees the
// listed indexes in address order through a freeset so the links are real.
func build(t *testing.T, sizes []int, free ...int) (*arena.Arena, *freeset.Set, []int) {
	t.Helper()
	total := 0
	for _, s := range sizes {
		total += format.HeaderSize + s
	}
	a := arena.New(make([]byte, total))
	offs := make([]int, len(sizes))
	off := 0
	for i, s := range sizes {
		offs[i] = off
		a.MarkUsed(off, s)
		off += format.HeaderSize + s
	}
	s := freeset.New(a)
	prev := arena.Nil
	for _, i := range free {
		s.Insert(offs[i], sizes[i], arena.Nil, prev)
		prev = arena.PtrOf(offs[i])
	}
	return a, s, offs
}

func requireType(t *testing.T, err error, typ string) *ValidationError {
	t.Helper()
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %T", err)
	require.Equal(t, typ, verr.Type, verr.Error())
	return verr
}

func TestHeap_SingleFreeBlock(t *testing.T) {
	a, s, _ := build(t, []int{1016}, 0)
	require.NoError(t, Heap(a, s.Head()))
}

func TestHeap_AllUsedEmptyList(t *testing.T) {
	a, s, _ := build(t, []int{24, 32, 48})
	require.True(t, s.Empty())
	require.NoError(t, Heap(a, s.Head()))
}

func TestHeap_MixedBlocks(t *testing.T) {
	a, s, _ := build(t, []int{24, 32, 48, 24, 64}, 1, 3)
	require.NoError(t, Heap(a, s.Head()))
}

func TestHeap_FreeBlockMissingFromList(t *testing.T) {
	a, s, offs := build(t, []int{24, 32, 48}, 1)
	a.MarkFree(offs[2], 48) // flag flipped, never linked

	verr := requireType(t, Heap(a, s.Head()), TypeFreeSet)
	require.Equal(t, offs[2], verr.Offset)
}

func TestHeap_UsedBlockStillListed(t *testing.T) {
	a, s, offs := build(t, []int{24, 32, 48}, 0, 2)
	a.MarkUsed(offs[2], 48) // flag says used, list still holds it

	verr := requireType(t, Heap(a, s.Head()), TypeFreeSet)
	require.Equal(t, offs[2], verr.Offset)
}

func TestHeap_ListOutOfAddressOrder(t *testing.T) {
	a, _, offs := build(t, []int{24, 32, 48})
	s := freeset.New(a)
	s.Insert(offs[2], 48, arena.Nil, arena.Nil)
	s.Insert(offs[0], 24, arena.Nil, arena.PtrOf(offs[2]))

	requireType(t, Heap(a, s.Head()), TypeFreeSet)
}

func TestHeap_BrokenBackLink(t *testing.T) {
	a, s, offs := build(t, []int{24, 32, 48}, 0, 2)
	a.SetWord(int(arena.PtrOf(offs[2]))+format.NodePrevOffset, 0)

	requireType(t, Heap(a, s.Head()), TypeFreeSet)
}

func TestHeap_NextLinkOutsideArena(t *testing.T) {
	a, s, offs := build(t, []int{24, 32}, 0)
	a.SetWord(int(arena.PtrOf(offs[0]))+format.NodeNextOffset, 1<<40)

	requireType(t, Heap(a, s.Head()), TypeFreeSet)
}

func TestHeap_BadHead(t *testing.T) {
	a, _, _ := build(t, []int{24, 32}, 0)

	requireType(t, Heap(a, 3), TypeFreeSet)
	requireType(t, Heap(a, a.Len()+8), TypeFreeSet)
}

func TestHeap_HeadSkipsFirstFreeBlock(t *testing.T) {
	a, _, offs := build(t, []int{24, 32, 48}, 0, 2)

	// head pointing at the second member hides the first free block
	requireType(t, Heap(a, offs[2]), TypeFreeSet)
}

func TestHeap_OverrunningHeader(t *testing.T) {
	a, s, offs := build(t, []int{24, 32}, 0)
	a.MarkUsed(offs[1], 4096)

	requireType(t, Heap(a, s.Head()), TypeBlockWalk)
}

func TestHeap_MisalignedSize(t *testing.T) {
	a, s, offs := build(t, []int{24, 32}, 0)
	a.MarkUsed(offs[1], 30)

	requireType(t, Heap(a, s.Head()), TypeBlockWalk)
}

func TestHeap_Splinter(t *testing.T) {
	a, _, _ := build(t, []int{8, 32})
	s := freeset.New(a)
	// write an 8-byte free block by hand; the node would spill into the next header
	a.MarkFree(0, 8)
	a.SetWord(format.HeaderSize, 0)

	requireType(t, Heap(a, s.Head()), TypeSplinter)
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Type: TypeConservation, Message: "blocks add up to 8 bytes, arena is 16", Offset: -1}
	require.Equal(t, "Conservation: blocks add up to 8 bytes, arena is 16", err.Error())

	err = &ValidationError{Type: TypeFreeSet, Message: "x", Offset: 0x40}
	require.Equal(t, "FreeSet at offset 0x40: x", err.Error())
}
