// Package freeset tracks the free blocks of an arena as an explicit doubly
// linked list threaded through the free payloads themselves.
//
// Each free block's payload starts with a link node:
//
//	Offset  Size  Description
//	0x00    8     next: payload address of the following list member, 0 if none
//	0x08    8     prev: payload address of the preceding list member, 0 if none
//
// The set keeps one back-reference, the head, as a header offset. An empty set
// parks the head on the end-of-arena offset so searches terminate instead of
// reading past the arena.
//
// Node views are created and consumed inside this package only. A node aliases
// the payload it describes, so callers must not keep one across a call that
// rewrites the same bytes.
package freeset

import (
	"iter"

	"github.com/joshuapare/arenakit/heap/arena"
	"github.com/joshuapare/arenakit/internal/format"
)

// Set is the explicit free list of one arena.
type Set struct {
	a    *arena.Arena
	head int // header offset of the first member, or a.Len() when empty
}

// New returns an empty set over a.
func New(a *arena.Arena) *Set {
	return &Set{a: a, head: a.Len()}
}

// node is a typed view of the link words inside a free payload.
type node struct {
	a *arena.Arena
	p arena.Ptr
}

func (s *Set) node(p arena.Ptr) node { return node{a: s.a, p: p} }

func (n node) next() arena.Ptr { return arena.Ptr(n.a.Word(int(n.p) + format.NodeNextOffset)) }
func (n node) prev() arena.Ptr { return arena.Ptr(n.a.Word(int(n.p) + format.NodePrevOffset)) }

func (n node) setNext(p arena.Ptr) { n.a.SetWord(int(n.p)+format.NodeNextOffset, uint64(p)) }
func (n node) setPrev(p arena.Ptr) { n.a.SetWord(int(n.p)+format.NodePrevOffset, uint64(p)) }

// End returns the end-of-arena sentinel the head parks on when the set is empty.
func (s *Set) End() int { return s.a.Len() }

// Head returns the header offset of the first member, or End() when empty.
func (s *Set) Head() int { return s.head }

// Empty reports whether the set has no members.
func (s *Set) Empty() bool { return s.head >= s.a.Len() }

// First returns the payload address of the first member, or arena.Nil.
func (s *Set) First() arena.Ptr {
	if s.Empty() {
		return arena.Nil
	}
	return arena.PtrOf(s.head)
}

// Next returns the list successor of p, or arena.Nil.
func (s *Set) Next(p arena.Ptr) arena.Ptr { return s.node(p).next() }

// Prev returns the list predecessor of p, or arena.Nil.
func (s *Set) Prev(p arena.Ptr) arena.Ptr { return s.node(p).prev() }

// Links returns both neighbours of p.
func (s *Set) Links(p arena.Ptr) (next, prev arena.Ptr) {
	n := s.node(p)
	return n.next(), n.prev()
}

// Insert turns the block at header offset loc into a free member of the given
// payload size and splices it between prev and next. A Nil prev makes it the
// new head.
func (s *Set) Insert(loc, size int, next, prev arena.Ptr) {
	s.a.MarkFree(loc, size)
	n := s.node(arena.PtrOf(loc))
	n.setNext(next)
	n.setPrev(prev)
	if prev != arena.Nil {
		s.node(prev).setNext(n.p)
	} else {
		s.head = loc
	}
	if next != arena.Nil {
		s.node(next).setPrev(n.p)
	}
}

// Remove splices p out of the list. When p was the head, the head advances to
// its successor, or to End() if p was the sole member. The header of p is left
// untouched; the caller re-tags the block.
func (s *Set) Remove(p arena.Ptr) {
	n := s.node(p)
	next, prev := n.next(), n.prev()
	if prev != arena.Nil {
		s.node(prev).setNext(next)
	} else if next != arena.Nil {
		s.head = next.Block()
	} else {
		s.head = s.a.Len()
	}
	if next != arena.Nil {
		s.node(next).setPrev(prev)
	}
}

// Reset empties the set without touching the arena.
func (s *Set) Reset() {
	s.head = s.a.Len()
}

// All yields the payload address of every member in list order.
func (s *Set) All() iter.Seq[arena.Ptr] {
	return func(yield func(arena.Ptr) bool) {
		for p := s.First(); p != arena.Nil; p = s.Next(p) {
			if !yield(p) {
				return
			}
		}
	}
}

// Len counts the members. O(n).
func (s *Set) Len() int {
	n := 0
	for range s.All() {
		n++
	}
	return n
}

// Locate returns the neighbours a free block at header offset off would have
// if the list is kept in address order: next is the first member above off,
// prev the last member below it. Either may be Nil.
func (s *Set) Locate(off int) (next, prev arena.Ptr) {
	for p := range s.All() {
		if p.Block() > off {
			return p, prev
		}
		prev = p
	}
	return arena.Nil, prev
}
