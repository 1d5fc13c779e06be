// Package format houses the low-level block encoding used inside an arena.
// Every block starts with a one-word tag holding the payload size, with the
// low bit repurposed as the used flag. Free blocks additionally carry a
// two-word link node at the start of their payload.
//
// Layout of a block (little-endian words):
//
//	Offset  Size  Description
//	0x00    8     Tag: payload size, +1 when the block is in use.
//	0x08    ...   Payload. For a free block the first 16 bytes are the
//	              link node {next, prev}, both payload offsets.
package format

const (
	// WordSize is the width of every on-arena integer field.
	WordSize = 8

	// HeaderSize is the number of bytes reserved in front of every payload.
	HeaderSize = WordSize

	// Alignment is the granularity of payload sizes and payload offsets.
	// Must be a power of two and at least 2 so the used bit never collides
	// with a real size bit.
	Alignment = 8

	// AlignmentMask is Alignment-1, used for round-up arithmetic.
	AlignmentMask = Alignment - 1

	// NodeSize is the size of the free-list link node stored in a free payload.
	NodeSize = 2 * WordSize

	// NodeNextOffset and NodePrevOffset locate the links inside a node.
	NodeNextOffset = 0
	NodePrevOffset = WordSize

	// MinPayload is the floor applied to every allocation request so a block
	// released later can always host a link node.
	MinPayload = 24

	// MinArenaSize is the smallest arena Init accepts: one header plus one
	// link node. Anything at or below 2*HeaderSize is rejected.
	MinArenaSize = HeaderSize + NodeSize

	// SplitReserve is the space a remainder needs beyond the split point for
	// its own header and link node. A split happens only when the leftover
	// after subtracting it is strictly positive.
	SplitReserve = 2 * HeaderSize

	// usedBit marks a tag as in use.
	usedBit = 1
)
