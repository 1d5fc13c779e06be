package format

// Tag is the raw header word of a block.
type Tag uint64

// EncodeTag builds the header word for a block with the given payload size.
// size must be even; EncodeTag does not check it.
func EncodeTag(size int, used bool) Tag {
	t := Tag(size)
	if used {
		t |= usedBit
	}
	return t
}

// Decode splits the tag into payload size and used flag.
func (t Tag) Decode() (size int, used bool) {
	return int(t &^ usedBit), t&usedBit != 0
}

// Size returns the payload size recorded in the tag.
func (t Tag) Size() int {
	return int(t &^ usedBit)
}

// IsFree reports whether the low bit is clear.
func (t Tag) IsFree() bool {
	return t&usedBit == 0
}

// TotalSize returns header plus payload for the block the tag describes.
func (t Tag) TotalSize() int {
	return HeaderSize + t.Size()
}

// PutTag writes a block header at off.
func PutTag(b []byte, off int, t Tag) {
	PutU64(b, off, uint64(t))
}

// ReadTag reads the block header at off.
func ReadTag(b []byte, off int) Tag {
	return Tag(ReadU64(b, off))
}
