package alloc

import "github.com/cockroachdb/errors"

var (
	// ErrNotInitialized indicates an operation on a Heap that was never
	// successfully initialized.
	ErrNotInitialized = errors.New("alloc: heap not initialized")

	// ErrRegionTooSmall indicates a region at or below two headers in size.
	ErrRegionTooSmall = errors.New("alloc: region too small")

	// ErrRegionShort indicates a requested arena size larger than the region.
	ErrRegionShort = errors.New("alloc: size exceeds region")
)
