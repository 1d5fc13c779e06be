// Package region provides the backing memory for an arena: either an
// ordinary heap slice or an anonymous private mapping obtained from the OS.
package region

import "github.com/cockroachdb/errors"

// ErrSize indicates a non-positive region size.
var ErrSize = errors.New("region: size must be positive")

// Region is a block of memory handed to an allocator.
type Region struct {
	data    []byte
	mapped  bool
	release func([]byte) error
}

// Acquire returns a zeroed region of size bytes. When mmap is true and the
// platform supports it, the memory comes from an anonymous private mapping
// outside the Go heap; otherwise it is a plain slice.
func Acquire(size int, mmap bool) (*Region, error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrSize, "got %d", size)
	}
	if mmap && mmapSupported {
		data, err := mapAnon(size)
		if err != nil {
			return nil, errors.Wrapf(err, "region: map %d bytes", size)
		}
		return &Region{data: data, mapped: true, release: unmap}, nil
	}
	return &Region{data: make([]byte, size)}, nil
}

// Bytes returns the region's memory, or nil after Release.
func (r *Region) Bytes() []byte { return r.data }

// Len returns the region size in bytes, 0 after Release.
func (r *Region) Len() int { return len(r.data) }

// Mapped reports whether the region came from an OS mapping.
func (r *Region) Mapped() bool { return r.mapped }

// Release returns the memory to the OS. Calling it more than once is a no-op.
// Slices previously obtained from Bytes must not be used afterwards.
func (r *Region) Release() error {
	if r.data == nil {
		return nil
	}
	data := r.data
	r.data = nil
	if r.release == nil {
		return nil
	}
	return r.release(data)
}
