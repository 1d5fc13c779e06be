package trace

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/arenakit/heap/alloc"
)

func mustParse(t *testing.T, src string) *Script {
	t.Helper()
	s, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	return s
}

func newHeap(t *testing.T, size int) *alloc.Heap {
	t.Helper()
	h, err := alloc.Open(make([]byte, size), size)
	require.NoError(t, err)
	return h
}

func TestReplay(t *testing.T) {
	s := mustParse(t, `
a 0 100
a 1 200
r 0 300
f 1
a 2 50
f 0
f 2
`)
	res, err := Replay(context.Background(), s, newHeap(t, 4096), Options{Validate: true})
	require.NoError(t, err)
	require.Equal(t, &Result{
		Ops:       7,
		Allocs:    3,
		Reallocs:  1,
		Frees:     3,
		Peak:      500,
		ArenaSize: 4096,
	}, res)
	require.InDelta(t, 500.0/4096.0, res.Utilization(), 1e-9)
}

func TestReplay_ExhaustionIsCountedNotFatal(t *testing.T) {
	s := mustParse(t, `
a 0 1000
a 1 100
r 1 5000
r 1 180
a 2 0
`)
	h := newHeap(t, 256)
	res, err := Replay(context.Background(), s, h, Options{Validate: true})
	require.NoError(t, err)
	require.Equal(t, 5, res.Ops)
	require.Equal(t, 2, res.Failures)
	require.Equal(t, 1, res.Live)
	require.NoError(t, h.Check())
}

func TestReplay_ReallocEdgeCases(t *testing.T) {
	s := mustParse(t, `
r 0 64
r 0 0
f 0
r 1 0
`)
	res, err := Replay(context.Background(), s, newHeap(t, 512), Options{Validate: true})
	require.NoError(t, err)
	require.Zero(t, res.Failures)
	require.Zero(t, res.Live)
	require.Equal(t, 64, res.Peak)
}

func TestReplay_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Replay(ctx, mustParse(t, "a 0 8\n"), newHeap(t, 512), Options{})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, res.Ops)
}

// fakeHeap is a bump allocator with configurable faults.
type fakeHeap struct {
	buf      []byte
	next     int
	sameAddr bool  // every Alloc returns the first block
	noCopy   bool  // Realloc moves without copying
	checkErr error // returned by Check
}

func newFake() *fakeHeap { return &fakeHeap{buf: make([]byte, 1<<14), next: 8} }

func (f *fakeHeap) Alloc(n int) alloc.Ptr {
	if f.sameAddr {
		return alloc.Ptr(8)
	}
	p := f.next
	f.next += 512
	return alloc.Ptr(p)
}

func (f *fakeHeap) Free(alloc.Ptr) {}

func (f *fakeHeap) Realloc(p alloc.Ptr, n int) alloc.Ptr {
	np := f.Alloc(n)
	if !f.noCopy && p != alloc.Nil {
		copy(f.buf[np:np+256], f.buf[p:p+256])
	}
	return np
}

func (f *fakeHeap) Bytes(p alloc.Ptr) []byte { return f.buf[p : p+256] }
func (f *fakeHeap) Check() error             { return f.checkErr }
func (f *fakeHeap) Len() int                 { return len(f.buf) }

func TestReplay_DetectsOverlap(t *testing.T) {
	fake := newFake()
	fake.sameAddr = true
	res, err := Replay(context.Background(), mustParse(t, "a 0 16\na 1 16\n"), fake, Options{})
	require.True(t, errors.Is(err, ErrOverlap))

	var opErr *OpError
	require.True(t, errors.As(err, &opErr))
	require.Equal(t, 1, opErr.Index)
	require.Equal(t, 2, opErr.Op.Line)
	require.Equal(t, 1, res.Ops)
}

func TestReplay_DetectsLostContents(t *testing.T) {
	fake := newFake()
	fake.noCopy = true
	_, err := Replay(context.Background(), mustParse(t, "a 0 16\nr 0 32\n"), fake, Options{})
	require.True(t, errors.Is(err, ErrPayload))
}

func TestReplay_ValidateStopsOnHeapError(t *testing.T) {
	fake := newFake()
	fake.checkErr = errors.New("broken list")
	_, err := Replay(context.Background(), mustParse(t, "a 0 16\n"), fake, Options{Validate: true})
	require.True(t, errors.Is(err, ErrHeap))
	require.Contains(t, err.Error(), "broken list")

	_, err = Replay(context.Background(), mustParse(t, "a 0 16\n"), newFake(), Options{Validate: true})
	require.NoError(t, err)
}

func TestReplay_Testdata(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "*.rep"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			s, err := ParseFile(path)
			require.NoError(t, err)

			h := newHeap(t, 1<<16)
			res, err := Replay(context.Background(), s, h, Options{Validate: true})
			require.NoError(t, err)
			require.Equal(t, len(s.Ops), res.Ops)
			require.Zero(t, res.Failures)
			require.Zero(t, res.Live)

			u := h.Usage()
			require.Equal(t, 1, u.FreeBlocks, "all blocks freed, free space should be one block")
		})
	}
}
