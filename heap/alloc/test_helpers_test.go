package alloc

import (
	"bytes"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/arenakit/internal/format"
)

// newTestHeap returns a Heap initialized over a fresh region of size bytes.
func newTestHeap(t testing.TB, size int) *Heap {
	t.Helper()
	h := New()
	require.True(t, h.Init(make([]byte, size), size), "Init(%d)", size)
	return h
}

// fill writes a byte pattern derived from seed over the whole payload of p.
func fill(h *Heap, p Ptr, seed byte) {
	b := h.Bytes(p)
	for i := range b {
		b[i] = seed + byte(i)
	}
}

// requirePattern checks the first n payload bytes of p against fill's pattern.
func requirePattern(t testing.TB, h *Heap, p Ptr, seed byte, n int) {
	t.Helper()
	b := h.Bytes(p)
	require.GreaterOrEqual(t, len(b), n)
	want := make([]byte, n)
	for i := range want {
		want[i] = seed + byte(i)
	}
	if !bytes.Equal(want, b[:n]) {
		require.Equal(t, want, b[:n], "payload 0x%X", uint64(p))
	}
}

// requireConsistent validates the heap and checks that blocks cover the arena.
func requireConsistent(t testing.TB, h *Heap) {
	t.Helper()
	require.NoError(t, h.Check())
	u := h.Usage()
	require.Equal(t, u.ArenaSize, u.UsedBytes+u.FreeBytes+u.HeaderBytes)
}

// requireDisjoint checks that no two live payloads overlap and that each one
// fits inside the arena.
func requireDisjoint(t testing.TB, h *Heap, live []Ptr) {
	t.Helper()
	sorted := slices.Clone(live)
	slices.Sort(sorted)
	for i, p := range sorted {
		end := int(p) + h.Size(p)
		require.LessOrEqual(t, end, h.Len())
		if i+1 < len(sorted) {
			require.LessOrEqual(t, end+format.HeaderSize, int(sorted[i+1]),
				"payload 0x%X overlaps 0x%X", uint64(p), uint64(sorted[i+1]))
		}
	}
}
