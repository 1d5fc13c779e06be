package printer

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/arenakit/heap/arena"
	"github.com/joshuapare/arenakit/heap/freeset"
)

// sample builds a 128-byte arena: used 24 @0, free 32 @32, used 48 @72.
func sample(t *testing.T) (*arena.Arena, *freeset.Set) {
	t.Helper()
	a := arena.New(make([]byte, 128))
	a.MarkUsed(0, 24)
	a.MarkUsed(32, 32)
	a.MarkUsed(72, 48)
	s := freeset.New(a)
	s.Insert(32, 32, arena.Nil, arena.Nil)
	return a, s
}

func TestPrinter_Plain(t *testing.T) {
	a, s := sample(t)
	var out bytes.Buffer
	require.NoError(t, New(&out, Options{Format: FormatPlain}).Print(a, s.Head()))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Equal(t, []string{
		"0x0, u, 24",
		"0x20, f, 32, node=0x28 next=- prev=-",
		"0x48, u, 48",
	}, lines)
}

func TestPrinter_TextTable(t *testing.T) {
	a, s := sample(t)
	var out bytes.Buffer
	require.NoError(t, New(&out, DefaultOptions()).Print(a, s.Head()))

	text := out.String()
	assert.Contains(t, text, "arena: 128 bytes, 3 blocks, free list head: 0x20")
	assert.Contains(t, text, "Address")
	assert.Contains(t, text, "0x28")
	assert.Contains(t, text, "0x48")
}

func TestPrinter_JSON(t *testing.T) {
	a, s := sample(t)
	var out bytes.Buffer
	require.NoError(t, New(&out, Options{Format: FormatJSON}).Print(a, s.Head()))

	var doc struct {
		ArenaSize int  `json:"arena_size"`
		Head      *int `json:"head"`
		Blocks    []struct {
			Offset int  `json:"offset"`
			Free   bool `json:"free"`
			Size   int  `json:"size"`
			Node   int  `json:"node"`
		} `json:"blocks"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	require.Equal(t, 128, doc.ArenaSize)
	require.NotNil(t, doc.Head)
	require.Equal(t, 32, *doc.Head)
	require.Len(t, doc.Blocks, 3)
	require.True(t, doc.Blocks[1].Free)
	require.Equal(t, 40, doc.Blocks[1].Node)
	require.Equal(t, 48, doc.Blocks[2].Size)
}

func TestPrinter_JSONEmptyListHeadIsNull(t *testing.T) {
	a := arena.New(make([]byte, 32))
	a.MarkUsed(0, 24)
	var out bytes.Buffer
	require.NoError(t, New(&out, Options{Format: FormatJSON}).Print(a, a.Len()))
	require.Contains(t, out.String(), `"head":null`)
}

func TestPrinter_FreeOnly(t *testing.T) {
	a, s := sample(t)
	var out bytes.Buffer
	require.NoError(t, New(&out, Options{Format: FormatPlain, FreeOnly: true}).Print(a, s.Head()))
	require.Equal(t, "0x20, f, 32, node=0x28 next=- prev=-\n", out.String())
}

func TestPrinter_TextFreeOnlyCountsAllBlocks(t *testing.T) {
	a, s := sample(t)
	var out bytes.Buffer
	require.NoError(t, New(&out, Options{Format: FormatText, FreeOnly: true}).Print(a, s.Head()))

	text := out.String()
	assert.Contains(t, text, "arena: 128 bytes, 3 blocks, free list head: 0x20")
	assert.Contains(t, text, "0x20")
	assert.NotContains(t, text, "0x48")
}

func TestPrinter_CorruptArenaStillPrintsPrefix(t *testing.T) {
	a, s := sample(t)
	a.MarkUsed(72, 4096)

	var out bytes.Buffer
	err := New(&out, Options{Format: FormatPlain}).Print(a, s.Head())
	require.ErrorIs(t, err, arena.ErrCorrupt)
	require.Equal(t, 2, strings.Count(out.String(), "\n"))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("json")
	require.NoError(t, err)
	require.Equal(t, FormatJSON, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	require.Equal(t, FormatText, f)

	_, err = ParseFormat("yaml")
	require.Error(t, err)
}
