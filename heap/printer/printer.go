// Package printer renders the block layout of an arena for diagnostics.
package printer

import (
	"io"

	"github.com/cockroachdb/errors"

	"github.com/joshuapare/arenakit/heap/arena"
	"github.com/joshuapare/arenakit/internal/format"
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs an aligned table.
	FormatText Format = "text"

	// FormatPlain outputs one comma-separated line per block.
	FormatPlain Format = "plain"

	// FormatJSON outputs a JSON document.
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, plain, json).
	// Default: FormatText
	Format Format

	// FreeOnly skips used blocks.
	FreeOnly bool
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{Format: FormatText}
}

// ParseFormat maps a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatPlain, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", errors.Newf("unknown format %q (must be text, plain, or json)", s)
	}
}

// Printer handles formatted output of arena blocks.
type Printer struct {
	opts   Options
	writer io.Writer
}

// New creates a new Printer writing to w.
func New(w io.Writer, opts Options) *Printer {
	return &Printer{writer: w, opts: opts}
}

// row is one decoded block. Next and Prev are only meaningful when Free.
type row struct {
	arena.Block
	Node arena.Ptr
	Next arena.Ptr
	Prev arena.Ptr
}

// collect walks the arena by address and returns the rows to print plus the
// number of blocks walked, before FreeOnly filtering. On a corrupt header it
// returns what was decoded so far together with the walk error.
func (p *Printer) collect(a *arena.Arena) ([]row, int, error) {
	var rows []row
	blocks := 0
	err := a.Walk(func(b arena.Block) error {
		blocks++
		if p.opts.FreeOnly && !b.Free {
			return nil
		}
		r := row{Block: b}
		if b.Free && b.Size >= format.NodeSize {
			r.Node = b.Ptr()
			r.Next = arena.Ptr(a.Word(int(r.Node) + format.NodeNextOffset))
			r.Prev = arena.Ptr(a.Word(int(r.Node) + format.NodePrevOffset))
		}
		rows = append(rows, r)
		return nil
	})
	return rows, blocks, err
}

// Print writes every block of a in address order. head is the free list head
// (a.Len() when empty) and is included in the summary.
func (p *Printer) Print(a *arena.Arena, head int) error {
	rows, blocks, walkErr := p.collect(a)

	var err error
	switch p.opts.Format {
	case FormatJSON:
		err = p.printJSON(a, head, rows, walkErr)
	case FormatPlain:
		err = p.printPlain(rows)
	default:
		err = p.printText(a, head, rows, blocks)
	}
	if err != nil {
		return errors.Wrap(err, "printer")
	}
	if walkErr != nil {
		return errors.Wrap(walkErr, "printer: walk stopped")
	}
	return nil
}

func tagLetter(free bool) string {
	if free {
		return "f"
	}
	return "u"
}
