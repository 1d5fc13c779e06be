package printer

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/joshuapare/arenakit/heap/arena"
)

func hexPtr(p arena.Ptr) string {
	if p == arena.Nil {
		return "-"
	}
	return fmt.Sprintf("0x%X", uint64(p))
}

// printText renders a summary line followed by a table of blocks. blocks is
// the arena's block count, which exceeds len(rows) when FreeOnly is set.
func (p *Printer) printText(a *arena.Arena, head int, rows []row, blocks int) error {
	headStr := "end"
	if head < a.Len() {
		headStr = fmt.Sprintf("0x%X", head)
	}
	if _, err := fmt.Fprintf(p.writer, "arena: %d bytes, %d blocks, free list head: %s\n", a.Len(), blocks, headStr); err != nil {
		return err
	}

	table := tablewriter.NewWriter(p.writer)
	table.SetHeader([]string{"Address", "Tag", "Payload", "Node", "Next", "Prev"})
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, r := range rows {
		line := []string{
			fmt.Sprintf("0x%X", r.Off),
			tagLetter(r.Free),
			strconv.Itoa(r.Size),
			"", "", "",
		}
		if r.Free {
			line[3], line[4], line[5] = hexPtr(r.Node), hexPtr(r.Next), hexPtr(r.Prev)
		}
		table.Append(line)
	}
	table.Render()
	return nil
}

// printPlain writes "address, tag, size" per block, plus links for free blocks.
func (p *Printer) printPlain(rows []row) error {
	for _, r := range rows {
		var err error
		if r.Free {
			_, err = fmt.Fprintf(p.writer, "0x%X, %s, %d, node=%s next=%s prev=%s\n",
				r.Off, tagLetter(r.Free), r.Size, hexPtr(r.Node), hexPtr(r.Next), hexPtr(r.Prev))
		} else {
			_, err = fmt.Fprintf(p.writer, "0x%X, %s, %d\n", r.Off, tagLetter(r.Free), r.Size)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
