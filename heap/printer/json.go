package printer

import (
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"

	"github.com/joshuapare/arenakit/heap/arena"
)

// printJSON writes one JSON document describing the arena:
//
//	{"arena_size":1024,"head":0,"blocks":[{"offset":0,"free":true,"size":1016,"node":8,"next":0,"prev":0}]}
//
// A walk error is reported in an "error" property instead of failing the
// document, so a partially corrupt arena still prints what was decoded.
func (p *Printer) printJSON(a *arena.Arena, head int, rows []row, walkErr error) error {
	w := jwriter.NewWriter()
	obj := w.Object()
	obj.Name("arena_size").Int(a.Len())
	if head < a.Len() {
		obj.Name("head").Int(head)
	} else {
		obj.Name("head").Null()
	}

	arr := obj.Name("blocks").Array()
	for _, r := range rows {
		bo := arr.Object()
		bo.Name("offset").Int(r.Off)
		bo.Name("free").Bool(r.Free)
		bo.Name("size").Int(r.Size)
		if r.Free {
			bo.Name("node").Int(int(r.Node))
			bo.Name("next").Int(int(r.Next))
			bo.Name("prev").Int(int(r.Prev))
		}
		bo.End()
	}
	arr.End()

	if walkErr != nil {
		obj.Name("error").String(walkErr.Error())
	}
	obj.End()

	if err := w.Error(); err != nil {
		return err
	}
	if _, err := p.writer.Write(append(w.Bytes(), '\n')); err != nil {
		return err
	}
	return nil
}
