package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/joshuapare/arenakit/heap/alloc"
	"github.com/joshuapare/arenakit/heap/trace"
)

func init() {
	rootCmd.AddCommand(newReplayCmd())
}

func newReplayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <script>...",
		Short: "Replay allocation scripts and report utilization",
		Long: `The replay command runs each script on a fresh arena and reports
operation counts, failed requests, peak utilization, and the final block
layout. Every block's contents are checked across resizes and before it is
freed.

Example:
  heapctl replay testdata/*.rep
  heapctl replay short1.rep --size 65536 --validate
  heapctl replay short1.rep --mmap --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, args)
		},
	}
	return cmd
}

// reportRow is one script's outcome.
type reportRow struct {
	path   string
	result *trace.Result
	usage  alloc.Usage
	stats  alloc.Stats
	err    error
}

func runReplay(cmd *cobra.Command, args []string) error {
	var rows []reportRow
	failed := 0
	for _, path := range args {
		printVerbose("Replaying %s on a %d byte arena\n", path, settings.ArenaSize)

		s, err := runSession(cmd.Context(), path, settings, settings.Validate)
		if err != nil {
			rows = append(rows, reportRow{path: path, err: err})
			failed++
			continue
		}
		row := reportRow{path: path, result: s.result, usage: s.heap.Usage(), stats: s.heap.Stats(), err: s.err}
		if row.err == nil {
			row.err = s.heap.Check()
		}
		if row.err != nil {
			failed++
		}
		rows = append(rows, row)
		if err := s.Close(); err != nil {
			return err
		}
	}

	if jsonOut {
		if err := writeReportJSON(rows); err != nil {
			return err
		}
	} else if !quiet {
		writeReportTable(rows)
	}

	if failed > 0 {
		return errors.Newf("%d of %d scripts failed", failed, len(rows))
	}
	return nil
}

func writeReportTable(rows []reportRow) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Script", "Ops", "Failed", "Peak", "Util", "Used", "Free", "Frag", "Status"})
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	for _, r := range rows {
		if r.result == nil {
			table.Append([]string{r.path, "-", "-", "-", "-", "-", "-", "-", "error: " + r.err.Error()})
			continue
		}
		status := "ok"
		if r.err != nil {
			status = "error: " + r.err.Error()
		}
		table.Append([]string{
			r.path,
			strconv.Itoa(r.result.Ops),
			strconv.Itoa(r.result.Failures),
			strconv.Itoa(r.result.Peak),
			percent(r.result.Utilization()),
			strconv.Itoa(r.usage.UsedBlocks),
			strconv.Itoa(r.usage.FreeBlocks),
			percent(r.usage.Fragmentation()),
			status,
		})
	}
	table.Render()
}

func percent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

func writeReportJSON(rows []reportRow) error {
	w := jwriter.NewWriter()
	arr := w.Array()
	for _, r := range rows {
		obj := arr.Object()
		obj.Name("script").String(r.path)
		obj.Name("ok").Bool(r.err == nil)
		if r.err != nil {
			obj.Name("error").String(r.err.Error())
		}
		if r.result != nil {
			obj.Name("ops").Int(r.result.Ops)
			obj.Name("allocs").Int(r.result.Allocs)
			obj.Name("reallocs").Int(r.result.Reallocs)
			obj.Name("frees").Int(r.result.Frees)
			obj.Name("failures").Int(r.result.Failures)
			obj.Name("peak").Int(r.result.Peak)
			obj.Name("arena_size").Int(r.result.ArenaSize)
			obj.Name("utilization").Float64(r.result.Utilization())
			obj.Name("used_blocks").Int(r.usage.UsedBlocks)
			obj.Name("free_blocks").Int(r.usage.FreeBlocks)
			obj.Name("largest_free").Int(r.usage.LargestFree)
			obj.Name("splits").Int(r.stats.SplitCount)
			obj.Name("coalesces").Int(r.stats.CoalesceForward + r.stats.CoalesceBackward)
			obj.Name("moves").Int(r.stats.ReallocMoved)
		}
		obj.End()
	}
	arr.End()
	if err := w.Error(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(os.Stdout, string(w.Bytes()))
	return err
}
