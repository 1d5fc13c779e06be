package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/spf13/cobra"

	"github.com/joshuapare/arenakit/heap/trace"
	"github.com/joshuapare/arenakit/heap/verify"
)

func init() {
	rootCmd.AddCommand(newCheckCmd())
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <script>...",
		Short: "Replay scripts validating the heap after every operation",
		Long: `The check command replays each script with a full heap consistency
check after every operation and reports the first failure: the operation
and script line, and which check failed (block walk, free list agreement,
conservation, or splinter).

Example:
  heapctl check short1.rep
  heapctl check testdata/*.rep --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args)
		},
	}
	return cmd
}

type checkResult struct {
	path string
	ops  int
	err  error
}

func runCheck(cmd *cobra.Command, args []string) error {
	var results []checkResult
	failed := 0
	for _, path := range args {
		r := checkResult{path: path}
		s, err := runSession(cmd.Context(), path, settings, true)
		if err != nil {
			r.err = err
		} else {
			r.ops, r.err = s.result.Ops, s.err
			if err := s.Close(); err != nil {
				return err
			}
		}
		if r.err != nil {
			failed++
		}
		results = append(results, r)
	}

	if jsonOut {
		if err := writeCheckJSON(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.err == nil {
				printInfo("✓ %s: %d ops, heap consistent\n", r.path, r.ops)
				continue
			}
			printInfo("✗ %s: after %d ops: %v\n", r.path, r.ops, r.err)
			var opErr *trace.OpError
			if errors.As(r.err, &opErr) {
				printVerbose("  line %d: %s id %d size %d\n", opErr.Op.Line, opErr.Op.Kind, opErr.Op.ID, opErr.Op.Size)
			}
		}
	}

	if failed > 0 {
		return errors.Newf("%d of %d scripts failed", failed, len(results))
	}
	return nil
}

func writeCheckJSON(results []checkResult) error {
	w := jwriter.NewWriter()
	arr := w.Array()
	for _, r := range results {
		obj := arr.Object()
		obj.Name("script").String(r.path)
		obj.Name("ops").Int(r.ops)
		obj.Name("valid").Bool(r.err == nil)
		if r.err != nil {
			obj.Name("error").String(r.err.Error())
			var opErr *trace.OpError
			if errors.As(r.err, &opErr) {
				obj.Name("line").Int(opErr.Op.Line)
			}
			var ve *verify.ValidationError
			if errors.As(r.err, &ve) {
				obj.Name("check").String(ve.Type)
				obj.Name("offset").Int(ve.Offset)
			}
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
