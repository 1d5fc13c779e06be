package main

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/joshuapare/arenakit/heap/printer"
)

var (
	dumpFormat   string
	dumpFreeOnly bool
)

func init() {
	cmd := newDumpCmd()
	cmd.Flags().StringVarP(&dumpFormat, "format", "f", "text", "Output format (text, plain, json)")
	cmd.Flags().BoolVar(&dumpFreeOnly, "free-only", false, "Show free blocks only")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <script>",
		Short: "Replay a script and print the final block layout",
		Long: `The dump command replays a script and prints every block of the
resulting arena in address order: header offset, used or free, payload size,
and for free blocks the link node and its next/prev neighbours.

A replay error does not suppress the dump; the layout at the failing
operation is printed before the error is reported.

Example:
  heapctl dump short1.rep
  heapctl dump short1.rep --format plain --free-only
  heapctl dump short1.rep --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(cmd, args)
		},
	}
	return cmd
}

func runDump(cmd *cobra.Command, args []string) error {
	format, err := printer.ParseFormat(settings.Format)
	if err != nil {
		return err
	}
	if jsonOut {
		format = printer.FormatJSON
	}

	s, err := runSession(cmd.Context(), args[0], settings, settings.Validate)
	if err != nil {
		return err
	}
	defer s.Close()

	printVerbose("%s: %d ops on a %d byte arena\n", s.script.Name, s.result.Ops, s.heap.Len())
	opts := printer.Options{Format: format, FreeOnly: dumpFreeOnly}
	if err := s.heap.DumpTo(os.Stdout, opts); err != nil {
		return errors.Wrap(err, "dump")
	}
	return s.err
}
