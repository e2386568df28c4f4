package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSummaryCommand creates the summary subcommand.
func NewSummaryCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "summary FILE",
		Short: "Print line statistics for FILE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, f, err := opts.loadMapping(args[0])
			if err != nil {
				return err
			}
			m, err := f.Mapping()
			if err != nil {
				return err
			}

			st := m.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "File:              %s\n", name)
			fmt.Fprintf(out, "Counted lines:     %d\n", st.CountedLines)
			fmt.Fprintf(out, "Zero-count lines:  %d\n", st.ZeroLines)
			fmt.Fprintf(out, "Uncovered regions: %d\n", st.UncoveredRegions)
			fmt.Fprintf(out, "Max count:         %d\n", st.MaxCount)
			fmt.Fprintf(out, "Line coverage:     %.1f%%\n", st.Percentage())
			if s := f.Summary; s != nil {
				fmt.Fprintf(out, "Export summary:    %d/%d lines (%.1f%%)\n", s.Covered, s.Count, s.Percent)
			}
			return nil
		},
	}
}
