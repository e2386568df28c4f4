package app

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type lineCount struct {
	Line  int    `json:"line"`
	Count uint64 `json:"count"`
}

// NewLinesCommand creates the lines subcommand.
func NewLinesCommand(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "lines FILE",
		Short: "Print the resolved execution count of every counted line",
		Long: `Print one "LINE COUNT" pair per line that has coverage data, in
ascending line order. Lines without data are omitted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, f, err := opts.loadMapping(args[0])
			if err != nil {
				return err
			}
			m, err := f.Mapping()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				counts := make([]lineCount, 0, m.Lines())
				for line, count := range m.CountedLines() {
					counts = append(counts, lineCount{Line: line, Count: count})
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(counts)
			}
			for line, count := range m.CountedLines() {
				fmt.Fprintf(out, "%d %d\n", line, count)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print a JSON array of {line, count} objects")
	return cmd
}
