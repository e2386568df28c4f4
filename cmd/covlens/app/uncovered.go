package app

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjy-dev/covlens/internal/coverage"
)

// NewUncoveredCommand creates the uncovered subcommand.
func NewUncoveredCommand(opts *options) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "uncovered FILE",
		Short: "Print the regions of FILE that were never executed",
		Long: `Print one "LINE:COL-LINE:COL" range per uncovered region. The end
position is exclusive. Adjacent regions are printed separately.`,
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

			regions := m.UncoveredRegions()
			out := cmd.OutOrStdout()
			if asJSON {
				if regions == nil {
					regions = []coverage.Region{}
				}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(regions)
			}
			for _, r := range regions {
				fmt.Fprintln(out, r)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print a JSON array of {start, end} objects")
	return cmd
}
