package app

import (
	"github.com/spf13/cobra"

	"github.com/zjy-dev/covlens/internal/logger"
	"github.com/zjy-dev/covlens/internal/report"
)

// NewReportCommand creates the report subcommand.
func NewReportCommand(opts *options) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a markdown coverage report for every file in the export",
		Long: `Write a markdown report with per-file line statistics and the
uncovered regions of each file. With --output-dir the report is saved to a
timestamped file in that directory; otherwise it is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.exportPath()
			if err != nil {
				return err
			}
			e, err := opts.loadExport()
			if err != nil {
				return err
			}
			rep, err := report.Build(path, e)
			if err != nil {
				return err
			}

			if outputDir == "" {
				_, err := cmd.OutOrStdout().Write([]byte(report.Markdown(rep)))
				return err
			}
			var reporter report.Reporter = report.NewMarkdownReporter(outputDir)
			saved, err := reporter.Save(rep)
			if err != nil {
				return err
			}
			logger.Info("[Report] Saved %s (%d files)", saved, len(rep.Files))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory to save the report in")
	return cmd
}
