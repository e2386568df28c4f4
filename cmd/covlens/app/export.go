package app

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjy-dev/covlens/internal/exec"
	"github.com/zjy-dev/covlens/internal/export"
	"github.com/zjy-dev/covlens/internal/logger"
)

// NewExportCommand creates the export subcommand.
func NewExportCommand(opts *options) *cobra.Command {
	var (
		gen     export.GenerateOptions
		output  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "export [SOURCES...]",
		Short: "Run llvm-cov export and save its JSON output",
		Long: `Run "llvm-cov export -format=text" for an instrumented binary and its
merged profile. The output is checked to be a supported export before it is
written to --output (or stdout).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen.LLVMCov = opts.cfg.LLVMCov
			gen.Sources = args

			runner := opts.runner
			if runner == nil {
				runner = &exec.CommandExecutor{Timeout: timeout}
			}
			data, err := export.Generate(runner, gen)
			if err != nil {
				return err
			}
			e, err := export.Parse(data)
			if err != nil {
				return fmt.Errorf("llvm-cov produced an unusable export: %w", err)
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			logger.Info("[Export] Wrote %s (%d files)", output, len(e.Filenames()))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&gen.Binary, "binary", "", "Instrumented binary")
	flags.StringVar(&gen.ProfData, "profdata", "", "Merged .profdata file")
	flags.StringVarP(&output, "output", "o", "", "Write the export here instead of stdout")
	flags.String("llvm-cov", "llvm-cov", "llvm-cov binary")
	flags.DurationVar(&timeout, "timeout", 5*time.Minute, "Abort llvm-cov after this long")
	_ = cmd.MarkFlagRequired("binary")
	_ = cmd.MarkFlagRequired("profdata")
	return cmd
}
