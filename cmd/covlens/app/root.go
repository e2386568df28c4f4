package app

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/zjy-dev/covlens/internal/config"
	"github.com/zjy-dev/covlens/internal/exec"
	"github.com/zjy-dev/covlens/internal/export"
	"github.com/zjy-dev/covlens/internal/logger"
	"github.com/zjy-dev/covlens/internal/render"
)

// options is shared by all subcommands and filled in before any of them runs.
type options struct {
	configFile string
	rawName    bool

	cfg    *config.Config
	loader *export.Loader

	// runner runs llvm-cov; a CommandExecutor when nil.
	runner exec.Executor
}

// NewCovlensCommand creates the root command for the covlens tool.
func NewCovlensCommand() *cobra.Command {
	return newRootCommand(&options{})
}

func newRootCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "covlens",
		Short: "Annotate source files with llvm-cov execution counts.",
		Long: `covlens reads an llvm-cov JSON export (llvm-cov export -format=text)
and shows, for one source file, the execution count of every line and the
regions that were never executed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Config file (default: covlens.yaml in ., ./configs or the user config dir)")
	flags.StringP("export", "e", "", "Path of the llvm-cov JSON export")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.Bool("no-color", false, "Disable colour output")
	flags.BoolVar(&opts.rawName, "raw-name", false, "Match FILE against export filenames verbatim instead of as an absolute path")

	cmd.AddCommand(NewFilesCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewLinesCommand(opts))
	cmd.AddCommand(NewUncoveredCommand(opts))
	cmd.AddCommand(NewSummaryCommand(opts))
	cmd.AddCommand(NewViewCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))

	return cmd
}

func (o *options) init(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger.SetLevel(cfg.LogLevel)
	logger.SetColorEnable(cfg.Color)

	loader, err := export.NewOsLoader(cfg.CacheSize)
	if err != nil {
		return err
	}
	o.cfg = cfg
	o.loader = loader
	return nil
}

// resolveName turns a FILE argument into the filename used in the export.
func (o *options) resolveName(arg string) (string, error) {
	if o.rawName {
		return arg, nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", arg, err)
	}
	return filepath.Clean(abs), nil
}

// exportPath returns the configured export path.
func (o *options) exportPath() (string, error) {
	return o.cfg.RequireExport()
}

// newRenderer builds a listing renderer writing to cmd's output.
func (o *options) newRenderer(cmd *cobra.Command) *render.Renderer {
	lr := lipgloss.NewRenderer(cmd.OutOrStdout())
	if !o.cfg.Color {
		lr.SetColorProfile(termenv.Ascii)
	}
	return render.New(
		render.WithRenderer(lr),
		render.WithTheme(o.cfg.Theme),
		render.WithSyntax(o.cfg.Syntax),
	)
}
