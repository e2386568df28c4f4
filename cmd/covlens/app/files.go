package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjy-dev/covlens/internal/export"
	"github.com/zjy-dev/covlens/internal/logger"
)

// NewFilesCommand creates the files subcommand.
func NewFilesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "files",
		Short: "List the files recorded in the export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := opts.loadExport()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range e.Filenames() {
				fmt.Fprintln(out, name)
			}
			return nil
		},
	}
}

// loadExport loads the configured export through the shared loader.
func (o *options) loadExport() (*export.Export, error) {
	path, err := o.exportPath()
	if err != nil {
		return nil, err
	}
	e, err := o.loader.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("[Export] %s: %s %s, %d files", path, e.Type(), e.Version(), len(e.Filenames()))
	return e, nil
}

// loadMapping resolves the FILE argument and builds its mapping.
func (o *options) loadMapping(arg string) (string, *export.File, error) {
	name, err := o.resolveName(arg)
	if err != nil {
		return "", nil, err
	}
	e, err := o.loadExport()
	if err != nil {
		return "", nil, err
	}
	f, err := e.File(name)
	if err != nil {
		return "", nil, err
	}
	return name, f, nil
}
