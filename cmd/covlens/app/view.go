package app

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjy-dev/covlens/internal/logger"
	"github.com/zjy-dev/covlens/internal/tui"
)

// NewViewCommand creates the view subcommand.
func NewViewCommand(opts *options) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "view FILE",
		Short: "Browse FILE interactively with coverage that can be toggled and reloaded",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exportPath, err := opts.exportPath()
			if err != nil {
				return err
			}

			name, err := opts.resolveName(args[0])
			if err != nil {
				return err
			}

			load := func() (tui.Snapshot, error) {
				source, err := os.ReadFile(args[0])
				if err != nil {
					return tui.Snapshot{}, fmt.Errorf("failed to read source: %w", err)
				}
				m, err := opts.loader.LoadMapping(exportPath, name)
				if err != nil {
					return tui.Snapshot{}, err
				}
				return tui.Snapshot{Mapping: m, Source: source}, nil
			}

			modelOpts := []tui.Option{tui.WithRenderer(opts.newRenderer(cmd))}
			if watch {
				w, err := tui.Watch(exportPath)
				if err != nil {
					return err
				}
				defer w.Close()
				modelOpts = append(modelOpts, tui.WithChanges(w.Changes()))
				logger.Debug("[View] Watching %s", exportPath)
			}

			// stderr shares the terminal with the viewer
			logger.SetOutput(io.Discard)
			defer logger.SetOutput(os.Stderr)

			return tui.Run(tui.NewModel(args[0], load, modelOpts...))
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload coverage when the export file changes")
	return cmd
}
