package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zjy-dev/covlens/internal/coverage"
	"github.com/zjy-dev/covlens/internal/render"
)

// NewShowCommand creates the show subcommand.
func NewShowCommand(opts *options) *cobra.Command {
	var hide bool

	cmd := &cobra.Command{
		Use:   "show FILE",
		Short: "Print FILE with an execution count gutter and uncovered regions highlighted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				source  []byte
				mapping *coverage.FileMapping
			)

			g := new(errgroup.Group)
			g.Go(func() error {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("failed to read source: %w", err)
				}
				source = data
				return nil
			})
			if !hide {
				g.Go(func() error {
					_, f, err := opts.loadMapping(args[0])
					if err != nil {
						return err
					}
					mapping, err = f.Mapping()
					return err
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			st := render.NewState()
			if mapping != nil {
				st.Load(mapping)
			}
			rd := opts.newRenderer(cmd)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, rd.Header(args[0], st))
			return rd.Render(out, args[0], source, st)
		},
	}

	cmd.Flags().BoolVar(&hide, "no-coverage", false, "Print the source without coverage annotations")
	return cmd
}
