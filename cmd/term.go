package cmd

import (
	"github.com/spf13/cobra"

	"github.com/iburimskiy/particle-field/internal/terminal"
)

func newTermCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "term",
		Short: "Render the field in the terminal with half-block cells",
		Long: `Draws two pixels per cell using the upper half block character.
The mouse pushes particles away; Esc, Ctrl-C or q quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.driverOptions()
			if err != nil {
				return err
			}
			host, err := terminal.NewHost(terminal.Options{
				CellWidth:  a.cfg.Terminal.CellWidth,
				CellHeight: a.cfg.Terminal.CellHeight,
				Driver:     opts,
				Logger:     a.logger,
			})
			if err != nil {
				return err
			}
			return host.Run(cmd.Context())
		},
	}
}
