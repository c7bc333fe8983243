package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iburimskiy/particle-field/internal/game"
	"github.com/iburimskiy/particle-field/internal/soundtrack"
)

func newWindowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "window",
		Short: "Render the field in a desktop window",
		Long: `Opens a resizable window paced by the display refresh.

Keys: H toggles the HUD, O opens a soundtrack, Space pauses it, Esc or Q quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWindow(cmd.Context())
		},
	}
}

func (a *app) runWindow(ctx context.Context) error {
	opts, err := a.driverOptions()
	if err != nil {
		return err
	}

	player := soundtrack.NewPlayer(a.logger)
	defer func() {
		if err := player.Close(); err != nil {
			a.logger.Warn("Failed to close soundtrack", zap.Error(err))
		}
	}()
	if path := a.cfg.Soundtrack.Path; path != "" {
		if err := player.Open(path); err != nil {
			return fmt.Errorf("open soundtrack: %w", err)
		}
	}

	g, err := game.NewGame(game.Options{
		Width:  a.cfg.Window.Width,
		Height: a.cfg.Window.Height,
		Title:  a.cfg.Window.Title,
		HUD:    a.cfg.Window.HUD,
		Driver: opts,
		Player: player,
		Logger: a.logger,
	})
	if err != nil {
		return err
	}
	return g.Run(ctx)
}
