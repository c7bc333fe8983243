// Package terminal hosts the particle field in a terminal with tcell. The
// frame driver paces itself while a pump goroutine feeds it mouse and
// resize events.
package terminal

import (
	"context"
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iburimskiy/particle-field/internal/driver"
	"github.com/iburimskiy/particle-field/internal/surface"
)

// Options configures a Host.
type Options struct {
	// CellWidth and CellHeight are the surface units covered by one cell.
	CellWidth  int
	CellHeight int
	Driver     driver.Options
	// Screen overrides the real terminal, mainly for tests.
	Screen tcell.Screen
	Logger *zap.Logger
}

// Host owns the tcell screen and the driver that renders into it.
type Host struct {
	screen tcell.Screen
	surf   *Surface
	driver *driver.Driver
	logger *zap.Logger
}

// NewHost initializes the screen. It fails fast when no terminal is
// available so callers can report it before anything is drawn.
func NewHost(opts Options) (*Host, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.CellWidth <= 0 || opts.CellHeight <= 0 {
		return nil, errors.New("cell size must be positive")
	}
	opts.Driver.Logger = opts.Logger

	screen := opts.Screen
	if screen == nil {
		var err error
		if screen, err = tcell.NewScreen(); err != nil {
			return nil, fmt.Errorf("create screen: %w", err)
		}
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("init screen: %w", err)
	}
	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.HideCursor()
	screen.Clear()

	surf := NewSurface(screen, opts.CellWidth, opts.CellHeight)
	d, err := driver.New(surf, opts.Driver)
	if err != nil {
		screen.Fini()
		return nil, fmt.Errorf("create frame driver: %w", err)
	}
	return &Host{
		screen: screen,
		surf:   surf,
		driver: d,
		logger: opts.Logger.Named("terminal"),
	}, nil
}

func (h *Host) Driver() *driver.Driver { return h.driver }

// Run renders until the user quits, the driver fails, or ctx is done. The
// screen is restored before Run returns.
func (h *Host) Run(ctx context.Context) error {
	defer h.screen.Fini()

	cols, rows := h.screen.Size()
	h.logger.Info("Terminal opened", zap.Int("cols", cols), zap.Int("rows", rows))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := h.driver.Run(gctx)
		// Wake the pump out of PollEvent.
		_ = h.screen.PostEvent(tcell.NewEventInterrupt(nil))
		if errors.Is(err, driver.ErrStopped) {
			// Quit arrived before the loop started.
			return nil
		}
		return err
	})
	g.Go(h.pump)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("terminal loop: %w", err)
	}
	h.logger.Info("Terminal closed", zap.Uint64("frames", h.driver.Stats().Frames))
	return nil
}

// pump converts tcell events into surface events until the driver stops.
func (h *Host) pump() error {
	defer h.driver.Stop()
	for {
		ev := h.screen.PollEvent()
		if ev == nil {
			return nil
		}
		select {
		case <-h.driver.Done():
			return nil
		default:
		}

		switch ev := ev.(type) {
		case *tcell.EventMouse:
			col, row := ev.Position()
			h.driver.Input().Post(surface.Move(h.surf.CellCenter(col, row)))
		case *tcell.EventResize:
			cols, rows := ev.Size()
			h.driver.Input().Post(surface.Resize(h.surf.units(cols, rows)))
		case *tcell.EventKey:
			if quitKey(ev) {
				h.logger.Debug("Quit requested")
				return nil
			}
		}
	}
}

func quitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}
