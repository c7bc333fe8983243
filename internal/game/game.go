// Package game hosts the particle field in an ebiten window. Ebiten calls
// Update and Draw once per display refresh, which paces the frames.
package game

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/iburimskiy/particle-field/internal/driver"
	"github.com/iburimskiy/particle-field/internal/soundtrack"
	"github.com/iburimskiy/particle-field/internal/surface"
)

// Options configures a Game.
type Options struct {
	Width  int
	Height int
	Title  string
	HUD    bool
	Driver driver.Options
	// Player is optional; without it the soundtrack keys do nothing.
	Player *soundtrack.Player
	Logger *zap.Logger
}

type pickResult struct {
	path string
	err  error
}

// Game implements ebiten.Game.
type Game struct {
	driver *driver.Driver
	screen *screenSurface
	player *soundtrack.Player
	logger *zap.Logger
	title  string

	// last reported layout and pointer
	width, height int
	cursor        image.Point
	cursorSeen    bool
	touches       []ebiten.TouchID

	hud     bool
	picking bool
	picked  chan pickResult
	lastErr error
	started time.Time
}

// NewGame seeds the field over the initial window size.
func NewGame(opts Options) (*Game, error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	opts.Driver.Logger = opts.Logger

	screen := newScreenSurface(opts.Width, opts.Height)
	d, err := driver.New(screen, opts.Driver)
	if err != nil {
		return nil, fmt.Errorf("create frame driver: %w", err)
	}
	return &Game{
		driver:  d,
		screen:  screen,
		player:  opts.Player,
		logger:  opts.Logger.Named("window"),
		title:   opts.Title,
		width:   opts.Width,
		height:  opts.Height,
		hud:     opts.HUD,
		picked:  make(chan pickResult, 1),
		started: time.Now(),
	}, nil
}

// Driver exposes the frame driver, mainly so callers can Stop it.
func (g *Game) Driver() *driver.Driver { return g.driver }

func (g *Game) Update() error {
	if g.driver.State() == driver.Stopped {
		return ebiten.Termination
	}

	g.updatePointer()

	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.hud = !g.hud
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) && g.player != nil {
		g.player.TogglePause()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyO) && g.player != nil && !g.picking {
		g.picking = true
		go func() {
			path, err := soundtrack.Pick()
			g.picked <- pickResult{path: path, err: err}
		}()
	}
	g.collectPick()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		g.driver.Stop()
		return ebiten.Termination
	}
	return nil
}

// updatePointer forwards the cursor, or the first touch, when it moved.
func (g *Game) updatePointer() {
	x, y := ebiten.CursorPosition()
	g.touches = ebiten.AppendTouchIDs(g.touches[:0])
	if len(g.touches) > 0 {
		x, y = ebiten.TouchPosition(g.touches[0])
	}

	p := image.Pt(x, y)
	if g.cursorSeen && p == g.cursor {
		return
	}
	g.cursor, g.cursorSeen = p, true
	g.driver.Apply(surface.Move(float64(x), float64(y)))
}

func (g *Game) collectPick() {
	select {
	case res := <-g.picked:
		g.picking = false
		switch {
		case res.err != nil:
			g.lastErr = res.err
		case res.path != "":
			if err := g.player.Open(res.path); err != nil {
				g.logger.Warn("Soundtrack failed to open", zap.String("path", res.path), zap.Error(err))
				g.lastErr = err
			} else {
				g.lastErr = nil
			}
		}
	default:
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.screen.img = screen
	if err := g.driver.Frame(g.screen); err != nil && !errors.Is(err, driver.ErrStopped) {
		g.lastErr = err
	}
	if g.hud {
		g.drawHUD(screen)
	}
}

// Layout follows the window so the field always spans the full viewport.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.driver.Apply(surface.Resize(float64(outsideWidth), float64(outsideHeight)))
	}
	return outsideWidth, outsideHeight
}

// Run opens the window and blocks until the window closes, the user quits,
// or ctx is done.
func (g *Game) Run(ctx context.Context) error {
	ebiten.SetWindowSize(g.width, g.height)
	ebiten.SetWindowTitle(g.title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(true)
	// The fade overlay needs the previous frame to stay on screen.
	ebiten.SetScreenClearedEveryFrame(false)

	stop := context.AfterFunc(ctx, g.driver.Stop)
	defer stop()

	g.logger.Info("Window opened", zap.Int("width", g.width), zap.Int("height", g.height))
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("run window: %w", err)
	}
	g.driver.Stop()
	g.logger.Info("Window closed", zap.Uint64("frames", g.driver.Stats().Frames))
	return nil
}
