package game

import (
	"fmt"
	"image/color"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lucasb-eyer/go-colorful"
)

// HUD panel geometry
const (
	hudX      = 8
	hudY      = 8
	hudWidth  = 300
	hudHeight = 78
	meterX    = hudX + 8
	meterY    = hudY + hudHeight - 16
	meterW    = hudWidth - 16
	meterH    = 8
)

var (
	hudBackground = color.RGBA{R: 5, G: 8, B: 18, A: 255}
	hudBorder     = color.RGBA{R: 60, G: 70, B: 90, A: 255}
)

// drawHUD paints an opaque status panel. The screen is never cleared, so the
// panel background is redrawn every frame to keep the text crisp.
func (g *Game) drawHUD(screen *ebiten.Image) {
	vector.DrawFilledRect(screen, hudX, hudY, hudWidth, hudHeight, hudBackground, false)
	vector.StrokeRect(screen, hudX, hudY, hudWidth, hudHeight, 1, hudBorder, false)

	st := g.driver.Stats()
	ebitenutil.DebugPrintAt(screen,
		fmt.Sprintf("FPS %.0f  particles %d  up %s", ebiten.ActualFPS(), len(g.driver.Field()), uptime(time.Since(g.started))),
		hudX+8, hudY+4)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("frames %d", st.Frames), hudX+8, hudY+20)
	ebitenutil.DebugPrintAt(screen, g.status(), hudX+8, hudY+36)

	level := 0.0
	if g.player != nil {
		level = g.player.Level()
	}
	vector.StrokeRect(screen, meterX, meterY, meterW, meterH, 1, hudBorder, false)
	if fill := meterFill(level, meterW); fill > 0 {
		// Hue slides from blue towards red as the track gets louder.
		r, gr, b := colorful.Hsv(200-160*float64(fill)/meterW, 0.8, 0.9).RGB255()
		vector.DrawFilledRect(screen, meterX, meterY, fill, meterH, color.RGBA{R: r, G: gr, B: b, A: 255}, false)
	}
}

func (g *Game) status() string {
	status := "O: open soundtrack  H: hud  Esc/Q: quit"
	if g.player != nil {
		if path, paused := g.player.Status(); path != "" {
			state := "playing"
			if paused {
				state = "paused"
			}
			status = fmt.Sprintf("%s %s (Space)", state, filepath.Base(path))
		}
	}
	if g.picking {
		status = "choosing a file..."
	}
	if g.lastErr != nil {
		status += " | error: " + g.lastErr.Error()
	}
	return status
}
