package terminal

import (
	"image/color"

	"github.com/gdamore/tcell/v2"

	"github.com/iburimskiy/particle-field/internal/raster"
	"github.com/iburimskiy/particle-field/internal/surface"
)

// halfBlock paints the upper half of a cell in the foreground color and the
// lower half in the background color, giving two pixels per cell.
const halfBlock = '▀'

// Surface draws into a raster of cols x 2*rows pixels and copies it to the
// screen on Present. One cell spans cellW x cellH surface units.
type Surface struct {
	*raster.Canvas
	screen       tcell.Screen
	cellW, cellH float64
}

var (
	_ surface.Surface   = (*Surface)(nil)
	_ surface.Resizer   = (*Surface)(nil)
	_ surface.Presenter = (*Surface)(nil)
)

// NewSurface sizes the raster from the screen's current cell grid.
func NewSurface(screen tcell.Screen, cellW, cellH int) *Surface {
	s := &Surface{screen: screen, cellW: float64(cellW), cellH: float64(cellH)}
	w, h := s.units(screen.Size())
	s.Canvas = raster.New(w, h, raster.Options{
		Scale:        1 / s.cellW,
		ScaleY:       2 / s.cellH,
		MinRadius:    0.6,
		MinLineWidth: 0.8,
		Background:   color.Black,
	})
	return s
}

// units converts a cell grid to surface units.
func (s *Surface) units(cols, rows int) (float64, float64) {
	return float64(cols) * s.cellW, float64(rows) * s.cellH
}

// CellCenter maps a cell to the surface point at its center.
func (s *Surface) CellCenter(col, row int) (float64, float64) {
	return (float64(col) + 0.5) * s.cellW, (float64(row) + 0.5) * s.cellH
}

// Resize follows the new viewport and asks tcell for a full repaint.
func (s *Surface) Resize(width, height float64) {
	s.Canvas.Resize(width, height)
	s.screen.Sync()
}

func (s *Surface) Present() error {
	img := s.Image()
	b := img.Bounds()
	for y := 0; y < b.Dy(); y += 2 {
		for x := 0; x < b.Dx(); x++ {
			top := img.RGBAAt(x, y)
			bottom := img.RGBAAt(x, y+1)
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(top.R), int32(top.G), int32(top.B))).
				Background(tcell.NewRGBColor(int32(bottom.R), int32(bottom.G), int32(bottom.B)))
			s.screen.SetContent(x, y/2, halfBlock, nil, style)
		}
	}
	s.screen.Show()
	return nil
}
