package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/particle-field/internal/surface"
)

// screenSurface draws onto the ebiten screen handed to Draw. Its size
// follows Layout rather than the image so the field sees resizes before the
// first frame at the new size.
type screenSurface struct {
	img    *ebiten.Image
	width  float64
	height float64
	alpha  float64
}

var (
	_ surface.Surface = (*screenSurface)(nil)
	_ surface.Resizer = (*screenSurface)(nil)
)

func newScreenSurface(width, height int) *screenSurface {
	return &screenSurface{width: float64(width), height: float64(height), alpha: 1}
}

func (s *screenSurface) Size() (float64, float64) { return s.width, s.height }
func (s *screenSurface) Resize(w, h float64)      { s.width, s.height = w, h }
func (s *screenSurface) SetAlpha(a float64)       { s.alpha = a }
func (s *screenSurface) Alpha() float64           { return s.alpha }

func (s *screenSurface) FillRect(x, y, w, h float64, c color.Color) {
	if s.img == nil {
		return
	}
	vector.DrawFilledRect(s.img, float32(x), float32(y), float32(w), float32(h), surface.WithAlpha(c, s.alpha), false)
}

func (s *screenSurface) FillCircle(cx, cy, r float64, c color.Color) {
	if s.img == nil {
		return
	}
	vector.DrawFilledCircle(s.img, float32(cx), float32(cy), float32(r), surface.WithAlpha(c, s.alpha), true)
}

func (s *screenSurface) StrokeLine(x0, y0, x1, y1, width float64, c color.Color) {
	if s.img == nil {
		return
	}
	vector.StrokeLine(s.img, float32(x0), float32(y0), float32(x1), float32(y1), float32(width), surface.WithAlpha(c, s.alpha), true)
}
