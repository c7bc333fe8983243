// Package surface defines the drawing contract the particle field renders into
// and the ambient input state (bounds and pointer) that drives the physics.
package surface

import "image/color"

// Surface is a 2D drawing context with canvas-style global alpha.
// Every primitive multiplies its color alpha by the current global alpha.
type Surface interface {
	// Size returns the current pixel dimensions.
	Size() (width, height float64)
	FillRect(x, y, w, h float64, c color.Color)
	FillCircle(cx, cy, r float64, c color.Color)
	StrokeLine(x0, y0, x1, y1, width float64, c color.Color)
	SetAlpha(a float64)
	Alpha() float64
}

// Resizer is implemented by surfaces that own their backing store and must
// follow viewport resizes.
type Resizer interface {
	Resize(width, height float64)
}

// Presenter is implemented by surfaces that buffer a frame and need an
// explicit flush once it is complete.
type Presenter interface {
	Present() error
}

// WithAlpha scales the alpha of c by a, returning a non-premultiplied color.
func WithAlpha(c color.Color, a float64) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	n.A = uint8(float64(n.A)*a + 0.5)
	return n
}
