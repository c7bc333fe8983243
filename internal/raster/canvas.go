// Package raster implements surface.Surface in memory on top of an
// anti-aliasing path rasterizer. It backs headless snapshots and the
// terminal host.
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/iburimskiy/particle-field/internal/surface"
)

// kappa places cubic control points so four curves approximate a circle.
const kappa = 0.5522847498

// Options controls how surface units map onto pixels.
type Options struct {
	// Scale is pixels per surface unit. Zero means 1.
	Scale float64
	// ScaleY overrides Scale vertically for non-square pixels. Zero means Scale.
	ScaleY float64
	// MinRadius and MinLineWidth are in pixels and keep small primitives
	// visible on coarse rasters.
	MinRadius    float64
	MinLineWidth float64
	// Background fills the canvas on creation and on newly exposed area
	// after a resize. Nil means opaque black.
	Background color.Color
}

// Canvas is an in-memory surface.Surface.
type Canvas struct {
	opts   Options
	img    *image.RGBA
	z      *vector.Rasterizer
	width  float64
	height float64
	alpha  float64
}

var (
	_ surface.Surface = (*Canvas)(nil)
	_ surface.Resizer = (*Canvas)(nil)
)

// New returns a canvas covering width x height surface units.
func New(width, height float64, opts Options) *Canvas {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.ScaleY <= 0 {
		opts.ScaleY = opts.Scale
	}
	if opts.Background == nil {
		opts.Background = color.Black
	}
	c := &Canvas{opts: opts, alpha: 1}
	c.Resize(width, height)
	return c
}

func (c *Canvas) Size() (float64, float64) { return c.width, c.height }
func (c *Canvas) SetAlpha(a float64)       { c.alpha = a }
func (c *Canvas) Alpha() float64           { return c.alpha }

// Image returns the backing pixels. It is replaced on Resize.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Resize reallocates the pixel buffer, keeping the overlapping content.
func (c *Canvas) Resize(width, height float64) {
	c.width, c.height = math.Max(width, 0), math.Max(height, 0)
	pw := int(math.Ceil(c.width * c.opts.Scale))
	ph := int(math.Ceil(c.height * c.opts.ScaleY))

	img := image.NewRGBA(image.Rect(0, 0, pw, ph))
	draw.Draw(img, img.Bounds(), image.NewUniform(c.opts.Background), image.Point{}, draw.Src)
	if c.img != nil {
		draw.Draw(img, c.img.Bounds(), c.img, image.Point{}, draw.Src)
	}
	c.img = img

	if c.z == nil {
		c.z = vector.NewRasterizer(pw, ph)
	} else {
		c.z.Reset(pw, ph)
	}
}

func (c *Canvas) FillRect(x, y, w, h float64, col color.Color) {
	sx, sy := c.opts.Scale, c.opts.ScaleY
	r := image.Rect(
		int(math.Round(x*sx)), int(math.Round(y*sy)),
		int(math.Round((x+w)*sx)), int(math.Round((y+h)*sy)),
	).Intersect(c.img.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(c.img, r, c.source(col), image.Point{}, draw.Over)
}

func (c *Canvas) FillCircle(cx, cy, radius float64, col color.Color) {
	if c.img.Bounds().Empty() {
		return
	}
	x, y := float32(cx*c.opts.Scale), float32(cy*c.opts.ScaleY)
	rx := float32(math.Max(radius*c.opts.Scale, c.opts.MinRadius))
	ry := float32(math.Max(radius*c.opts.ScaleY, c.opts.MinRadius))
	if rx <= 0 || ry <= 0 {
		return
	}
	kx, ky := rx*kappa, ry*kappa

	c.z.Reset(c.img.Bounds().Dx(), c.img.Bounds().Dy())
	c.z.MoveTo(x+rx, y)
	c.z.CubeTo(x+rx, y+ky, x+kx, y+ry, x, y+ry)
	c.z.CubeTo(x-kx, y+ry, x-rx, y+ky, x-rx, y)
	c.z.CubeTo(x-rx, y-ky, x-kx, y-ry, x, y-ry)
	c.z.CubeTo(x+kx, y-ry, x+rx, y-ky, x+rx, y)
	c.z.ClosePath()
	c.rasterize(col)
}

func (c *Canvas) StrokeLine(x0, y0, x1, y1, width float64, col color.Color) {
	if c.img.Bounds().Empty() {
		return
	}
	sx, sy := c.opts.Scale, c.opts.ScaleY
	ax, ay, bx, by := x0*sx, y0*sy, x1*sx, y1*sy
	dx, dy := bx-ax, by-ay
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	half := math.Max(width*math.Min(sx, sy), c.opts.MinLineWidth) / 2
	// Offset perpendicular to the segment.
	nx, ny := -dy/length*half, dx/length*half

	c.z.Reset(c.img.Bounds().Dx(), c.img.Bounds().Dy())
	c.z.MoveTo(float32(ax+nx), float32(ay+ny))
	c.z.LineTo(float32(bx+nx), float32(by+ny))
	c.z.LineTo(float32(bx-nx), float32(by-ny))
	c.z.LineTo(float32(ax-nx), float32(ay-ny))
	c.z.ClosePath()
	c.rasterize(col)
}

func (c *Canvas) rasterize(col color.Color) {
	b := c.img.Bounds()
	c.z.DrawOp = draw.Over
	c.z.Draw(c.img, b, c.source(col), image.Point{})
}

func (c *Canvas) source(col color.Color) *image.Uniform {
	return image.NewUniform(surface.WithAlpha(col, c.alpha))
}
