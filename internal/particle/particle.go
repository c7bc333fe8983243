// Package particle holds the particle record and the per-frame physics and
// drawing passes over a field of them.
package particle

import (
	"image/color"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/iburimskiy/particle-field/internal/surface"
)

// Particle is a point mass. Pos and Vel change every frame; radius, opacity
// and color are fixed at construction.
type Particle struct {
	Pos r2.Vec
	Vel r2.Vec

	radius  float64
	opacity float64
	color   color.NRGBA
}

// Make builds a particle with explicit attributes.
func Make(pos, vel r2.Vec, radius, opacity float64, c color.NRGBA) Particle {
	return Particle{Pos: pos, Vel: vel, radius: radius, opacity: opacity, color: c}
}

// New draws every attribute from an independent uniform distribution. The
// position covers b; with zero bounds the particle starts pinned at the origin.
func New(rng *rand.Rand, b surface.Bounds, palette Palette) Particle {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return Particle{
		Pos: r2.Vec{
			X: rng.Float64() * b.Width,
			Y: rng.Float64() * b.Height,
		},
		Vel: r2.Vec{
			X: uniform(rng, MinSpeed, MaxSpeed),
			Y: uniform(rng, MinSpeed, MaxSpeed),
		},
		radius:  uniform(rng, MinRadius, MaxRadius),
		opacity: uniform(rng, MinOpacity, MaxOpacity),
		color:   palette[rng.IntN(len(palette))],
	}
}

func (p Particle) Radius() float64    { return p.radius }
func (p Particle) Opacity() float64   { return p.opacity }
func (p Particle) Color() color.NRGBA { return p.color }

// Update advances p by one frame: Euler integration with a unit step,
// reflection off the bounds, then the pointer push.
//
// Reflection tests the integrated position and does not clamp it, so a
// particle can sit outside the bounds for one frame.
func Update(p *Particle, ptr surface.Pointer, b surface.Bounds, prm Params) {
	p.Pos = r2.Add(p.Pos, p.Vel)

	if p.Pos.X < 0 || p.Pos.X > b.Width {
		p.Vel.X = -p.Vel.X
	}
	if p.Pos.Y < 0 || p.Pos.Y > b.Height {
		p.Vel.Y = -p.Vel.Y
	}

	p.Vel = r2.Add(p.Vel, Repulsion(p.Pos, ptr, prm))
}

// Repulsion is the velocity delta the pointer applies to a particle at pos:
// RepelStrength along the unit vector away from the pointer when the
// distance is inside (0, RepelRadius), zero otherwise.
func Repulsion(pos r2.Vec, ptr surface.Pointer, prm Params) r2.Vec {
	d := r2.Sub(pos, r2.Vec{X: ptr.X, Y: ptr.Y})
	dist := r2.Norm(d)
	if dist <= 0 || dist >= prm.RepelRadius {
		return r2.Vec{}
	}
	return r2.Scale(prm.RepelStrength/dist, d)
}

// Draw paints p as a filled circle and leaves the global alpha at 1.
func Draw(p Particle, s surface.Surface) {
	s.SetAlpha(p.opacity)
	s.FillCircle(p.Pos.X, p.Pos.Y, p.radius, p.color)
	s.SetAlpha(1)
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
