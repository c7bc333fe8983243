package particle

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/iburimskiy/particle-field/internal/surface"
)

// DefaultCount is the reference population size.
const DefaultCount = 100

// Field is the ordered particle population. Its length never changes after
// Initialize.
type Field []Particle

// Initialize constructs exactly count particles inside b.
func Initialize(rng *rand.Rand, count int, b surface.Bounds, palette Palette) Field {
	if count < 0 {
		count = 0
	}
	f := make(Field, count)
	for i := range f {
		f[i] = New(rng, b, palette)
	}
	return f
}

// StepAndDraw updates then draws every particle in field order. Update only
// reads the pointer and bounds, so the order affects overlap, not physics.
func StepAndDraw(f Field, ptr surface.Pointer, b surface.Bounds, s surface.Surface, prm Params) {
	for i := range f {
		Update(&f[i], ptr, b, prm)
		Draw(f[i], s)
	}
}

// Edges visits every unordered pair closer than LinkRadius with the alpha of
// the line joining them. Coincident pairs are skipped.
//
// The scan is O(n²); fine for a field of a few hundred particles.
func Edges(f Field, prm Params, visit func(a, b *Particle, alpha float64)) {
	for i := 0; i < len(f); i++ {
		for j := i + 1; j < len(f); j++ {
			dist := r2.Norm(r2.Sub(f[i].Pos, f[j].Pos))
			if dist <= 0 || dist >= prm.LinkRadius {
				continue
			}
			visit(&f[i], &f[j], prm.LinkAlpha*(1-dist/prm.LinkRadius))
		}
	}
}

// RenderEdges strokes the proximity edges of f onto s.
func RenderEdges(f Field, s surface.Surface, prm Params) {
	Edges(f, prm, func(a, b *Particle, alpha float64) {
		s.StrokeLine(a.Pos.X, a.Pos.Y, b.Pos.X, b.Pos.Y, prm.LinkWidth, surface.WithAlpha(prm.LinkColor, alpha))
	})
}
