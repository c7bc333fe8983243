package particle

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/iburimskiy/particle-field/internal/surface"
	"github.com/iburimskiy/particle-field/internal/surface/surfacetest"
)

var (
	bounds = surface.Bounds{Width: 800, Height: 600}
	// farAway keeps the pointer term out of tests that only exercise motion.
	farAway = surface.Pointer{X: -1e6, Y: -1e6}
)

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func at(x, y, vx, vy float64) Particle {
	return Make(r2.Vec{X: x, Y: y}, r2.Vec{X: vx, Y: vy}, 2, 0.5, DefaultPalette[0])
}

func TestNew_Ranges(t *testing.T) {
	rng := newRand()
	seen := map[uint32]bool{}
	for i := 0; i < 1000; i++ {
		p := New(rng, bounds, DefaultPalette)

		assert.GreaterOrEqual(t, p.Pos.X, 0.0)
		assert.LessOrEqual(t, p.Pos.X, bounds.Width)
		assert.GreaterOrEqual(t, p.Pos.Y, 0.0)
		assert.LessOrEqual(t, p.Pos.Y, bounds.Height)

		assert.GreaterOrEqual(t, p.Vel.X, MinSpeed)
		assert.LessOrEqual(t, p.Vel.X, MaxSpeed)
		assert.GreaterOrEqual(t, p.Vel.Y, MinSpeed)
		assert.LessOrEqual(t, p.Vel.Y, MaxSpeed)

		assert.GreaterOrEqual(t, p.Radius(), MinRadius)
		assert.LessOrEqual(t, p.Radius(), MaxRadius)
		assert.GreaterOrEqual(t, p.Opacity(), MinOpacity)
		assert.LessOrEqual(t, p.Opacity(), MaxOpacity)

		c := p.Color()
		seen[uint32(c.R)<<16|uint32(c.G)<<8|uint32(c.B)] = true
	}
	assert.Len(t, seen, 2, "both palette colors should appear")
}

func TestNew_ZeroBoundsPinsAtOrigin(t *testing.T) {
	p := New(newRand(), surface.Bounds{}, nil)
	assert.Equal(t, r2.Vec{}, p.Pos)
	assert.Contains(t, DefaultPalette, p.Color(), "empty palette falls back to the default")
}

func TestUpdate_EulerStep(t *testing.T) {
	p := at(100, 100, 0.5, -0.25)
	Update(&p, farAway, bounds, DefaultParams())
	assert.Equal(t, r2.Vec{X: 100.5, Y: 99.75}, p.Pos)
	assert.Equal(t, r2.Vec{X: 0.5, Y: -0.25}, p.Vel)
}

func TestUpdate_ReflectsPastRightEdge(t *testing.T) {
	p := at(bounds.Width-0.1, 300, 0.3, 0)
	Update(&p, farAway, bounds, DefaultParams())

	assert.Greater(t, p.Pos.X, bounds.Width, "position is not clamped")
	assert.Less(t, p.Vel.X, 0.0)
	assert.InDelta(t, -0.3, p.Vel.X, 1e-12)

	Update(&p, farAway, bounds, DefaultParams())
	assert.LessOrEqual(t, p.Pos.X, bounds.Width, "back inside after one more step")
}

func TestUpdate_ReflectsPastTopEdge(t *testing.T) {
	p := at(300, 0.2, 0, -0.5)
	Update(&p, farAway, bounds, DefaultParams())
	assert.Less(t, p.Pos.Y, 0.0)
	assert.Equal(t, 0.5, p.Vel.Y)
}

func TestUpdate_StaysWithinOneStepOfBounds(t *testing.T) {
	f := Initialize(newRand(), DefaultCount, bounds, DefaultPalette)
	prm := DefaultParams()
	for step := 0; step < 2000; step++ {
		for i := range f {
			Update(&f[i], farAway, bounds, prm)
			eps := math.Max(math.Abs(f[i].Vel.X), math.Abs(f[i].Vel.Y))
			require.GreaterOrEqual(t, f[i].Pos.X, -eps)
			require.LessOrEqual(t, f[i].Pos.X, bounds.Width+eps)
			require.GreaterOrEqual(t, f[i].Pos.Y, -eps)
			require.LessOrEqual(t, f[i].Pos.Y, bounds.Height+eps)
		}
	}
}

func TestUpdate_PointerRepulsion(t *testing.T) {
	prm := DefaultParams()
	tests := []struct {
		name    string
		ptr     surface.Pointer
		wantDir r2.Vec
	}{
		{"pointer to the left", surface.Pointer{X: 390, Y: 300}, r2.Vec{X: 1, Y: 0}},
		{"pointer below", surface.Pointer{X: 400, Y: 310}, r2.Vec{X: 0, Y: -1}},
		{"pointer diagonal", surface.Pointer{X: 400 - 6, Y: 300 - 8}, r2.Vec{X: 0.6, Y: 0.8}},
		{"pointer near radius", surface.Pointer{X: 400 + 149, Y: 300}, r2.Vec{X: -1, Y: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The particle is static, so integration leaves it at (400, 300).
			p := at(400, 300, 0, 0)
			Update(&p, tt.ptr, bounds, prm)

			assert.InDelta(t, 0.5, r2.Norm(p.Vel), 1e-12, "constant magnitude regardless of distance")
			assert.InDelta(t, tt.wantDir.X*0.5, p.Vel.X, 1e-12)
			assert.InDelta(t, tt.wantDir.Y*0.5, p.Vel.Y, 1e-12)
		})
	}
}

func TestRepulsion_StrengthAlongDisplacement(t *testing.T) {
	prm := DefaultParams()
	prm.RepelStrength = 2

	got := Repulsion(r2.Vec{X: 13, Y: 24}, surface.Pointer{X: 10, Y: 20}, prm)
	assert.InDelta(t, 1.2, got.X, 1e-12)
	assert.InDelta(t, 1.6, got.Y, 1e-12)
	assert.InDelta(t, 2, r2.Norm(got), 1e-12)
}

func TestUpdate_NoForceOutsideRadius(t *testing.T) {
	for _, d := range []float64{150, 200, 1000} {
		p := at(400, 300, 0, 0)
		Update(&p, surface.Pointer{X: 400 - d, Y: 300}, bounds, DefaultParams())
		assert.Equal(t, r2.Vec{}, p.Vel, "distance %v", d)
	}
}

func TestUpdate_ZeroDistanceGuard(t *testing.T) {
	p := at(400, 300, 0, 0)
	Update(&p, surface.Pointer{X: 400, Y: 300}, bounds, DefaultParams())

	for _, v := range []float64{p.Vel.X, p.Vel.Y, p.Pos.X, p.Pos.Y} {
		assert.False(t, math.IsNaN(v))
		assert.False(t, math.IsInf(v, 0))
	}
	assert.Equal(t, r2.Vec{}, p.Vel)
}

func TestUpdate_ZeroBoundsDoesNotPanic(t *testing.T) {
	p := New(newRand(), surface.Bounds{}, nil)
	assert.NotPanics(t, func() {
		for i := 0; i < 10; i++ {
			Update(&p, surface.Pointer{}, surface.Bounds{}, DefaultParams())
		}
	})
	assert.False(t, math.IsNaN(p.Pos.X))
}

func TestUpdate_ResizeTwiceMatchesOnce(t *testing.T) {
	once := surface.NewInput(bounds)
	once.Apply(surface.Resize(320, 240))
	twice := surface.NewInput(bounds)
	twice.Apply(surface.Resize(320, 240))
	twice.Apply(surface.Resize(320, 240))

	a := Initialize(newRand(), 20, bounds, nil)
	b := Initialize(newRand(), 20, bounds, nil)
	for step := 0; step < 100; step++ {
		for i := range a {
			Update(&a[i], once.Pointer(), once.Bounds(), DefaultParams())
			Update(&b[i], twice.Pointer(), twice.Bounds(), DefaultParams())
		}
	}
	assert.Equal(t, a, b)
}

func TestDraw_RestoresAlpha(t *testing.T) {
	rec := surfacetest.New(100, 100)
	p := at(10, 20, 0, 0)
	Draw(p, rec)

	calls := rec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, surfacetest.OpCircle, calls[0].Op)
	assert.Equal(t, []float64{10, 20, 2}, calls[0].Coords)
	assert.Equal(t, 0.5, calls[0].Alpha)
	assert.Equal(t, DefaultPalette[0], calls[0].Color)
	assert.Equal(t, 1.0, rec.Alpha())
}
