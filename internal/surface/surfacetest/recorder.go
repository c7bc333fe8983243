// Package surfacetest provides a Surface that records draw calls.
package surfacetest

import (
	"image/color"
	"sync"

	"github.com/iburimskiy/particle-field/internal/surface"
)

// Op names a recorded primitive.
type Op string

const (
	OpRect   Op = "rect"
	OpCircle Op = "circle"
	OpLine   Op = "line"
)

// Call is one recorded primitive with the global alpha in effect when it was issued.
type Call struct {
	Op     Op
	Coords []float64
	Color  color.NRGBA
	Alpha  float64
}

// Recorder implements surface.Surface, surface.Resizer and surface.Presenter.
type Recorder struct {
	mu       sync.Mutex
	width    float64
	height   float64
	alpha    float64
	calls    []Call
	presents int
}

var (
	_ surface.Surface   = (*Recorder)(nil)
	_ surface.Resizer   = (*Recorder)(nil)
	_ surface.Presenter = (*Recorder)(nil)
)

func New(w, h float64) *Recorder {
	return &Recorder{width: w, height: h, alpha: 1}
}

func (r *Recorder) Size() (float64, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *Recorder) Resize(w, h float64) {
	r.mu.Lock()
	r.width, r.height = w, h
	r.mu.Unlock()
}

func (r *Recorder) SetAlpha(a float64) {
	r.mu.Lock()
	r.alpha = a
	r.mu.Unlock()
}

func (r *Recorder) Alpha() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.alpha
}

func (r *Recorder) FillRect(x, y, w, h float64, c color.Color) {
	r.record(OpRect, c, x, y, w, h)
}

func (r *Recorder) FillCircle(cx, cy, rad float64, c color.Color) {
	r.record(OpCircle, c, cx, cy, rad)
}

func (r *Recorder) StrokeLine(x0, y0, x1, y1, width float64, c color.Color) {
	r.record(OpLine, c, x0, y0, x1, y1, width)
}

func (r *Recorder) Present() error {
	r.mu.Lock()
	r.presents++
	r.mu.Unlock()
	return nil
}

func (r *Recorder) record(op Op, c color.Color, coords ...float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{
		Op:     op,
		Coords: coords,
		Color:  color.NRGBAModel.Convert(c).(color.NRGBA),
		Alpha:  r.alpha,
	})
}

// Calls returns a copy of everything recorded so far.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op Op) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (r *Recorder) Presents() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.presents
}

// Reset drops recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}
