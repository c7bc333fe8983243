// Package driver runs the particle field frame by frame: fade the surface,
// step and draw every particle, then draw the proximity edges.
package driver

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/iburimskiy/particle-field/internal/particle"
	"github.com/iburimskiy/particle-field/internal/surface"
)

var (
	// ErrNoSurface is returned when there is nothing to render into.
	ErrNoSurface = errors.New("driver: no drawing surface")
	// ErrStopped is returned by Frame and Run once Stop has been called.
	ErrStopped = errors.New("driver: stopped")
	// ErrRunning is returned by Run when another Run is already active.
	ErrRunning = errors.New("driver: already running")
)

// State of the frame loop. Running is the only steady state.
type State int32

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// DefaultInterval paces Run at roughly one display refresh.
const DefaultInterval = time.Second / 60

// Default fade overlay, a dark blue at 10%.
var (
	DefaultFadeColor = color.NRGBA{R: 5, G: 8, B: 18, A: 255}
	DefaultFadeAlpha = 0.1
)

// Options configures a Driver. Zero values fall back to the defaults, so a
// literal zero cannot be expressed directly: pass a negative Count for an
// empty field and a negative FadeAlpha to disable the fade overlay.
type Options struct {
	Count     int
	Palette   particle.Palette
	Params    particle.Params
	FadeColor color.NRGBA
	FadeAlpha float64
	Interval  time.Duration
	// Rand seeds the field. A nil Rand uses a randomly seeded source.
	Rand   *rand.Rand
	Logger *zap.Logger
}

func (o *Options) setDefaults() {
	if o.Count == 0 {
		o.Count = particle.DefaultCount
	}
	if len(o.Palette) == 0 {
		o.Palette = particle.DefaultPalette
	}
	if o.Params == (particle.Params{}) {
		o.Params = particle.DefaultParams()
	}
	if o.FadeColor == (color.NRGBA{}) {
		o.FadeColor = DefaultFadeColor
	}
	if o.FadeAlpha == 0 {
		o.FadeAlpha = DefaultFadeAlpha
	}
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// Stats counts rendered frames and refresh slots missed because a frame overran.
type Stats struct {
	Frames  uint64
	Dropped uint64
}

// Driver owns the field and the input adapter. Frame, Apply and Field must
// be called from a single goroutine: the host's render goroutine, or Run.
type Driver struct {
	opts   Options
	surf   surface.Surface
	input  *surface.Input
	field  particle.Field
	logger *zap.Logger

	state    atomic.Int32
	running  atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	frames  atomic.Uint64
	dropped atomic.Uint64

	moveLog rate.Sometimes
}

// New seeds a field over the current size of s. It fails fast when s is nil.
func New(s surface.Surface, opts Options) (*Driver, error) {
	if s == nil {
		return nil, ErrNoSurface
	}
	opts.setDefaults()

	w, h := s.Size()
	bounds := surface.Bounds{Width: w, Height: h}
	d := &Driver{
		opts:    opts,
		surf:    s,
		input:   surface.NewInput(bounds),
		field:   particle.Initialize(opts.Rand, opts.Count, bounds, opts.Palette),
		logger:  opts.Logger.Named("driver"),
		stopCh:  make(chan struct{}),
		moveLog: rate.Sometimes{Interval: time.Second},
	}
	d.state.Store(int32(Running))

	d.logger.Debug("Field initialized",
		zap.Int("count", len(d.field)),
		zap.Float64("width", w),
		zap.Float64("height", h))
	return d, nil
}

func (d *Driver) State() State          { return State(d.state.Load()) }
func (d *Driver) Input() *surface.Input { return d.input }

// Field exposes the live particles; see the Driver goroutine rule.
func (d *Driver) Field() particle.Field { return d.field }

func (d *Driver) Stats() Stats {
	return Stats{Frames: d.frames.Load(), Dropped: d.dropped.Load()}
}

// Apply hands a host notification to the input adapter and resizes the
// surface when it owns its backing store.
func (d *Driver) Apply(ev surface.Event) {
	d.input.Apply(ev)
	d.applied(ev)
}

func (d *Driver) applied(ev surface.Event) {
	switch ev.Kind {
	case surface.Resized:
		if r, ok := d.surf.(surface.Resizer); ok {
			r.Resize(ev.X, ev.Y)
		}
		d.logger.Debug("Surface resized", zap.Float64("width", ev.X), zap.Float64("height", ev.Y))
	case surface.PointerMoved:
		d.moveLog.Do(func() {
			d.logger.Debug("Pointer moved", zap.Float64("x", ev.X), zap.Float64("y", ev.Y))
		})
	}
}

func (d *Driver) flush() {
	for _, ev := range d.input.Flush() {
		d.applied(ev)
	}
}

// Frame renders one frame onto s.
func (d *Driver) Frame(s surface.Surface) error {
	if d.State() != Running {
		return ErrStopped
	}
	if s == nil {
		return ErrNoSurface
	}

	b := d.input.Bounds()
	s.FillRect(0, 0, b.Width, b.Height, surface.WithAlpha(d.opts.FadeColor, d.opts.FadeAlpha))
	particle.StepAndDraw(d.field, d.input.Pointer(), b, s, d.opts.Params)
	particle.RenderEdges(d.field, s, d.opts.Params)

	if p, ok := s.(surface.Presenter); ok {
		if err := p.Present(); err != nil {
			return fmt.Errorf("present frame: %w", err)
		}
	}
	d.frames.Add(1)
	return nil
}

// Start runs the loop on a new goroutine and delivers its result on the
// returned channel. The loop is registered before Start returns, so a later
// Stop always waits for it.
func (d *Driver) Start(ctx context.Context) <-chan error {
	errCh := make(chan error, 1)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		errCh <- d.loop(ctx)
	}()
	return errCh
}

// Run paces frames on the driver's own surface until Stop is called or ctx
// is done. A single timer is re-armed after each frame; slots missed by a
// slow frame are counted as dropped and skipped. Events posted to Input are
// applied between frames on this goroutine.
//
// Stop only waits for a Run that has already been entered. Callers that
// launch the loop and may stop it right away should use Start.
func (d *Driver) Run(ctx context.Context) error {
	d.wg.Add(1)
	defer d.wg.Done()
	return d.loop(ctx)
}

func (d *Driver) loop(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer d.running.Store(false)

	select {
	case <-d.stopCh:
		return ErrStopped
	default:
	}

	interval := d.opts.Interval
	d.logger.Info("Frame loop started", zap.Duration("interval", interval))
	defer func() {
		st := d.Stats()
		d.logger.Info("Frame loop stopped", zap.Uint64("frames", st.Frames), zap.Uint64("dropped", st.Dropped))
	}()

	timer := time.NewTimer(0)
	defer timer.Stop()
	deadline := time.Now()

	for {
		select {
		case <-ctx.Done():
			d.halt()
			return nil
		case <-d.stopCh:
			return nil
		case <-d.input.Notify():
			d.flush()
		case <-timer.C:
			d.flush()
			if err := d.Frame(d.surf); err != nil {
				if errors.Is(err, ErrStopped) {
					return nil
				}
				d.halt()
				return err
			}

			deadline = deadline.Add(interval)
			now := time.Now()
			if now.After(deadline) {
				missed := now.Sub(deadline)/interval + 1
				d.dropped.Add(uint64(missed))
				deadline = deadline.Add(missed * interval)
			}
			timer.Reset(deadline.Sub(now))
		}
	}
}

// Stop ends the loop and waits for it to return. Safe to call repeatedly
// and from any goroutine other than the one running the loop.
func (d *Driver) Stop() {
	d.halt()
	d.wg.Wait()
}

func (d *Driver) halt() {
	d.stopOnce.Do(func() {
		d.state.Store(int32(Stopped))
		close(d.stopCh)
	})
}

// Done is closed once the driver has stopped.
func (d *Driver) Done() <-chan struct{} { return d.stopCh }
