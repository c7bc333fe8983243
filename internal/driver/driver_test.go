package driver

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/iburimskiy/particle-field/internal/surface"
	"github.com/iburimskiy/particle-field/internal/surface/surfacetest"
)

func newTestDriver(t *testing.T, rec *surfacetest.Recorder, opts Options) *Driver {
	t.Helper()
	opts.Logger = zaptest.NewLogger(t)
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(7, 7))
	}
	d, err := New(rec, opts)
	require.NoError(t, err)
	return d
}

func TestNew_FailsWithoutSurface(t *testing.T) {
	d, err := New(nil, Options{})
	assert.Nil(t, d)
	assert.ErrorIs(t, err, ErrNoSurface)
}

func TestNew_SeedsFieldFromSurface(t *testing.T) {
	rec := surfacetest.New(640, 480)
	d := newTestDriver(t, rec, Options{})

	assert.Equal(t, Running, d.State())
	assert.Len(t, d.Field(), 100)
	assert.Equal(t, surface.Bounds{Width: 640, Height: 480}, d.Input().Bounds())
	for _, p := range d.Field() {
		assert.LessOrEqual(t, p.Pos.X, 640.0)
		assert.LessOrEqual(t, p.Pos.Y, 480.0)
	}
}

func TestFrame_Order(t *testing.T) {
	rec := surfacetest.New(300, 200)
	d := newTestDriver(t, rec, Options{Count: 5})

	require.NoError(t, d.Frame(rec))

	calls := rec.Calls()
	require.GreaterOrEqual(t, len(calls), 6)

	fade := calls[0]
	assert.Equal(t, surfacetest.OpRect, fade.Op)
	assert.Equal(t, []float64{0, 0, 300, 200}, fade.Coords)
	assert.Equal(t, uint8(5), fade.Color.R)
	assert.Equal(t, uint8(8), fade.Color.G)
	assert.Equal(t, uint8(18), fade.Color.B)
	assert.Equal(t, uint8(26), fade.Color.A)

	for i := 1; i <= 5; i++ {
		assert.Equal(t, surfacetest.OpCircle, calls[i].Op)
	}
	for _, c := range calls[6:] {
		assert.Equal(t, surfacetest.OpLine, c.Op)
	}

	assert.Equal(t, 1.0, rec.Alpha())
	assert.Equal(t, 1, rec.Presents())
	assert.Equal(t, uint64(1), d.Stats().Frames)
}

func TestFrame_UsesLatestInput(t *testing.T) {
	rec := surfacetest.New(300, 200)
	d := newTestDriver(t, rec, Options{Count: 1})

	d.Apply(surface.Resize(1000, 900))
	w, h := rec.Size()
	assert.Equal(t, 1000.0, w, "resizable surfaces follow the viewport")
	assert.Equal(t, 900.0, h)

	d.Apply(surface.Move(50, 60))
	assert.Equal(t, surface.Pointer{X: 50, Y: 60}, d.Input().Pointer())

	require.NoError(t, d.Frame(rec))
	assert.Equal(t, []float64{0, 0, 1000, 900}, rec.Calls()[0].Coords)
}

func TestNew_ZeroOptionsUseDefaults(t *testing.T) {
	d := newTestDriver(t, surfacetest.New(100, 100), Options{})
	assert.Len(t, d.Field(), 100)
	assert.Equal(t, DefaultFadeAlpha, d.opts.FadeAlpha)
}

func TestNew_NegativeOptionsExpressZero(t *testing.T) {
	rec := surfacetest.New(100, 100)
	d := newTestDriver(t, rec, Options{Count: -1, FadeAlpha: -1})
	assert.Empty(t, d.Field())

	require.NoError(t, d.Frame(rec))
	calls := rec.Calls()
	require.Len(t, calls, 1, "only the fade overlay is drawn")
	assert.Equal(t, uint8(0), calls[0].Color.A, "fade overlay is fully transparent")
}

func TestFrame_AfterStop(t *testing.T) {
	rec := surfacetest.New(100, 100)
	d := newTestDriver(t, rec, Options{Count: 1})

	d.Stop()
	d.Stop()

	assert.Equal(t, Stopped, d.State())
	assert.ErrorIs(t, d.Frame(rec), ErrStopped)
	assert.Empty(t, rec.Calls())

	select {
	case <-d.Done():
	default:
		t.Fatal("Done should be closed after Stop")
	}
}

func TestFrame_NilSurface(t *testing.T) {
	d := newTestDriver(t, surfacetest.New(10, 10), Options{Count: 1})
	assert.ErrorIs(t, d.Frame(nil), ErrNoSurface)
}

func TestRun_StopsCleanly(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := surfacetest.New(200, 200)
	d := newTestDriver(t, rec, Options{Count: 10, Interval: time.Millisecond})

	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(context.Background()) }()

	require.Eventually(t, func() bool { return d.Stats().Frames >= 5 }, 2*time.Second, time.Millisecond)

	d.Stop()
	require.NoError(t, <-errCh)
	assert.Equal(t, Stopped, d.State())

	assert.ErrorIs(t, d.Run(context.Background()), ErrStopped)
}

func TestStart_StopWaitsForLoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	for i := 0; i < 200; i++ {
		d := newTestDriver(t, surfacetest.New(50, 50), Options{Count: 2, Interval: time.Millisecond})
		errCh := d.Start(context.Background())
		d.Stop()

		select {
		case err := <-errCh:
			if err != nil {
				require.ErrorIs(t, err, ErrStopped)
			}
		default:
			t.Fatalf("iteration %d: Stop returned before the loop exited", i)
		}
	}
}

func TestRun_ContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := surfacetest.New(200, 200)
	d := newTestDriver(t, rec, Options{Count: 3, Interval: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(ctx) }()

	require.Eventually(t, func() bool { return d.Stats().Frames >= 1 }, 2*time.Second, time.Millisecond)
	cancel()

	require.NoError(t, <-errCh)
	assert.Equal(t, Stopped, d.State())
}

func TestRun_RejectsSecondLoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := surfacetest.New(200, 200)
	d := newTestDriver(t, rec, Options{Count: 1, Interval: time.Millisecond})

	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(context.Background()) }()
	require.Eventually(t, func() bool { return d.Stats().Frames >= 1 }, 2*time.Second, time.Millisecond)

	assert.ErrorIs(t, d.Run(context.Background()), ErrRunning)

	d.Stop()
	require.NoError(t, <-errCh)
}

func TestRun_AppliesPostedEventsBetweenFrames(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := surfacetest.New(200, 200)
	d := newTestDriver(t, rec, Options{Count: 1, Interval: time.Millisecond})

	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(context.Background()) }()

	d.Input().Post(surface.Resize(640, 320))
	require.Eventually(t, func() bool {
		w, h := rec.Size()
		return w == 640 && h == 320
	}, 2*time.Second, time.Millisecond)

	d.Stop()
	require.NoError(t, <-errCh)
	assert.Equal(t, surface.Bounds{Width: 640, Height: 320}, d.Input().Bounds())
}

type slowSurface struct {
	*surfacetest.Recorder
	delay time.Duration
}

func (s *slowSurface) Present() error {
	time.Sleep(s.delay)
	return s.Recorder.Present()
}

func TestRun_DropsOverrunFrames(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := &slowSurface{Recorder: surfacetest.New(100, 100), delay: 5 * time.Millisecond}
	d, err := New(s, Options{Count: 1, Interval: time.Millisecond, Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(context.Background()) }()
	require.Eventually(t, func() bool { return d.Stats().Frames >= 3 }, 2*time.Second, time.Millisecond)
	d.Stop()
	require.NoError(t, <-errCh)

	st := d.Stats()
	assert.Greater(t, st.Dropped, uint64(0), "slots missed by slow frames are dropped, not queued")
}

type failingSurface struct {
	*surfacetest.Recorder
}

var errPresent = errors.New("screen gone")

func (failingSurface) Present() error { return errPresent }

func TestRun_ReturnsPresentError(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := failingSurface{Recorder: surfacetest.New(100, 100)}
	d, err := New(s, Options{Count: 1, Interval: time.Millisecond})
	require.NoError(t, err)

	err = d.Run(context.Background())
	assert.ErrorIs(t, err, errPresent)
	assert.Equal(t, Stopped, d.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "stopped", Stopped.String())
}
