package surface

import "sync"

// Bounds is the current drawable area.
type Bounds struct {
	Width, Height float64
}

// Pointer is the last known cursor or touch position in surface coordinates.
type Pointer struct {
	X, Y float64
}

// EventKind tells pointer moves and viewport resizes apart.
type EventKind uint8

const (
	PointerMoved EventKind = iota
	Resized
)

func (k EventKind) String() string {
	switch k {
	case PointerMoved:
		return "pointer-moved"
	case Resized:
		return "resized"
	default:
		return "unknown"
	}
}

// Event is a host notification stripped of its origin. For Resized, X and Y
// carry the new width and height.
type Event struct {
	Kind EventKind
	X, Y float64
}

// Move builds a PointerMoved event.
func Move(x, y float64) Event { return Event{Kind: PointerMoved, X: x, Y: y} }

// Resize builds a Resized event.
func Resize(w, h float64) Event { return Event{Kind: Resized, X: w, Y: h} }

// Input owns the ambient bounds and pointer state. Apply and Flush must be
// called from the render goroutine; Post may be called from anywhere.
type Input struct {
	bounds  Bounds
	pointer Pointer

	mu      sync.Mutex
	pending []Event
	notify  chan struct{}
}

// NewInput returns an adapter seeded with the initial surface bounds. The
// pointer starts at the origin until the first move is reported.
func NewInput(b Bounds) *Input {
	return &Input{
		bounds: b,
		notify: make(chan struct{}, 1),
	}
}

func (in *Input) Bounds() Bounds   { return in.bounds }
func (in *Input) Pointer() Pointer { return in.pointer }

// Apply replaces the state named by ev. No validation is performed.
func (in *Input) Apply(ev Event) {
	switch ev.Kind {
	case PointerMoved:
		in.pointer = Pointer{X: ev.X, Y: ev.Y}
	case Resized:
		in.bounds = Bounds{Width: ev.X, Height: ev.Y}
	}
}

// Post queues an event for the render goroutine without blocking. Pending
// events coalesce per kind since each one fully replaces its state.
func (in *Input) Post(ev Event) {
	in.mu.Lock()
	replaced := false
	for i := range in.pending {
		if in.pending[i].Kind == ev.Kind {
			in.pending[i] = ev
			replaced = true
			break
		}
	}
	if !replaced {
		in.pending = append(in.pending, ev)
	}
	in.mu.Unlock()

	select {
	case in.notify <- struct{}{}:
	default:
	}
}

// Notify fires after Post when events are waiting to be flushed.
func (in *Input) Notify() <-chan struct{} { return in.notify }

// Flush applies every posted event and returns them, one per kind, in the
// order each kind first arrived.
func (in *Input) Flush() []Event {
	in.mu.Lock()
	evs := in.pending
	in.pending = nil
	in.mu.Unlock()

	for _, ev := range evs {
		in.Apply(ev)
	}
	return evs
}
