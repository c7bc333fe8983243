// Package soundtrack plays an optional background track while the field
// animates and reports its loudness for display.
package soundtrack

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"go.uber.org/zap"
)

// ErrUnsupported is returned for files that are not wav, mp3 or flac.
var ErrUnsupported = errors.New("soundtrack: unsupported file type")

const (
	ringSize        = 8192
	levelWindow     = 2048
	smoothingFactor = 0.6
)

// Player loops one track at a time on the speaker.
type Player struct {
	logger *zap.Logger

	mu       sync.Mutex
	path     string
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	tap      *levelTap
	level    float64
	paused   bool
	initDone bool
}

func NewPlayer(logger *zap.Logger) *Player {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Player{logger: logger.Named("soundtrack")}
}

// decode opens path and picks a decoder by extension. The returned streamer
// owns the file.
func decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	var dec func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		dec = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) }
	case ".mp3":
		dec = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) }
	case ".flac":
		dec = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return flac.Decode(f) }
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupported, filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("open soundtrack: %w", err)
	}
	streamer, format, err := dec(f)
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return streamer, format, nil
}

// Open replaces the current track with path and starts looping it.
func (p *Player) Open(path string) error {
	streamer, format, err := decode(path)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	bufferSize := format.SampleRate.N(time.Second / 20)
	switch {
	case !p.initDone:
		if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
			_ = streamer.Close()
			return fmt.Errorf("init speaker: %w", err)
		}
		p.initDone = true
	case p.format.SampleRate != format.SampleRate:
		speaker.Clear()
		if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
			_ = streamer.Close()
			return fmt.Errorf("reinit speaker: %w", err)
		}
	default:
		speaker.Clear()
	}
	if err := p.closeStreamer(); err != nil {
		p.logger.Warn("Failed to close previous soundtrack", zap.Error(err))
	}

	tap := newLevelTap(beep.Loop(-1, streamer), ringSize)
	ctrl := &beep.Ctrl{Streamer: tap}

	p.path = path
	p.streamer = streamer
	p.format = format
	p.tap = tap
	p.ctrl = ctrl
	p.paused = false
	p.level = 0

	speaker.Play(ctrl)
	p.logger.Info("Soundtrack playing",
		zap.String("path", path),
		zap.Int("sample_rate", int(format.SampleRate)))
	return nil
}

// TogglePause pauses or resumes the current track.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return
	}
	speaker.Lock()
	p.paused = !p.paused
	p.ctrl.Paused = p.paused
	speaker.Unlock()
}

// Status reports the loaded path and whether it is paused.
func (p *Player) Status() (path string, paused bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.path, p.paused
}

// Level returns the smoothed, compressed loudness of the last samples in [0, 1].
func (p *Player) Level() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tap == nil {
		return 0
	}
	mag := math.Pow(rms(p.tap.snapshot(levelWindow)), 0.3)
	if p.paused {
		mag = 0
	}
	p.level = smoothingFactor*p.level + (1-smoothingFactor)*mag
	return math.Min(p.level, 1)
}

// Close stops playback and releases the track.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initDone {
		speaker.Clear()
	}
	return p.closeStreamer()
}

func (p *Player) closeStreamer() error {
	if p.streamer == nil {
		return nil
	}
	err := p.streamer.Close()
	p.streamer, p.ctrl, p.tap, p.path = nil, nil, nil, ""
	return err
}
