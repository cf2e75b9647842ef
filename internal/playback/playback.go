// package playback drives the auto-scroll view: it turns lyrics into a stream of scroll offsets on a fixed cadence.
//
// A [Scroller] never touches library state. It only reports where the view should be.
package playback

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

const (
	MinSpeed           = 0.05 // lines per second
	MaxSpeed           = 5.0
	DefaultSpeed       = 1.0
	DefaultFPS         = 40
	DefaultBufferLines = 4
)

// Options configures a [Scroller]. Zero values fall back to the defaults above.
type Options struct {
	Speed       float64 // lines per second
	BufferLines int     // blank lines shown before the lyrics start
	FPS         int     // offset updates per second
}

// Frame is one scroll position.
type Frame struct {
	Offset float64 // lines scrolled, buffer included
	Line   int     // index into [Scroller.Lines] of the top visible line
	Total  int     // len(Lines())
	Done   bool    // the last line has scrolled past
}

// Progress is the fraction of the song scrolled, between 0 and 1.
func (f Frame) Progress() float64 {
	if f.Total == 0 {
		return 1
	}
	return f.Offset / float64(f.Total)
}

// Scroller advances a scroll offset while playing. Speed and pause state may be changed from another goroutine.
type Scroller struct {
	lines []string
	fps   int

	mu     sync.Mutex
	speed  float64
	paused bool
}

// NewScroller prepares lyrics for scrolling: BufferLines blank lines followed by the lyric lines.
func NewScroller(lyrics string, opts Options) *Scroller {
	if opts.FPS <= 0 {
		opts.FPS = DefaultFPS
	}
	if opts.Speed <= 0 {
		opts.Speed = DefaultSpeed
	}
	if opts.BufferLines < 0 {
		opts.BufferLines = 0
	}

	lines := make([]string, opts.BufferLines)
	if lyrics != "" {
		lines = append(lines, strings.Split(lyrics, "\n")...)
	}

	return &Scroller{lines: lines, fps: opts.FPS, speed: ClampSpeed(opts.Speed)}
}

// Lines returns buffer and lyric lines in display order.
func (s *Scroller) Lines() []string {
	return s.lines
}

// SetSpeed changes the scroll speed, clamped to [MinSpeed, MaxSpeed].
func (s *Scroller) SetSpeed(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speed = ClampSpeed(v)
}

// Speed returns the current speed in lines per second.
func (s *Scroller) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}

// TogglePause flips the paused state and returns the new value.
func (s *Scroller) TogglePause() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = !s.paused
	return s.paused
}

// Paused reports whether the offset is frozen.
func (s *Scroller) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *Scroller) state() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed, s.paused
}

// Run emits frames at the configured cadence until the lyrics have scrolled past or ctx is done.
//
// Intermediate frames are dropped when frames is full; the final Done frame is always delivered unless ctx ends first.
// The caller owns frames and closes it after Run returns.
func (s *Scroller) Run(ctx context.Context, frames chan<- Frame) error {
	limiter := rate.NewLimiter(rate.Limit(s.fps), 1)
	total := len(s.lines)
	offset := 0.0

	for {
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		speed, paused := s.state()
		if !paused {
			offset += speed / float64(s.fps)
		}

		if offset >= float64(total) {
			if frames == nil {
				return nil
			}
			final := Frame{Offset: float64(total), Line: total, Total: total, Done: true}
			select {
			case frames <- final:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		sendFrame(frames, Frame{Offset: offset, Line: int(offset), Total: total})
	}
}

// sendFrame sends without blocking.
func sendFrame(frames chan<- Frame, f Frame) {
	if frames == nil {
		return
	}
	select {
	case frames <- f:
	default:
	}
}

// ClampSpeed bounds v to [MinSpeed, MaxSpeed].
func ClampSpeed(v float64) float64 {
	return max(MinSpeed, min(MaxSpeed, v))
}
