// Package timeline steps through the frames of a laid-out timeline:
// previous, next, seek and timed playback.
package timeline

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the playback delay between frames.
const DefaultInterval = 2 * time.Second

// Controls is the enabled state of the stepping buttons.
//
// PrevDisabled is true on the first and on the last frame. NextDisabled
// is never set; [Stepper.Next] clamps at the end.
type Controls struct {
	PrevDisabled bool
	NextDisabled bool
}

// Stepper tracks the current frame of a timeline with n frames. It is
// safe for concurrent use, so playback can run while a UI reads Index.
type Stepper struct {
	mu    sync.Mutex
	n     int
	index int
}

// NewStepper returns a stepper positioned on the first of n frames.
func NewStepper(n int) *Stepper {
	if n < 0 {
		n = 0
	}
	return &Stepper{n: n}
}

// Len returns the number of frames.
func (s *Stepper) Len() int { return s.n }

// Index returns the current frame.
func (s *Stepper) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Next advances one frame and reports whether the index changed.
func (s *Stepper) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index >= s.n-1 {
		return false
	}
	s.index++
	return true
}

// Prev steps back one frame and reports whether the index changed.
func (s *Stepper) Prev() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index <= 0 {
		return false
	}
	s.index--
	return true
}

// Seek moves to i, clamped to the valid range, and returns the new index.
func (s *Stepper) Seek(i int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = clampIndex(i, s.n)
	return s.index
}

// Controls returns the button state for the current frame.
func (s *Stepper) Controls() Controls {
	s.mu.Lock()
	defer s.mu.Unlock()
	last := s.n - 1
	return Controls{PrevDisabled: s.index == 0 || s.index == last}
}

// Play advances one frame per interval, calling fn with each new index,
// until the last frame, the stop index (when stop > 0), or ctx is done.
// It returns ctx.Err() when canceled and nil otherwise.
func (s *Stepper) Play(ctx context.Context, interval time.Duration, stop int, fn func(index int)) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if stop > 0 && s.Index() == stop {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if !s.Next() {
			return nil
		}
		if fn != nil {
			fn(s.Index())
		}
	}
}

func clampIndex(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
