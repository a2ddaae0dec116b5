// Package speedometer estimates transfer throughput over a rolling window.
package speedometer

import (
	"math"
	"sync"
	"time"
)

// DefaultWindow is the span of samples used for the rate.
const DefaultWindow = 15 * time.Second

type sample struct {
	at    time.Time
	bytes int64
}

// Speedometer records cumulative byte counts and derives bytes per second
// from the oldest and newest samples still inside the window. It is safe for
// concurrent use.
type Speedometer struct {
	mu      sync.Mutex
	window  time.Duration
	now     func() time.Time
	start   sample
	history []sample
}

// New starts a speedometer at the current time.
func New(window time.Duration) *Speedometer {
	return NewWithClock(window, time.Now)
}

// NewWithClock is New with an injectable clock.
func NewWithClock(window time.Duration, now func() time.Time) *Speedometer {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Speedometer{window: window, now: now, start: sample{at: now()}}
}

// Record appends a sample of the cumulative byte count.
func (s *Speedometer) Record(bytes int64) {
	s.mu.Lock()
	s.history = append(s.history, sample{at: s.now(), bytes: bytes})
	s.mu.Unlock()
}

// BytesPerSecond is the rate across the retained window; 0 without samples.
func (s *Speedometer) BytesPerSecond() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate()
}

func (s *Speedometer) rate() float64 {
	if len(s.history) == 0 {
		return 0
	}
	s.prune()
	older, newer := s.bounds()
	dt := newer.at.Sub(older.at).Seconds()
	if dt <= 0 {
		return 0
	}
	return float64(newer.bytes-older.bytes) / dt
}

func (s *Speedometer) prune() {
	cutoff := s.now().Add(-s.window)
	i := 0
	for i < len(s.history) && s.history[i].at.Before(cutoff) {
		i++
	}
	s.history = s.history[i:]
}

// bounds picks the samples the rate is measured between. With fewer than two
// real samples the transfer start stands in for the older one.
func (s *Speedometer) bounds() (older, newer sample) {
	switch len(s.history) {
	case 0:
		return sample{at: s.start.at.Add(-time.Second)}, s.start
	case 1:
		return s.start, s.history[0]
	default:
		return s.history[0], s.history[len(s.history)-1]
	}
}

// ETA estimates the time until target bytes. ok is false when the rate is
// zero or the target has already been reached.
func (s *Speedometer) ETA(target int64) (eta time.Duration, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var newest int64
	if n := len(s.history); n > 0 {
		newest = s.history[n-1].bytes
	}
	bps := s.rate()
	remaining := target - newest
	if bps <= 0 || remaining <= 0 || math.IsInf(bps, 0) || math.IsNaN(bps) {
		return 0, false
	}
	return time.Duration(float64(remaining) / bps * float64(time.Second)), true
}

// Elapsed is the time since the speedometer started.
func (s *Speedometer) Elapsed() time.Duration {
	return s.now().Sub(s.start.at)
}
