package progress

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultWindow is the minimum spacing between progress emissions.
const DefaultWindow = 500 * time.Millisecond

// Throttle limits how often snapshots reach emit. The first snapshot in a
// window goes out immediately; the latest one suppressed inside the window is
// delivered when the window closes. emit is called with the throttle's lock
// held and must not call back into it.
type Throttle struct {
	mu      sync.Mutex
	window  time.Duration
	limiter *rate.Limiter
	emit    func(Data)
	pending *Data
	timer   *time.Timer
	closed  bool
}

// NewThrottle returns a throttle; window <= 0 selects DefaultWindow.
func NewThrottle(window time.Duration, emit func(Data)) *Throttle {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Throttle{
		window:  window,
		limiter: rate.NewLimiter(rate.Every(window), 1),
		emit:    emit,
	}
}

// Push offers a snapshot.
func (t *Throttle) Push(d Data) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if t.limiter.Allow() {
		t.pending = nil
		t.emit(d)
		return
	}
	t.pending = &d
	if t.timer == nil {
		t.timer = time.AfterFunc(t.window, t.trailing)
	}
}

func (t *Throttle) trailing() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer = nil
	if t.closed || t.pending == nil {
		return
	}
	d := *t.pending
	t.pending = nil
	// The trailing emission spends the window's token.
	t.limiter.Allow()
	t.emit(d)
}

// Final emits d immediately, drops anything pending and closes the throttle.
func (t *Throttle) Final(d Data) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.shutdown()
	t.emit(d)
}

// Stop closes the throttle without emitting.
func (t *Throttle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.shutdown()
}

func (t *Throttle) shutdown() {
	t.closed = true
	t.pending = nil
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
