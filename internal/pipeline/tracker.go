package pipeline

import (
	"context"
	"io"
	"sync"
	"time"

	"pully/internal/progress"
	"pully/internal/speedometer"
)

// tracker aggregates transferred bytes across every stream of a download.
type tracker struct {
	mu         sync.Mutex
	total      int64
	downloaded int64
	speed      *speedometer.Speedometer
	throttle   *progress.Throttle
}

func newTracker(total int64, window time.Duration, now func() time.Time, emit func(progress.Data)) *tracker {
	return &tracker{
		total:    total,
		speed:    speedometer.NewWithClock(0, now),
		throttle: progress.NewThrottle(window, emit),
	}
}

func (t *tracker) add(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.downloaded += int64(n)
	t.speed.Record(t.downloaded)
	t.throttle.Push(t.snapshot())
}

// tick reports muxer activity without byte counts.
func (t *tracker) tick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.throttle.Push(progress.Indeterminate(t.speed.Elapsed()))
}

func (t *tracker) final() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.throttle.Final(t.snapshot())
}

func (t *tracker) stop() { t.throttle.Stop() }

func (t *tracker) bytes() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.downloaded
}

func (t *tracker) snapshot() progress.Data {
	var (
		eta time.Duration
		ok  bool
	)
	if t.total > 0 {
		eta, ok = t.speed.ETA(t.total)
	}
	return progress.Snapshot(t.downloaded, t.total, t.speed.BytesPerSecond(), t.speed.Elapsed(), eta, ok)
}

// reader wraps r so every chunk is counted. The first non-EOF error is kept
// so a truncated live stream can be told apart from a clean end.
func (t *tracker) reader(ctx context.Context, r io.Reader) *countingReader {
	return &countingReader{ctx: ctx, r: r, t: t}
}

type countingReader struct {
	ctx context.Context
	r   io.Reader
	t   *tracker

	mu  sync.Mutex
	err error
}

func (c *countingReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		c.setErr(err)
		return 0, err
	}
	n, err := c.r.Read(p)
	if n > 0 {
		c.t.add(n)
	}
	if err != nil && err != io.EOF {
		c.setErr(err)
	}
	return n, err
}

func (c *countingReader) setErr(err error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.mu.Unlock()
}

// Err returns the first read failure, if any.
func (c *countingReader) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
