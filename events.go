package pully

import "sync"

// EventKind names a lifecycle notification.
type EventKind int

const (
	EventQuery EventKind = iota + 1
	EventStarted
	EventProgress
	EventCompleted
	EventCancelled
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventQuery:
		return "query"
	case EventStarted:
		return "started"
	case EventProgress:
		return "progress"
	case EventCompleted:
		return "completed"
	case EventCancelled:
		return "cancelled"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is delivered to observers. Which payload fields are set depends on
// Kind:
//
//	EventQuery      Info
//	EventStarted    Request
//	EventProgress   Request, Progress
//	EventCompleted  Request, Results
//	EventCancelled  Request, Results
//	EventFailed     Request (zero for a failed query), Err
type Event struct {
	Kind     EventKind
	Request  Request
	Info     *MediaInfo
	Results  *Results
	Progress ProgressData
	Err      error
}

// Observer receives lifecycle events. Most events arrive on the goroutine
// that called Download, but trailing progress events are delivered from a
// timer goroutine while the progress throttle is locked. Observers must
// return quickly and must not block.
type Observer func(Event)

type observers struct {
	mu   sync.RWMutex
	next int
	set  map[int]Observer
}

func (o *observers) add(fn Observer) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.set == nil {
		o.set = make(map[int]Observer)
	}
	id := o.next
	o.next++
	o.set[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.set, id)
			o.mu.Unlock()
		})
	}
}

func (o *observers) emit(e Event) {
	o.mu.RLock()
	fns := make([]Observer, 0, len(o.set))
	for id := 0; id < o.next; id++ {
		if fn, ok := o.set[id]; ok {
			fns = append(fns, fn)
		}
	}
	o.mu.RUnlock()
	for _, fn := range fns {
		fn(e)
	}
}
