package engine

import (
	"sync"

	"github.com/ArcadeAI/agentgraph/core"
	"github.com/ArcadeAI/agentgraph/logging"
)

// DefaultEventBuffer is the per-subscriber channel capacity.
const DefaultEventBuffer = 64

// Emitter fans side-channel events out to subscribers over bounded channels.
// Publishing is best-effort: a subscriber that cannot keep up loses events
// (logged), and delivery never blocks or fails the publishing turn.
type Emitter struct {
	mu     sync.Mutex
	subs   map[int]chan core.Event
	nextID int
	buffer int
	logger logging.Logger
}

// NewEmitter constructs an Emitter. buffer <= 0 uses DefaultEventBuffer.
func NewEmitter(buffer int, logger logging.Logger) *Emitter {
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Emitter{
		subs:   map[int]chan core.Event{},
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers a new subscriber. The returned cancel function
// unsubscribes and closes the channel; it is safe to call more than once.
func (e *Emitter) Subscribe() (<-chan core.Event, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	ch := make(chan core.Event, e.buffer)
	e.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			delete(e.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber without blocking.
func (e *Emitter) Publish(ev core.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, ch := range e.subs {
		select {
		case ch <- ev:
		default:
			e.logger.Warn("event dropped for slow subscriber", "subscriber", id, "event_type", ev.Type)
		}
	}
}
