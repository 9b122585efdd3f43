package events

import (
	"sync"
)

// Event is a typed pub/sub point. Listeners are either callbacks, which run
// synchronously on the notifying goroutine, or channels, which receive
// non-blocking sends and miss values while full.
type Event[T any] struct {
	mu        sync.RWMutex
	callbacks map[uint64]func(T)
	channels  map[uint64]chan<- T
	nextID    uint64

	// When set, the last notified value is replayed to each new listener
	replayLast bool
	last       T
	hasLast    bool
}

// NewEvent creates an Event. With replayLast, a listener registered after at
// least one Notify immediately receives the most recent value.
func NewEvent[T any](replayLast bool) *Event[T] {
	return &Event[T]{
		callbacks:  make(map[uint64]func(T)),
		channels:   make(map[uint64]chan<- T),
		replayLast: replayLast,
	}
}

// Listen registers a callback and returns its deregistration function
func (e *Event[T]) Listen(callback func(T)) func() {
	if callback == nil {
		panic("events: callback cannot be nil")
	}

	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.callbacks[id] = callback
	last, replay := e.last, e.replayLast && e.hasLast
	e.mu.Unlock()

	// Outside the lock so the callback may deregister itself
	if replay {
		callback(last)
	}

	return func() {
		e.mu.Lock()
		delete(e.callbacks, id)
		e.mu.Unlock()
	}
}

// ListenChan registers a channel and returns its deregistration function.
// The channel is never closed by the Event.
func (e *Event[T]) ListenChan(ch chan<- T) func() {
	if ch == nil {
		panic("events: channel cannot be nil")
	}

	e.mu.Lock()
	id := e.nextID
	e.nextID++
	e.channels[id] = ch
	last, replay := e.last, e.replayLast && e.hasLast
	e.mu.Unlock()

	if replay {
		trySend(ch, last)
	}

	return func() {
		e.mu.Lock()
		delete(e.channels, id)
		e.mu.Unlock()
	}
}

// Notify delivers value to every listener. Safe for concurrent use.
func (e *Event[T]) Notify(value T) {
	e.mu.Lock()
	if e.replayLast {
		e.last = value
		e.hasLast = true
	}
	callbacks := make([]func(T), 0, len(e.callbacks))
	for _, cb := range e.callbacks {
		callbacks = append(callbacks, cb)
	}
	channels := make([]chan<- T, 0, len(e.channels))
	for _, ch := range e.channels {
		channels = append(channels, ch)
	}
	e.mu.Unlock()

	for _, cb := range callbacks {
		cb(value)
	}
	for _, ch := range channels {
		trySend(ch, value)
	}
}

// Last returns the most recently notified value. Always false unless the
// Event replays.
func (e *Event[T]) Last() (T, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last, e.hasLast
}

// ListenerCount returns the number of registered callbacks and channels
func (e *Event[T]) ListenerCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.callbacks) + len(e.channels)
}

func trySend[T any](ch chan<- T, value T) {
	select {
	case ch <- value:
	default:
	}
}
