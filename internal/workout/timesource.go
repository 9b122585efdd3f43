package workout

import (
	"sync"
	"time"
)

// TimeSource supplies the current instant. Injected so tests can simulate time.
type TimeSource interface {
	Now() time.Time
}

// SystemTime reads the wall clock (with Go's monotonic reading attached)
type SystemTime struct{}

func (SystemTime) Now() time.Time { return time.Now() }

// ManualTime is a TimeSource that only moves when told to.
// Safe for use from several goroutines.
type ManualTime struct {
	mu      sync.Mutex
	current time.Time
}

func NewManualTime(start time.Time) *ManualTime {
	return &ManualTime{current: start}
}

func (m *ManualTime) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Advance moves the time forward by d and returns the new instant
func (m *ManualTime) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
	return m.current
}

func (m *ManualTime) Set(t time.Time) {
	m.mu.Lock()
	m.current = t
	m.mu.Unlock()
}
