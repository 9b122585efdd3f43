package logging

import (
	"io"
	"log"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/lowaak/hiit-timer/internal/events"
)

// MaxTailLines is how many recent lines the in-memory tail keeps
const MaxTailLines = 1000

// NewArgs holds the arguments for creating the application logger
type NewArgs struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	Console    io.Writer // Optional extra sink, e.g. stderr when running headless
}

// Logging bundles the application logger with its outputs
type Logging struct {
	Logger *log.Logger
	Tail   *Tail

	rotator *lumberjack.Logger
}

// New creates a logger writing to a size-rotated file and the in-memory tail
func New(args NewArgs) *Logging {
	rotator := &lumberjack.Logger{
		Filename:   args.File,
		MaxSize:    args.MaxSizeMB,
		MaxBackups: args.MaxBackups,
		MaxAge:     args.MaxAgeDays,
		Compress:   args.Compress,
	}
	tail := NewTail(MaxTailLines)

	writers := []io.Writer{rotator, tail}
	if args.Console != nil {
		writers = append(writers, args.Console)
	}
	return &Logging{
		Logger:  log.New(io.MultiWriter(writers...), "", log.LstdFlags|log.Lmicroseconds),
		Tail:    tail,
		rotator: rotator,
	}
}

// Close flushes and closes the log file
func (l *Logging) Close() error {
	return l.rotator.Close()
}

// Tail keeps the most recent log lines for the terminal UI
type Tail struct {
	mu       sync.RWMutex
	lines    []string
	maxLines int
	event    *events.Event[string]
}

func NewTail(maxLines int) *Tail {
	if maxLines < 1 {
		maxLines = 1
	}
	return &Tail{
		maxLines: maxLines,
		event:    events.NewEvent[string](false),
	}
}

// Write stores each line of p. A log.Logger calls it once per entry.
func (t *Tail) Write(p []byte) (int, error) {
	text := strings.TrimRight(string(p), "\n")
	if text == "" {
		return len(p), nil
	}
	lines := strings.Split(text, "\n")

	t.mu.Lock()
	t.lines = append(t.lines, lines...)
	if len(t.lines) > t.maxLines {
		t.lines = t.lines[len(t.lines)-t.maxLines:]
	}
	t.mu.Unlock()

	for _, line := range lines {
		t.event.Notify(line)
	}
	return len(p), nil
}

// Lines returns the last n lines, oldest first
func (t *Tail) Lines(n int) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n <= 0 {
		return []string{}
	}
	if n > len(t.lines) {
		n = len(t.lines)
	}
	result := make([]string, n)
	copy(result, t.lines[len(t.lines)-n:])
	return result
}

// Listen delivers each new line to ch, skipping lines while ch is full
func (t *Tail) Listen(ch chan<- string) func() {
	return t.event.ListenChan(ch)
}
