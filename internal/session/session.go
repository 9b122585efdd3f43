package session

import (
	"log"
	"sync"
	"time"

	"github.com/lowaak/hiit-timer/internal/events"
	"github.com/lowaak/hiit-timer/internal/go_func_utils"
	"github.com/lowaak/hiit-timer/internal/workout"
)

// DefaultTickRate is how many times per second a running clock is ticked
const DefaultTickRate = 60

// AlertPlayer plays the cue for an alert. Play must not block.
type AlertPlayer interface {
	Play(kind workout.AlertKind)
}

// commandKind represents commands sent to the session goroutine
type commandKind int

const (
	cmdSnapshot commandKind = iota
	cmdStart
	cmdPause
	cmdResume
	cmdToggle
	cmdReset
	cmdAdjust
	cmdNudge
	cmdLoad
	cmdRename
)

type command struct {
	kind  commandKind
	field workout.Field
	value int
	cfg   workout.Config
	name  string
	reply chan workout.Progress
}

// NewSessionArgs holds the arguments for creating a new Session
type NewSessionArgs struct {
	Config     workout.Config
	Name       string
	TickRate   int                // Ticks per second while running, DefaultTickRate when zero
	TimeSource workout.TimeSource // SystemTime when nil
	Recorder   workout.Recorder
	Player     AlertPlayer // Silent when nil
	Logger     *log.Logger
}

// Session owns one workout clock and is the only goroutine that touches it.
// Every public method is safe for concurrent use and returns the progress
// snapshot taken right after the command was applied.
type Session struct {
	clock        *workout.Clock
	time         workout.TimeSource
	player       AlertPlayer
	logger       *log.Logger
	tickInterval time.Duration

	progress     *events.Event[workout.Progress]
	phaseChanged *events.Event[workout.Progress]
	alerts       *events.Event[workout.AlertKind]

	// Goroutine management
	cmdChan      chan command
	doneChan     chan struct{} // Closed to signal shutdown
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// NewSession creates a Session and starts its goroutine
func NewSession(args NewSessionArgs) *Session {
	if args.Logger == nil {
		panic("Session: logger cannot be nil")
	}
	tickRate := args.TickRate
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	timeSource := args.TimeSource
	if timeSource == nil {
		timeSource = workout.SystemTime{}
	}

	s := &Session{
		time:         timeSource,
		player:       args.Player,
		logger:       args.Logger,
		tickInterval: time.Second / time.Duration(tickRate),
		progress:     events.NewEvent[workout.Progress](true),
		phaseChanged: events.NewEvent[workout.Progress](true),
		alerts:       events.NewEvent[workout.AlertKind](false),
		cmdChan:      make(chan command),
		doneChan:     make(chan struct{}),
	}
	s.clock = workout.NewClock(workout.NewClockArgs{
		Config:     args.Config,
		Name:       args.Name,
		TimeSource: timeSource,
		Sink:       clockSink{s},
		Recorder:   args.Recorder,
		Logger:     args.Logger,
	})
	s.progress.Notify(s.clock.Snapshot(timeSource.Now()))

	go_func_utils.SafeGoGroup(args.Logger, &s.wg, "session loop", s.run)
	return s
}

// Progress fires with a fresh snapshot after every command and every tick.
// Callbacks run on the session goroutine and must not call back into the Session.
func (s *Session) Progress() *events.Event[workout.Progress] { return s.progress }

// PhaseChanged fires once per phase transition, including Finished
func (s *Session) PhaseChanged() *events.Event[workout.Progress] { return s.phaseChanged }

// Alerts fires once per emitted alert
func (s *Session) Alerts() *events.Event[workout.AlertKind] { return s.alerts }

func (s *Session) Snapshot() workout.Progress { return s.send(command{kind: cmdSnapshot}) }

func (s *Session) Start() workout.Progress { return s.send(command{kind: cmdStart}) }

func (s *Session) Pause() workout.Progress { return s.send(command{kind: cmdPause}) }

func (s *Session) Resume() workout.Progress { return s.send(command{kind: cmdResume}) }

func (s *Session) Toggle() workout.Progress { return s.send(command{kind: cmdToggle}) }

func (s *Session) Reset() workout.Progress { return s.send(command{kind: cmdReset}) }

// Adjust sets a config field, clamped to its range
func (s *Session) Adjust(field workout.Field, value int) workout.Progress {
	return s.send(command{kind: cmdAdjust, field: field, value: value})
}

// Nudge moves a config field by delta, snapped to the field's step
func (s *Session) Nudge(field workout.Field, delta int) workout.Progress {
	return s.send(command{kind: cmdNudge, field: field, value: delta})
}

// Load resets the session onto a new config, e.g. one taken from history
func (s *Session) Load(cfg workout.Config, name string) workout.Progress {
	return s.send(command{kind: cmdLoad, cfg: cfg, name: name})
}

// Rename names the current workout
func (s *Session) Rename(name string) workout.Progress {
	return s.send(command{kind: cmdRename, name: name})
}

// Shutdown stops the session goroutine. Safe to call multiple times.
func (s *Session) Shutdown() {
	s.shutdownOnce.Do(func() {
		s.logger.Printf("Session: Shutting down")
		close(s.doneChan)
		s.wg.Wait()
		s.logger.Printf("Session: Shutdown complete")
	})
}

// send hands a command to the loop and waits for its snapshot. After
// shutdown it returns the last published snapshot instead.
func (s *Session) send(cmd command) workout.Progress {
	cmd.reply = make(chan workout.Progress, 1)
	select {
	case s.cmdChan <- cmd:
	case <-s.doneChan:
		return s.lastProgress()
	}
	select {
	case p := <-cmd.reply:
		return p
	case <-s.doneChan:
		return s.lastProgress()
	}
}

func (s *Session) lastProgress() workout.Progress {
	p, _ := s.progress.Last()
	return p
}

// run is the main goroutine. The ticker only runs while the clock does.
func (s *Session) run() {
	ticker := time.NewTicker(s.tickInterval)
	ticker.Stop()
	ticking := false

	syncTicker := func(status workout.Status) {
		running := status == workout.StatusRunning
		switch {
		case running && !ticking:
			ticker.Reset(s.tickInterval)
		case !running && ticking:
			ticker.Stop()
		}
		ticking = running
	}

	for {
		select {
		case <-s.doneChan:
			ticker.Stop()
			s.logger.Printf("Session: Goroutine exiting")
			return

		case cmd := <-s.cmdChan:
			p := s.apply(cmd)
			syncTicker(p.Status)
			if cmd.kind != cmdSnapshot {
				s.progress.Notify(p)
			}
			cmd.reply <- p

		case <-ticker.C:
			p := s.clock.Tick(s.time.Now())
			syncTicker(p.Status)
			s.progress.Notify(p)
		}
	}
}

func (s *Session) apply(cmd command) workout.Progress {
	switch cmd.kind {
	case cmdStart:
		s.clock.Start()
	case cmdPause:
		s.clock.Pause()
	case cmdResume:
		s.clock.Resume()
	case cmdToggle:
		s.clock.Toggle()
	case cmdReset:
		s.clock.Reset()
	case cmdAdjust:
		s.clock.ApplyAdjustment(cmd.field, cmd.value)
	case cmdNudge:
		s.clock.Nudge(cmd.field, cmd.value)
	case cmdLoad:
		s.clock.LoadConfig(cmd.cfg, cmd.name)
	case cmdRename:
		s.clock.SetName(cmd.name)
	}
	return s.clock.Snapshot(s.time.Now())
}

// clockSink receives clock events on the session goroutine
type clockSink struct {
	s *Session
}

func (c clockSink) OnPhaseChanged(_ workout.Phase, p workout.Progress) {
	c.s.phaseChanged.Notify(p)
}

func (c clockSink) OnAlert(kind workout.AlertKind) {
	if c.s.player != nil {
		c.s.player.Play(kind)
	}
	c.s.alerts.Notify(kind)
}
