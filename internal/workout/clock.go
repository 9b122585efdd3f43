package workout

import (
	"log"
	"math"
	"time"

	"github.com/google/uuid"
)

// Progress is a snapshot of a clock at one instant
type Progress struct {
	Status                Status        `json:"status"`
	Phase                 Phase         `json:"phase"`
	Round                 int           `json:"round"`
	Exercise              int           `json:"exercise"`
	PhaseDuration         time.Duration `json:"phase_duration_ns"`  // Duration the current phase began with
	PhaseRemaining        time.Duration `json:"phase_remaining_ns"` // Exact, for progress rings
	DisplayRemaining      int           `json:"display_remaining"`  // Whole seconds, rounded up
	PhaseDeadline         time.Time     `json:"phase_deadline,omitzero"`
	TotalPlannedSeconds   int           `json:"total_planned_seconds"`
	TotalRemainingSeconds int           `json:"total_remaining_seconds"`
	StartedAt             time.Time     `json:"started_at,omitzero"`
	PausedDuration        time.Duration `json:"paused_duration_ns"`
	Name                  string        `json:"name"`
	Config                Config        `json:"config"`
}

// Fraction is the share of the current phase still remaining, in [0, 1]
func (p Progress) Fraction() float64 {
	if p.PhaseDuration <= 0 {
		return 0
	}
	return min(1, max(0, float64(p.PhaseRemaining)/float64(p.PhaseDuration)))
}

// NewClockArgs holds the arguments for creating a new Clock
type NewClockArgs struct {
	Config     Config
	Name       string
	TimeSource TimeSource // SystemTime when nil
	Sink       Sink       // NopSink when nil
	Recorder   Recorder   // Finished workouts are dropped when nil
	Logger     *log.Logger
}

// Clock is the interval workout state machine. Remaining time is always
// derived from an absolute deadline, never decremented.
//
// Clock has no internal locking: every call against one instance must be
// serialised by the caller.
type Clock struct {
	cfg      Config
	name     string
	time     TimeSource
	sink     Sink
	recorder Recorder
	logger   *log.Logger

	status   Status
	phase    Phase
	round    int
	exercise int

	phaseDeadline     time.Time     // Zero unless running
	phaseDuration     time.Duration // What the current phase began with
	frozenRemaining   time.Duration // Remaining time captured by Pause
	workoutStartedAt  time.Time
	pauseStartedAt    time.Time
	accumulatedPaused time.Duration
	finishedAt        time.Time
	alerts            alertFlags
}

// NewClock creates an idle clock
func NewClock(args NewClockArgs) *Clock {
	if args.Logger == nil {
		panic("WorkoutClock: logger cannot be nil")
	}
	c := &Clock{
		cfg:      args.Config.Clamp(),
		name:     args.Name,
		time:     args.TimeSource,
		sink:     args.Sink,
		recorder: args.Recorder,
		logger:   args.Logger,
	}
	if c.time == nil {
		c.time = SystemTime{}
	}
	if c.sink == nil {
		c.sink = NopSink{}
	}
	if c.recorder == nil {
		c.recorder = nopRecorder{}
	}
	c.resetProgress()
	return c
}

func (c *Clock) Config() Config { return c.cfg }

func (c *Clock) Status() Status { return c.status }

func (c *Clock) Phase() Phase { return c.phase }

func (c *Clock) Name() string { return c.name }

// SetName names the workout for the summary recorded when it finishes
func (c *Clock) SetName(name string) { c.name = name }

// TotalPlannedSeconds is the projected workout length for the current config
func (c *Clock) TotalPlannedSeconds() int {
	return c.cfg.TotalPlannedSeconds()
}

// Start begins the workout from idle. No-op in any other state.
func (c *Clock) Start() {
	if c.status != StatusIdle {
		c.logger.Printf("WorkoutClock: Cannot start - workout is %s", c.status)
		return
	}
	now := c.time.Now()
	c.status = StatusRunning
	c.workoutStartedAt = now
	c.round = 1
	c.exercise = 1
	c.logger.Printf("WorkoutClock: Workout started (planned %ds)", c.TotalPlannedSeconds())
	c.enterPhase(PhaseGetReady, now, now)
}

// Pause freezes the current phase. Only valid while running.
func (c *Clock) Pause() {
	if c.status != StatusRunning {
		c.logger.Printf("WorkoutClock: Cannot pause - workout is %s", c.status)
		return
	}
	now := c.time.Now()
	c.frozenRemaining = max(0, c.phaseDeadline.Sub(now))
	c.pauseStartedAt = now
	c.phaseDeadline = time.Time{}
	c.status = StatusPaused
	c.logger.Printf("WorkoutClock: Paused with %v left in %s", c.frozenRemaining.Round(time.Millisecond), c.phase)
}

// Resume restarts a paused phase with the remaining time it was paused at
func (c *Clock) Resume() {
	if c.status != StatusPaused {
		c.logger.Printf("WorkoutClock: Cannot resume - workout is %s", c.status)
		return
	}
	now := c.time.Now()
	c.accumulatedPaused += now.Sub(c.pauseStartedAt)
	c.pauseStartedAt = time.Time{}
	c.phaseDeadline = now.Add(c.frozenRemaining)
	c.status = StatusRunning
	c.logger.Printf("WorkoutClock: Resumed %s", c.phase)
}

// Toggle starts, pauses or resumes depending on the current status
func (c *Clock) Toggle() {
	switch c.status {
	case StatusIdle:
		c.Start()
	case StatusRunning:
		c.Pause()
	case StatusPaused:
		c.Resume()
	default:
		c.logger.Printf("WorkoutClock: Workout finished - reset to go again")
	}
}

// Reset returns to idle. The config is kept.
func (c *Clock) Reset() {
	c.resetProgress()
	c.logger.Printf("WorkoutClock: Reset")
}

// LoadConfig resets the clock and replaces its config, e.g. to repeat a past workout
func (c *Clock) LoadConfig(cfg Config, name string) {
	c.resetProgress()
	c.cfg = cfg.Clamp()
	c.name = name
	c.logger.Printf("WorkoutClock: Loaded %q (planned %ds)", name, c.TotalPlannedSeconds())
}

// ApplyAdjustment sets a config field, clamped to its valid range. When the
// field drives the active phase, that phase restarts with the new value.
func (c *Clock) ApplyAdjustment(field Field, value int) {
	if _, ok := GetFieldInfo(field); !ok {
		return
	}
	c.cfg = c.cfg.With(field, value)
	newValue := c.cfg.Get(field)

	if active, ok := durationField(c.phase); ok && active == field {
		d := time.Duration(newValue) * time.Second
		switch c.status {
		case StatusRunning:
			c.phaseDeadline = c.time.Now().Add(d)
			c.phaseDuration = d
			c.alerts.reset()
		case StatusPaused:
			c.frozenRemaining = d
			c.phaseDuration = d
			c.alerts.reset()
		}
	}
	c.logger.Printf("WorkoutClock: %s set to %s (planned %ds)", field, field.FormatValue(newValue), c.TotalPlannedSeconds())
}

// Nudge moves a field by delta, snapped to the field's step
func (c *Clock) Nudge(field Field, delta int) {
	c.ApplyAdjustment(field, c.cfg.Stepped(field, delta))
}

// Tick advances the clock to now: it refreshes remaining time, fires due
// alerts, and performs at most one phase transition.
func (c *Clock) Tick(now time.Time) Progress {
	if c.status != StatusRunning {
		return c.snapshot(now)
	}

	remaining := max(0, c.phaseDeadline.Sub(now))
	for _, kind := range evaluateAlerts(c.phase, ceilSeconds(remaining), c.cfg.WorkSeconds, c.alerts) {
		c.alerts.mark(kind)
		c.sink.OnAlert(kind)
	}

	if remaining <= 0 {
		c.advance(now)
	}
	return c.snapshot(now)
}

// Snapshot returns the progress as of now without changing state
func (c *Clock) Snapshot(now time.Time) Progress {
	return c.snapshot(now)
}

// TotalRemainingSeconds is the planned total minus active (unpaused) elapsed time
func (c *Clock) TotalRemainingSeconds(now time.Time) int {
	switch c.status {
	case StatusIdle:
		return c.TotalPlannedSeconds()
	case StatusFinished:
		return 0
	}
	left := float64(c.TotalPlannedSeconds()) - c.activeElapsed(now).Seconds()
	return max(0, int(math.Ceil(left)))
}

// advance applies the transition table. The next deadline chains from the
// expired one so repeated transitions never accumulate drift; if that
// deadline is already in the past the next Tick moves on again.
func (c *Clock) advance(now time.Time) {
	base := c.phaseDeadline
	switch c.phase {
	case PhaseGetReady:
		c.exercise = 1
		c.enterPhase(PhaseWork, base, now)
	case PhaseWork:
		switch {
		case c.exercise < c.cfg.Exercises:
			c.enterPhase(PhaseRest, base, now)
		case c.round < c.cfg.Rounds:
			c.enterPhase(PhaseRoundReset, base, now)
		default:
			c.finish(base, now)
		}
	case PhaseRest:
		c.exercise++
		c.enterPhase(PhaseWork, base, now)
	case PhaseRoundReset:
		c.round++
		c.exercise = 1
		c.enterPhase(PhaseGetReady, base, now)
	}
}

func (c *Clock) enterPhase(phase Phase, base, now time.Time) {
	c.phase = phase
	c.phaseDuration = time.Duration(c.cfg.PhaseSeconds(phase)) * time.Second
	c.phaseDeadline = base.Add(c.phaseDuration)
	c.alerts.reset()
	c.logger.Printf("WorkoutClock: Round %d/%d exercise %d/%d -> %s (%v)",
		c.round, c.cfg.Rounds, c.exercise, c.cfg.Exercises, phase, c.phaseDuration)
	c.sink.OnPhaseChanged(phase, c.snapshot(now))
}

// finish records the summary and enters the terminal phase
func (c *Clock) finish(at, now time.Time) {
	c.finishedAt = at
	elapsed := c.activeElapsed(at)

	name := c.name
	if name == "" {
		name = DefaultWorkoutName
	}
	summary := Summary{
		ID:                   uuid.NewString(),
		Name:                 name,
		Date:                 at,
		Config:               c.cfg,
		CompletedRounds:      c.round,
		CompletedExercises:   c.exercise,
		TotalDurationSeconds: int(elapsed.Round(time.Second) / time.Second),
	}
	if err := c.recorder.RecordWorkout(summary); err != nil {
		c.logger.Printf("WorkoutClock: Failed to record workout %s: %v", summary.ID, err)
	}

	c.status = StatusFinished
	c.phase = PhaseFinished
	c.phaseDuration = 0
	c.phaseDeadline = time.Time{}
	c.logger.Printf("WorkoutClock: Workout complete in %s", summary.FormattedDuration())

	c.sink.OnPhaseChanged(PhaseFinished, c.snapshot(now))
	if !c.alerts.complete {
		c.alerts.mark(AlertComplete)
		c.sink.OnAlert(AlertComplete)
	}
}

// activeElapsed is the wall time since start, excluding every pause
func (c *Clock) activeElapsed(now time.Time) time.Duration {
	if c.workoutStartedAt.IsZero() {
		return 0
	}
	end := now
	switch c.status {
	case StatusPaused:
		end = c.pauseStartedAt
	case StatusFinished:
		end = c.finishedAt
	}
	return max(0, end.Sub(c.workoutStartedAt)-c.accumulatedPaused)
}

func (c *Clock) resetProgress() {
	c.status = StatusIdle
	c.phase = PhaseGetReady
	c.round = 1
	c.exercise = 1
	c.phaseDeadline = time.Time{}
	c.phaseDuration = 0
	c.frozenRemaining = 0
	c.workoutStartedAt = time.Time{}
	c.pauseStartedAt = time.Time{}
	c.accumulatedPaused = 0
	c.finishedAt = time.Time{}
	c.alerts.reset()
}

func (c *Clock) snapshot(now time.Time) Progress {
	p := Progress{
		Status:                c.status,
		Phase:                 c.phase,
		Round:                 c.round,
		Exercise:              c.exercise,
		PhaseDuration:         c.phaseDuration,
		PhaseDeadline:         c.phaseDeadline,
		TotalPlannedSeconds:   c.TotalPlannedSeconds(),
		TotalRemainingSeconds: c.TotalRemainingSeconds(now),
		StartedAt:             c.workoutStartedAt,
		PausedDuration:        c.accumulatedPaused,
		Name:                  c.name,
		Config:                c.cfg,
	}

	switch c.status {
	case StatusIdle:
		p.PhaseDuration = time.Duration(c.cfg.GetReadySeconds) * time.Second
		p.PhaseRemaining = p.PhaseDuration
	case StatusRunning:
		p.PhaseRemaining = max(0, c.phaseDeadline.Sub(now))
	case StatusPaused:
		p.PhaseRemaining = c.frozenRemaining
		p.PausedDuration += now.Sub(c.pauseStartedAt)
	}
	p.DisplayRemaining = ceilSeconds(p.PhaseRemaining)
	return p
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Seconds()))
}
