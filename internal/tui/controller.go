package tui

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/lowaak/hiit-timer/internal/events"
	"github.com/lowaak/hiit-timer/internal/workout"
)

const (
	historyLimit   = 20
	historyTimeout = 3 * time.Second
)

// Session is the part of session.Session the terminal UI drives
type Session interface {
	Progress() *events.Event[workout.Progress]
	Snapshot() workout.Progress
	Toggle() workout.Progress
	Reset() workout.Progress
	Nudge(field workout.Field, delta int) workout.Progress
	Load(cfg workout.Config, name string) workout.Progress
}

// HistoryReader lists past workouts
type HistoryReader interface {
	LoadLast(ctx context.Context, n int) ([]workout.Summary, error)
}

// Controller turns key presses into session commands and tracks the UI
// state that does not belong to the session: the selected field and the
// history list.
type Controller struct {
	session Session
	history HistoryReader
	logger  *log.Logger
	quit    func()

	mu       sync.Mutex
	selected workout.Field
	workouts []workout.Summary
}

// NewControllerArgs holds the arguments for creating a new Controller
type NewControllerArgs struct {
	Session Session
	History HistoryReader // Optional
	Logger  *log.Logger
	Quit    func() // Called on Esc
}

func NewController(args NewControllerArgs) *Controller {
	if args.Session == nil {
		panic("UIController: session cannot be nil")
	}
	if args.Logger == nil {
		panic("UIController: logger cannot be nil")
	}
	quit := args.Quit
	if quit == nil {
		quit = func() {}
	}
	return &Controller{
		session:  args.Session,
		history:  args.History,
		logger:   args.Logger,
		quit:     quit,
		selected: workout.FieldWork,
	}
}

// Selected returns the field +/- currently adjusts
func (c *Controller) Selected() workout.Field {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// SelectField picks the field by its 1-based position in the settings list
func (c *Controller) SelectField(position int) bool {
	if position < 1 || position > len(workout.AllFields) {
		return false
	}
	info := workout.AllFields[position-1]
	c.mu.Lock()
	c.selected = info.Field
	c.mu.Unlock()
	c.logger.Printf("UI: Selected %s", info.Title)
	return true
}

// Nudge moves the selected field one step up (direction > 0) or down
func (c *Controller) Nudge(direction int) workout.Progress {
	field := c.Selected()
	info, _ := workout.GetFieldInfo(field)
	delta := info.Step
	if direction < 0 {
		delta = -delta
	}
	return c.session.Nudge(field, delta)
}

func (c *Controller) ToggleWorkout() workout.Progress {
	return c.session.Toggle()
}

func (c *Controller) ResetWorkout() workout.Progress {
	return c.session.Reset()
}

// OnEscapeKey handles when the Escape key is pressed
func (c *Controller) OnEscapeKey() {
	c.quit()
}

// RefreshHistory reloads the recent workouts list
func (c *Controller) RefreshHistory() []workout.Summary {
	if c.history == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()

	workouts, err := c.history.LoadLast(ctx, historyLimit)
	if err != nil {
		c.logger.Printf("UI: Failed to load history: %v", err)
		return c.Workouts()
	}
	c.mu.Lock()
	c.workouts = workouts
	c.mu.Unlock()
	return workouts
}

// Workouts returns the list loaded by the last RefreshHistory
func (c *Controller) Workouts() []workout.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]workout.Summary(nil), c.workouts...)
}

// OnWorkoutSelected loads a past workout's config into the session
func (c *Controller) OnWorkoutSelected(index int) bool {
	c.mu.Lock()
	if index < 0 || index >= len(c.workouts) {
		c.mu.Unlock()
		c.logger.Printf("UI: Invalid workout index: %d", index)
		return false
	}
	summary := c.workouts[index]
	c.mu.Unlock()

	c.logger.Printf("UI: Repeating workout %q", summary.Name)
	c.session.Load(summary.Config, summary.Name)
	return true
}
