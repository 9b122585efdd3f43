package workout

import (
	"fmt"
	"time"
)

// DefaultWorkoutName is used when a finished workout was never named
const DefaultWorkoutName = "Workout"

// Summary is the record of a finished workout. It is built once, at the
// Finished transition, and never mutated by the clock afterwards.
type Summary struct {
	ID                   string    `json:"id" yaml:"id"`
	Name                 string    `json:"name" yaml:"name"`
	Date                 time.Time `json:"date" yaml:"date"`
	Config               Config    `json:"config" yaml:"config"`
	CompletedRounds      int       `json:"completed_rounds" yaml:"completed_rounds"`
	CompletedExercises   int       `json:"completed_exercises" yaml:"completed_exercises"`
	TotalDurationSeconds int       `json:"total_duration_seconds" yaml:"total_duration_seconds"`
}

// FormattedDuration renders the total duration as m:ss
func (s Summary) FormattedDuration() string {
	return fmt.Sprintf("%d:%02d", s.TotalDurationSeconds/60, s.TotalDurationSeconds%60)
}

// Recorder persists finished workouts
type Recorder interface {
	RecordWorkout(summary Summary) error
}

// Sink receives clock events synchronously from inside Tick and friends.
// Implementations must not call back into the clock.
type Sink interface {
	OnPhaseChanged(phase Phase, progress Progress)
	OnAlert(kind AlertKind)
}

// NopSink discards every event
type NopSink struct{}

func (NopSink) OnPhaseChanged(Phase, Progress) {}
func (NopSink) OnAlert(AlertKind)              {}

type nopRecorder struct{}

func (nopRecorder) RecordWorkout(Summary) error { return nil }
