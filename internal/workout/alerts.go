package workout

import "fmt"

// AlertKind identifies a one-shot audible cue
type AlertKind int

const (
	AlertHalfwayWork   AlertKind = iota // Halfway through a work interval
	AlertWorkCountdown                  // Last three seconds of a work interval
	AlertCountdown                      // Last three seconds of get ready, rest or round reset
	AlertComplete                       // Workout finished
)

var alertNames = map[AlertKind]string{
	AlertHalfwayWork:   "halfway_work",
	AlertWorkCountdown: "work_countdown",
	AlertCountdown:     "countdown",
	AlertComplete:      "complete",
}

func (k AlertKind) String() string {
	if name, ok := alertNames[k]; ok {
		return name
	}
	return fmt.Sprintf("alert(%d)", int(k))
}

func (k AlertKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// countdownSeconds is the threshold at which the countdown cue fires
const countdownSeconds = 3

// alertFlags records which alerts already fired in the current phase instance
type alertFlags struct {
	halfway   bool
	countdown bool
	complete  bool
}

func (f *alertFlags) reset() {
	*f = alertFlags{}
}

func (f *alertFlags) mark(kind AlertKind) {
	switch kind {
	case AlertHalfwayWork:
		f.halfway = true
	case AlertWorkCountdown, AlertCountdown:
		f.countdown = true
	case AlertComplete:
		f.complete = true
	}
}

// halfwaySeconds is the displayed remaining value at which the halfway cue fires
func halfwaySeconds(workSeconds int) int {
	return max(1, workSeconds/2)
}

// evaluateAlerts returns the alerts that should fire for the given phase and
// displayed remaining seconds. Halfway comes before countdown when both match.
// It does not mark anything as fired.
func evaluateAlerts(phase Phase, remainingCeil, workSeconds int, fired alertFlags) []AlertKind {
	var due []AlertKind
	inCountdown := remainingCeil > 0 && remainingCeil <= countdownSeconds

	switch phase {
	case PhaseWork:
		if !fired.halfway && remainingCeil == halfwaySeconds(workSeconds) {
			due = append(due, AlertHalfwayWork)
		}
		if !fired.countdown && inCountdown {
			due = append(due, AlertWorkCountdown)
		}
	case PhaseGetReady, PhaseRest, PhaseRoundReset:
		if !fired.countdown && inCountdown {
			due = append(due, AlertCountdown)
		}
	}
	return due
}
