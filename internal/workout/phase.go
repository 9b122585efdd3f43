package workout

import "fmt"

// Phase is one segment of a workout cycle
type Phase int

const (
	PhaseGetReady   Phase = iota // Countdown before the first exercise of every round
	PhaseWork                    // Active exercise interval
	PhaseRest                    // Recovery between exercises within a round
	PhaseRoundReset              // Recovery between rounds
	PhaseFinished                // Terminal, until Reset
)

var phaseNames = map[Phase]string{
	PhaseGetReady:   "get_ready",
	PhaseWork:       "work",
	PhaseRest:       "rest",
	PhaseRoundReset: "round_reset",
	PhaseFinished:   "finished",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// MarshalText lets phases serialise as their names in JSON and YAML
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Status is the run state of a clock
type Status int

const (
	StatusIdle     Status = iota // Not started, or reset
	StatusRunning                // Deadlines are live
	StatusPaused                 // Remaining time is frozen
	StatusFinished               // Workout completed
)

var statusNames = map[Status]string{
	StatusIdle:     "idle",
	StatusRunning:  "running",
	StatusPaused:   "paused",
	StatusFinished: "finished",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
