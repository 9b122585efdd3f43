package workout

import (
	"fmt"
	"strings"
)

// Default values
const (
	DefaultWorkSeconds       = 30
	DefaultRestSeconds       = 15
	DefaultRounds            = 5
	DefaultRoundResetSeconds = 60
	DefaultExercises         = 3
	DefaultGetReadySeconds   = 10
)

// Config holds the duration accounting inputs of a workout
type Config struct {
	WorkSeconds       int `json:"work_seconds" yaml:"work_seconds"`
	RestSeconds       int `json:"rest_seconds" yaml:"rest_seconds"`
	RoundResetSeconds int `json:"round_reset_seconds" yaml:"round_reset_seconds"`
	GetReadySeconds   int `json:"get_ready_seconds" yaml:"get_ready_seconds"`
	Rounds            int `json:"rounds" yaml:"rounds"`
	Exercises         int `json:"exercises" yaml:"exercises"`
}

// DefaultConfig returns the out-of-the-box workout
func DefaultConfig() Config {
	return Config{
		WorkSeconds:       DefaultWorkSeconds,
		RestSeconds:       DefaultRestSeconds,
		RoundResetSeconds: DefaultRoundResetSeconds,
		GetReadySeconds:   DefaultGetReadySeconds,
		Rounds:            DefaultRounds,
		Exercises:         DefaultExercises,
	}
}

// Field identifies one adjustable Config value
type Field int

const (
	FieldWork Field = iota
	FieldRest
	FieldRounds
	FieldRoundReset
	FieldExercises
	FieldGetReady
)

// ValueRange is an inclusive bound
type ValueRange struct {
	Min int
	Max int
}

// Clamp pins v inside the range
func (r ValueRange) Clamp(v int) int {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// FieldInfo contains display and validation information for a Field
type FieldInfo struct {
	Field           Field
	Key             string // Stable identifier used by config files and the HTTP API
	Title           string
	Unit            string // "seconds" for durations, empty for counts
	Range           ValueRange
	Step            int
	QuickIncrements []int
}

var timeIncrements = []int{5, 10, 15, 30, 60}
var countIncrements = []int{1, 2, 5, 10}

// AllFields defines every adjustable field in display order
var AllFields = []FieldInfo{
	{Field: FieldWork, Key: "work", Title: "Work Time", Unit: "seconds", Range: ValueRange{1, 300}, Step: 5, QuickIncrements: timeIncrements},
	{Field: FieldRest, Key: "rest", Title: "Rest Time", Unit: "seconds", Range: ValueRange{1, 180}, Step: 5, QuickIncrements: timeIncrements},
	{Field: FieldRounds, Key: "rounds", Title: "Number of Rounds", Range: ValueRange{1, 20}, Step: 1, QuickIncrements: countIncrements},
	{Field: FieldRoundReset, Key: "round_reset", Title: "Round Reset Time", Unit: "seconds", Range: ValueRange{0, 300}, Step: 5, QuickIncrements: timeIncrements},
	{Field: FieldExercises, Key: "exercises", Title: "Number of Exercises", Range: ValueRange{1, 30}, Step: 1, QuickIncrements: countIncrements},
	{Field: FieldGetReady, Key: "get_ready", Title: "Get Ready Time", Unit: "seconds", Range: ValueRange{1, 60}, Step: 5, QuickIncrements: timeIncrements},
}

// GetFieldInfo returns the info for a given field
func GetFieldInfo(field Field) (FieldInfo, bool) {
	for _, info := range AllFields {
		if info.Field == field {
			return info, true
		}
	}
	return FieldInfo{}, false
}

// GetFieldByKey returns the field for a given key, case-insensitive
func GetFieldByKey(key string) (Field, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, info := range AllFields {
		if info.Key == key {
			return info.Field, true
		}
	}
	return 0, false
}

func (f Field) String() string {
	if info, ok := GetFieldInfo(f); ok {
		return info.Key
	}
	return fmt.Sprintf("field(%d)", int(f))
}

// IsDuration reports whether the field is measured in seconds
func (f Field) IsDuration() bool {
	info, ok := GetFieldInfo(f)
	return ok && info.Unit == "seconds"
}

// FormatValue renders a value the way the adjuster shows it: "45s", "1m", "1m 30s" or a bare count
func (f Field) FormatValue(value int) string {
	if !f.IsDuration() {
		return fmt.Sprintf("%d", value)
	}
	if value < 60 {
		return fmt.Sprintf("%ds", value)
	}
	minutes := value / 60
	seconds := value % 60
	if seconds > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%dm", minutes)
}

// Get returns the current value of a field
func (c Config) Get(field Field) int {
	switch field {
	case FieldWork:
		return c.WorkSeconds
	case FieldRest:
		return c.RestSeconds
	case FieldRounds:
		return c.Rounds
	case FieldRoundReset:
		return c.RoundResetSeconds
	case FieldExercises:
		return c.Exercises
	case FieldGetReady:
		return c.GetReadySeconds
	}
	return 0
}

// With returns a copy of c with field set to the clamped value
func (c Config) With(field Field, value int) Config {
	info, ok := GetFieldInfo(field)
	if !ok {
		return c
	}
	value = info.Range.Clamp(value)
	switch field {
	case FieldWork:
		c.WorkSeconds = value
	case FieldRest:
		c.RestSeconds = value
	case FieldRounds:
		c.Rounds = value
	case FieldRoundReset:
		c.RoundResetSeconds = value
	case FieldExercises:
		c.Exercises = value
	case FieldGetReady:
		c.GetReadySeconds = value
	}
	return c
}

// Clamp returns a copy of c with every field inside its valid range
func (c Config) Clamp() Config {
	for _, info := range AllFields {
		c = c.With(info.Field, c.Get(info.Field))
	}
	return c
}

// Stepped snaps value+delta down to the field's step and clamps it
func (c Config) Stepped(field Field, delta int) int {
	info, ok := GetFieldInfo(field)
	if !ok {
		return c.Get(field)
	}
	value := c.Get(field) + delta
	if info.Step > 1 {
		value = (value / info.Step) * info.Step
	}
	return info.Range.Clamp(value)
}

// TotalPlannedSeconds is the projected length of the whole workout.
// GetReady runs before every round.
func (c Config) TotalPlannedSeconds() int {
	perRound := c.WorkSeconds*c.Exercises + c.RestSeconds*max(0, c.Exercises-1)
	return c.GetReadySeconds*c.Rounds + perRound*c.Rounds + c.RoundResetSeconds*max(0, c.Rounds-1)
}

// PhaseSeconds returns the configured duration of a phase
func (c Config) PhaseSeconds(phase Phase) int {
	switch phase {
	case PhaseGetReady:
		return c.GetReadySeconds
	case PhaseWork:
		return c.WorkSeconds
	case PhaseRest:
		return c.RestSeconds
	case PhaseRoundReset:
		return c.RoundResetSeconds
	}
	return 0
}

// durationField maps a phase to the field its duration comes from
func durationField(phase Phase) (Field, bool) {
	switch phase {
	case PhaseGetReady:
		return FieldGetReady, true
	case PhaseWork:
		return FieldWork, true
	case PhaseRest:
		return FieldRest, true
	case PhaseRoundReset:
		return FieldRoundReset, true
	}
	return 0, false
}
