package workout

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalPlannedSeconds(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want int
	}{
		{"defaults", DefaultConfig(), 890},
		{"two by two", scenarioConfig, 46},
		{"single interval", Config{WorkSeconds: 20, RestSeconds: 10, Rounds: 1, Exercises: 1, RoundResetSeconds: 60, GetReadySeconds: 5}, 25},
		{"no round reset", Config{WorkSeconds: 10, RestSeconds: 5, Rounds: 3, Exercises: 2, GetReadySeconds: 1}, 3 + 3*25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.TotalPlannedSeconds())
		})
	}
}

func TestConfig_Clamp(t *testing.T) {
	cfg := Config{WorkSeconds: -5, RestSeconds: 500, Rounds: 0, RoundResetSeconds: -1, Exercises: 100, GetReadySeconds: 0}

	assert.Equal(t, Config{WorkSeconds: 1, RestSeconds: 180, Rounds: 1, RoundResetSeconds: 0, Exercises: 30, GetReadySeconds: 1}, cfg.Clamp())
	assert.Equal(t, DefaultConfig(), DefaultConfig().Clamp())
}

func TestConfig_GetWith(t *testing.T) {
	cfg := DefaultConfig()
	for _, info := range AllFields {
		updated := cfg.With(info.Field, info.Range.Min)
		assert.Equal(t, info.Range.Min, updated.Get(info.Field), info.Key)
	}
	assert.Equal(t, cfg, cfg.With(Field(99), 10))
	assert.Equal(t, 0, cfg.Get(Field(99)))
}

func TestConfig_Stepped(t *testing.T) {
	cfg := Config{WorkSeconds: 32, RestSeconds: 15, Rounds: 5, Exercises: 3, RoundResetSeconds: 300, GetReadySeconds: 10}

	assert.Equal(t, 35, cfg.Stepped(FieldWork, 5))
	assert.Equal(t, 25, cfg.Stepped(FieldWork, -5))
	assert.Equal(t, 300, cfg.Stepped(FieldRoundReset, 60))
	assert.Equal(t, 6, cfg.Stepped(FieldRounds, 1))
	assert.Equal(t, 1, cfg.Stepped(FieldExercises, -10))
}

func TestGetFieldByKey(t *testing.T) {
	for _, info := range AllFields {
		field, ok := GetFieldByKey(info.Key)
		require.True(t, ok, info.Key)
		assert.Equal(t, info.Field, field)
		assert.Equal(t, info.Key, field.String())
	}

	field, ok := GetFieldByKey(" Round_Reset ")
	assert.True(t, ok)
	assert.Equal(t, FieldRoundReset, field)

	_, ok = GetFieldByKey("warmup")
	assert.False(t, ok)
}

func TestField_FormatValue(t *testing.T) {
	assert.Equal(t, "45s", FieldWork.FormatValue(45))
	assert.Equal(t, "1m", FieldRest.FormatValue(60))
	assert.Equal(t, "1m 30s", FieldRoundReset.FormatValue(90))
	assert.Equal(t, "0s", FieldRoundReset.FormatValue(0))
	assert.Equal(t, "12", FieldRounds.FormatValue(12))
	assert.Equal(t, "3", FieldExercises.FormatValue(3))
}

func TestField_IsDuration(t *testing.T) {
	assert.True(t, FieldWork.IsDuration())
	assert.True(t, FieldGetReady.IsDuration())
	assert.False(t, FieldRounds.IsDuration())
	assert.False(t, FieldExercises.IsDuration())
	assert.False(t, Field(42).IsDuration())
}

func TestPhaseSeconds(t *testing.T) {
	cfg := scenarioConfig
	assert.Equal(t, 3, cfg.PhaseSeconds(PhaseGetReady))
	assert.Equal(t, 5, cfg.PhaseSeconds(PhaseWork))
	assert.Equal(t, 5, cfg.PhaseSeconds(PhaseRest))
	assert.Equal(t, 10, cfg.PhaseSeconds(PhaseRoundReset))
	assert.Equal(t, 0, cfg.PhaseSeconds(PhaseFinished))
}

func TestEnumsMarshalAsNames(t *testing.T) {
	data, err := json.Marshal(map[string]any{
		"phase":  PhaseRoundReset,
		"status": StatusPaused,
		"alert":  AlertWorkCountdown,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"phase":"round_reset","status":"paused","alert":"work_countdown"}`, string(data))
	assert.Equal(t, "phase(9)", Phase(9).String())
}
