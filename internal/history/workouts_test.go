package history

import (
	"bytes"
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lowaak/hiit-timer/internal/workout"
)

var day = time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"), log.New(io.Discard, "", 0))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func summaryAt(name string, at time.Time, seconds int) workout.Summary {
	return workout.Summary{
		Name:                 name,
		Date:                 at,
		Config:               workout.DefaultConfig(),
		CompletedRounds:      5,
		CompletedExercises:   3,
		TotalDurationSeconds: seconds,
	}
}

func TestOpen_ReopensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	logger := log.New(io.Discard, "", 0)

	store, err := Open(path, logger)
	require.NoError(t, err)
	_, err = store.Save(context.Background(), summaryAt("First", day, 600))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(path, logger)
	require.NoError(t, err)
	defer store.Close()

	all, err := store.LoadLast(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "First", all[0].Name)
}

func TestOpen_PanicsWithoutLogger(t *testing.T) {
	assert.Panics(t, func() { Open(filepath.Join(t.TempDir(), "h.db"), nil) })
}

func TestSaveAndGet_RoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	in := summaryAt("Leg day", day, 890)
	in.ID = "3b0d8a4e-4a34-4a59-9d1c-2f5b7f2d6a10"
	in.Config = workout.Config{WorkSeconds: 40, RestSeconds: 20, Rounds: 3, Exercises: 4, RoundResetSeconds: 0, GetReadySeconds: 5}

	saved, err := store.Save(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, in, saved)

	got, err := store.Get(ctx, in.ID)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestSave_FillsIDAndName(t *testing.T) {
	store := openTestStore(t)

	saved, err := store.Save(context.Background(), summaryAt("", day, 60))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, workout.DefaultWorkoutName, saved.Name)
}

func TestSave_DuplicateID(t *testing.T) {
	store := openTestStore(t)
	s := summaryAt("Once", day, 60)
	s.ID = "dup"

	_, err := store.Save(context.Background(), s)
	require.NoError(t, err)
	_, err = store.Save(context.Background(), s)
	assert.Error(t, err)
}

func TestLoadLast_NewestFirstAndLimited(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i, name := range []string{"Mon", "Tue", "Wed", "Thu"} {
		_, err := store.Save(ctx, summaryAt(name, day.Add(time.Duration(i)*24*time.Hour), 100))
		require.NoError(t, err)
	}

	got, err := store.LoadLast(ctx, 3)
	require.NoError(t, err)
	names := make([]string, 0, len(got))
	for _, s := range got {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Thu", "Wed", "Tue"}, names)

	all, err := store.LoadLast(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestLoadLast_Empty(t *testing.T) {
	store := openTestStore(t)

	got, err := store.LoadLast(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRenameAndDelete(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	saved, err := store.Save(ctx, summaryAt("Old", day, 100))
	require.NoError(t, err)

	require.NoError(t, store.Rename(ctx, saved.ID, "New"))
	got, err := store.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)

	require.NoError(t, store.Rename(ctx, saved.ID, ""))
	got, err = store.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, workout.DefaultWorkoutName, got.Name)

	require.NoError(t, store.Delete(ctx, saved.ID))
	_, err = store.Get(ctx, saved.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotFound(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.Rename(ctx, "missing", "x"), ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "missing"), ErrNotFound)
}

func TestStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, stats)

	for _, seconds := range []int{600, 900, 301} {
		_, err := store.Save(ctx, summaryAt("W", day, seconds))
		require.NoError(t, err)
	}

	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalWorkouts: 3, TotalDurationSeconds: 1801, AverageSeconds: 600}, stats)
}

func TestRecordWorkout(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.RecordWorkout(summaryAt("From clock", day, 46)))

	all, err := store.LoadLast(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "From clock", all[0].Name)
	assert.Equal(t, 46, all[0].TotalDurationSeconds)
}

func TestExportYAML(t *testing.T) {
	s := summaryAt("Tabata", day, 240)
	s.ID = "abc"

	var buf bytes.Buffer
	require.NoError(t, ExportYAML(&buf, []workout.Summary{s}))

	assert.Contains(t, buf.String(), "name: Tabata")
	assert.Contains(t, buf.String(), "work_seconds: 30")

	var doc struct {
		Workouts []workout.Summary `yaml:"workouts"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Workouts, 1)
	assert.Equal(t, s, doc.Workouts[0])
}

func TestExportYAML_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportYAML(&buf, nil))
	assert.Equal(t, "workouts: []\n", buf.String())
}
