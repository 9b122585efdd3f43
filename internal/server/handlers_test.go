package server

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lowaak/hiit-timer/internal/history"
	"github.com/lowaak/hiit-timer/internal/session"
	"github.com/lowaak/hiit-timer/internal/workout"
)

var epoch = time.Date(2024, 3, 1, 7, 0, 0, 0, time.UTC)

type testEnv struct {
	srv     *Server
	session *session.Session
	store   *history.Store
	time    *workout.ManualTime
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := log.New(io.Discard, "", 0)

	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := workout.NewManualTime(epoch)
	sess := session.NewSession(session.NewSessionArgs{
		Config:     workout.Config{WorkSeconds: 5, RestSeconds: 5, Rounds: 1, Exercises: 1, GetReadySeconds: 3},
		TickRate:   1000,
		TimeSource: clock,
		Recorder:   store,
		Logger:     logger,
	})
	t.Cleanup(sess.Shutdown)

	return &testEnv{
		srv:     New(NewServerArgs{Controller: sess, History: store, Logger: logger}),
		session: sess,
		store:   store,
		time:    clock,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.srv.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) save(t *testing.T, name string, at time.Time) workout.Summary {
	t.Helper()
	saved, err := e.store.Save(context.Background(), workout.Summary{
		Name:                 name,
		Date:                 at,
		Config:               workout.Config{WorkSeconds: 40, RestSeconds: 20, Rounds: 4, Exercises: 2, RoundResetSeconds: 30, GetReadySeconds: 5},
		CompletedRounds:      4,
		CompletedExercises:   2,
		TotalDurationSeconds: 500,
	})
	require.NoError(t, err)
	return saved
}

// progressBody is the subset of the progress JSON the tests look at
type progressBody struct {
	Status              string         `json:"status"`
	Phase               string         `json:"phase"`
	Name                string         `json:"name"`
	TotalPlannedSeconds int            `json:"total_planned_seconds"`
	Config              workout.Config `json:"config"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestNew_PanicsOnMissingDependencies(t *testing.T) {
	assert.Panics(t, func() { New(NewServerArgs{}) })
}

func TestSessionEndpoints(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/api/v1/session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	p := decode[progressBody](t, rec)
	assert.Equal(t, "idle", p.Status)
	assert.Equal(t, "get_ready", p.Phase)
	assert.Equal(t, 8, p.TotalPlannedSeconds)

	steps := []struct {
		path   string
		status string
	}{
		{"/api/v1/session/start", "running"},
		{"/api/v1/session/pause", "paused"},
		{"/api/v1/session/resume", "running"},
		{"/api/v1/session/toggle", "paused"},
		{"/api/v1/session/reset", "idle"},
	}
	for _, step := range steps {
		rec := e.do(t, http.MethodPost, step.path, "")
		require.Equal(t, http.StatusOK, rec.Code, step.path)
		assert.Equal(t, step.status, decode[progressBody](t, rec).Status, step.path)
	}
}

func TestAdjust(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/v1/session/adjust", `{"field":"work","value":45}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 45, decode[progressBody](t, rec).Config.WorkSeconds)

	rec = e.do(t, http.MethodPost, "/api/v1/session/adjust", `{"field":"rounds","value":99}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, decode[progressBody](t, rec).Config.Rounds)
}

func TestAdjust_BadRequests(t *testing.T) {
	e := newTestEnv(t)

	for _, body := range []string{`not json`, `{"field":"warmup","value":10}`, `{"field":"work"}`} {
		rec := e.do(t, http.MethodPost, "/api/v1/session/adjust", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Contains(t, decode[map[string]string](t, rec), "error")
	}
}

func TestFinishedWorkoutAppearsInHistory(t *testing.T) {
	e := newTestEnv(t)
	e.do(t, http.MethodPost, "/api/v1/session/start", "")

	e.time.Advance(3 * time.Second)
	require.Eventually(t, func() bool { return e.session.Snapshot().Phase == workout.PhaseWork }, 2*time.Second, time.Millisecond)
	e.time.Advance(5 * time.Second)
	require.Eventually(t, func() bool { return e.session.Snapshot().Status == workout.StatusFinished }, 2*time.Second, time.Millisecond)

	rec := e.do(t, http.MethodGet, "/api/v1/workouts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	workouts := decode[[]workout.Summary](t, rec)
	require.Len(t, workouts, 1)
	assert.Equal(t, workout.DefaultWorkoutName, workouts[0].Name)
	assert.Equal(t, 8, workouts[0].TotalDurationSeconds)
}

func TestListWorkouts(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodGet, "/api/v1/workouts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	e.save(t, "Older", epoch)
	e.save(t, "Newer", epoch.Add(time.Hour))

	rec = e.do(t, http.MethodGet, "/api/v1/workouts?limit=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	workouts := decode[[]workout.Summary](t, rec)
	require.Len(t, workouts, 1)
	assert.Equal(t, "Newer", workouts[0].Name)

	for _, limit := range []string{"0", "-1", "abc", "501"} {
		rec := e.do(t, http.MethodGet, "/api/v1/workouts?limit="+limit, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, limit)
	}
}

func TestWorkoutByID(t *testing.T) {
	e := newTestEnv(t)
	saved := e.save(t, "Leg day", epoch)
	path := "/api/v1/workouts/" + saved.ID

	rec := e.do(t, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[workout.Summary](t, rec)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, "Leg day", got.Name)
	assert.Equal(t, saved.Config, got.Config)
	assert.True(t, saved.Date.Equal(got.Date))

	rec = e.do(t, http.MethodPatch, path, `{"name":"Arm day"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Arm day", decode[workout.Summary](t, rec).Name)

	rec = e.do(t, http.MethodPatch, path, `{`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = e.do(t, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		rec = e.do(t, method, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, method)
	}
	rec = e.do(t, http.MethodPatch, path, `{"name":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoadWorkout(t *testing.T) {
	e := newTestEnv(t)
	saved := e.save(t, "Repeat me", epoch)
	e.do(t, http.MethodPost, "/api/v1/session/start", "")

	rec := e.do(t, http.MethodPost, "/api/v1/workouts/"+saved.ID+"/load", "")
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[progressBody](t, rec)
	assert.Equal(t, "idle", p.Status)
	assert.Equal(t, "Repeat me", p.Name)
	assert.Equal(t, saved.Config, p.Config)

	rec = e.do(t, http.MethodPost, "/api/v1/workouts/missing/load", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStats(t *testing.T) {
	e := newTestEnv(t)
	e.save(t, "A", epoch)
	e.save(t, "B", epoch)

	rec := e.do(t, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_workouts":2,"total_duration_seconds":1000,"average_seconds":500}`, rec.Body.String())
}

func TestExportWorkouts(t *testing.T) {
	e := newTestEnv(t)
	e.save(t, "Exported", epoch)

	rec := e.do(t, http.MethodGet, "/api/v1/workouts/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))

	var doc struct {
		Workouts []workout.Summary `yaml:"workouts"`
	}
	require.NoError(t, yaml.Unmarshal(rec.Body.Bytes(), &doc))
	require.Len(t, doc.Workouts, 1)
	assert.Equal(t, "Exported", doc.Workouts[0].Name)
}

func TestCORSPreflight(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodOptions, "/api/v1/session/start", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
