package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lowaak/hiit-timer/internal/history"
	"github.com/lowaak/hiit-timer/internal/workout"
)

const shutdownTimeout = 5 * time.Second

// Controller drives the live workout. Implemented by session.Session.
type Controller interface {
	Snapshot() workout.Progress
	Start() workout.Progress
	Pause() workout.Progress
	Resume() workout.Progress
	Toggle() workout.Progress
	Reset() workout.Progress
	Adjust(field workout.Field, value int) workout.Progress
	Load(cfg workout.Config, name string) workout.Progress
}

// History reads and edits past workouts. Implemented by history.Store.
type History interface {
	LoadLast(ctx context.Context, n int) ([]workout.Summary, error)
	Get(ctx context.Context, id string) (workout.Summary, error)
	Rename(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (history.Stats, error)
}

// NewServerArgs holds the arguments for creating a new Server
type NewServerArgs struct {
	Controller Controller
	History    History
	Logger     *log.Logger
}

// Server is the HTTP API over the live session and the workout history
type Server struct {
	ctrl    Controller
	history History
	logger  *log.Logger
	router  chi.Router
}

// New creates a Server with all routes configured
func New(args NewServerArgs) *Server {
	if args.Logger == nil {
		panic("Server: logger cannot be nil")
	}
	if args.Controller == nil {
		panic("Server: controller cannot be nil")
	}
	if args.History == nil {
		panic("Server: history cannot be nil")
	}
	s := &Server{
		ctrl:    args.Controller,
		history: args.History,
		logger:  args.Logger,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.logger))
	s.router.Use(CORS)

	s.router.Route("/api/v1/session", func(r chi.Router) {
		r.Get("/", s.handleSession)
		r.Post("/start", s.sessionAction(s.ctrl.Start))
		r.Post("/pause", s.sessionAction(s.ctrl.Pause))
		r.Post("/resume", s.sessionAction(s.ctrl.Resume))
		r.Post("/toggle", s.sessionAction(s.ctrl.Toggle))
		r.Post("/reset", s.sessionAction(s.ctrl.Reset))
		r.Post("/adjust", s.handleAdjust)
	})

	s.router.Route("/api/v1/workouts", func(r chi.Router) {
		r.Get("/", s.handleListWorkouts)
		r.Get("/export", s.handleExportWorkouts)
		r.Get("/{id}", s.handleGetWorkout)
		r.Patch("/{id}", s.handleRenameWorkout)
		r.Delete("/{id}", s.handleDeleteWorkout)
		r.Post("/{id}/load", s.handleLoadWorkout)
	})

	s.router.Get("/api/v1/stats", s.handleStats)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpSrv := &http.Server{Handler: s, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.Serve(ln) }()
	s.logger.Printf("Server: Listening on %s", ln.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http: %w", err)
	}
	s.logger.Printf("Server: Stopped")
	return nil
}
