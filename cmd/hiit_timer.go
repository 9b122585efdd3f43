package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rivo/tview"
	"github.com/spf13/pflag"

	"github.com/lowaak/hiit-timer/internal/config"
	"github.com/lowaak/hiit-timer/internal/go_func_utils"
	"github.com/lowaak/hiit-timer/internal/history"
	"github.com/lowaak/hiit-timer/internal/i18n"
	"github.com/lowaak/hiit-timer/internal/logging"
	"github.com/lowaak/hiit-timer/internal/server"
	"github.com/lowaak/hiit-timer/internal/session"
	"github.com/lowaak/hiit-timer/internal/sound"
	"github.com/lowaak/hiit-timer/internal/tui"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// The terminal UI owns stdout, so logs only reach the console when headless
	var console io.Writer
	if cfg.NoUI {
		console = os.Stderr
	}
	logs := logging.New(logging.NewArgs{
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
		Console:    console,
	})
	defer logs.Close()
	logger := logs.Logger

	if cfg.File != "" {
		logger.Printf("Config: Loaded %s", cfg.File)
	}

	store, err := history.Open(cfg.HistoryPath(), logger)
	must(logger, "open workout history", err)
	defer store.Close()

	player := sound.NewPlayer(sound.NewPlayerArgs{
		AssetsDir: cfg.AssetsDir,
		Logger:    logger,
	})

	sess := session.NewSession(session.NewSessionArgs{
		Config:   cfg.Workout,
		Name:     cfg.Name,
		TickRate: cfg.TickRate,
		Recorder: store,
		Player:   player,
		Logger:   logger,
	})
	defer sess.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	if cfg.Listen != "" {
		srv := server.New(server.NewServerArgs{
			Controller: sess,
			History:    store,
			Logger:     logger,
		})
		go_func_utils.SafeGoGroup(logger, &wg, "HTTP server", func() {
			if err := srv.ListenAndServe(ctx, cfg.Listen); err != nil {
				logger.Printf("Server: %v", err)
				stop()
			}
		})
	}

	if cfg.NoUI {
		<-ctx.Done()
	} else {
		runUI(ctx, stop, cfg, sess, store, logs)
	}

	stop()
	wg.Wait()
	logger.Printf("Main: Exiting")
}

func runUI(ctx context.Context, stop context.CancelFunc, cfg *config.Config, sess *session.Session, store *history.Store, logs *logging.Logging) {
	logger := logs.Logger
	app := tview.NewApplication()

	controller := tui.NewController(tui.NewControllerArgs{
		Session: sess,
		History: store,
		Logger:  logger,
		Quit:    app.Stop,
	})
	view := tui.NewView(tui.NewViewArgs{
		App:        app,
		Controller: controller,
		Session:    sess,
		Tail:       logs.Tail,
		Translator: i18n.New(cfg.Lang, logger),
		Logger:     logger,
	})

	go_func_utils.SafeGo(logger, "UI signal watcher", func() {
		<-ctx.Done()
		view.Stop()
	})

	if err := view.Run(); err != nil {
		logger.Printf("UI: %v", err)
	}
	stop()
	view.Shutdown()
}

func must(logger *log.Logger, action string, err error) {
	if err != nil {
		logger.Printf("Main: Failed to %s: %v", action, err)
		fmt.Fprintf(os.Stderr, "failed to %s: %v\n", action, err)
		os.Exit(1)
	}
}
