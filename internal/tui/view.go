package tui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lowaak/hiit-timer/internal/go_func_utils"
	"github.com/lowaak/hiit-timer/internal/i18n"
	"github.com/lowaak/hiit-timer/internal/logging"
	"github.com/lowaak/hiit-timer/internal/workout"
)

// View is the tview terminal front end: timer and settings on the left,
// workout history and logs on the right.
type View struct {
	app        *tview.Application
	controller *Controller
	session    Session
	tail       *logging.Tail
	tr         *i18n.Translator
	logger     *log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	timerPanel    *tview.TextView
	settingsPanel *tview.TextView
	historyList   *tview.List
	logView       *tview.TextView
	mainFlex      *tview.Flex
	tabWidgets    []tview.Primitive

	lastRendered string
	lastStatus   workout.Status
}

// NewViewArgs holds the arguments for creating a new View
type NewViewArgs struct {
	App        *tview.Application
	Controller *Controller
	Session    Session
	Tail       *logging.Tail // Optional log pane source
	Translator *i18n.Translator
	Logger     *log.Logger
}

func NewView(args NewViewArgs) *View {
	if args.App == nil {
		panic("UIView: app cannot be nil")
	}
	if args.Controller == nil {
		panic("UIView: controller cannot be nil")
	}
	if args.Session == nil {
		panic("UIView: session cannot be nil")
	}
	if args.Translator == nil {
		panic("UIView: translator cannot be nil")
	}
	if args.Logger == nil {
		panic("UIView: logger cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	v := &View{
		app:        args.App,
		controller: args.Controller,
		session:    args.Session,
		tail:       args.Tail,
		tr:         args.Translator,
		logger:     args.Logger,
		ctx:        ctx,
		cancel:     cancel,
	}
	v.initialize()
	v.setupKeyboardHandlers()
	return v
}

func (v *View) initialize() {
	// Widgets are updated through QueueUpdateDraw only; a SetChangedFunc
	// calling app.Draw can hang once the app has stopped.
	v.timerPanel = tview.NewTextView().SetDynamicColors(true)
	v.timerPanel.SetBorder(true).SetTitle(" HIIT ")

	v.settingsPanel = tview.NewTextView().SetDynamicColors(true)
	v.settingsPanel.SetBorder(true).SetTitle(fmt.Sprintf(" %s ", v.tr.T("Settings")))

	v.historyList = tview.NewList().
		ShowSecondaryText(true).
		SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			if v.controller.OnWorkoutSelected(index) {
				v.showProgress(v.session.Snapshot())
			}
		})
	v.historyList.SetBorder(true).SetTitle(fmt.Sprintf(" %s ", v.tr.T("History")))

	v.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	v.logView.SetBorder(true).SetTitle(fmt.Sprintf(" %s ", v.tr.T("Logs")))

	left := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(v.timerPanel, 0, 3, true).
		AddItem(v.settingsPanel, len(workout.AllFields)+5, 0, false)
	right := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(v.historyList, 0, 1, false).
		AddItem(v.logView, 0, 1, false)
	v.mainFlex = tview.NewFlex().
		AddItem(left, 0, 1, true).
		AddItem(right, 0, 1, false)

	v.tabWidgets = []tview.Primitive{v.timerPanel, v.historyList}

	v.showProgress(v.session.Snapshot())
	v.setHistory(v.controller.RefreshHistory())
}

func (v *View) setupKeyboardHandlers() {
	v.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEscape:
			v.controller.OnEscapeKey()
			return nil
		case tcell.KeyTab:
			v.cycleFocus()
			return nil
		case tcell.KeyUp:
			if !v.historyList.HasFocus() {
				v.showProgress(v.controller.Nudge(+1))
				return nil
			}
		case tcell.KeyDown:
			if !v.historyList.HasFocus() {
				v.showProgress(v.controller.Nudge(-1))
				return nil
			}
		case tcell.KeyRune:
			switch r := event.Rune(); {
			case r == ' ':
				v.showProgress(v.controller.ToggleWorkout())
				return nil
			case r == 'r':
				v.showProgress(v.controller.ResetWorkout())
				return nil
			case r == '+' || r == '=':
				v.showProgress(v.controller.Nudge(+1))
				return nil
			case r == '-':
				v.showProgress(v.controller.Nudge(-1))
				return nil
			case r >= '1' && r <= '9':
				if v.controller.SelectField(int(r - '0')) {
					v.showProgress(v.session.Snapshot())
				}
				return nil
			}
		}
		return event
	})
}

func (v *View) cycleFocus() {
	for i, w := range v.tabWidgets {
		if w.HasFocus() {
			v.app.SetFocus(v.tabWidgets[(i+1)%len(v.tabWidgets)])
			return
		}
	}
	v.app.SetFocus(v.tabWidgets[0])
}

// showProgress redraws the timer and settings panels. Must run on the UI goroutine.
func (v *View) showProgress(p workout.Progress) {
	text := renderTimer(p, v.tr)
	if text != v.lastRendered {
		v.timerPanel.SetText(text)
		v.lastRendered = text
	}
	v.settingsPanel.SetText(renderSettings(p.Config, v.controller.Selected()))
}

// setHistory replaces the history list. Must run on the UI goroutine.
func (v *View) setHistory(workouts []workout.Summary) {
	current := v.historyList.GetCurrentItem()
	v.historyList.Clear()
	for _, s := range workouts {
		main, secondary := historyItem(s, time.Local)
		v.historyList.AddItem(main, secondary, 0, nil)
	}
	if current < len(workouts) {
		v.historyList.SetCurrentItem(current)
	}
}

func (v *View) showLogs() {
	_, _, _, height := v.logView.GetInnerRect()
	if height <= 0 {
		height = logging.MaxTailLines
	}
	v.logView.SetText(tview.Escape(strings.Join(v.tail.Lines(height), "\n")))
}

func (v *View) setupEventListeners() {
	progressChan := make(chan workout.Progress, 1)
	progressUnregister := v.session.Progress().ListenChan(progressChan)
	go_func_utils.SafeGoGroup(v.logger, &v.wg, "UIView progress listener", func() {
		defer progressUnregister()
		for {
			select {
			case <-v.ctx.Done():
				return
			case p := <-progressChan:
				finished := p.Status == workout.StatusFinished && v.lastStatus != workout.StatusFinished
				v.lastStatus = p.Status
				var workouts []workout.Summary
				if finished {
					workouts = v.controller.RefreshHistory()
				}
				v.app.QueueUpdateDraw(func() {
					v.showProgress(p)
					if finished {
						v.setHistory(workouts)
					}
				})
			}
		}
	})

	if v.tail == nil {
		return
	}
	logChan := make(chan string, 1)
	logUnregister := v.tail.Listen(logChan)
	go_func_utils.SafeGoGroup(v.logger, &v.wg, "UIView log listener", func() {
		defer logUnregister()
		for {
			select {
			case <-v.ctx.Done():
				return
			case <-logChan:
				v.app.QueueUpdateDraw(v.showLogs)
			}
		}
	})
}

// Run starts the UI and blocks until it exits
func (v *View) Run() error {
	// SetRoot must be called before setting focus, otherwise focus may be reset
	v.app.SetRoot(v.mainFlex, true)
	v.app.SetFocus(v.tabWidgets[0])
	if v.tail != nil {
		v.showLogs()
	}
	v.setupEventListeners()
	return v.app.Run()
}

// Stop stops the UI framework
func (v *View) Stop() {
	v.app.Stop()
}

// Shutdown stops the listeners. Call after Run has returned.
func (v *View) Shutdown() {
	v.cancel()
	v.wg.Wait()
}
