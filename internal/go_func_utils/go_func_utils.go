package go_func_utils

import (
	"log"
	"runtime/debug"
	"sync"
)

// SafeGo runs fn on a new goroutine. A panic is written to logger with its
// stack before being re-raised, since the terminal UI owns stdout and would
// otherwise hide it.
func SafeGo(logger *log.Logger, name string, fn func()) {
	go func() {
		defer logPanic(logger, name)
		fn()
	}()
}

// SafeGoGroup is SafeGo for goroutines tracked by wg. wg.Add happens before
// the goroutine starts so a following wg.Wait cannot miss it.
func SafeGoGroup(logger *log.Logger, wg *sync.WaitGroup, name string, fn func()) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer logPanic(logger, name)
		fn()
	}()
}

func logPanic(logger *log.Logger, name string) {
	if r := recover(); r != nil {
		logger.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
		panic(r)
	}
}
