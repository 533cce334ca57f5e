// Package life tracks whether the debugger session is still running and
// turns any worker-goroutine panic into a clean, logged shutdown.
//
// Every long-running goroutine in kdebug (stdout reader, stderr reader,
// process waiter, logic dispatcher) is started through Guard.Go so that an
// unhandled panic on any one of them flips the shared life flag, is recorded
// for post-mortem, and the goroutine exits instead of crashing the process.
package life

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// Flag is the process-wide liveness flag. Any goroutine may observe it; it
// is cleared exactly once, by whichever goroutine first sees a terminal
// condition (engine exit, fatal parser error, user quit).
type Flag struct {
	running atomic.Bool
	die     func()
}

// New creates a running Flag. onDie, if non-nil, is invoked the first time
// Die is called (used to wake blocked dispatchers).
func New(onDie func()) *Flag {
	f := &Flag{die: onDie}
	f.running.Store(true)
	return f
}

// IsRunning reports whether the session should keep going.
func (f *Flag) IsRunning() bool {
	return f.running.Load()
}

// Die clears the flag. Safe to call more than once or from multiple
// goroutines; only the first call has any effect.
func (f *Flag) Die() {
	if f.running.CompareAndSwap(true, false) {
		if f.die != nil {
			f.die()
		}
	}
}

// Guard captures fatal errors from worker goroutines so the main goroutine
// can report them together on exit, mirroring a supervisor that converts
// "any thread dies, the process dies" into a diagnosable shutdown.
type Guard struct {
	life *Flag
	log  *slog.Logger

	mu     sync.Mutex
	errors []string
}

// NewGuard creates a Guard bound to life. Fatal errors are logged through
// logger in addition to being retained for Errors().
func NewGuard(life *Flag, logger *slog.Logger) *Guard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guard{life: life, log: logger}
}

// Go starts fn in a new goroutine. A panic in fn is recovered, recorded,
// logged, and propagates to life.Die(); it never crashes the process.
func (g *Guard) Go(name string, fn func()) {
	go func() {
		defer g.recoverAndDie(name)
		fn()
	}()
}

// Run executes fn on the calling goroutine under the same guard, for the
// rare worker that must not be backgrounded (e.g. the top-level REPL loop).
func (g *Guard) Run(name string, fn func()) {
	defer g.recoverAndDie(name)
	fn()
}

func (g *Guard) recoverAndDie(name string) {
	if r := recover(); r != nil {
		msg := fmt.Sprintf("%s: %v\n%s", name, r, debug.Stack())
		g.mu.Lock()
		g.errors = append(g.errors, msg)
		g.mu.Unlock()
		g.log.Error("worker goroutine terminated", "worker", name, "panic", r)
	}
	g.life.Die()
}

// Errors returns every fatal message captured so far, in arrival order.
func (g *Guard) Errors() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.errors))
	copy(out, g.errors)
	return out
}
