package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/virgil-serbanuta/kdebug/internal/bus"
	"github.com/virgil-serbanuta/kdebug/internal/debuglog"
	"github.com/virgil-serbanuta/kdebug/internal/life"
	"github.com/virgil-serbanuta/kdebug/internal/prooftree"
	"github.com/virgil-serbanuta/kdebug/internal/uigraph"
)

const stdoutReadBufferSize = 4096

// shutdownGrace is how long Shutdown waits for the engine to exit on its
// own after sending "exit\n" before it sends a kill signal.
const shutdownGrace = 2 * time.Second

// Options configures one Engine.
type Options struct {
	// Argv is the engine subprocess's argv, argv[0] the executable.
	Argv []string
	// MaxWidth bounds the konfig normalizer's rendered line width.
	MaxWidth int
	// DebugLogPath, if non-empty, is used instead of a generated path
	// inside the session's work directory.
	DebugLogPath string
	Logger       *slog.Logger
}

// Engine owns the engine subprocess, the I/O pump goroutines feeding it
// into a Session, and the temp directory holding the debug log and graph
// SVG for one debugging session.
type Engine struct {
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	workDir  string
	graphSVG string

	session *Session
	dlog    *debuglog.Writer
	dlogF   *os.File

	dispatcher *bus.Dispatcher
	life       *life.Flag
	guard      *life.Guard
	watcher    *svgWatcher

	exited chan struct{}

	exitCode int

	log *slog.Logger
}

// Start spawns the engine process and wires it to a fresh Session. The
// returned Engine owns the subprocess until Shutdown is called.
func Start(opts Options) (*Engine, error) {
	if len(opts.Argv) == 0 {
		return nil, errors.New("engine: argv must not be empty")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxWidth := opts.MaxWidth
	if maxWidth <= 0 {
		maxWidth = 80
	}

	workDir, err := newWorkDir(opts.Argv)
	if err != nil {
		return nil, err
	}

	debugLogPath := opts.DebugLogPath
	if debugLogPath == "" {
		debugLogPath = filepath.Join(workDir, "debug.log")
	}
	dlogF, err := os.Create(debugLogPath)
	if err != nil {
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("engine: creating debug log: %w", err)
	}
	dlog, err := debuglog.NewWriter(dlogF)
	if err != nil {
		dlogF.Close()
		os.RemoveAll(workDir)
		return nil, err
	}

	cmd := exec.Command(opts.Argv[0], opts.Argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		dlogF.Close()
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("engine: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		dlogF.Close()
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("engine: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		dlogF.Close()
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("engine: stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		dlogF.Close()
		os.RemoveAll(workDir)
		return nil, fmt.Errorf("engine: starting process: %w", err)
	}

	dispatcher := bus.New()
	lifeFlag := life.New(dispatcher.Stop)
	guard := life.NewGuard(lifeFlag, logger)

	e := &Engine{
		cmd:        cmd,
		stdin:      stdin,
		workDir:    workDir,
		graphSVG:   filepath.Join(workDir, "graph") + ".svg",
		dlog:       dlog,
		dlogF:      dlogF,
		dispatcher: dispatcher,
		life:       lifeFlag,
		guard:      guard,
		exited:     make(chan struct{}),
		log:        logger,
	}

	send := func(cmd string) {
		if _, err := io.WriteString(e.stdin, cmd); err != nil {
			// Broken pipe on shutdown is expected and swallowed here;
			// any other failure is worth knowing about but not fatal.
			if !errors.Is(err, os.ErrClosed) && !errors.Is(err, syscall.EPIPE) {
				e.log.Warn("write to engine stdin failed", "error", err)
			}
			return
		}
		if err := e.dlog.CommandSent(cmd); err != nil {
			e.log.Warn("failed to persist command", "error", err)
		}
	}

	graphPath := filepath.Join(workDir, "graph")
	session := newSession(send, dispatcher.Post, graphPath, maxWidth, dlog, logger)
	e.session = session

	watcher, err := newSVGWatcher(e.graphSVG, dispatcher.Post, session.SetGraph, logger)
	if err != nil {
		e.log.Warn("svg watcher unavailable, graph view will not live-update", "error", err)
	} else {
		e.watcher = watcher
		guard.Go("svg-watcher", watcher.run)
	}

	guard.Go("dispatcher", dispatcher.Run)
	guard.Go("stdout-reader", func() { e.pumpStdout(stdout) })
	guard.Go("stderr-reader", func() { e.pumpStderr(stderr) })
	guard.Go("process-watcher", e.watchProcess)

	return e, nil
}

// Tree and Graph expose the wired Session state to the UI layer.
func (e *Engine) Tree() *prooftree.Tree { return e.session.Tree }
func (e *Engine) Graph() *uigraph.UIGraph { return e.session.Graph }

// Post schedules action onto the logic goroutine.
func (e *Engine) Post(action func()) { e.dispatcher.Post(action) }

// RequestKonfig asks the scheduler for a node's configuration, dispatched
// onto the logic goroutine.
func (e *Engine) RequestKonfig(nodeID int) {
	e.dispatcher.Post(func() { e.session.RequestKonfig(nodeID) })
}

// IsRunning reports whether the engine process and its pumps are still
// considered alive.
func (e *Engine) IsRunning() bool { return e.life.IsRunning() }

// Errors returns every fatal message captured by the guard so far.
func (e *Engine) Errors() []string { return e.guard.Errors() }

// DebugLogPath returns the path of this session's persisted debug log.
func (e *Engine) DebugLogPath() string { return e.dlogF.Name() }

// ProcessExitCode returns the engine subprocess's exit code once it has
// exited; 0 before then or on a clean exit, matching the CLI's exit-code
// contract of "0 on clean quit, non-zero if the engine exits non-zero".
func (e *Engine) ProcessExitCode() int { return e.exitCode }

func (e *Engine) pumpStdout(r io.Reader) {
	buf := make([]byte, stdoutReadBufferSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			e.dispatcher.Post(func() { e.session.FeedStdout(chunk) })
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				e.log.Warn("stdout read failed", "error", err)
			}
			return
		}
	}
}

func (e *Engine) pumpStderr(r io.Reader) {
	buf := make([]byte, stdoutReadBufferSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := append([]byte(nil), buf[:n]...)
			e.dispatcher.Post(func() { e.session.FeedStderr(chunk) })
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				e.log.Warn("stderr read failed", "error", err)
			}
			return
		}
	}
}

// watchProcess blocks until the engine process exits, then kills the
// session's liveness flag regardless of whether the exit was clean.
func (e *Engine) watchProcess() {
	defer close(e.exited)
	err := e.cmd.Wait()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			e.exitCode = exitErr.ExitCode()
			e.log.Warn("engine process exited non-zero", "code", exitErr.ExitCode())
		} else {
			e.log.Warn("engine process wait failed", "error", err)
		}
		if dlogErr := e.dlog.FatalError(fmt.Sprintf("engine process exited: %v", err)); dlogErr != nil {
			e.log.Warn("failed to persist fatal error", "error", dlogErr)
		}
	} else {
		e.log.Info("engine process exited cleanly")
	}
	e.life.Die()
}

// Shutdown asks the engine to exit, waits briefly for the process to stop
// on its own (killing it if it doesn't), then stops the watchers and the
// dispatcher and removes the graph SVG file. The work directory is removed
// too unless it holds the debug log, which is the default: per §A.6 the
// debug log is the one piece of persisted state this tool keeps, for
// post-mortem inspection after the process has already exited, so that
// directory stays on disk. Safe to call once the caller has decided the
// session is over; watchProcess's own call to cmd.Wait() is the only one
// made on cmd, so Shutdown never races it.
func (e *Engine) Shutdown() {
	e.dispatcher.Post(e.session.Sched.Exit)

	select {
	case <-e.exited:
	case <-time.After(shutdownGrace):
		if e.cmd.Process != nil {
			_ = e.cmd.Process.Kill()
		}
		<-e.exited
	}

	if e.watcher != nil {
		e.watcher.Close()
	}
	e.dispatcher.Stop()
	e.dlogF.Close()
	_ = os.Remove(e.graphSVG)
	if filepath.Dir(e.dlogF.Name()) != e.workDir {
		_ = os.RemoveAll(e.workDir)
	}
}
