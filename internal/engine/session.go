// Package engine spawns the external proof engine as a subprocess, wires
// its stdout/stderr streams through the matcher/protocol/scheduler layer
// onto the logic goroutine, and persists every byte that crosses the wire.
package engine

import (
	"log/slog"

	"github.com/virgil-serbanuta/kdebug/internal/debuglog"
	"github.com/virgil-serbanuta/kdebug/internal/konfig"
	"github.com/virgil-serbanuta/kdebug/internal/prooftree"
	"github.com/virgil-serbanuta/kdebug/internal/protocol"
	"github.com/virgil-serbanuta/kdebug/internal/scheduler"
	"github.com/virgil-serbanuta/kdebug/internal/uigraph"
)

// Session holds every piece of pure wiring between the proof tree and the
// engine's wire dialect: the tree itself, the scheduler that drives it, the
// UI graph it feeds, and the byte-stream parsers that turn engine output
// into scheduler events. It has no opinion about where its bytes come from
// or where its commands go - those are the send and post functions passed
// to newSession - so it can be driven synchronously in a test with no
// subprocess and no extra goroutine.
type Session struct {
	Tree     *prooftree.Tree
	Graph    *uigraph.UIGraph
	Sched    *scheduler.Scheduler
	EndState *protocol.EndStateBox

	stdoutParser *protocol.StdoutParser
	stderrRecog  *protocol.StderrRecognizer

	dlog *debuglog.Writer
	log  *slog.Logger
}

// newSession wires one debugging session. Root id 0 matches the engine's
// own convention: the proof tree's root is always node 0, decided before
// any prompt is observed, not derived from one.
//
// send writes a command's bytes to the engine's stdin (ordinarily also
// recording it via dlog.CommandSent); post schedules a closure onto the
// logic goroutine (ordinarily Dispatcher.Post). graphPath is the
// extensionless path the scheduler passes to `graph expanded <path> svg`;
// the actual file the engine writes is graphPath + ".svg". maxWidth bounds
// the konfig normalizer's line width.
func newSession(send func(string), post func(func()), graphPath string, maxWidth int, dlog *debuglog.Writer, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}

	tree := prooftree.New(0)
	graph := uigraph.New()
	endState := &protocol.EndStateBox{}

	stdoutParser := protocol.NewStdoutParser(post)
	stderrRecog := protocol.NewStderrRecognizer(endState, post)

	stdoutParser.Normalize = func(lines []string) []string {
		return konfig.Render(konfig.Split(konfig.Normalize(lines), maxWidth))
	}

	sched := scheduler.New(tree, send, stdoutParser, stderrRecog, endState, graphPath)

	stdoutParser.OnAtPrompt = sched.OnAtPrompt
	stdoutParser.OnBranches = sched.OnBranches
	stdoutParser.OnProofEnd = sched.OnProofEnd
	stdoutParser.OnKonfig = sched.OnKonfig

	s := &Session{
		Tree:         tree,
		Graph:        graph,
		Sched:        sched,
		EndState:     endState,
		stdoutParser: stdoutParser,
		stderrRecog:  stderrRecog,
		dlog:         dlog,
		log:          logger,
	}
	return s
}

// FeedStdout hands a chunk read from the engine's stdout to the session's
// parser, recording it to the debug log first.
func (s *Session) FeedStdout(data []byte) {
	if s.dlog != nil {
		if err := s.dlog.BytesReceived(debuglog.StreamStdout, data); err != nil {
			s.log.Warn("failed to persist stdout chunk", "error", err)
		}
	}
	s.stdoutParser.FeedMany(data)
}

// FeedStderr hands a chunk read from the engine's stderr to the session's
// recognizer, recording it to the debug log first.
func (s *Session) FeedStderr(data []byte) {
	if s.dlog != nil {
		if err := s.dlog.BytesReceived(debuglog.StreamStderr, data); err != nil {
			s.log.Warn("failed to persist stderr chunk", "error", err)
		}
	}
	for _, b := range data {
		s.stderrRecog.Process(b)
	}
}

// RequestKonfig is the UI-driven entry point for asking the engine for a
// node's configuration, run on the logic goroutine.
func (s *Session) RequestKonfig(nodeID int) {
	s.Sched.RequestKonfig(nodeID)
}

// SetGraph installs a freshly parsed SVG graph, run on the logic goroutine.
func (s *Session) SetGraph(g uigraph.Graph) {
	s.Graph.SetGraph(g)
}
