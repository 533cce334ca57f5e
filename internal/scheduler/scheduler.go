// Package scheduler drives the engine one command per prompt, growing the
// proof tree depth-first and fetching configurations on demand.
package scheduler

import (
	"fmt"

	"github.com/virgil-serbanuta/kdebug/internal/prooftree"
	"github.com/virgil-serbanuta/kdebug/internal/protocol"
)

// Preparer is implemented by both the stdout parser and the stderr
// recognizer: each must be reset to a known substate before the scheduler
// sends a command whose response it is about to interpret.
type Preparer interface {
	PrepareForStep()
	PrepareForKonfig()
}

// Scheduler owns the three command queues and issues exactly one command
// per engine prompt. All of its methods are event handlers meant to run on
// the logic goroutine only.
type Scheduler struct {
	tree       *prooftree.Tree
	send       func(string)
	stdoutPrep Preparer
	stderrPrep Preparer
	endState   *protocol.EndStateBox
	graphPath  string

	lastConfigNumber int
	nextNodeState    prooftree.State
	nodesSeen        map[int]struct{}
	unexpandedNodes  []int
	unknownKonfigs   []int
	pendingCommands  []string

	rootKonfigPending bool
	idle              bool
}

// New builds a Scheduler rooted at tree, writing commands via send and
// resetting stdoutPrep/stderrPrep before each one. graphPath is the
// extensionless path passed to every `graph expanded <path> svg` command.
func New(tree *prooftree.Tree, send func(string), stdoutPrep, stderrPrep Preparer, endState *protocol.EndStateBox, graphPath string) *Scheduler {
	return &Scheduler{
		tree:              tree,
		send:              send,
		stdoutPrep:        stdoutPrep,
		stderrPrep:        stderrPrep,
		endState:          endState,
		graphPath:         graphPath,
		lastConfigNumber:  tree.ID(),
		nextNodeState:     prooftree.StateNormal,
		nodesSeen:         map[int]struct{}{},
		rootKonfigPending: true,
		idle:              true,
	}
}

// Idle reports whether the scheduler has no outstanding command and is
// waiting for UI-driven work (PROMPT_IDLE in §A.4.4's terms).
func (s *Scheduler) Idle() bool { return s.idle }

// OnAtPrompt handles the engine reporting it is ready for a command while
// positioned at the configuration with the given id.
func (s *Scheduler) OnAtPrompt(id int) {
	if _, seen := s.nodesSeen[id]; !seen {
		if id != s.tree.ID() {
			s.tree.AddChild(s.lastConfigNumber, id)
		}
		s.nodesSeen[id] = struct{}{}
		s.unexpandedNodes = append(s.unexpandedNodes, id)
	}
	s.lastConfigNumber = id

	if len(s.pendingCommands) == 0 {
		switch {
		case s.rootKonfigPending && id == s.tree.ID():
			s.rootKonfigPending = false
			s.pendingCommands = append(s.pendingCommands, "konfig\n")
		default:
			if cmds, ok := s.getKonfigIfNeeded(); ok {
				s.pendingCommands = append(s.pendingCommands, cmds...)
			} else if cmds, ok := s.expandNodeIfNeeded(); ok {
				s.pendingCommands = append(s.pendingCommands, cmds...)
			}
		}
	}

	if len(s.pendingCommands) > 0 {
		cmd := s.pendingCommands[0]
		s.pendingCommands = s.pendingCommands[1:]
		s.idle = false
		s.prepareFor(cmd)
		s.send(cmd)
	} else {
		s.idle = true
	}

	if s.nextNodeState != prooftree.StateNormal {
		s.tree.SetNodeState(id, s.nextNodeState)
		s.nextNodeState = prooftree.StateNormal
	}
}

// OnBranches handles the engine announcing that the node last selected has
// several linear successors.
func (s *Scheduler) OnBranches(stepCount int, children []int) {
	parent := s.lastConfigNumber
	s.tree.AddChildren(parent, children)
	for _, c := range children {
		s.nodesSeen[c] = struct{}{}
		s.unexpandedNodes = append(s.unexpandedNodes, c)
		s.unknownKonfigs = append(s.unknownKonfigs, c)
	}
	s.unknownKonfigs = append(s.unknownKonfigs, parent)
}

// OnProofEnd samples the current EndState and schedules it to be applied
// to the node that appears at the very next prompt.
func (s *Scheduler) OnProofEnd(_ int) {
	switch s.endState.Get() {
	case protocol.EndStuck:
		s.nextNodeState = prooftree.StateStuck
	case protocol.EndFailedEnd:
		s.nextNodeState = prooftree.StateProofEndFailed
	case protocol.EndError:
		s.nextNodeState = prooftree.StateError
	default:
		s.nextNodeState = prooftree.StateProofEnd
	}
}

// OnKonfig handles the engine delivering the configuration body for a node
// whose konfig command the scheduler issued.
func (s *Scheduler) OnKonfig(nodeID int, lines []string) {
	s.tree.SetKonfig(nodeID, lines)
}

// RequestKonfig is the UI-driven entry point for asking the engine for a
// node's configuration on demand. If the scheduler is idle it resumes
// immediately; otherwise the request is served once the current work
// drains.
func (s *Scheduler) RequestKonfig(nodeID int) {
	s.unknownKonfigs = append(s.unknownKonfigs, nodeID)
	if s.idle {
		s.OnAtPrompt(s.lastConfigNumber)
	}
}

// Exit sends the engine its shutdown command. Broken-pipe failures are the
// caller's (the engine package's) concern to swallow, per §A.7.
func (s *Scheduler) Exit() {
	s.send("exit\n")
}

func (s *Scheduler) getKonfigIfNeeded() ([]string, bool) {
	for len(s.unknownKonfigs) > 0 {
		id := s.unknownKonfigs[0]
		s.unknownKonfigs = s.unknownKonfigs[1:]
		if node, ok := s.tree.FindNode(id); ok {
			if _, has := node.Konfig(); has {
				continue
			}
		}
		return []string{fmt.Sprintf("select %d\n", id), "konfig\n"}, true
	}
	return nil, false
}

func (s *Scheduler) expandNodeIfNeeded() ([]string, bool) {
	if len(s.unexpandedNodes) == 0 {
		return nil, false
	}
	id := s.unexpandedNodes[0]
	s.unexpandedNodes = s.unexpandedNodes[1:]
	return []string{
		fmt.Sprintf("select %d\n", id),
		"step\n",
		fmt.Sprintf("graph expanded %s svg\n", s.graphPath),
	}, true
}

func (s *Scheduler) prepareFor(cmd string) {
	switch cmd {
	case "step\n":
		s.stdoutPrep.PrepareForStep()
		s.stderrPrep.PrepareForStep()
	case "konfig\n":
		s.stdoutPrep.PrepareForKonfig()
		s.stderrPrep.PrepareForKonfig()
	}
}
