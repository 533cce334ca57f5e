package prooftree

import (
	"sync"

	"github.com/virgil-serbanuta/kdebug/internal/invariant"
)

// ChangeListener is notified after any mutation to a Tree or its
// descendants. Implementations must not mutate the tree back; the proof
// tree never refers to the UI, it only fans out notifications.
type ChangeListener interface {
	OnChange()
}

// ChangeListenerFunc adapts a plain func to ChangeListener.
type ChangeListenerFunc func()

func (f ChangeListenerFunc) OnChange() { f() }

// Tree is one segment: a maximal linear run of Nodes, plus the ordered
// children it branches into once the engine announces branching. The root
// Tree's first node id is the engine's startup id (0 by convention).
//
// A Tree instance is never destroyed before process exit; segments only
// grow. Every id appearing anywhere in a subtree is recorded in that
// subtree's local id set, which keeps addChild/addChildren/findNode routing
// at O(depth) instead of a full-tree scan.
type Tree struct {
	mu        sync.Mutex
	nodes     []*Node
	children  []*Tree
	ids       map[int]struct{}
	listeners []ChangeListener
}

// New creates the root segment starting at rootID.
func New(rootID int) *Tree {
	return &Tree{
		nodes: []*Node{newNode(rootID)},
		ids:   map[int]struct{}{rootID: {}},
	}
}

// ID returns this segment's id, i.e. the id of its first node.
func (t *Tree) ID() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nodes[0].id
}

// StartNode returns the first node of the segment.
func (t *Tree) StartNode() *Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nodes[0]
}

// EndNode returns the last (tail) node of the segment.
func (t *Tree) EndNode() *Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nodes[len(t.nodes)-1]
}

// Children returns the segment's branch children, in announcement order.
func (t *Tree) Children() []*Tree {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Tree(nil), t.children...)
}

// Nodes returns the segment's linear run of Nodes in order, head to tail.
func (t *Tree) Nodes() []*Node {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Node(nil), t.nodes...)
}

// AddChangeListener registers l to be notified after every mutation
// anywhere in this subtree.
func (t *Tree) AddChangeListener(l ChangeListener) {
	t.mu.Lock()
	t.listeners = append(t.listeners, l)
	t.mu.Unlock()
}

// AddChild appends child as the new tail of the segment containing parent,
// or routes into the unique branch child that contains parent. It is a
// fatal invariant violation for parent to be unknown, or for a non-leaf
// segment to receive a linear addChild instead of branching via
// AddChildren.
func (t *Tree) AddChild(parent, child int) {
	t.mu.Lock()
	owner := t.locate(parent)
	invariant.Invariant(owner != nil, "addChild: parent=%d child=%d not found in tree", parent, child)
	if len(owner.children) != 0 {
		invariant.Unreachable("addChild: parent=%d is a branch point, use AddChildren", parent)
	}
	invariant.Invariant(owner.nodes[len(owner.nodes)-1].id == parent,
		"addChild: parent=%d is not the tail of its segment", parent)
	owner.nodes = append(owner.nodes, newNode(child))
	t.recordID(parent, child)
	t.mu.Unlock()
	t.notify()
}

// AddChildren attaches n fresh single-node branch subtrees under parent. It
// rejects a second branching at the same point: the engine announces
// branching exactly once per branch point.
func (t *Tree) AddChildren(parent int, children []int) {
	t.mu.Lock()
	owner := t.locate(parent)
	invariant.Invariant(owner != nil, "addChildren: parent=%d not found in tree", parent)
	invariant.Invariant(len(owner.children) == 0, "addChildren: parent=%d already branched", parent)
	invariant.Invariant(owner.nodes[len(owner.nodes)-1].id == parent,
		"addChildren: parent=%d is not the tail of its segment", parent)

	for _, child := range children {
		t.recordID(parent, child)
		owner.children = append(owner.children, &Tree{
			nodes: []*Node{newNode(child)},
			ids:   map[int]struct{}{child: {}},
		})
	}
	t.mu.Unlock()
	t.notify()
}

// SetNodeState sets the terminal classification of the node with the given
// id, wherever it lives in the subtree.
func (t *Tree) SetNodeState(id int, state State) {
	t.mu.Lock()
	node := t.findNodeLocked(id)
	invariant.Invariant(node != nil, "setNodeState: id=%d not found in tree", id)
	node.setState(state)
	t.mu.Unlock()
	t.notify()
}

// SetKonfig attaches lines as the configuration body of the node with the
// given id.
func (t *Tree) SetKonfig(id int, lines []string) {
	t.mu.Lock()
	node := t.findNodeLocked(id)
	invariant.Invariant(node != nil, "setKonfig: id=%d not found in tree", id)
	node.setKonfig(lines)
	t.mu.Unlock()
	t.notify()
}

// FindNode locates the Node with the given id anywhere in the subtree.
func (t *Tree) FindNode(id int) (*Node, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	node := t.findNodeLocked(id)
	return node, node != nil
}

// FindTree locates the segment whose id set contains id.
func (t *Tree) FindTree(id int) (*Tree, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	owner := t.locate(id)
	return owner, owner != nil
}

// Contains reports whether id belongs to this subtree.
func (t *Tree) Contains(id int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.ids[id]
	return ok
}

// locate returns the segment owning id, assuming the caller already holds
// t.mu. Descent is O(depth): at most one child subtree can contain id, per
// the disjoint id-set invariant.
func (t *Tree) locate(id int) *Tree {
	if _, ok := t.ids[id]; !ok {
		return nil
	}
	for _, c := range t.children {
		if _, ok := c.ids[id]; ok {
			return c.locate(id)
		}
	}
	return t
}

// recordID adds id to the id set of every segment on the path from t down
// to the segment owning parent, so each of them keeps recording every id
// in its subtree. The caller holds t.mu.
func (t *Tree) recordID(parent, id int) {
	t.ids[id] = struct{}{}
	for _, c := range t.children {
		if _, ok := c.ids[parent]; ok {
			c.recordID(parent, id)
			return
		}
	}
}

func (t *Tree) findNodeLocked(id int) *Node {
	owner := t.locate(id)
	if owner == nil {
		return nil
	}
	for _, n := range owner.nodes {
		if n.id == id {
			return n
		}
	}
	return nil
}

// notify fans the change out to the listeners registered on t, the tree
// the mutating call was made on. Listeners registered on a descendant
// segment are not notified. Since listeners are typically registered only
// on the root, and mutations are routed through the root, they hear every
// descendant's mutation.
func (t *Tree) notify() {
	t.mu.Lock()
	listeners := append([]ChangeListener(nil), t.listeners...)
	t.mu.Unlock()
	for _, l := range listeners {
		l.OnChange()
	}
}
