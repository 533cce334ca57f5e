package ui

import (
	"github.com/virgil-serbanuta/kdebug/internal/prooftree"
)

// Focus names which of the three synchronized panes currently has the
// keyboard's attention: the tree pane, the selected branch's configuration
// chain, and the pretty-printed configuration of the selected node.
type Focus int

const (
	FocusTree Focus = iota
	FocusChain
	FocusKonfig
)

func (f Focus) String() string {
	switch f {
	case FocusTree:
		return "Tree"
	case FocusChain:
		return "Chain"
	case FocusKonfig:
		return "Konfig"
	default:
		return "Unknown"
	}
}

// pageSize is how many rows PgUp/PgDn move the tree-pane selection by.
const pageSize = 10

// Item is one row of the flattened, depth-first, collapse-aware view of
// the proof tree that the tree pane renders and that Up/Down/PgUp/PgDn
// move through.
type Item struct {
	ID    int
	Depth int
}

// Navigator holds the UI-side state the proof tree itself knows nothing
// about: which node is selected, which branch points are collapsed, and
// which pane has focus. It implements prooftree.ChangeListener so it can
// be registered directly on the tree's root and re-derive its visible
// item list whenever the tree mutates.
type Navigator struct {
	tree      *prooftree.Tree
	selected  int
	collapsed map[int]bool
	focus     Focus
	quit      bool
}

// NewNavigator starts a Navigator selecting the tree's root, nothing
// collapsed, focus on the tree pane.
func NewNavigator(tree *prooftree.Tree) *Navigator {
	return &Navigator{
		tree:      tree,
		selected:  tree.ID(),
		collapsed: make(map[int]bool),
		focus:     FocusTree,
	}
}

// OnChange satisfies prooftree.ChangeListener; the navigator has no cached
// state that depends on tree shape beyond what Visible recomputes on
// demand, so there's nothing to invalidate here.
func (n *Navigator) OnChange() {}

// Selected returns the currently selected node id.
func (n *Navigator) Selected() int { return n.selected }

// Focus returns the pane currently marked as focused. Only Tab and
// Shift-Tab change it; it does not change what Handle does with other keys.
func (n *Navigator) Focus() Focus { return n.focus }

// Quit reports whether F10 has been pressed.
func (n *Navigator) Quit() bool { return n.quit }

// IsCollapsed reports whether id's branch children are hidden from the
// flattened view.
func (n *Navigator) IsCollapsed(id int) bool { return n.collapsed[id] }

// Visible returns the current depth-first, collapse-aware flattening of
// the proof tree.
func (n *Navigator) Visible() []Item {
	var items []Item
	flatten(n.tree, 0, n.collapsed, &items)
	return items
}

func flatten(t *prooftree.Tree, depth int, collapsed map[int]bool, out *[]Item) {
	nodes := t.Nodes()
	for _, node := range nodes {
		*out = append(*out, Item{ID: node.ID(), Depth: depth})
	}
	tail := nodes[len(nodes)-1]
	if collapsed[tail.ID()] {
		return
	}
	for _, child := range t.Children() {
		flatten(child, depth+1, collapsed, out)
	}
}

// Chain returns the ids from the tree's root down to the selected node,
// the path the configuration-chain pane renders.
func (n *Navigator) Chain() []int {
	var chain []int
	t := n.tree
	for {
		for _, node := range t.Nodes() {
			chain = append(chain, node.ID())
			if node.ID() == n.selected {
				return chain
			}
		}
		var next *prooftree.Tree
		for _, child := range t.Children() {
			if child.Contains(n.selected) {
				next = child
				break
			}
		}
		if next == nil {
			return chain
		}
		t = next
	}
}

// Handle dispatches one key event, mutating selection, collapse state,
// focus, or the quit flag as appropriate. Keys are not routed per pane:
// movement and collapse keys always act on the tree-pane selection,
// whichever pane has focus. Unlisted keys are ignored.
func (n *Navigator) Handle(k Key) {
	switch k {
	case KeyUp:
		n.move(-1)
	case KeyDown:
		n.move(1)
	case KeyPgUp:
		n.move(-pageSize)
	case KeyPgDn:
		n.move(pageSize)
	case KeyHome:
		n.moveTo(0)
	case KeyEnd:
		items := n.Visible()
		n.moveTo(len(items) - 1)
	case KeyLeft:
		n.collapseSelected(true)
	case KeyRight:
		n.collapseSelected(false)
	case KeySpace:
		n.collapsed[n.selected] = !n.collapsed[n.selected]
	case KeyTab:
		n.focus = (n.focus + 1) % 3
	case KeyShiftTab:
		n.focus = (n.focus + 2) % 3
	case KeyF9:
		// Repaint is the caller's responsibility; nothing to mutate here.
	case KeyF10:
		n.quit = true
	}
}

func (n *Navigator) move(delta int) {
	items := n.Visible()
	idx := n.indexOf(items)
	if idx < 0 {
		return
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(items) {
		idx = len(items) - 1
	}
	n.selected = items[idx].ID
}

func (n *Navigator) moveTo(idx int) {
	items := n.Visible()
	if len(items) == 0 {
		return
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(items) {
		idx = len(items) - 1
	}
	n.selected = items[idx].ID
}

func (n *Navigator) indexOf(items []Item) int {
	for i, it := range items {
		if it.ID == n.selected {
			return i
		}
	}
	return -1
}

func (n *Navigator) collapseSelected(collapse bool) {
	n.collapsed[n.selected] = collapse
}
