package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/virgil-serbanuta/kdebug/internal/prooftree"
)

// clearScreen and cursorHome are the two ANSI sequences Render needs;
// anything past that (colors, box drawing, scroll regions) is the pane
// layout this module explicitly doesn't own.
const (
	clearScreen = "\x1b[2J"
	cursorHome  = "\x1b[H"
)

// Render writes a plain-text snapshot of the three panes to w: the
// collapse-aware tree, the selected branch's id chain, and the selected
// node's configuration body. It is deliberately not a full-screen curses
// replacement - scrolling, column layout and coloring are out of scope -
// but it renders enough for the key-dispatch in Navigator to be observed
// working end to end.
func Render(w io.Writer, tree *prooftree.Tree, nav *Navigator) {
	fmt.Fprint(w, clearScreen, cursorHome)

	fmt.Fprintf(w, "Proof tree%s\n", focusMarker(nav, FocusTree))
	for _, item := range nav.Visible() {
		marker := "  "
		if item.ID == nav.Selected() {
			marker = "> "
		}
		node, ok := tree.FindNode(item.ID)
		label := fmt.Sprintf("%d", item.ID)
		if ok {
			label = node.String()
		}
		fmt.Fprintf(w, "%s%s%s", marker, strings.Repeat("  ", item.Depth), label)
		if nav.IsCollapsed(item.ID) {
			fmt.Fprint(w, " [+]")
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\nConfiguration chain%s\n", focusMarker(nav, FocusChain))
	chain := nav.Chain()
	for i, id := range chain {
		if i > 0 {
			fmt.Fprint(w, " -> ")
		}
		fmt.Fprintf(w, "%d", id)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\nConfiguration at %d%s\n", nav.Selected(), focusMarker(nav, FocusKonfig))
	node, ok := tree.FindNode(nav.Selected())
	if !ok {
		fmt.Fprintln(w, "(node not found)")
		return
	}
	lines, has := node.Konfig()
	if !has {
		fmt.Fprintln(w, "(not fetched yet)")
		return
	}
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}

func focusMarker(nav *Navigator, f Focus) string {
	if nav.Focus() == f {
		return " *"
	}
	return ""
}
