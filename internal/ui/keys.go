// Package ui implements the debugger's key-dispatch and tree-navigation
// state: which node is selected, which subtrees are collapsed, and which
// of the three panes has focus. Pane layout, scrolling, and character-cell
// rendering are treated as an external concern (curses was the original's
// choice); this package only decides what a keystroke means and renders a
// plain text dump, leaving a fancier terminal front end free to replace
// Render without touching the navigation logic.
package ui

import (
	"bufio"
	"fmt"
	"io"
)

// Key is one input event recognized by ReadKey.
type Key int

const (
	KeyUnknown Key = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyPgUp
	KeyPgDn
	KeyHome
	KeyEnd
	KeySpace
	KeyTab
	KeyShiftTab
	KeyF9
	KeyF10
)

func (k Key) String() string {
	switch k {
	case KeyUp:
		return "Up"
	case KeyDown:
		return "Down"
	case KeyLeft:
		return "Left"
	case KeyRight:
		return "Right"
	case KeyPgUp:
		return "PgUp"
	case KeyPgDn:
		return "PgDn"
	case KeyHome:
		return "Home"
	case KeyEnd:
		return "End"
	case KeySpace:
		return "Space"
	case KeyTab:
		return "Tab"
	case KeyShiftTab:
		return "ShiftTab"
	case KeyF9:
		return "F9"
	case KeyF10:
		return "F10"
	default:
		return "Unknown"
	}
}

// csiFinal maps a CSI sequence's final letter (ESC [ ... <letter>) to a Key,
// for the sequences that don't carry a numeric parameter.
var csiFinal = map[byte]Key{
	'A': KeyUp,
	'B': KeyDown,
	'C': KeyRight,
	'D': KeyLeft,
	'H': KeyHome,
	'F': KeyEnd,
	'Z': KeyShiftTab,
}

// csiNumeric maps a CSI sequence's numeric parameter (ESC [ <digits> ~) to
// a Key, for the sequences that do.
var csiNumeric = map[string]Key{
	"5":  KeyPgUp,
	"6":  KeyPgDn,
	"1":  KeyHome,
	"4":  KeyEnd,
	"20": KeyF9,
	"21": KeyF10,
}

// ReadKey reads one key event from r. It understands plain Space and Tab,
// and the subset of ANSI CSI escape sequences (ESC [ ...) that xterm-family
// terminals emit for arrows, PgUp/PgDn, Home/End, Shift-Tab, and the F9/F10
// function keys. r is expected to already be delivering unbuffered
// keystrokes (a terminal in cbreak mode, or a canned sequence in a test);
// putting the terminal itself into that mode is the caller's job.
func ReadKey(r *bufio.Reader) (Key, error) {
	b, err := r.ReadByte()
	if err != nil {
		return KeyUnknown, err
	}

	switch b {
	case ' ':
		return KeySpace, nil
	case '\t':
		return KeyTab, nil
	case 0x1b: // ESC
		return readEscape(r)
	default:
		return KeyUnknown, nil
	}
}

func readEscape(r *bufio.Reader) (Key, error) {
	b, err := r.ReadByte()
	if err != nil {
		// A lone ESC with nothing following is not one of our sequences.
		if err == io.EOF {
			return KeyUnknown, nil
		}
		return KeyUnknown, err
	}
	if b != '[' {
		return KeyUnknown, nil
	}

	var digits []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return KeyUnknown, err
		}
		if b >= '0' && b <= '9' {
			digits = append(digits, b)
			continue
		}
		if b == '~' {
			key, ok := csiNumeric[string(digits)]
			if !ok {
				return KeyUnknown, nil
			}
			return key, nil
		}
		if len(digits) == 0 {
			if key, ok := csiFinal[b]; ok {
				return key, nil
			}
			return KeyUnknown, nil
		}
		return KeyUnknown, fmt.Errorf("ui: unrecognized escape sequence ESC[%s%c", digits, b)
	}
}
