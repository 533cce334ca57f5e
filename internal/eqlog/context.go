package eqlog

import (
	"fmt"
	"strings"
)

// Context is one line of a `Context:` block: the nested trail of
// equation attempts and engine-internal call frames a log entry was
// produced under.
type Context interface {
	fmt.Stringer
	topLevel() bool
}

// GenericContext is a context line the parser does not specifically
// recognize; it is kept verbatim.
type GenericContext struct {
	Line string
}

func (c GenericContext) String() string { return c.Line }
func (c GenericContext) topLevel() bool { return true }

const debugAttemptEquationContextPrefix = "while applying equation at "

// DebugAttemptEquationContext marks a context frame produced while the
// engine was attempting to apply a specific equation.
type DebugAttemptEquationContext struct {
	Location FileLocation
}

func (c DebugAttemptEquationContext) String() string {
	return "Applying equation at: " + c.Location.String()
}
func (c DebugAttemptEquationContext) topLevel() bool { return false }

// ParseContext parses one `(TypeName) remainder` context line.
func ParseContext(line string) (Context, error) {
	if !strings.HasPrefix(line, "(") {
		return nil, fmt.Errorf("eqlog: context line %q does not start with '('", line)
	}
	close := strings.IndexByte(line, ')')
	if close < 0 {
		return nil, fmt.Errorf("eqlog: context line %q has no closing ')'", line)
	}
	typeName := line[1:close]
	if close+2 > len(line) {
		return nil, fmt.Errorf("eqlog: context line %q has no content after type", line)
	}
	remainder := line[close+2:]

	switch typeName {
	case "DebugAttemptEquation":
		if !strings.HasPrefix(remainder, debugAttemptEquationContextPrefix) {
			return nil, fmt.Errorf("eqlog: context line %q missing expected prefix", line)
		}
		loc, err := ParseFileLocation(remainder[len(debugAttemptEquationContextPrefix):])
		if err != nil {
			return nil, err
		}
		return DebugAttemptEquationContext{Location: loc}, nil
	default:
		return GenericContext{Line: line}, nil
	}
}

// isTopLevel reports whether every frame in a context is an ordinary
// call frame, i.e. none of them marks an equation-attempt boundary.
// An entry with such a context ends the run of inner entries that
// extractInnerEntries groups under an enclosing entry.
func isTopLevel(ctx []Context) bool {
	for _, c := range ctx {
		if !c.topLevel() {
			return false
		}
	}
	return true
}
