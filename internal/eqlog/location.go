// Package eqlog implements the offline two-phase parser for the
// engine's equation-application debug log: a lexical pass that turns
// the log's text records into a flat Entry sequence, and a structural
// pass that regroups that sequence by nesting context into an
// Organized tree an operator can actually read.
package eqlog

import (
	"fmt"
	"strconv"
	"strings"
)

// FileLocation is a `file:line:col` or `file:line:col-line:col` source
// span, as the engine prints it in a `while applying equation at ...`
// context line.
type FileLocation struct {
	File       string
	StartLine  int
	StartCol   int
	EndLine    int // -1 when the location is a single point, not a span.
	EndCol     int
}

// ParseFileLocation parses a location formatted `file:line:col` or
// `file:line:col-line:col`.
func ParseFileLocation(line string) (FileLocation, error) {
	firstColon := strings.IndexByte(line, ':')
	if firstColon < 0 {
		return FileLocation{}, fmt.Errorf("eqlog: location %q has no ':'", line)
	}
	file := line[:firstColon]

	secondColon := strings.IndexByte(line[firstColon+1:], ':')
	if secondColon < 0 {
		return FileLocation{}, fmt.Errorf("eqlog: location %q has no second ':'", line)
	}
	secondColon += firstColon + 1

	dash := strings.IndexByte(line[secondColon+1:], '-')
	if dash < 0 {
		startLine, err := strconv.Atoi(line[firstColon+1 : secondColon])
		if err != nil {
			return FileLocation{}, fmt.Errorf("eqlog: location %q has non-integer line: %w", line, err)
		}
		startCol, err := strconv.Atoi(line[secondColon+1:])
		if err != nil {
			return FileLocation{}, fmt.Errorf("eqlog: location %q has non-integer column: %w", line, err)
		}
		return FileLocation{File: file, StartLine: startLine, StartCol: startCol, EndLine: -1, EndCol: -1}, nil
	}
	dash += secondColon + 1

	startLine, err := strconv.Atoi(line[firstColon+1 : secondColon])
	if err != nil {
		return FileLocation{}, fmt.Errorf("eqlog: location %q has non-integer start line: %w", line, err)
	}
	startCol, err := strconv.Atoi(line[secondColon+1 : dash])
	if err != nil {
		return FileLocation{}, fmt.Errorf("eqlog: location %q has non-integer start column: %w", line, err)
	}

	thirdColon := strings.IndexByte(line[dash+1:], ':')
	if thirdColon < 0 {
		return FileLocation{}, fmt.Errorf("eqlog: location %q has no end-column separator", line)
	}
	thirdColon += dash + 1

	endLine, err := strconv.Atoi(line[dash+1 : thirdColon])
	if err != nil {
		return FileLocation{}, fmt.Errorf("eqlog: location %q has non-integer end line: %w", line, err)
	}
	endCol, err := strconv.Atoi(line[thirdColon+1:])
	if err != nil {
		return FileLocation{}, fmt.Errorf("eqlog: location %q has non-integer end column: %w", line, err)
	}

	return FileLocation{File: file, StartLine: startLine, StartCol: startCol, EndLine: endLine, EndCol: endCol}, nil
}

func (l FileLocation) String() string {
	if l.EndLine < 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.StartLine, l.StartCol)
	}
	return fmt.Sprintf("%s:%d:%d-%d:%d", l.File, l.StartLine, l.StartCol, l.EndLine, l.EndCol)
}
