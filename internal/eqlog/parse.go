package eqlog

import (
	"fmt"
	"strings"
)

const recordIndent = "    "
const contextHeader = "Context:"

// Parse splits the contents of an equation-application debug log into
// its flat sequence of entries. A line starting the record indent or
// `Context:` continues the current record; any other non-blank line
// starts a new one. Blank lines are dropped, never treated as record
// separators.
func Parse(contents string) ([]Entry, error) {
	lines := strings.Split(contents, "\n")

	var entries []Entry
	var current []string
	flush := func() error {
		if len(current) == 0 {
			return nil
		}
		e, err := parseEntry(current)
		if err != nil {
			return err
		}
		entries = append(entries, e)
		current = nil
		return nil
	}

	for _, line := range lines {
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, recordIndent) && !strings.HasPrefix(line, contextHeader) {
			if err := flush(); err != nil {
				return nil, err
			}
			current = []string{line}
		} else {
			current = append(current, line)
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return entries, nil
}

// extractIndented consumes every line at or after start that carries
// the record indent, stripping it, and returns the stripped lines plus
// the index of the first line that does not.
func extractIndented(lines []string, start int) ([]string, int) {
	var out []string
	i := start
	for i < len(lines) && strings.HasPrefix(lines[i], recordIndent) {
		out = append(out, lines[i][len(recordIndent):])
		i++
	}
	return out, i
}

func removeIndent(lines []string) ([]string, error) {
	out := make([]string, len(lines))
	for i, l := range lines {
		if !strings.HasPrefix(l, recordIndent) {
			return nil, fmt.Errorf("eqlog: expected an indented line, got %q", l)
		}
		out[i] = l[len(recordIndent):]
	}
	return out, nil
}

func parseEntry(lines []string) (Entry, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("eqlog: empty record")
	}
	header := lines[0]
	prefix := ""
	if strings.HasPrefix(header, "  ") {
		stripped := header[2:]
		if strings.HasPrefix(stripped, "kore-rpc") || strings.HasPrefix(stripped, "kore-repl") {
			prefix = "  "
			header = stripped
		}
	}
	if !strings.HasPrefix(header, "kore-repl") && !strings.HasPrefix(header, "kore-rpc") {
		return nil, fmt.Errorf("eqlog: record header %q does not start with a known log source", header)
	}
	if !strings.HasSuffix(header, "):") {
		return nil, fmt.Errorf("eqlog: record header %q does not end with '):'", header)
	}
	open := strings.LastIndexByte(header, '(')
	if open < 0 {
		return nil, fmt.Errorf("eqlog: record header %q has no '('", header)
	}
	kind := header[open+1 : len(header)-2]

	rest := make([]string, 0, len(lines)-1)
	for _, l := range lines[1:] {
		if prefix != "" {
			if strings.HasPrefix(l, prefix) {
				l = l[len(prefix):]
			} else if !strings.HasPrefix(l, contextHeader) {
				return nil, fmt.Errorf("eqlog: line %q is missing the record's shared prefix", l)
			}
		}
		if strings.HasPrefix(l, recordIndent) {
			l = l[len(recordIndent):]
		} else if !strings.HasPrefix(l, contextHeader) {
			return nil, fmt.Errorf("eqlog: line %q is missing the record's base indent", l)
		}
		rest = append(rest, l)
	}

	switch kind {
	case "DebugApplyEquation":
		return parseDebugApplyEquation(rest)
	case "DebugAttemptEquation":
		return parseDebugAttemptEquation(rest)
	case "LogMessage":
		return LogMessage{Lines: rest}, nil
	case "LogJsonRpcServer":
		return LogJsonRpcServer{Lines: rest}, nil
	case "InfoJsonRpcProcessRequest":
		return InfoJsonRpcProcessRequest{Lines: rest}, nil
	case "DebugAttemptedRewriteRules":
		return DebugAttemptedRewriteRules{Lines: rest}, nil
	case "DebugAppliedRewriteRules":
		return DebugAppliedRewriteRules{Lines: rest}, nil
	default:
		return nil, fmt.Errorf("eqlog: unrecognized log entry kind %q", kind)
	}
}

const appliedEquationPrefix = "applied equation at "

func parseDebugApplyEquation(lines []string) (Entry, error) {
	if len(lines) == 0 || strings.HasPrefix(lines[0], "(") {
		return nil, fmt.Errorf("eqlog: DebugApplyEquation record is missing its header line")
	}
	if !strings.HasPrefix(lines[0], appliedEquationPrefix) {
		return nil, fmt.Errorf("eqlog: DebugApplyEquation header %q missing expected prefix", lines[0])
	}
	loc, err := ParseFileLocation(strings.TrimPrefix(lines[0], appliedEquationPrefix))
	if err != nil {
		return nil, err
	}
	kore, next := extractIndented(lines, 1)
	if next != len(lines) {
		return nil, fmt.Errorf("eqlog: DebugApplyEquation has unconsumed trailing lines")
	}
	return DebugApplyEquation{Location: loc, Kore: kore}, nil
}

const (
	applyEquationPrefix        = "applying equation at "
	applyEquationSuffix        = " to term:"
	equationIsApplicablePrefix = "equation is applicable"
	notApplicablePrefix        = "equation is not applicable"
)

func parseDebugAttemptEquation(lines []string) (Entry, error) {
	current := 0
	for current < len(lines) && strings.HasPrefix(lines[current], "(") {
		current++
	}

	contextStart := -1
	for i := current; i < len(lines); i++ {
		if lines[i] == contextHeader {
			contextStart = i
			break
		}
	}
	if contextStart < 0 {
		return nil, fmt.Errorf("eqlog: DebugAttemptEquation record has no %q line", contextHeader)
	}

	var ctx []Context
	for i := contextStart + 1; i < len(lines); i++ {
		c, err := ParseContext(lines[i])
		if err != nil {
			return nil, err
		}
		ctx = append(ctx, c)
	}
	if ctx == nil {
		ctx = []Context{}
	}

	if current >= contextStart {
		return nil, fmt.Errorf("eqlog: DebugAttemptEquation record has no body before %q", contextHeader)
	}
	line := lines[current]

	switch {
	case strings.HasPrefix(line, applyEquationPrefix) && strings.HasSuffix(line, applyEquationSuffix):
		locStr := strings.TrimSuffix(strings.TrimPrefix(line, applyEquationPrefix), applyEquationSuffix)
		loc, err := ParseFileLocation(locStr)
		if err != nil {
			return nil, err
		}
		kore, err := removeIndent(lines[current+1 : contextStart])
		if err != nil {
			return nil, err
		}
		return DebugAttemptEquation{Ctx: ctx, EquationLocation: loc, TermKore: kore}, nil
	case strings.HasPrefix(line, equationIsApplicablePrefix):
		return EquationIsApplicable{Ctx: ctx}, nil
	case strings.HasPrefix(line, notApplicablePrefix):
		return parseEquationIsNotApplicable(ctx, lines[current+1:contextStart])
	default:
		return nil, fmt.Errorf("eqlog: unrecognized DebugAttemptEquation outcome %q", line)
	}
}

const (
	equationRequirementPrefix   = "Could not infer the equation requirement:"
	matchingRequirementPrefix   = "and the matching requirement:"
	sideConditionPrefix         = "from the side condition:"
	actualSideConditionPrefix   = "Assumed true condition:"
	termReplacementsPrefix      = "TermLike replacements:"
	predicateReplacementsPrefix = "Predicate replacements:"
	definedPrefix               = "Assumed to be defined:"
	negatedImplicationPrefix    = "The negated implication is:"
	equationMatchPrefix         = "equation did not match term"
	equationApplyMatchPrefix    = "could not apply match result"
)

func parseEquationIsNotApplicable(ctx []Context, lines []string) (Entry, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("eqlog: equation-is-not-applicable record has no reason")
	}
	switch {
	case strings.HasPrefix(lines[0], equationRequirementPrefix):
		return parseNotApplicableRequirement(ctx, lines)
	case strings.HasPrefix(lines[0], equationMatchPrefix):
		return parseNotApplicableMatch(ctx, lines)
	case strings.HasPrefix(lines[0], equationApplyMatchPrefix):
		return parseNotApplicableApplyMatch(ctx, lines)
	default:
		return nil, fmt.Errorf("eqlog: unrecognized not-applicable reason %q", lines[0])
	}
}

func parseNotApplicableRequirement(ctx []Context, lines []string) (Entry, error) {
	equationKore, idx := extractIndented(lines, 1)

	if idx >= len(lines) || !strings.HasPrefix(lines[idx], matchingRequirementPrefix) {
		return nil, fmt.Errorf("eqlog: equation requirement failure missing %q", matchingRequirementPrefix)
	}
	idx++
	matchingKore, idx2 := extractIndented(lines, idx)
	idx = idx2

	if idx >= len(lines) || !strings.HasPrefix(lines[idx], sideConditionPrefix) {
		return nil, fmt.Errorf("eqlog: equation requirement failure missing %q", sideConditionPrefix)
	}
	idx++
	sideLines, idx3 := extractIndented(lines, idx)
	idx = idx3

	sideConditionKore, termReplacements, predicateReplacements, definedTerms, err := parseSideCondition(sideLines)
	if err != nil {
		return nil, err
	}

	if idx >= len(lines) || !strings.HasPrefix(lines[idx], negatedImplicationPrefix) {
		return nil, fmt.Errorf("eqlog: equation requirement failure missing %q", negatedImplicationPrefix)
	}
	idx++
	negatedImplication, idx4 := extractIndented(lines, idx)
	idx = idx4

	if idx != len(lines) {
		return nil, fmt.Errorf("eqlog: equation requirement failure has unconsumed trailing lines")
	}

	return EquationIsNotApplicableRequirement{
		Ctx:                       ctx,
		EquationKore:              equationKore,
		MatchingKore:              matchingKore,
		SideConditionKore:         sideConditionKore,
		TermReplacementsKore:      termReplacements,
		PredicateReplacementsKore: predicateReplacements,
		DefinedTermsKore:          definedTerms,
		NegatedImplicationKore:    negatedImplication,
	}, nil
}

func parseSideCondition(lines []string) (sideCondition, termReplacements, predicateReplacements, defined []string, err error) {
	idx := 0
	if idx >= len(lines) || !strings.HasPrefix(lines[idx], actualSideConditionPrefix) {
		return nil, nil, nil, nil, fmt.Errorf("eqlog: side condition missing %q", actualSideConditionPrefix)
	}
	idx++
	sideCondition, idx = extractIndented(lines, idx)

	if idx >= len(lines) || !strings.HasPrefix(lines[idx], termReplacementsPrefix) {
		return nil, nil, nil, nil, fmt.Errorf("eqlog: side condition missing %q", termReplacementsPrefix)
	}
	idx++
	termReplacements, idx = extractIndented(lines, idx)

	if idx >= len(lines) || !strings.HasPrefix(lines[idx], predicateReplacementsPrefix) {
		return nil, nil, nil, nil, fmt.Errorf("eqlog: side condition missing %q", predicateReplacementsPrefix)
	}
	idx++
	predicateReplacements, idx = extractIndented(lines, idx)

	if idx >= len(lines) || !strings.HasPrefix(lines[idx], definedPrefix) {
		return nil, nil, nil, nil, fmt.Errorf("eqlog: side condition missing %q", definedPrefix)
	}
	idx++
	defined, idx = extractIndented(lines, idx)

	if idx != len(lines) {
		return nil, nil, nil, nil, fmt.Errorf("eqlog: side condition has unconsumed trailing lines")
	}
	return sideCondition, termReplacements, predicateReplacements, defined, nil
}

func parseNotApplicableMatch(ctx []Context, lines []string) (Entry, error) {
	reason := strings.TrimPrefix(lines[0], equationMatchPrefix)
	if len(lines) != 1 {
		return nil, fmt.Errorf("eqlog: equation-did-not-match record has unconsumed trailing lines")
	}
	return EquationIsNotApplicableMatch{Ctx: ctx, Reason: reason}, nil
}

func parseNotApplicableApplyMatch(ctx []Context, lines []string) (Entry, error) {
	reasons, idx := extractIndented(lines, 1)
	if idx != len(lines) {
		return nil, fmt.Errorf("eqlog: could-not-apply-match record has unconsumed trailing lines")
	}
	return EquationIsNotApplicableApplyMatch{Ctx: ctx, Reasons: reasons}, nil
}
