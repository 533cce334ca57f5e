package eqlog

import "fmt"

// preparsed pairs a flat entry with the contiguous run of subsequent,
// deeper-context entries the engine logged nested under it (an
// equation attempt's outcome, for instance).
type preparsed struct {
	Entry    Entry
	Children []preparsed
}

// groupByContext re-nests a flat entry sequence by context depth: each
// entry whose context is non-nil "adopts" the contiguous run of
// immediately following entries whose context is both longer than its
// own and not top-level.
func groupByContext(entries []Entry) ([]preparsed, error) {
	var out []preparsed
	i := 0
	for i < len(entries) {
		e := entries[i]
		ctx := contextOf(e)
		if ctx == nil {
			out = append(out, preparsed{Entry: e})
			i++
			continue
		}

		childEntries, next := extractInnerEntries(entries, i+1, len(ctx))
		if err := checkContextPrefixList(ctx, childEntries); err != nil {
			return nil, err
		}
		children, err := groupByContext(childEntries)
		if err != nil {
			return nil, err
		}
		out = append(out, preparsed{Entry: e, Children: children})
		i = next
	}
	return out, nil
}

// extractInnerEntries grabs the contiguous run of entries starting at
// start that belong "inside" a call frame of the given context depth.
// An entry with no context of its own (context-free log records, such
// as a DebugApplyEquation or a LogMessage) never ends the run — it is
// always swept in as belonging to whatever frame is currently open.
func extractInnerEntries(entries []Entry, start, parentLen int) ([]Entry, int) {
	i := start
	for i < len(entries) {
		ctx := contextOf(entries[i])
		if ctx != nil && (len(ctx) <= parentLen || isTopLevel(ctx)) {
			break
		}
		i++
	}
	return entries[start:i], i
}

func checkContextPrefixList(parentCtx []Context, children []Entry) error {
	for _, child := range children {
		childCtx := contextOf(child)
		if childCtx == nil {
			continue
		}
		if len(childCtx) <= len(parentCtx) {
			return fmt.Errorf("eqlog: nested entry's context does not extend its parent's")
		}
		for i := range parentCtx {
			if childCtx[i].String() != parentCtx[i].String() {
				return fmt.Errorf("eqlog: nested entry's context does not share its parent's prefix")
			}
		}
	}
	return nil
}

// Organized is one node of the readable, regrouped rendering of an
// equation-application debug log.
type Organized interface {
	Write(contextStart, depth int, out *[]string)
}

// Organize regroups a flat, already context-nested entry sequence into
// the Organized tree Write renders.
func Organize(entries []Entry) ([]Organized, error) {
	grouped, err := groupByContext(entries)
	if err != nil {
		return nil, err
	}
	return organizeAll(grouped)
}

func organizeAll(entries []preparsed) ([]Organized, error) {
	var out []Organized
	start := 0
	for start < len(entries) {
		o, consumed, err := organizeOne(entries, start)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
		start = consumed
	}
	return out, nil
}

// OrganizedSimple is a leaf-like node whose entry carries no further
// structure of its own beyond an optional list of nested children
// (log messages, rewrite-rule listings, and the unstructured terminal
// outcomes of an equation attempt).
type OrganizedSimple struct {
	Description         string
	Entry               Entry
	ChildrenDescription string
	Children            []Organized
}

func (o OrganizedSimple) Write(contextStart, depth int, out *[]string) {
	writeIndent(out, depth, o.Description+":")
	ctx := genericContext(o.Entry)
	writeContext(ctx, contextStart, depth, out)
	writeIndent(out, depth, o.ChildrenDescription)
	for _, c := range o.Children {
		c.Write(len(ctx)+1, depth+1, out)
	}
}

// OrganizedAppliedEquation is a DebugAttemptEquation whose outcome was
// a successful DebugApplyEquation.
type OrganizedAppliedEquation struct {
	Attempt     DebugAttemptEquation
	Computation []Organized
	Applicable  EquationIsApplicable
	Apply       DebugApplyEquation
}

func (o OrganizedAppliedEquation) Write(contextStart, depth int, out *[]string) {
	writeIndent(out, depth, "Applying equation:")
	writeContext(o.Attempt.Ctx, contextStart, depth, out)
	writeIndent(out, depth, "Current equation: "+o.Attempt.EquationLocation.String())
	writeIndent(out, depth, "Term:")
	writeKore(out, o.Attempt.TermKore, depth+1)
	writeIndent(out, depth, "Result:")
	writeKore(out, o.Apply.Kore, depth+1)
	writeIndent(out, depth, "Computation:")
	for _, c := range o.Computation {
		c.Write(len(o.Attempt.Ctx)+1, depth+1, out)
	}
}

// OrganizedNotAppliedEquationRequirement is a DebugAttemptEquation
// that failed because its side condition could not be discharged.
type OrganizedNotAppliedEquationRequirement struct {
	Attempt     DebugAttemptEquation
	Computation []Organized
	Failure     EquationIsNotApplicableRequirement
}

func (o OrganizedNotAppliedEquationRequirement) Write(contextStart, depth int, out *[]string) {
	writeIndent(out, depth, "Not applying equation:")
	writeContext(o.Attempt.Ctx, contextStart, depth, out)
	writeIndent(out, depth, "Current equation: "+o.Attempt.EquationLocation.String())
	writeIndent(out, depth, "Term:")
	writeKore(out, o.Attempt.TermKore, depth+1)
	writeIndent(out, depth, "Requirement:")
	writeKore(out, o.Failure.EquationKore, depth+1)
	writeIndent(out, depth, "Matching condition:")
	writeKore(out, o.Failure.MatchingKore, depth+1)
	writeIndent(out, depth, "Side condition:")
	writeIndent(out, depth+1, "Assumed true:")
	writeKore(out, o.Failure.SideConditionKore, depth+2)
	writeIndent(out, depth+1, "Term replacements:")
	writeKore(out, o.Failure.TermReplacementsKore, depth+2)
	writeIndent(out, depth+1, "Predicate replacements:")
	writeKore(out, o.Failure.PredicateReplacementsKore, depth+2)
	writeIndent(out, depth+1, "Assumed to be defined:")
	writeKore(out, o.Failure.DefinedTermsKore, depth+2)
	writeIndent(out, depth, "Computation:")
	for _, c := range o.Computation {
		c.Write(len(o.Attempt.Ctx)+1, depth+1, out)
	}
}

// OrganizedNotAppliedEquationMatch is a DebugAttemptEquation whose
// left-hand side simply failed to match the term.
type OrganizedNotAppliedEquationMatch struct {
	Attempt         DebugAttemptEquation
	Failure         EquationIsNotApplicableMatch
	FailureChildren []Organized
}

func (o OrganizedNotAppliedEquationMatch) Write(contextStart, depth int, out *[]string) {
	writeIndent(out, depth, "Not applying equation, matching failed:")
	writeContext(o.Attempt.Ctx, contextStart, depth, out)
	writeIndent(out, depth, "Current equation: "+o.Attempt.EquationLocation.String())
	writeIndent(out, depth, "Term:")
	writeKore(out, o.Attempt.TermKore, depth+1)
	writeIndent(out, depth, "Matching computation:")
	for _, c := range o.FailureChildren {
		c.Write(len(o.Attempt.Ctx)+1, depth+1, out)
	}
}

// OrganizedNotAppliedEquationApplyMatch is a DebugAttemptEquation
// whose match succeeded but whose substitution could not be applied.
type OrganizedNotAppliedEquationApplyMatch struct {
	Attempt     DebugAttemptEquation
	Computation []Organized
	Failure     EquationIsNotApplicableApplyMatch
}

func (o OrganizedNotAppliedEquationApplyMatch) Write(contextStart, depth int, out *[]string) {
	writeIndent(out, depth, "Not applying equation, matching failed:")
	writeContext(o.Attempt.Ctx, contextStart, depth, out)
	writeIndent(out, depth, "Current equation: "+o.Attempt.EquationLocation.String())
	writeIndent(out, depth, "Term:")
	writeKore(out, o.Attempt.TermKore, depth+1)
	writeIndent(out, depth, "Computation:")
	for _, c := range o.Computation {
		c.Write(len(o.Attempt.Ctx)+1, depth+1, out)
	}
	writeIndent(out, depth, "Matching failure reasons:")
	writeKore(out, o.Failure.Reasons, depth+1)
}

func genericContext(e Entry) []Context {
	ctx := contextOf(e)
	if ctx == nil {
		return []Context{}
	}
	return ctx
}

func organizeOne(entries []preparsed, start int) (Organized, int, error) {
	if start >= len(entries) {
		return nil, start, fmt.Errorf("eqlog: organizeOne called past the end of its input")
	}
	p := entries[start]
	start++

	switch e := p.Entry.(type) {
	case DebugAttemptEquation:
		// Once the entry right after this attempt is itself a
		// DebugApplyEquation, the two are committed to describing one
		// successful application: any violated precondition below is
		// a fatal, not a fall-through, parse failure.
		if start < len(entries) {
			if apply, ok := entries[start].Entry.(DebugApplyEquation); ok {
				if len(entries[start].Children) != 0 {
					return nil, start, fmt.Errorf("eqlog: DebugApplyEquation following an attempt must have no children")
				}
				if len(p.Children) == 0 {
					return nil, start, fmt.Errorf("eqlog: DebugAttemptEquation followed by DebugApplyEquation has no recorded outcome")
				}
				last := p.Children[len(p.Children)-1]
				applicable, ok2 := last.Entry.(EquationIsApplicable)
				if !ok2 {
					return nil, start, fmt.Errorf("eqlog: DebugAttemptEquation followed by DebugApplyEquation must end in an applicable outcome")
				}
				if e.EquationLocation != apply.Location {
					return nil, start, fmt.Errorf("eqlog: equation attempt at %s is followed by an apply record for %s", e.EquationLocation, apply.Location)
				}
				computation, err := organizeAll(p.Children[:len(p.Children)-1])
				if err != nil {
					return nil, start, err
				}
				return OrganizedAppliedEquation{
					Attempt:     e,
					Computation: computation,
					Applicable:  applicable,
					Apply:       apply,
				}, start + 1, nil
			}
		}
		if len(p.Children) == 0 {
			return nil, start, fmt.Errorf("eqlog: DebugAttemptEquation has no recorded outcome")
		}
		last := p.Children[len(p.Children)-1]
		switch failure := last.Entry.(type) {
		case EquationIsNotApplicableApplyMatch:
			computation, err := organizeAll(p.Children[:len(p.Children)-1])
			if err != nil {
				return nil, start, err
			}
			return OrganizedNotAppliedEquationApplyMatch{Attempt: e, Computation: computation, Failure: failure}, start, nil
		case EquationIsNotApplicableRequirement:
			computation, err := organizeAll(p.Children[:len(p.Children)-1])
			if err != nil {
				return nil, start, err
			}
			return OrganizedNotAppliedEquationRequirement{Attempt: e, Computation: computation, Failure: failure}, start, nil
		case EquationIsNotApplicableMatch:
			if len(p.Children) != 1 {
				return nil, start, fmt.Errorf("eqlog: equation-did-not-match outcome must be the attempt's only child")
			}
			failureChildren, err := organizeAll(last.Children)
			if err != nil {
				return nil, start, err
			}
			return OrganizedNotAppliedEquationMatch{Attempt: e, Failure: failure, FailureChildren: failureChildren}, start, nil
		default:
			return nil, start, fmt.Errorf("eqlog: DebugAttemptEquation's last child has unexpected type %T", last.Entry)
		}

	case EquationIsNotApplicableMatch:
		if len(p.Children) != 0 {
			return nil, start, fmt.Errorf("eqlog: equation-did-not-match entry has unexpected children")
		}
		return OrganizedSimple{Description: "Matching failed", Entry: e, ChildrenDescription: "Failure computation:"}, start, nil

	case EquationIsNotApplicableApplyMatch:
		children, err := organizeAll(p.Children)
		if err != nil {
			return nil, start, err
		}
		return OrganizedSimple{Description: "Failing to apply match", Entry: e, ChildrenDescription: "Failure computation:", Children: children}, start, nil

	case EquationIsNotApplicableRequirement:
		if len(p.Children) != 0 {
			return nil, start, fmt.Errorf("eqlog: equation-requirement-failed entry has unexpected children")
		}
		return OrganizedSimple{Description: "Requirement failed", Entry: e, ChildrenDescription: "Failure computation:"}, start, nil

	case EquationIsApplicable:
		if len(p.Children) != 0 {
			return nil, start, fmt.Errorf("eqlog: equation-is-applicable entry has unexpected children")
		}
		return OrganizedSimple{Description: "Success", Entry: e, ChildrenDescription: "Success computation:"}, start, nil

	case LogMessage, LogJsonRpcServer, InfoJsonRpcProcessRequest, DebugAttemptedRewriteRules, DebugAppliedRewriteRules, DebugApplyEquation:
		if len(p.Children) != 0 {
			return nil, start, fmt.Errorf("eqlog: %s entry has unexpected children", kindName(e))
		}
		return OrganizedSimple{Description: kindName(e), Entry: e, ChildrenDescription: "No children:"}, start, nil

	default:
		return nil, start, fmt.Errorf("eqlog: cannot organize entry of type %T", e)
	}
}
