package protocol

import (
	"github.com/virgil-serbanuta/kdebug/internal/invariant"
	"github.com/virgil-serbanuta/kdebug/internal/matcher"
)

// Mode is the stdout parser's operating mode, switched by the scheduler
// via PrepareForStep / PrepareForKonfig as it issues commands.
type Mode int

const (
	ModeStarting Mode = iota
	ModeStepping
	ModeKonfig
)

type substate int

const (
	subStart substate = iota
	subNumber
	subMarkerSkip
	subPromptAfterNumber
	subSplitAfterSteps
	subSplitBranches
	subConfigStartAfterNumber
	subInConfig
)

type numberPurpose int

const (
	purposeNone numberPurpose = iota
	purposePrompt
	purposeStepCount
	purposeBranchChild
	purposeKonfigID
)

const (
	idPromptStart = iota + 1
	idStepStart
	idConfigStart
	idPromptEnd
	idBranchIntro
	idProofEndSentinel
	idBranchSep
	idBranchEnd
	idConfigIs
)

// prefixLen is the width of the binary marker 0x00 0xFF 0x00 the engine
// wraps every decimal number in.
const prefixLen = 3

// StdoutParser recognizes the engine's stdout wire dialect and posts
// events onto the bus. It consumes the raw 0x00 0xFF 0x00 markers framing
// every number by counting them off rather than feeding them through the
// pattern matcher, then matches the literal text that follows a number's
// closing marker with a matcher scoped to just that substate — this is
// behaviorally identical to re-synthesizing the marker into a shared
// matcher, without needing the matcher to track marker-prefixed patterns.
type StdoutParser struct {
	mode     Mode
	sub      substate
	numPurp  numberPurpose
	post     func(func())

	prefixSkip int
	numValue   int
	sawDigit   bool
	nextSub    substate

	stepCount      int
	branchChildren []int
	konfigNodeID   int

	lineBuf []byte
	lines   []string

	active    *matcher.Matcher
	mStartStepping *matcher.Matcher
	mStartKonfig   *matcher.Matcher
	mPromptAfter   *matcher.Matcher
	mSplitAfterSteps *matcher.Matcher
	mSplitBranches   *matcher.Matcher
	mConfigStartAfter *matcher.Matcher
	mEndOfConfig      *matcher.Matcher

	// Normalize post-processes a configuration dump's collected lines
	// before on_konfig fires. Defaults to returning lines unchanged.
	Normalize func(lines []string) []string

	OnAtPrompt  func(id int)
	OnBranches  func(stepCount int, children []int)
	OnProofEnd  func(stepCount int)
	OnKonfig    func(nodeID int, lines []string)
}

// NewStdoutParser builds a parser in ModeStarting, waiting for the
// engine's first prompt.
func NewStdoutParser(post func(func())) *StdoutParser {
	p := &StdoutParser{
		post: post,
		mStartStepping: matcher.New([]matcher.Pattern{
			{Bytes: []byte("\nKore ("), ID: idPromptStart},
			{Bytes: []byte("\nStopped after "), ID: idStepStart},
		}),
		mStartKonfig: matcher.New([]matcher.Pattern{
			{Bytes: []byte("\nKore ("), ID: idPromptStart},
			{Bytes: []byte("\nConfig at node "), ID: idConfigStart},
		}),
		mPromptAfter: matcher.New([]matcher.Pattern{
			{Bytes: []byte(")> "), ID: idPromptEnd},
		}),
		mSplitAfterSteps: matcher.New([]matcher.Pattern{
			{Bytes: []byte(" step(s) due to branching on ["), ID: idBranchIntro},
			{Bytes: []byte(" step(s) due to reaching end of proof on current branch."), ID: idProofEndSentinel},
		}),
		mSplitBranches: matcher.New([]matcher.Pattern{
			{Bytes: []byte(","), ID: idBranchSep},
			{Bytes: []byte("]"), ID: idBranchEnd},
		}),
		mConfigStartAfter: matcher.New([]matcher.Pattern{
			{Bytes: []byte(" is:"), ID: idConfigIs},
		}),
		mEndOfConfig: matcher.New([]matcher.Pattern{
			{Bytes: []byte("\nKore ("), ID: idPromptStart},
		}),
	}
	p.mode = ModeStarting
	p.sub = subStart
	p.active = p.mStartStepping
	return p
}

// PrepareForStep switches into ModeStepping, ready to observe the outcome
// of a just-issued step command.
func (p *StdoutParser) PrepareForStep() {
	p.mode = ModeStepping
	p.enterStart()
	p.feedByte('\n')
}

// PrepareForKonfig switches into ModeKonfig, ready to observe the response
// to a just-issued konfig command.
func (p *StdoutParser) PrepareForKonfig() {
	p.mode = ModeKonfig
	p.enterStart()
	p.feedByte('\n')
}

func (p *StdoutParser) enterStart() {
	p.sub = subStart
	if p.mode == ModeKonfig {
		p.active = p.mStartKonfig
	} else {
		p.active = p.mStartStepping
	}
	p.active.Reset()
}

// Feed processes one byte received on the engine's stdout stream.
func (p *StdoutParser) Feed(b byte) {
	p.feedByte(b)
}

// FeedMany processes every byte of bs in order.
func (p *StdoutParser) FeedMany(bs []byte) {
	for _, b := range bs {
		p.feedByte(b)
	}
}

func (p *StdoutParser) feedByte(b byte) {
	switch p.sub {
	case subStart:
		p.feedStart(b)
	case subNumber:
		p.feedNumber(b)
	case subMarkerSkip:
		p.feedMarkerSkip(b)
	case subInConfig:
		p.feedInConfig(b)
	default:
		p.feedLiteral(b)
	}
}

func (p *StdoutParser) feedStart(b byte) {
	for _, id := range p.active.Feed(b) {
		switch id {
		case idPromptStart:
			p.beginNumber(purposePrompt, subPromptAfterNumber)
		case idStepStart:
			p.beginNumber(purposeStepCount, subSplitAfterSteps)
		case idConfigStart:
			p.beginNumber(purposeKonfigID, subConfigStartAfterNumber)
		default:
			invariant.Unreachable("stdout parser: unexpected pattern id %d in START", id)
		}
	}
}

func (p *StdoutParser) beginNumber(purpose numberPurpose, next substate) {
	p.sub = subNumber
	p.numPurp = purpose
	p.nextSub = next
	p.prefixSkip = prefixLen
	p.numValue = 0
	p.sawDigit = false
}

func (p *StdoutParser) feedNumber(b byte) {
	if p.prefixSkip > 0 {
		p.prefixSkip--
		return
	}
	if b >= '0' && b <= '9' {
		p.numValue = p.numValue*10 + int(b-'0')
		p.sawDigit = true
		return
	}
	invariant.Invariant(p.sawDigit, "stdout parser: number field with no digits")
	// b is the first byte of the number's closing marker; the marker is
	// skipped raw exactly like the opening one, prefixLen bytes total.
	if p.numPurp == purposeBranchChild {
		p.branchChildren = append(p.branchChildren, p.numValue)
	}
	p.sub = subMarkerSkip
	p.prefixSkip = prefixLen - 1
}

func (p *StdoutParser) feedMarkerSkip(b byte) {
	if p.prefixSkip > 0 {
		p.prefixSkip--
		return
	}
	p.enterAfterNumber(b)
}

// enterAfterNumber runs once a number's closing marker has been fully
// skipped, selecting the substate and matcher that recognize the literal
// text following that marker, then feeds it b, the first such byte.
func (p *StdoutParser) enterAfterNumber(b byte) {
	p.sub = p.nextSub
	switch p.sub {
	case subPromptAfterNumber:
		p.active = p.mPromptAfter
	case subSplitAfterSteps:
		p.stepCount = p.numValue
		p.active = p.mSplitAfterSteps
	case subSplitBranches:
		p.active = p.mSplitBranches
	case subConfigStartAfterNumber:
		p.konfigNodeID = p.numValue
		p.active = p.mConfigStartAfter
	default:
		invariant.Unreachable("stdout parser: unexpected successor substate %d", p.sub)
	}
	p.active.Reset()
	p.feedLiteral(b)
}

func (p *StdoutParser) feedLiteral(b byte) {
	for _, id := range p.active.Feed(b) {
		p.onPattern(id)
	}
}

func (p *StdoutParser) onPattern(id int) {
	switch id {
	case idPromptEnd:
		id := p.numValue
		p.post(func() { p.OnAtPrompt(id) })
		p.enterStart()
	case idBranchIntro:
		p.branchChildren = nil
		p.beginNumber(purposeBranchChild, subSplitBranches)
	case idProofEndSentinel:
		steps := p.stepCount
		p.post(func() { p.OnProofEnd(steps) })
		p.enterStart()
	case idBranchSep:
		p.beginNumber(purposeBranchChild, subSplitBranches)
	case idBranchEnd:
		steps, children := p.stepCount, p.branchChildren
		p.post(func() { p.OnBranches(steps, children) })
		p.enterStart()
	case idConfigIs:
		p.sub = subInConfig
		p.lineBuf = p.lineBuf[:0]
		p.lines = nil
		p.mEndOfConfig.Reset()
	default:
		invariant.Unreachable("stdout parser: unexpected pattern id %d", id)
	}
}

func (p *StdoutParser) feedInConfig(b byte) {
	if b == '\n' {
		if len(p.lineBuf) > 0 {
			p.lines = append(p.lines, string(p.lineBuf))
			p.lineBuf = p.lineBuf[:0]
		}
	} else {
		p.lineBuf = append(p.lineBuf, b)
	}

	for _, id := range p.mEndOfConfig.Feed(b) {
		if id == idPromptStart {
			nodeID, lines := p.konfigNodeID, p.lines
			normalize := p.Normalize
			if normalize == nil {
				normalize = func(l []string) []string { return l }
			}
			normalized := normalize(lines)
			p.post(func() { p.OnKonfig(nodeID, normalized) })
			p.beginNumber(purposePrompt, subPromptAfterNumber)
			return
		}
	}
}
