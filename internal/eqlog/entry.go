package eqlog

// Entry is one lexically-parsed record of the equation-application
// debug log. Some entries nest other entries beneath them in the raw
// log stream, indicated by a longer Context; Entry exposes that
// context so the structural organizer can regroup the flat sequence.
type Entry interface {
	// entryContext returns the entry's context and true, or (nil,
	// false) when the entry never carries nested children (the log
	// format's equivalent of Python's `context() is None`).
	entryContext() ([]Context, bool)
}

// contextOf normalizes entryContext into a single slice: nil means the
// entry has no context at all, a non-nil (possibly empty) slice means
// it does.
func contextOf(e Entry) []Context {
	ctx, ok := e.entryContext()
	if !ok {
		return nil
	}
	if ctx == nil {
		return []Context{}
	}
	return ctx
}

// DebugApplyEquation records that an equation was applied to a term,
// replacing it with Kore.
type DebugApplyEquation struct {
	Location FileLocation
	Kore     []string
}

func (DebugApplyEquation) entryContext() ([]Context, bool) { return nil, false }

// DebugAttemptEquation records one attempt to apply EquationLocation
// to TermKore. Its outcome (applicable, or one of the not-applicable
// reasons) is logged as separate entries nested under Ctx.
type DebugAttemptEquation struct {
	Ctx              []Context
	EquationLocation FileLocation
	TermKore         []string
}

func (e DebugAttemptEquation) entryContext() ([]Context, bool) { return e.Ctx, true }

// EquationIsApplicable closes out a DebugAttemptEquation that
// succeeded.
type EquationIsApplicable struct {
	Ctx []Context
}

func (e EquationIsApplicable) entryContext() ([]Context, bool) { return e.Ctx, true }

// EquationIsNotApplicableRequirement closes out a DebugAttemptEquation
// that failed because the equation's side condition could not be
// discharged from the term's own requirement.
type EquationIsNotApplicableRequirement struct {
	Ctx                       []Context
	EquationKore              []string
	MatchingKore              []string
	SideConditionKore         []string
	TermReplacementsKore      []string
	PredicateReplacementsKore []string
	DefinedTermsKore          []string
	NegatedImplicationKore    []string
}

func (e EquationIsNotApplicableRequirement) entryContext() ([]Context, bool) { return e.Ctx, true }

// EquationIsNotApplicableMatch closes out a DebugAttemptEquation whose
// left-hand side simply failed to unify with the term.
type EquationIsNotApplicableMatch struct {
	Ctx    []Context
	Reason string
}

func (e EquationIsNotApplicableMatch) entryContext() ([]Context, bool) { return e.Ctx, true }

// EquationIsNotApplicableApplyMatch closes out a DebugAttemptEquation
// whose match succeeded but whose substitution could not be applied.
type EquationIsNotApplicableApplyMatch struct {
	Ctx     []Context
	Reasons []string
}

func (e EquationIsNotApplicableApplyMatch) entryContext() ([]Context, bool) { return e.Ctx, true }

// LogMessage is a free-form message the engine logged.
type LogMessage struct{ Lines []string }

func (LogMessage) entryContext() ([]Context, bool) { return nil, false }

// LogJsonRpcServer records a JSON-RPC message exchanged over the wire
// protocol.
type LogJsonRpcServer struct{ Lines []string }

func (LogJsonRpcServer) entryContext() ([]Context, bool) { return nil, false }

// InfoJsonRpcProcessRequest records the engine beginning to process a
// JSON-RPC request.
type InfoJsonRpcProcessRequest struct{ Lines []string }

func (InfoJsonRpcProcessRequest) entryContext() ([]Context, bool) { return nil, false }

// DebugAttemptedRewriteRules records the rewrite rules the engine
// considered at a step.
type DebugAttemptedRewriteRules struct{ Lines []string }

func (DebugAttemptedRewriteRules) entryContext() ([]Context, bool) { return nil, false }

// DebugAppliedRewriteRules records the rewrite rules the engine
// actually applied at a step.
type DebugAppliedRewriteRules struct{ Lines []string }

func (DebugAppliedRewriteRules) entryContext() ([]Context, bool) { return nil, false }

// GenericLogEntry is a record whose header kind the parser did not
// recognize. It is never produced by Parse today (every known kind is
// dispatched explicitly); it exists so future log-format additions
// degrade to a readable entry instead of a parse failure.
type GenericLogEntry struct{ Lines []string }

func (GenericLogEntry) entryContext() ([]Context, bool) { return nil, false }

func kindName(e Entry) string {
	switch e.(type) {
	case LogMessage:
		return "LogMessage"
	case LogJsonRpcServer:
		return "LogJsonRpcServer"
	case InfoJsonRpcProcessRequest:
		return "InfoJsonRpcProcessRequest"
	case DebugAttemptedRewriteRules:
		return "DebugAttemptedRewriteRules"
	case DebugAppliedRewriteRules:
		return "DebugAppliedRewriteRules"
	case DebugApplyEquation:
		return "DebugApplyEquation"
	default:
		return "GenericLogEntry"
	}
}
