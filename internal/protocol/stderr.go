package protocol

import "github.com/virgil-serbanuta/kdebug/internal/matcher"

const (
	patStuck = iota + 1
	patError
	patFailedEnd
)

var stderrPatterns = []matcher.Pattern{
	{Bytes: []byte("WarnStuckClaimState"), ID: patStuck},
	{Bytes: []byte("ErrorException"), ID: patError},
	{Bytes: []byte("The proof has reached the final configuration, but the claimed implication is not valid."), ID: patFailedEnd},
}

// StderrRecognizer watches the engine's stderr byte stream for the three
// sentinel substrings that classify how the current branch is about to
// end, and posts the classification onto the bus so it lands on the logic
// goroutine ahead of the corresponding stdout proof-end sentinel.
type StderrRecognizer struct {
	m        *matcher.Matcher
	post     func(func())
	endState *EndStateBox
}

// NewStderrRecognizer builds a recognizer that posts EndState updates onto
// box via post (ordinarily Dispatcher.Post).
func NewStderrRecognizer(endState *EndStateBox, post func(func())) *StderrRecognizer {
	return &StderrRecognizer{
		m:        matcher.New(stderrPatterns),
		post:     post,
		endState: endState,
	}
}

// Process feeds one byte from the engine's stderr stream.
func (r *StderrRecognizer) Process(b byte) {
	for _, id := range r.m.Feed(b) {
		state := classify(id)
		r.post(func() { r.endState.Set(state) })
	}
}

// PrepareForStep resets the matcher and clears EndState ahead of a step
// command, so a sentinel observed for a previous branch cannot leak into
// the next one's outcome.
func (r *StderrRecognizer) PrepareForStep() {
	r.m.Reset()
	r.post(func() { r.endState.Reset() })
}

// PrepareForKonfig resets the matcher and clears EndState ahead of a
// konfig command, for the same reason as PrepareForStep.
func (r *StderrRecognizer) PrepareForKonfig() {
	r.m.Reset()
	r.post(func() { r.endState.Reset() })
}

func classify(patternID int) EndState {
	switch patternID {
	case patStuck:
		return EndStuck
	case patError:
		return EndError
	case patFailedEnd:
		return EndFailedEnd
	default:
		return EndNormal
	}
}
