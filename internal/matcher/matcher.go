// Package matcher implements an incremental multi-pattern byte matcher.
//
// It is deliberately not a compiled Aho-Corasick automaton: the engine's
// wire dialect only ever needs a handful of patterns (at most seven) live at
// once, and the pattern set is reset wholesale at mode transitions rather
// than built up incrementally, so the straightforward list-of-positions
// approach is both simpler and easier to audit byte-for-byte against the
// protocol description than a compiled table would be.
package matcher

// Pattern is one byte string to recognize, tagged with an id returned from
// Feed when the pattern completes.
type Pattern struct {
	Bytes []byte
	ID    int
}

// position tracks one partially-matched pattern: Pattern is an index into
// Matcher.patterns, and Matched is how many of its leading bytes have been
// consumed so far.
type position struct {
	pattern int
	matched int
}

// Matcher recognizes every pattern in a fixed set as bytes arrive one at a
// time. It is not safe for concurrent use; callers run it on a single
// goroutine.
type Matcher struct {
	patterns  []Pattern
	positions []position // reused across Feed calls
}

// New builds a Matcher for the given patterns. A pattern with empty Bytes is
// a programming error.
func New(patterns []Pattern) *Matcher {
	m := &Matcher{patterns: append([]Pattern(nil), patterns...)}
	return m
}

// Feed advances every live partial match by one byte and returns the ids of
// every pattern that completes exactly on this byte. Order: ids completed by
// already-live positions are reported before ids completed by brand new
// length-1 patterns starting on this byte (matching the source matcher's
// emission order), though callers should not rely on relative order between
// distinct completed patterns.
func (m *Matcher) Feed(b byte) []int {
	var completed []int

	kept := m.positions[:0]
	for _, p := range m.positions {
		pat := m.patterns[p.pattern].Bytes
		if pat[p.matched] != b {
			continue
		}
		p.matched++
		if p.matched == len(pat) {
			completed = append(completed, m.patterns[p.pattern].ID)
			continue
		}
		kept = append(kept, p)
	}
	m.positions = kept

	for i, pat := range m.patterns {
		if pat.Bytes[0] != b {
			continue
		}
		if len(pat.Bytes) == 1 {
			completed = append(completed, pat.ID)
			continue
		}
		m.positions = append(m.positions, position{pattern: i, matched: 1})
	}

	return completed
}

// FeedMany feeds every byte of bs in order and returns the concatenation of
// each byte's completed pattern ids.
func (m *Matcher) FeedMany(bs []byte) []int {
	var all []int
	for _, b := range bs {
		all = append(all, m.Feed(b)...)
	}
	return all
}

// Reset discards every live partial match. A pattern whose completion
// straddles a Reset is not reported.
func (m *Matcher) Reset() {
	m.positions = m.positions[:0]
}
