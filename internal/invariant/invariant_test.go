package invariant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreconditionPassesSilently(t *testing.T) {
	assert.NotPanics(t, func() { Precondition(true, "unused") })
}

func TestPreconditionPanicsOnViolation(t *testing.T) {
	assert.PanicsWithValue(t, "PRECONDITION VIOLATION: node 5 missing", func() {
		Precondition(false, "node %d missing", 5)
	})
}

func TestPostconditionPanicsOnViolation(t *testing.T) {
	assert.PanicsWithValue(t, "POSTCONDITION VIOLATION: bad", func() {
		Postcondition(false, "bad")
	})
}

func TestInvariantPanicsOnViolation(t *testing.T) {
	assert.PanicsWithValue(t, "INVARIANT VIOLATION: bad", func() {
		Invariant(false, "bad")
	})
}

func TestUnreachableAlwaysPanics(t *testing.T) {
	assert.PanicsWithValue(t, "UNREACHABLE VIOLATION: state 3", func() {
		Unreachable("state %d", 3)
	})
}
