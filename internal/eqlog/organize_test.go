package eqlog

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrganizeAndWriteEquationIsApplicable(t *testing.T) {
	entries := []Entry{
		EquationIsApplicable{Ctx: []Context{GenericContext{Line: "(GenericContext) outer frame"}}},
	}
	organized, err := Organize(entries)
	require.NoError(t, err)
	require.Len(t, organized, 1)

	out := WriteLog(organized)
	expected := "Success:\n" +
		"Context:\n" +
		"    (GenericContext) outer frame\n" +
		"Success computation:\n"
	assert.Equal(t, expected, out)
}

func TestOrganizeNotApplicableMatchNestedUnderAttempt(t *testing.T) {
	loc := FileLocation{File: "a.k", StartLine: 1, StartCol: 1, EndLine: 1, EndCol: 5}
	outer := GenericContext{Line: "outer"}
	attempt := DebugAttemptEquation{
		Ctx:              []Context{outer},
		EquationLocation: loc,
		TermKore:         []string{"TERM"},
	}
	matchFailure := EquationIsNotApplicableMatch{
		Ctx:    []Context{outer, DebugAttemptEquationContext{Location: loc}},
		Reason: " because reasons",
	}

	entries := []Entry{attempt, matchFailure}
	organized, err := Organize(entries)
	require.NoError(t, err)
	require.Len(t, organized, 1)

	result, ok := organized[0].(OrganizedNotAppliedEquationMatch)
	require.True(t, ok)
	want := OrganizedNotAppliedEquationMatch{Attempt: attempt, Failure: matchFailure}
	if diff := cmp.Diff(want, result); diff != "" {
		t.Errorf("organized match mismatch (-want +got):\n%s", diff)
	}

	out := WriteLog(organized)
	expected := "Not applying equation, matching failed:\n" +
		"Context:\n" +
		"    outer\n" +
		"Current equation: a.k:1:1-1:5\n" +
		"Term:\n" +
		"    TERM\n" +
		"Matching computation:\n"
	assert.Equal(t, expected, out)
}

func TestOrganizeAttemptWithNoOutcomeFails(t *testing.T) {
	entries := []Entry{
		DebugAttemptEquation{Ctx: []Context{}},
	}
	_, err := Organize(entries)
	assert.Error(t, err)
}

func TestExtractInnerEntriesSweepsInContextFreeEntries(t *testing.T) {
	entries := []Entry{
		LogMessage{Lines: []string{"a"}},
		LogMessage{Lines: []string{"b"}},
	}
	inner, next := extractInnerEntries(entries, 0, 5)
	assert.Equal(t, entries, inner)
	assert.Equal(t, 2, next)
}

func TestExtractInnerEntriesContextFreeEntryNeverStopsTheRun(t *testing.T) {
	outer := GenericContext{Line: "outer"}
	loc := FileLocation{File: "a.k", StartLine: 1, StartCol: 1, EndLine: -1, EndCol: -1}
	attemptFrame := DebugAttemptEquationContext{Location: loc}
	entries := []Entry{
		EquationIsApplicable{Ctx: []Context{outer, attemptFrame}},
		LogMessage{Lines: []string{"nested message"}},
		EquationIsApplicable{Ctx: []Context{outer}},
	}
	inner, next := extractInnerEntries(entries, 0, 1)
	assert.Equal(t, entries[:2], inner)
	assert.Equal(t, 2, next)
}

func TestCheckContextPrefixListSkipsContextFreeChildren(t *testing.T) {
	outer := GenericContext{Line: "outer"}
	children := []Entry{
		LogMessage{Lines: []string{"x"}},
		EquationIsApplicable{Ctx: []Context{outer, outer}},
	}
	assert.NoError(t, checkContextPrefixList([]Context{outer}, children))
}

func TestCheckContextPrefixListRejectsMismatchedPrefix(t *testing.T) {
	outer := GenericContext{Line: "outer"}
	other := GenericContext{Line: "other"}
	children := []Entry{
		EquationIsApplicable{Ctx: []Context{other, outer}},
	}
	assert.Error(t, checkContextPrefixList([]Context{outer}, children))
}
