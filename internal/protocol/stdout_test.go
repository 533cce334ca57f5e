package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedEvents struct {
	prompts  []int
	branches []branchEvent
	proofEnd []int
	konfigs  []konfigEvent
}

type branchEvent struct {
	stepCount int
	children  []int
}

type konfigEvent struct {
	nodeID int
	lines  []string
}

func newRecordingParser() (*StdoutParser, *recordedEvents) {
	rec := &recordedEvents{}
	// Run posted actions synchronously: tests don't need the real bus.
	p := NewStdoutParser(func(action func()) { action() })
	p.OnAtPrompt = func(id int) { rec.prompts = append(rec.prompts, id) }
	p.OnBranches = func(stepCount int, children []int) {
		rec.branches = append(rec.branches, branchEvent{stepCount, append([]int(nil), children...)})
	}
	p.OnProofEnd = func(stepCount int) { rec.proofEnd = append(rec.proofEnd, stepCount) }
	p.OnKonfig = func(nodeID int, lines []string) {
		rec.konfigs = append(rec.konfigs, konfigEvent{nodeID, append([]string(nil), lines...)})
	}
	return p, rec
}

const prefix = "\x00\xff\x00"

func TestScenarioStartup(t *testing.T) {
	p, rec := newRecordingParser()
	p.FeedMany([]byte("\nKore (" + prefix + "0" + prefix + ")> "))

	require.Equal(t, []int{0}, rec.prompts)
}

func TestScenarioLinearStep(t *testing.T) {
	p, rec := newRecordingParser()
	p.FeedMany([]byte("\nKore (" + prefix + "0" + prefix + ")> "))
	p.PrepareForStep()
	p.FeedMany([]byte("\nKore (" + prefix + "1" + prefix + ")> "))

	require.Equal(t, []int{0, 1}, rec.prompts)
}

func TestScenarioBranching(t *testing.T) {
	p, rec := newRecordingParser()
	p.PrepareForStep()
	input := "\nStopped after " + prefix + "3" + prefix +
		" step(s) due to branching on [" +
		prefix + "2" + prefix + "," +
		prefix + "3" + prefix + "," +
		prefix + "4" + prefix + "]" +
		"\n\nKore (" + prefix + "1" + prefix + ")> "
	p.FeedMany([]byte(input))

	require.Len(t, rec.branches, 1)
	assert.Equal(t, 3, rec.branches[0].stepCount)
	assert.Equal(t, []int{2, 3, 4}, rec.branches[0].children)
	assert.Equal(t, []int{1}, rec.prompts)
}

func TestScenarioProofEndStuck(t *testing.T) {
	p, rec := newRecordingParser()
	p.PrepareForStep()
	input := "\nStopped after " + prefix + "5" + prefix +
		" step(s) due to reaching end of proof on current branch." +
		"\n\nKore (" + prefix + "7" + prefix + ")> "
	p.FeedMany([]byte(input))

	require.Equal(t, []int{5}, rec.proofEnd)
	require.Equal(t, []int{7}, rec.prompts)
}

func TestScenarioConfigurationDump(t *testing.T) {
	p, rec := newRecordingParser()
	p.PrepareForKonfig()
	input := "\nConfig at node " + prefix + "7" + prefix + " is:\n" +
		"foo\nbar\n" +
		"\nKore (" + prefix + "7" + prefix + ")> "
	p.FeedMany([]byte(input))

	require.Len(t, rec.konfigs, 1)
	assert.Equal(t, 7, rec.konfigs[0].nodeID)
	assert.Equal(t, []string{"foo", "bar"}, rec.konfigs[0].lines)
	assert.Equal(t, []int{7}, rec.prompts)
}

func TestScenarioConfigurationDumpAppliesNormalize(t *testing.T) {
	p, rec := newRecordingParser()
	calls := 0
	p.Normalize = func(lines []string) []string {
		calls++
		return append([]string{"NORMALIZED"}, lines...)
	}
	p.PrepareForKonfig()
	input := "\nConfig at node " + prefix + "1" + prefix + " is:\n" +
		"x\n" +
		"\nKore (" + prefix + "1" + prefix + ")> "
	p.FeedMany([]byte(input))

	require.Equal(t, 1, calls)
	require.Len(t, rec.konfigs, 1)
	assert.Equal(t, []string{"NORMALIZED", "x"}, rec.konfigs[0].lines)
}

func TestFramingRoundTripAcrossChunkBoundaries(t *testing.T) {
	input := "\nKore (" + prefix + "0" + prefix + ")> "
	p, rec := newRecordingParser()
	for i := 0; i < len(input); i++ {
		p.Feed(input[i])
	}
	assert.Equal(t, []int{0}, rec.prompts)

	// Chunk size must not change emitted events: feed byte-by-byte is
	// already the finest granularity, so this exercises FeedMany against
	// a differently-constructed parser for the same input.
	p2, rec2 := newRecordingParser()
	p2.FeedMany([]byte(input))
	assert.Equal(t, rec.prompts, rec2.prompts)
}
