package uigraph

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSVG = `<svg>
<g id="graph0">
<g class="node">
<title>0</title>
<text>0</text>
</g>
<g class="node">
<title>1</title>
<text>1</text>
</g>
<g class="edge">
<title>0&#45;&gt;1</title>
<text>step</text>
</g>
</g>
</svg>`

func TestParseGraphSVGBuildsForwardEdges(t *testing.T) {
	graph, err := ParseGraphSVG(sampleSVG)
	require.NoError(t, err)
	want := Graph{0: {1: "step"}}
	if diff := cmp.Diff(want, graph); diff != "" {
		t.Errorf("graph mismatch (-want +got):\n%s", diff)
	}
}

func TestParseGraphSVGRejectsEdgeToUnknownNode(t *testing.T) {
	bad := `<svg><g id="graph0"><g class="edge"><title>0&#45;&gt;9</title><text>x</text></g></g></svg>`
	_, err := ParseGraphSVG(bad)
	assert.Error(t, err)
}

func TestUIGraphIncomingEdgeReflectsLatestGraph(t *testing.T) {
	g := New()
	_, ok := g.IncomingEdge(1)
	assert.False(t, ok)

	g.SetGraph(Graph{0: {1: "step"}})
	label, ok := g.IncomingEdge(1)
	require.True(t, ok)
	assert.Equal(t, "step", label)

	_, ok = g.IncomingEdge(0)
	assert.False(t, ok)
}

func TestUIGraphNotifiesListenersOnSetGraph(t *testing.T) {
	g := New()
	calls := 0
	g.AddChangeListener(ChangeListenerFunc(func() { calls++ }))

	g.SetGraph(Graph{0: {1: "step"}})
	assert.Equal(t, 1, calls)

	g.SetGraph(Graph{})
	assert.Equal(t, 2, calls)
}
