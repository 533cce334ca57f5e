package konfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBuildsNestedBlockFromIndentation(t *testing.T) {
	items := parse([]string{
		"<k>",
		"  foo",
		"  bar",
		"</k>",
	})

	require.Len(t, items, 3)
	assert.Equal(t, "<k>", items[0])
	sub, ok := items[1].(Items)
	require.True(t, ok)
	assert.Equal(t, Items{"foo", "bar"}, sub)
	assert.Equal(t, "</k>", items[2])
}

func TestTransformJoinCollapsesBareStringRun(t *testing.T) {
	items := Items{"a", "b", "c"}
	out, ok := transformJoin(items)
	require.True(t, ok)
	assert.Equal(t, Items{"a b c"}, out)
}

func TestTransformJoinDeclinesWhenSiblingIsNested(t *testing.T) {
	items := Items{"a", Items{"b"}}
	_, ok := transformJoin(items)
	assert.False(t, ok)
}

func TestTransformEqualsCollapsesTriple(t *testing.T) {
	items := Items{Items{"X"}, "#Equals", Items{"Y"}}
	out, ok := transformEquals(items)
	require.True(t, ok)
	assert.Equal(t, Items{"X :==: Y"}, out)
}

func TestTransformBracketedAppliesEqualsInside(t *testing.T) {
	items := Items{
		"SubstOrNil {",
		Items{"X"}, "#Equals", Items{"Y"},
		"}",
	}
	out, ok := transformBracketed(items, transformEquals)
	require.True(t, ok)
	assert.Equal(t, Items{"SubstOrNil", Items{"X :==: Y"}, ""}, out)
}

func TestTransformAndCollapsesSingletonArgument(t *testing.T) {
	items := Items{"#And", Items{"foo"}}
	out, _ := transformAnd(items)
	assert.Equal(t, Items{"#And foo"}, out)
}

func TestTransformAndLeavesMultiAndGroupForCaller(t *testing.T) {
	items := Items{"#And", Items{"foo"}, "#And", Items{"bar"}}
	out, _ := transformAnd(items)
	// Neither #And is followed-and-collapsed since each is itself
	// immediately followed by another #And marker.
	assert.Equal(t, items, out)
}

func TestNormalizeCollapsesEqualsInsideBrackets(t *testing.T) {
	lines := []string{
		"SubstOrNil {",
		"    X",
		"  #Equals",
		"    Y",
		"}",
	}
	out := Normalize(lines)
	assert.Equal(t, Items{"SubstOrNil", Items{"X :==: Y"}, ""}, out)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	lines := []string{
		"<k>",
		"  foo ~> bar",
		"</k>",
		"SubstOrNil {",
		"    X",
		"  #Equals",
		"    Y",
		"}",
	}
	first := Normalize(lines)
	reRendered := Render(first)
	second := Normalize(reRendered)
	assert.Equal(t, first, second)
}
