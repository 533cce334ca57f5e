package uigraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTagsOpenCloseAndText(t *testing.T) {
	tags, err := ParseTags(`<g id="a"><title>1</title></g>`)
	require.NoError(t, err)
	require.Len(t, tags, 5)

	assert.Equal(t, TagOpen, tags[0].Kind)
	assert.Equal(t, "g", tags[0].Name)
	require.Len(t, tags[0].Attributes, 1)
	assert.Equal(t, TagAttribute{Name: "id", Value: "a", HasValue: true}, tags[0].Attributes[0])

	assert.Equal(t, TagOpen, tags[1].Kind)
	assert.Equal(t, "title", tags[1].Name)

	assert.Equal(t, TagText, tags[2].Kind)
	assert.Equal(t, "1", tags[2].Text)

	assert.Equal(t, TagClose, tags[3].Kind)
	assert.Equal(t, "title", tags[3].Name)

	assert.Equal(t, TagClose, tags[4].Kind)
	assert.Equal(t, "g", tags[4].Name)
}

func TestParseTagsSelfClosing(t *testing.T) {
	tags, err := ParseTags(`<polygon fill="none" stroke="black"/>`)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, TagOpenClose, tags[0].Kind)
	assert.Equal(t, "polygon", tags[0].Name)
	require.Len(t, tags[0].Attributes, 2)
}

func TestParseTagsSkipsComments(t *testing.T) {
	tags, err := ParseTags(`before<!-- a comment --><g></g>after`)
	require.NoError(t, err)
	require.Len(t, tags, 4)
	assert.Equal(t, "before", tags[0].Text)
	assert.Equal(t, TagOpen, tags[1].Kind)
	assert.Equal(t, TagClose, tags[2].Kind)
	assert.Equal(t, "after", tags[3].Text)
}

func TestParseTagsSpecialTag(t *testing.T) {
	tags, err := ParseTags(`<?xml version="1.0"?><svg></svg>`)
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, TagSpecial, tags[0].Kind)
	assert.Equal(t, `<?xml version="1.0"?>`, tags[0].Text)
}

func TestParseTagsRejectsGarbageAfterLT(t *testing.T) {
	_, err := ParseTags(`<$bad>`)
	assert.Error(t, err)
}
