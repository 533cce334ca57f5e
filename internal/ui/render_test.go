package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/virgil-serbanuta/kdebug/internal/prooftree"
)

func TestRenderShowsTreeChainAndKonfig(t *testing.T) {
	tr := prooftree.New(0)
	tr.AddChild(0, 1)
	tr.SetKonfig(1, []string{"<k> X </k>"})
	nav := NewNavigator(tr)
	nav.Handle(KeyDown)

	var buf bytes.Buffer
	Render(&buf, tr, nav)

	out := buf.String()
	assert.Contains(t, out, "Proof tree")
	assert.Contains(t, out, "> 1")
	assert.Contains(t, out, "Configuration chain")
	assert.Contains(t, out, "0 -> 1")
	assert.Contains(t, out, "Configuration at 1")
	assert.Contains(t, out, "<k> X </k>")
}

func TestRenderUnfetchedKonfigSaysSo(t *testing.T) {
	tr := prooftree.New(0)
	nav := NewNavigator(tr)

	var buf bytes.Buffer
	Render(&buf, tr, nav)

	assert.Contains(t, buf.String(), "(not fetched yet)")
}
