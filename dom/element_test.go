package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClosest_FindsSelfAndAncestor(t *testing.T) {
	root := NewNode("body")
	card := root.Append(NewNode("div").SetAttr("data-animation-id", "home_card_click_highlight_001"))
	label := card.Append(NewNode("span"))

	got := Closest(label, "data-animation-id")
	require.NotNil(t, got)
	id, ok := got.Attr("data-animation-id")
	assert.True(t, ok)
	assert.Equal(t, "home_card_click_highlight_001", id)

	assert.Same(t, card, Closest(card, "data-animation-id"))
}

func TestClosest_NoMarker(t *testing.T) {
	root := NewNode("body")
	leaf := root.Append(NewNode("div")).Append(NewNode("span"))

	assert.Nil(t, Closest(leaf, "data-animation-id"))
	assert.Nil(t, root.ParentElement())
}

func TestNode_Classes(t *testing.T) {
	n := NewNode("div")
	n.AddClass("active")
	n.AddClass("active")
	assert.Equal(t, []string{"active"}, n.Classes())

	assert.False(t, n.ToggleClass("active"))
	assert.False(t, n.HasClass("active"))
	assert.True(t, n.ToggleClass("hover"))

	n.RemoveClass("hover")
	assert.Empty(t, n.Classes())
}

func TestNode_StyleAndWalk(t *testing.T) {
	root := NewNode("body")
	a := root.Append(NewNode("a"))
	a.Append(NewNode("i"))

	a.SetStyle("opacity", "0.5")
	assert.Equal(t, "0.5", a.Style("opacity"))
	a.SetStyle("opacity", "")
	assert.Empty(t, a.Style("opacity"))

	var tags []string
	root.Walk(func(n *Node) { tags = append(tags, n.Tag()) })
	assert.Equal(t, []string{"body", "a", "i"}, tags)
}
