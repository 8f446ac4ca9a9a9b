package configurator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombination_FlattensAllLines(t *testing.T) {
	p := colorSizeProduct(1)
	p.Lines[0].SelectedValueIDs = []uint{1}
	p.Lines[1].SelectedValueIDs = []uint{3, 4}

	assert.Equal(t, []uint{1, 3, 4}, Combination(p))
}

func TestCombination_EmptySelection(t *testing.T) {
	p := colorSizeProduct(1)
	assert.Empty(t, Combination(p))
}

func TestAncestorCombination_WalksParentChain(t *testing.T) {
	grand := colorSizeProduct(1)
	grand.Lines[0].SelectedValueIDs = []uint{1}
	parent := colorSizeProduct(2, 1)
	parent.Lines[1].SelectedValueIDs = []uint{4}
	child := colorSizeProduct(3, 2)
	g := &Graph{Active: []*Product{grand, parent, child}}

	combined := AncestorCombination(g, child)
	assert.ElementsMatch(t, []uint{4, 1}, combined)
}

func TestAncestorCombination_SharedAncestorCountedOnce(t *testing.T) {
	root := colorSizeProduct(1)
	root.Lines[0].SelectedValueIDs = []uint{2}
	left := colorSizeProduct(2, 1)
	right := colorSizeProduct(3, 1)
	child := colorSizeProduct(4, 2, 3)
	g := &Graph{Active: []*Product{root, left, right, child}}

	combined := AncestorCombination(g, child)
	assert.Equal(t, []uint{2}, combined)
}

func TestAncestorCombination_ToleratesCycle(t *testing.T) {
	a := colorSizeProduct(1, 2)
	a.Lines[0].SelectedValueIDs = []uint{1}
	b := colorSizeProduct(2, 1)
	b.Lines[0].SelectedValueIDs = []uint{2}
	g := &Graph{Active: []*Product{a, b}}

	combined := AncestorCombination(g, a)
	assert.Equal(t, []uint{2, 1}, combined)
}
