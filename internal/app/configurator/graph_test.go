package configurator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func simpleProduct(templateID uint, parents ...uint) *Product {
	return &Product{
		TemplateID:        templateID,
		DisplayName:       "product",
		Quantity:          1,
		ParentTemplateIDs: parents,
	}
}

func TestGraph_Main(t *testing.T) {
	g := &Graph{
		Active: []*Product{
			simpleProduct(1),
			simpleProduct(2, 1),
		},
	}

	main := g.Main()
	require.NotNil(t, main)
	assert.Equal(t, uint(1), main.TemplateID)
}

func TestGraph_AttachMovesCandidateToActive(t *testing.T) {
	g := &Graph{
		Active:     []*Product{simpleProduct(1)},
		Candidates: []*Product{simpleProduct(2, 1)},
	}

	p, err := g.Attach(2)
	require.NoError(t, err)
	assert.Equal(t, uint(2), p.TemplateID)
	assert.True(t, g.IsActive(2))
	assert.Empty(t, g.Candidates)
}

func TestGraph_AttachUnknownTemplate(t *testing.T) {
	g := &Graph{Active: []*Product{simpleProduct(1)}}

	_, err := g.Attach(99)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestGraph_AttachAlreadyActive(t *testing.T) {
	g := &Graph{
		Active: []*Product{simpleProduct(1), simpleProduct(2, 1)},
	}

	_, err := g.Attach(2)
	assert.ErrorIs(t, err, ErrGraphInconsistent)
}

func TestGraph_DetachRefusesMainProduct(t *testing.T) {
	g := &Graph{Active: []*Product{simpleProduct(1)}}

	err := g.Detach(1)
	assert.ErrorIs(t, err, ErrGraphInconsistent)
}

func TestGraph_DetachCascadesToOrphanedChildren(t *testing.T) {
	// 1 -> 2 -> 3, all active. Detaching 2 orphans 3, which must be
	// detached as well but stay available as a candidate.
	g := &Graph{
		Active: []*Product{
			simpleProduct(1),
			simpleProduct(2, 1),
			simpleProduct(3, 2),
		},
	}

	require.NoError(t, g.Detach(2))

	assert.False(t, g.IsActive(2))
	assert.False(t, g.IsActive(3))
	assert.NotNil(t, g.Find(2))
	assert.NotNil(t, g.Find(3))
	assert.Len(t, g.Active, 1)
	assert.Len(t, g.Candidates, 2)
}

func TestGraph_DetachKeepsChildWithSurvivingParent(t *testing.T) {
	// 3 hangs off both 1 and 2. Detaching 2 must keep 3 active under 1.
	g := &Graph{
		Active: []*Product{
			simpleProduct(1),
			simpleProduct(2, 1),
			simpleProduct(3, 1, 2),
		},
	}

	require.NoError(t, g.Detach(2))

	assert.True(t, g.IsActive(3))
	child := g.Find(3)
	require.NotNil(t, child)
	assert.Equal(t, []uint{1}, child.ParentTemplateIDs)
}

func TestGraph_DetachPreservesPartition(t *testing.T) {
	// Every product starts in exactly one list and must end in exactly
	// one list, regardless of which subtree gets detached.
	g := &Graph{
		Active: []*Product{
			simpleProduct(1),
			simpleProduct(2, 1),
			simpleProduct(3, 2),
			simpleProduct(4, 2),
		},
		Candidates: []*Product{simpleProduct(5, 1)},
	}
	total := len(g.Active) + len(g.Candidates)

	require.NoError(t, g.Detach(2))

	assert.Equal(t, total, len(g.Active)+len(g.Candidates))
	seen := make(map[uint]int)
	for _, p := range g.Active {
		seen[p.TemplateID]++
	}
	for _, p := range g.Candidates {
		seen[p.TemplateID]++
	}
	for id, count := range seen {
		assert.Equal(t, 1, count, "template %d appears %d times", id, count)
	}
}

func TestGraph_ChildrenCoversBothLists(t *testing.T) {
	g := &Graph{
		Active:     []*Product{simpleProduct(1), simpleProduct(2, 1)},
		Candidates: []*Product{simpleProduct(3, 1)},
	}

	children := g.Children(1)
	assert.Len(t, children, 2)
}
