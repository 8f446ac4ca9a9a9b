package configurator

// Combination returns the ordered list of selected value ids across all
// attribute lines of the product. Pure read; no side effects.
func Combination(p *Product) []uint {
	combination := make([]uint, 0, len(p.Lines))
	for _, line := range p.Lines {
		combination = append(combination, line.SelectedValueIDs...)
	}
	return combination
}

// AncestorCombination flattens the combinations of every ancestor reachable
// through parent template ids. A visited set guards against shared ancestors
// and pathological cycles.
func AncestorCombination(g *Graph, p *Product) []uint {
	visited := make(map[uint]bool)
	return ancestorCombination(g, p, visited)
}

func ancestorCombination(g *Graph, p *Product, visited map[uint]bool) []uint {
	var combined []uint
	for _, parentID := range p.ParentTemplateIDs {
		if visited[parentID] {
			continue
		}
		visited[parentID] = true
		parent := g.Find(parentID)
		if parent == nil {
			continue
		}
		combined = append(combined, Combination(parent)...)
		combined = append(combined, ancestorCombination(g, parent, visited)...)
	}
	return combined
}

func containsID(ids []uint, id uint) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
