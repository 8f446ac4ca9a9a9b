package configurator

// ResolveExclusions recomputes the excluded flag on every value of the
// product and cascades to its dependent children. Flags are always fully
// reset first; nothing is patched incrementally.
func ResolveExclusions(g *Graph, p *Product) {
	checked := make(map[uint]bool)
	resolveExclusions(g, p, checked)
}

func resolveExclusions(g *Graph, p *Product, checked map[uint]bool) {
	combination := Combination(p)
	ancestorCombination := AncestorCombination(g, p)

	for _, line := range p.Lines {
		for _, value := range line.Values {
			value.Excluded = false
		}
	}

	// Direct exclusions: each selected value disables its listed partners.
	for _, selectedID := range combination {
		for _, excludedID := range p.Exclusions[selectedID] {
			if v := p.ValueByID(excludedID); v != nil {
				v.Excluded = true
			}
		}
	}

	// Parent exclusions, evaluated against the ancestor combination.
	for _, parentID := range ancestorCombination {
		for _, excludedID := range p.ParentExclusions[parentID] {
			if v := p.ValueByID(excludedID); v != nil {
				v.Excluded = true
			}
		}
	}

	// Archived combinations: a full match disables every shared value, a
	// near-miss (all but one element shared) disables the one value that
	// would complete the archived combination. Each archived entry marks
	// independently; overlapping matches union their exclusions.
	for _, archived := range p.ArchivedCombinations {
		var common []uint
		for _, id := range archived {
			if containsID(combination, id) {
				common = append(common, id)
			}
		}
		switch {
		case len(common) == len(combination):
			for _, id := range common {
				if v := p.ValueByID(id); v != nil {
					v.Excluded = true
				}
			}
		case len(common) == len(combination)-1:
			for _, id := range archived {
				if !containsID(combination, id) {
					if v := p.ValueByID(id); v != nil {
						v.Excluded = true
					}
					break
				}
			}
		}
	}

	// The ancestor combination of every dependent child changed with this
	// product, so children are re-resolved too. The checked set stops a
	// child reachable through multiple parents from being processed twice.
	checked[p.TemplateID] = true
	for _, child := range g.Children(p.TemplateID) {
		if !checked[child.TemplateID] {
			resolveExclusions(g, child, checked)
		}
	}
}

// IsPossibleCombination reports whether no selected value on any line of
// the product is currently excluded. It gates both live re-pricing and
// final submission.
func IsPossibleCombination(p *Product) bool {
	for _, line := range p.Lines {
		for _, selected := range line.SelectedValues() {
			if selected.Excluded {
				return false
			}
		}
	}
	return true
}
