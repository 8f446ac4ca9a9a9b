package configurator

import "errors"

var (
	// ErrProductNotFound is returned when a template id resolves to no
	// product in either list.
	ErrProductNotFound = errors.New("product not found in configuration")

	// ErrGraphInconsistent marks a violated graph invariant. This is a
	// programming error, not a user-recoverable condition.
	ErrGraphInconsistent = errors.New("product graph inconsistent")
)

// Graph holds the partition of known optional products into active
// (attached) and candidate (available) lists, plus the main product, which
// is always active. Attach and Detach are the only operations allowed to
// move a product between the two lists.
type Graph struct {
	Active     []*Product `json:"products"`
	Candidates []*Product `json:"optional_products"`
}

// Main returns the active product with no parents. Exactly one must exist.
func (g *Graph) Main() *Product {
	for _, p := range g.Active {
		if len(p.ParentTemplateIDs) == 0 {
			return p
		}
	}
	return nil
}

// Find looks a product up in both lists.
func (g *Graph) Find(templateID uint) *Product {
	for _, p := range g.Active {
		if p.TemplateID == templateID {
			return p
		}
	}
	for _, p := range g.Candidates {
		if p.TemplateID == templateID {
			return p
		}
	}
	return nil
}

// IsActive reports whether the template is currently attached.
func (g *Graph) IsActive(templateID uint) bool {
	for _, p := range g.Active {
		if p.TemplateID == templateID {
			return true
		}
	}
	return false
}

// Children returns every known product, attached or not, that lists the
// given template among its parents.
func (g *Graph) Children(templateID uint) []*Product {
	var children []*Product
	for _, p := range g.Active {
		if p.HasParent(templateID) {
			children = append(children, p)
		}
	}
	for _, p := range g.Candidates {
		if p.HasParent(templateID) {
			children = append(children, p)
		}
	}
	return children
}

// Attach promotes a candidate to the active list. Discovery of the
// product's own optional products is the session's responsibility.
func (g *Graph) Attach(templateID uint) (*Product, error) {
	for i, p := range g.Candidates {
		if p.TemplateID == templateID {
			g.Candidates = append(g.Candidates[:i], g.Candidates[i+1:]...)
			g.Active = append(g.Active, p)
			return p, nil
		}
	}
	if g.IsActive(templateID) {
		return nil, ErrGraphInconsistent
	}
	return nil, ErrProductNotFound
}

// Detach demotes an active product to candidate and removes it from every
// child's parent list. Children left without parents are detached
// recursively; a processed set keeps the cascade from revisiting a child
// reachable through several parents. The main product is never detachable.
func (g *Graph) Detach(templateID uint) error {
	main := g.Main()
	if main != nil && main.TemplateID == templateID {
		return ErrGraphInconsistent
	}
	processed := make(map[uint]bool)
	return g.detach(templateID, processed)
}

func (g *Graph) detach(templateID uint, processed map[uint]bool) error {
	if processed[templateID] {
		return nil
	}
	processed[templateID] = true

	found := false
	for i, p := range g.Active {
		if p.TemplateID == templateID {
			g.Active = append(g.Active[:i], g.Active[i+1:]...)
			g.Candidates = append(g.Candidates, p)
			found = true
			break
		}
	}
	if !found {
		return ErrProductNotFound
	}

	for _, child := range g.Children(templateID) {
		parents := child.ParentTemplateIDs[:0]
		for _, id := range child.ParentTemplateIDs {
			if id != templateID {
				parents = append(parents, id)
			}
		}
		child.ParentTemplateIDs = parents
		if len(child.ParentTemplateIDs) == 0 && g.IsActive(child.TemplateID) {
			if err := g.detach(child.TemplateID, processed); err != nil {
				return err
			}
		}
	}
	return nil
}
