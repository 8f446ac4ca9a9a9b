package configurator

import "context"

// LoadRequest asks the backend for the full configurator state of a main
// product template.
type LoadRequest struct {
	TemplateID          uint
	CurrencyID          uint
	Quantity            float64
	UOMID               uint
	CompanyID           uint
	PreselectedValueIDs []uint
	MainProductOnly     bool
}

// LoadResult carries the main product (first element of Products) and the
// initially available optional products.
type LoadResult struct {
	Products         []*Product
	OptionalProducts []*Product
}

// UpdateRequest asks the backend to re-derive price and display fields for
// a combination.
type UpdateRequest struct {
	TemplateID  uint
	Combination []uint
	CurrencyID  uint
	Quantity    float64
	UOMID       uint
	CompanyID   uint
}

// PricingResult is the server-derived side of a combination.
type PricingResult struct {
	Price       float64
	DisplayName string
}

// OptionalRequest asks the backend for the optional products of a template
// given its current and ancestor combinations.
type OptionalRequest struct {
	TemplateID          uint
	Combination         []uint
	AncestorCombination []uint
	CurrencyID          uint
	CompanyID           uint
}

// ReferenceRecord is a resolved m2o record. Width is nil when the record
// carries no width, in which case no autofill happens.
type ReferenceRecord struct {
	ID    uint
	Name  string
	Width *float64
}

// Collaborator is the remote pricing/combination/variant backend the
// session suspends on. Implementations must be safe for sequential use
// from a single session; the session never calls it concurrently.
type Collaborator interface {
	ConfiguratorValues(ctx context.Context, req LoadRequest) (*LoadResult, error)
	CreateVariant(ctx context.Context, templateID uint, combination []uint) (uint, error)
	UpdateCombination(ctx context.Context, req UpdateRequest) (*PricingResult, error)
	OptionalProducts(ctx context.Context, req OptionalRequest) ([]*Product, error)
	ResolveReference(ctx context.Context, model string, resID uint) (*ReferenceRecord, error)
	Submit(ctx context.Context, payload *SubmissionPayload) error
}
