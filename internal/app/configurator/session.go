package configurator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mitbhavsaar/smart-crm-solutions/pkg/logger"
)

// State is the lifecycle state of a configuration session.
type State string

const (
	StateLoading         State = "loading"
	StateEditing         State = "editing"
	StateSubmitting      State = "submitting"
	StateClosedSaved     State = "closed_saved"
	StateClosedDiscarded State = "closed_discarded"
)

var (
	ErrSessionClosed   = errors.New("configuration session is closed")
	ErrNotEditing      = errors.New("configuration session is not in editing state")
	ErrMainMissing     = errors.New("configuration has no main product")
	ErrNotValidated    = errors.New("configuration failed validation")
	ErrRemoteOperation = errors.New("remote operation failed")
)

const widthAutofillAttribute = "width"

// lineRoles binds semantic attribute roles (width autofill target, gelcoat
// trigger, gelcoat required flag) to concrete line ids. Roles are resolved
// once per product at load time instead of re-matching names on every
// access.
type lineRoles struct {
	widthLineID           uint
	gelcoatTriggerLineID  uint
	gelcoatRequiredLineID uint
}

// Session is the root aggregate of one configuration interaction: the
// product graph, per-line side payloads, and the collaborator used for
// re-pricing, variant creation and submission. A session is not safe for
// concurrent use; callers serialize access to it.
type Session struct {
	ID             string    `json:"id"`
	LeadID         uint      `json:"lead_id"`
	MainTemplateID uint      `json:"main_product_tmpl_id"`
	CurrencyID     uint      `json:"currency_id"`
	CompanyID      uint      `json:"company_id"`
	UOMID          uint      `json:"uom_id"`
	State          State     `json:"state"`
	Graph          *Graph    `json:"graph"`
	LastError      string    `json:"last_error,omitempty"`
	TouchedAt      time.Time `json:"touched_at"`

	collab           Collaborator
	fileUploads      map[LineKey]FilePayload
	conditionalFiles map[LineKey]FilePayload
	m2oSelections    map[LineKey]uint
	roles            map[uint]lineRoles
	editSeq          map[uint]uint64
}

// OpenOptions parameterizes session creation.
type OpenOptions struct {
	SessionID           string
	LeadID              uint
	TemplateID          uint
	CurrencyID          uint
	CompanyID           uint
	UOMID               uint
	Quantity            float64
	PreselectedValueIDs []uint
	CustomValues        map[uint]string // value id -> custom text
	Edit                bool            // edit-existing loads the main product only
}

// Open loads the initial state from the collaborator and returns a session
// in the editing state.
func Open(ctx context.Context, collab Collaborator, opts OpenOptions) (*Session, error) {
	s := &Session{
		ID:               opts.SessionID,
		LeadID:           opts.LeadID,
		MainTemplateID:   opts.TemplateID,
		CurrencyID:       opts.CurrencyID,
		CompanyID:        opts.CompanyID,
		UOMID:            opts.UOMID,
		State:            StateLoading,
		collab:           collab,
		fileUploads:      make(map[LineKey]FilePayload),
		conditionalFiles: make(map[LineKey]FilePayload),
		m2oSelections:    make(map[LineKey]uint),
		roles:            make(map[uint]lineRoles),
		editSeq:          make(map[uint]uint64),
	}

	result, err := collab.ConfiguratorValues(ctx, LoadRequest{
		TemplateID:          opts.TemplateID,
		CurrencyID:          opts.CurrencyID,
		Quantity:            opts.Quantity,
		UOMID:               opts.UOMID,
		CompanyID:           opts.CompanyID,
		PreselectedValueIDs: opts.PreselectedValueIDs,
		MainProductOnly:     opts.Edit,
	})
	if err != nil {
		return nil, err
	}

	s.Graph = &Graph{Active: result.Products, Candidates: result.OptionalProducts}
	if s.Graph.Main() == nil {
		return nil, ErrMainMissing
	}

	for _, p := range append(append([]*Product{}, s.Graph.Active...), s.Graph.Candidates...) {
		s.roles[p.TemplateID] = resolveRoles(p)
	}

	s.applyDefaultSelections()

	for valueID, text := range opts.CustomValues {
		s.SetCustomValue(opts.TemplateID, valueID, text)
	}

	ResolveExclusions(s.Graph, s.Graph.Main())
	s.State = StateEditing
	s.touch()
	return s, nil
}

// resolveRoles maps the fragile name conventions of the catalog to stable
// line ids, once.
func resolveRoles(p *Product) lineRoles {
	var roles lineRoles
	for _, line := range p.Lines {
		name := strings.ToLower(line.Attribute.Name)
		if name == widthAutofillAttribute && roles.widthLineID == 0 {
			roles.widthLineID = line.ID
		}
		if strings.Contains(name, "gel coat req") || strings.Contains(name, "gelcoat req") {
			if roles.gelcoatTriggerLineID == 0 {
				roles.gelcoatTriggerLineID = line.ID
			}
			continue
		}
		if line.Attribute.IsGelcoatRequired && roles.gelcoatRequiredLineID == 0 {
			roles.gelcoatRequiredLineID = line.ID
		}
	}
	return roles
}

// applyDefaultSelections seeds selections the catalog expects to be
// present: the default thickness on the main product, and the single value
// of any one-value non-m2o line.
func (s *Session) applyDefaultSelections() {
	main := s.Graph.Main()
	for _, line := range main.Lines {
		if strings.EqualFold(line.Attribute.Name, "thickness") && len(line.SelectedValueIDs) == 0 {
			for _, v := range line.Values {
				if v.Name == "5-7" {
					line.SelectedValueIDs = []uint{v.ID}
					break
				}
			}
		}
	}

	for _, p := range s.Graph.Active {
		selectSingleValueLines(p)
	}
	for _, p := range s.Graph.Candidates {
		selectSingleValueLines(p)
	}
}

// selectSingleValueLines picks the only value of every one-value non-m2o
// line that has no selection yet. Candidates get this too, so a later
// attach starts from a complete selection.
func selectSingleValueLines(p *Product) {
	for _, line := range p.Lines {
		if len(line.Values) == 1 && len(line.SelectedValueIDs) == 0 &&
			line.Attribute.DisplayType != DisplayM2O {
			line.SelectedValueIDs = []uint{line.Values[0].ID}
		}
	}
}

func (s *Session) touch() {
	s.TouchedAt = time.Now()
}

// Closed reports whether the session has reached a terminal state.
func (s *Session) Closed() bool {
	return s.State == StateClosedSaved || s.State == StateClosedDiscarded
}

func (s *Session) ensureEditing() error {
	if s.Closed() {
		return ErrSessionClosed
	}
	if s.State != StateEditing {
		return ErrNotEditing
	}
	return nil
}

// bumpSeq advances the product's edit sequence and returns the new value.
// Responses tagged with an older sequence are stale and must be dropped.
func (s *Session) bumpSeq(templateID uint) uint64 {
	s.editSeq[templateID]++
	return s.editSeq[templateID]
}

func (s *Session) seqCurrent(templateID uint, seq uint64) bool {
	return s.editSeq[templateID] == seq
}

// SelectValue toggles (multi) or replaces (single) the selection on a
// line, re-resolves exclusions over the product's subtree, and re-prices
// only if the resulting combination is legal. For an unsaved product whose
// lines all use the always-variant policy, the legal combination is
// archived immediately so the next pick cannot repeat it.
func (s *Session) SelectValue(ctx context.Context, templateID, lineID, valueID uint, multiAllowed bool) error {
	if err := s.ensureEditing(); err != nil {
		return err
	}
	product := s.Graph.Find(templateID)
	if product == nil {
		return ErrProductNotFound
	}
	line := product.LineByID(lineID)
	if line == nil {
		return ErrProductNotFound
	}

	if multiAllowed {
		if line.IsSelected(valueID) {
			kept := line.SelectedValueIDs[:0]
			for _, id := range line.SelectedValueIDs {
				if id != valueID {
					kept = append(kept, id)
				}
			}
			line.SelectedValueIDs = kept
		} else {
			line.SelectedValueIDs = append(line.SelectedValueIDs, valueID)
		}
	} else {
		line.SelectedValueIDs = []uint{valueID}
	}

	ResolveExclusions(s.Graph, product)
	s.touch()

	if !IsPossibleCombination(product) {
		return nil
	}

	seq := s.bumpSeq(templateID)
	if err := s.reprice(ctx, product, product.Quantity, seq); err != nil {
		return err
	}

	if product.ID == 0 && s.allLinesAlwaysVariant(product) {
		combination := Combination(product)
		product.ArchivedCombinations = append(product.ArchivedCombinations, combination)
		ResolveExclusions(s.Graph, product)
	}
	return nil
}

func (s *Session) allLinesAlwaysVariant(p *Product) bool {
	for _, line := range p.Lines {
		if line.CreateVariant != VariantAlways {
			return false
		}
	}
	return len(p.Lines) > 0
}

// reprice refreshes price and display fields from the collaborator,
// discarding the response if the product was edited again while the call
// was in flight.
func (s *Session) reprice(ctx context.Context, product *Product, quantity float64, seq uint64) error {
	result, err := s.collab.UpdateCombination(ctx, UpdateRequest{
		TemplateID:  product.TemplateID,
		Combination: Combination(product),
		CurrencyID:  s.CurrencyID,
		Quantity:    quantity,
		UOMID:       s.UOMID,
		CompanyID:   s.CompanyID,
	})
	if err != nil {
		s.LastError = err.Error()
		logger.Error("Combination reprice failed", err, map[string]interface{}{
			"session_id":  s.ID,
			"template_id": product.TemplateID,
		})
		return ErrRemoteOperation
	}
	if !s.seqCurrent(product.TemplateID, seq) {
		logger.Debug("Dropping stale pricing response", map[string]interface{}{
			"session_id":  s.ID,
			"template_id": product.TemplateID,
		})
		return nil
	}
	product.Price = result.Price
	if result.DisplayName != "" {
		product.DisplayName = result.DisplayName
	}
	return nil
}

// SetQuantity updates a product's quantity. Zero or negative quantities
// clamp to one for the main product and detach optional products.
func (s *Session) SetQuantity(ctx context.Context, templateID uint, quantity float64) error {
	if err := s.ensureEditing(); err != nil {
		return err
	}
	product := s.Graph.Find(templateID)
	if product == nil {
		return ErrProductNotFound
	}

	if quantity <= 0 {
		if templateID == s.MainTemplateID {
			quantity = 1
		} else {
			s.touch()
			return s.Detach(templateID)
		}
	}

	seq := s.bumpSeq(templateID)
	if err := s.reprice(ctx, product, quantity, seq); err != nil {
		return err
	}
	if s.seqCurrent(templateID, seq) {
		product.Quantity = quantity
	}
	s.touch()
	return nil
}

// SetCustomValue attaches free text to the line on which the value is
// currently selected. Strictly-numeric lines only keep digits. No-op when
// the value is not selected anywhere on the product.
func (s *Session) SetCustomValue(templateID, valueID uint, text string) {
	product := s.Graph.Find(templateID)
	if product == nil {
		return
	}
	line := product.LineWithSelectedValue(valueID)
	if line == nil {
		return
	}
	if line.Attribute.DisplayType == DisplayNumeric {
		text = digitsOnly(text)
	}
	line.CustomValue = text
	s.touch()
}

func digitsOnly(text string) string {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Attach promotes a candidate optional product and discovers its own
// optional products. Newly discovered templates that are already known
// gain the attaching product as an extra parent instead of being
// duplicated.
func (s *Session) Attach(ctx context.Context, templateID uint) error {
	if err := s.ensureEditing(); err != nil {
		return err
	}
	product, err := s.Graph.Attach(templateID)
	if err != nil {
		return err
	}

	discovered, err := s.collab.OptionalProducts(ctx, OptionalRequest{
		TemplateID:          templateID,
		Combination:         Combination(product),
		AncestorCombination: AncestorCombination(s.Graph, product),
		CurrencyID:          s.CurrencyID,
		CompanyID:           s.CompanyID,
	})
	if err != nil {
		s.LastError = err.Error()
		logger.Error("Optional product discovery failed", err, map[string]interface{}{
			"session_id":  s.ID,
			"template_id": templateID,
		})
		return ErrRemoteOperation
	}

	for _, candidate := range discovered {
		if known := s.Graph.Find(candidate.TemplateID); known != nil {
			if !known.HasParent(templateID) {
				known.ParentTemplateIDs = append(known.ParentTemplateIDs, templateID)
			}
			continue
		}
		s.roles[candidate.TemplateID] = resolveRoles(candidate)
		selectSingleValueLines(candidate)
		s.Graph.Candidates = append(s.Graph.Candidates, candidate)
	}

	ResolveExclusions(s.Graph, product)
	s.touch()
	return nil
}

// Detach demotes an active optional product, cascading to children left
// without parents.
func (s *Session) Detach(templateID uint) error {
	if err := s.ensureEditing(); err != nil {
		return err
	}
	if err := s.Graph.Detach(templateID); err != nil {
		return err
	}
	ResolveExclusions(s.Graph, s.Graph.Main())
	s.touch()
	return nil
}

// SetFileUpload records or removes the uploaded file of a line. A nil
// payload removes the entry.
func (s *Session) SetFileUpload(templateID, lineID uint, payload *FilePayload) {
	key := LineKey{TemplateID: templateID, LineID: lineID}
	if payload == nil {
		delete(s.fileUploads, key)
	} else {
		s.fileUploads[key] = *payload
	}
	s.touch()
}

// SetConditionalFileUpload records or removes the conditional (value
// driven) file of a line.
func (s *Session) SetConditionalFileUpload(templateID, lineID uint, payload *FilePayload) {
	key := LineKey{TemplateID: templateID, LineID: lineID}
	if payload == nil {
		delete(s.conditionalFiles, key)
	} else {
		s.conditionalFiles[key] = *payload
	}
	s.touch()
}

// SetM2OValue records the external-reference selection of a line, mirrors
// it onto the selected value, and autofills the width line when the
// resolved record carries a width.
func (s *Session) SetM2OValue(ctx context.Context, templateID, lineID uint, resID *uint) error {
	if err := s.ensureEditing(); err != nil {
		return err
	}
	product := s.Graph.Find(templateID)
	if product == nil {
		return ErrProductNotFound
	}
	line := product.LineByID(lineID)
	if line == nil {
		return ErrProductNotFound
	}

	key := LineKey{TemplateID: templateID, LineID: lineID}
	if resID == nil {
		delete(s.m2oSelections, key)
		for _, v := range line.SelectedValues() {
			v.M2OResID = 0
		}
		s.touch()
		return nil
	}

	s.m2oSelections[key] = *resID
	for _, v := range line.SelectedValues() {
		v.M2OResID = *resID
	}
	s.touch()

	if line.Attribute.M2OModel == "" {
		return nil
	}
	record, err := s.collab.ResolveReference(ctx, line.Attribute.M2OModel, *resID)
	if err != nil {
		s.LastError = err.Error()
		logger.Error("External reference resolution failed", err, map[string]interface{}{
			"session_id": s.ID,
			"model":      line.Attribute.M2OModel,
			"res_id":     *resID,
		})
		return ErrRemoteOperation
	}
	if record != nil && record.Width != nil {
		s.autofillWidth(product, *record.Width)
	}
	return nil
}

// autofillWidth force-selects the custom slot of the product's width line
// and writes the derived width as its custom text, overwriting manual
// entry.
func (s *Session) autofillWidth(product *Product, width float64) {
	roles := s.roles[product.TemplateID]
	if roles.widthLineID == 0 {
		return
	}
	line := product.LineByID(roles.widthLineID)
	if line == nil {
		return
	}
	if custom := line.CustomValueTarget(); custom != nil {
		line.SelectedValueIDs = []uint{custom.ID}
	}
	line.CustomValue = formatNumber(width)
	logger.Debug("Width autofilled from referenced record", map[string]interface{}{
		"session_id":  s.ID,
		"template_id": product.TemplateID,
		"width":       width,
	})
}

// IsPossibleConfiguration reports whether every active product currently
// has a legal combination.
func (s *Session) IsPossibleConfiguration() bool {
	for _, p := range s.Graph.Active {
		if !IsPossibleCombination(p) {
			return false
		}
	}
	return true
}

// Submit validates, assembles the payload, hands it to the collaborator
// and closes the session. Any failure returns the session to editing with
// the previous state intact.
func (s *Session) Submit(ctx context.Context) (*SubmissionPayload, error) {
	if err := s.ensureEditing(); err != nil {
		return nil, err
	}
	if res := s.Validate(); !res.Valid {
		return nil, ErrNotValidated
	}

	s.State = StateSubmitting
	payload, err := s.BuildPayload(ctx)
	if err != nil {
		s.State = StateEditing
		return nil, err
	}
	if err := s.collab.Submit(ctx, payload); err != nil {
		s.State = StateEditing
		s.LastError = err.Error()
		logger.Error("Configuration submission failed", err, map[string]interface{}{
			"session_id": s.ID,
			"lead_id":    s.LeadID,
		})
		return nil, ErrRemoteOperation
	}
	s.State = StateClosedSaved
	s.touch()
	return payload, nil
}

// Discard closes the session without saving.
func (s *Session) Discard() {
	if !s.Closed() {
		s.State = StateClosedDiscarded
		s.touch()
	}
}
