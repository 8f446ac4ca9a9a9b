package configurator

// DisplayType controls how an attribute is rendered and which selection
// rules apply. The set is closed; selection handlers switch over it
// exhaustively.
type DisplayType string

const (
	DisplayColor      DisplayType = "color"
	DisplayMulti      DisplayType = "multi"
	DisplayPills      DisplayType = "pills"
	DisplayRadio      DisplayType = "radio"
	DisplaySelect     DisplayType = "select"
	DisplayFileUpload DisplayType = "file_upload"
	DisplayM2O        DisplayType = "m2o"
	DisplayNumeric    DisplayType = "strictly_numeric"
)

// MultiAllowed reports whether the display type permits more than one
// selected value on the same line.
func (d DisplayType) MultiAllowed() bool {
	return d == DisplayMulti
}

// VariantPolicy is the variant-creation policy of an attribute line.
type VariantPolicy string

const (
	VariantAlways  VariantPolicy = "always"
	VariantDynamic VariantPolicy = "dynamic"
	VariantNever   VariantPolicy = "no_variant"
)

// M2OOption is one selectable record for an m2o attribute line.
type M2OOption struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Attribute is the attribute metadata shared by every value on a line.
type Attribute struct {
	ID                 uint        `json:"id"`
	Name               string      `json:"name"`
	DisplayType        DisplayType `json:"display_type"`
	IsWidthCheck       bool        `json:"is_width_check"`
	PairWithPrevious   bool        `json:"pair_with_previous"`
	IsQuantity         bool        `json:"is_quantity"`
	IsGelcoatRequired  bool        `json:"is_gelcoat_required_flag"`
	M2OModel           string      `json:"m2o_model,omitempty"`
	M2OOptions         []M2OOption `json:"m2o_options,omitempty"`
}

// AttributeValue is one selectable value on an attribute line. Excluded is
// derived state, fully recomputed on every resolution pass.
type AttributeValue struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	HTMLColor    string `json:"html_color,omitempty"`
	IsCustom     bool   `json:"is_custom"`
	RequiredFile bool   `json:"required_file"`
	Excluded     bool   `json:"excluded"`
	M2OResID     uint   `json:"m2o_res_id,omitempty"`
}

// AttributeLine is one configurable attribute slot on a product, with its
// selectable values and the current selection.
type AttributeLine struct {
	ID               uint              `json:"id"`
	Attribute        Attribute         `json:"attribute"`
	Values           []*AttributeValue `json:"attribute_values"`
	SelectedValueIDs []uint            `json:"selected_attribute_value_ids"`
	CreateVariant    VariantPolicy     `json:"create_variant"`
	CustomValue      string            `json:"custom_value,omitempty"`
}

// ValueByID returns the value with the given id, or nil.
func (l *AttributeLine) ValueByID(id uint) *AttributeValue {
	for _, v := range l.Values {
		if v.ID == id {
			return v
		}
	}
	return nil
}

// SelectedValues returns the currently selected values on the line.
func (l *AttributeLine) SelectedValues() []*AttributeValue {
	var selected []*AttributeValue
	for _, id := range l.SelectedValueIDs {
		if v := l.ValueByID(id); v != nil {
			selected = append(selected, v)
		}
	}
	return selected
}

// IsSelected reports whether the given value id is selected on the line.
func (l *AttributeLine) IsSelected(id uint) bool {
	for _, sel := range l.SelectedValueIDs {
		if sel == id {
			return true
		}
	}
	return false
}

// CustomValueTarget returns the custom-capable value of the line, or nil.
func (l *AttributeLine) CustomValueTarget() *AttributeValue {
	for _, v := range l.Values {
		if v.IsCustom {
			return v
		}
	}
	return nil
}

// Product is one product being configured: the main product or an optional
// add-on. ID stays zero until a variant record exists for the current
// combination.
type Product struct {
	ID                   uint             `json:"id"`
	TemplateID           uint             `json:"product_tmpl_id"`
	DisplayName          string           `json:"display_name"`
	Description          string           `json:"description,omitempty"`
	Price                float64          `json:"price"`
	Quantity             float64          `json:"quantity"`
	Optional             bool             `json:"optional"`
	Lines                []*AttributeLine `json:"attribute_lines"`
	ParentTemplateIDs    []uint           `json:"parent_product_tmpl_ids"`
	Exclusions           map[uint][]uint  `json:"exclusions"`
	ParentExclusions     map[uint][]uint  `json:"parent_exclusions"`
	ArchivedCombinations [][]uint         `json:"archived_combinations"`
}

// LineByID returns the attribute line with the given id, or nil.
func (p *Product) LineByID(id uint) *AttributeLine {
	for _, l := range p.Lines {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// LineWithValue returns the line offering the given value id, or nil.
func (p *Product) LineWithValue(valueID uint) *AttributeLine {
	for _, l := range p.Lines {
		if l.ValueByID(valueID) != nil {
			return l
		}
	}
	return nil
}

// LineWithSelectedValue returns the line on which the given value id is
// currently selected, or nil.
func (p *Product) LineWithSelectedValue(valueID uint) *AttributeLine {
	for _, l := range p.Lines {
		if l.IsSelected(valueID) {
			return l
		}
	}
	return nil
}

// ValueByID looks the value up across all lines of the product.
func (p *Product) ValueByID(id uint) *AttributeValue {
	for _, l := range p.Lines {
		if v := l.ValueByID(id); v != nil {
			return v
		}
	}
	return nil
}

// HasParent reports whether templateID is among the product's parents.
func (p *Product) HasParent(templateID uint) bool {
	for _, id := range p.ParentTemplateIDs {
		if id == templateID {
			return true
		}
	}
	return false
}

// FilePayload is an uploaded file travelling alongside the combination.
type FilePayload struct {
	FileName string `json:"file_name"`
	FileData string `json:"file_data"` // base64
}

// LineKey addresses per-line side payloads within a session.
type LineKey struct {
	TemplateID uint
	LineID     uint
}
