package configurator

import (
	"context"
	"strconv"
)

// CustomValueEntry carries the free text attached to a selected value.
type CustomValueEntry struct {
	ValueID uint   `json:"custom_product_template_attribute_value_id"`
	Value   string `json:"custom_value"`
}

// M2OValueEntry carries the external record picked on a reference line.
type M2OValueEntry struct {
	LineID uint `json:"line_id"`
	ResID  uint `json:"res_id"`
}

// ProductLine is one resolved product of the submission payload.
type ProductLine struct {
	ProductID             uint               `json:"product_id"`
	TemplateID            uint               `json:"product_template_id"`
	Quantity              float64            `json:"quantity"`
	Price                 float64            `json:"price"`
	ValueIDs              []uint             `json:"attribute_value_ids"`
	CustomValues          []CustomValueEntry `json:"product_custom_attribute_value_ids"`
	FileUpload            *FilePayload       `json:"file_upload,omitempty"`
	ConditionalFileUpload *FilePayload       `json:"conditional_file_upload,omitempty"`
	M2OValues             []M2OValueEntry    `json:"m2o_values,omitempty"`
}

// SubmissionPayload is the full save request handed to the collaborator.
type SubmissionPayload struct {
	LeadID   uint          `json:"lead_id"`
	Main     ProductLine   `json:"main_product"`
	Optional []ProductLine `json:"optional_products"`
}

// BuildPayload assembles the submission payload from the active products.
// Products with no stored variant whose lines all use the dynamic policy
// get a variant created on the fly.
func (s *Session) BuildPayload(ctx context.Context) (*SubmissionPayload, error) {
	main := s.Graph.Main()
	if main == nil {
		return nil, ErrMainMissing
	}

	payload := &SubmissionPayload{LeadID: s.LeadID}

	for _, product := range s.Graph.Active {
		line, err := s.buildProductLine(ctx, product)
		if err != nil {
			return nil, err
		}
		if product == main {
			payload.Main = line
		} else {
			payload.Optional = append(payload.Optional, line)
		}
	}
	return payload, nil
}

func (s *Session) buildProductLine(ctx context.Context, product *Product) (ProductLine, error) {
	line := ProductLine{
		ProductID:  product.ID,
		TemplateID: product.TemplateID,
		Quantity:   product.Quantity,
		Price:      product.Price,
		ValueIDs:   payloadValueIDs(product),
	}
	if line.Quantity <= 0 {
		line.Quantity = 1
	}
	if line.Price < 0 {
		line.Price = 0
	}

	for _, attrLine := range product.Lines {
		if attrLine.CustomValue == "" {
			continue
		}
		if target := attrLine.CustomValueTarget(); target != nil && attrLine.IsSelected(target.ID) {
			line.CustomValues = append(line.CustomValues, CustomValueEntry{
				ValueID: target.ID,
				Value:   attrLine.CustomValue,
			})
		}
	}

	for key, payload := range s.fileUploads {
		if key.TemplateID == product.TemplateID {
			p := payload
			line.FileUpload = &p
		}
	}
	for key, payload := range s.conditionalFiles {
		if key.TemplateID == product.TemplateID {
			p := payload
			line.ConditionalFileUpload = &p
		}
	}
	for key, resID := range s.m2oSelections {
		if key.TemplateID == product.TemplateID {
			line.M2OValues = append(line.M2OValues, M2OValueEntry{LineID: key.LineID, ResID: resID})
		}
	}

	if product.ID == 0 && s.allLinesDynamicVariant(product) {
		variantID, err := s.collab.CreateVariant(ctx, product.TemplateID, Combination(product))
		if err != nil {
			return ProductLine{}, err
		}
		line.ProductID = variantID
	}
	return line, nil
}

func (s *Session) allLinesDynamicVariant(p *Product) bool {
	for _, line := range p.Lines {
		if line.CreateVariant != VariantDynamic {
			return false
		}
	}
	return len(p.Lines) > 0
}

// payloadValueIDs returns the selected value ids that belong in the saved
// combination. File-upload and reference lines carry their data in side
// payloads, so their value ids are filtered out.
func payloadValueIDs(product *Product) []uint {
	var ids []uint
	for _, line := range product.Lines {
		switch line.Attribute.DisplayType {
		case DisplayFileUpload, DisplayM2O:
			continue
		}
		ids = append(ids, line.SelectedValueIDs...)
	}
	return ids
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
