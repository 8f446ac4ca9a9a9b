package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/configurator"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/model"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/repository"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/storage"
	"github.com/mitbhavsaar/smart-crm-solutions/pkg/logger"
	"gorm.io/gorm"
)

var ErrLeadNotFound = errors.New("lead not found")

const materialFileFolder = "material-lines"

// FileUploader stores inline file payloads and returns their URL.
type FileUploader interface {
	UploadBase64(ctx context.Context, filename, data, folder string) (string, error)
}

// SubmitService persists a finished configuration onto a lead as material
// lines.
type SubmitService interface {
	Submit(ctx context.Context, payload *configurator.SubmissionPayload) error
}

type submitService struct {
	leadRepo     repository.LeadRepository
	templateRepo repository.TemplateRepository
	uploader     FileUploader
}

func NewSubmitService(
	leadRepo repository.LeadRepository,
	templateRepo repository.TemplateRepository,
	uploader FileUploader,
) SubmitService {
	return &submitService{
		leadRepo:     leadRepo,
		templateRepo: templateRepo,
		uploader:     uploader,
	}
}

var _ FileUploader = (*storage.S3Storage)(nil)

func (s *submitService) Submit(ctx context.Context, payload *configurator.SubmissionPayload) error {
	lead, err := s.leadRepo.FindByID(payload.LeadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLeadNotFound
		}
		return err
	}

	lines := make([]model.MaterialLine, 0, 1+len(payload.Optional))

	mainLine, err := s.buildMaterialLine(ctx, lead.ID, payload.Main, false)
	if err != nil {
		return err
	}
	lines = append(lines, *mainLine)

	for _, product := range payload.Optional {
		line, err := s.buildMaterialLine(ctx, lead.ID, product, true)
		if err != nil {
			return err
		}
		lines = append(lines, *line)
	}

	if err := s.leadRepo.CreateMaterialLines(lines); err != nil {
		return err
	}

	if lead.Stage == model.StageNew {
		lead.Stage = model.StageQualified
		if err := s.leadRepo.Update(lead); err != nil {
			logger.Warn("Failed to advance lead stage", map[string]interface{}{
				"lead_id": lead.ID,
				"error":   err.Error(),
			})
		}
	}

	logger.Info("Configuration saved to lead", map[string]interface{}{
		"lead_id":    lead.ID,
		"line_count": len(lines),
	})
	return nil
}

func (s *submitService) buildMaterialLine(ctx context.Context, leadID uint, product configurator.ProductLine, optional bool) (*model.MaterialLine, error) {
	template, err := s.templateRepo.FindWithConfiguration(product.TemplateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	quantity := product.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	// An is_quantity attribute overrides the entered quantity with its
	// selected value.
	if override, ok := quantityOverride(template, product); ok {
		quantity = override
	}

	line := &model.MaterialLine{
		LeadID:      leadID,
		TemplateID:  product.TemplateID,
		VariantID:   product.ProductID,
		DisplayName: buildDisplayName(template, product.ValueIDs),
		Description: buildDescription(template, product),
		Quantity:    quantity,
		UnitPrice:   product.Price,
		ValueIDs:    model.EncodeValueIDs(product.ValueIDs),
		IsOptional:  optional,
	}

	for _, custom := range product.CustomValues {
		line.CustomValues = append(line.CustomValues, model.MaterialLineCustomValue{
			ValueID:     custom.ValueID,
			CustomValue: custom.Value,
		})
	}

	if product.FileUpload != nil {
		url, err := s.uploader.UploadBase64(ctx, product.FileUpload.FileName, product.FileUpload.FileData, materialFileFolder)
		if err != nil {
			logger.Error("Failed to upload material line file", err, map[string]interface{}{
				"lead_id":   leadID,
				"file_name": product.FileUpload.FileName,
			})
			return nil, err
		}
		line.FileName = product.FileUpload.FileName
		line.FileURL = url
	}
	if product.ConditionalFileUpload != nil {
		url, err := s.uploader.UploadBase64(ctx, product.ConditionalFileUpload.FileName, product.ConditionalFileUpload.FileData, materialFileFolder)
		if err != nil {
			return nil, err
		}
		line.ConditionalFileName = product.ConditionalFileUpload.FileName
		line.ConditionalFileURL = url
	}

	return line, nil
}

// buildDisplayName renders "Template (v1, v2)" from the selected variant
// values. File-upload lines carry no display value.
func buildDisplayName(template *model.ProductTemplate, valueIDs []uint) string {
	selected := make(map[uint]bool, len(valueIDs))
	for _, id := range valueIDs {
		selected[id] = true
	}

	var names []string
	for _, line := range template.AttributeLines {
		if line.Attribute.DisplayType == model.DisplayTypeFileUpload {
			continue
		}
		for _, offered := range line.Values {
			if selected[offered.ID] {
				names = append(names, offered.Value.Name)
			}
		}
	}
	if len(names) == 0 {
		return template.Name
	}
	return template.Name + " (" + strings.Join(names, ", ") + ")"
}

// buildDescription renders the selected values as "Attribute: Value"
// segments. A pair_with_previous attribute folds its values into the
// preceding segment instead of starting its own. File-upload and quantity
// attributes never appear; gel-coat attributes (and their paired
// followers) are dropped when the gel-coat trigger is answered "no".
func buildDescription(template *model.ProductTemplate, product configurator.ProductLine) string {
	selected := make(map[uint]bool, len(product.ValueIDs))
	for _, id := range product.ValueIDs {
		selected[id] = true
	}
	customText := make(map[uint]string, len(product.CustomValues))
	for _, custom := range product.CustomValues {
		customText[custom.ValueID] = custom.Value
	}
	gelcoatDeclined := gelcoatDeclined(template, selected)

	var segments []string
	skipPaired := false
	for _, line := range template.AttributeLines {
		if line.Attribute.DisplayType == model.DisplayTypeFileUpload || line.Attribute.IsQuantity {
			continue
		}
		if line.Attribute.PairWithPrevious && skipPaired {
			continue
		}
		skipPaired = false
		if gelcoatDeclined && isGelcoatAttribute(line.Attribute) {
			skipPaired = true
			continue
		}

		var names []string
		for _, offered := range line.Values {
			if !selected[offered.ID] {
				continue
			}
			name := offered.Value.Name
			if text, ok := customText[offered.ID]; ok && text != "" {
				name = text
			}
			names = append(names, name)
		}
		if len(names) == 0 {
			continue
		}
		joined := strings.Join(names, ", ")
		if line.Attribute.PairWithPrevious && len(segments) > 0 {
			segments[len(segments)-1] += " " + joined
			continue
		}
		segments = append(segments, line.Attribute.Name+": "+joined)
	}
	return strings.Join(segments, "\n")
}

// gelcoatDeclined reports whether the gel-coat trigger attribute is
// answered "no".
func gelcoatDeclined(template *model.ProductTemplate, selected map[uint]bool) bool {
	for _, line := range template.AttributeLines {
		if !isGelcoatTrigger(line.Attribute.Name) {
			continue
		}
		for _, offered := range line.Values {
			if selected[offered.ID] && strings.EqualFold(strings.TrimSpace(offered.Value.Name), "no") {
				return true
			}
		}
	}
	return false
}

func isGelcoatTrigger(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "gel coat req") || strings.Contains(lower, "gelcoat req")
}

func isGelcoatAttribute(attr model.ProductAttribute) bool {
	if attr.IsGelcoatFlag {
		return true
	}
	lower := strings.ToLower(attr.Name)
	return strings.Contains(lower, "gel coat") || strings.Contains(lower, "gelcoat")
}

// quantityOverride returns the numeric value of a selected is_quantity
// attribute, when one exists. Custom text entered on the value wins over
// the value name.
func quantityOverride(template *model.ProductTemplate, product configurator.ProductLine) (float64, bool) {
	selected := make(map[uint]bool, len(product.ValueIDs))
	for _, id := range product.ValueIDs {
		selected[id] = true
	}
	customText := make(map[uint]string, len(product.CustomValues))
	for _, custom := range product.CustomValues {
		customText[custom.ValueID] = custom.Value
	}

	for _, line := range template.AttributeLines {
		if !line.Attribute.IsQuantity {
			continue
		}
		for _, offered := range line.Values {
			if !selected[offered.ID] {
				continue
			}
			text := offered.Value.Name
			if custom, ok := customText[offered.ID]; ok && custom != "" {
				text = custom
			}
			if qty, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil && qty > 0 {
				return qty, true
			}
		}
	}
	return 0, false
}
