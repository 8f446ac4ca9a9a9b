package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/configurator"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/model"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/repository"
	"github.com/mitbhavsaar/smart-crm-solutions/pkg/logger"
	"github.com/mitbhavsaar/smart-crm-solutions/pkg/redis"
	"gorm.io/gorm"
)

var (
	ErrTemplateNotFound = errors.New("product template not found")
	ErrVariantNotFound  = errors.New("product variant not found")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrUnknownReference = errors.New("unknown reference model")
)

const priceCacheTTL = 10 * time.Minute

// CatalogService answers the catalog side of a configuration session:
// loading templates as configurable products, deriving combination prices,
// creating variants and resolving referenced records.
type CatalogService interface {
	ConfiguratorValues(ctx context.Context, req configurator.LoadRequest) (*configurator.LoadResult, error)
	CreateVariant(ctx context.Context, templateID uint, combination []uint) (uint, error)
	UpdateCombination(ctx context.Context, req configurator.UpdateRequest) (*configurator.PricingResult, error)
	OptionalProducts(ctx context.Context, req configurator.OptionalRequest) ([]*configurator.Product, error)
	ResolveReference(ctx context.Context, refModel string, resID uint) (*configurator.ReferenceRecord, error)

	ListTemplates(filter repository.TemplateFilter) ([]model.ProductTemplate, error)
	GetTemplate(templateID uint) (*model.ProductTemplate, error)
}

type catalogService struct {
	templateRepo repository.TemplateRepository
	variantRepo  repository.VariantRepository
	profileRepo  repository.ProfileRepository
}

func NewCatalogService(
	templateRepo repository.TemplateRepository,
	variantRepo repository.VariantRepository,
	profileRepo repository.ProfileRepository,
) CatalogService {
	return &catalogService{
		templateRepo: templateRepo,
		variantRepo:  variantRepo,
		profileRepo:  profileRepo,
	}
}

func (s *catalogService) ConfiguratorValues(ctx context.Context, req configurator.LoadRequest) (*configurator.LoadResult, error) {
	main, err := s.buildProduct(ctx, req.TemplateID, nil, req.Quantity)
	if err != nil {
		return nil, err
	}
	for _, id := range req.PreselectedValueIDs {
		if line := main.LineWithValue(id); line != nil {
			if line.Attribute.DisplayType.MultiAllowed() {
				line.SelectedValueIDs = append(line.SelectedValueIDs, id)
			} else {
				line.SelectedValueIDs = []uint{id}
			}
		}
	}

	result := &configurator.LoadResult{Products: []*configurator.Product{main}}
	if req.MainProductOnly {
		return result, nil
	}

	optional, err := s.buildOptionalProducts(ctx, req.TemplateID)
	if err != nil {
		return nil, err
	}
	result.OptionalProducts = optional

	logger.Debug("Configurator values loaded", map[string]interface{}{
		"template_id":    req.TemplateID,
		"optional_count": len(optional),
	})
	return result, nil
}

func (s *catalogService) CreateVariant(ctx context.Context, templateID uint, combination []uint) (uint, error) {
	encoded := encodeSorted(combination)

	existing, err := s.variantRepo.FindByCombination(templateID, encoded)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	template, err := s.templateRepo.FindByID(templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrTemplateNotFound
		}
		return 0, err
	}

	extra, err := s.combinationPriceExtra(templateID, combination)
	if err != nil {
		return 0, err
	}

	variant := &model.ProductVariant{
		TemplateID:  templateID,
		ValueIDs:    encoded,
		DisplayName: template.Name,
		PriceExtra:  extra,
		Active:      true,
	}
	if err := s.variantRepo.Create(variant); err != nil {
		return 0, err
	}

	logger.Info("Product variant created", map[string]interface{}{
		"template_id": templateID,
		"variant_id":  variant.ID,
	})
	return variant.ID, nil
}

func (s *catalogService) UpdateCombination(ctx context.Context, req configurator.UpdateRequest) (*configurator.PricingResult, error) {
	template, err := s.templateRepo.FindByID(req.TemplateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	cacheKey := fmt.Sprintf("price:%d:%s", req.TemplateID, encodeSorted(req.Combination))
	if unit, ok, err := redis.GetCachedPrice(ctx, cacheKey); err == nil && ok {
		return &configurator.PricingResult{
			Price:       unit * quantity,
			DisplayName: template.Name,
		}, nil
	}

	extra, err := s.combinationPriceExtra(req.TemplateID, req.Combination)
	if err != nil {
		return nil, err
	}
	unit := template.ListPrice + extra

	if err := redis.CachePrice(ctx, cacheKey, unit, priceCacheTTL); err != nil {
		logger.Warn("Failed to cache combination price", map[string]interface{}{
			"template_id": req.TemplateID,
			"error":       err.Error(),
		})
	}

	return &configurator.PricingResult{
		Price:       unit * quantity,
		DisplayName: template.Name,
	}, nil
}

func (s *catalogService) OptionalProducts(ctx context.Context, req configurator.OptionalRequest) ([]*configurator.Product, error) {
	return s.buildOptionalProducts(ctx, req.TemplateID)
}

func (s *catalogService) ResolveReference(ctx context.Context, refModel string, resID uint) (*configurator.ReferenceRecord, error) {
	switch refModel {
	case "profile":
		profile, err := s.profileRepo.FindByID(resID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProfileNotFound
			}
			return nil, err
		}
		return &configurator.ReferenceRecord{
			ID:    profile.ID,
			Name:  profile.Name,
			Width: profile.Width,
		}, nil
	default:
		return nil, ErrUnknownReference
	}
}

func (s *catalogService) ListTemplates(filter repository.TemplateFilter) ([]model.ProductTemplate, error) {
	return s.templateRepo.FindAll(filter)
}

func (s *catalogService) GetTemplate(templateID uint) (*model.ProductTemplate, error) {
	template, err := s.templateRepo.FindWithConfiguration(templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return template, nil
}

func (s *catalogService) buildOptionalProducts(ctx context.Context, parentID uint) ([]*configurator.Product, error) {
	templates, err := s.templateRepo.FindOptionalProducts(parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	products := make([]*configurator.Product, 0, len(templates))
	for _, tmpl := range templates {
		product, err := s.buildProduct(ctx, tmpl.ID, []uint{parentID}, 1)
		if err != nil {
			return nil, err
		}
		product.Optional = true
		products = append(products, product)
	}
	return products, nil
}

// buildProduct assembles the in-memory configurable product of a template:
// lines, offered values, exclusion tables and archived combinations.
func (s *catalogService) buildProduct(ctx context.Context, templateID uint, parents []uint, quantity float64) (*configurator.Product, error) {
	template, err := s.templateRepo.FindWithConfiguration(templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if quantity <= 0 {
		quantity = 1
	}

	product := &configurator.Product{
		TemplateID:  template.ID,
		DisplayName: template.Name,
		Description: template.Description,
		Price:       template.ListPrice * quantity,
		Quantity:    quantity,
		Lines:       make([]*configurator.AttributeLine, 0, len(template.AttributeLines)),
	}
	if parents != nil {
		product.ParentTemplateIDs = parents
	}

	ownValues := make(map[uint]bool)
	for _, line := range template.AttributeLines {
		attr := configurator.Attribute{
			ID:                line.Attribute.ID,
			Name:              line.Attribute.Name,
			DisplayType:       configurator.DisplayType(line.Attribute.DisplayType),
			IsWidthCheck:      line.Attribute.IsWidthCheck,
			PairWithPrevious:  line.Attribute.PairWithPrevious,
			IsQuantity:        line.Attribute.IsQuantity,
			IsGelcoatRequired: line.Attribute.IsGelcoatFlag,
			M2OModel:          line.Attribute.M2OModel,
		}
		if attr.DisplayType == configurator.DisplayM2O {
			options, err := s.m2oOptions(attr.M2OModel)
			if err != nil {
				return nil, err
			}
			attr.M2OOptions = options
		}

		values := make([]*configurator.AttributeValue, 0, len(line.Values))
		for _, offered := range line.Values {
			ownValues[offered.ID] = true
			values = append(values, &configurator.AttributeValue{
				ID:           offered.ID,
				Name:         offered.Value.Name,
				HTMLColor:    offered.Value.HTMLColor,
				IsCustom:     offered.Value.IsCustom,
				RequiredFile: offered.Value.RequiredFile,
			})
		}

		product.Lines = append(product.Lines, &configurator.AttributeLine{
			ID:            line.ID,
			Attribute:     attr,
			Values:        values,
			CreateVariant: configurator.VariantPolicy(line.VariantMode),
		})
	}

	if err := s.attachExclusions(product, ownValues); err != nil {
		return nil, err
	}
	return product, nil
}

// attachExclusions partitions the stored exclusion rules of a template into
// direct and parent tables and decodes its archived combinations.
func (s *catalogService) attachExclusions(product *configurator.Product, ownValues map[uint]bool) error {
	exclusions, err := s.templateRepo.FindExclusions(product.TemplateID)
	if err != nil {
		return err
	}

	product.Exclusions = make(map[uint][]uint)
	product.ParentExclusions = make(map[uint][]uint)
	for _, rule := range exclusions {
		if rule.FromParent || !ownValues[rule.ValueID] {
			product.ParentExclusions[rule.ValueID] = append(product.ParentExclusions[rule.ValueID], rule.ExcludedValueID)
		} else {
			product.Exclusions[rule.ValueID] = append(product.Exclusions[rule.ValueID], rule.ExcludedValueID)
		}
	}

	archived, err := s.templateRepo.FindArchivedCombinations(product.TemplateID)
	if err != nil {
		return err
	}
	for _, entry := range archived {
		if ids := entry.DecodeValueIDs(); len(ids) > 0 {
			product.ArchivedCombinations = append(product.ArchivedCombinations, ids)
		}
	}
	return nil
}

func (s *catalogService) m2oOptions(refModel string) ([]configurator.M2OOption, error) {
	if !strings.EqualFold(refModel, "profile") {
		return nil, nil
	}
	profiles, err := s.profileRepo.FindActive()
	if err != nil {
		return nil, err
	}
	options := make([]configurator.M2OOption, 0, len(profiles))
	for _, p := range profiles {
		options = append(options, configurator.M2OOption{ID: p.ID, Name: p.Name})
	}
	return options, nil
}

// combinationPriceExtra sums the price impact of every selected value.
func (s *catalogService) combinationPriceExtra(templateID uint, combination []uint) (float64, error) {
	template, err := s.templateRepo.FindWithConfiguration(templateID)
	if err != nil {
		return 0, err
	}

	extras := make(map[uint]float64)
	for _, line := range template.AttributeLines {
		for _, offered := range line.Values {
			extras[offered.ID] = offered.PriceExtra
		}
	}

	var total float64
	for _, id := range combination {
		total += extras[id]
	}
	return total, nil
}

func encodeSorted(ids []uint) string {
	sorted := append([]uint{}, ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return model.EncodeValueIDs(sorted)
}
