package repository

import (
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/model"
	"github.com/mitbhavsaar/smart-crm-solutions/pkg/logger"
	"gorm.io/gorm"
)

type TemplateFilter struct {
	Search string
	Active *bool
	Limit  int
	Offset int
}

type TemplateRepository interface {
	Create(template *model.ProductTemplate) error
	FindAll(filter TemplateFilter) ([]model.ProductTemplate, error)
	FindByID(id uint) (*model.ProductTemplate, error)
	FindWithConfiguration(id uint) (*model.ProductTemplate, error)
	FindOptionalProducts(id uint) ([]model.ProductTemplate, error)
	FindExclusions(templateID uint) ([]model.AttributeExclusion, error)
	FindArchivedCombinations(templateID uint) ([]model.ArchivedCombination, error)
	Update(template *model.ProductTemplate) error
	Delete(id uint) error
}

type templateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

func (r *templateRepository) Create(template *model.ProductTemplate) error {
	if err := r.db.Create(template).Error; err != nil {
		logger.Error("Failed to create product template", err, map[string]interface{}{
			"name": template.Name,
		})
		return err
	}
	return nil
}

func (r *templateRepository) FindAll(filter TemplateFilter) ([]model.ProductTemplate, error) {
	var templates []model.ProductTemplate
	query := r.db.Model(&model.ProductTemplate{})

	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	if filter.Active != nil {
		query = query.Where("active = ?", *filter.Active)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	if err := query.Order("name").Find(&templates).Error; err != nil {
		logger.Error("Failed to list product templates", err, nil)
		return nil, err
	}
	return templates, nil
}

func (r *templateRepository) FindByID(id uint) (*model.ProductTemplate, error) {
	var template model.ProductTemplate
	if err := r.db.First(&template, id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

// FindWithConfiguration loads the template with its full attribute tree:
// lines, offered values and the attribute metadata behind them.
func (r *templateRepository) FindWithConfiguration(id uint) (*model.ProductTemplate, error) {
	var template model.ProductTemplate
	err := r.db.
		Preload("AttributeLines", func(db *gorm.DB) *gorm.DB {
			return db.Order("template_attribute_lines.sequence")
		}).
		Preload("AttributeLines.Attribute").
		Preload("AttributeLines.Values", "active = ?", true).
		Preload("AttributeLines.Values.Value").
		First(&template, id).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *templateRepository) FindOptionalProducts(id uint) ([]model.ProductTemplate, error) {
	var template model.ProductTemplate
	err := r.db.
		Preload("OptionalProducts", "active = ?", true).
		First(&template, id).Error
	if err != nil {
		return nil, err
	}
	return template.OptionalProducts, nil
}

func (r *templateRepository) FindExclusions(templateID uint) ([]model.AttributeExclusion, error) {
	var exclusions []model.AttributeExclusion
	err := r.db.
		Where("template_id = ?", templateID).
		Find(&exclusions).Error
	if err != nil {
		logger.Error("Failed to load attribute exclusions", err, map[string]interface{}{
			"template_id": templateID,
		})
		return nil, err
	}
	return exclusions, nil
}

func (r *templateRepository) FindArchivedCombinations(templateID uint) ([]model.ArchivedCombination, error) {
	var archived []model.ArchivedCombination
	err := r.db.
		Where("template_id = ?", templateID).
		Find(&archived).Error
	if err != nil {
		return nil, err
	}
	return archived, nil
}

func (r *templateRepository) Update(template *model.ProductTemplate) error {
	return r.db.Save(template).Error
}

func (r *templateRepository) Delete(id uint) error {
	return r.db.Delete(&model.ProductTemplate{}, id).Error
}
