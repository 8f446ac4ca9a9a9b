package repository

import (
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/model"
	"github.com/mitbhavsaar/smart-crm-solutions/pkg/logger"
	"gorm.io/gorm"
)

type VariantRepository interface {
	Create(variant *model.ProductVariant) error
	FindByID(id uint) (*model.ProductVariant, error)
	FindByCombination(templateID uint, valueIDs string) (*model.ProductVariant, error)
	FindByTemplate(templateID uint) ([]model.ProductVariant, error)
	Archive(id uint) error
}

type variantRepository struct {
	db *gorm.DB
}

func NewVariantRepository(db *gorm.DB) VariantRepository {
	return &variantRepository{db: db}
}

func (r *variantRepository) Create(variant *model.ProductVariant) error {
	if err := r.db.Create(variant).Error; err != nil {
		logger.Error("Failed to create product variant", err, map[string]interface{}{
			"template_id": variant.TemplateID,
			"value_ids":   variant.ValueIDs,
		})
		return err
	}
	return nil
}

func (r *variantRepository) FindByID(id uint) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	if err := r.db.First(&variant, id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

// FindByCombination looks a variant up by its exact sorted value id list.
func (r *variantRepository) FindByCombination(templateID uint, valueIDs string) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	err := r.db.
		Where("template_id = ? AND value_ids = ?", templateID, valueIDs).
		First(&variant).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *variantRepository) FindByTemplate(templateID uint) ([]model.ProductVariant, error) {
	var variants []model.ProductVariant
	err := r.db.
		Where("template_id = ?", templateID).
		Find(&variants).Error
	if err != nil {
		return nil, err
	}
	return variants, nil
}

// Archive deactivates a variant and records its combination so it can no
// longer be rebuilt through configuration.
func (r *variantRepository) Archive(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var variant model.ProductVariant
		if err := tx.First(&variant, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&variant).Update("active", false).Error; err != nil {
			return err
		}
		archived := model.ArchivedCombination{
			TemplateID: variant.TemplateID,
			ValueIDs:   variant.ValueIDs,
		}
		return tx.Create(&archived).Error
	})
}
