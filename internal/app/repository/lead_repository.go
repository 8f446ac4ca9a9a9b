package repository

import (
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/model"
	"github.com/mitbhavsaar/smart-crm-solutions/pkg/logger"
	"gorm.io/gorm"
)

type LeadRepository interface {
	Create(lead *model.Lead) error
	FindByID(id uint) (*model.Lead, error)
	FindByUser(userID uint) ([]model.Lead, error)
	FindWithLines(id uint) (*model.Lead, error)
	Update(lead *model.Lead) error
	Delete(id uint) error

	CreateMaterialLines(lines []model.MaterialLine) error
	FindMaterialLines(leadID uint) ([]model.MaterialLine, error)
	DeleteMaterialLine(id uint) error
}

type leadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepository{db: db}
}

func (r *leadRepository) Create(lead *model.Lead) error {
	if err := r.db.Create(lead).Error; err != nil {
		logger.Error("Failed to create lead", err, map[string]interface{}{
			"name": lead.Name,
		})
		return err
	}
	return nil
}

func (r *leadRepository) FindByID(id uint) (*model.Lead, error) {
	var lead model.Lead
	if err := r.db.First(&lead, id).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepository) FindByUser(userID uint) ([]model.Lead, error) {
	var leads []model.Lead
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&leads).Error
	if err != nil {
		return nil, err
	}
	return leads, nil
}

func (r *leadRepository) FindWithLines(id uint) (*model.Lead, error) {
	var lead model.Lead
	err := r.db.
		Preload("MaterialLines").
		Preload("MaterialLines.CustomValues").
		First(&lead, id).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *leadRepository) Update(lead *model.Lead) error {
	return r.db.Save(lead).Error
}

func (r *leadRepository) Delete(id uint) error {
	return r.db.Delete(&model.Lead{}, id).Error
}

// CreateMaterialLines persists all lines of one submission atomically.
func (r *leadRepository) CreateMaterialLines(lines []model.MaterialLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		for i := range lines {
			if err := tx.Create(&lines[i]).Error; err != nil {
				logger.Error("Failed to create material line", err, map[string]interface{}{
					"lead_id":     lines[i].LeadID,
					"template_id": lines[i].TemplateID,
				})
				return err
			}
		}
		return nil
	})
}

func (r *leadRepository) FindMaterialLines(leadID uint) ([]model.MaterialLine, error) {
	var lines []model.MaterialLine
	err := r.db.
		Preload("CustomValues").
		Where("lead_id = ?", leadID).
		Order("is_optional, id").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *leadRepository) DeleteMaterialLine(id uint) error {
	return r.db.Delete(&model.MaterialLine{}, id).Error
}
