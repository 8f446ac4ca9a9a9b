package repository

import (
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/model"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	FindByID(id uint) (*model.Profile, error)
	FindActive() ([]model.Profile, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindByID(id uint) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.First(&profile, id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) FindActive() ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.db.
		Where("active = ?", true).
		Order("name").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}
