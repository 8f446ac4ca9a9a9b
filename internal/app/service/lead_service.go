package service

import (
	"errors"

	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/model"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/repository"
	"github.com/mitbhavsaar/smart-crm-solutions/pkg/logger"
	"gorm.io/gorm"
)

var ErrLeadLineNotFound = errors.New("material line not found")

type LeadService interface {
	Create(lead *model.Lead) error
	GetByID(id uint) (*model.Lead, error)
	GetWithLines(id uint) (*model.Lead, error)
	ListByUser(userID uint) ([]model.Lead, error)
	Update(lead *model.Lead) error
	Delete(id uint) error
	ListMaterialLines(leadID uint) ([]model.MaterialLine, error)
	RemoveMaterialLine(leadID, lineID uint) error
}

type leadService struct {
	leadRepo repository.LeadRepository
}

func NewLeadService(leadRepo repository.LeadRepository) LeadService {
	return &leadService{leadRepo: leadRepo}
}

func (s *leadService) Create(lead *model.Lead) error {
	if err := s.leadRepo.Create(lead); err != nil {
		return err
	}
	logger.Info("Lead created", map[string]interface{}{
		"lead_id": lead.ID,
		"name":    lead.Name,
	})
	return nil
}

func (s *leadService) GetByID(id uint) (*model.Lead, error) {
	lead, err := s.leadRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	return lead, nil
}

func (s *leadService) GetWithLines(id uint) (*model.Lead, error) {
	lead, err := s.leadRepo.FindWithLines(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	return lead, nil
}

func (s *leadService) ListByUser(userID uint) ([]model.Lead, error) {
	return s.leadRepo.FindByUser(userID)
}

func (s *leadService) Update(lead *model.Lead) error {
	return s.leadRepo.Update(lead)
}

func (s *leadService) Delete(id uint) error {
	return s.leadRepo.Delete(id)
}

func (s *leadService) ListMaterialLines(leadID uint) ([]model.MaterialLine, error) {
	if _, err := s.GetByID(leadID); err != nil {
		return nil, err
	}
	return s.leadRepo.FindMaterialLines(leadID)
}

// RemoveMaterialLine deletes a line after checking it belongs to the lead.
func (s *leadService) RemoveMaterialLine(leadID, lineID uint) error {
	lines, err := s.leadRepo.FindMaterialLines(leadID)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if line.ID == lineID {
			return s.leadRepo.DeleteMaterialLine(lineID)
		}
	}
	return ErrLeadLineNotFound
}
