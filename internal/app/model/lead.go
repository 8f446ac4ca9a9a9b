package model

import (
	"time"

	"gorm.io/gorm"
)

type LeadStage string

const (
	StageNew       LeadStage = "new"
	StageQualified LeadStage = "qualified"
	StageQuoted    LeadStage = "quoted"
	StageWon       LeadStage = "won"
	StageLost      LeadStage = "lost"
)

type Lead struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	ContactName string         `json:"contact_name"`
	Email       string         `json:"email"`
	Phone       string         `json:"phone"`
	Stage       LeadStage      `gorm:"type:varchar(20);default:'new'" json:"stage"`
	UserID      uint           `gorm:"index" json:"user_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User          User           `gorm:"foreignKey:UserID" json:"-"`
	MaterialLines []MaterialLine `gorm:"foreignKey:LeadID" json:"material_lines,omitempty"`
}

func (Lead) TableName() string {
	return "leads"
}

// MaterialLine is one configured product saved on a lead, with the resolved
// attribute description and any uploaded files.
type MaterialLine struct {
	ID                  uint           `gorm:"primarykey" json:"id"`
	LeadID              uint           `gorm:"not null;index" json:"lead_id"`
	TemplateID          uint           `gorm:"not null;index" json:"template_id"`
	VariantID           uint           `gorm:"index" json:"variant_id"`
	DisplayName         string         `gorm:"not null" json:"display_name"`
	Description         string         `gorm:"type:text" json:"description"`
	Quantity            float64        `gorm:"not null;default:1" json:"quantity"`
	UnitPrice           float64        `gorm:"not null;default:0" json:"unit_price"`
	ValueIDs            string         `gorm:"type:text" json:"value_ids"` // comma separated
	IsOptional          bool           `gorm:"default:false" json:"is_optional"`
	FileName            string         `json:"file_name"`
	FileURL             string         `json:"file_url"`
	ConditionalFileName string         `json:"conditional_file_name"`
	ConditionalFileURL  string         `json:"conditional_file_url"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Lead         Lead                      `gorm:"foreignKey:LeadID" json:"-"`
	Template     ProductTemplate           `gorm:"foreignKey:TemplateID" json:"-"`
	CustomValues []MaterialLineCustomValue `gorm:"foreignKey:MaterialLineID" json:"custom_values,omitempty"`
}

func (MaterialLine) TableName() string {
	return "material_lines"
}

// MaterialLineCustomValue stores the free text entered on a custom-capable
// value of a saved line.
type MaterialLineCustomValue struct {
	ID             uint           `gorm:"primarykey" json:"id"`
	MaterialLineID uint           `gorm:"not null;index" json:"material_line_id"`
	ValueID        uint           `gorm:"not null" json:"value_id"`
	CustomValue    string         `gorm:"type:text" json:"custom_value"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (MaterialLineCustomValue) TableName() string {
	return "material_line_custom_values"
}
