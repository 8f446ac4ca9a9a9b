package model

import (
	"time"

	"gorm.io/gorm"
)

// ProductVariant is one stored value combination of a template. The
// combination is kept denormalized for exact-match lookup.
type ProductVariant struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	TemplateID  uint           `gorm:"not null;index" json:"template_id"`
	ValueIDs    string         `gorm:"type:text;not null" json:"value_ids"` // comma separated, sorted
	DisplayName string         `json:"display_name"`
	PriceExtra  float64        `gorm:"default:0" json:"price_extra"`
	Active      bool           `gorm:"default:true" json:"active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Template ProductTemplate `gorm:"foreignKey:TemplateID" json:"-"`
}

func (ProductVariant) TableName() string {
	return "product_variants"
}
