package model

import (
	"time"

	"gorm.io/gorm"
)

type VariantCreationMode string

const (
	VariantModeAlways  VariantCreationMode = "always"
	VariantModeDynamic VariantCreationMode = "dynamic"
	VariantModeNever   VariantCreationMode = "no_variant"
)

type ProductTemplate struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	ListPrice   float64        `gorm:"not null;default:0" json:"list_price"`
	Active      bool           `gorm:"default:true" json:"active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	AttributeLines   []TemplateAttributeLine `gorm:"foreignKey:TemplateID" json:"attribute_lines,omitempty"`
	OptionalProducts []ProductTemplate       `gorm:"many2many:template_optional_products;joinForeignKey:TemplateID;joinReferences:OptionalTemplateID" json:"optional_products,omitempty"`
	Variants         []ProductVariant        `gorm:"foreignKey:TemplateID" json:"-"`
}

func (ProductTemplate) TableName() string {
	return "product_templates"
}

// TemplateAttributeLine binds an attribute to a template with the subset of
// values offered on that template.
type TemplateAttributeLine struct {
	ID          uint                `gorm:"primarykey" json:"id"`
	TemplateID  uint                `gorm:"not null;index" json:"template_id"`
	AttributeID uint                `gorm:"not null;index" json:"attribute_id"`
	Sequence    int                 `gorm:"default:0" json:"sequence"`
	VariantMode VariantCreationMode `gorm:"type:varchar(20);default:'always'" json:"variant_mode"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	DeletedAt   gorm.DeletedAt      `gorm:"index" json:"-"`

	// Relationships
	Attribute ProductAttribute         `gorm:"foreignKey:AttributeID" json:"attribute"`
	Values    []TemplateAttributeValue `gorm:"foreignKey:LineID" json:"values,omitempty"`
}

func (TemplateAttributeLine) TableName() string {
	return "template_attribute_lines"
}

// TemplateAttributeValue is one offered value on a line, with its price
// impact.
type TemplateAttributeValue struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	LineID     uint           `gorm:"not null;index" json:"line_id"`
	ValueID    uint           `gorm:"not null;index" json:"value_id"`
	PriceExtra float64        `gorm:"default:0" json:"price_extra"`
	Active     bool           `gorm:"default:true" json:"active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Value AttributeValue `gorm:"foreignKey:ValueID" json:"value"`
}

func (TemplateAttributeValue) TableName() string {
	return "template_attribute_values"
}
