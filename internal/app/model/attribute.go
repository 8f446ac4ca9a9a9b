package model

import (
	"time"

	"gorm.io/gorm"
)

type AttributeDisplayType string

const (
	DisplayTypeColor      AttributeDisplayType = "color"
	DisplayTypeMulti      AttributeDisplayType = "multi"
	DisplayTypePills      AttributeDisplayType = "pills"
	DisplayTypeRadio      AttributeDisplayType = "radio"
	DisplayTypeSelect     AttributeDisplayType = "select"
	DisplayTypeFileUpload AttributeDisplayType = "file_upload"
	DisplayTypeM2O        AttributeDisplayType = "m2o"
	DisplayTypeNumeric    AttributeDisplayType = "strictly_numeric"
)

type ProductAttribute struct {
	ID               uint                 `gorm:"primarykey" json:"id"`
	Name             string               `gorm:"not null" json:"name"`
	DisplayType      AttributeDisplayType `gorm:"type:varchar(50);default:'radio'" json:"display_type"`
	IsWidthCheck     bool                 `gorm:"default:false" json:"is_width_check"`
	PairWithPrevious bool                 `gorm:"default:false" json:"pair_with_previous"`
	IsQuantity       bool                 `gorm:"default:false" json:"is_quantity"`
	IsGelcoatFlag    bool                 `gorm:"default:false" json:"is_gelcoat_flag"`
	M2OModel         string               `gorm:"type:varchar(100)" json:"m2o_model"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
	DeletedAt        gorm.DeletedAt       `gorm:"index" json:"-"`

	// Relationships
	Values []AttributeValue `gorm:"foreignKey:AttributeID" json:"values,omitempty"`
}

func (ProductAttribute) TableName() string {
	return "product_attributes"
}

type AttributeValue struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	AttributeID  uint           `gorm:"not null;index" json:"attribute_id"`
	Name         string         `gorm:"not null" json:"name"`
	HTMLColor    string         `gorm:"type:varchar(20)" json:"html_color"`
	IsCustom     bool           `gorm:"default:false" json:"is_custom"`
	RequiredFile bool           `gorm:"default:false" json:"required_file"`
	Sequence     int            `gorm:"default:0" json:"sequence"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Attribute ProductAttribute `gorm:"foreignKey:AttributeID" json:"-"`
}

func (AttributeValue) TableName() string {
	return "attribute_values"
}
