package model

import (
	"time"

	"gorm.io/gorm"
)

// Profile is an externally referenced record selectable on m2o attribute
// lines. Width, when present, autofills the width attribute of the product
// being configured.
type Profile struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Width     *float64       `json:"width"`
	Active    bool           `gorm:"default:true" json:"active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Profile) TableName() string {
	return "profiles"
}
