package model

import (
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// AttributeExclusion forbids an offered value on a template while another
// value is selected. When ValueID belongs to the same template the rule is
// a direct exclusion; when it belongs to a parent template it applies
// against the ancestor combination.
type AttributeExclusion struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	TemplateID      uint           `gorm:"not null;index" json:"template_id"`
	ValueID         uint           `gorm:"not null;index" json:"value_id"`
	ExcludedValueID uint           `gorm:"not null" json:"excluded_value_id"`
	FromParent      bool           `gorm:"default:false" json:"from_parent"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (AttributeExclusion) TableName() string {
	return "attribute_exclusions"
}

// ArchivedCombination is a retired value combination of a template. Its
// exact value set must never become selectable again.
type ArchivedCombination struct {
	ID         uint           `gorm:"primarykey" json:"id"`
	TemplateID uint           `gorm:"not null;index" json:"template_id"`
	ValueIDs   string         `gorm:"type:text;not null" json:"value_ids"` // comma separated, sorted
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (ArchivedCombination) TableName() string {
	return "archived_combinations"
}

// DecodeValueIDs parses the stored combination.
func (a *ArchivedCombination) DecodeValueIDs() []uint {
	if a.ValueIDs == "" {
		return nil
	}
	parts := strings.Split(a.ValueIDs, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(n))
	}
	return ids
}

// EncodeValueIDs serializes a combination for storage.
func EncodeValueIDs(ids []uint) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}
