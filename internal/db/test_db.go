package db

import (
	"fmt"
	"log"

	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to test database: %w", err)
	}

	// Run migrations
	err = db.AutoMigrate(
		&model.User{},
		&model.Lead{},
		&model.MaterialLine{},
		&model.MaterialLineCustomValue{},
		&model.ProductAttribute{},
		&model.AttributeValue{},
		&model.ProductTemplate{},
		&model.TemplateAttributeLine{},
		&model.TemplateAttributeValue{},
		&model.AttributeExclusion{},
		&model.ArchivedCombination{},
		&model.ProductVariant{},
		&model.Profile{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate test database: %w", err)
	}

	return db, nil
}

// CleanupTestDB cleans up the test database
func CleanupTestDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Failed to get DB instance: %v", err)
		return
	}
	sqlDB.Close()
}

// TruncateAllTables removes all data from tables
func TruncateAllTables(db *gorm.DB) error {
	tables := []string{
		"material_line_custom_values",
		"material_lines",
		"leads",
		"template_attribute_values",
		"template_attribute_lines",
		"attribute_exclusions",
		"archived_combinations",
		"product_variants",
		"template_optional_products",
		"product_templates",
		"attribute_values",
		"product_attributes",
		"profiles",
		"users",
	}
	for _, table := range tables {
		if err := db.Exec(fmt.Sprintf("DELETE FROM %s", table)).Error; err != nil {
			return err
		}
	}
	return nil
}
