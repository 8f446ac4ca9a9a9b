package db

import (
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/model"
	"github.com/mitbhavsaar/smart-crm-solutions/pkg/logger"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
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
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
