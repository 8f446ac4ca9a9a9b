package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/mitbhavsaar/smart-crm-solutions/config"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/model"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/db"
	"github.com/mitbhavsaar/smart-crm-solutions/pkg/redis"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// Seeds the configurable catalog from an XLSX workbook with four sheets:
//
//	Attributes: Name | Display Type | Width Check | Pair With Previous | Quantity | Gelcoat Flag | M2O Model
//	Values:     Attribute | Name | HTML Color | Is Custom | Required File
//	Templates:  Name | Description | List Price | Optional Products (comma separated template names)
//	Lines:      Template | Attribute | Sequence | Variant Mode | Values (comma separated, "Name:extra" sets a price extra)
//
// Attribute and template names are the join keys between sheets.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/seed/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	fmt.Printf("Reading XLSX file: %s\n", filePath)
	catalog, err := readCatalogFromXLSX(filePath)
	if err != nil {
		log.Fatal("Failed to read XLSX:", err)
	}

	fmt.Printf("Attributes: %d, values: %d, templates: %d, lines: %d\n",
		len(catalog.attributes), catalog.valueCount, len(catalog.templates), catalog.lineCount)

	fmt.Print("Do you want to proceed with the import? (yes/no): ")
	var confirm string
	fmt.Scanln(&confirm)
	if confirm != "yes" && confirm != "y" {
		fmt.Println("Import cancelled.")
		return
	}

	if err := catalog.save(db.GetDB()); err != nil {
		log.Fatal("Failed to import catalog:", err)
	}

	// Imported price extras supersede any cached combination prices.
	if err := redis.Init(&cfg.Redis); err == nil {
		defer redis.Close()
		for _, template := range catalog.templates {
			if err := redis.InvalidatePrices(context.Background(), template.ID); err != nil {
				fmt.Printf("Warning: failed to invalidate cached prices for %s: %v\n", template.Name, err)
			}
		}
	}

	fmt.Println("Import completed successfully!")
}

type lineSpec struct {
	template  string
	attribute string
	sequence  int
	mode      string
	values    []valueSpec
}

type valueSpec struct {
	name  string
	extra float64
}

type catalogImport struct {
	attributes map[string]*model.ProductAttribute
	templates  map[string]*model.ProductTemplate
	optionals  map[string][]string
	lines      []lineSpec

	valueCount int
	lineCount  int
}

func readCatalogFromXLSX(filePath string) (*catalogImport, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	catalog := &catalogImport{
		attributes: make(map[string]*model.ProductAttribute),
		templates:  make(map[string]*model.ProductTemplate),
		optionals:  make(map[string][]string),
	}

	if err := catalog.readAttributes(f); err != nil {
		return nil, err
	}
	if err := catalog.readValues(f); err != nil {
		return nil, err
	}
	if err := catalog.readTemplates(f); err != nil {
		return nil, err
	}
	if err := catalog.readLines(f); err != nil {
		return nil, err
	}
	return catalog, nil
}

func (c *catalogImport) readAttributes(f *excelize.File) error {
	rows, err := sheetRows(f, "Attributes")
	if err != nil {
		return err
	}

	for _, row := range rows {
		name := cell(row, 0)
		if name == "" {
			continue
		}
		displayType := cell(row, 1)
		if displayType == "" {
			displayType = string(model.DisplayTypeSelect)
		}
		c.attributes[name] = &model.ProductAttribute{
			Name:             name,
			DisplayType:      model.AttributeDisplayType(displayType),
			IsWidthCheck:     parseBool(cell(row, 2)),
			PairWithPrevious: parseBool(cell(row, 3)),
			IsQuantity:       parseBool(cell(row, 4)),
			IsGelcoatFlag:    parseBool(cell(row, 5)),
			M2OModel:         cell(row, 6),
		}
	}
	if len(c.attributes) == 0 {
		return fmt.Errorf("no attributes found in workbook")
	}
	return nil
}

func (c *catalogImport) readValues(f *excelize.File) error {
	rows, err := sheetRows(f, "Values")
	if err != nil {
		return err
	}

	for i, row := range rows {
		attrName := cell(row, 0)
		valueName := cell(row, 1)
		if attrName == "" || valueName == "" {
			continue
		}
		attr, ok := c.attributes[attrName]
		if !ok {
			return fmt.Errorf("Values row %d references unknown attribute %q", i+2, attrName)
		}
		attr.Values = append(attr.Values, model.AttributeValue{
			Name:         valueName,
			HTMLColor:    cell(row, 2),
			IsCustom:     parseBool(cell(row, 3)),
			RequiredFile: parseBool(cell(row, 4)),
			Sequence:     len(attr.Values),
		})
		c.valueCount++
	}
	return nil
}

func (c *catalogImport) readTemplates(f *excelize.File) error {
	rows, err := sheetRows(f, "Templates")
	if err != nil {
		return err
	}

	for _, row := range rows {
		name := cell(row, 0)
		if name == "" {
			continue
		}
		price, _ := strconv.ParseFloat(cell(row, 2), 64)
		c.templates[name] = &model.ProductTemplate{
			Name:        name,
			Description: cell(row, 1),
			ListPrice:   price,
			Active:      true,
		}
		if optionals := cell(row, 3); optionals != "" {
			for _, optName := range strings.Split(optionals, ",") {
				if optName = strings.TrimSpace(optName); optName != "" {
					c.optionals[name] = append(c.optionals[name], optName)
				}
			}
		}
	}
	if len(c.templates) == 0 {
		return fmt.Errorf("no templates found in workbook")
	}
	return nil
}

func (c *catalogImport) readLines(f *excelize.File) error {
	rows, err := sheetRows(f, "Lines")
	if err != nil {
		return err
	}

	for i, row := range rows {
		templateName := cell(row, 0)
		attrName := cell(row, 1)
		if templateName == "" || attrName == "" {
			continue
		}
		if _, ok := c.templates[templateName]; !ok {
			return fmt.Errorf("Lines row %d references unknown template %q", i+2, templateName)
		}
		if _, ok := c.attributes[attrName]; !ok {
			return fmt.Errorf("Lines row %d references unknown attribute %q", i+2, attrName)
		}

		sequence, _ := strconv.Atoi(cell(row, 2))
		mode := cell(row, 3)
		if mode == "" {
			mode = string(model.VariantModeAlways)
		}

		line := lineSpec{
			template:  templateName,
			attribute: attrName,
			sequence:  sequence,
			mode:      mode,
		}
		for _, entry := range strings.Split(cell(row, 4), ",") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}
			spec := valueSpec{name: entry}
			if name, extraStr, found := strings.Cut(entry, ":"); found {
				spec.name = strings.TrimSpace(name)
				spec.extra, _ = strconv.ParseFloat(strings.TrimSpace(extraStr), 64)
			}
			line.values = append(line.values, spec)
		}
		c.lines = append(c.lines, line)
		c.lineCount++
	}
	return nil
}

// save writes the whole catalog in one transaction so a bad workbook never
// leaves a half-imported catalog behind.
func (c *catalogImport) save(database *gorm.DB) error {
	return database.Transaction(func(tx *gorm.DB) error {
		valuesByAttr := make(map[string]map[string]uint)
		for name, attr := range c.attributes {
			if err := tx.Create(attr).Error; err != nil {
				return fmt.Errorf("create attribute %q: %w", name, err)
			}
			byName := make(map[string]uint, len(attr.Values))
			for _, value := range attr.Values {
				byName[value.Name] = value.ID
			}
			valuesByAttr[name] = byName
		}

		for name, template := range c.templates {
			if err := tx.Create(template).Error; err != nil {
				return fmt.Errorf("create template %q: %w", name, err)
			}
		}

		for _, spec := range c.lines {
			template := c.templates[spec.template]
			attr := c.attributes[spec.attribute]

			line := &model.TemplateAttributeLine{
				TemplateID:  template.ID,
				AttributeID: attr.ID,
				Sequence:    spec.sequence,
				VariantMode: model.VariantCreationMode(spec.mode),
			}
			if err := tx.Create(line).Error; err != nil {
				return fmt.Errorf("create line %s/%s: %w", spec.template, spec.attribute, err)
			}

			offered := spec.values
			if len(offered) == 0 {
				// No explicit list offers every value of the attribute.
				for _, value := range attr.Values {
					offered = append(offered, valueSpec{name: value.Name})
				}
			}
			for _, value := range offered {
				valueID, ok := valuesByAttr[spec.attribute][value.name]
				if !ok {
					return fmt.Errorf("line %s/%s references unknown value %q", spec.template, spec.attribute, value.name)
				}
				ptav := &model.TemplateAttributeValue{
					LineID:     line.ID,
					ValueID:    valueID,
					PriceExtra: value.extra,
					Active:     true,
				}
				if err := tx.Create(ptav).Error; err != nil {
					return fmt.Errorf("create offered value %q: %w", value.name, err)
				}
			}
		}

		for templateName, optionalNames := range c.optionals {
			template := c.templates[templateName]
			for _, optName := range optionalNames {
				optional, ok := c.templates[optName]
				if !ok {
					return fmt.Errorf("template %q references unknown optional product %q", templateName, optName)
				}
				err := tx.Model(template).Association("OptionalProducts").Append(optional)
				if err != nil {
					return fmt.Errorf("link optional product %q: %w", optName, err)
				}
			}
		}
		return nil
	})
}

func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	// First row is the header.
	return rows[1:], nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y", "x":
		return true
	}
	return false
}
