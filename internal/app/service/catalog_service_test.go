package service

import (
	"context"
	"testing"

	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/configurator"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/model"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/repository"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type catalogFixture struct {
	db       *gorm.DB
	service  CatalogService
	template *model.ProductTemplate
	lines    []*model.TemplateAttributeLine
	// offered value IDs keyed by "Attribute/Value"
	offered map[string]uint
}

func setupCatalogServiceTest(t *testing.T) *catalogFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	templateRepo := repository.NewTemplateRepository(testDB)
	variantRepo := repository.NewVariantRepository(testDB)
	profileRepo := repository.NewProfileRepository(testDB)

	return &catalogFixture{
		db:      testDB,
		service: NewCatalogService(templateRepo, variantRepo, profileRepo),
		offered: make(map[string]uint),
	}
}

// seedTemplate creates a template with a Color line (Red, Blue) and a Size
// line (Small, Large), each value with a price extra.
func (f *catalogFixture) seedTemplate(t *testing.T) {
	f.template = &model.ProductTemplate{Name: "Storage Tank", ListPrice: 100, Active: true}
	require.NoError(t, f.db.Create(f.template).Error)

	attrs := []struct {
		name   string
		values []string
		extras []float64
	}{
		{"Color", []string{"Red", "Blue"}, []float64{10, 20}},
		{"Size", []string{"Small", "Large"}, []float64{0, 50}},
	}
	for i, spec := range attrs {
		attr := &model.ProductAttribute{Name: spec.name, DisplayType: model.DisplayTypeRadio}
		require.NoError(t, f.db.Create(attr).Error)

		line := &model.TemplateAttributeLine{
			TemplateID:  f.template.ID,
			AttributeID: attr.ID,
			Sequence:    i,
			VariantMode: model.VariantModeDynamic,
		}
		require.NoError(t, f.db.Create(line).Error)
		f.lines = append(f.lines, line)

		for j, name := range spec.values {
			value := &model.AttributeValue{AttributeID: attr.ID, Name: name, Sequence: j}
			require.NoError(t, f.db.Create(value).Error)

			ptav := &model.TemplateAttributeValue{
				LineID:     line.ID,
				ValueID:    value.ID,
				PriceExtra: spec.extras[j],
				Active:     true,
			}
			require.NoError(t, f.db.Create(ptav).Error)
			f.offered[spec.name+"/"+name] = ptav.ID
		}
	}
}

func TestCatalogService_ConfiguratorValues(t *testing.T) {
	f := setupCatalogServiceTest(t)
	f.seedTemplate(t)

	result, err := f.service.ConfiguratorValues(context.Background(), configurator.LoadRequest{
		TemplateID: f.template.ID,
		Quantity:   2,
	})
	require.NoError(t, err)
	require.Len(t, result.Products, 1)

	main := result.Products[0]
	assert.Equal(t, f.template.ID, main.TemplateID)
	assert.Equal(t, "Storage Tank", main.DisplayName)
	assert.Equal(t, 2.0, main.Quantity)
	assert.Equal(t, 200.0, main.Price)
	require.Len(t, main.Lines, 2)

	colorLine := main.Lines[0]
	assert.Equal(t, "Color", colorLine.Attribute.Name)
	require.Len(t, colorLine.Values, 2)
	assert.Equal(t, f.offered["Color/Red"], colorLine.Values[0].ID)
	assert.Equal(t, "Red", colorLine.Values[0].Name)
}

func TestCatalogService_ConfiguratorValues_Preselection(t *testing.T) {
	f := setupCatalogServiceTest(t)
	f.seedTemplate(t)

	result, err := f.service.ConfiguratorValues(context.Background(), configurator.LoadRequest{
		TemplateID:          f.template.ID,
		PreselectedValueIDs: []uint{f.offered["Color/Blue"]},
		MainProductOnly:     true,
	})
	require.NoError(t, err)

	line := result.Products[0].Lines[0]
	assert.Equal(t, []uint{f.offered["Color/Blue"]}, line.SelectedValueIDs)
}

func TestCatalogService_ConfiguratorValues_UnknownTemplate(t *testing.T) {
	f := setupCatalogServiceTest(t)

	_, err := f.service.ConfiguratorValues(context.Background(), configurator.LoadRequest{TemplateID: 999})
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestCatalogService_ExclusionPartition(t *testing.T) {
	f := setupCatalogServiceTest(t)
	f.seedTemplate(t)

	red := f.offered["Color/Red"]
	large := f.offered["Size/Large"]

	// Own rule: Red excludes Large. Parent rule: a value the template does
	// not offer excludes Red.
	require.NoError(t, f.db.Create(&model.AttributeExclusion{
		TemplateID: f.template.ID, ValueID: red, ExcludedValueID: large,
	}).Error)
	require.NoError(t, f.db.Create(&model.AttributeExclusion{
		TemplateID: f.template.ID, ValueID: 7777, ExcludedValueID: red,
	}).Error)
	require.NoError(t, f.db.Create(&model.ArchivedCombination{
		TemplateID: f.template.ID, ValueIDs: model.EncodeValueIDs([]uint{red, large}),
	}).Error)

	result, err := f.service.ConfiguratorValues(context.Background(), configurator.LoadRequest{
		TemplateID:      f.template.ID,
		MainProductOnly: true,
	})
	require.NoError(t, err)

	main := result.Products[0]
	assert.Equal(t, []uint{large}, main.Exclusions[red])
	assert.Equal(t, []uint{red}, main.ParentExclusions[7777])
	require.Len(t, main.ArchivedCombinations, 1)
	assert.ElementsMatch(t, []uint{red, large}, main.ArchivedCombinations[0])
}

func TestCatalogService_OptionalProducts(t *testing.T) {
	f := setupCatalogServiceTest(t)
	f.seedTemplate(t)

	optional := &model.ProductTemplate{Name: "Lid", ListPrice: 15, Active: true}
	require.NoError(t, f.db.Create(optional).Error)
	require.NoError(t, f.db.Model(f.template).Association("OptionalProducts").Append(optional))

	products, err := f.service.OptionalProducts(context.Background(), configurator.OptionalRequest{
		TemplateID: f.template.ID,
	})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, optional.ID, products[0].TemplateID)
	assert.True(t, products[0].Optional)
	assert.Equal(t, []uint{f.template.ID}, products[0].ParentTemplateIDs)
}

func TestCatalogService_CreateVariant(t *testing.T) {
	f := setupCatalogServiceTest(t)
	f.seedTemplate(t)

	combination := []uint{f.offered["Color/Red"], f.offered["Size/Large"]}

	variantID, err := f.service.CreateVariant(context.Background(), f.template.ID, combination)
	require.NoError(t, err)
	assert.NotZero(t, variantID)

	var variant model.ProductVariant
	require.NoError(t, f.db.First(&variant, variantID).Error)
	assert.Equal(t, 60.0, variant.PriceExtra)
	assert.Equal(t, model.EncodeValueIDs([]uint{combination[0], combination[1]}), variant.ValueIDs)

	// Same combination in a different order reuses the stored variant.
	again, err := f.service.CreateVariant(context.Background(), f.template.ID, []uint{combination[1], combination[0]})
	require.NoError(t, err)
	assert.Equal(t, variantID, again)
}

func TestCatalogService_UpdateCombination(t *testing.T) {
	f := setupCatalogServiceTest(t)
	f.seedTemplate(t)

	tests := []struct {
		name        string
		combination []uint
		quantity    float64
		wantPrice   float64
	}{
		{
			name:        "Base price only",
			combination: nil,
			quantity:    1,
			wantPrice:   100,
		},
		{
			name:        "Value extras added",
			combination: []uint{f.offered["Color/Blue"], f.offered["Size/Large"]},
			quantity:    1,
			wantPrice:   170,
		},
		{
			name:        "Quantity multiplies unit price",
			combination: []uint{f.offered["Color/Red"]},
			quantity:    3,
			wantPrice:   330,
		},
		{
			name:        "Zero quantity clamps to one",
			combination: nil,
			quantity:    0,
			wantPrice:   100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := f.service.UpdateCombination(context.Background(), configurator.UpdateRequest{
				TemplateID:  f.template.ID,
				Combination: tt.combination,
				Quantity:    tt.quantity,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrice, result.Price)
			assert.Equal(t, "Storage Tank", result.DisplayName)
		})
	}
}

func TestCatalogService_ResolveReference(t *testing.T) {
	f := setupCatalogServiceTest(t)

	width := 42.5
	profile := &model.Profile{Name: "C-Channel 100", Width: &width, Active: true}
	require.NoError(t, f.db.Create(profile).Error)

	record, err := f.service.ResolveReference(context.Background(), "profile", profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "C-Channel 100", record.Name)
	require.NotNil(t, record.Width)
	assert.Equal(t, 42.5, *record.Width)

	_, err = f.service.ResolveReference(context.Background(), "profile", 999)
	assert.ErrorIs(t, err, ErrProfileNotFound)

	_, err = f.service.ResolveReference(context.Background(), "warehouse", 1)
	assert.ErrorIs(t, err, ErrUnknownReference)
}

func TestCatalogService_M2OOptionsFromProfiles(t *testing.T) {
	f := setupCatalogServiceTest(t)
	f.seedTemplate(t)

	attr := &model.ProductAttribute{Name: "Profile", DisplayType: model.DisplayTypeM2O, M2OModel: "profile"}
	require.NoError(t, f.db.Create(attr).Error)
	line := &model.TemplateAttributeLine{
		TemplateID:  f.template.ID,
		AttributeID: attr.ID,
		Sequence:    10,
		VariantMode: model.VariantModeNever,
	}
	require.NoError(t, f.db.Create(line).Error)

	active := &model.Profile{Name: "Active Profile", Active: true}
	inactive := &model.Profile{Name: "Retired Profile", Active: true}
	require.NoError(t, f.db.Create(active).Error)
	require.NoError(t, f.db.Create(inactive).Error)
	require.NoError(t, f.db.Model(inactive).Update("active", false).Error)

	result, err := f.service.ConfiguratorValues(context.Background(), configurator.LoadRequest{
		TemplateID:      f.template.ID,
		MainProductOnly: true,
	})
	require.NoError(t, err)

	main := result.Products[0]
	profileLine := main.LineByID(line.ID)
	require.NotNil(t, profileLine)
	require.Len(t, profileLine.Attribute.M2OOptions, 1)
	assert.Equal(t, "Active Profile", profileLine.Attribute.M2OOptions[0].Name)
}

func TestCatalogService_ListTemplates(t *testing.T) {
	f := setupCatalogServiceTest(t)
	f.seedTemplate(t)

	inactive := &model.ProductTemplate{Name: "Old Tank", Active: true}
	require.NoError(t, f.db.Create(inactive).Error)
	require.NoError(t, f.db.Model(inactive).Update("active", false).Error)

	active := true
	templates, err := f.service.ListTemplates(repository.TemplateFilter{Active: &active})
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "Storage Tank", templates[0].Name)
}
