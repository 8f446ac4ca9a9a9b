package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/configurator"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/model"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUploader struct {
	uploads []string
	fail    bool
}

func (f *fakeUploader) UploadBase64(ctx context.Context, filename, data, folder string) (string, error) {
	if f.fail {
		return "", errors.New("upload rejected")
	}
	f.uploads = append(f.uploads, filename)
	return fmt.Sprintf("https://files.example.com/%s/%s", folder, filename), nil
}

type submitFixture struct {
	db       *gorm.DB
	service  SubmitService
	uploader *fakeUploader
	lead     *model.Lead
	catalog  *catalogFixture
}

func setupSubmitServiceTest(t *testing.T) *submitFixture {
	catalog := setupCatalogServiceTest(t)
	catalog.seedTemplate(t)

	uploader := &fakeUploader{}
	leadRepo := repository.NewLeadRepository(catalog.db)
	templateRepo := repository.NewTemplateRepository(catalog.db)

	lead := &model.Lead{Name: "Tank Order", Stage: model.StageNew, UserID: 1}
	require.NoError(t, catalog.db.Create(lead).Error)

	return &submitFixture{
		db:       catalog.db,
		service:  NewSubmitService(leadRepo, templateRepo, uploader),
		uploader: uploader,
		lead:     lead,
		catalog:  catalog,
	}
}

func (f *submitFixture) mainLine() configurator.ProductLine {
	return configurator.ProductLine{
		TemplateID: f.catalog.template.ID,
		Quantity:   2,
		Price:      170,
		ValueIDs:   []uint{f.catalog.offered["Color/Blue"], f.catalog.offered["Size/Large"]},
	}
}

func TestSubmitService_Submit(t *testing.T) {
	f := setupSubmitServiceTest(t)

	err := f.service.Submit(context.Background(), &configurator.SubmissionPayload{
		LeadID: f.lead.ID,
		Main:   f.mainLine(),
	})
	require.NoError(t, err)

	var lines []model.MaterialLine
	require.NoError(t, f.db.Where("lead_id = ?", f.lead.ID).Find(&lines).Error)
	require.Len(t, lines, 1)

	line := lines[0]
	assert.Equal(t, f.catalog.template.ID, line.TemplateID)
	assert.Equal(t, "Storage Tank (Blue, Large)", line.DisplayName)
	assert.Equal(t, "Color: Blue\nSize: Large", line.Description)
	assert.Equal(t, 2.0, line.Quantity)
	assert.Equal(t, 170.0, line.UnitPrice)
	assert.False(t, line.IsOptional)
}

func TestSubmitService_Submit_UnknownLead(t *testing.T) {
	f := setupSubmitServiceTest(t)

	err := f.service.Submit(context.Background(), &configurator.SubmissionPayload{
		LeadID: 999,
		Main:   f.mainLine(),
	})
	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestSubmitService_Submit_OptionalLines(t *testing.T) {
	f := setupSubmitServiceTest(t)

	optional := &model.ProductTemplate{Name: "Lid", ListPrice: 15, Active: true}
	require.NoError(t, f.db.Create(optional).Error)

	err := f.service.Submit(context.Background(), &configurator.SubmissionPayload{
		LeadID: f.lead.ID,
		Main:   f.mainLine(),
		Optional: []configurator.ProductLine{
			{TemplateID: optional.ID, Quantity: 1, Price: 15},
		},
	})
	require.NoError(t, err)

	var lines []model.MaterialLine
	require.NoError(t, f.db.Where("lead_id = ?", f.lead.ID).Order("is_optional").Find(&lines).Error)
	require.Len(t, lines, 2)
	assert.False(t, lines[0].IsOptional)
	assert.True(t, lines[1].IsOptional)
	assert.Equal(t, "Lid", lines[1].DisplayName)
}

func TestSubmitService_Submit_AdvancesLeadStage(t *testing.T) {
	f := setupSubmitServiceTest(t)

	err := f.service.Submit(context.Background(), &configurator.SubmissionPayload{
		LeadID: f.lead.ID,
		Main:   f.mainLine(),
	})
	require.NoError(t, err)

	var lead model.Lead
	require.NoError(t, f.db.First(&lead, f.lead.ID).Error)
	assert.Equal(t, model.StageQualified, lead.Stage)

	// A later submission does not touch an already advanced stage.
	require.NoError(t, f.db.Model(&lead).Update("stage", model.StageWon).Error)
	err = f.service.Submit(context.Background(), &configurator.SubmissionPayload{
		LeadID: f.lead.ID,
		Main:   f.mainLine(),
	})
	require.NoError(t, err)
	require.NoError(t, f.db.First(&lead, f.lead.ID).Error)
	assert.Equal(t, model.StageWon, lead.Stage)
}

func TestSubmitService_Submit_UploadsFiles(t *testing.T) {
	f := setupSubmitServiceTest(t)

	main := f.mainLine()
	main.FileUpload = &configurator.FilePayload{FileName: "drawing.pdf", FileData: "ZHJhd2luZw=="}
	main.ConditionalFileUpload = &configurator.FilePayload{FileName: "sample.png", FileData: "c2FtcGxl"}

	err := f.service.Submit(context.Background(), &configurator.SubmissionPayload{
		LeadID: f.lead.ID,
		Main:   main,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"drawing.pdf", "sample.png"}, f.uploader.uploads)

	var line model.MaterialLine
	require.NoError(t, f.db.Where("lead_id = ?", f.lead.ID).First(&line).Error)
	assert.Equal(t, "drawing.pdf", line.FileName)
	assert.Equal(t, "https://files.example.com/material-lines/drawing.pdf", line.FileURL)
	assert.Equal(t, "sample.png", line.ConditionalFileName)
	assert.Equal(t, "https://files.example.com/material-lines/sample.png", line.ConditionalFileURL)
}

func TestSubmitService_Submit_UploadFailureAborts(t *testing.T) {
	f := setupSubmitServiceTest(t)
	f.uploader.fail = true

	main := f.mainLine()
	main.FileUpload = &configurator.FilePayload{FileName: "drawing.pdf", FileData: "ZHJhd2luZw=="}

	err := f.service.Submit(context.Background(), &configurator.SubmissionPayload{
		LeadID: f.lead.ID,
		Main:   main,
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, f.db.Model(&model.MaterialLine{}).Where("lead_id = ?", f.lead.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitService_Submit_CustomValues(t *testing.T) {
	f := setupSubmitServiceTest(t)

	main := f.mainLine()
	main.CustomValues = []configurator.CustomValueEntry{
		{ValueID: f.catalog.offered["Color/Blue"], Value: "RAL 5010"},
	}

	err := f.service.Submit(context.Background(), &configurator.SubmissionPayload{
		LeadID: f.lead.ID,
		Main:   main,
	})
	require.NoError(t, err)

	var line model.MaterialLine
	require.NoError(t, f.db.Preload("CustomValues").Where("lead_id = ?", f.lead.ID).First(&line).Error)
	require.Len(t, line.CustomValues, 1)
	assert.Equal(t, "RAL 5010", line.CustomValues[0].CustomValue)
	// Custom text replaces the value name in the description.
	assert.Equal(t, "Color: RAL 5010\nSize: Large", line.Description)
}

func TestSubmitService_QuantityOverride(t *testing.T) {
	f := setupSubmitServiceTest(t)

	attr := &model.ProductAttribute{Name: "Pieces", DisplayType: model.DisplayTypeRadio, IsQuantity: true}
	require.NoError(t, f.db.Create(attr).Error)
	value := &model.AttributeValue{AttributeID: attr.ID, Name: "12", IsCustom: true}
	require.NoError(t, f.db.Create(value).Error)
	line := &model.TemplateAttributeLine{
		TemplateID:  f.catalog.template.ID,
		AttributeID: attr.ID,
		Sequence:    5,
		VariantMode: model.VariantModeNever,
	}
	require.NoError(t, f.db.Create(line).Error)
	ptav := &model.TemplateAttributeValue{LineID: line.ID, ValueID: value.ID, Active: true}
	require.NoError(t, f.db.Create(ptav).Error)

	main := f.mainLine()
	main.ValueIDs = append(main.ValueIDs, ptav.ID)
	main.CustomValues = []configurator.CustomValueEntry{{ValueID: ptav.ID, Value: "25"}}

	err := f.service.Submit(context.Background(), &configurator.SubmissionPayload{
		LeadID: f.lead.ID,
		Main:   main,
	})
	require.NoError(t, err)

	var stored model.MaterialLine
	require.NoError(t, f.db.Where("lead_id = ?", f.lead.ID).First(&stored).Error)
	// Custom text on the quantity attribute wins over the entered quantity.
	assert.Equal(t, 25.0, stored.Quantity)
	// Quantity attributes never show up in the description.
	assert.Equal(t, "Color: Blue\nSize: Large", stored.Description)
}

func TestSubmitService_GelcoatDeclinedDescription(t *testing.T) {
	f := setupSubmitServiceTest(t)

	trigger := &model.ProductAttribute{Name: "Gel Coat REQ", DisplayType: model.DisplayTypeRadio}
	require.NoError(t, f.db.Create(trigger).Error)
	color := &model.ProductAttribute{Name: "Gel Coat Color", DisplayType: model.DisplayTypeRadio, IsGelcoatFlag: true}
	require.NoError(t, f.db.Create(color).Error)
	finish := &model.ProductAttribute{Name: "Finish", DisplayType: model.DisplayTypeRadio, PairWithPrevious: true}
	require.NoError(t, f.db.Create(finish).Error)

	var offered []uint
	for i, spec := range []struct {
		attr  *model.ProductAttribute
		value string
	}{
		{trigger, "No"},
		{color, "White"},
		{finish, "Matte"},
	} {
		value := &model.AttributeValue{AttributeID: spec.attr.ID, Name: spec.value}
		require.NoError(t, f.db.Create(value).Error)
		line := &model.TemplateAttributeLine{
			TemplateID:  f.catalog.template.ID,
			AttributeID: spec.attr.ID,
			Sequence:    10 + i,
			VariantMode: model.VariantModeNever,
		}
		require.NoError(t, f.db.Create(line).Error)
		ptav := &model.TemplateAttributeValue{LineID: line.ID, ValueID: value.ID, Active: true}
		require.NoError(t, f.db.Create(ptav).Error)
		offered = append(offered, ptav.ID)
	}

	main := f.mainLine()
	main.ValueIDs = append(main.ValueIDs, offered...)

	err := f.service.Submit(context.Background(), &configurator.SubmissionPayload{
		LeadID: f.lead.ID,
		Main:   main,
	})
	require.NoError(t, err)

	var stored model.MaterialLine
	require.NoError(t, f.db.Where("lead_id = ?", f.lead.ID).First(&stored).Error)
	// Gel coat declined drops the gel-coat attributes and their paired
	// follower from the description.
	assert.Equal(t, "Color: Blue\nSize: Large", stored.Description)
}
