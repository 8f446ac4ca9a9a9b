package configurator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPayload_FiltersFileAndReferenceValueIDs(t *testing.T) {
	main := &Product{
		TemplateID:  1,
		DisplayName: "Main",
		Quantity:    2,
		Price:       120,
		Lines: []*AttributeLine{
			{
				ID:               10,
				Attribute:        Attribute{ID: 100, Name: "Color", DisplayType: DisplayRadio},
				Values:           []*AttributeValue{{ID: 1, Name: "Red"}, {ID: 2, Name: "Blue"}},
				SelectedValueIDs: []uint{1},
			},
			{
				ID:               11,
				Attribute:        Attribute{ID: 101, Name: "Drawing", DisplayType: DisplayFileUpload},
				Values:           []*AttributeValue{{ID: 3, Name: "Upload"}},
				SelectedValueIDs: []uint{3},
			},
			{
				ID:               12,
				Attribute:        Attribute{ID: 102, Name: "Profile", DisplayType: DisplayM2O, M2OModel: "profile"},
				Values:           []*AttributeValue{{ID: 4, Name: "Profile"}},
				SelectedValueIDs: []uint{4},
			},
		},
	}
	collab := &fakeCollaborator{loadResult: &LoadResult{Products: []*Product{main}}}
	s, err := Open(context.Background(), collab, OpenOptions{SessionID: "s", LeadID: 3, TemplateID: 1})
	require.NoError(t, err)

	payload, err := s.BuildPayload(context.Background())
	require.NoError(t, err)

	// Upload and reference values travel as side payloads, never as
	// combination value ids.
	assert.Equal(t, []uint{1}, payload.Main.ValueIDs)
	assert.Equal(t, float64(2), payload.Main.Quantity)
	assert.Equal(t, float64(120), payload.Main.Price)
	assert.Equal(t, uint(3), payload.LeadID)
}

func TestBuildPayload_CarriesSidePayloads(t *testing.T) {
	collab := &fakeCollaborator{}
	s := newTestSession(t, collab)
	require.NoError(t, s.SelectValue(context.Background(), 1, 10, 1, false))

	s.SetFileUpload(1, 10, &FilePayload{FileName: "drawing.pdf", FileData: "Zm9v"})
	s.SetConditionalFileUpload(1, 11, &FilePayload{FileName: "cert.pdf", FileData: "YmFy"})
	s.m2oSelections[LineKey{TemplateID: 1, LineID: 12}] = 9

	payload, err := s.BuildPayload(context.Background())
	require.NoError(t, err)

	require.NotNil(t, payload.Main.FileUpload)
	assert.Equal(t, "drawing.pdf", payload.Main.FileUpload.FileName)
	require.NotNil(t, payload.Main.ConditionalFileUpload)
	assert.Equal(t, "cert.pdf", payload.Main.ConditionalFileUpload.FileName)
	require.Len(t, payload.Main.M2OValues, 1)
	assert.Equal(t, M2OValueEntry{LineID: 12, ResID: 9}, payload.Main.M2OValues[0])
}

func TestBuildPayload_IncludesSelectedCustomValues(t *testing.T) {
	main := &Product{
		TemplateID:  1,
		DisplayName: "Main",
		Quantity:    1,
		Lines: []*AttributeLine{
			{
				ID:        10,
				Attribute: Attribute{ID: 100, Name: "Width", DisplayType: DisplayNumeric},
				Values: []*AttributeValue{
					{ID: 1, Name: "Standard"},
					{ID: 2, Name: "Custom", IsCustom: true},
				},
			},
		},
	}
	collab := &fakeCollaborator{loadResult: &LoadResult{Products: []*Product{main}}}
	s, err := Open(context.Background(), collab, OpenOptions{SessionID: "s", TemplateID: 1})
	require.NoError(t, err)

	require.NoError(t, s.SelectValue(context.Background(), 1, 10, 2, false))
	s.SetCustomValue(1, 2, "140")

	payload, err := s.BuildPayload(context.Background())
	require.NoError(t, err)
	require.Len(t, payload.Main.CustomValues, 1)
	assert.Equal(t, CustomValueEntry{ValueID: 2, Value: "140"}, payload.Main.CustomValues[0])

	// Moving the selection off the custom slot drops the custom text.
	require.NoError(t, s.SelectValue(context.Background(), 1, 10, 1, false))
	payload, err = s.BuildPayload(context.Background())
	require.NoError(t, err)
	assert.Empty(t, payload.Main.CustomValues)
}

func TestBuildPayload_CreatesVariantForDynamicPolicy(t *testing.T) {
	main := &Product{
		TemplateID:  1,
		DisplayName: "Main",
		Quantity:    1,
		Lines: []*AttributeLine{
			{
				ID:               10,
				Attribute:        Attribute{ID: 100, Name: "Color", DisplayType: DisplayRadio},
				Values:           []*AttributeValue{{ID: 1, Name: "Red"}, {ID: 2, Name: "Blue"}},
				SelectedValueIDs: []uint{1},
				CreateVariant:    VariantDynamic,
			},
		},
	}
	collab := &fakeCollaborator{
		loadResult: &LoadResult{Products: []*Product{main}},
		variantID:  77,
	}
	s, err := Open(context.Background(), collab, OpenOptions{SessionID: "s", TemplateID: 1})
	require.NoError(t, err)

	payload, err := s.BuildPayload(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint(77), payload.Main.ProductID)
	require.Len(t, collab.variantCalls, 1)
	assert.Equal(t, []uint{1}, collab.variantCalls[0])
}

func TestBuildPayload_DefaultsQuantityToOne(t *testing.T) {
	collab := &fakeCollaborator{}
	s := newTestSession(t, collab)
	s.Graph.Main().Quantity = 0

	payload, err := s.BuildPayload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(1), payload.Main.Quantity)
}

func TestBuildPayload_ClampsNegativePriceToZero(t *testing.T) {
	collab := &fakeCollaborator{}
	s := newTestSession(t, collab)
	s.Graph.Main().Price = -50

	payload, err := s.BuildPayload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(0), payload.Main.Price)
}

func TestBuildPayload_SplitsMainAndOptional(t *testing.T) {
	collab := &fakeCollaborator{}
	s := newTestSession(t, collab)
	require.NoError(t, s.Attach(context.Background(), 2))

	payload, err := s.BuildPayload(context.Background())
	require.NoError(t, err)

	assert.Equal(t, uint(1), payload.Main.TemplateID)
	require.Len(t, payload.Optional, 1)
	assert.Equal(t, uint(2), payload.Optional[0].TemplateID)
}
