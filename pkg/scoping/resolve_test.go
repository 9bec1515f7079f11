package scoping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erd-lab/procatalog/dao/model"
)

func uintPtr(v uint) *uint { return &v }

func baseProcess() *model.Process {
	return &model.Process{
		Taxonomy:     model.TaxonomyPMBOK,
		Number:       1,
		Name:         "Develop Charter",
		KanbanStatus: model.KanbanBacklog,
		Inputs:       model.ItemList{{Name: "Business Case"}},
		Tools:        model.ItemList{{Name: "Expert Judgment", Link: "https://example.com/ej"}},
		Outputs:      model.ItemList{{Name: "Project Charter"}},
	}
}

func TestResolveUnscopedReturnsBase(t *testing.T) {
	p := baseProcess()
	customizations := []model.Customization{
		{CountryCode: "CO", Inputs: model.ItemList{{Name: "Local Input"}}},
	}

	r := Resolve(p, customizations, Scope{})

	assert.Nil(t, r.Customization)
	assert.Equal(t, p.Inputs, r.Inputs)
	assert.Equal(t, p.KanbanStatus, r.KanbanStatus)
}

func TestResolveNoMatchReturnsBase(t *testing.T) {
	p := baseProcess()
	customizations := []model.Customization{
		{CountryCode: "US", Inputs: model.ItemList{{Name: "US Input"}}},
	}

	r := Resolve(p, customizations, Scope{CountryCode: "CO"})

	assert.Nil(t, r.Customization)
	assert.Equal(t, "Business Case", r.Inputs[0].Name)
}

func TestResolveSparseOverride(t *testing.T) {
	// An empty customization list must not hide the base list; a non-empty
	// one replaces it wholesale.
	p := baseProcess()
	customizations := []model.Customization{
		{
			CountryCode:  "CO",
			Inputs:       model.ItemList{},
			Tools:        model.ItemList{{Name: "Local Workshop"}},
			KanbanStatus: model.KanbanInProgress,
		},
	}

	r := Resolve(p, customizations, Scope{CountryCode: "CO"})

	require.NotNil(t, r.Customization)
	assert.Equal(t, "Business Case", r.Inputs[0].Name, "empty override must leave base inputs visible")
	assert.Equal(t, "Local Workshop", r.Tools[0].Name)
	assert.Equal(t, "Project Charter", r.Outputs[0].Name)
	assert.Equal(t, model.KanbanInProgress, r.KanbanStatus, "kanban status is tracked per customization")
}

func TestResolveCountryCaseInsensitive(t *testing.T) {
	p := baseProcess()
	customizations := []model.Customization{
		{CountryCode: "CO", Outputs: model.ItemList{{Name: "Acta Local"}}},
	}

	r := Resolve(p, customizations, Scope{CountryCode: "co"})

	require.NotNil(t, r.Customization)
	assert.Equal(t, "Acta Local", r.Outputs[0].Name)
}

func TestMatchDepartmentScope(t *testing.T) {
	countryWide := model.Customization{CountryCode: "CO"}
	itOnly := model.Customization{CountryCode: "CO", DepartmentID: uintPtr(7)}
	customizations := []model.Customization{countryWide, itOnly}

	got := Match(customizations, Scope{CountryCode: "CO"})
	require.NotNil(t, got)
	assert.Nil(t, got.DepartmentID, "nil department selects the country-wide row")

	got = Match(customizations, Scope{CountryCode: "CO", DepartmentID: uintPtr(7)})
	require.NotNil(t, got)
	require.NotNil(t, got.DepartmentID)
	assert.Equal(t, uint(7), *got.DepartmentID)

	got = Match(customizations, Scope{CountryCode: "CO", DepartmentID: uintPtr(8)})
	assert.Nil(t, got, "unknown department must not fall back to another row")
}
