package policies

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"bulkops/internal/types"
)

func TestParseSettingsSelectionWhitelists(t *testing.T) {
	selection := ParseSettingsSelection(map[string][]string{
		"attributes": {"status", "name", "description", "identifier"},
		"versions":   {"dates", "new_versions", "sharing"},
		"categories": {"new_categories"},
		"members":    {"all"},
	}, []string{"categories", "members", "versions", "attributes"})

	want := SettingsSelection{
		Categories:    []types.SettingCategory{types.SettingCategories, types.SettingVersions, types.SettingAttributes},
		Attributes:    []AttributeField{AttributeDescription, AttributeStatus},
		VersionFields: []VersionField{VersionEffectiveDate, VersionStartDate},
		NewVersions:   true,
		NewCategories: true,
	}
	if diff := cmp.Diff(want, selection); diff != "" {
		t.Fatalf("unexpected selection (-want +got):\n%s", diff)
	}
}

func TestParseSettingsSelectionDefaultOrder(t *testing.T) {
	selection := ParseSettingsSelection(map[string][]string{
		"categories": nil,
		"attributes": {"public"},
	}, nil)

	assert.Equal(t, []types.SettingCategory{types.SettingAttributes, types.SettingCategories}, selection.Categories)
	assert.False(t, selection.NewCategories)
}

func TestParseSettingsSelectionNormalizesKeys(t *testing.T) {
	selection := ParseSettingsSelection(map[string][]string{
		"Versions":    {"new_versions"},
		" Categories": {"new_categories"},
	}, nil)

	assert.Equal(t, []types.SettingCategory{types.SettingVersions, types.SettingCategories}, selection.Categories)
	assert.True(t, selection.NewVersions)
	assert.True(t, selection.NewCategories)

	ordered := ParseSettingsSelection(map[string][]string{"VERSIONS": {"dates"}}, []string{"versions"})
	assert.Equal(t, []VersionField{VersionEffectiveDate, VersionStartDate}, ordered.VersionFields)
}

func TestParseSettingsSelectionIgnoresUnknownCategories(t *testing.T) {
	selection := ParseSettingsSelection(map[string][]string{"wiki": {"pages"}}, nil)
	assert.True(t, selection.Empty())
}

func TestAttributeCapability(t *testing.T) {
	capability, gated := AttributeCapability(AttributeEnabledModules)
	assert.True(t, gated)
	assert.Equal(t, types.CapabilitySelectProjectModules, capability)

	capability, gated = AttributeCapability(AttributeTypes)
	assert.True(t, gated)
	assert.Equal(t, types.CapabilityManageTypes, capability)

	_, gated = AttributeCapability(AttributeDescription)
	assert.False(t, gated)
}

func TestCategoryCapability(t *testing.T) {
	assert.Equal(t, types.CapabilityEditProject, CategoryCapability(types.SettingAttributes))
	assert.Equal(t, types.CapabilityManageVersions, CategoryCapability(types.SettingVersions))
	assert.Equal(t, types.CapabilityManageCategories, CategoryCapability(types.SettingCategories))
}
