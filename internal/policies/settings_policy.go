package policies

import (
	"strings"

	"bulkops/internal/types"
)

// AttributeField is a project attribute that can be copied from a parent to
// its children.
type AttributeField string

const (
	AttributeDescription    AttributeField = "description"
	AttributePublic         AttributeField = "public"
	AttributeStatus         AttributeField = "status"
	AttributeEnabledModules AttributeField = "enabled_module_names"
	AttributeTypes          AttributeField = "type_ids"
	AttributeCustomFields   AttributeField = "work_package_custom_field_ids"
)

var attributeWhitelist = []AttributeField{
	AttributeDescription,
	AttributePublic,
	AttributeStatus,
	AttributeEnabledModules,
	AttributeTypes,
	AttributeCustomFields,
}

// VersionField is a version field copied onto same-named child versions.
type VersionField string

const (
	VersionEffectiveDate VersionField = "effective_date"
	VersionStartDate     VersionField = "start_date"
	VersionDescription   VersionField = "description"
	VersionStatus        VersionField = "status"
)

const (
	selectNewVersions   = "new_versions"
	selectNewCategories = "new_categories"
	selectDates         = "dates"
)

var versionWhitelist = []VersionField{
	VersionEffectiveDate,
	VersionStartDate,
	VersionDescription,
	VersionStatus,
}

// SettingsSelection is the validated form of a caller's settings choice.
// Categories keeps the order in which categories were first selected.
type SettingsSelection struct {
	Categories    []types.SettingCategory
	Attributes    []AttributeField
	VersionFields []VersionField
	NewVersions   bool
	NewCategories bool
}

func (s SettingsSelection) Empty() bool {
	return len(s.Categories) == 0
}

func (s SettingsSelection) HasVersionField(field VersionField) bool {
	for _, f := range s.VersionFields {
		if f == field {
			return true
		}
	}
	return false
}

// ParseSettingsSelection keeps only recognised categories and values;
// anything else is dropped without error. A category key that is present is
// selected even when its value list is empty, matching the form semantics of
// the settings page.
func ParseSettingsSelection(raw map[string][]string, order []string) SettingsSelection {
	selection := SettingsSelection{}
	keys := order
	if len(keys) == 0 {
		keys = []string{string(types.SettingAttributes), string(types.SettingVersions), string(types.SettingCategories)}
	}
	normalized := make(map[types.SettingCategory][]string, len(raw))
	for key, values := range raw {
		category := normalizeCategory(key)
		normalized[category] = append(normalized[category], values...)
	}
	seen := map[types.SettingCategory]struct{}{}
	for _, key := range keys {
		category := normalizeCategory(key)
		values, ok := normalized[category]
		if !ok {
			continue
		}
		if _, dup := seen[category]; dup {
			continue
		}
		switch category {
		case types.SettingAttributes:
			selection.Attributes = whitelistAttributes(values)
		case types.SettingVersions:
			selection.VersionFields, selection.NewVersions = whitelistVersions(values)
		case types.SettingCategories:
			selection.NewCategories = containsValue(values, selectNewCategories)
		default:
			continue
		}
		seen[category] = struct{}{}
		selection.Categories = append(selection.Categories, category)
	}
	return selection
}

func normalizeCategory(key string) types.SettingCategory {
	return types.SettingCategory(strings.TrimSpace(strings.ToLower(key)))
}

func whitelistAttributes(values []string) []AttributeField {
	var out []AttributeField
	for _, field := range attributeWhitelist {
		if containsValue(values, string(field)) {
			out = append(out, field)
		}
	}
	return out
}

func whitelistVersions(values []string) ([]VersionField, bool) {
	dates := containsValue(values, selectDates)
	var out []VersionField
	for _, field := range versionWhitelist {
		isDate := field == VersionEffectiveDate || field == VersionStartDate
		if containsValue(values, string(field)) || (isDate && dates) {
			out = append(out, field)
		}
	}
	return out, containsValue(values, selectNewVersions)
}

func containsValue(values []string, want string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == want {
			return true
		}
	}
	return false
}

// AttributeCapability names the capability a child project requires before
// field may be overwritten, beyond the general edit capability.
func AttributeCapability(field AttributeField) (types.Capability, bool) {
	switch field {
	case AttributeEnabledModules:
		return types.CapabilitySelectProjectModules, true
	case AttributeTypes:
		return types.CapabilityManageTypes, true
	default:
		return "", false
	}
}

// CategoryCapability is the capability gating a whole setting category.
func CategoryCapability(category types.SettingCategory) types.Capability {
	switch category {
	case types.SettingAttributes:
		return types.CapabilityEditProject
	case types.SettingVersions:
		return types.CapabilityManageVersions
	default:
		return types.CapabilityManageCategories
	}
}
