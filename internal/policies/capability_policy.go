package policies

import "bulkops/internal/types"

var denialMessages = map[types.Capability]string{
	types.CapabilityAddUser:              "You don't have permission to create users.",
	types.CapabilityManageGroups:         "You don't have permission to manage groups.",
	types.CapabilityManageRoles:          "You don't have permission to create roles.",
	types.CapabilityAssignGlobalRoles:    "You don't have permission to assign global roles.",
	types.CapabilityAddProject:           "You don't have permission to create projects.",
	types.CapabilityAddSubprojects:       "You don't have permission to create sub-projects of this project.",
	types.CapabilityManageMembers:        "You don't have permission to manage the members of this project.",
	types.CapabilityEditProject:          "You don't have permission to edit the attributes of this project.",
	types.CapabilitySelectProjectModules: "You don't have permission to edit the modules of this project.",
	types.CapabilityManageTypes:          "You don't have permission to edit the work package types of this project.",
	types.CapabilityManageVersions:       "You don't have permission to manage versions of this project.",
	types.CapabilityManageCategories:     "You don't have permission to manage categories of this project.",
}

// DenialMessage is the user-facing sentence recorded when capability is
// refused.
func DenialMessage(capability types.Capability) string {
	if msg, ok := denialMessages[capability]; ok {
		return msg
	}
	return "You don't have permission to " + string(capability) + "."
}

// KnownCapability reports whether capability is part of the catalogue.
func KnownCapability(capability types.Capability) bool {
	_, ok := denialMessages[capability]
	return ok
}
