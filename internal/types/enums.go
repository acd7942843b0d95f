package types

type PrincipalStatus string

const (
	PrincipalStatusActive  PrincipalStatus = "active"
	PrincipalStatusInvited PrincipalStatus = "invited"
	PrincipalStatusLocked  PrincipalStatus = "locked"
	PrincipalStatusBuiltin PrincipalStatus = "builtin"
)

type RoleKind string

const (
	RoleKindGlobal  RoleKind = "global"
	RoleKindProject RoleKind = "project"
)

type AuthMode string

const (
	AuthModeIdentityURL AuthMode = "identity_url"
	AuthModeEmailInvite AuthMode = "email_invite"
)

type VersionStatus string

const (
	VersionStatusOpen   VersionStatus = "open"
	VersionStatusLocked VersionStatus = "locked"
	VersionStatusClosed VersionStatus = "closed"
)

type VersionSharing string

const (
	VersionSharingNone        VersionSharing = "none"
	VersionSharingDescendants VersionSharing = "descendants"
	VersionSharingHierarchy   VersionSharing = "hierarchy"
	VersionSharingTree        VersionSharing = "tree"
	VersionSharingSystem      VersionSharing = "system"
)

// Capability names a privileged action checked by the permission gate.
type Capability string

const (
	CapabilityAddUser              Capability = "add_user"
	CapabilityManageGroups         Capability = "manage_groups"
	CapabilityManageRoles          Capability = "manage_roles"
	CapabilityAssignGlobalRoles    Capability = "assign_global_roles"
	CapabilityAddProject           Capability = "add_project"
	CapabilityAddSubprojects       Capability = "add_subprojects"
	CapabilityManageMembers        Capability = "manage_members"
	CapabilityEditProject          Capability = "edit_project"
	CapabilitySelectProjectModules Capability = "select_project_modules"
	CapabilityManageTypes          Capability = "manage_types"
	CapabilityManageVersions       Capability = "manage_versions"
	CapabilityManageCategories     Capability = "manage_categories"
)

// AssociationKind is one family of project content copied into a new
// sub-project.
type AssociationKind string

const (
	AssociationWorkPackages           AssociationKind = "work_packages"
	AssociationWorkPackageAttachments AssociationKind = "work_package_attachments"
	AssociationVersions               AssociationKind = "versions"
	AssociationQueries                AssociationKind = "queries"
	AssociationCategories             AssociationKind = "categories"
	AssociationForums                 AssociationKind = "forums"
	AssociationWiki                   AssociationKind = "wiki"
	AssociationWikiPageAttachments    AssociationKind = "wiki_page_attachments"
)

// DeepCopyAssociations lists the associations copied into a sub-project, in
// copy order. Memberships are never part of it.
var DeepCopyAssociations = []AssociationKind{
	AssociationWorkPackages,
	AssociationWorkPackageAttachments,
	AssociationVersions,
	AssociationQueries,
	AssociationCategories,
	AssociationForums,
	AssociationWiki,
	AssociationWikiPageAttachments,
}

// SettingCategory is a top-level group of project settings that can be
// propagated from a parent project to its children.
type SettingCategory string

const (
	SettingAttributes SettingCategory = "attributes"
	SettingVersions   SettingCategory = "versions"
	SettingCategories SettingCategory = "categories"
)
