package ports

import (
	"context"

	"bulkops/internal/types"
)

// Lookups return (entity, false, nil) when nothing matches the natural key.
// Create and update calls return *types.ValidationError when the entity is
// rejected by the store's own validation.

type UserStorePort interface {
	FindUserByID(ctx context.Context, id int64) (types.User, bool, error)
	FindUserByLogin(ctx context.Context, login string) (types.User, bool, error)
	CreateUser(ctx context.Context, user types.User) (types.User, error)
}

type GroupStorePort interface {
	FindGroupByName(ctx context.Context, name string) (types.Group, bool, error)
	CreateGroup(ctx context.Context, group types.Group) (types.Group, error)
	GroupHasUser(ctx context.Context, groupID int64, userID int64) (bool, error)
	AddUserToGroup(ctx context.Context, groupID int64, userID int64) error
}

type RoleStorePort interface {
	FindRoleByName(ctx context.Context, name string) (types.Role, bool, error)
	CreateRole(ctx context.Context, role types.Role) (types.Role, error)
	PrincipalHasGlobalRole(ctx context.Context, principalID int64, roleID int64) (bool, error)
	GrantGlobalRole(ctx context.Context, principalID int64, roleID int64) error
}

type ProjectStorePort interface {
	FindProjectByID(ctx context.Context, id int64) (types.Project, bool, error)
	FindProjectByIdentifier(ctx context.Context, identifier string) (types.Project, bool, error)
	CreateProject(ctx context.Context, project types.Project) (types.Project, error)
	UpdateProject(ctx context.Context, id int64, patch types.ProjectPatch) error
	// ActiveChildren lists the direct children that are active (not archived).
	ActiveChildren(ctx context.Context, parentID int64) ([]types.Project, error)
	// CopyAssociation duplicates one association family from one project into
	// another. Failures on individual items are returned as validation
	// messages and do not stop the remaining items.
	CopyAssociation(ctx context.Context, fromID int64, toID int64, kind types.AssociationKind) ([]string, error)
}

type MembershipStorePort interface {
	FindMembership(ctx context.Context, principalID int64, projectID int64) (types.Membership, bool, error)
	CreateMembership(ctx context.Context, membership types.Membership) (types.Membership, error)
	UpdateMembershipRoles(ctx context.Context, membershipID int64, roleIDs []int64) error
}

type VersionStorePort interface {
	ProjectVersions(ctx context.Context, projectID int64) ([]types.Version, error)
	CreateVersion(ctx context.Context, version types.Version) (types.Version, error)
	UpdateVersion(ctx context.Context, id int64, patch types.VersionPatch) error
}

type CategoryStorePort interface {
	ProjectCategories(ctx context.Context, projectID int64) ([]types.Category, error)
	CreateCategory(ctx context.Context, category types.Category) (types.Category, error)
}

// StorePort is the persistence collaborator for every entity kind touched by
// the import and propagation jobs.
type StorePort interface {
	UserStorePort
	GroupStorePort
	RoleStorePort
	ProjectStorePort
	MembershipStorePort
	VersionStorePort
	CategoryStorePort
}
