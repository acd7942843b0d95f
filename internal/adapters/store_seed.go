package adapters

import (
	"context"
	"fmt"
	"os"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"bulkops/internal/ports"
	"bulkops/internal/types"
)

// StoreSeed describes an initial data set for a store. Projects reference
// their parent by identifier and must be listed after it.
type StoreSeed struct {
	Users    []SeedUser    `yaml:"users"`
	Groups   []SeedGroup   `yaml:"groups"`
	Roles    []types.Role  `yaml:"roles"`
	Projects []SeedProject `yaml:"projects"`
}

type SeedUser struct {
	types.User  `yaml:",inline"`
	GlobalRoles []string `yaml:"global_roles"`
}

type SeedGroup struct {
	Name    string   `yaml:"name"`
	Members []string `yaml:"members"`
}

type SeedProject struct {
	types.Project `yaml:",inline"`
	Parent        string           `yaml:"parent"`
	Archived      bool             `yaml:"archived"`
	Versions      []types.Version  `yaml:"versions"`
	Categories    []string         `yaml:"categories"`
	Artifacts     []types.Artifact `yaml:"artifacts"`
	Members       []SeedMember     `yaml:"members"`
}

// SeedMember names a user login or group name and the project roles it
// holds.
type SeedMember struct {
	Principal string   `yaml:"principal"`
	Roles     []string `yaml:"roles"`
}

// SeedableStore is a store that can also hold opaque project content.
type SeedableStore interface {
	ports.StorePort
	AddArtifact(ctx context.Context, artifact types.Artifact) (types.Artifact, error)
}

func LoadStoreSeed(path string) (StoreSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return StoreSeed{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("failed to read seed file %s", path)).
			WithCause(err)
	}
	var seed StoreSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return StoreSeed{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to parse seed file %s", path)).
			WithCause(err)
	}
	return seed, nil
}

// ApplyStoreSeed writes seed into store. Entities that already exist by
// natural key are reused, so applying the same seed twice is harmless.
func ApplyStoreSeed(ctx context.Context, store SeedableStore, seed StoreSeed) error {
	for _, role := range seed.Roles {
		if role.Kind == "" {
			role.Kind = types.RoleKindProject
		}
		if _, err := ensureSeedRole(ctx, store, role); err != nil {
			return seedError("role "+role.Name, err)
		}
	}
	for _, entry := range seed.Users {
		user, err := ensureSeedUser(ctx, store, entry.User)
		if err != nil {
			return seedError("user "+entry.Login, err)
		}
		for _, name := range entry.GlobalRoles {
			role, found, err := store.FindRoleByName(ctx, name)
			if err != nil || !found {
				return seedError("global role "+name, missingOr(err, "role"))
			}
			if err := store.GrantGlobalRole(ctx, user.ID, role.ID); err != nil {
				return seedError("global role "+name, err)
			}
		}
	}
	for _, entry := range seed.Groups {
		group, err := ensureSeedGroup(ctx, store, entry.Name)
		if err != nil {
			return seedError("group "+entry.Name, err)
		}
		for _, login := range entry.Members {
			user, found, err := store.FindUserByLogin(ctx, login)
			if err != nil || !found {
				return seedError("group member "+login, missingOr(err, "user"))
			}
			if err := store.AddUserToGroup(ctx, group.ID, user.ID); err != nil {
				return seedError("group member "+login, err)
			}
		}
	}
	for _, entry := range seed.Projects {
		if err := applySeedProject(ctx, store, entry); err != nil {
			return seedError("project "+entry.Identifier, err)
		}
	}
	return nil
}

func applySeedProject(ctx context.Context, store SeedableStore, entry SeedProject) error {
	project, found, err := store.FindProjectByIdentifier(ctx, entry.Identifier)
	if err != nil {
		return err
	}
	if !found {
		candidate := entry.Project
		candidate.Active = !entry.Archived
		if entry.Parent != "" {
			parent, ok, err := store.FindProjectByIdentifier(ctx, entry.Parent)
			if err != nil || !ok {
				return missingOr(err, "parent project")
			}
			candidate.ParentID = &parent.ID
		}
		if project, err = store.CreateProject(ctx, candidate); err != nil {
			return err
		}
	}
	existingVersions, err := store.ProjectVersions(ctx, project.ID)
	if err != nil {
		return err
	}
	for _, version := range entry.Versions {
		if hasVersion(existingVersions, version.Name) {
			continue
		}
		version.ProjectID = project.ID
		if version.Status == "" {
			version.Status = types.VersionStatusOpen
		}
		if version.Sharing == "" {
			version.Sharing = types.VersionSharingNone
		}
		if _, err := store.CreateVersion(ctx, version); err != nil {
			return err
		}
	}
	existingCats, err := store.ProjectCategories(ctx, project.ID)
	if err != nil {
		return err
	}
	for _, name := range entry.Categories {
		if hasCategory(existingCats, name) {
			continue
		}
		if _, err := store.CreateCategory(ctx, types.Category{ProjectID: project.ID, Name: name}); err != nil {
			return err
		}
	}
	if !found {
		for _, artifact := range entry.Artifacts {
			artifact.ProjectID = project.ID
			if _, err := store.AddArtifact(ctx, artifact); err != nil {
				return err
			}
		}
	}
	for _, member := range entry.Members {
		if err := applySeedMember(ctx, store, project, member); err != nil {
			return err
		}
	}
	return nil
}

func applySeedMember(ctx context.Context, store SeedableStore, project types.Project, member SeedMember) error {
	principalID, err := seedPrincipalID(ctx, store, member.Principal)
	if err != nil {
		return err
	}
	roleIDs := make([]int64, 0, len(member.Roles))
	for _, name := range member.Roles {
		role, found, err := store.FindRoleByName(ctx, name)
		if err != nil || !found {
			return missingOr(err, "role")
		}
		roleIDs = append(roleIDs, role.ID)
	}
	membership, found, err := store.FindMembership(ctx, principalID, project.ID)
	if err != nil {
		return err
	}
	if found {
		return store.UpdateMembershipRoles(ctx, membership.ID, append(membership.RoleIDs, roleIDs...))
	}
	_, err = store.CreateMembership(ctx, types.Membership{PrincipalID: principalID, ProjectID: project.ID, RoleIDs: roleIDs})
	return err
}

func seedPrincipalID(ctx context.Context, store SeedableStore, name string) (int64, error) {
	user, found, err := store.FindUserByLogin(ctx, name)
	if err != nil {
		return 0, err
	}
	if found {
		return user.ID, nil
	}
	group, found, err := store.FindGroupByName(ctx, name)
	if err != nil || !found {
		return 0, missingOr(err, "principal")
	}
	return group.ID, nil
}

func ensureSeedRole(ctx context.Context, store SeedableStore, role types.Role) (types.Role, error) {
	existing, found, err := store.FindRoleByName(ctx, role.Name)
	if err != nil || found {
		return existing, err
	}
	return store.CreateRole(ctx, role)
}

func ensureSeedUser(ctx context.Context, store SeedableStore, user types.User) (types.User, error) {
	existing, found, err := store.FindUserByLogin(ctx, user.Login)
	if err != nil || found {
		return existing, err
	}
	if user.Status == "" {
		user.Status = types.PrincipalStatusActive
	}
	return store.CreateUser(ctx, user)
}

func ensureSeedGroup(ctx context.Context, store SeedableStore, name string) (types.Group, error) {
	existing, found, err := store.FindGroupByName(ctx, name)
	if err != nil || found {
		return existing, err
	}
	return store.CreateGroup(ctx, types.Group{Name: name})
}

func hasVersion(versions []types.Version, name string) bool {
	for _, v := range versions {
		if v.Name == name {
			return true
		}
	}
	return false
}

func hasCategory(categories []types.Category, name string) bool {
	for _, c := range categories {
		if c.Name == name {
			return true
		}
	}
	return false
}

func missingOr(err error, kind string) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("%s not found", kind)
}

func seedError(what string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("failed to seed %s", what)).
		WithCause(err)
}
