package adapters

import (
	"context"
	"slices"
	"sync"

	"bulkops/internal/types"
)

// MemoryStore keeps every entity in process memory. Users and groups share
// one principal ID space so memberships can point at either.
type MemoryStore struct {
	mu          sync.Mutex
	nextID      int64
	users       map[int64]types.User
	groups      map[int64]types.Group
	groupUsers  map[int64]map[int64]struct{}
	roles       map[int64]types.Role
	globalRoles map[int64]map[int64]struct{}
	projects    map[int64]types.Project
	memberships map[int64]types.Membership
	versions    map[int64]types.Version
	categories  map[int64]types.Category
	artifacts   map[int64]types.Artifact
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       map[int64]types.User{},
		groups:      map[int64]types.Group{},
		groupUsers:  map[int64]map[int64]struct{}{},
		roles:       map[int64]types.Role{},
		globalRoles: map[int64]map[int64]struct{}{},
		projects:    map[int64]types.Project{},
		memberships: map[int64]types.Membership{},
		versions:    map[int64]types.Version{},
		categories:  map[int64]types.Category{},
		artifacts:   map[int64]types.Artifact{},
	}
}

func (s *MemoryStore) id() int64 {
	s.nextID++
	return s.nextID
}

// sortedIDs returns the keys of m in creation order.
func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *MemoryStore) FindUserByID(ctx context.Context, id int64) (types.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	return user, ok, nil
}

func (s *MemoryStore) FindUserByLogin(ctx context.Context, login string) (types.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userByLogin(login)
}

func (s *MemoryStore) userByLogin(login string) (types.User, bool, error) {
	key := foldKey(login)
	for _, id := range sortedIDs(s.users) {
		if foldKey(s.users[id].Login) == key {
			return s.users[id], true, nil
		}
	}
	return types.User{}, false, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, user types.User) (types.User, error) {
	if verr := validateEntity(user); verr != nil {
		return types.User{}, verr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken, _ := s.userByLogin(user.Login); taken {
		return types.User{}, takenError("Login")
	}
	user.ID = s.id()
	s.users[user.ID] = user
	return user, nil
}

func (s *MemoryStore) FindGroupByName(ctx context.Context, name string) (types.Group, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groupByName(name)
}

func (s *MemoryStore) groupByName(name string) (types.Group, bool, error) {
	key := foldKey(name)
	for _, id := range sortedIDs(s.groups) {
		if foldKey(s.groups[id].Name) == key {
			return s.groups[id], true, nil
		}
	}
	return types.Group{}, false, nil
}

func (s *MemoryStore) CreateGroup(ctx context.Context, group types.Group) (types.Group, error) {
	if verr := validateEntity(group); verr != nil {
		return types.Group{}, verr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken, _ := s.groupByName(group.Name); taken {
		return types.Group{}, takenError("Name")
	}
	group.ID = s.id()
	s.groups[group.ID] = group
	return group, nil
}

func (s *MemoryStore) GroupHasUser(ctx context.Context, groupID int64, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.groupUsers[groupID][userID]
	return ok, nil
}

func (s *MemoryStore) AddUserToGroup(ctx context.Context, groupID int64, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[groupID]; !ok {
		return &types.ValidationError{Messages: []string{"Group does not exist."}}
	}
	if _, ok := s.users[userID]; !ok {
		return &types.ValidationError{Messages: []string{"User does not exist."}}
	}
	if s.groupUsers[groupID] == nil {
		s.groupUsers[groupID] = map[int64]struct{}{}
	}
	s.groupUsers[groupID][userID] = struct{}{}
	return nil
}

// GroupUserIDs lists the members of a group in ID order.
func (s *MemoryStore) GroupUserIDs(groupID int64) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedIDs(s.groupUsers[groupID])
}

func (s *MemoryStore) FindRoleByName(ctx context.Context, name string) (types.Role, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roleByName(name)
}

func (s *MemoryStore) roleByName(name string) (types.Role, bool, error) {
	key := foldKey(name)
	for _, id := range sortedIDs(s.roles) {
		if foldKey(s.roles[id].Name) == key {
			return s.roles[id], true, nil
		}
	}
	return types.Role{}, false, nil
}

func (s *MemoryStore) CreateRole(ctx context.Context, role types.Role) (types.Role, error) {
	if verr := validateEntity(role); verr != nil {
		return types.Role{}, verr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken, _ := s.roleByName(role.Name); taken {
		return types.Role{}, takenError("Name")
	}
	role.ID = s.id()
	s.roles[role.ID] = role
	return role, nil
}

func (s *MemoryStore) PrincipalHasGlobalRole(ctx context.Context, principalID int64, roleID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.globalRoles[principalID][roleID]
	return ok, nil
}

func (s *MemoryStore) GrantGlobalRole(ctx context.Context, principalID int64, roleID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	role, ok := s.roles[roleID]
	if !ok || role.Kind != types.RoleKindGlobal {
		return &types.ValidationError{Messages: []string{"Role is not a global role."}}
	}
	if s.globalRoles[principalID] == nil {
		s.globalRoles[principalID] = map[int64]struct{}{}
	}
	s.globalRoles[principalID][roleID] = struct{}{}
	return nil
}

func (s *MemoryStore) FindProjectByID(ctx context.Context, id int64) (types.Project, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	project, ok := s.projects[id]
	return cloneProject(project), ok, nil
}

func (s *MemoryStore) FindProjectByIdentifier(ctx context.Context, identifier string) (types.Project, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectByIdentifier(identifier)
}

func (s *MemoryStore) projectByIdentifier(identifier string) (types.Project, bool, error) {
	key := foldKey(identifier)
	for _, id := range sortedIDs(s.projects) {
		if foldKey(s.projects[id].Identifier) == key {
			return cloneProject(s.projects[id]), true, nil
		}
	}
	return types.Project{}, false, nil
}

func (s *MemoryStore) CreateProject(ctx context.Context, project types.Project) (types.Project, error) {
	if verr := validateEntity(project); verr != nil {
		return types.Project{}, verr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken, _ := s.projectByIdentifier(project.Identifier); taken {
		return types.Project{}, takenError("Identifier")
	}
	if project.ParentID != nil {
		if _, ok := s.projects[*project.ParentID]; !ok {
			return types.Project{}, &types.ValidationError{Messages: []string{"Parent project does not exist."}}
		}
	}
	project = cloneProject(project)
	project.ID = s.id()
	s.projects[project.ID] = project
	return cloneProject(project), nil
}

func (s *MemoryStore) UpdateProject(ctx context.Context, id int64, patch types.ProjectPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	project, ok := s.projects[id]
	if !ok {
		return &types.ValidationError{Messages: []string{"Project does not exist."}}
	}
	s.projects[id] = applyProjectPatch(project, patch)
	return nil
}

func (s *MemoryStore) ActiveChildren(ctx context.Context, parentID int64) ([]types.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var children []types.Project
	for _, id := range sortedIDs(s.projects) {
		project := s.projects[id]
		if project.ParentID != nil && *project.ParentID == parentID && project.Active {
			children = append(children, cloneProject(project))
		}
	}
	return children, nil
}

// CopyAssociation duplicates versions, categories or opaque artifacts of one
// kind from one project into another.
func (s *MemoryStore) CopyAssociation(ctx context.Context, fromID int64, toID int64, kind types.AssociationKind) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[toID]; !ok {
		return nil, &types.ValidationError{Messages: []string{"Project does not exist."}}
	}
	var messages []string
	switch kind {
	case types.AssociationVersions:
		for _, id := range sortedIDs(s.versions) {
			version := s.versions[id]
			if version.ProjectID != fromID {
				continue
			}
			version.ProjectID = toID
			if verr := validateEntity(version); verr != nil {
				messages = append(messages, itemMessages(kind, version.Name, verr.Messages)...)
				continue
			}
			if s.versionNameTaken(toID, version.Name) {
				messages = append(messages, itemMessages(kind, version.Name, takenError("Name").Messages)...)
				continue
			}
			version.ID = s.id()
			s.versions[version.ID] = version
		}
	case types.AssociationCategories:
		for _, id := range sortedIDs(s.categories) {
			category := s.categories[id]
			if category.ProjectID != fromID {
				continue
			}
			category.ProjectID = toID
			if verr := validateEntity(category); verr != nil {
				messages = append(messages, itemMessages(kind, category.Name, verr.Messages)...)
				continue
			}
			if s.categoryNameTaken(toID, category.Name) {
				messages = append(messages, itemMessages(kind, category.Name, takenError("Name").Messages)...)
				continue
			}
			category.ID = s.id()
			s.categories[category.ID] = category
		}
	default:
		for _, id := range sortedIDs(s.artifacts) {
			artifact := s.artifacts[id]
			if artifact.ProjectID != fromID || artifact.Kind != kind {
				continue
			}
			if verr := validateEntity(artifact); verr != nil {
				messages = append(messages, itemMessages(kind, artifact.Title, verr.Messages)...)
				continue
			}
			artifact.ProjectID = toID
			artifact.ID = s.id()
			s.artifacts[artifact.ID] = artifact
		}
	}
	return messages, nil
}

// AddArtifact stores an opaque piece of project content.
func (s *MemoryStore) AddArtifact(ctx context.Context, artifact types.Artifact) (types.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	artifact.ID = s.id()
	s.artifacts[artifact.ID] = artifact
	return artifact, nil
}

func (s *MemoryStore) ProjectArtifacts(ctx context.Context, projectID int64) ([]types.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.Artifact
	for _, id := range sortedIDs(s.artifacts) {
		if s.artifacts[id].ProjectID == projectID {
			out = append(out, s.artifacts[id])
		}
	}
	return out, nil
}

func (s *MemoryStore) FindMembership(ctx context.Context, principalID int64, projectID int64) (types.Membership, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range sortedIDs(s.memberships) {
		membership := s.memberships[id]
		if membership.PrincipalID == principalID && membership.ProjectID == projectID {
			membership.RoleIDs = slices.Clone(membership.RoleIDs)
			return membership, true, nil
		}
	}
	return types.Membership{}, false, nil
}

func (s *MemoryStore) CreateMembership(ctx context.Context, membership types.Membership) (types.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(membership.RoleIDs) == 0 {
		return types.Membership{}, &types.ValidationError{Messages: []string{"Roles need to be assigned."}}
	}
	for _, existing := range s.memberships {
		if existing.PrincipalID == membership.PrincipalID && existing.ProjectID == membership.ProjectID {
			return types.Membership{}, takenError("User")
		}
	}
	membership.ID = s.id()
	membership.RoleIDs = slices.Clone(membership.RoleIDs)
	s.memberships[membership.ID] = membership
	return membership, nil
}

func (s *MemoryStore) UpdateMembershipRoles(ctx context.Context, membershipID int64, roleIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	membership, ok := s.memberships[membershipID]
	if !ok {
		return &types.ValidationError{Messages: []string{"Membership does not exist."}}
	}
	membership.RoleIDs = uniqueIDs(roleIDs)
	s.memberships[membershipID] = membership
	return nil
}

// ProjectMemberships lists the memberships of a project in creation order.
func (s *MemoryStore) ProjectMemberships(ctx context.Context, projectID int64) ([]types.Membership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.Membership
	for _, id := range sortedIDs(s.memberships) {
		if s.memberships[id].ProjectID == projectID {
			out = append(out, s.memberships[id])
		}
	}
	return out, nil
}

func (s *MemoryStore) ProjectVersions(ctx context.Context, projectID int64) ([]types.Version, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.Version
	for _, id := range sortedIDs(s.versions) {
		if s.versions[id].ProjectID == projectID {
			out = append(out, s.versions[id])
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateVersion(ctx context.Context, version types.Version) (types.Version, error) {
	if verr := validateEntity(version); verr != nil {
		return types.Version{}, verr
	}
	if verr := validateVersionDates(version); verr != nil {
		return types.Version{}, verr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.versionNameTaken(version.ProjectID, version.Name) {
		return types.Version{}, takenError("Name")
	}
	version.ID = s.id()
	s.versions[version.ID] = version
	return version, nil
}

func (s *MemoryStore) UpdateVersion(ctx context.Context, id int64, patch types.VersionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	version, ok := s.versions[id]
	if !ok {
		return &types.ValidationError{Messages: []string{"Version does not exist."}}
	}
	version = applyVersionPatch(version, patch)
	if verr := validateVersionDates(version); verr != nil {
		return verr
	}
	s.versions[id] = version
	return nil
}

func (s *MemoryStore) ProjectCategories(ctx context.Context, projectID int64) ([]types.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []types.Category
	for _, id := range sortedIDs(s.categories) {
		if s.categories[id].ProjectID == projectID {
			out = append(out, s.categories[id])
		}
	}
	return out, nil
}

func (s *MemoryStore) CreateCategory(ctx context.Context, category types.Category) (types.Category, error) {
	if verr := validateEntity(category); verr != nil {
		return types.Category{}, verr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.categoryNameTaken(category.ProjectID, category.Name) {
		return types.Category{}, takenError("Name")
	}
	category.ID = s.id()
	s.categories[category.ID] = category
	return category, nil
}

func (s *MemoryStore) versionNameTaken(projectID int64, name string) bool {
	for _, existing := range s.versions {
		if existing.ProjectID == projectID && existing.Name == name {
			return true
		}
	}
	return false
}

func (s *MemoryStore) categoryNameTaken(projectID int64, name string) bool {
	for _, existing := range s.categories {
		if existing.ProjectID == projectID && existing.Name == name {
			return true
		}
	}
	return false
}

func cloneProject(project types.Project) types.Project {
	if project.ParentID != nil {
		parentID := *project.ParentID
		project.ParentID = &parentID
	}
	if project.Status != nil {
		status := *project.Status
		project.Status = &status
	}
	project.EnabledModules = slices.Clone(project.EnabledModules)
	project.TypeIDs = slices.Clone(project.TypeIDs)
	project.CustomFieldIDs = slices.Clone(project.CustomFieldIDs)
	return project
}

func applyProjectPatch(project types.Project, patch types.ProjectPatch) types.Project {
	if patch.Description != nil {
		project.Description = *patch.Description
	}
	if patch.Public != nil {
		project.Public = *patch.Public
	}
	if patch.ClearStatus {
		project.Status = nil
	}
	if patch.Status != nil {
		status := *patch.Status
		project.Status = &status
	}
	if patch.SetModules {
		project.EnabledModules = slices.Clone(patch.EnabledModules)
	}
	if patch.SetTypes {
		project.TypeIDs = slices.Clone(patch.TypeIDs)
	}
	if patch.SetFields {
		project.CustomFieldIDs = slices.Clone(patch.CustomFieldIDs)
	}
	return project
}

func applyVersionPatch(version types.Version, patch types.VersionPatch) types.Version {
	if patch.SetStartDate {
		version.StartDate = patch.StartDate
	}
	if patch.SetEffectiveDate {
		version.EffectiveDate = patch.EffectiveDate
	}
	if patch.Description != nil {
		version.Description = *patch.Description
	}
	if patch.Status != nil {
		version.Status = *patch.Status
	}
	return version
}

// validateVersionDates rejects a version whose start lies after its due
// date.
func validateVersionDates(version types.Version) *types.ValidationError {
	if version.StartDate != nil && version.EffectiveDate != nil && version.StartDate.After(*version.EffectiveDate) {
		return &types.ValidationError{Messages: []string{"Start date must be before the finish date."}}
	}
	return nil
}

func uniqueIDs(ids []int64) []int64 {
	seen := map[int64]struct{}{}
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
