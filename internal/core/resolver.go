package core

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"bulkops/internal/policies"
	"bulkops/internal/ports"
	"bulkops/internal/types"
)

const (
	actionCheckingUserFields = "checking user fields"
	actionCreatingUser       = "creating user"
	actionCreatingGroup      = "creating group"
	actionAddingUserToGroup  = "adding user to group"
	actionCreatingRole       = "creating role"
	actionAddingUserToRole   = "adding user to role"
	actionCreatingProject    = "creating project"
	actionCreatingSubProject = "creating sub-project"
	actionAddingToProject    = "adding user to project"
	actionReadingInput       = "reading input"
)

const (
	msgGlobalRoleInProject = "The specified role is an existing global role. If a parent or sub-project was filled in, " +
		"the role should be a new role or an existing project role."
	msgProjectRoleAsGlobal = "The specified role is not a global role. If no parent or sub-project was filled in, " +
		"the role should be a new role or an existing global role."
	msgBuiltinRole = "The specified role is a built-in role and cannot be assigned."
)

// StepFailure describes why one resolution step failed: the action that was
// being attempted and the messages explaining it.
type StepFailure struct {
	Action   string
	Messages []string
}

func failure(action string, messages ...string) *StepFailure {
	return &StepFailure{Action: action, Messages: messages}
}

func storeFailure(action string, err error) *StepFailure {
	return &StepFailure{Action: action, Messages: errorMessages(err)}
}

// EntityResolver looks entities up by natural key and creates them when the
// run's create policy and the permission gate allow it.
type EntityResolver struct {
	Store ports.StorePort
	Gate  ports.PermissionPort
}

func NewEntityResolver(store ports.StorePort, gate ports.PermissionPort) EntityResolver {
	return EntityResolver{Store: store, Gate: gate}
}

func (r EntityResolver) allowed(ctx context.Context, rc *ResolutionContext, capability types.Capability, scope *types.Project) bool {
	ok := r.Gate.Allowed(ctx, rc.Actor, capability, scope)
	if !ok {
		log.Ctx(ctx).Debug().Str("capability", string(capability)).Msg("permission denied")
	}
	return ok
}

// FindUser looks a user up by login, case-insensitively.
func (r EntityResolver) FindUser(ctx context.Context, rc *ResolutionContext, login string) (types.User, bool, *StepFailure) {
	if user, ok := rc.cachedUser(login); ok {
		return user, true, nil
	}
	user, found, err := r.Store.FindUserByLogin(ctx, login)
	if err != nil {
		return types.User{}, false, storeFailure(actionCreatingUser, err)
	}
	if found {
		rc.rememberUser(user)
	}
	return user, found, nil
}

// CreateUser persists a new user after the caller has checked its fields.
func (r EntityResolver) CreateUser(ctx context.Context, rc *ResolutionContext, user types.User) (types.User, *StepFailure) {
	if !r.allowed(ctx, rc, types.CapabilityAddUser, nil) {
		return types.User{}, failure(actionCreatingUser, policies.DenialMessage(types.CapabilityAddUser))
	}
	created, err := r.Store.CreateUser(ctx, user)
	if err != nil {
		return types.User{}, storeFailure(actionCreatingUser, err)
	}
	rc.Created.Users++
	rc.rememberUser(created)
	log.Ctx(ctx).Debug().Str("login", created.Login).Msg("user created")
	return created, nil
}

// ResolveGroup finds the group named name or creates it. Names are stored
// capitalized so lookups are stable across spellings.
func (r EntityResolver) ResolveGroup(ctx context.Context, rc *ResolutionContext, name string) (types.Group, *StepFailure) {
	normalized := Capitalize(name)
	if group, ok := rc.cachedGroup(normalized); ok {
		return group, nil
	}
	group, found, err := r.Store.FindGroupByName(ctx, normalized)
	if err != nil {
		return types.Group{}, storeFailure(actionCreatingGroup, err)
	}
	if found {
		rc.rememberGroup(group)
		return group, nil
	}
	if !rc.Policy.Allows() {
		return types.Group{}, failure(actionCreatingGroup, policies.MissingEntityMessage("group"))
	}
	if !r.allowed(ctx, rc, types.CapabilityManageGroups, nil) {
		return types.Group{}, failure(actionCreatingGroup, policies.DenialMessage(types.CapabilityManageGroups))
	}
	group, err = r.Store.CreateGroup(ctx, types.Group{Name: normalized})
	if err != nil {
		return types.Group{}, storeFailure(actionCreatingGroup, err)
	}
	rc.Created.Groups++
	rc.rememberGroup(group)
	log.Ctx(ctx).Debug().Str("group", group.Name).Msg("group created")
	return group, nil
}

// EnsureGroupMember adds user to group unless it already belongs to it.
func (r EntityResolver) EnsureGroupMember(ctx context.Context, rc *ResolutionContext, group types.Group, user types.User) *StepFailure {
	member, err := r.Store.GroupHasUser(ctx, group.ID, user.ID)
	if err != nil {
		return storeFailure(actionAddingUserToGroup, err)
	}
	if member {
		return nil
	}
	if !r.allowed(ctx, rc, types.CapabilityManageGroups, nil) {
		return failure(actionAddingUserToGroup, policies.DenialMessage(types.CapabilityManageGroups))
	}
	if err := r.Store.AddUserToGroup(ctx, group.ID, user.ID); err != nil {
		return storeFailure(actionAddingUserToGroup, err)
	}
	return nil
}

// ResolveRole finds or creates the role named name for use as kind. A role
// that exists with the other kind is never reused and never converted.
func (r EntityResolver) ResolveRole(ctx context.Context, rc *ResolutionContext, name string, kind types.RoleKind) (types.Role, *StepFailure) {
	normalized := Capitalize(name)
	role, found := rc.cachedRole(normalized)
	if !found {
		var err error
		role, found, err = r.Store.FindRoleByName(ctx, normalized)
		if err != nil {
			return types.Role{}, storeFailure(actionCreatingRole, err)
		}
		if found {
			rc.rememberRole(role)
		}
	}
	if found {
		if role.Kind != kind {
			return types.Role{}, kindMismatch(kind)
		}
		return role, nil
	}
	if !rc.Policy.Allows() {
		return types.Role{}, failure(actionCreatingRole, policies.MissingEntityMessage("role"))
	}
	if !r.allowed(ctx, rc, types.CapabilityManageRoles, nil) {
		return types.Role{}, failure(actionCreatingRole, policies.DenialMessage(types.CapabilityManageRoles))
	}
	role, err := r.Store.CreateRole(ctx, types.Role{
		Name:       normalized,
		Kind:       kind,
		Builtin:    false,
		Assignable: kind == types.RoleKindProject,
	})
	if err != nil {
		return types.Role{}, storeFailure(actionCreatingRole, err)
	}
	rc.Created.Roles++
	rc.rememberRole(role)
	log.Ctx(ctx).Debug().Str("role", role.Name).Str("kind", string(kind)).Msg("role created")
	return role, nil
}

func kindMismatch(wanted types.RoleKind) *StepFailure {
	if wanted == types.RoleKindProject {
		return failure(actionAddingToProject, msgGlobalRoleInProject)
	}
	return failure(actionAddingUserToRole, msgProjectRoleAsGlobal)
}

// EnsureGlobalRole grants a global role to user unless it already holds it.
func (r EntityResolver) EnsureGlobalRole(ctx context.Context, rc *ResolutionContext, user types.User, role types.Role) *StepFailure {
	if role.Kind != types.RoleKindGlobal {
		return kindMismatch(types.RoleKindGlobal)
	}
	if role.Builtin {
		return failure(actionAddingUserToRole, msgBuiltinRole)
	}
	if !user.Assignable() {
		return failure(actionAddingUserToRole, notAssignableMessage(user))
	}
	held, err := r.Store.PrincipalHasGlobalRole(ctx, user.ID, role.ID)
	if err != nil {
		return storeFailure(actionAddingUserToRole, err)
	}
	if held {
		return nil
	}
	if !r.allowed(ctx, rc, types.CapabilityAssignGlobalRoles, nil) {
		return failure(actionAddingUserToRole, policies.DenialMessage(types.CapabilityAssignGlobalRoles))
	}
	if err := r.Store.GrantGlobalRole(ctx, user.ID, role.ID); err != nil {
		return storeFailure(actionAddingUserToRole, err)
	}
	return nil
}

func notAssignableMessage(user types.User) string {
	return fmt.Sprintf("The user '%s' is %s and cannot be assigned to a role or project.", user.Login, user.Status)
}

// ResolveProject finds the project whose identifier is the parameterized
// form of raw, or creates it as a top-level project.
func (r EntityResolver) ResolveProject(ctx context.Context, rc *ResolutionContext, raw string) (types.Project, *StepFailure) {
	identifier := Parameterize(raw)
	project, found, fail := r.findProject(ctx, rc, identifier, actionCreatingProject)
	if fail != nil || found {
		return project, fail
	}
	if !rc.Policy.Allows() {
		return types.Project{}, failure(actionCreatingProject, policies.MissingEntityMessage("parent project"))
	}
	if !r.allowed(ctx, rc, types.CapabilityAddProject, nil) {
		return types.Project{}, failure(actionCreatingProject, policies.DenialMessage(types.CapabilityAddProject))
	}
	project, err := r.Store.CreateProject(ctx, types.Project{
		Identifier: identifier,
		Name:       Titleize(raw),
		Active:     true,
	})
	if err != nil {
		return types.Project{}, storeFailure(actionCreatingProject, err)
	}
	rc.Created.Projects++
	rc.rememberProject(project)
	log.Ctx(ctx).Debug().Str("project", project.Identifier).Msg("project created")
	return project, nil
}

// ResolveSubProject finds the sub-project identified by raw below parent, or
// creates it as a deep copy of parent. A raw value naming parent itself
// resolves to parent. An existing project that is not a descendant of parent
// is rejected.
func (r EntityResolver) ResolveSubProject(ctx context.Context, rc *ResolutionContext, parent types.Project, raw string) (types.Project, *StepFailure) {
	identifier := Parameterize(raw)
	if identifier == parent.Identifier {
		return parent, nil
	}
	project, found, fail := r.findProject(ctx, rc, identifier, actionCreatingSubProject)
	if fail != nil {
		return types.Project{}, fail
	}
	if found {
		descendant, err := r.isDescendant(ctx, project, parent)
		if err != nil {
			return types.Project{}, storeFailure(actionCreatingSubProject, err)
		}
		if !descendant {
			return types.Project{}, failure(actionCreatingSubProject,
				fmt.Sprintf("The project '%s' exists but is not a sub-project of '%s'.", project.Identifier, parent.Identifier))
		}
		return project, nil
	}
	if !rc.Policy.Allows() {
		return types.Project{}, failure(actionCreatingSubProject, policies.MissingEntityMessage("sub-project"))
	}
	if !r.allowed(ctx, rc, types.CapabilityAddSubprojects, &parent) {
		return types.Project{}, failure(actionCreatingSubProject, policies.DenialMessage(types.CapabilityAddSubprojects))
	}
	return r.deepCopy(ctx, rc, parent, raw)
}

func (r EntityResolver) findProject(ctx context.Context, rc *ResolutionContext, identifier string, action string) (types.Project, bool, *StepFailure) {
	if project, ok := rc.cachedProject(identifier); ok {
		return project, true, nil
	}
	project, found, err := r.Store.FindProjectByIdentifier(ctx, identifier)
	if err != nil {
		return types.Project{}, false, storeFailure(action, err)
	}
	if found {
		rc.rememberProject(project)
	}
	return project, found, nil
}

func (r EntityResolver) isDescendant(ctx context.Context, project types.Project, ancestor types.Project) (bool, error) {
	seen := map[int64]struct{}{}
	current := project
	for current.ParentID != nil {
		if *current.ParentID == ancestor.ID {
			return true, nil
		}
		if _, loop := seen[current.ID]; loop {
			return false, nil
		}
		seen[current.ID] = struct{}{}
		next, found, err := r.Store.FindProjectByID(ctx, *current.ParentID)
		if err != nil {
			return false, err
		}
		if !found {
			return false, nil
		}
		current = next
	}
	return false, nil
}

// deepCopy creates a sub-project carrying parent's attributes, then copies
// parent's content association by association. Memberships are not copied.
func (r EntityResolver) deepCopy(ctx context.Context, rc *ResolutionContext, parent types.Project, raw string) (types.Project, *StepFailure) {
	parentID := parent.ID
	sub := types.Project{
		Identifier:     Parameterize(raw),
		Name:           Titleize(raw),
		ParentID:       &parentID,
		Description:    parent.Description,
		Public:         parent.Public,
		Active:         true,
		EnabledModules: append([]string(nil), parent.EnabledModules...),
		TypeIDs:        append([]int64(nil), parent.TypeIDs...),
		CustomFieldIDs: append([]int64(nil), parent.CustomFieldIDs...),
	}
	if parent.Status != nil {
		status := types.ProjectStatus{Code: parent.Status.Code, Explanation: parent.Status.Explanation}
		sub.Status = &status
	}
	created, err := r.Store.CreateProject(ctx, sub)
	if err != nil {
		messages := []string{"The sub-project could not be created."}
		messages = append(messages, errorMessages(err)...)
		return types.Project{}, failure(actionCreatingSubProject, messages...)
	}
	rc.Created.Projects++
	rc.rememberProject(created)

	var copyErrors []string
	for _, kind := range types.DeepCopyAssociations {
		messages, err := r.Store.CopyAssociation(ctx, parent.ID, created.ID, kind)
		if err != nil {
			copyErrors = append(copyErrors, errorMessages(err)...)
			continue
		}
		copyErrors = append(copyErrors, messages...)
	}
	log.Ctx(ctx).Debug().
		Str("project", created.Identifier).
		Str("parent", parent.Identifier).
		Int("copy_errors", len(copyErrors)).
		Msg("sub-project copied")
	if len(copyErrors) > 0 {
		return created, failure(actionCreatingSubProject, copyErrors...)
	}
	return created, nil
}

// EnsureMembership attaches role to principal inside project. An existing
// membership gains the role; otherwise a new membership is created.
func (r EntityResolver) EnsureMembership(ctx context.Context, rc *ResolutionContext, principalID int64, project types.Project, role types.Role) *StepFailure {
	if role.Kind != types.RoleKindProject {
		return failure(actionAddingToProject, msgGlobalRoleInProject)
	}
	if role.Builtin {
		return failure(actionAddingToProject, msgBuiltinRole)
	}
	membership, found, err := r.Store.FindMembership(ctx, principalID, project.ID)
	if err != nil {
		return storeFailure(actionAddingToProject, err)
	}
	if found && membership.HasRole(role.ID) {
		return nil
	}
	if !r.allowed(ctx, rc, types.CapabilityManageMembers, &project) {
		return failure(actionAddingToProject, policies.DenialMessage(types.CapabilityManageMembers))
	}
	if found {
		roleIDs := append(append([]int64(nil), membership.RoleIDs...), role.ID)
		if err := r.Store.UpdateMembershipRoles(ctx, membership.ID, roleIDs); err != nil {
			return storeFailure(actionAddingToProject, err)
		}
		return nil
	}
	_, err = r.Store.CreateMembership(ctx, types.Membership{
		PrincipalID: principalID,
		ProjectID:   project.ID,
		RoleIDs:     []int64{role.ID},
	})
	if err != nil {
		return storeFailure(actionAddingToProject, err)
	}
	return nil
}
