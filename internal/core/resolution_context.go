package core

import (
	"bulkops/internal/policies"
	"bulkops/internal/types"
)

// ResolutionContext is the per-run state threaded through the import chain.
// It remembers every entity resolved or created so far, keyed by normalized
// natural key, and counts what the run created.
type ResolutionContext struct {
	Actor   types.User
	Policy  policies.CreatePolicy
	Created types.CreatedCounts

	users    map[string]types.User
	groups   map[string]types.Group
	roles    map[string]types.Role
	projects map[string]types.Project
}

func NewResolutionContext(actor types.User, policy policies.CreatePolicy) *ResolutionContext {
	return &ResolutionContext{
		Actor:    actor,
		Policy:   policy,
		users:    map[string]types.User{},
		groups:   map[string]types.Group{},
		roles:    map[string]types.Role{},
		projects: map[string]types.Project{},
	}
}

func (c *ResolutionContext) cachedUser(login string) (types.User, bool) {
	user, ok := c.users[FoldKey(login)]
	return user, ok
}

func (c *ResolutionContext) rememberUser(user types.User) {
	c.users[FoldKey(user.Login)] = user
}

func (c *ResolutionContext) cachedGroup(name string) (types.Group, bool) {
	group, ok := c.groups[FoldKey(name)]
	return group, ok
}

func (c *ResolutionContext) rememberGroup(group types.Group) {
	c.groups[FoldKey(group.Name)] = group
}

func (c *ResolutionContext) cachedRole(name string) (types.Role, bool) {
	role, ok := c.roles[FoldKey(name)]
	return role, ok
}

func (c *ResolutionContext) rememberRole(role types.Role) {
	c.roles[FoldKey(role.Name)] = role
}

func (c *ResolutionContext) cachedProject(identifier string) (types.Project, bool) {
	project, ok := c.projects[identifier]
	return project, ok
}

func (c *ResolutionContext) rememberProject(project types.Project) {
	c.projects[project.Identifier] = project
}
