package types

import "time"

type User struct {
	ID          int64
	Login       string          `validate:"required,max=256" yaml:"login"`
	FirstName   string          `validate:"required,max=256" yaml:"first_name"`
	LastName    string          `validate:"required,max=256" yaml:"last_name"`
	Mail        string          `validate:"required,email" yaml:"mail"`
	Admin       bool            `yaml:"admin"`
	IdentityURL string          `validate:"omitempty,max=512" yaml:"identity_url,omitempty"`
	Status      PrincipalStatus `validate:"required,oneof=active invited locked builtin" yaml:"status"`
}

// Assignable reports whether the principal may receive new roles or
// project memberships.
func (u User) Assignable() bool {
	return u.Status != PrincipalStatusLocked && u.Status != PrincipalStatusBuiltin
}

type Group struct {
	ID   int64
	Name string `validate:"required,max=256" yaml:"name"`
}

type Role struct {
	ID         int64
	Name       string   `validate:"required,max=256" yaml:"name"`
	Kind       RoleKind `validate:"required,oneof=global project" yaml:"kind"`
	Builtin    bool     `yaml:"builtin"`
	Assignable bool     `yaml:"assignable"`
}

type ProjectStatus struct {
	Code        string `yaml:"code,omitempty"`
	Explanation string `yaml:"explanation,omitempty"`
}

func (s ProjectStatus) Empty() bool {
	return s.Code == "" && s.Explanation == ""
}

type Project struct {
	ID             int64
	Identifier     string         `validate:"required,max=100" yaml:"identifier"`
	Name           string         `validate:"required,max=255" yaml:"name"`
	ParentID       *int64         `yaml:"-"`
	Description    string         `yaml:"description,omitempty"`
	Status         *ProjectStatus `yaml:"status,omitempty"`
	Public         bool           `yaml:"public"`
	Active         bool           `yaml:"active"`
	EnabledModules []string       `yaml:"enabled_modules,omitempty"`
	TypeIDs        []int64        `yaml:"type_ids,omitempty"`
	CustomFieldIDs []int64        `yaml:"custom_field_ids,omitempty"`
}

// ProjectPatch carries the attributes to overwrite on an existing project.
// Nil fields are left untouched. ClearStatus resets the status to empty.
type ProjectPatch struct {
	Description    *string
	Public         *bool
	Status         *ProjectStatus
	ClearStatus    bool
	EnabledModules []string
	SetModules     bool
	TypeIDs        []int64
	SetTypes       bool
	CustomFieldIDs []int64
	SetFields      bool
}

func (p ProjectPatch) Empty() bool {
	return p.Description == nil && p.Public == nil && p.Status == nil && !p.ClearStatus &&
		!p.SetModules && !p.SetTypes && !p.SetFields
}

type Membership struct {
	ID          int64
	PrincipalID int64
	ProjectID   int64
	RoleIDs     []int64
}

func (m Membership) HasRole(roleID int64) bool {
	for _, id := range m.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

type Version struct {
	ID            int64
	ProjectID     int64
	Name          string         `validate:"required,max=60" yaml:"name"`
	Description   string         `yaml:"description,omitempty"`
	StartDate     *time.Time     `yaml:"start_date,omitempty"`
	EffectiveDate *time.Time     `yaml:"effective_date,omitempty"`
	Status        VersionStatus  `validate:"required,oneof=open locked closed" yaml:"status"`
	Sharing       VersionSharing `validate:"required,oneof=none descendants hierarchy tree system" yaml:"sharing"`
}

// VersionPatch carries the version fields to overwrite. Set* flags mark
// which fields are part of the update.
type VersionPatch struct {
	StartDate        *time.Time
	SetStartDate     bool
	EffectiveDate    *time.Time
	SetEffectiveDate bool
	Description      *string
	Status           *VersionStatus
}

func (p VersionPatch) Empty() bool {
	return !p.SetStartDate && !p.SetEffectiveDate && p.Description == nil && p.Status == nil
}

type Category struct {
	ID        int64
	ProjectID int64
	Name      string `validate:"required,max=255" yaml:"name"`
}

// Artifact is an opaque piece of project content (work package, query, wiki
// page, forum, attachment) carried along by a deep copy.
type Artifact struct {
	ID        int64
	ProjectID int64
	Kind      AssociationKind `yaml:"kind"`
	Title     string          `validate:"required" yaml:"title"`
	Body      string          `yaml:"body,omitempty"`
}
