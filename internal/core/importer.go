package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"bulkops/internal/ports"
	"bulkops/internal/types"
)

// DefaultRoleName is given to project members whose row leaves the role
// column empty.
const DefaultRoleName = "Member"

type ImportOptions struct {
	AuthMode       types.AuthMode
	IdentityPrefix string
	DefaultRole    string
	StartLine      int
}

// UserImporter runs the user/group/role/project/membership chain for every
// row of an import file.
type UserImporter struct {
	Resolver EntityResolver
	Options  ImportOptions
}

func NewUserImporter(resolver EntityResolver, options ImportOptions) UserImporter {
	if strings.TrimSpace(options.DefaultRole) == "" {
		options.DefaultRole = DefaultRoleName
	}
	return UserImporter{Resolver: resolver, Options: options}
}

// Run processes source row by row. Row failures, including records that
// cannot be decoded, are collected in the report; only a failure to read the
// input itself stops the run early, and it is recorded as the last entry.
func (i UserImporter) Run(ctx context.Context, rc *ResolutionContext, source ports.RowSourcePort) types.ImportReport {
	aggregator := &ErrorAggregator{}
	lastLine := 1
	processed, err := NewRowCursor(source, i.Options.StartLine).Each(func(row ports.Row) {
		lastLine = row.Line
		errs := i.ImportRow(ctx, rc, row)
		if len(errs) > 0 {
			log.Ctx(ctx).Debug().Int("line", row.Line).Int("errors", len(errs)).Msg("row failed")
		}
		aggregator.Add(errs...)
	}, func(failure *ports.RowError) {
		lastLine = failure.Line
		log.Ctx(ctx).Debug().Int("line", failure.Line).Err(failure.Err).Msg("row unreadable")
		aggregator.Add(types.UnitError{
			Line:    failure.Line,
			Action:  actionReadingInput,
			Message: fmt.Sprintf("The row could not be read: %v.", failure.Err),
		})
	})
	if err != nil {
		aggregator.Add(types.UnitError{Line: lastLine + 1, Action: actionReadingInput, Message: err.Error()})
	}
	log.Ctx(ctx).Info().
		Int("rows", processed).
		Int("errors", aggregator.Len()).
		Int("created", rc.Created.Total()).
		Msg("import finished")
	return types.ImportReport{
		Processed: processed,
		Created:   rc.Created,
		Errors:    aggregator.Entries(),
	}
}

// ImportRow resolves the row's dependencies in order: user, group, role,
// projects, membership. The first failing step ends the row and its
// messages are the row's errors.
func (i UserImporter) ImportRow(ctx context.Context, rc *ResolutionContext, row ports.Row) []types.UnitError {
	user, fail := i.importUser(ctx, rc, row)
	if fail != nil {
		return stepErrors(row.Line, fail)
	}

	group, hasGroup, fail := i.importGroup(ctx, rc, row, user)
	if fail != nil {
		return stepErrors(row.Line, fail)
	}

	parentRaw := row.Get(ColumnParentProject)
	subRaw := row.Get(ColumnSubProject)
	if parentRaw == "" && subRaw == "" {
		roleName := row.Get(ColumnRole)
		if roleName == "" {
			return nil
		}
		return stepErrors(row.Line, i.importGlobalRole(ctx, rc, user, roleName))
	}

	roleName := row.Get(ColumnRole)
	if roleName == "" {
		roleName = i.Options.DefaultRole
	}
	role, fail := i.Resolver.ResolveRole(ctx, rc, roleName, types.RoleKindProject)
	if fail != nil {
		return stepErrors(row.Line, fail)
	}

	bottom, fail := i.importProjects(ctx, rc, parentRaw, subRaw)
	if fail != nil {
		return stepErrors(row.Line, fail)
	}

	principalID := user.ID
	if hasGroup {
		principalID = group.ID
	} else if !user.Assignable() {
		return stepErrors(row.Line, failure(actionAddingToProject, notAssignableMessage(user)))
	}
	return stepErrors(row.Line, i.Resolver.EnsureMembership(ctx, rc, principalID, bottom, role))
}

func (i UserImporter) importUser(ctx context.Context, rc *ResolutionContext, row ports.Row) (types.User, *StepFailure) {
	login := row.Get(ColumnUsername)
	if login == "" {
		return types.User{}, failure(actionCheckingUserFields, blankColumnMessage(ColumnUsername))
	}
	user, found, fail := i.Resolver.FindUser(ctx, rc, login)
	if fail != nil || found {
		return user, fail
	}
	if messages := i.checkUserFields(row); len(messages) > 0 {
		return types.User{}, failure(actionCheckingUserFields, messages...)
	}
	return i.Resolver.CreateUser(ctx, rc, i.newUser(row))
}

func (i UserImporter) checkUserFields(row ports.Row) []string {
	var messages []string
	for _, column := range MinimalUserColumns(i.Options.AuthMode) {
		if row.Get(column) == "" {
			messages = append(messages, blankColumnMessage(column))
		}
	}
	admin := row.Get(ColumnAdministrator)
	if admin != "true" && admin != "false" {
		messages = append(messages, "The value entered in the 'administrator' column should be 'true' or 'false'.")
	}
	return messages
}

func blankColumnMessage(column string) string {
	return fmt.Sprintf("The '%s' column can't be blank.", column)
}

func (i UserImporter) newUser(row ports.Row) types.User {
	user := types.User{
		Login:     row.Get(ColumnUsername),
		FirstName: Capitalize(row.Get(ColumnFirstName)),
		LastName:  Capitalize(row.Get(ColumnLastName)),
		Mail:      row.Get(ColumnEmail),
		Admin:     row.Get(ColumnAdministrator) == "true",
		Status:    types.PrincipalStatusInvited,
	}
	if i.Options.AuthMode == types.AuthModeIdentityURL {
		user.IdentityURL = i.Options.IdentityPrefix + ":" + row.Get(ColumnIdentityURL)
		user.Status = types.PrincipalStatusActive
	}
	return user
}

func (i UserImporter) importGroup(ctx context.Context, rc *ResolutionContext, row ports.Row, user types.User) (types.Group, bool, *StepFailure) {
	name := row.Get(ColumnGroup)
	if name == "" {
		return types.Group{}, false, nil
	}
	group, fail := i.Resolver.ResolveGroup(ctx, rc, name)
	if fail != nil {
		return types.Group{}, false, fail
	}
	if fail := i.Resolver.EnsureGroupMember(ctx, rc, group, user); fail != nil {
		return types.Group{}, false, fail
	}
	return group, true, nil
}

func (i UserImporter) importGlobalRole(ctx context.Context, rc *ResolutionContext, user types.User, roleName string) *StepFailure {
	role, fail := i.Resolver.ResolveRole(ctx, rc, roleName, types.RoleKindGlobal)
	if fail != nil {
		return fail
	}
	return i.Resolver.EnsureGlobalRole(ctx, rc, user, role)
}

// importProjects resolves the parent project and, when both project columns
// are filled, the sub-project below it. It returns the bottom project.
// A lone sub_project column names the only project of the row.
func (i UserImporter) importProjects(ctx context.Context, rc *ResolutionContext, parentRaw string, subRaw string) (types.Project, *StepFailure) {
	parentIdentifier := parentRaw
	if parentIdentifier == "" {
		parentIdentifier = subRaw
	}
	parent, fail := i.Resolver.ResolveProject(ctx, rc, parentIdentifier)
	if fail != nil {
		return types.Project{}, fail
	}
	if parentRaw == "" || subRaw == "" {
		return parent, nil
	}
	return i.Resolver.ResolveSubProject(ctx, rc, parent, subRaw)
}

func stepErrors(line int, fail *StepFailure) []types.UnitError {
	if fail == nil {
		return nil
	}
	return lineErrors(line, fail.Action, fail.Messages)
}
