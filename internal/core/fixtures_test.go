package core_test

import (
	"context"
	"errors"
	"io"
	"maps"
	"testing"

	"github.com/stretchr/testify/require"

	"bulkops/internal/adapters"
	"bulkops/internal/core"
	"bulkops/internal/policies"
	"bulkops/internal/ports"
	"bulkops/internal/types"
)

type sliceSource struct {
	header     []string
	rows       []ports.Row
	next       int
	failAt     int
	unreadable map[int]bool
}

func newSliceSource(rows ...ports.Row) *sliceSource {
	return &sliceSource{header: core.RequiredColumns(types.AuthModeIdentityURL), rows: rows, failAt: -1}
}

func (s *sliceSource) Header() []string { return s.header }

func (s *sliceSource) Next() (ports.Row, error) {
	if s.next == s.failAt {
		return ports.Row{}, io.ErrUnexpectedEOF
	}
	if s.next >= len(s.rows) {
		return ports.Row{}, io.EOF
	}
	row := s.rows[s.next]
	s.next++
	if s.unreadable[row.Line] {
		return ports.Row{}, &ports.RowError{Line: row.Line, Err: errors.New("bare \" in non-quoted field")}
	}
	return row, nil
}

func (s *sliceSource) Close() error { return nil }

type gateFunc func(capability types.Capability, scope *types.Project) bool

func (g gateFunc) Allowed(_ context.Context, _ types.User, capability types.Capability, scope *types.Project) bool {
	return g(capability, scope)
}

func allowAll() gateFunc {
	return func(types.Capability, *types.Project) bool { return true }
}

func denyCapabilities(denied ...types.Capability) gateFunc {
	return func(capability types.Capability, _ *types.Project) bool {
		for _, d := range denied {
			if d == capability {
				return false
			}
		}
		return true
	}
}

// userRow returns a row with every import column present, the base user
// columns for jdoe filled, and values layered on top.
func userRow(line int, values map[string]string) ports.Row {
	full := map[string]string{}
	for _, column := range core.RequiredColumns(types.AuthModeIdentityURL) {
		full[column] = ""
	}
	maps.Copy(full, map[string]string{
		core.ColumnUsername:      "jdoe",
		core.ColumnEmail:         "jdoe@example.com",
		core.ColumnFirstName:     "john",
		core.ColumnLastName:      "doe",
		core.ColumnAdministrator: "false",
	})
	maps.Copy(full, values)
	return ports.Row{Line: line, Values: full}
}

type fixture struct {
	store *adapters.MemoryStore
	actor types.User
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := adapters.NewMemoryStore()
	actor, err := store.CreateUser(t.Context(), types.User{
		Login: "admin", FirstName: "Ada", LastName: "Admin", Mail: "admin@example.com",
		Admin: true, Status: types.PrincipalStatusActive,
	})
	require.NoError(t, err)
	return fixture{store: store, actor: actor}
}

func (f fixture) importer(gate ports.PermissionPort, options core.ImportOptions) core.UserImporter {
	if options.AuthMode == "" {
		options.AuthMode = types.AuthModeEmailInvite
	}
	return core.NewUserImporter(core.NewEntityResolver(f.store, gate), options)
}

func (f fixture) run(t *testing.T, gate ports.PermissionPort, policy policies.CreatePolicy, options core.ImportOptions, rows ...ports.Row) types.ImportReport {
	t.Helper()
	rc := core.NewResolutionContext(f.actor, policy)
	return f.importer(gate, options).Run(t.Context(), rc, newSliceSource(rows...))
}

func (f fixture) project(t *testing.T, identifier string, parent *types.Project, active bool) types.Project {
	t.Helper()
	project := types.Project{Identifier: identifier, Name: core.Titleize(identifier), Active: active}
	if parent != nil {
		project.ParentID = &parent.ID
	}
	created, err := f.store.CreateProject(t.Context(), project)
	require.NoError(t, err)
	return created
}

func (f fixture) mustUser(t *testing.T, login string) types.User {
	t.Helper()
	user, found, err := f.store.FindUserByLogin(t.Context(), login)
	require.NoError(t, err)
	require.True(t, found, "user %s not found", login)
	return user
}

func (f fixture) mustProject(t *testing.T, identifier string) types.Project {
	t.Helper()
	project, found, err := f.store.FindProjectByIdentifier(t.Context(), identifier)
	require.NoError(t, err)
	require.True(t, found, "project %s not found", identifier)
	return project
}
