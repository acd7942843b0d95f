package adapters

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bulkops/internal/types"
)

type contractStore interface {
	SeedableStore
	ProjectArtifacts(ctx context.Context, projectID int64) ([]types.Artifact, error)
}

func storeFactories() map[string]func(t *testing.T) contractStore {
	return map[string]func(t *testing.T) contractStore{
		"memory": func(t *testing.T) contractStore {
			return NewMemoryStore()
		},
		"sqlite": func(t *testing.T) contractStore {
			return openTestSQLiteStore(t)
		},
	}
}

func openTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := OpenSQLite(t.Context(), filepath.Join(t.TempDir(), "test.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, RunMigrations(db))
	return NewSQLiteStore(db)
}

func validationMessages(t *testing.T, err error) []string {
	t.Helper()
	var verr *types.ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	return verr.Messages
}

func TestStoreUserValidationAndUniqueness(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			ctx := t.Context()

			_, err := store.CreateUser(ctx, types.User{Login: "jdoe", FirstName: "J", LastName: "Doe", Status: types.PrincipalStatusInvited})
			if diff := cmp.Diff([]string{"Email can't be blank."}, validationMessages(t, err)); diff != "" {
				t.Fatalf("unexpected messages (-want +got):\n%s", diff)
			}

			created, err := store.CreateUser(ctx, types.User{
				Login: "jdoe", FirstName: "J", LastName: "Doe", Mail: "jdoe@example.com", Status: types.PrincipalStatusInvited,
			})
			require.NoError(t, err)
			assert.NotZero(t, created.ID)

			_, err = store.CreateUser(ctx, types.User{
				Login: "JDOE", FirstName: "J", LastName: "Doe", Mail: "other@example.com", Status: types.PrincipalStatusInvited,
			})
			if diff := cmp.Diff([]string{"Login has already been taken."}, validationMessages(t, err)); diff != "" {
				t.Fatalf("unexpected messages (-want +got):\n%s", diff)
			}

			found, ok, err := store.FindUserByLogin(ctx, "JDoe")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, created.ID, found.ID)
			assert.Equal(t, types.PrincipalStatusInvited, found.Status)
		})
	}
}

func TestStoreGroupsAndGlobalRoles(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			ctx := t.Context()

			user, err := store.CreateUser(ctx, types.User{
				Login: "jdoe", FirstName: "J", LastName: "Doe", Mail: "jdoe@example.com", Status: types.PrincipalStatusActive,
			})
			require.NoError(t, err)
			group, err := store.CreateGroup(ctx, types.Group{Name: "Team a"})
			require.NoError(t, err)
			assert.NotEqual(t, user.ID, group.ID)

			_, found, err := store.FindGroupByName(ctx, "TEAM A")
			require.NoError(t, err)
			assert.True(t, found)

			require.NoError(t, store.AddUserToGroup(ctx, group.ID, user.ID))
			member, err := store.GroupHasUser(ctx, group.ID, user.ID)
			require.NoError(t, err)
			assert.True(t, member)

			projectRole, err := store.CreateRole(ctx, types.Role{Name: "Developer", Kind: types.RoleKindProject, Assignable: true})
			require.NoError(t, err)
			require.Error(t, store.GrantGlobalRole(ctx, user.ID, projectRole.ID))

			globalRole, err := store.CreateRole(ctx, types.Role{Name: "Auditor", Kind: types.RoleKindGlobal})
			require.NoError(t, err)
			require.NoError(t, store.GrantGlobalRole(ctx, user.ID, globalRole.ID))
			held, err := store.PrincipalHasGlobalRole(ctx, user.ID, globalRole.ID)
			require.NoError(t, err)
			assert.True(t, held)
		})
	}
}

func TestStoreProjectsChildrenAndPatch(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			ctx := t.Context()

			parent, err := store.CreateProject(ctx, types.Project{
				Identifier: "web", Name: "Web", Active: true,
				EnabledModules: []string{"wiki", "forums"}, TypeIDs: []int64{1, 2},
			})
			require.NoError(t, err)
			_, err = store.CreateProject(ctx, types.Project{Identifier: "WEB", Name: "Web again", Active: true})
			if diff := cmp.Diff([]string{"Identifier has already been taken."}, validationMessages(t, err)); diff != "" {
				t.Fatalf("unexpected messages (-want +got):\n%s", diff)
			}

			active, err := store.CreateProject(ctx, types.Project{Identifier: "web-a", Name: "Web A", ParentID: &parent.ID, Active: true})
			require.NoError(t, err)
			_, err = store.CreateProject(ctx, types.Project{Identifier: "web-b", Name: "Web B", ParentID: &parent.ID, Active: false})
			require.NoError(t, err)

			children, err := store.ActiveChildren(ctx, parent.ID)
			require.NoError(t, err)
			require.Len(t, children, 1)
			assert.Equal(t, active.ID, children[0].ID)

			description := "Shop"
			require.NoError(t, store.UpdateProject(ctx, active.ID, types.ProjectPatch{
				Description:    &description,
				Status:         &types.ProjectStatus{Code: "on_track"},
				EnabledModules: []string{"wiki"},
				SetModules:     true,
			}))
			updated, ok, err := store.FindProjectByID(ctx, active.ID)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, "Shop", updated.Description)
			require.NotNil(t, updated.Status)
			assert.Equal(t, "on_track", updated.Status.Code)
			if diff := cmp.Diff([]string{"wiki"}, updated.EnabledModules); diff != "" {
				t.Fatalf("unexpected modules (-want +got):\n%s", diff)
			}

			require.NoError(t, store.UpdateProject(ctx, active.ID, types.ProjectPatch{ClearStatus: true}))
			updated, _, err = store.FindProjectByID(ctx, active.ID)
			require.NoError(t, err)
			assert.Nil(t, updated.Status)
		})
	}
}

func TestStoreMemberships(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			ctx := t.Context()

			user, err := store.CreateUser(ctx, types.User{
				Login: "jdoe", FirstName: "J", LastName: "Doe", Mail: "jdoe@example.com", Status: types.PrincipalStatusActive,
			})
			require.NoError(t, err)
			project, err := store.CreateProject(ctx, types.Project{Identifier: "web", Name: "Web", Active: true})
			require.NoError(t, err)
			dev, err := store.CreateRole(ctx, types.Role{Name: "Developer", Kind: types.RoleKindProject, Assignable: true})
			require.NoError(t, err)
			lead, err := store.CreateRole(ctx, types.Role{Name: "Lead", Kind: types.RoleKindProject, Assignable: true})
			require.NoError(t, err)

			_, err = store.CreateMembership(ctx, types.Membership{PrincipalID: user.ID, ProjectID: project.ID})
			require.Error(t, err)

			membership, err := store.CreateMembership(ctx, types.Membership{PrincipalID: user.ID, ProjectID: project.ID, RoleIDs: []int64{dev.ID}})
			require.NoError(t, err)
			require.NoError(t, store.UpdateMembershipRoles(ctx, membership.ID, []int64{dev.ID, lead.ID, dev.ID}))

			found, ok, err := store.FindMembership(ctx, user.ID, project.ID)
			require.NoError(t, err)
			require.True(t, ok)
			assert.ElementsMatch(t, []int64{dev.ID, lead.ID}, found.RoleIDs)
		})
	}
}

func TestStoreVersionsAndCategories(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			ctx := t.Context()

			project, err := store.CreateProject(ctx, types.Project{Identifier: "web", Name: "Web", Active: true})
			require.NoError(t, err)
			start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
			due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
			version, err := store.CreateVersion(ctx, types.Version{
				ProjectID: project.ID, Name: "v1", StartDate: &start, EffectiveDate: &due,
				Status: types.VersionStatusOpen, Sharing: types.VersionSharingNone,
			})
			require.NoError(t, err)

			early := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
			err = store.UpdateVersion(ctx, version.ID, types.VersionPatch{EffectiveDate: &early, SetEffectiveDate: true})
			if diff := cmp.Diff([]string{"Start date must be before the finish date."}, validationMessages(t, err)); diff != "" {
				t.Fatalf("unexpected messages (-want +got):\n%s", diff)
			}

			closed := types.VersionStatusClosed
			require.NoError(t, store.UpdateVersion(ctx, version.ID, types.VersionPatch{Status: &closed, SetStartDate: true}))
			versions, err := store.ProjectVersions(ctx, project.ID)
			require.NoError(t, err)
			require.Len(t, versions, 1)
			assert.Equal(t, types.VersionStatusClosed, versions[0].Status)
			assert.Nil(t, versions[0].StartDate)
			require.NotNil(t, versions[0].EffectiveDate)
			assert.True(t, due.Equal(*versions[0].EffectiveDate))

			_, err = store.CreateCategory(ctx, types.Category{ProjectID: project.ID, Name: "Backend"})
			require.NoError(t, err)
			_, err = store.CreateCategory(ctx, types.Category{ProjectID: project.ID, Name: "Backend"})
			if diff := cmp.Diff([]string{"Name has already been taken."}, validationMessages(t, err)); diff != "" {
				t.Fatalf("unexpected messages (-want +got):\n%s", diff)
			}
		})
	}
}

func TestStoreCopyAssociation(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			ctx := t.Context()

			parent, err := store.CreateProject(ctx, types.Project{Identifier: "web", Name: "Web", Active: true})
			require.NoError(t, err)
			child, err := store.CreateProject(ctx, types.Project{Identifier: "web-a", Name: "Web A", ParentID: &parent.ID, Active: true})
			require.NoError(t, err)
			_, err = store.CreateVersion(ctx, types.Version{
				ProjectID: parent.ID, Name: "v1", Status: types.VersionStatusOpen, Sharing: types.VersionSharingNone,
			})
			require.NoError(t, err)
			_, err = store.CreateCategory(ctx, types.Category{ProjectID: parent.ID, Name: "Backend"})
			require.NoError(t, err)
			_, err = store.AddArtifact(ctx, types.Artifact{ProjectID: parent.ID, Kind: types.AssociationWiki, Title: "Home"})
			require.NoError(t, err)
			_, err = store.AddArtifact(ctx, types.Artifact{ProjectID: parent.ID, Kind: types.AssociationQueries, Title: "Open bugs"})
			require.NoError(t, err)

			for _, kind := range []types.AssociationKind{types.AssociationVersions, types.AssociationCategories, types.AssociationWiki} {
				messages, err := store.CopyAssociation(ctx, parent.ID, child.ID, kind)
				require.NoError(t, err)
				assert.Empty(t, messages)
			}

			versions, err := store.ProjectVersions(ctx, child.ID)
			require.NoError(t, err)
			require.Len(t, versions, 1)
			assert.Equal(t, "v1", versions[0].Name)

			categories, err := store.ProjectCategories(ctx, child.ID)
			require.NoError(t, err)
			require.Len(t, categories, 1)

			artifacts, err := store.ProjectArtifacts(ctx, child.ID)
			require.NoError(t, err)
			require.Len(t, artifacts, 1)
			assert.Equal(t, "Home", artifacts[0].Title)

			messages, err := store.CopyAssociation(ctx, parent.ID, child.ID, types.AssociationVersions)
			require.NoError(t, err)
			assert.Equal(t, []string{"Version 'v1': Name has already been taken."}, messages)
		})
	}
}

func TestStoreCopyAssociationValidatesItems(t *testing.T) {
	for name, factory := range storeFactories() {
		t.Run(name, func(t *testing.T) {
			store := factory(t)
			ctx := t.Context()

			parent, err := store.CreateProject(ctx, types.Project{Identifier: "docs", Name: "Docs", Active: true})
			require.NoError(t, err)
			child, err := store.CreateProject(ctx, types.Project{Identifier: "docs-a", Name: "Docs A", ParentID: &parent.ID, Active: true})
			require.NoError(t, err)
			_, err = store.AddArtifact(ctx, types.Artifact{ProjectID: parent.ID, Kind: types.AssociationWiki, Title: ""})
			require.NoError(t, err)
			_, err = store.AddArtifact(ctx, types.Artifact{ProjectID: parent.ID, Kind: types.AssociationWiki, Title: "Start"})
			require.NoError(t, err)

			messages, err := store.CopyAssociation(ctx, parent.ID, child.ID, types.AssociationWiki)
			require.NoError(t, err)
			assert.Equal(t, []string{"Wiki page '': Title can't be blank."}, messages)

			artifacts, err := store.ProjectArtifacts(ctx, child.ID)
			require.NoError(t, err)
			require.Len(t, artifacts, 1)
			assert.Equal(t, "Start", artifacts[0].Title)

			_, err = store.CopyAssociation(ctx, parent.ID, 999999, types.AssociationWiki)
			assert.Equal(t, []string{"Project does not exist."}, validationMessages(t, err))
		})
	}
}
