package integration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"bulkops/internal/app"
	"bulkops/internal/types"
	"bulkops/tests/testutil"
)

func newSQLiteService(t *testing.T, notifyDir string) app.Service {
	t.Helper()
	service, closeService, err := app.NewService(t.Context(), app.Config{
		StoreDriver: "sqlite",
		StorePath:   filepath.Join(t.TempDir(), "bulkops.db"),
		StoreSeed:   testutil.WriteFile(t, "seed.yaml", testutil.Seed),
		NotifyMode:  "file",
		NotifyDir:   notifyDir,
		ScratchDir:  t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = closeService() })
	return service
}

func versionNames(t *testing.T, service app.Service, identifier string) []string {
	t.Helper()
	ctx := t.Context()
	project, found, err := service.Store.FindProjectByIdentifier(ctx, identifier)
	require.NoError(t, err)
	require.True(t, found, identifier)
	versions, err := service.Store.ProjectVersions(ctx, project.ID)
	require.NoError(t, err)
	names := make([]string, 0, len(versions))
	for _, version := range versions {
		names = append(names, version.Name)
	}
	return names
}

func TestSQLiteImportThenCopySettings(t *testing.T) {
	ctx := t.Context()
	notifyDir := t.TempDir()
	service := newSQLiteService(t, notifyDir)

	admin, found, err := service.Store.FindUserByLogin(ctx, "admin")
	require.NoError(t, err)
	require.True(t, found)

	imported, err := service.ImportUsers(ctx, app.ImportUsersRequest{
		ActorID:     admin.ID,
		AuthMode:    types.AuthModeEmailInvite,
		AllowCreate: true,
		InputPath:   testutil.WriteFile(t, "users.csv", testutil.UsersCSV),
	})
	require.NoError(t, err)
	report := imported.Report
	assert.Equal(t, 3, report.Processed)
	if diff := cmp.Diff(types.CreatedCounts{Users: 2, Groups: 1, Roles: 1, Projects: 1}, report.Created); diff != "" {
		t.Fatalf("unexpected counts (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{
		"At line 4 (while checking user fields): The 'email' column can't be blank.",
	}, types.FormatUnitErrors(report.Errors)); diff != "" {
		t.Fatalf("unexpected errors (-want +got):\n%s", diff)
	}

	shop, found, err := service.Store.FindProjectByIdentifier(ctx, "shop")
	require.NoError(t, err)
	require.True(t, found)
	web, _, err := service.Store.FindProjectByIdentifier(ctx, "web")
	require.NoError(t, err)
	require.NotNil(t, shop.ParentID)
	assert.Equal(t, web.ID, *shop.ParentID)
	assert.Equal(t, web.Description, shop.Description)

	copied, err := service.CopySettings(ctx, app.CopySettingsRequest{
		ActorID:   admin.ID,
		ProjectID: "web",
		Settings: map[string][]string{
			"versions":   {"new_versions"},
			"attributes": {"description"},
		},
		Order: []string{"versions", "attributes"},
	})
	require.NoError(t, err)
	require.False(t, copied.InvalidProject)
	assert.Empty(t, copied.Report.Errors)
	assert.Equal(t, 2, copied.Report.Children)

	assert.Equal(t, []string{"v2"}, versionNames(t, service, "web-a"))
	assert.Empty(t, versionNames(t, service, "web-old"))
	webA, _, err := service.Store.FindProjectByIdentifier(ctx, "web-a")
	require.NoError(t, err)
	assert.Equal(t, "Shop front", webA.Description)

	entries, err := os.ReadDir(notifyDir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestSQLiteImportNotificationCarriesReport(t *testing.T) {
	ctx := t.Context()
	notifyDir := t.TempDir()
	service := newSQLiteService(t, notifyDir)
	service.NewRunID = func() string { return "run-7" }

	admin, _, err := service.Store.FindUserByLogin(ctx, "admin")
	require.NoError(t, err)
	_, err = service.ImportUsers(ctx, app.ImportUsersRequest{
		ActorID:     admin.ID,
		AuthMode:    types.AuthModeEmailInvite,
		AllowCreate: true,
		InputPath:   testutil.WriteFile(t, "users.csv", testutil.UsersCSV),
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(notifyDir, "import-run-7.yaml"))
	require.NoError(t, err)
	var doc struct {
		Message struct {
			To      string `yaml:"to"`
			Subject string `yaml:"subject"`
		} `yaml:"message"`
		Report types.ImportReport `yaml:"report"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "admin@example.com", doc.Message.To)
	assert.Equal(t, "User import completed", doc.Message.Subject)
	assert.Equal(t, "run-7", doc.Report.RunID)
	assert.Len(t, doc.Report.Errors, 1)
}

func TestSQLiteImportResumesFromStartLine(t *testing.T) {
	ctx := t.Context()
	service := newSQLiteService(t, t.TempDir())
	admin, _, err := service.Store.FindUserByLogin(ctx, "admin")
	require.NoError(t, err)

	result, err := service.ImportUsers(ctx, app.ImportUsersRequest{
		ActorID:     admin.ID,
		AuthMode:    types.AuthModeEmailInvite,
		AllowCreate: true,
		InputPath:   testutil.WriteFile(t, "users.csv", testutil.UsersCSV),
		StartLine:   4,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Report.Processed)
	_, found, err := service.Store.FindUserByLogin(ctx, "jdoe")
	require.NoError(t, err)
	assert.False(t, found)
}
