package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = `
users:
  - login: admin
    first_name: Ada
    last_name: Admin
    mail: admin@example.com
    admin: true
projects:
  - identifier: web
    name: Web
    description: Shop front
    versions:
      - name: v1
        status: closed
      - name: v2
  - identifier: web-a
    name: Web A
    parent: web
`

func writeFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(viper.Reset)
	root := newRootCommand()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestImportUsersCommand(t *testing.T) {
	seed := writeFile(t, "seed.yaml", testSeed)
	input := writeFile(t, "users.csv",
		"username,email,first_name,last_name,administrator,group,role,parent_project,sub_project\n"+
			"jdoe,jdoe@example.com,john,doe,false,Team A,,web,\n"+
			"asmith,,anna,smith,false,,,,\n")

	out, err := runRoot(t, "--log-level", "error", "--store-driver", "memory", "--store-seed", seed,
		"import-users", "--file", input, "--actor", "admin", "--allow-create")
	require.NoError(t, err)
	assert.Contains(t, out, "2 rows processed")
	assert.Contains(t, out, "created: users=1 groups=1 roles=1 projects=0")
	assert.Contains(t, out, "At line 3 (while checking user fields): The 'email' column can't be blank.")
}

func TestImportUsersCommandUnknownActor(t *testing.T) {
	input := writeFile(t, "users.csv", "username\n")

	_, err := runRoot(t, "--log-level", "error", "--store-driver", "memory",
		"import-users", "--file", input, "--actor", "ghost")
	require.Error(t, err)
	assert.Equal(t, 5, exitCodeForError(err))
}

func TestCopySettingsCommandWithSelectionFile(t *testing.T) {
	seed := writeFile(t, "seed.yaml", testSeed)
	selection := writeFile(t, "selection.yaml", "versions: [new_versions]\nattributes: [description]\n")

	out, err := runRoot(t, "--log-level", "error", "--store-driver", "memory", "--store-seed", seed,
		"copy-settings", "--project", "web", "--actor", "admin", "--selection-file", selection)
	require.NoError(t, err)
	assert.Contains(t, out, "copied settings of Web to 1 sub-projects")
	assert.Contains(t, out, "no errors")
}

func TestCopySettingsCommandRejectsEmptySelection(t *testing.T) {
	seed := writeFile(t, "seed.yaml", testSeed)

	_, err := runRoot(t, "--log-level", "error", "--store-driver", "memory", "--store-seed", seed,
		"copy-settings", "--project", "web", "--actor", "admin")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
	assert.Equal(t, "No settings were chosen to be copied.", errorMessage(err))
}

func TestValidateCommand(t *testing.T) {
	input := writeFile(t, "users.csv", "username,first_name,last_name,administrator\n")

	_, err := runRoot(t, "--log-level", "error", "validate", "--file", input)
	require.Error(t, err)
	assert.Equal(t, 2, exitCodeForError(err))
}

func TestMigrateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bulkops.db")

	out, err := runRoot(t, "--log-level", "error", "--store-path", path, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "store at schema version 1")
}

func TestSettingsSelectionMergesFlagsOverFile(t *testing.T) {
	selection := writeFile(t, "selection.yaml", "categories: [new_categories]\nversions: [status]\n")
	cmd := newCopySettingsCommand()
	require.NoError(t, cmd.Flags().Set("versions", "new_versions,dates"))
	require.NoError(t, cmd.Flags().Set("attributes", "public"))

	settings, order, err := settingsSelection(cmd, copySettingsOptions{
		SelectionFile: selection,
		Versions:      []string{"new_versions", "dates"},
		Attributes:    []string{"public"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"categories", "versions", "attributes"}, order)
	assert.Equal(t, []string{"new_versions", "dates"}, settings["versions"])
	assert.Equal(t, []string{"new_categories"}, settings["categories"])
}

func TestLoadSelectionFileRejectsList(t *testing.T) {
	selection := writeFile(t, "selection.yaml", "- versions\n")
	_, _, err := loadSelectionFile(selection)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
