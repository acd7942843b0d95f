// Package testutil provides shared test helpers used across integration,
// e2e, and unit test packages.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// WriteFile writes content to name inside a fresh temp directory and
// returns the full path.
func WriteFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// Seed is a small organisation with one parent project and two
// sub-projects, one of them archived.
const Seed = `
roles:
  - name: Member
    kind: project
    assignable: true
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
    public: true
    enabled_modules: [wiki, forums]
    versions:
      - name: v1
        status: closed
      - name: v2
        start_date: 2025-01-01
        effective_date: 2025-03-01
    categories: [Backend, Frontend]
  - identifier: web-a
    name: Web A
    parent: web
  - identifier: web-old
    name: Web Old
    parent: web
    archived: true
`

// UsersCSV has two importable rows and one row missing its email.
const UsersCSV = "username,email,first_name,last_name,administrator,group,role,parent_project,sub_project\n" +
	"jdoe,jdoe@example.com,john,doe,false,Team A,,web,\n" +
	"asmith,asmith@example.com,anna,smith,false,,Developer,web,shop\n" +
	"bwayne,,bruce,wayne,false,,,,\n"
