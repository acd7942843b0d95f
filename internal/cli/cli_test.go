package cli

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- Command tree tests ----------

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	expected := []string{"import-users", "copy-settings", "validate", "migrate"}
	for _, name := range expected {
		assert.Contains(t, names, name, "missing subcommand: %s", name)
	}
}

func TestRootCommandVersion(t *testing.T) {
	root := newRootCommand()
	assert.Equal(t, "dev", root.Version)
}

func TestRootStoreFlags(t *testing.T) {
	root := newRootCommand()
	flags := []string{
		"config", "log-level", "store-driver", "store-path", "store-seed",
		"permissions", "policy", "notify", "notify-dir",
	}
	for _, name := range flags {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), "missing flag: %s", name)
	}
}

func TestImportUsersCommandFlags(t *testing.T) {
	cmd := newImportUsersCommand()
	flags := []string{
		"file", "actor", "auth-mode", "identity-prefix",
		"allow-create", "start-line", "remove-input",
	}
	for _, name := range flags {
		flag := cmd.Flags().Lookup(name)
		assert.NotNil(t, flag, "missing flag: %s", name)
	}
}

func TestCopySettingsCommandFlags(t *testing.T) {
	cmd := newCopySettingsCommand()
	for _, name := range []string{"project", "actor", "attributes", "versions", "categories", "selection-file"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestValidateCommandFlags(t *testing.T) {
	cmd := newValidateCommand()
	assert.NotNil(t, cmd.Flags().Lookup("file"))
	assert.NotNil(t, cmd.Flags().Lookup("auth-mode"))
}

// ---------- Helper function tests ----------

func TestResolveString(t *testing.T) {
	tests := []struct {
		name     string
		cmd      *cobra.Command
		value    string
		expected string
	}{
		{
			name:     "nil cmd with value returns value",
			cmd:      nil,
			value:    "explicit",
			expected: "explicit",
		},
		{
			name:     "nil cmd empty value returns empty",
			cmd:      nil,
			value:    "",
			expected: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveString(tt.cmd, tt.value, "test_key", "test-flag")
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolveBool(t *testing.T) {
	got := resolveBool(nil, true, "test_key", "test-flag")
	assert.True(t, got)

	got = resolveBool(nil, false, "test_key", "test-flag")
	assert.False(t, got)
}

func TestResolveInt(t *testing.T) {
	got := resolveInt(nil, 42, "test_key", "test-flag")
	assert.Equal(t, 42, got)
}

func TestFlagChanged(t *testing.T) {
	assert.False(t, flagChanged(nil, "anything"), "nil cmd should return false")
	assert.False(t, flagChanged(nil, ""), "nil cmd with empty name")

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("myflag", "", "test flag")
	assert.False(t, flagChanged(cmd, "myflag"), "unchanged flag")
	assert.False(t, flagChanged(cmd, "nonexistent"), "nonexistent flag")
}

func TestFlagChangedAfterSet(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("myflag", "", "test flag")
	require.NoError(t, cmd.Flags().Set("myflag", "val"))
	assert.True(t, flagChanged(cmd, "myflag"))
}

// ---------- Exit code tests ----------

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name: "invalid argument",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("bad input"),
			expected: 2,
		},
		{
			name: "already exists",
			err: errbuilder.New().
				WithCode(errbuilder.CodeAlreadyExists).
				WithMsg("dup"),
			expected: 2,
		},
		{
			name: "permission denied",
			err: errbuilder.New().
				WithCode(errbuilder.CodePermissionDenied).
				WithMsg("nope"),
			expected: 3,
		},
		{
			name: "failed precondition",
			err: errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg("store not migrated"),
			expected: 4,
		},
		{
			name: "not found",
			err: errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("file missing"),
			expected: 5,
		},
		{
			name: "internal error",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("boom"),
			expected: 5,
		},
		{
			name:     "unknown error",
			err:      assert.AnError,
			expected: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := exitCodeForError(tt.err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name: "errbuilder with msg",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("something broke"),
			expected: "something broke",
		},
		{
			name:     "plain error",
			err:      assert.AnError,
			expected: assert.AnError.Error(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errorMessage(tt.err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
