package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"bulkops/internal/types"
)

const (
	ColumnUsername      = "username"
	ColumnEmail         = "email"
	ColumnFirstName     = "first_name"
	ColumnLastName      = "last_name"
	ColumnAdministrator = "administrator"
	ColumnGroup         = "group"
	ColumnRole          = "role"
	ColumnParentProject = "parent_project"
	ColumnSubProject    = "sub_project"
	ColumnIdentityURL   = "identity_url"
)

// RequiredColumns lists the header columns an import file must carry.
func RequiredColumns(mode types.AuthMode) []string {
	columns := []string{
		ColumnUsername, ColumnEmail, ColumnFirstName, ColumnLastName, ColumnAdministrator,
		ColumnGroup, ColumnRole, ColumnParentProject, ColumnSubProject,
	}
	if mode == types.AuthModeIdentityURL {
		columns = append(columns, ColumnIdentityURL)
	}
	return columns
}

// MinimalUserColumns lists the columns that must be filled before a missing
// user can be created.
func MinimalUserColumns(mode types.AuthMode) []string {
	columns := []string{ColumnUsername, ColumnEmail, ColumnFirstName, ColumnLastName, ColumnAdministrator}
	if mode == types.AuthModeIdentityURL {
		columns = append(columns, ColumnIdentityURL)
	}
	return columns
}

// MissingColumns returns the required columns absent from header, in
// required order.
func MissingColumns(header []string, required []string) []string {
	present := make(map[string]struct{}, len(header))
	for _, column := range header {
		present[strings.TrimSpace(column)] = struct{}{}
	}
	var missing []string
	for _, column := range required {
		if _, ok := present[column]; !ok {
			missing = append(missing, column)
		}
	}
	return missing
}

// MalformedInputError is the whole-batch failure for a header that lacks
// required columns.
type MalformedInputError struct {
	Missing []string
}

func (e *MalformedInputError) Error() string {
	return strings.Join(e.Messages(), " ")
}

func (e *MalformedInputError) Messages() []string {
	out := make([]string, 0, len(e.Missing))
	for _, column := range e.Missing {
		out = append(out, fmt.Sprintf("The chosen CSV doesn't contain the '%s' column in the header.", column))
	}
	return out
}

// ValidateHeader fails with a coded error wrapping *MalformedInputError when
// any required column is missing.
func ValidateHeader(header []string, mode types.AuthMode) error {
	missing := MissingColumns(header, RequiredColumns(mode))
	if len(missing) == 0 {
		return nil
	}
	malformed := &MalformedInputError{Missing: missing}
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(malformed.Error()).
		WithCause(malformed)
}
