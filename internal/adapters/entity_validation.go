package adapters

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"

	"bulkops/internal/types"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
	foldCaser    = cases.Fold()
)

func entityValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// validateEntity checks the struct tags of entity and turns every violation
// into a sentence. It returns nil when entity is valid.
func validateEntity(entity any) *types.ValidationError {
	err := entityValidator().Struct(entity)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &types.ValidationError{Messages: []string{err.Error()}}
	}
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fieldMessage(fe))
	}
	return &types.ValidationError{Messages: messages}
}

func fieldMessage(fe validator.FieldError) string {
	label := humanField(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s can't be blank.", label)
	case "max":
		return fmt.Sprintf("%s is too long (maximum is %s characters).", label, fe.Param())
	case "email":
		return fmt.Sprintf("%s is invalid.", label)
	case "oneof":
		return fmt.Sprintf("%s is not included in the list.", label)
	default:
		return fmt.Sprintf("%s is invalid.", label)
	}
}

// humanField turns a Go field name such as "FirstName" into "First name".
func humanField(field string) string {
	if field == "Mail" {
		return "Email"
	}
	var builder strings.Builder
	for i, r := range field {
		if i > 0 && r >= 'A' && r <= 'Z' {
			builder.WriteByte(' ')
			builder.WriteRune(r + ('a' - 'A'))
			continue
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

func takenError(field string) *types.ValidationError {
	return &types.ValidationError{Messages: []string{field + " has already been taken."}}
}

func foldKey(value string) string {
	return foldCaser.String(strings.TrimSpace(value))
}

var associationLabels = map[types.AssociationKind]string{
	types.AssociationWorkPackages:           "Work package",
	types.AssociationWorkPackageAttachments: "Attachment",
	types.AssociationVersions:               "Version",
	types.AssociationQueries:                "Query",
	types.AssociationCategories:             "Category",
	types.AssociationForums:                 "Forum",
	types.AssociationWiki:                   "Wiki page",
	types.AssociationWikiPageAttachments:    "Attachment",
}

// itemMessages prefixes the messages of one copied item with its kind and
// title, e.g. "Version 'v1': Name has already been taken.".
func itemMessages(kind types.AssociationKind, title string, messages []string) []string {
	label, ok := associationLabels[kind]
	if !ok {
		label = string(kind)
	}
	out := make([]string, 0, len(messages))
	for _, msg := range messages {
		out = append(out, fmt.Sprintf("%s '%s': %s", label, title, msg))
	}
	return out
}
