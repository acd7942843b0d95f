package app

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/go-playground/validator/v10"
)

var identityPrefixPattern = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9_-]?[a-zA-Z0-9])*$`)

var (
	requestValidator *validator.Validate
	validatorOnce    sync.Once
	validatorErr     error
)

func initRequestValidator() (*validator.Validate, error) {
	vld := validator.New(validator.WithRequiredStructEnabled())
	if err := vld.RegisterValidation("identity_prefix", func(fl validator.FieldLevel) bool {
		return identityPrefixPattern.MatchString(fl.Field().String())
	}); err != nil {
		return nil, fmt.Errorf("failed to register 'identity_prefix': %w", err)
	}
	return vld, nil
}

// validateRequest checks the struct tags of req and reports the first
// violation as an invalid-argument error.
func validateRequest(req any) error {
	validatorOnce.Do(func() {
		requestValidator, validatorErr = initRequestValidator()
	})
	if validatorErr != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("request validator unavailable").
			WithCause(validatorErr)
	}
	err := requestValidator.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return invalidRequest(requestFieldMessage(fieldErrs[0]))
	}
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg("invalid request").
		WithCause(err)
}

var requestFieldFormatters = map[string]func(field string, param string) string{
	"required": func(field, _ string) string { return fmt.Sprintf("%s is required", field) },
	"gt":       func(field, param string) string { return fmt.Sprintf("%s must be greater than %s", field, param) },
	"gte":      func(field, param string) string { return fmt.Sprintf("%s must be at least %s", field, param) },
	"max":      func(field, param string) string { return fmt.Sprintf("%s must be at most %s characters", field, param) },
	"oneof":    func(field, param string) string { return fmt.Sprintf("%s must be one of [%s]", field, param) },
	"identity_prefix": func(field, _ string) string {
		return fmt.Sprintf("%s may only contain letters, digits, '-' and '_' and must start and end with a letter or digit", field)
	},
}

func requestFieldMessage(fe validator.FieldError) string {
	field := toSnakeCase(fe.Field())
	if format, ok := requestFieldFormatters[fe.Tag()]; ok {
		return format(field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid", field)
}

func toSnakeCase(name string) string {
	var builder strings.Builder
	var prev rune
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && (prev < 'A' || prev > 'Z') {
				builder.WriteByte('_')
			}
			builder.WriteRune(r + ('a' - 'A'))
		} else {
			builder.WriteRune(r)
		}
		prev = r
	}
	return builder.String()
}

func invalidRequest(msg string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msg)
}
