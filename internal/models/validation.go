package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var alphanumSpaceRegexp = regexp.MustCompile(`^[a-zA-Z0-9\s]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("alphanumspace", func(fl validator.FieldLevel) bool {
		return alphanumSpaceRegexp.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// ValidationError reports the fields of a draft or a patch that were
// rejected before reaching the task store.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range []string{"title", "description"} {
		if msg, ok := e.Fields[field]; ok {
			parts = append(parts, field+": "+msg)
		}
	}
	return "invalid task: " + strings.Join(parts, ", ")
}

func (d TaskDraft) Validate() error {
	return validateStruct(d)
}

func (p TaskPatch) Validate() error {
	return validateStruct(p)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("failed to validate task: %w", err)
	}

	verr := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field())
		if _, seen := verr.Fields[field]; seen {
			continue
		}
		switch fe.Tag() {
		case "required", "notblank":
			verr.Fields[field] = "must not be empty"
		case "alphanumspace":
			verr.Fields[field] = "only alphanumeric characters are allowed"
		case "max":
			verr.Fields[field] = "must be at most " + fe.Param() + " characters"
		default:
			verr.Fields[field] = "is invalid"
		}
	}
	return verr
}
