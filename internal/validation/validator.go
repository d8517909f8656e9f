// Package validation checks decoded request bodies with go-playground/validator.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/studyfindr/studyfindr-api/internal/apperror"
)

// Validator wraps validator.Validate and reports failures as apperror validation errors.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()

	// Report fields by their JSON name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &Validator{v: v}
}

// Validate returns nil or an *apperror.Error keyed by field, each with a list of messages.
func (v *Validator) Validate(s interface{}) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apperror.Internal(err)
	}

	fields := make(map[string]interface{}, len(validationErrs))
	for _, e := range validationErrs {
		fields[e.Field()] = []string{friendlyMessage(e)}
	}
	return apperror.Validation(fields)
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "min":
		return "Field must be at least " + e.Param() + " characters long."
	case "max":
		return "Field cannot be longer than " + e.Param() + " characters."
	case "eqfield":
		return "Passwords must match."
	case "oneof":
		return "Must be one of: " + e.Param() + "."
	case "gte":
		return "Must be at least " + e.Param() + "."
	case "lte":
		return "Must be at most " + e.Param() + "."
	default:
		return "Invalid value."
	}
}
