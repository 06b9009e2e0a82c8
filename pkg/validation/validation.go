// Package validation checks tagged structs with go-playground/validator and
// reports the first failure as a validation domain error.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "auditfeed/pkg/domain-errors"
)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	// Report fields by their YAML key so messages match the config file.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks v against its validate tags.
func Validate(v any) error {
	if err := defaultValidator.Struct(v); err != nil {
		return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
	}
	return nil
}

// ErrorMessage converts a validator error into a human-readable message.
func ErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid configuration"
	}

	fe := validationErrs[0]
	field := fieldPath(fe)

	switch fe.ActualTag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "url":
		return fmt.Sprintf("%s must be an absolute URL", field)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// fieldPath drops the root struct name: "Config.api.access_token" becomes
// "api.access_token".
func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	if f := fe.Field(); f != "" {
		return f
	}
	return fe.StructField()
}
