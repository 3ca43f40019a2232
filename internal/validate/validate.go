// Package validate checks request structs against their `validate` tags and
// reports the first failure as a validation error.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hackgods/saude-connect/internal/apperr"
)

var v *validator.Validate

func init() {
	v = validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(f.Name)
		}
		return name
	})
}

var messages = map[string]string{
	"required": "is required",
	"gt":       "must be greater than %s",
	"max":      "must be at most %s characters",
	"oneof":    "must be one of: %s",
	"datetime": "must be formatted as %s",
	"uuid":     "must be a UUID",
	"email":    "must be a valid email",
}

// Struct validates s. A failure is returned as an apperr validation error
// naming the first offending field.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.New(apperr.ErrValidation, "request is invalid")
	}
	return apperr.New(apperr.ErrValidation, describe(fieldErrs[0]))
}

func describe(fe validator.FieldError) string {
	msg, ok := messages[fe.Tag()]
	if !ok {
		return fe.Field() + " is invalid"
	}
	if strings.Contains(msg, "%s") {
		param := fe.Param()
		if fe.Tag() == "oneof" {
			param = strings.Join(strings.Fields(param), ", ")
		}
		msg = fmt.Sprintf(msg, param)
	}
	return fe.Field() + " " + msg
}
