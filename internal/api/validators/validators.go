// Package validators wraps go-playground/validator for request bodies.
package validators

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	appErr "github.com/dealflow-studio/engine/pkg/errors"
)

// Validator checks request structs and reports the first failure as an
// invalid AppError naming the JSON field.
type Validator struct {
	v *validator.Validate
}

var (
	once   sync.Once
	shared *Validator
)

// New returns the process-wide validator. validator.Validate caches struct
// metadata, so one instance is reused.
func New() *Validator {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		shared = &Validator{v: v}
	})
	return shared
}

// Struct validates s.
func (v *Validator) Struct(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return appErr.Wrap(err, appErr.CodeInvalid, "Invalid request body")
	}
	fe := verrs[0]
	field := fieldPath(fe)
	return appErr.Invalid(field, message(field, fe))
}

// fieldPath drops the struct name prefix: "PipelineRequest.tags[3]" -> "tags[3]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must contain at most %s items", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "url":
		return field + " must be a valid URL"
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}
