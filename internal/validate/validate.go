// Package validate wraps go-playground/validator so services can check
// request structs and get back apperror values.
//
// Messages come from a `msg` struct tag when present, so each input type
// keeps its user-facing wording next to its rules:
//
//	Email string `json:"email" validate:"required,email" msg:"Please include a valid email"`
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/devlink/internal/apperror"
)

// Validator checks structs against their `validate` tags.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator that reports fields by their json names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// notblank rejects whitespace-only strings, which "required" lets through.
	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(fmt.Sprintf("validate: registering notblank: %v", err))
	}

	return &Validator{validate: v}
}

// Struct validates s. It returns nil, an *apperror.AppError wrapping
// apperror.ErrValidation listing every failed field, or a plain error if s
// is not something the validator can inspect.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	t := reflect.TypeOf(s)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	fields := make([]apperror.FieldError, 0, len(verrs))
	seen := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		// One message per field; the first failing rule wins.
		if seen[fe.Field()] {
			continue
		}
		seen[fe.Field()] = true
		fields = append(fields, apperror.FieldError{
			Param:   fe.Field(),
			Message: message(t, fe),
		})
	}
	return apperror.InvalidFields(fields)
}

func message(t reflect.Type, fe validator.FieldError) string {
	if t.Kind() == reflect.Struct {
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if msg := sf.Tag.Get("msg"); msg != "" {
				return msg
			}
		}
	}

	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid (failed on '%s')", fe.Field(), fe.Tag())
	}
}
