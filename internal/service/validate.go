package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/examscores/scorebot/internal/domain"
)

// Validator checks request payloads against their validate tags and reports
// violations with JSON field names.
type Validator struct {
	v *validator.Validate
}

// NewValidator builds a Validator that names fields after their json tags.
func NewValidator() *Validator {
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
	return &Validator{v: v}
}

// Struct validates payload and returns a *domain.ValidationError listing every bad field.
func (val *Validator) Struct(payload any) error {
	err := val.v.Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate payload: %w", err)
	}
	out := &domain.ValidationError{Fields: make([]domain.FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		msg, typ := describe(fe)
		out.Fields = append(out.Fields, domain.FieldError{
			Loc:  []string{"body", fe.Field()},
			Msg:  msg,
			Type: typ,
		})
	}
	return out
}

func describe(fe validator.FieldError) (string, string) {
	kind := fe.Kind()
	if kind == reflect.Ptr {
		kind = fe.Type().Elem().Kind()
	}
	isString := kind == reflect.String

	switch fe.Tag() {
	case "required":
		return "Field required", "missing"
	case "min":
		if isString {
			return fmt.Sprintf("String should have at least %s characters", fe.Param()), "string_too_short"
		}
		return fmt.Sprintf("Input should be greater than or equal to %s", fe.Param()), "greater_than_equal"
	case "max":
		if isString {
			return fmt.Sprintf("String should have at most %s characters", fe.Param()), "string_too_long"
		}
		return fmt.Sprintf("Input should be less than or equal to %s", fe.Param()), "less_than_equal"
	}
	return fmt.Sprintf("Failed on %s validation", fe.Tag()), fe.Tag()
}
