// Package validate runs field rules shared by the HTTP binding tags and the services.
package validate

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/playerfinder/playerfinder/internal/apperr"
)

// Rule strings. The binding tags on request structs use the same strings.
const (
	Required = "required"
	Email    = "required,email"
	Password = "required,min=4"
	Avatar   = "omitempty,url"
	URL      = "required,url"
)

var engine = validator.New(validator.WithRequiredStructEnabled())

// Checker collects field errors across several Check calls.
type Checker struct {
	fields []apperr.FieldError
}

// Check validates value against rules and records the first failing rule under field.
func (c *Checker) Check(field string, value any, rules string) {
	errVar := engine.Var(value, rules)
	if errVar == nil {
		return
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(errVar, &validationErrs) || len(validationErrs) == 0 {
		c.fields = append(c.fields, apperr.FieldError{Field: field, Rule: "invalid", Message: field + " is invalid"})
		return
	}
	fe := validationErrs[0]
	c.fields = append(c.fields, apperr.FieldError{
		Field:   field,
		Rule:    fe.Tag(),
		Message: Message(field, fe.Tag(), fe.Param(), fe.Kind()),
	})
}

// Add records a failure decided outside the validator.
func (c *Checker) Add(field, rule, message string) {
	c.fields = append(c.fields, apperr.FieldError{Field: field, Rule: rule, Message: message})
}

// Err returns a 422 carrying every recorded field error, or nil.
func (c *Checker) Err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return apperr.Validation(c.fields, "validation failed")
}

// Message renders the human readable text for a failed rule.
func Message(field, tag, param string, kind reflect.Kind) string {
	switch tag {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "url":
		return field + " must be a valid url"
	case "min":
		if kind == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	default:
		return fmt.Sprintf("%s failed the %s rule", field, tag)
	}
}
