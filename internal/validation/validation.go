// Package validation checks request payloads and reports every invalid field
// at once, keyed by the field's JSON name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/blog-api/internal/apperror"
)

// MsgRequired is reported for a field missing from a full-replacement body.
const MsgRequired = "This field is required."

// Errors maps a JSON field name to its messages.
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Require records MsgRequired when a field was absent from the body and has
// not been reported already.
func (e Errors) Require(field string, value *string) {
	if value == nil && !e.Has(field) {
		e.Add(field, MsgRequired)
	}
}

// Has reports whether field already has a message.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// Err returns nil when there are no errors, otherwise an
// apperror.ErrValidation error carrying the whole map.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return apperror.Invalid(map[string][]string(e))
}

// Validator wraps go-playground/validator. Field names in reports are taken
// from json tags.
//
// Lengths are measured by validator's min/max, which count runes for strings.
// Callers trim surrounding whitespace before validating.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
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
	return &Validator{validate: v}
}

// Struct validates s and returns the violations, or an empty map.
// s must be a struct or a pointer to one; anything else is a programming
// error and panics.
func (v *Validator) Struct(s any) Errors {
	errs := Errors{}

	err := v.validate.Struct(s)
	if err == nil {
		return errs
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		panic(fmt.Sprintf("validation: %v", err))
	}

	for _, fe := range fieldErrs {
		errs.Add(fe.Field(), message(fe))
	}
	return errs
}

// Into validates s and adds its violations to errs, skipping fields errs
// already reports. A field recorded as missing by Require therefore does not
// also get "cannot be empty".
func (v *Validator) Into(errs Errors, s any) {
	for field, msgs := range v.Struct(s) {
		if errs.Has(field) {
			continue
		}
		for _, m := range msgs {
			errs.Add(field, m)
		}
	}
}

func message(fe validator.FieldError) string {
	label := Label(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " cannot be empty."
	case "min":
		return fmt.Sprintf("%s must be at least %s characters.", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s cannot exceed %s characters.", label, fe.Param())
	default:
		return label + " is invalid."
	}
}

// Label turns a JSON field name into the word used in messages:
// "title" becomes "Title".
func Label(field string) string {
	r, size := utf8.DecodeRuneInString(field)
	if r == utf8.RuneError {
		return field
	}
	return string(unicode.ToUpper(r)) + field[size:]
}
