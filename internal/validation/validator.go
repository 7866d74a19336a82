// Package validation wraps go-playground/validator with a process-wide
// instance and error messages shaped for API responses.
//
// Field names in errors use the struct's json tag, so a request struct like
//
//	type SearchRequest struct {
//	    Query string `json:"query" validate:"notblank,max=200"`
//	    Limit int    `json:"limit" validate:"min=1,max=100"`
//	}
//
// reports "limit must be at most 100" rather than the Go field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// Error returns the human-readable message.
func (e FieldError) Error() string {
	return e.Message
}

// RequestError collects every failed rule of one request.
type RequestError struct {
	Fields []FieldError
}

// Error joins every field message.
func (e *RequestError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})

		// notblank rejects strings that are empty after trimming.
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			if fl.Field().Kind() != reflect.String {
				return true
			}
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})

	return validate
}

// ValidateStruct validates s. It returns nil or a *RequestError.
func ValidateStruct(s interface{}) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestError{Fields: []FieldError{{Field: "request", Tag: "invalid", Message: err.Error()}}}
	}

	out := make([]FieldError, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = fieldError(fe.Field(), fe)
	}
	return &RequestError{Fields: out}
}

// ValidateVar checks a single value against tag, reporting failures under
// field. It is used for bounds that come from configuration.
func ValidateVar(field string, v interface{}, tag string) error {
	err := GetValidator().Var(v, tag)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestError{Fields: []FieldError{{Field: field, Tag: "invalid", Message: err.Error()}}}
	}

	out := make([]FieldError, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = fieldError(field, fe)
	}
	return &RequestError{Fields: out}
}

// Merge combines request errors, skipping nils. Errors that are not
// *RequestError are returned as is.
func Merge(errs ...error) error {
	var merged RequestError
	for _, err := range errs {
		if err == nil {
			continue
		}
		var reqErr *RequestError
		if !errors.As(err, &reqErr) {
			return err
		}
		merged.Fields = append(merged.Fields, reqErr.Fields...)
	}
	if len(merged.Fields) == 0 {
		return nil
	}
	return &merged
}

func fieldError(field string, fe validator.FieldError) FieldError {
	return FieldError{
		Field:   field,
		Tag:     fe.Tag(),
		Param:   fe.Param(),
		Message: translate(field, fe),
	}
}

var simpleMessages = map[string]string{
	"required": "%s is required",
	"notblank": "%s must not be blank",
}

var paramMessages = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
}

func translate(field string, fe validator.FieldError) string {
	tag, param := fe.Tag(), fe.Param()

	if tmpl, ok := simpleMessages[tag]; ok {
		return fmt.Sprintf(tmpl, field)
	}
	if tmpl, ok := paramMessages[tag]; ok {
		return fmt.Sprintf(tmpl, field, param)
	}

	isString := fe.Kind() == reflect.String
	switch tag {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
