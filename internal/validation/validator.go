// Package validation validates decoded API requests with
// go-playground/validator and collects per-field error messages.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single failed rule on one request field.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// RequestValidationError collects every field error found in a request.
type RequestValidationError struct {
	errors []FieldError
}

// Errors returns the collected field errors in the order they were found.
func (ve *RequestValidationError) Errors() []FieldError {
	return ve.errors
}

// Add records an error for field.
func (ve *RequestValidationError) Add(field, tag, message string) {
	ve.errors = append(ve.errors, FieldError{Field: field, Tag: tag, Message: message})
}

// Merge appends other's errors. A nil other is ignored.
func (ve *RequestValidationError) Merge(other *RequestValidationError) {
	if other == nil {
		return
	}
	ve.errors = append(ve.errors, other.errors...)
}

// HasErrors reports whether any error has been recorded.
func (ve *RequestValidationError) HasErrors() bool {
	return ve != nil && len(ve.errors) > 0
}

// Has reports whether field has at least one error.
func (ve *RequestValidationError) Has(field string) bool {
	for _, e := range ve.errors {
		if e.Field == field {
			return true
		}
	}
	return false
}

// FieldErrors groups messages by field name.
func (ve *RequestValidationError) FieldErrors() map[string][]string {
	out := make(map[string][]string, len(ve.errors))
	for _, e := range ve.errors {
		out[e.Field] = append(out[e.Field], e.Message)
	}
	return out
}

// Error joins all messages, ordered by field.
func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}

	sorted := append([]FieldError(nil), ve.errors...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Field < sorted[j].Field })

	messages := make([]string, 0, len(sorted))
	for _, e := range sorted {
		messages = append(messages, e.Message)
	}
	return strings.Join(messages, "; ")
}

// GetValidator returns the shared validator. Field names in errors are
// taken from json tags so they match the request body keys.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// ValidateStruct validates s. It returns nil when s passes.
func ValidateStruct(s any) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{
			errors: []FieldError{{Field: "body", Tag: "invalid", Message: err.Error()}},
		}
	}

	fieldErrors := make([]FieldError, len(validationErrs))
	for i, fe := range validationErrs {
		fieldErrors[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: translateError(fe),
		}
	}
	return &RequestValidationError{errors: fieldErrors}
}

var errorMessageTemplates = map[string]string{
	"required":  "%s is required",
	"datetime":  "%s must be a date in YYYY-MM-DD format",
	"latitude":  "%s must be a valid latitude (-90 to 90)",
	"longitude": "%s must be a valid longitude (-180 to 180)",
}

var errorMessageWithParam = map[string]string{
	"eq":    "%s must be %q",
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
}

func translateError(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}
	return translateMinMax(fe, field, tag, param)
}

func translateMinMax(fe validator.FieldError, field, tag, param string) string {
	isString := fe.Kind() == reflect.String

	switch tag {
	case "min":
		if isString {
			if param == "1" {
				return fmt.Sprintf("%s must not be empty", field)
			}
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
