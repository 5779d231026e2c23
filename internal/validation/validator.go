// Package validation wraps go-playground/validator with a shared instance,
// JSON field naming and messages suitable for API responses.
//
// Usage:
//
//	type RecommendRequest struct {
//	    PlayerID string `json:"player_id" validate:"required"`
//	    TopN     *int   `json:"top_n" validate:"omitempty,lte=50"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    // verr.Error() lists every failing field
//	}
package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// singleton validator instance
var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError describes one failing field.
type FieldError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message"`
}

// Error returns a human-readable error message.
func (e FieldError) Error() string { return e.Message }

// Errors is the collection returned by ValidateStruct.
type Errors struct {
	Fields []FieldError
}

// Error joins every field message.
func (ve *Errors) Error() string {
	if ve == nil || len(ve.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(ve.Fields))
	for i, f := range ve.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// GetValidator returns the singleton validator instance.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report json names rather than Go field names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})

		_ = validate.RegisterValidation("httpurl", isHTTPURL)
	})
	return validate
}

// ValidateStruct validates s. It returns nil when s is valid.
func ValidateStruct(s interface{}) *Errors {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &Errors{Fields: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}

	out := make([]FieldError, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: translateError(fe),
		}
	}
	return &Errors{Fields: out}
}

// isHTTPURL accepts absolute http and https URLs with a host.
func isHTTPURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// errorMessageTemplates maps validation tags to message templates.
var errorMessageTemplates = map[string]string{
	"required": "%s is required",
	"httpurl":  "%s must be an absolute http or https URL",
	"gt":       "%s must be greater than %s",
	"gte":      "%s must be greater than or equal to %s",
	"lte":      "%s must be less than or equal to %s",
	"oneof":    "%s must be one of: %s",
}

// translateError converts a validator.FieldError to a human-readable message.
func translateError(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()

	if tmpl, ok := errorMessageTemplates[tag]; ok {
		if strings.Count(tmpl, "%s") == 2 {
			return fmt.Sprintf(tmpl, field, param)
		}
		return fmt.Sprintf(tmpl, field)
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
