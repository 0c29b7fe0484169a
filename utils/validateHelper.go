package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ProcessValidationErrors flattens validator errors into per-field messages
// the API returns as a 400 body.
func ProcessValidationErrors(err error) map[string]string {
	out := map[string]string{}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		out["error"] = err.Error()
		return out
	}
	for _, fieldErr := range validationErrors {
		field := strings.ToLower(fieldErr.Field())
		switch fieldErr.Tag() {
		case "required":
			out[field] = field + " is required"
		case "oneof":
			out[field] = fmt.Sprintf("%s must be one of [%s]", field, fieldErr.Param())
		case "gte":
			out[field] = fmt.Sprintf("%s must be at least %s", field, fieldErr.Param())
		case "lte":
			out[field] = fmt.Sprintf("%s must be at most %s", field, fieldErr.Param())
		default:
			out[field] = fmt.Sprintf("%s failed on %s", field, fieldErr.Tag())
		}
	}
	return out
}
