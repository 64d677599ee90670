package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func validationMessage(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		parts := make([]string, 0, len(ve))
		for _, fe := range ve {
			switch fe.Tag() {
			case "required":
				parts = append(parts, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
			case "oneof":
				parts = append(parts, fmt.Sprintf("%s must be one of %s", strings.ToLower(fe.Field()), fe.Param()))
			default:
				parts = append(parts, fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field())))
			}
		}
		return strings.Join(parts, "; ")
	}
	return "invalid request body"
}
