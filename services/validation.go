package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"juaconnect-server/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("service_category", func(fl validator.FieldLevel) bool {
		_, ok := models.ParseServiceCategory(fl.Field().String())
		return ok
	})
	return v
}

// validateStruct runs the struct's validate tags and converts the first
// failure into a *ValidationError.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	fe := fieldErrs[0]
	field := fieldName(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return &ValidationError{Field: field, Message: "is required"}
	case "service_category":
		return &ValidationError{Field: field, Message: fmt.Sprintf("unknown service category %q", fe.Value())}
	case "gte":
		return &ValidationError{Field: field, Message: "must be at least " + fe.Param()}
	case "lte":
		return &ValidationError{Field: field, Message: "must be at most " + fe.Param()}
	case "email":
		return &ValidationError{Field: field, Message: "must be a valid email address"}
	}
	return &ValidationError{Field: field, Message: "failed " + fe.Tag() + " validation"}
}

func validateRole(role models.Role) error {
	if !role.IsValid() {
		return &ValidationError{Field: "role", Message: fmt.Sprintf("unknown role %q", role)}
	}
	return nil
}

func validateAmount(field string, amount *float64) error {
	if amount != nil && *amount < 0 {
		return &ValidationError{Field: field, Message: "must be at least 0"}
	}
	return nil
}

// fieldName turns a namespace such as "ServiceRequestCreate.Client.Name"
// into "client_name".
func fieldName(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		parts[i] = toSnakeCase(p)
	}
	return strings.Join(parts, "_")
}

func toSnakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
