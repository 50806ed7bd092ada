package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/internship-portal/pkg/errors"
)

// New returns a validator reporting fields by their JSON names.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return lowerFirst(field.Name)
		}
		return name
	})
	return v
}

// Struct validates payload and converts failures into a validation error with
// one message per field.
func Struct(v *validator.Validate, payload interface{}) error {
	err := v.Struct(payload)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = Message(fe)
		}
	}
	return appErrors.Validation(firstMessage(fieldErrs), fields)
}

// Message renders one field failure for humans.
func Message(fe validator.FieldError) string {
	field := humanize(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "please enter a valid email address"
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("select at least %s %s", fe.Param(), field)
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s must be between 0 and 20", field)
	case "eqfield":
		return "passwords do not match"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return fmt.Sprintf("%s must be a date (YYYY-MM-DD)", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func firstMessage(errs validator.ValidationErrors) string {
	if len(errs) == 0 {
		return appErrors.ErrValidation.Message
	}
	return Message(errs[0])
}

// humanize turns levelId into "level" and startDate into "start date".
func humanize(name string) string {
	name = strings.TrimSuffix(name, "Id")
	name = strings.TrimSuffix(name, "Ids")
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
