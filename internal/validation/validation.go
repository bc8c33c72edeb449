// Package validation checks request DTOs before any store access and reduces
// failures to a single human-readable message.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
		_ = validate.RegisterValidation("isodate", isoDate)
	})
	return validate
}

// isoDate accepts a calendar date in YYYY-MM-DD form.
func isoDate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if len(value) != len("2006-01-02") {
		return false
	}
	_, err := time.Parse("2006-01-02", value)
	return err == nil
}

// Struct validates v and returns the first failure as a message, or "".
func Struct(v interface{}) string {
	err := instance().Struct(v)
	if err == nil {
		return ""
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return "invalid request body"
	}
	return message(fieldErrors[0])
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "invalid email"
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid id", field)
	case "isodate":
		return fmt.Sprintf("%s must be in YYYY-MM-DD format", field)
	case "oneof":
		options := strings.Fields(fe.Param())
		quoted := make([]string, len(options))
		for i, opt := range options {
			quoted[i] = "'" + opt + "'"
		}
		return fmt.Sprintf("%s must be %s", field, strings.Join(quoted, " or "))
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
