package core

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// ValidateTask checks presence of title, description, start_time and end_time, and that end_time
// is not before start_time. Every failing field is reported, not only the first.
func ValidateTask(task Task) error {
	task.Title = strings.TrimSpace(task.Title)
	task.Description = strings.TrimSpace(task.Description)

	err := validate.Struct(task)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{Field: fe.Field(), Code: codeFor(fe.Tag())})
	}

	return NewValidationError(fields...)
}

func codeFor(tag string) string {
	switch tag {
	case "gtefield":
		return CodeBeforeStartTime
	default:
		return CodeBlank
	}
}
