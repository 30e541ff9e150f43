package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error rejects operator input before any network call.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Fail builds an Error for rules that tags cannot express.
func Fail(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsError reports whether err is (or wraps) a validation Error.
func IsError(err error) bool {
	var v *Error
	return errors.As(err, &v)
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

// Struct runs tag validation on v and returns the first failure as *Error.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("validate: %w", err)
	}
	return fromField(fieldErrs[0])
}

func fromField(fe validator.FieldError) *Error {
	field := fe.Field()
	switch fe.Tag() {
	case "required", "notblank":
		return &Error{Field: field, Message: "is required"}
	case "min":
		if fe.Kind() == reflect.Slice {
			return &Error{Field: field, Message: fmt.Sprintf("needs at least %s entries", fe.Param())}
		}
		return &Error{Field: field, Message: fmt.Sprintf("must be at least %s", fe.Param())}
	case "max":
		if fe.Kind() == reflect.Slice {
			return &Error{Field: field, Message: fmt.Sprintf("allows at most %s entries", fe.Param())}
		}
		return &Error{Field: field, Message: fmt.Sprintf("must be at most %s", fe.Param())}
	case "oneof":
		return &Error{Field: field, Message: fmt.Sprintf("must be one of %s", fe.Param())}
	default:
		return &Error{Field: field, Message: fmt.Sprintf("failed %s", fe.Tag())}
	}
}
