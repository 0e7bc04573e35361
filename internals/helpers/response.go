package helper

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"arcevents_backend/internals/helpers/apperror"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(jsonFieldName)
	})
	return validate
}

// ValidateStruct runs validator tags and reports field errors keyed by json name.
func ValidateStruct(v any) error {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return apperror.Validation("invalid input", nil)
	}

	fields := make(map[string][]string, len(ve))
	for _, fe := range ve {
		name := fe.Field()
		fields[name] = append(fields[name], validationMessage(fe))
	}
	return apperror.Validation("validation failed", fields)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "uuid", "uuid4":
		return "must be a valid uuid"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
	}
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}
