package app

import (
	"errors"
	"reflect"
	"strings"

	"eduquiz-service/internal/domain"
	"github.com/go-playground/validator/v10"
)

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError converts validator output into a domain.ValidationError.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		reason := "failed " + fe.Tag()
		switch fe.Tag() {
		case "required":
			reason = "is required"
		case "email":
			reason = "must be a valid email"
		case "oneof":
			reason = "must be one of: " + fe.Param()
		}
		return domain.NewValidationError(fieldPath(fe.Namespace()), reason)
	}
	return domain.NewValidationError("", err.Error())
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
