package api

import (
	stderrors "errors"
	"reflect"

	"github.com/go-playground/validator/v10"

	"userhub/pkg/errors"
)

// CustomValidator adapts go-playground/validator to echo and reports the
// first failing field as a validation error. Fields are named by their
// `label` tag in messages.
type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return fld.Name
	})
	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.validator.Struct(i)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if stderrors.As(err, &validationErrs) && len(validationErrs) > 0 {
		return errors.Validation(messageFor(validationErrs[0]))
	}
	return errors.Internal(err)
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " cannot be left empty."
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters."
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters."
	default:
		return fe.Field() + " is invalid."
	}
}
