package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	currencyCode = regexp.MustCompile(`^[A-Za-z]{3}$`)
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		return currencyCode.MatchString(fl.Field().String())
	})
}

// Validate struct fields
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	var verrs validator.ValidationErrors
	if ok := asValidationErrors(err, &verrs); !ok {
		errors["_"] = err.Error()
		return errors
	}
	for _, err := range verrs {
		errors[err.Field()] = err.Tag()
	}
	return errors
}

func asValidationErrors(err error, out *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors)
	if ok {
		*out = verrs
	}
	return ok
}
