package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"recipebook/common"
	"recipebook/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so messages read like the request.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// bcrypt only looks at the first 72 bytes, so passwords are bounded in
	// bytes rather than characters.
	v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		return err == nil && len(fl.Field().String()) <= n
	})
	v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return models.ValidUsername(fl.Field().String())
	})
	return v
}

// Validate checks the validate tags on v and turns the first failure into a
// common.Validation error with a client-facing message.
func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return common.Validation(validationMessage(verrs[0]))
	}
	return fmt.Errorf("validate: %w", err)
}

func validationMessage(fe validator.FieldError) string {
	name := strings.ReplaceAll(fe.Field(), "_", " ")
	label := strings.ToUpper(name[:1]) + name[1:]

	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		switch {
		case fe.Kind() == reflect.String && fe.Param() == "1":
			return label + " is required"
		case fe.Param() == "0":
			return label + " must be a non-negative integer"
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
	case "maxbytes":
		return fmt.Sprintf("%s must be at most %s bytes", label, fe.Param())
	case "email":
		return "Invalid email address"
	case "username":
		return label + " may only contain letters, digits, '.' and '-'"
	default:
		return "Invalid " + name
	}
}
