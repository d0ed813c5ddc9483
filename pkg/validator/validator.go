package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator implements echo.Validator using go-playground/validator
type CustomValidator struct {
	v *validator.Validate
}

// New creates a new CustomValidator instance
func New() *CustomValidator {
	v := validator.New()
	return &CustomValidator{v: v}
}

// Validate performs struct validation. Field errors are flattened into a
// single readable message; the desktop shell shows it verbatim.
func (cv *CustomValidator) Validate(i interface{}) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(messages, "; "))
}
