package binder

import (
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// abspathValidator ensures the value is an absolute filesystem path or the
// empty string. The reason the empty string is allowed is that this validator
// can be used on optional fields. However, this is only useful in that case,
// so if you're using this validator but want the value to be required, add a
// `required` to the validate tag so that the empty string is disallowed.
func abspathValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return filepath.IsAbs(value)
}
