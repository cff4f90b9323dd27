package employee

import (
	"github.com/go-playground/validator/v10"

	"github.com/tulamba/mafunzo/core"
)

var (
	statusTag  = "modulestatus"
	statusText = "invalid module status"
)

func init() {
	_ = core.Validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, statusTag, statusText)
}

// statusValidation checks that the value is one of the three module statuses.
func statusValidation(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	for _, s := range Statuses {
		if s == val {
			return true
		}
	}
	return false
}
