package course

import (
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/tulamba/mafunzo/core"
)

var (
	levelTag  = "courselevel"
	levelText = "invalid course level"

	resourceTypeTag  = "resourcetype"
	resourceTypeText = "invalid resource type"

	contentTypeTag  = "contenttype"
	contentTypeText = "invalid content type"
)

func init() {
	_ = core.Validate.RegisterValidation(levelTag, oneOfValidation(Levels))
	core.RegisterCustomTranslation(core.Validate, core.Translator, levelTag, levelText)

	_ = core.Validate.RegisterValidation(resourceTypeTag, oneOfValidation(ResourceTypes))
	core.RegisterCustomTranslation(core.Validate, core.Translator, resourceTypeTag, resourceTypeText)

	_ = core.Validate.RegisterValidation(contentTypeTag, oneOfValidation(ContentTypes))
	core.RegisterCustomTranslation(core.Validate, core.Translator, contentTypeTag, contentTypeText)
}

// oneOfValidation checks that the field value is one of the allowed choices.
func oneOfValidation(choices []string) validator.Func {
	sorted := append([]string(nil), choices...)
	sort.Strings(sorted)
	return func(fl validator.FieldLevel) bool {
		val, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		if idx := sort.SearchStrings(sorted, val); idx < len(sorted) {
			return sorted[idx] == val
		}
		return false
	}
}
