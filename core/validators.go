package core

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator
)

func init() {
	Validate = validator.New()
	enLoc := en.New()
	uni := ut.New(enLoc, enLoc)
	Translator, _ = uni.GetTranslator("en")
	InitValidators(Validate, Translator)
}

var (
	// custom validation tags & texts
	usnTag   = "usn"
	usnText  = "invalid university seat number"
	usnRegex = regexp.MustCompile(`^[0-9][A-Za-z]{2}[0-9]{2}[A-Za-z]{2}[0-9]{3}$`)

	sectionTag   = "section"
	sectionText  = "section must be a single letter A-D"
	sectionRegex = regexp.MustCompile(`^[A-D]$`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(usnTag, usnValidation)
	RegisterCustomTranslation(validate, translator, usnTag, usnText)

	_ = validate.RegisterValidation(sectionTag, sectionValidation)
	RegisterCustomTranslation(validate, translator, sectionTag, sectionText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Custom Global Validators

// usnValidation matches university seat numbers of the form 1DA21CS042.
func usnValidation(fl validator.FieldLevel) bool {
	return usnRegex.MatchString(fl.Field().String())
}

// sectionValidation only allows single uppercase section letters.
func sectionValidation(fl validator.FieldLevel) bool {
	return sectionRegex.MatchString(fl.Field().String())
}
