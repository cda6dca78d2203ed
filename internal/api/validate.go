package api

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/pbaille/unikit/internal/grading"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	notBlankTag = "notblank"
	gradeTag    = "grade"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	// empty passes so a grade can be cleared; pair with required where it cannot
	_ = validate.RegisterValidation(gradeTag, func(fl validator.FieldLevel) bool {
		g := fl.Field().String()
		return g == "" || grading.Known(g)
	})

	// a noop registration func is enough, the default translations are already in place
	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, gradeTag} {
		_ = validate.RegisterTranslation(tag, translator, registerFn, translateCustom)
	}
}

func translateCustom(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return "this field cannot be blank"
	case gradeTag:
		return "must be one of " + strings.Join(grading.Symbols, ", ")
	default:
		return ""
	}
}

func fieldErrors(verrs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Translate(translator)
	}
	return fields
}
