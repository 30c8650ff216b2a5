package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator"
)

// StructValidator plugs go-playground/validator into fiber's binder, so
// c.Bind().Body validates `validate` tags after decoding.
type StructValidator struct {
	validate *validator.Validate
}

func New() *StructValidator {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	return &StructValidator{validate: v}
}

func (v *StructValidator) Validate(out any) error {
	return v.validate.Struct(out)
}

// Details flattens validation failures into field -> rule. It returns nil for
// errors that did not come from the validator.
func Details(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

func jsonFieldName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}
