package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// NewValidator builds the validator used across services, reporting field
// names from json tags so validation errors match the payload keys the
// front-end forms display inline.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// fieldErrors converts validator failures into the per-field message map the
// registration and profile forms display. Messages stay in French, as the
// front-end shows them verbatim.
func fieldErrors(err error) map[string]string {
	fields := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["_"] = "requête invalide"
		return fields
	}
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = "champ obligatoire"
		case "email":
			fields[fe.Field()] = "adresse email invalide"
		case "min":
			fields[fe.Field()] = fmt.Sprintf("minimum %s caractères", fe.Param())
		case "max":
			fields[fe.Field()] = fmt.Sprintf("maximum %s", fe.Param())
		default:
			fields[fe.Field()] = "valeur invalide"
		}
	}
	return fields
}

// oneOf reports whether value belongs to the accepted enum labels. Struct
// tags cannot express these because the labels contain spaces.
func oneOf(value string, accepted []string) bool {
	for _, a := range accepted {
		if value == a {
			return true
		}
	}
	return false
}
