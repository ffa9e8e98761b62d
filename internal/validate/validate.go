// internal/validate/validate.go
//
// Payload validation for JSON request bodies.
//
// Context
// -------
// Handlers decode into request structs tagged with `validate:"…"` and call
// Struct.  Failures come back as *apperr.ValidationError keyed by the JSON
// field name, so clients see `{"fields":{"domain":"…"}}` rather than Go
// struct names.
//
// Notes
// -----
// • One package-level validator; it caches struct metadata internally.
// • Custom rule `jsonobject` accepts raw JSON whose top level is an object.
package validate

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yanizio/sitedesk/internal/apperr"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	_ = val.RegisterValidation("jsonobject", func(fl validator.FieldLevel) bool {
		raw, ok := fl.Field().Interface().(json.RawMessage)
		if !ok {
			return false
		}
		return IsJSONObject(raw)
	})
	return val
}

// Struct validates s and translates failures into a ValidationError.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &apperr.ValidationError{
		Message: "invalid input",
		Fields:  make(map[string]string, len(verrs)),
	}
	for _, fe := range verrs {
		out.Fields[fe.Field()] = message(fe)
	}
	return out
}

// IsJSONObject reports whether raw is a syntactically valid JSON object.
func IsJSONObject(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	var m map[string]any
	return json.Unmarshal(trimmed, &m) == nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "fqdn", "hostname", "hostname_rfc1123":
		return "must be a valid domain name"
	case "jsonobject":
		return "must be a JSON object"
	default:
		return "failed " + fe.Tag() + " check"
	}
}
