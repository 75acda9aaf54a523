package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Errors maps a request field to the first message recorded for it
type Errors map[string]string

// Add records msg for field unless the field already failed
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Init configures the global validator used by Gin's binding.
// - Uses JSON tag names in errors.
// - Registers alias tags for common validations.
func Init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterAlias("pwd", "min=6")        // password minimum length
		v.RegisterAlias("nonzero", "required") // convenience
	}
}

// ToDetails converts validation/binding errors into field messages.
// overrides are keyed by "field.tag" (or "field" for any tag) and win over the generic text.
func ToDetails(err error, overrides ...map[string]string) Errors {
	if err == nil {
		return nil
	}
	out := Errors{}

	if errors.Is(err, io.EOF) {
		out.Add("payload", "request body is required")
		return out
	}

	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		field := rootField(ute.Field)
		if field == "" {
			out.Add("payload", "invalid json")
			return out
		}
		out.Add(field, lookup(overrides, field, "type", Label(field)+" must be "+typeName(ute.Type)))
		return out
	}

	var se *json.SyntaxError
	if errors.As(err, &se) || errors.Is(err, io.ErrUnexpectedEOF) {
		out.Add("payload", "invalid json")
		return out
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			field := rootField(fe.Field())
			out.Add(field, lookup(overrides, field, fe.Tag(), formatFieldError(field, fe)))
		}
		return out
	}

	out.Add("payload", "invalid payload")
	return out
}

func lookup(overrides []map[string]string, field, tag, def string) string {
	for _, o := range overrides {
		if m, ok := o[field+"."+tag]; ok {
			return m
		}
		if m, ok := o[field]; ok {
			return m
		}
	}
	return def
}

// rootField strips index and nested suffixes: "tags[1]" and "tags.1" become "tags"
func rootField(f string) string {
	if i := strings.IndexAny(f, "[."); i >= 0 {
		return f[:i]
	}
	return f
}

// Label turns a json field name into a human label ("author_id" -> "Author ID")
func Label(field string) string {
	words := strings.Split(field, "_")
	for i, w := range words {
		switch {
		case w == "id":
			words[i] = "ID"
		case i == 0 && w != "":
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "valid"
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch {
	case t.Kind() == reflect.String:
		return "a string"
	case t.Kind() == reflect.Bool:
		return "a boolean"
	case isNumberKind(t.Kind()):
		return "a number"
	case t.Kind() == reflect.Slice || t.Kind() == reflect.Array:
		return "an array"
	default:
		return "an object"
	}
}

func formatFieldError(field string, fe validator.FieldError) string {
	label := Label(field)
	tag := fe.Tag()
	param := fe.Param()
	kind := fe.Kind()

	switch tag {
	case "required", "nonzero":
		return label + " is required"
	case "required_with":
		return label + " is required when " + param + " is present"
	case "email":
		return "Invalid email address"
	case "oneof":
		return label + " must be one of: " + strings.Join(strings.Fields(param), ", ")
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters long", label, param)
	case "min", "pwd":
		if param == "" {
			param = "6"
		}
		switch {
		case isNumberKind(kind):
			return label + " must be at least " + param
		case kind == reflect.Slice || kind == reflect.Array:
			return label + " must contain at least " + param + " item(s)"
		}
		return label + " must be at least " + param + " characters long"
	case "max":
		switch {
		case isNumberKind(kind):
			return label + " must be at most " + param
		case kind == reflect.Slice || kind == reflect.Array:
			return label + " must contain at most " + param + " item(s)"
		}
		return label + " must be at most " + param + " characters long"
	case "gt":
		return label + " must be greater than " + param
	case "gte":
		return label + " must be greater than or equal to " + param
	case "numeric", "number":
		return label + " must be numeric"
	case "boolean":
		return label + " must be a boolean value"
	case "unique":
		return label + " must contain unique items"
	case "datetime":
		return label + " must match datetime format: " + param
	default:
		if param != "" {
			return fmt.Sprintf("%s failed '%s' with parameter '%s'", label, tag, param)
		}
		return fmt.Sprintf("%s failed '%s'", label, tag)
	}
}

func isNumberKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
