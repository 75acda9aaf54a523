package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	htmpl "html/template"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// Template names
const (
	Welcome        = "welcome"
	AccountCreated = "account_created"
)

var ErrUnknownTemplate = errors.New("unknown email template")

// EmailData defines standard fields for email templates.
type EmailData struct {
	Username    string `json:"Username"`
	Email       string `json:"Email"`
	Role        string `json:"Role"`
	CompanyName string `json:"CompanyName"`
	AppName     string `json:"AppName"`
	LoginURL    string `json:"LoginURL"`
	Time        string `json:"Time"`
}

// ToMap flattens EmailData into the map carried by EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() || rv.IsZero() {
			return fallback
		}
		return value
	}
}

func funcs() map[string]any {
	return map[string]any{
		"now":     func() time.Time { return time.Now().UTC() },
		"upper":   strings.ToUpper,
		"default": defaultFn,
	}
}

// Both sets are parsed from the embedded files once; a broken template fails at startup.
var (
	textSet = texttpl.Must(texttpl.New("").Funcs(funcs()).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl"))
	htmlSet = htmpl.Must(htmpl.New("").Funcs(funcs()).ParseFS(FS, "*.html.tmpl"))
)

// Known reports whether name has all three parts
func Known(name string) bool {
	return textSet.Lookup(name+".subject.tmpl") != nil &&
		textSet.Lookup(name+".text.tmpl") != nil &&
		htmlSet.Lookup(name+".html.tmpl") != nil
}

func exec(run func(*bytes.Buffer) error, file string) (string, error) {
	var buf bytes.Buffer
	if err := run(&buf); err != nil {
		return "", fmt.Errorf("exec %q: %w", file, err)
	}
	return buf.String(), nil
}

// Render produces the subject, text and html bodies of <name>
func Render(name string, data any) (subject, text, html string, err error) {
	if !Known(name) {
		return "", "", "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	subject, err = exec(func(b *bytes.Buffer) error { return textSet.ExecuteTemplate(b, name+".subject.tmpl", data) }, name+".subject.tmpl")
	if err != nil {
		return "", "", "", err
	}
	text, err = exec(func(b *bytes.Buffer) error { return textSet.ExecuteTemplate(b, name+".text.tmpl", data) }, name+".text.tmpl")
	if err != nil {
		return "", "", "", err
	}
	html, err = exec(func(b *bytes.Buffer) error { return htmlSet.ExecuteTemplate(b, name+".html.tmpl", data) }, name+".html.tmpl")
	if err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
