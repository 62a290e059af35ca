// Package tmpl renders user-configured shell command templates.
package tmpl

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// shellQuote returns a shell-safe quoted string. It wraps the string in single
// quotes and closes, escapes and reopens the quote around each embedded single quote.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	escaped := strings.ReplaceAll(s, "'", `'\''`)
	return "'" + escaped + "'"
}

func stringOrDefault(def, s string) string {
	if s != "" {
		return s
	}
	return def
}

var funcs = template.FuncMap{
	"shq":     shellQuote,
	"join":    strings.Join,
	"default": stringOrDefault,
}

// Parse checks that tmpl is a valid template without executing it.
func Parse(tmpl string) error {
	_, err := template.New("").Funcs(funcs).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}
	return nil
}

// Render executes a Go template string with the given data.
// Returns an error if the template is invalid or references undefined keys.
//
// Available template functions:
//   - shq: Shell-quote a string for safe use in shell commands
//   - join: Join string slice with separator (e.g., join .Args " ")
//   - default: Fall back to a value when the piped string is empty
//     (e.g., {{ .Date | default "someday" }})
func Render(tmpl string, data any) (string, error) {
	t, err := template.New("").Funcs(funcs).Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
