package codegen

import (
	"bytes"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/serenize/snaker"
)

// funcMap returns the functions available to every output kind template.
func funcMap() template.FuncMap {
	return template.FuncMap{
		"str":     quoteString,
		"default": defaultString,
		"snake":   snaker.CamelToSnake,
		"lower":   strings.ToLower,
		"upper":   strings.ToUpper,
		"indent":  indent,
	}
}

// quoteString renders s as a double quoted string literal valid in both
// JavaScript and TypeScript.
func quoteString(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func defaultString(def, s string) string {
	if s == "" {
		return def
	}
	return s
}

func indent(n int, s string) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}
