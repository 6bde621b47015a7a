package util

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// funcs are the helpers available to instruction templates.
var funcs = template.FuncMap{
	"default": func(defaultVal any, val any) any {
		if val == nil || val == "" {
			return defaultVal
		}
		return val
	},
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
	"title": func(s string) string {
		if len(s) == 0 {
			return s
		}
		return strings.ToUpper(string(s[0])) + strings.ToLower(s[1:])
	},
	"join": func(sep string, items []any) string {
		strItems := make([]string, len(items))
		for i, item := range items {
			strItems[i] = fmt.Sprintf("%v", item)
		}
		return strings.Join(strItems, sep)
	},
}

// ParseTemplate parses text as an instruction template with the helper funcs.
func ParseTemplate(text string) (*template.Template, error) {
	return template.New("instructions").Funcs(funcs).Parse(text)
}

// ExecuteTemplate renders tmpl against state.
func ExecuteTemplate(tmpl *template.Template, state map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, state); err != nil {
		return "", err
	}

	return buf.String(), nil
}
