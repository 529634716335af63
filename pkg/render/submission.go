package render

import (
	"fmt"
	"sort"
	"strings"
)

// HiddenField is an <input type="hidden"> emitted before the visible fields.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden builds a HiddenField, stringifying value.
func Hidden(name string, value any) HiddenField {
	return HiddenField{Name: strings.TrimSpace(name), Value: fmt.Sprint(value)}
}

// CSRFToken is the hidden field the dashboard server checks on POST.
func CSRFToken(token string) HiddenField {
	return Hidden("_csrf", token)
}

// HiddenFields normalizes fields: blank names are dropped, later entries win
// and the result is sorted by name for deterministic output.
func HiddenFields(fields ...HiddenField) []HiddenField {
	byName := make(map[string]string, len(fields))
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		byName[name] = field.Value
	}
	if len(byName) == 0 {
		return nil
	}
	out := make([]HiddenField, 0, len(byName))
	for name, value := range byName {
		out = append(out, HiddenField{Name: name, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
