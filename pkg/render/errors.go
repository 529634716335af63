package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-tutordash/pkg/model"
)

// ErrorMapping splits a server validation payload into per-field messages
// and banner messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// FirstFieldErrors collapses Fields into the single-message-per-field shape
// the form engine stores.
func (m ErrorMapping) FirstFieldErrors() map[string]string {
	if len(m.Fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(m.Fields))
	for name, messages := range m.Fields {
		if len(messages) > 0 {
			out[name] = messages[0]
		}
	}
	return out
}

// Banner joins the form-level messages into one general error line.
func (m ErrorMapping) Banner() string {
	return strings.Join(m.Form, " ")
}

var formLevelKeys = map[string]struct{}{
	"":                 {},
	"non_field_errors": {},
	"__all__":          {},
	"detail":           {},
	"message":          {},
	"error":            {},
	"_form":            {},
}

var wrapperSegments = map[string]struct{}{
	"body":    {},
	"data":    {},
	"payload": {},
	"request": {},
	"errors":  {},
}

// MapErrorPayload assigns each payload key to a field of spec. Keys may be
// plain names ("email"), dotted or pointer paths ("/body/email",
// "data.roles[0]"). Unknown keys and the usual form-level keys
// (non_field_errors, detail, ...) become banner messages so nothing is lost.
func MapErrorPayload(spec model.FormSpec, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{}
	if len(payload) == 0 {
		return mapping
	}

	known := make(map[string]struct{}, len(spec.Fields))
	for _, field := range spec.Fields {
		known[field.Name] = struct{}{}
	}

	for key, messages := range payload {
		cleaned := normalizeMessages(messages)
		if len(cleaned) == 0 {
			continue
		}
		name, ok := resolveErrorKey(key, known)
		if !ok {
			mapping.Form = append(mapping.Form, cleaned...)
			continue
		}
		if mapping.Fields == nil {
			mapping.Fields = make(map[string][]string)
		}
		mapping.Fields[name] = append(mapping.Fields[name], cleaned...)
	}

	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

// MergeFormErrors appends extras to existing, trimming blanks and dropping
// duplicates while keeping first-seen order.
func MergeFormErrors(existing []string, extras ...string) []string {
	all := make([]string, 0, len(existing)+len(extras))
	all = append(all, existing...)
	all = append(all, extras...)
	return normalizeMessages(all)
}

func resolveErrorKey(key string, known map[string]struct{}) (string, bool) {
	trimmed := strings.TrimSpace(key)
	if _, formLevel := formLevelKeys[strings.ToLower(trimmed)]; formLevel {
		return "", false
	}
	if _, ok := known[trimmed]; ok {
		return trimmed, true
	}

	segments := splitErrorPath(trimmed)
	for len(segments) > 0 {
		if _, wrapper := wrapperSegments[strings.ToLower(segments[0])]; !wrapper {
			break
		}
		segments = segments[1:]
	}
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		if _, formLevel := formLevelKeys[strings.ToLower(segment)]; formLevel {
			return "", false
		}
		if _, ok := known[segment]; ok {
			return segment, true
		}
		// Only the first meaningful segment can name a top-level field.
		return "", false
	}
	return "", false
}

func splitErrorPath(path string) []string {
	path = strings.TrimLeft(path, "#$/.")
	path = strings.NewReplacer("[", ".", "]", "").Replace(path)
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '.' || r == '/' })
	out := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~"))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func normalizeMessages(messages []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
