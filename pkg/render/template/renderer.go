package template

import (
	"io"
)

// FilterFunc transforms a template value. param is nil when the filter is
// used without an argument.
type FilterFunc func(input any, param any) (any, error)

// TemplateRenderer renders named templates or inline template strings.
// Output is returned and, when writers are given, also copied to each.
type TemplateRenderer interface {
	RenderTemplate(name string, data map[string]any, out ...io.Writer) (string, error)
	RenderString(content string, data map[string]any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn FilterFunc) error
	GlobalContext(data map[string]any) error
}
