package render

import (
	"slices"

	"github.com/goliatone/go-tutordash/pkg/model"
)

// RenderOptions is the per-render state handed to renderers. The form engine
// produces it from a snapshot; callers may also build it by hand for static
// previews.
type RenderOptions struct {
	// Values holds the draft values keyed by field name.
	Values model.Values
	// Errors holds at most one message per field name.
	Errors map[string]string
	// GeneralError is shown in the modal banner independent of field errors.
	GeneralError string
	// Submitting disables the actions and swaps submit labels for their
	// loading variant.
	Submitting bool
	// Hidden lists fields whose visibility rule evaluated false.
	Hidden []string
	// Method overrides the form's HTTP method.
	Method string
	// HiddenInputs are emitted as <input type="hidden"> (CSRF tokens, ids).
	HiddenInputs []HiddenField
	// ActiveTab overrides the form's active tab key.
	ActiveTab string
}

// IsHidden reports whether the named field must be skipped.
func (o RenderOptions) IsHidden(name string) bool {
	return slices.Contains(o.Hidden, name)
}

// VisibleFields filters spec fields through Hidden, preserving order.
func (o RenderOptions) VisibleFields(spec model.FormSpec) []model.Field {
	if len(o.Hidden) == 0 {
		return spec.Fields
	}
	out := make([]model.Field, 0, len(spec.Fields))
	for _, field := range spec.Fields {
		if o.IsHidden(field.Name) {
			continue
		}
		out = append(out, field)
	}
	return out
}

// FieldError returns the error message for a field, or "".
func (o RenderOptions) FieldError(name string) string {
	if o.Errors == nil {
		return ""
	}
	return o.Errors[name]
}

// Value returns the draft value for a field, falling back to the field's
// default when the options carry no value for it.
func (o RenderOptions) Value(field model.Field) any {
	if o.Values != nil {
		if value, ok := o.Values[field.Name]; ok {
			return value
		}
	}
	return model.DefaultValue(field)
}

// ResolveMethod returns the override method, the form method, or POST.
func (o RenderOptions) ResolveMethod(spec model.FormSpec) string {
	switch {
	case o.Method != "":
		return o.Method
	case spec.Method != "":
		return spec.Method
	default:
		return "POST"
	}
}

// ResolveActiveTab returns the override tab, the form tab, or the first tab.
func (o RenderOptions) ResolveActiveTab(spec model.FormSpec) string {
	switch {
	case o.ActiveTab != "":
		return o.ActiveTab
	case spec.ActiveTab != "":
		return spec.ActiveTab
	case len(spec.Tabs) > 0:
		return spec.Tabs[0].Key
	default:
		return ""
	}
}
