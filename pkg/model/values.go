package model

import (
	"fmt"
	"slices"
	"strings"
)

// Values maps field names to their current value. Value kinds are string,
// bool, []string (checkbox-group, insertion ordered) and *File.
type Values map[string]any

// Clone copies the map and any string-set values so the copy can be handed to
// submit handlers without aliasing engine state.
func (v Values) Clone() Values {
	if v == nil {
		return Values{}
	}
	out := make(Values, len(v))
	for key, value := range v {
		if set, ok := value.([]string); ok {
			out[key] = slices.Clone(set)
			continue
		}
		out[key] = value
	}
	return out
}

// String returns the string form of a value. Booleans render as "true" or
// "false", sets are comma joined and files report their name.
func (v Values) String(name string) string {
	return StringValue(v[name])
}

// Bool returns the boolean value of a checkbox field.
func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

// Set returns the string-set value of a checkbox-group field.
func (v Values) Set(name string) []string {
	set, _ := v[name].([]string)
	return set
}

// File returns the file handle stored for a file field.
func (v Values) File(name string) *File {
	file, _ := v[name].(*File)
	return file
}

// StringValue converts any supported value kind into a string.
func StringValue(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		if typed {
			return "true"
		}
		return "false"
	case []string:
		return strings.Join(typed, ",")
	case *File:
		if typed == nil {
			return ""
		}
		return typed.Name
	default:
		return fmt.Sprint(typed)
	}
}

// IsEmpty applies the "empty" definition used by required checks: nil, an
// empty string, a zero-length set, an unchecked checkbox or a missing file.
func IsEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return typed == ""
	case bool:
		return !typed
	case []string:
		return len(typed) == 0
	case []any:
		return len(typed) == 0
	case *File:
		return typed == nil
	default:
		return false
	}
}

// ZeroValue is the initial value for a field without a default.
func ZeroValue(field Field) any {
	switch field.Type {
	case FieldTypeCheckboxGroup:
		return []string{}
	case FieldTypeCheckbox:
		return false
	case FieldTypeFile:
		return (*File)(nil)
	default:
		return ""
	}
}

// DefaultValue returns the field's declared default coerced to the value kind
// its type expects, or ZeroValue when no default is declared.
func DefaultValue(field Field) any {
	if field.Default == nil {
		return ZeroValue(field)
	}
	switch field.Type {
	case FieldTypeCheckboxGroup:
		switch typed := field.Default.(type) {
		case []string:
			return slices.Clone(typed)
		case []any:
			out := make([]string, 0, len(typed))
			for _, item := range typed {
				out = append(out, StringValue(item))
			}
			return out
		case string:
			if typed == "" {
				return []string{}
			}
			return []string{typed}
		default:
			return []string{}
		}
	case FieldTypeCheckbox:
		switch typed := field.Default.(type) {
		case bool:
			return typed
		case string:
			return typed == "true" || typed == "on" || typed == "1"
		default:
			return false
		}
	case FieldTypeFile:
		if file, ok := field.Default.(*File); ok {
			return file
		}
		return (*File)(nil)
	default:
		return StringValue(field.Default)
	}
}
