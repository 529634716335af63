package model

import (
	"io"
	"slices"
)

// FieldType identifies the control a field renders as.
type FieldType string

const (
	FieldTypeText          FieldType = "text"
	FieldTypeEmail         FieldType = "email"
	FieldTypePassword      FieldType = "password"
	FieldTypeURL           FieldType = "url"
	FieldTypeTel           FieldType = "tel"
	FieldTypeNumber        FieldType = "number"
	FieldTypeTextarea      FieldType = "textarea"
	FieldTypeSelect        FieldType = "select"
	FieldTypeFile          FieldType = "file"
	FieldTypeCheckbox      FieldType = "checkbox"
	FieldTypeCheckboxGroup FieldType = "checkbox-group"
	FieldTypeRadio         FieldType = "radio"
)

// KnownFieldTypes lists every type tag the built-in renderers understand.
var KnownFieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeEmail,
	FieldTypePassword,
	FieldTypeURL,
	FieldTypeTel,
	FieldTypeNumber,
	FieldTypeTextarea,
	FieldTypeSelect,
	FieldTypeFile,
	FieldTypeCheckbox,
	FieldTypeCheckboxGroup,
	FieldTypeRadio,
}

// Known reports whether the type tag is one of KnownFieldTypes. Unknown tags
// are legal in descriptors; they simply render nothing.
func (t FieldType) Known() bool {
	return slices.Contains(KnownFieldTypes, t)
}

// NeedsOptions reports whether descriptors of this type must carry options.
func (t FieldType) NeedsOptions() bool {
	switch t {
	case FieldTypeSelect, FieldTypeCheckboxGroup, FieldTypeRadio:
		return true
	default:
		return false
	}
}

// Multiline reports whether Enter inserts a newline instead of submitting.
func (t FieldType) Multiline() bool {
	return t == FieldTypeTextarea
}

// Option is a single choice for select, radio and checkbox-group fields.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// CustomValidator receives the current field value and the whole draft and
// returns an error message, or "" when the value is acceptable.
type CustomValidator func(value any, draft Values) string

// Validation groups the client-side rules evaluated for a field. Rules run in
// a fixed order: required, minLength, maxLength, pattern, custom.
type Validation struct {
	Required         bool            `json:"required,omitempty" yaml:"required,omitempty"`
	RequiredMessage  string          `json:"requiredMessage,omitempty" yaml:"requiredMessage,omitempty"`
	MinLength        int             `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MinLengthMessage string          `json:"minLengthMessage,omitempty" yaml:"minLengthMessage,omitempty"`
	MaxLength        int             `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	MaxLengthMessage string          `json:"maxLengthMessage,omitempty" yaml:"maxLengthMessage,omitempty"`
	Pattern          string          `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	PatternMessage   string          `json:"patternMessage,omitempty" yaml:"patternMessage,omitempty"`
	CustomName       string          `json:"custom,omitempty" yaml:"custom,omitempty"`
	Custom           CustomValidator `json:"-" yaml:"-"`
}

// Field describes one form control.
type Field struct {
	Name        string     `json:"name" yaml:"name"`
	Label       string     `json:"label" yaml:"label"`
	Type        FieldType  `json:"type" yaml:"type"`
	Required    bool       `json:"required,omitempty" yaml:"required,omitempty"`
	Options     []Option   `json:"options,omitempty" yaml:"options,omitempty"`
	Validation  Validation `json:"validation,omitempty" yaml:"validation,omitempty"`
	Default     any        `json:"default,omitempty" yaml:"default,omitempty"`
	Placeholder string     `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Help        string     `json:"help,omitempty" yaml:"help,omitempty"`
	Disabled    bool       `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Rows        int        `json:"rows,omitempty" yaml:"rows,omitempty"`
	Min         string     `json:"min,omitempty" yaml:"min,omitempty"`
	Max         string     `json:"max,omitempty" yaml:"max,omitempty"`
	Step        string     `json:"step,omitempty" yaml:"step,omitempty"`
	Accept      string     `json:"accept,omitempty" yaml:"accept,omitempty"`
	Multiple    bool       `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	VisibleWhen string     `json:"visibleWhen,omitempty" yaml:"visibleWhen,omitempty"`
}

// IsRequired reports whether either the descriptor or its rules mark the
// field as required.
func (f Field) IsRequired() bool {
	return f.Required || f.Validation.Required
}

// ControlID is the DOM id used for the field's control.
func (f Field) ControlID() string {
	return f.Name + "-" + string(f.Type)
}

// HasOption reports whether value is one of the field's option values.
func (f Field) HasOption(value string) bool {
	for _, opt := range f.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// ActionVariant selects the button style of an action.
type ActionVariant string

const (
	ActionPrimary   ActionVariant = "primary"
	ActionSecondary ActionVariant = "secondary"
	ActionLink      ActionVariant = "link"
)

// ActionType mirrors the HTML button type.
type ActionType string

const (
	ActionTypeSubmit ActionType = "submit"
	ActionTypeButton ActionType = "button"
)

// Action is a button in the modal footer.
type Action struct {
	Label        string        `json:"label" yaml:"label"`
	LoadingLabel string        `json:"loadingLabel,omitempty" yaml:"loadingLabel,omitempty"`
	Variant      ActionVariant `json:"variant,omitempty" yaml:"variant,omitempty"`
	Type         ActionType    `json:"type,omitempty" yaml:"type,omitempty"`
	FullWidth    bool          `json:"fullWidth,omitempty" yaml:"fullWidth,omitempty"`
	Disabled     bool          `json:"disabled,omitempty" yaml:"disabled,omitempty"`
	Href         string        `json:"href,omitempty" yaml:"href,omitempty"`
	Name         string        `json:"name,omitempty" yaml:"name,omitempty"`
}

// IsSubmit reports whether the action submits the form.
func (a Action) IsSubmit() bool {
	return a.Type == ActionTypeSubmit
}

// Tab is a modal header tab, used by the auth page to switch forms.
type Tab struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
	Href  string `json:"href,omitempty" yaml:"href,omitempty"`
}

// FormSpec describes a complete modal form.
type FormSpec struct {
	ID        string   `json:"id" yaml:"id"`
	Title     string   `json:"title,omitempty" yaml:"title,omitempty"`
	Subtitle  string   `json:"subtitle,omitempty" yaml:"subtitle,omitempty"`
	Method    string   `json:"method,omitempty" yaml:"method,omitempty"`
	Action    string   `json:"action,omitempty" yaml:"action,omitempty"`
	Class     string   `json:"class,omitempty" yaml:"class,omitempty"`
	ShowClose bool     `json:"showClose,omitempty" yaml:"showClose,omitempty"`
	CloseHref string   `json:"closeHref,omitempty" yaml:"closeHref,omitempty"`
	Tabs      []Tab    `json:"tabs,omitempty" yaml:"tabs,omitempty"`
	ActiveTab string   `json:"activeTab,omitempty" yaml:"activeTab,omitempty"`
	Fields    []Field  `json:"fields" yaml:"fields"`
	Actions   []Action `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// Field returns the descriptor with the given name.
func (s FormSpec) Field(name string) (Field, bool) {
	for _, field := range s.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return Field{}, false
}

// Clone returns a copy whose slices can be mutated independently.
func (s FormSpec) Clone() FormSpec {
	out := s
	out.Tabs = slices.Clone(s.Tabs)
	out.Actions = slices.Clone(s.Actions)
	out.Fields = make([]Field, len(s.Fields))
	for i, field := range s.Fields {
		field.Options = slices.Clone(field.Options)
		out.Fields[i] = field
	}
	return out
}

// File is a selected file handle. Open is optional; callers that only need
// metadata (rendering, validation) never call it.
type File struct {
	Name        string                        `json:"name"`
	ContentType string                        `json:"contentType,omitempty"`
	Size        int64                         `json:"size"`
	Open        func() (io.ReadCloser, error) `json:"-"`
}
