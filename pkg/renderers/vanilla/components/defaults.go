package components

import (
	"bytes"
	"html"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-tutordash/pkg/model"
)

const defaultTextareaRows = 4

// NewDefaultRegistry returns a registry covering every built-in field type.
func NewDefaultRegistry() *Registry {
	registry := New()

	for _, tag := range []model.FieldType{
		model.FieldTypeText,
		model.FieldTypeEmail,
		model.FieldTypePassword,
		model.FieldTypeURL,
		model.FieldTypeTel,
		model.FieldTypeNumber,
	} {
		registry.MustRegister(tag, inputRenderer)
	}
	registry.MustRegister(model.FieldTypeTextarea, textareaRenderer)
	registry.MustRegister(model.FieldTypeSelect, selectRenderer)
	registry.MustRegister(model.FieldTypeFile, fileRenderer)
	registry.MustRegister(model.FieldTypeCheckbox, checkboxRenderer)
	registry.MustRegister(model.FieldTypeCheckboxGroup, checkboxGroupRenderer)
	registry.MustRegister(model.FieldTypeRadio, radioRenderer)

	return registry
}

func inputRenderer(buf *bytes.Buffer, field model.Field, data FieldData) error {
	var b strings.Builder
	b.WriteString(`<div class="input-group">`)
	writeLabel(&b, field, true)
	b.WriteString(`<input`)
	writeAttr(&b, "type", string(field.Type))
	writeAttr(&b, "id", field.ControlID())
	writeAttr(&b, "name", field.Name)
	value := model.StringValue(data.Value)
	if field.Type == model.FieldTypePassword {
		// Passwords are never echoed back into markup.
		value = ""
	}
	writeAttr(&b, "value", value)
	writeOptionalAttr(&b, "placeholder", field.Placeholder)
	writeAttr(&b, "class", modifierClass("input", data.Error))
	if field.Type == model.FieldTypeNumber {
		writeOptionalAttr(&b, "min", field.Min)
		writeOptionalAttr(&b, "max", field.Max)
		writeOptionalAttr(&b, "step", field.Step)
	}
	writeValidationAttrs(&b, field)
	writeFlag(&b, "disabled", data.Disabled)
	b.WriteString(`>`)
	writeMessages(&b, data, "input-error")
	b.WriteString(`</div>`)
	buf.WriteString(b.String())
	return nil
}

func textareaRenderer(buf *bytes.Buffer, field model.Field, data FieldData) error {
	rows := field.Rows
	if rows <= 0 {
		rows = defaultTextareaRows
	}

	var b strings.Builder
	b.WriteString(`<div class="input-group">`)
	writeLabel(&b, field, true)
	b.WriteString(`<textarea`)
	writeAttr(&b, "id", field.ControlID())
	writeAttr(&b, "name", field.Name)
	writeOptionalAttr(&b, "placeholder", field.Placeholder)
	writeAttr(&b, "class", modifierClass("textarea", data.Error))
	writeAttr(&b, "rows", strconv.Itoa(rows))
	writeValidationAttrs(&b, field)
	writeFlag(&b, "disabled", data.Disabled)
	b.WriteString(`>`)
	b.WriteString(html.EscapeString(model.StringValue(data.Value)))
	b.WriteString(`</textarea>`)
	writeMessages(&b, data, "input-error")
	b.WriteString(`</div>`)
	buf.WriteString(b.String())
	return nil
}

func selectRenderer(buf *bytes.Buffer, field model.Field, data FieldData) error {
	current := model.StringValue(data.Value)

	var b strings.Builder
	b.WriteString(`<div class="input-group">`)
	writeLabel(&b, field, true)
	b.WriteString(`<select`)
	writeAttr(&b, "id", field.ControlID())
	writeAttr(&b, "name", field.Name)
	writeAttr(&b, "class", modifierClass("select", data.Error))
	writeFlag(&b, "required", field.IsRequired())
	writeFlag(&b, "disabled", data.Disabled)
	b.WriteString(`>`)
	if field.Placeholder != "" {
		b.WriteString(`<option value="">`)
		b.WriteString(html.EscapeString(field.Placeholder))
		b.WriteString(`</option>`)
	}
	for _, opt := range field.Options {
		b.WriteString(`<option`)
		writeAttr(&b, "value", opt.Value)
		writeFlag(&b, "selected", opt.Value == current)
		b.WriteString(`>`)
		b.WriteString(html.EscapeString(opt.Label))
		b.WriteString(`</option>`)
	}
	b.WriteString(`</select>`)
	writeMessages(&b, data, "input-error")
	b.WriteString(`</div>`)
	buf.WriteString(b.String())
	return nil
}

// fileRenderer never echoes a value; browsers refuse to prefill file inputs.
func fileRenderer(buf *bytes.Buffer, field model.Field, data FieldData) error {
	var b strings.Builder
	b.WriteString(`<div class="input-group">`)
	writeLabel(&b, field, true)
	b.WriteString(`<input`)
	writeAttr(&b, "type", "file")
	writeAttr(&b, "id", field.ControlID())
	writeAttr(&b, "name", field.Name)
	writeAttr(&b, "class", modifierClass("file-input", data.Error))
	writeOptionalAttr(&b, "accept", field.Accept)
	writeFlag(&b, "multiple", field.Multiple)
	writeFlag(&b, "disabled", data.Disabled)
	b.WriteString(`>`)
	if file, ok := data.Value.(*model.File); ok && file != nil {
		b.WriteString(`<div class="input-help file-input__current">`)
		b.WriteString(html.EscapeString(file.Name))
		b.WriteString(`</div>`)
	}
	writeMessages(&b, data, "input-error")
	b.WriteString(`</div>`)
	buf.WriteString(b.String())
	return nil
}

func checkboxRenderer(buf *bytes.Buffer, field model.Field, data FieldData) error {
	checked, _ := data.Value.(bool)

	var b strings.Builder
	b.WriteString(`<div class="input-group checkbox-single">`)
	b.WriteString(`<label class="checkbox-label">`)
	b.WriteString(`<input`)
	writeAttr(&b, "type", "checkbox")
	writeAttr(&b, "id", field.ControlID())
	writeAttr(&b, "name", field.Name)
	writeAttr(&b, "value", "true")
	writeFlag(&b, "checked", checked)
	writeFlag(&b, "disabled", data.Disabled)
	b.WriteString(`>`)
	b.WriteString(`<span class="checkbox-text">`)
	b.WriteString(html.EscapeString(labelText(field)))
	writeRequired(&b, field)
	b.WriteString(`</span></label>`)
	writeMessages(&b, data, "input-error")
	b.WriteString(`</div>`)
	buf.WriteString(b.String())
	return nil
}

func checkboxGroupRenderer(buf *bytes.Buffer, field model.Field, data FieldData) error {
	selected, _ := data.Value.([]string)

	var b strings.Builder
	b.WriteString(`<div class="form-group">`)
	writeLabel(&b, field, false)
	b.WriteString(`<div class="checkbox-group">`)
	for _, opt := range field.Options {
		b.WriteString(`<label class="checkbox-label">`)
		b.WriteString(`<input`)
		writeAttr(&b, "type", "checkbox")
		writeAttr(&b, "name", field.Name)
		writeAttr(&b, "value", opt.Value)
		writeFlag(&b, "checked", slices.Contains(selected, opt.Value))
		writeFlag(&b, "disabled", data.Disabled)
		b.WriteString(`>`)
		b.WriteString(`<span class="checkbox-text">`)
		b.WriteString(html.EscapeString(opt.Label))
		b.WriteString(`</span></label>`)
	}
	b.WriteString(`</div>`)
	writeMessages(&b, data, "field-error")
	b.WriteString(`</div>`)
	buf.WriteString(b.String())
	return nil
}

func radioRenderer(buf *bytes.Buffer, field model.Field, data FieldData) error {
	current := model.StringValue(data.Value)

	var b strings.Builder
	b.WriteString(`<div class="form-group">`)
	writeLabel(&b, field, false)
	b.WriteString(`<div class="radio-group">`)
	for _, opt := range field.Options {
		b.WriteString(`<label class="radio-label">`)
		b.WriteString(`<input`)
		writeAttr(&b, "type", "radio")
		writeAttr(&b, "name", field.Name)
		writeAttr(&b, "value", opt.Value)
		writeFlag(&b, "checked", opt.Value == current)
		writeFlag(&b, "disabled", data.Disabled)
		b.WriteString(`>`)
		b.WriteString(`<span class="radio-text">`)
		b.WriteString(html.EscapeString(opt.Label))
		b.WriteString(`</span></label>`)
	}
	b.WriteString(`</div>`)
	writeMessages(&b, data, "field-error")
	b.WriteString(`</div>`)
	buf.WriteString(b.String())
	return nil
}

func labelText(field model.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}

// writeLabel emits the field label. Group controls have no single target, so
// their label carries no for attribute.
func writeLabel(b *strings.Builder, field model.Field, withFor bool) {
	b.WriteString(`<label`)
	if withFor {
		writeAttr(b, "for", field.ControlID())
	}
	b.WriteString(` class="input-label">`)
	b.WriteString(html.EscapeString(labelText(field)))
	writeRequired(b, field)
	b.WriteString(`</label>`)
}

func writeRequired(b *strings.Builder, field model.Field) {
	if field.IsRequired() {
		b.WriteString(`<span class="required">*</span>`)
	}
}

// writeMessages emits the error (when present) followed by the help text.
// help is expected to be sanitized already.
func writeMessages(b *strings.Builder, data FieldData, errorClass string) {
	if data.Error != "" {
		b.WriteString(`<div class="`)
		b.WriteString(errorClass)
		b.WriteString(`" role="alert">`)
		b.WriteString(html.EscapeString(data.Error))
		b.WriteString(`</div>`)
	}
	if data.Help != "" {
		b.WriteString(`<div class="input-help">`)
		b.WriteString(data.Help)
		b.WriteString(`</div>`)
	}
}

// writeValidationAttrs mirrors length rules as native constraints so the
// browser can hint before a round trip. Patterns are left to the engine since
// HTML pattern syntax differs from RE2.
func writeValidationAttrs(b *strings.Builder, field model.Field) {
	writeFlag(b, "required", field.IsRequired())
	if field.Validation.MinLength > 0 {
		writeAttr(b, "minlength", strconv.Itoa(field.Validation.MinLength))
	}
	if field.Validation.MaxLength > 0 {
		writeAttr(b, "maxlength", strconv.Itoa(field.Validation.MaxLength))
	}
}

func modifierClass(base, errMessage string) string {
	if errMessage == "" {
		return base
	}
	return base + " " + base + "--error"
}

func writeAttr(b *strings.Builder, name, value string) {
	b.WriteString(" ")
	b.WriteString(name)
	b.WriteString(`="`)
	b.WriteString(html.EscapeString(value))
	b.WriteString(`"`)
}

func writeOptionalAttr(b *strings.Builder, name, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	writeAttr(b, name, value)
}

func writeFlag(b *strings.Builder, name string, on bool) {
	if !on {
		return
	}
	b.WriteString(" ")
	b.WriteString(name)
}
