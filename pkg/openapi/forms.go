package openapi

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-tutordash/pkg/model"
)

// orderExtension lets a property declare its position in the form.
const orderExtension = "x-order"

// FormFromOperation parses raw and maps the request body of operationID onto
// a form. Properties appear in x-order order, then by name. Read-only
// properties and nested objects are skipped.
func FormFromOperation(ctx context.Context, raw []byte, operationID string) (model.FormSpec, error) {
	spec, err := Parse(ctx, raw)
	if err != nil {
		return model.FormSpec{}, err
	}
	op, ok := Operations(spec)[operationID]
	if !ok {
		return model.FormSpec{}, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}
	return FormFromSchema(op)
}

// FormsFromDocument maps every operation of raw that has an object request
// body, sorted by operation id. Operations without one are skipped.
func FormsFromDocument(ctx context.Context, raw []byte) ([]model.FormSpec, error) {
	spec, err := Parse(ctx, raw)
	if err != nil {
		return nil, err
	}
	ops := Operations(spec)
	ids := make([]string, 0, len(ops))
	for id := range ops {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	forms := make([]model.FormSpec, 0, len(ids))
	for _, id := range ids {
		form, err := FormFromSchema(ops[id])
		if errors.Is(err, ErrNoRequestBody) {
			continue
		}
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
	return forms, nil
}

// FormFromSchema maps an already parsed operation.
func FormFromSchema(op Operation) (model.FormSpec, error) {
	body, _ := requestSchema(op.Operation)
	if body == nil || (schemaType(body) != "" && schemaType(body) != openapi3.TypeObject) || len(body.Properties) == 0 {
		return model.FormSpec{}, fmt.Errorf("%w: %q", ErrNoRequestBody, op.ID)
	}

	form := model.FormSpec{
		ID:       op.ID,
		Title:    op.Operation.Summary,
		Subtitle: op.Operation.Description,
		Method:   strings.ToLower(methodOrPost(op.Method)),
		Action:   op.Path,
		Actions: []model.Action{{
			Label:        "Submit",
			LoadingLabel: "Submitting...",
			Variant:      model.ActionPrimary,
			Type:         model.ActionTypeSubmit,
			FullWidth:    true,
		}},
	}

	required := make(map[string]bool, len(body.Required))
	for _, name := range body.Required {
		required[name] = true
	}
	for _, name := range propertyOrder(body) {
		ref := body.Properties[name]
		if ref == nil || ref.Value == nil || ref.Value.ReadOnly {
			continue
		}
		field, ok := fieldFromSchema(name, ref.Value, required[name])
		if !ok {
			continue
		}
		form.Fields = append(form.Fields, field)
	}
	if err := model.ValidateFields(form.Fields); err != nil {
		return model.FormSpec{}, fmt.Errorf("openapi: operation %q: %w", op.ID, err)
	}
	return form, nil
}

func fieldFromSchema(name string, schema *openapi3.Schema, required bool) (model.Field, bool) {
	field := model.Field{
		Name:     name,
		Label:    schema.Title,
		Required: required,
		Help:     schema.Description,
		Default:  schema.Default,
	}
	if field.Label == "" {
		field.Label = humanize(name)
	}
	if example, ok := schema.Example.(string); ok {
		field.Placeholder = example
	}

	switch schemaType(schema) {
	case openapi3.TypeString:
		switch {
		case len(schema.Enum) > 0:
			field.Type = model.FieldTypeSelect
			field.Options = enumOptions(schema.Enum)
		default:
			field.Type = stringFieldType(schema.Format)
		}
		field.Validation.MinLength = int(schema.MinLength)
		if schema.MaxLength != nil {
			field.Validation.MaxLength = int(*schema.MaxLength)
		}
		field.Validation.Pattern = schema.Pattern
	case openapi3.TypeInteger, openapi3.TypeNumber:
		field.Type = model.FieldTypeNumber
		if schema.Min != nil {
			field.Min = formatNumber(*schema.Min)
		}
		if schema.Max != nil {
			field.Max = formatNumber(*schema.Max)
		}
		if schemaType(schema) == openapi3.TypeInteger {
			field.Step = "1"
		}
	case openapi3.TypeBoolean:
		field.Type = model.FieldTypeCheckbox
	case openapi3.TypeArray:
		if schema.Items == nil || schema.Items.Value == nil {
			return model.Field{}, false
		}
		items := schema.Items.Value
		switch {
		case len(items.Enum) > 0:
			field.Type = model.FieldTypeCheckboxGroup
			field.Options = enumOptions(items.Enum)
		case schemaType(items) == openapi3.TypeString && items.Format == "binary":
			field.Type = model.FieldTypeFile
			field.Multiple = true
		default:
			return model.Field{}, false
		}
	default:
		return model.Field{}, false
	}

	if field.Type == model.FieldTypeFile {
		field.Default = nil
	}
	return field, true
}

func stringFieldType(format string) model.FieldType {
	switch strings.ToLower(format) {
	case "email":
		return model.FieldTypeEmail
	case "password":
		return model.FieldTypePassword
	case "uri", "url":
		return model.FieldTypeURL
	case "binary":
		return model.FieldTypeFile
	case "tel", "phone":
		return model.FieldTypeTel
	case "textarea":
		return model.FieldTypeTextarea
	default:
		return model.FieldTypeText
	}
}

func enumOptions(values []any) []model.Option {
	options := make([]model.Option, 0, len(values))
	for _, value := range values {
		text := model.StringValue(value)
		options = append(options, model.Option{Value: text, Label: humanize(text)})
	}
	return options
}

func propertyOrder(schema *openapi3.Schema) []string {
	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		oa, oka := order(schema.Properties[a])
		ob, okb := order(schema.Properties[b])
		switch {
		case oka && okb && oa != ob:
			return cmp.Compare(oa, ob)
		case oka && !okb:
			return -1
		case !oka && okb:
			return 1
		}
		return strings.Compare(a, b)
	})
	return names
}

func order(ref *openapi3.SchemaRef) (float64, bool) {
	if ref == nil || ref.Value == nil {
		return 0, false
	}
	switch value := ref.Value.Extensions[orderExtension].(type) {
	case float64:
		return value, true
	case int:
		return float64(value), true
	case string:
		parsed, err := strconv.ParseFloat(value, 64)
		return parsed, err == nil
	default:
		return 0, false
	}
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// humanize turns snake or kebab case identifiers into title case labels.
func humanize(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for idx, part := range parts {
		parts[idx] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
