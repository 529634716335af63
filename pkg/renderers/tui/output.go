package tui

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/goliatone/go-tutordash/pkg/model"
)

func (r *Renderer) serialize(fields []model.Field, values model.Values) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(fields, values)), nil
	default:
		return jsonBytes(values)
	}
}

func flattenForm(values model.Values) string {
	flattened := url.Values{}
	for key, value := range values {
		switch v := value.(type) {
		case []string:
			for _, item := range v {
				flattened.Add(key+"[]", item)
			}
		case *model.File:
			if v != nil {
				flattened.Set(key, v.Name)
			}
		default:
			flattened.Set(key, model.StringValue(v))
		}
	}
	return flattened.Encode()
}

// prettyPrint lists values in field order, masking passwords.
func prettyPrint(fields []model.Field, values model.Values) string {
	var b strings.Builder
	for _, field := range fields {
		value, ok := values[field.Name]
		if !ok {
			continue
		}
		text := model.StringValue(value)
		if field.Type == model.FieldTypePassword && text != "" {
			text = strings.Repeat("*", 8)
		}
		fmt.Fprintf(&b, "%s=%s\n", displayLabel(field), text)
	}
	return b.String()
}

func jsonBytes(values model.Values) ([]byte, error) {
	out := make(map[string]any, len(values))
	for key, value := range values {
		if file, ok := value.(*model.File); ok {
			if file == nil {
				out[key] = nil
				continue
			}
			out[key] = map[string]any{"name": file.Name, "contentType": file.ContentType, "size": file.Size}
			continue
		}
		out[key] = value
	}
	return json.Marshal(out)
}
