package props_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tutordash/pkg/model"
	"github.com/goliatone/go-tutordash/pkg/render"
	"github.com/goliatone/go-tutordash/pkg/renderers/props"
)

func TestRender_PayloadShape(t *testing.T) {
	spec := model.FormSpec{
		ID: "material-create",
		Fields: []model.Field{
			{Name: "title", Label: "Title", Type: model.FieldTypeText, Help: `Shown <b>in bold</b><script>x()</script>`},
			{Name: "file", Label: "File", Type: model.FieldTypeFile},
			{Name: "link", Label: "Link", Type: model.FieldTypeURL},
			{Name: "tags", Label: "Tags", Type: model.FieldTypeCheckboxGroup, Options: []model.Option{{Value: "a", Label: "A"}}},
		},
	}
	out, err := props.New().Render(context.Background(), spec, render.RenderOptions{
		Values:       model.Values{"title": "Week 1", "file": &model.File{Name: "notes.pdf", Size: 12}},
		Errors:       map[string]string{"title": "Title is too long"},
		Hidden:       []string{"link"},
		Submitting:   true,
		HiddenInputs: []render.HiddenField{render.CSRFToken("tok")},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}

	wantValues := map[string]any{
		"title": "Week 1",
		"file":  map[string]any{"name": "notes.pdf", "contentType": "", "size": float64(12)},
		"tags":  []any{},
	}
	if diff := cmp.Diff(wantValues, got["values"]); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]any{"title": "Title is too long"}, got["errors"]); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	if got["submitting"] != true || got["method"] != "POST" {
		t.Fatalf("unexpected flags: %v %v", got["submitting"], got["method"])
	}
	if diff := cmp.Diff(map[string]any{"_csrf": "tok"}, got["hiddenInputs"]); diff != "" {
		t.Fatalf("hidden inputs mismatch (-want +got):\n%s", diff)
	}

	fields := got["spec"].(map[string]any)["fields"].([]any)
	help := fields[0].(map[string]any)["help"]
	if help != "Shown <b>in bold</b>" {
		t.Fatalf("help not sanitized: %q", help)
	}
	if spec.Fields[0].Help != `Shown <b>in bold</b><script>x()</script>` {
		t.Fatalf("render mutated the caller's spec")
	}
}

func TestRender_IsDeterministic(t *testing.T) {
	spec := model.FormSpec{ID: "contact-manual", Fields: []model.Field{
		{Name: "name", Type: model.FieldTypeText},
		{Name: "email", Type: model.FieldTypeEmail},
		{Name: "phone", Type: model.FieldTypeTel},
	}}
	options := render.RenderOptions{Values: model.Values{"name": "Ada", "email": "ada@example.com"}}
	renderer := props.New(props.WithIndent("  "))

	first, err := renderer.Render(context.Background(), spec, options)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := renderer.Render(context.Background(), spec, options)
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		if diff := cmp.Diff(string(first), string(again)); diff != "" {
			t.Fatalf("output changed between renders (-want +got):\n%s", diff)
		}
	}
}
