package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-tutordash/pkg/model"
	"github.com/goliatone/go-tutordash/pkg/render"
)

func TestMapErrorPayload_ServerShapes(t *testing.T) {
	spec := model.FormSpec{
		Fields: []model.Field{
			{Name: "username", Type: model.FieldTypeText},
			{Name: "email", Type: model.FieldTypeEmail},
			{Name: "roles", Type: model.FieldTypeCheckboxGroup},
		},
	}

	payload := map[string][]string{
		"username":         {"A user with that username already exists.", " "},
		"/body/email":      {"Enter a valid email address."},
		"data.roles[0]":    {"Invalid role"},
		"non_field_errors": {"Unable to log in with provided credentials."},
		"detail":           {"Unable to log in with provided credentials."},
		"unknown":          {"Something else"},
	}

	mapped := render.MapErrorPayload(spec, payload)

	wantFields := map[string][]string{
		"username": {"A user with that username already exists."},
		"email":    {"Enter a valid email address."},
		"roles":    {"Invalid role"},
	}
	if diff := cmp.Diff(wantFields, mapped.Fields); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}

	wantForm := []string{"Unable to log in with provided credentials.", "Something else"}
	if diff := cmp.Diff(wantForm, mapped.Form, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}

	if got := mapped.FirstFieldErrors()["email"]; got != "Enter a valid email address." {
		t.Fatalf("unexpected first email error %q", got)
	}
}

func TestMergeFormErrors(t *testing.T) {
	merged := render.MergeFormErrors([]string{" First ", "Second"}, "Second", "third", "  ")
	want := []string{"First", "Second", "third"}

	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged form errors mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderOptions_VisibleFieldsAndFallbacks(t *testing.T) {
	spec := model.FormSpec{
		Method: "PUT",
		Tabs:   []model.Tab{{Key: "login"}, {Key: "register"}},
		Fields: []model.Field{
			{Name: "resource_type", Type: model.FieldTypeSelect},
			{Name: "file", Type: model.FieldTypeFile},
			{Name: "url", Type: model.FieldTypeURL, Default: "https://"},
		},
	}
	opts := render.RenderOptions{Hidden: []string{"file"}}

	var names []string
	for _, field := range opts.VisibleFields(spec) {
		names = append(names, field.Name)
	}
	if diff := cmp.Diff([]string{"resource_type", "url"}, names); diff != "" {
		t.Fatalf("visible fields mismatch (-want +got):\n%s", diff)
	}
	if got := opts.Value(spec.Fields[2]); got != "https://" {
		t.Fatalf("expected default fallback, got %v", got)
	}
	if got := opts.ResolveMethod(spec); got != "PUT" {
		t.Fatalf("expected spec method, got %s", got)
	}
	if got := opts.ResolveActiveTab(spec); got != "login" {
		t.Fatalf("expected first tab, got %s", got)
	}
}
