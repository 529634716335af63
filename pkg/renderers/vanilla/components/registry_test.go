package components

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tutordash/pkg/model"
)

func render(t *testing.T, field model.Field, data FieldData) string {
	t.Helper()
	fn, ok := NewDefaultRegistry().Lookup(field.Type)
	if !ok {
		t.Fatalf("no renderer for %q", field.Type)
	}
	var buf bytes.Buffer
	if err := fn(&buf, field, data); err != nil {
		t.Fatalf("render %s: %v", field.Name, err)
	}
	return buf.String()
}

func TestRegistryCloneIsolated(t *testing.T) {
	reg := New()
	reg.MustRegister("text", Empty)

	cloned := reg.Clone()
	cloned.MustRegister("rating", Empty)

	if diff := cmp.Diff([]model.FieldType{"text"}, reg.Types()); diff != "" {
		t.Fatalf("original mutated (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]model.FieldType{"rating", "text"}, cloned.Types()); diff != "" {
		t.Fatalf("clone types mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistryRejectsInvalidEntries(t *testing.T) {
	reg := New()
	if err := reg.Register("  ", Empty); err == nil {
		t.Fatalf("expected error for blank type")
	}
	if err := reg.Register("text", nil); err == nil {
		t.Fatalf("expected error for nil renderer")
	}
}

func TestDefaultRegistryCoversKnownTypes(t *testing.T) {
	if diff := cmp.Diff(len(model.KnownFieldTypes), len(NewDefaultRegistry().Types())); diff != "" {
		t.Fatalf("type count mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownTypeRendersNothing(t *testing.T) {
	fn, ok := NewDefaultRegistry().Lookup("rating")
	if ok {
		t.Fatalf("expected unknown type to be unregistered")
	}
	var buf bytes.Buffer
	if err := fn(&buf, model.Field{Name: "stars", Type: "rating"}, FieldData{}); err != nil {
		t.Fatalf("empty renderer: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestInputRendererMarkup(t *testing.T) {
	got := render(t, model.Field{
		Name:        "email",
		Label:       "Email",
		Type:        model.FieldTypeEmail,
		Required:    true,
		Placeholder: "you@example.com",
	}, FieldData{Value: `a"b`, Error: "Email is required", Help: "<em>work</em> address"})

	want := `<div class="input-group">` +
		`<label for="email-email" class="input-label">Email<span class="required">*</span></label>` +
		`<input type="email" id="email-email" name="email" value="a&#34;b" placeholder="you@example.com" class="input input--error" required>` +
		`<div class="input-error" role="alert">Email is required</div>` +
		`<div class="input-help"><em>work</em> address</div>` +
		`</div>`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("markup mismatch (-want +got):\n%s", diff)
	}
}

func TestNumberRendererEmitsRange(t *testing.T) {
	got := render(t, model.Field{Name: "hours", Label: "Hours", Type: model.FieldTypeNumber, Min: "0", Max: "40", Step: "0.5"}, FieldData{Value: "2"})
	for _, fragment := range []string{`type="number"`, `min="0"`, `max="40"`, `step="0.5"`, `value="2"`} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("expected %s in %s", fragment, got)
		}
	}
}

func TestTextareaDefaultsRowsAndEscapesBody(t *testing.T) {
	got := render(t, model.Field{Name: "notes", Label: "Notes", Type: model.FieldTypeTextarea, Validation: model.Validation{MaxLength: 500}}, FieldData{Value: "<script>"})
	for _, fragment := range []string{`class="textarea"`, `rows="4"`, `maxlength="500"`, `>&lt;script&gt;</textarea>`} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("expected %s in %s", fragment, got)
		}
	}
}

func TestSelectRendererMarksSelectedOption(t *testing.T) {
	got := render(t, model.Field{
		Name:        "role",
		Label:       "Role",
		Type:        model.FieldTypeSelect,
		Placeholder: "Pick one",
		Options:     []model.Option{{Value: "student", Label: "Student"}, {Value: "tutor", Label: "Tutor"}},
	}, FieldData{Value: "tutor", Error: "bad"})

	want := `<select id="role-select" name="role" class="select select--error">` +
		`<option value="">Pick one</option>` +
		`<option value="student">Student</option>` +
		`<option value="tutor" selected>Tutor</option>` +
		`</select>`
	if !strings.Contains(got, want) {
		t.Fatalf("expected %s in %s", want, got)
	}
}

func TestFileRendererShowsCurrentFile(t *testing.T) {
	got := render(t, model.Field{Name: "upload", Label: "File", Type: model.FieldTypeFile, Accept: ".pdf,.doc", Multiple: true}, FieldData{Value: &model.File{Name: "notes.pdf"}})
	for _, fragment := range []string{`class="file-input"`, `accept=".pdf,.doc"`, ` multiple`, `file-input__current">notes.pdf<`} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("expected %s in %s", fragment, got)
		}
	}
	if strings.Contains(got, "value=") {
		t.Fatalf("file inputs must not carry a value: %s", got)
	}
}

func TestCheckboxRendererWrapsLabel(t *testing.T) {
	got := render(t, model.Field{Name: "terms", Label: "Accept terms", Type: model.FieldTypeCheckbox, Required: true}, FieldData{Value: true, Disabled: true})
	want := `<div class="input-group checkbox-single"><label class="checkbox-label">` +
		`<input type="checkbox" id="terms-checkbox" name="terms" value="true" checked disabled>` +
		`<span class="checkbox-text">Accept terms<span class="required">*</span></span></label></div>`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("markup mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupRenderersUseFieldErrorClass(t *testing.T) {
	options := []model.Option{{Value: "a", Label: "A"}, {Value: "b", Label: "B"}}

	group := render(t, model.Field{Name: "tags", Label: "Tags", Type: model.FieldTypeCheckboxGroup, Options: options}, FieldData{Value: []string{"b"}, Error: "Pick one"})
	if !strings.Contains(group, `<div class="checkbox-group">`) || !strings.Contains(group, `value="b" checked`) || strings.Contains(group, `value="a" checked`) {
		t.Fatalf("unexpected checkbox group markup: %s", group)
	}
	if !strings.Contains(group, `<div class="field-error" role="alert">Pick one</div>`) {
		t.Fatalf("expected field-error in %s", group)
	}
	if strings.Contains(group, `for=`) {
		t.Fatalf("group label must not target a control: %s", group)
	}

	radio := render(t, model.Field{Name: "level", Label: "Level", Type: model.FieldTypeRadio, Options: options}, FieldData{Value: "a"})
	if !strings.Contains(radio, `<div class="radio-group">`) || !strings.Contains(radio, `type="radio" name="level" value="a" checked`) {
		t.Fatalf("unexpected radio markup: %s", radio)
	}
}
