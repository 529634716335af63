package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tutordash/pkg/form"
	"github.com/goliatone/go-tutordash/pkg/model"
	"github.com/goliatone/go-tutordash/pkg/render"
	"github.com/goliatone/go-tutordash/pkg/visibility/expr"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	passwords    []string
	infoMessages []string
	prompted     []string
	validators   map[string]func(string) error
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
	passPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompted = append(s.prompted, cfg.Message)
	if cfg.Validator != nil {
		if s.validators == nil {
			s.validators = map[string]func(string) error{}
		}
		s.validators[cfg.Message] = cfg.Validator
	}
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, cfg InputConfig) (string, error) {
	s.prompted = append(s.prompted, cfg.Message)
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.prompted = append(s.prompted, cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.prompted = append(s.prompted, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.prompted = append(s.prompted, cfg.Message)
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.prompted = append(s.prompted, cfg.Message)
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

type captured struct {
	calls  int
	values model.Values
}

func (c *captured) submit(_ context.Context, values model.Values) error {
	c.calls++
	c.values = values
	return nil
}

func newEngine(t *testing.T, fields []model.Field, opts ...form.Option) *form.Engine {
	t.Helper()
	engine, err := form.New(fields, opts...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func newRenderer(t *testing.T, driver PromptDriver, opts ...Option) *Renderer {
	t.Helper()
	r, err := New(append([]Option{WithPromptDriver(driver)}, opts...)...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestFill_RepromptsInvalidFieldsThenSubmits(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"not-an-email", "ada@example.com"},
		passwords: []string{"secret123"},
		confirm:   []bool{true},
	}
	sink := &captured{}
	engine := newEngine(t, []model.Field{
		{Name: "email", Label: "Email", Type: model.FieldTypeEmail, Required: true, Validation: model.Validation{Pattern: `^[^@\s]+@[^@\s]+\.[^@\s]+$`, PatternMessage: "Enter a valid email"}},
		{Name: "password", Label: "Password", Type: model.FieldTypePassword, Required: true, Validation: model.Validation{MinLength: 8}},
		{Name: "remember", Label: "Remember me", Type: model.FieldTypeCheckbox},
	}, form.WithSubmit(sink.submit))

	outcome, err := newRenderer(t, driver).Fill(context.Background(), engine)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if outcome != form.OutcomeSubmitted {
		t.Fatalf("expected submitted, got %s", outcome)
	}

	if diff := cmp.Diff([]string{"Email", "Password", "Remember me", "Email"}, driver.prompted); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Enter a valid email"}, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
	want := model.Values{"email": "ada@example.com", "password": "secret123", "remember": true}
	if diff := cmp.Diff(want, sink.values); diff != "" {
		t.Fatalf("submitted values mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_VisibilityFollowsAnswers(t *testing.T) {
	driver := &stubDriver{
		selectIdx: []int{1},
		inputs:    []string{"https://example.com/video"},
		multiIdx:  [][]int{{0, 2}},
	}
	sink := &captured{}
	engine := newEngine(t, []model.Field{
		{Name: "resource_type", Label: "Type", Type: model.FieldTypeSelect, Required: true, Options: []model.Option{
			{Value: "pdf", Label: "PDF"}, {Value: "video_link", Label: "Video link"},
		}},
		{Name: "file", Label: "File", Type: model.FieldTypeFile, Required: true, VisibleWhen: `resource_type != "video_link"`},
		{Name: "url", Label: "URL", Type: model.FieldTypeURL, Required: true, VisibleWhen: `resource_type == "video_link"`},
		{Name: "tags", Label: "Tags", Type: model.FieldTypeCheckboxGroup, Options: []model.Option{
			{Value: "a", Label: "A"}, {Value: "b", Label: "B"}, {Value: "c", Label: "C"},
		}},
	}, form.WithSubmit(sink.submit), form.WithVisibility(expr.New()))

	if _, err := newRenderer(t, driver).Fill(context.Background(), engine); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if diff := cmp.Diff([]string{"Type", "URL", "Tags"}, driver.prompted); diff != "" {
		t.Fatalf("prompt order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "c"}, sink.values["tags"]); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_SubmitsAfterTrailingTextarea(t *testing.T) {
	driver := &stubDriver{
		inputs:    []string{"Week 1"},
		textAreas: []string{"line one\nline two"},
	}
	sink := &captured{}
	engine := newEngine(t, []model.Field{
		{Name: "title", Label: "Title", Type: model.FieldTypeText, Required: true},
		{Name: "description", Label: "Description", Type: model.FieldTypeTextarea},
	}, form.WithSubmit(sink.submit))

	outcome, err := newRenderer(t, driver).Fill(context.Background(), engine)
	if err != nil {
		t.Fatalf("fill: %v", err)
	}
	if outcome != form.OutcomeSubmitted || sink.calls != 1 {
		t.Fatalf("expected one submission, got %s after %d calls", outcome, sink.calls)
	}
	if got := sink.values.String("description"); got != "line one\nline two" {
		t.Fatalf("description mismatch: %q", got)
	}
}

func TestFill_InputValidatorChecksTrimmedAnswer(t *testing.T) {
	driver := &stubDriver{inputs: []string{"  abc  "}}
	sink := &captured{}
	engine := newEngine(t, []model.Field{
		{Name: "code", Label: "Code", Type: model.FieldTypeText, Required: true, Validation: model.Validation{MinLength: 3}},
	}, form.WithSubmit(sink.submit))

	if _, err := newRenderer(t, driver).Fill(context.Background(), engine); err != nil {
		t.Fatalf("fill: %v", err)
	}
	validate := driver.validators["Code"]
	if validate == nil {
		t.Fatalf("expected a validator for Code")
	}
	if err := validate("ab "); err == nil {
		t.Fatalf("expected %q to fail minLength once trimmed", "ab ")
	}
	if err := validate(" abc "); err != nil {
		t.Fatalf("expected %q to pass, got %v", " abc ", err)
	}
	if diff := cmp.Diff("abc", sink.values["code"]); diff != "" {
		t.Fatalf("stored value mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_GivesUpAfterMaxAttempts(t *testing.T) {
	driver := &stubDriver{inputs: []string{"", ""}}
	engine := newEngine(t, []model.Field{
		{Name: "title", Label: "Title", Type: model.FieldTypeText, Required: true},
	}, form.WithSubmit(func(context.Context, model.Values) error { return nil }))

	outcome, err := newRenderer(t, driver, WithMaxAttempts(2)).Fill(context.Background(), engine)
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if outcome != form.OutcomeInvalid {
		t.Fatalf("expected invalid, got %s", outcome)
	}
	if diff := cmp.Diff([]string{"Title is required", "Title is required"}, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
}

type serverErr struct{ fields map[string][]string }

func (e serverErr) Error() string                     { return "validation failed" }
func (e serverErr) FieldErrors() map[string][]string { return e.fields }

func TestFill_ServerFieldErrorsArePromptedAgain(t *testing.T) {
	driver := &stubDriver{inputs: []string{"taken@example.com", "free@example.com"}}
	calls := 0
	engine := newEngine(t, []model.Field{
		{Name: "email", Label: "Email", Type: model.FieldTypeEmail, Required: true},
	}, form.WithSubmit(func(_ context.Context, values model.Values) error {
		calls++
		if values.String("email") == "taken@example.com" {
			return serverErr{fields: map[string][]string{"email": {"Email already registered"}}}
		}
		return nil
	}))

	outcome, err := newRenderer(t, driver, WithTheme(Theme{ErrorPrefix: "! "})).Fill(context.Background(), engine)
	if err != nil || outcome != form.OutcomeSubmitted {
		t.Fatalf("expected submitted, got %s %v", outcome, err)
	}
	if calls != 2 {
		t.Fatalf("expected two submit calls, got %d", calls)
	}
	if diff := cmp.Diff([]string{"! Email already registered"}, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_BannerOnlyFailureReturnsError(t *testing.T) {
	driver := &stubDriver{inputs: []string{"Ada"}}
	boom := errors.New("network down")
	engine := newEngine(t, []model.Field{
		{Name: "name", Label: "Name", Type: model.FieldTypeText},
	}, form.WithSubmit(func(context.Context, model.Values) error { return boom }))

	outcome, err := newRenderer(t, driver).Fill(context.Background(), engine)
	if !errors.Is(err, boom) || outcome != form.OutcomeFailed {
		t.Fatalf("expected failed with boom, got %s %v", outcome, err)
	}
	if diff := cmp.Diff([]string{"network down"}, driver.infoMessages); diff != "" {
		t.Fatalf("info messages mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_AbortStopsPrompting(t *testing.T) {
	driver := &stubDriver{}
	engine := newEngine(t, []model.Field{{Name: "name", Label: "Name", Type: model.FieldTypeText}},
		form.WithSubmit(func(context.Context, model.Values) error { return nil }))
	if _, err := newRenderer(t, driver).Fill(context.Background(), engine); err == nil {
		t.Fatalf("expected driver error to stop fill")
	}
}

func TestRender_SerializesVisibleValues(t *testing.T) {
	spec := model.FormSpec{Fields: []model.Field{
		{Name: "email", Label: "Email", Type: model.FieldTypeEmail},
		{Name: "password", Label: "Password", Type: model.FieldTypePassword},
		{Name: "roles", Label: "Roles", Type: model.FieldTypeCheckboxGroup},
		{Name: "secret", Label: "Secret", Type: model.FieldTypeText},
	}}
	options := render.RenderOptions{
		Values: model.Values{"email": "ada@example.com", "password": "hunter22", "roles": []string{"student", "tutor"}, "secret": "x"},
		Hidden: []string{"secret"},
	}

	pretty, err := newRenderer(t, &stubDriver{}, WithOutputFormat(OutputFormatPrettyText)).Render(context.Background(), spec, options)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "Email=ada@example.com\nPassword=********\nRoles=student,tutor\n"
	if diff := cmp.Diff(want, string(pretty)); diff != "" {
		t.Fatalf("pretty output mismatch (-want +got):\n%s", diff)
	}

	encoded, err := newRenderer(t, &stubDriver{}, WithOutputFormat(OutputFormatFormURLEncoded)).Render(context.Background(), spec, options)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := string(encoded); !strings.Contains(got, "roles%5B%5D=student&roles%5B%5D=tutor") || strings.Contains(got, "secret") {
		t.Fatalf("unexpected form output %q", got)
	}
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	if _, err := New(WithPromptDriver(&stubDriver{}), WithOutputFormat("xml")); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
