package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-tutordash/pkg/form"
	"github.com/goliatone/go-tutordash/pkg/model"
	"github.com/goliatone/go-tutordash/pkg/render"
)

// Renderer prompts for form fields on a terminal and serializes the result.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
	maxAttempts  int
	openFile     FileOpener
	logger       *zap.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		maxAttempts:  DefaultMaxAttempts,
		openFile:     OpenLocalFile,
		logger:       zap.NewNop(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	switch r.outputFormat {
	case OutputFormatJSON, OutputFormatFormURLEncoded, OutputFormatPrettyText:
	default:
		return nil, fmt.Errorf("tui: unknown output format %q", r.outputFormat)
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render serializes the visible values of options without prompting.
func (r *Renderer) Render(ctx context.Context, spec model.FormSpec, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	values := make(model.Values, len(spec.Fields))
	for _, field := range options.VisibleFields(spec) {
		if !field.Type.Known() {
			continue
		}
		values[field.Name] = options.Value(field)
	}
	return r.serialize(spec.Fields, values)
}

// Serialize encodes values in the configured output format.
func (r *Renderer) Serialize(fields []model.Field, values model.Values) ([]byte, error) {
	return r.serialize(fields, values)
}

// Fill prompts for every visible field of engine in declared order, then
// submits. Fields that fail validation, or that the submit handler rejects
// with field errors, are prompted again up to the configured attempt count.
// Visibility is re-evaluated before each prompt, so answering a controlling
// field reveals or hides the fields after it.
func (r *Renderer) Fill(ctx context.Context, engine *form.Engine) (form.Outcome, error) {
	if engine == nil {
		return form.OutcomeIgnored, errors.New("tui: engine is nil")
	}

	pending := fieldNames(engine.Fields())
	for attempt := 1; ; attempt++ {
		last := ""
		for _, name := range pending {
			field, _ := engine.Field(name)
			if slices.Contains(engine.Snapshot().Hidden, name) {
				continue
			}
			if err := r.promptField(ctx, engine, field); err != nil {
				return form.OutcomeIgnored, err
			}
			last = name
		}

		outcome, err := submitFrom(ctx, engine, last)
		switch outcome {
		case form.OutcomeSubmitted, form.OutcomeBusy:
			return outcome, err
		case form.OutcomeFailed:
			engine.ApplySubmitError(err)
		case form.OutcomeIgnored:
			return outcome, err
		}

		snapshot := engine.Snapshot()
		r.report(ctx, engine.Fields(), snapshot)
		pending = invalidFields(engine.Fields(), snapshot.Errors)
		if len(pending) == 0 {
			return outcome, err
		}
		if attempt >= r.maxAttempts {
			r.logger.Debug("tui fill gave up", zap.Int("attempts", attempt), zap.Int("errors", len(snapshot.Errors)))
			if err != nil {
				return outcome, errors.Join(ErrTooManyAttempts, err)
			}
			return outcome, ErrTooManyAttempts
		}
	}
}

func (r *Renderer) promptField(ctx context.Context, engine *form.Engine, field model.Field) error {
	label := displayLabel(field)
	current := engine.Values()[field.Name]
	// Cross-field rules depend on answers not given yet; they run at submit.
	var validator func(string) error
	if field.Validation.Custom == nil {
		validator = func(answer string) error {
			if msg := engine.ValidateField(field, answer); msg != "" {
				return errors.New(msg)
			}
			return nil
		}
	}

	switch field.Type {
	case model.FieldTypeText, model.FieldTypeEmail, model.FieldTypeURL, model.FieldTypeTel, model.FieldTypeNumber:
		answer, err := r.driver.Input(ctx, InputConfig{
			Message:   label,
			Default:   model.StringValue(current),
			Help:      field.Help,
			Validator: trimmed(validator),
		})
		if err != nil {
			return err
		}
		return engine.OnFieldChange(form.ChangeEvent{Name: field.Name, Value: strings.TrimSpace(answer)})

	case model.FieldTypePassword:
		answer, err := r.driver.Password(ctx, InputConfig{Message: label, Help: field.Help, Validator: validator})
		if err != nil {
			return err
		}
		return engine.OnFieldChange(form.ChangeEvent{Name: field.Name, Value: answer})

	case model.FieldTypeTextarea:
		answer, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message:   label,
			Default:   model.StringValue(current),
			Help:      field.Help,
			Validator: validator,
		})
		if err != nil {
			return err
		}
		return engine.OnFieldChange(form.ChangeEvent{Name: field.Name, Value: answer})

	case model.FieldTypeSelect, model.FieldTypeRadio:
		labels, values := optionLists(field)
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      labels,
			DefaultIndex: slices.Index(values, model.StringValue(current)),
			Help:         field.Help,
		})
		if err != nil {
			return err
		}
		value := ""
		if idx >= 0 && idx < len(values) {
			value = values[idx]
		}
		return engine.OnFieldChange(form.ChangeEvent{Name: field.Name, Value: value})

	case model.FieldTypeCheckbox:
		checked, _ := current.(bool)
		answer, err := r.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: checked, Help: field.Help})
		if err != nil {
			return err
		}
		return engine.OnFieldChange(form.ChangeEvent{Name: field.Name, Checked: answer})

	case model.FieldTypeCheckboxGroup:
		labels, values := optionLists(field)
		selected, _ := current.([]string)
		var defaults []int
		for _, value := range selected {
			if idx := slices.Index(values, value); idx >= 0 {
				defaults = append(defaults, idx)
			}
		}
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{Message: label, Options: labels, Defaults: defaults, Help: field.Help})
		if err != nil {
			return err
		}
		picked := make([]string, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(values) {
				picked = append(picked, values[idx])
			}
		}
		return engine.SetValue(field.Name, picked)

	case model.FieldTypeFile:
		return r.promptFile(ctx, engine, field, label)

	default:
		r.logger.Debug("tui skipping field with unknown type", zap.String("field", field.Name), zap.String("type", string(field.Type)))
		return nil
	}
}

// submitFrom treats the answer that closed the last prompt as Enter on that
// field. Enter in a textarea is a newline, so closing its editor submits
// directly.
func submitFrom(ctx context.Context, engine *form.Engine, last string) (form.Outcome, error) {
	outcome, err := engine.OnKeyPress(ctx, form.KeyEvent{Key: "Enter", Field: last})
	if outcome == form.OutcomeIgnored && err == nil {
		return engine.Submit(ctx)
	}
	return outcome, err
}

// trimmed validates single line answers as they are stored.
func trimmed(fn func(string) error) func(string) error {
	if fn == nil {
		return nil
	}
	return func(answer string) error {
		return fn(strings.TrimSpace(answer))
	}
}

func (r *Renderer) promptFile(ctx context.Context, engine *form.Engine, field model.Field, label string) error {
	help := field.Help
	if field.Accept != "" {
		help = strings.TrimSpace(help + " (" + field.Accept + ")")
	}
	for {
		answer, err := r.driver.Input(ctx, InputConfig{Message: label + " (path)", Help: help})
		if err != nil {
			return err
		}
		answer = strings.TrimSpace(answer)
		if answer == "" {
			return engine.OnFieldChange(form.ChangeEvent{Name: field.Name})
		}
		file, err := r.openFile(answer)
		if err != nil {
			r.info(ctx, r.theme.ErrorPrefix, fmt.Sprintf("%s: %v", label, err))
			continue
		}
		return engine.OnFieldChange(form.ChangeEvent{Name: field.Name, Files: []*model.File{file}})
	}
}

// report prints the banner and each field error in declared order.
func (r *Renderer) report(ctx context.Context, fields []model.Field, snapshot form.Snapshot) {
	if snapshot.GeneralError != "" {
		r.info(ctx, r.theme.ErrorPrefix, snapshot.GeneralError)
	}
	for _, field := range fields {
		if msg := snapshot.Errors[field.Name]; msg != "" {
			r.info(ctx, r.theme.ErrorPrefix, msg)
		}
	}
}

func (r *Renderer) info(ctx context.Context, prefix, msg string) {
	if err := r.driver.Info(ctx, prefix+msg); err != nil {
		r.logger.Debug("tui info failed", zap.Error(err))
	}
}

// OpenLocalFile stats path and returns a handle that opens it lazily.
func OpenLocalFile(path string) (*model.File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("tui: open file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("tui: %s is a directory", path)
	}
	return &model.File{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Size:        info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

func displayLabel(field model.Field) string {
	if field.Label != "" {
		return field.Label
	}
	return field.Name
}

func optionLists(field model.Field) (labels, values []string) {
	labels = make([]string, 0, len(field.Options))
	values = make([]string, 0, len(field.Options))
	for _, opt := range field.Options {
		labels = append(labels, opt.Label)
		values = append(values, opt.Value)
	}
	return labels, values
}

func fieldNames(fields []model.Field) []string {
	names := make([]string, 0, len(fields))
	for _, field := range fields {
		names = append(names, field.Name)
	}
	return names
}

func invalidFields(fields []model.Field, errs map[string]string) []string {
	var names []string
	for _, field := range fields {
		if errs[field.Name] != "" {
			names = append(names, field.Name)
		}
	}
	return names
}
