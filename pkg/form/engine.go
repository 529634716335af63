package form

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-tutordash/pkg/model"
	"github.com/goliatone/go-tutordash/pkg/render"
	"github.com/goliatone/go-tutordash/pkg/visibility"
)

var (
	// ErrUnknownField is returned for events naming an undeclared field.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrConflictingState is returned when both initial values and a
	// delegated state are configured.
	ErrConflictingState = errors.New("form: initial values and delegated state are mutually exclusive")
	// ErrInvalidDelegate is returned for a DelegatedState missing Get or Set.
	ErrInvalidDelegate = errors.New("form: delegated state requires Get and Set")
	// ErrNoSubmitHandler is returned by Submit when no handler is installed.
	ErrNoSubmitHandler = errors.New("form: no submit handler")
)

// Outcome reports what a Submit or OnKeyPress call did.
type Outcome int

const (
	// OutcomeIgnored means the event did not trigger a submission.
	OutcomeIgnored Outcome = iota
	// OutcomeInvalid means validation failed and the handler was not called.
	OutcomeInvalid
	// OutcomeBusy means a submission was already in flight.
	OutcomeBusy
	// OutcomeSubmitted means the handler ran and returned nil.
	OutcomeSubmitted
	// OutcomeFailed means the handler ran and returned an error.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeBusy:
		return "busy"
	case OutcomeSubmitted:
		return "submitted"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Snapshot is a consistent copy of the engine state.
type Snapshot struct {
	Values       model.Values
	Errors       map[string]string
	GeneralError string
	Submitting   bool
	Hidden       []string
}

// ChangeEvent is a UI edit. Value carries the raw input text or, for
// checkbox-group, the toggled option value. Checked carries the checkbox
// state. Files carries the selected files of a file input.
type ChangeEvent struct {
	Name    string
	Value   string
	Checked bool
	Files   []*model.File
}

// KeyEvent is a key press inside the form.
type KeyEvent struct {
	Key   string
	Shift bool
	Field string
}

// Engine validates and submits one form.
type Engine struct {
	fields   []model.Field
	index    map[string]int
	patterns map[string]*regexp.Regexp
	state    State
	defaults model.Values

	submit     SubmitFunc
	visibility visibility.Evaluator
	extras     map[string]any
	logger     *zap.Logger
	onChange   func(Snapshot)

	mu           sync.Mutex
	errors       map[string]string
	generalError string
	submitting   bool
}

// New builds an engine over fields. Descriptor invariant violations are
// returned as errors.
func New(fields []model.Field, opts ...Option) (*Engine, error) {
	if err := model.ValidateFields(fields); err != nil {
		return nil, fmt.Errorf("form: invalid fields: %w", err)
	}

	cfg := config{logger: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	e := &Engine{
		fields:     slices.Clone(fields),
		index:      make(map[string]int, len(fields)),
		patterns:   model.CompilePatterns(fields),
		defaults:   make(model.Values, len(fields)),
		submit:     cfg.submit,
		visibility: cfg.visibility,
		extras:     cfg.extras,
		logger:     cfg.logger,
		onChange:   cfg.onChange,
		errors:     map[string]string{},
	}
	for i, field := range e.fields {
		e.index[field.Name] = i
		e.defaults[field.Name] = model.DefaultValue(field)
	}

	switch {
	case cfg.delegated != nil && cfg.initial != nil:
		return nil, ErrConflictingState
	case cfg.delegated != nil:
		if cfg.delegated.Get == nil || cfg.delegated.Set == nil {
			return nil, ErrInvalidDelegate
		}
		e.state = *cfg.delegated
	default:
		seed := e.defaults.Clone()
		maps.Copy(seed, cfg.initial)
		e.state = NewOwnedState(seed)
	}

	return e, nil
}

// Fields returns the descriptors in declaration order.
func (e *Engine) Fields() []model.Field {
	return slices.Clone(e.fields)
}

// Field returns the named descriptor.
func (e *Engine) Field(name string) (model.Field, bool) {
	idx, ok := e.index[name]
	if !ok {
		return model.Field{}, false
	}
	return e.fields[idx], true
}

// Values returns a copy of the draft.
func (e *Engine) Values() model.Values {
	return e.state.Values()
}

// Snapshot returns the current state.
func (e *Engine) Snapshot() Snapshot {
	values := e.state.Values()
	hidden := e.hiddenFields(values)

	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Values:       values,
		Errors:       maps.Clone(e.errors),
		GeneralError: e.generalError,
		Submitting:   e.submitting,
		Hidden:       hidden,
	}
}

// RenderOptions converts the snapshot into renderer input.
func (e *Engine) RenderOptions() render.RenderOptions {
	snap := e.Snapshot()
	return render.RenderOptions{
		Values:       snap.Values,
		Errors:       snap.Errors,
		GeneralError: snap.GeneralError,
		Submitting:   snap.Submitting,
		Hidden:       snap.Hidden,
	}
}

// Submitting reports whether a submission is in flight.
func (e *Engine) Submitting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.submitting
}

// OnFieldChange applies a UI edit and clears the field's error.
func (e *Engine) OnFieldChange(event ChangeEvent) error {
	field, ok := e.Field(event.Name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, event.Name)
	}

	var next any
	switch field.Type {
	case model.FieldTypeCheckboxGroup:
		current, _ := e.state.Value(field.Name).([]string)
		next = toggle(current, event.Value, event.Checked)
	case model.FieldTypeCheckbox:
		next = event.Checked
	case model.FieldTypeFile:
		var file *model.File
		if len(event.Files) > 0 {
			file = event.Files[0]
		}
		next = file
	default:
		next = event.Value
	}

	e.state.SetValue(field.Name, next)
	e.clearFieldError(field.Name)
	e.notify()
	return nil
}

// SetValue stores a value of the field's kind directly, bypassing event
// decoding. Prompt drivers use it for multi-select answers.
func (e *Engine) SetValue(name string, value any) error {
	if _, ok := e.index[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	if set, ok := value.([]string); ok {
		value = slices.Clone(set)
	}
	e.state.SetValue(name, value)
	e.clearFieldError(name)
	e.notify()
	return nil
}

func toggle(set []string, option string, checked bool) []string {
	out := slices.Clone(set)
	if out == nil {
		out = []string{}
	}
	idx := slices.Index(out, option)
	switch {
	case checked && idx < 0:
		out = append(out, option)
	case !checked && idx >= 0:
		out = slices.Delete(out, idx, idx+1)
	}
	return out
}

// ValidateField returns the first failing rule's message for value, or "".
// Custom validators see the current draft.
func (e *Engine) ValidateField(field model.Field, value any) string {
	pattern := e.patterns[field.Name]
	if pattern == nil && field.Validation.Pattern != "" {
		pattern, _ = regexp.Compile(field.Validation.Pattern)
	}
	return validate(field, value, e.state.Values(), pattern)
}

// ValidateForm validates every visible field, replaces the error map and
// reports whether it ended up empty.
func (e *Engine) ValidateForm() bool {
	values := e.state.Values()
	hidden := e.hiddenFields(values)

	next := make(map[string]string)
	for _, field := range e.fields {
		if slices.Contains(hidden, field.Name) {
			continue
		}
		if msg := validate(field, values[field.Name], values, e.patterns[field.Name]); msg != "" {
			next[field.Name] = msg
		}
	}

	e.mu.Lock()
	e.errors = next
	e.mu.Unlock()
	e.notify()
	return len(next) == 0
}

// Submit validates the draft and, when it is valid, calls the submit handler
// with a copy of every value. The submitting flag is set for the duration of
// the call and always cleared afterwards. Handler errors are returned as is.
func (e *Engine) Submit(ctx context.Context) (Outcome, error) {
	if e.Submitting() {
		return OutcomeBusy, nil
	}
	if !e.ValidateForm() {
		e.logger.Debug("form submit blocked by validation", zap.Int("errors", len(e.Snapshot().Errors)))
		return OutcomeInvalid, nil
	}
	if e.submit == nil {
		return OutcomeIgnored, ErrNoSubmitHandler
	}

	e.mu.Lock()
	if e.submitting {
		e.mu.Unlock()
		return OutcomeBusy, nil
	}
	e.submitting = true
	e.mu.Unlock()
	e.notify()

	defer func() {
		e.mu.Lock()
		e.submitting = false
		e.mu.Unlock()
		e.notify()
	}()

	if err := e.submit(ctx, e.state.Values()); err != nil {
		e.logger.Debug("form submit handler failed", zap.Error(err))
		return OutcomeFailed, err
	}
	return OutcomeSubmitted, nil
}

// OnKeyPress submits on Enter unless Shift is held or the focused field is
// multiline.
func (e *Engine) OnKeyPress(ctx context.Context, event KeyEvent) (Outcome, error) {
	if event.Key != "Enter" || event.Shift {
		return OutcomeIgnored, nil
	}
	if field, ok := e.Field(event.Field); ok && field.Type.Multiline() {
		return OutcomeIgnored, nil
	}
	return e.Submit(ctx)
}

// SetErrors replaces all field errors.
func (e *Engine) SetErrors(errs map[string]string) {
	e.mu.Lock()
	e.errors = maps.Clone(errs)
	if e.errors == nil {
		e.errors = map[string]string{}
	}
	e.mu.Unlock()
	e.notify()
}

// SetFieldError sets or, with an empty message, clears one field error.
func (e *Engine) SetFieldError(name, message string) {
	e.mu.Lock()
	if message == "" {
		delete(e.errors, name)
	} else {
		e.errors[name] = message
	}
	e.mu.Unlock()
	e.notify()
}

// SetGeneralError sets the banner message.
func (e *Engine) SetGeneralError(message string) {
	e.mu.Lock()
	e.generalError = message
	e.mu.Unlock()
	e.notify()
}

// ClearErrors drops field errors and the banner.
func (e *Engine) ClearErrors() {
	e.mu.Lock()
	e.errors = map[string]string{}
	e.generalError = ""
	e.mu.Unlock()
	e.notify()
}

// FieldErrorer is implemented by submit errors that carry per-field
// messages, such as client.APIError.
type FieldErrorer interface {
	FieldErrors() map[string][]string
}

// ApplySubmitError translates a failed submission into field errors and the
// banner. Payload keys that name no field land in the banner; when nothing
// maps, the error text itself is shown.
func (e *Engine) ApplySubmitError(err error) {
	if err == nil {
		return
	}

	var carrier FieldErrorer
	if !errors.As(err, &carrier) {
		e.SetGeneralError(err.Error())
		return
	}

	mapping := render.MapErrorPayload(model.FormSpec{Fields: e.fields}, carrier.FieldErrors())
	banner := mapping.Banner()
	fieldErrs := mapping.FirstFieldErrors()
	if banner == "" && len(fieldErrs) == 0 {
		banner = err.Error()
	}

	e.mu.Lock()
	maps.Copy(e.errors, fieldErrs)
	e.generalError = banner
	e.mu.Unlock()
	e.notify()
}

// Reset restores every field to its default and clears all errors.
func (e *Engine) Reset() {
	e.state.Replace(e.defaults)
	e.ClearErrors()
}

func (e *Engine) clearFieldError(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.errors, name)
}

func (e *Engine) hiddenFields(values model.Values) []string {
	if e.visibility == nil {
		return nil
	}
	var hidden []string
	ctx := visibility.Context{Values: values, Extras: e.extras}
	for _, field := range e.fields {
		if field.VisibleWhen == "" {
			continue
		}
		visible, err := e.visibility.Eval(field.Name, field.VisibleWhen, ctx)
		if err != nil {
			e.logger.Warn("visibility rule failed",
				zap.String("field", field.Name),
				zap.String("rule", field.VisibleWhen),
				zap.Error(err))
			continue
		}
		if !visible {
			hidden = append(hidden, field.Name)
		}
	}
	return hidden
}

func (e *Engine) notify() {
	if e.onChange == nil {
		return
	}
	e.onChange(e.Snapshot())
}
