package form

import (
	"context"

	"go.uber.org/zap"

	"github.com/goliatone/go-tutordash/pkg/model"
	"github.com/goliatone/go-tutordash/pkg/visibility"
)

// SubmitFunc receives a copy of the complete draft. A returned error is
// passed back to the Submit caller untouched.
type SubmitFunc func(ctx context.Context, values model.Values) error

// Option configures an Engine.
type Option func(*config)

type config struct {
	submit     SubmitFunc
	initial    model.Values
	delegated  *DelegatedState
	visibility visibility.Evaluator
	extras     map[string]any
	logger     *zap.Logger
	onChange   func(Snapshot)
}

// WithSubmit installs the submit handler.
func WithSubmit(fn SubmitFunc) Option {
	return func(cfg *config) {
		cfg.submit = fn
	}
}

// WithInitialValues seeds the owned draft. Fields missing from values start
// from their defaults. Cannot be combined with WithDelegatedState.
func WithInitialValues(values model.Values) Option {
	return func(cfg *config) {
		cfg.initial = values.Clone()
	}
}

// WithDelegatedState hands draft ownership to the caller.
func WithDelegatedState(state DelegatedState) Option {
	return func(cfg *config) {
		cfg.delegated = &state
	}
}

// WithVisibility sets the evaluator for visibleWhen rules. Without one every
// field is visible.
func WithVisibility(evaluator visibility.Evaluator) Option {
	return func(cfg *config) {
		cfg.visibility = evaluator
	}
}

// WithExtras exposes caller data to visibility rules under `extras.`.
func WithExtras(extras map[string]any) Option {
	return func(cfg *config) {
		cfg.extras = extras
	}
}

// WithLogger sets the engine logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithOnChange registers a callback invoked after every state change.
func WithOnChange(fn func(Snapshot)) Option {
	return func(cfg *config) {
		cfg.onChange = fn
	}
}
