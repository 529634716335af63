package tui

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-tutordash/pkg/model"
)

// OutputFormat controls how collected values are serialized.
type OutputFormat string

const (
	// OutputFormatJSON emits application/json payloads.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatFormURLEncoded emits application/x-www-form-urlencoded payloads.
	OutputFormatFormURLEncoded OutputFormat = "form"
	// OutputFormatPrettyText emits a human-friendly text summary.
	OutputFormatPrettyText OutputFormat = "pretty"
)

// DefaultMaxAttempts bounds the prompt rounds of Fill.
const DefaultMaxAttempts = 3

// Theme captures optional formatting hints applied to error lines.
type Theme struct {
	ErrorPrefix string
}

// FileOpener turns a path typed at a file prompt into a file handle.
type FileOpener func(path string) (*model.File, error)

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithOutputFormat selects the output serialization format.
func WithOutputFormat(format OutputFormat) Option {
	return func(r *Renderer) {
		if format != "" {
			r.outputFormat = format
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}

// WithMaxAttempts bounds how many times invalid fields are prompted again.
func WithMaxAttempts(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithFileOpener overrides how file prompt answers are resolved.
func WithFileOpener(fn FileOpener) Option {
	return func(r *Renderer) {
		if fn != nil {
			r.openFile = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}
