// Package props renders a form as a JSON document that a client-side runtime
// can hydrate into its own components.
package props

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-tutordash/pkg/model"
	"github.com/goliatone/go-tutordash/pkg/render"
)

// Payload is the document written by Render.
type Payload struct {
	Spec         model.FormSpec    `json:"spec"`
	Values       map[string]any    `json:"values"`
	Errors       map[string]string `json:"errors"`
	GeneralError string            `json:"generalError,omitempty"`
	Submitting   bool              `json:"submitting"`
	Hidden       []string          `json:"hidden,omitempty"`
	ActiveTab    string            `json:"activeTab,omitempty"`
	Method       string            `json:"method"`
	HiddenInputs map[string]string `json:"hiddenInputs,omitempty"`
}

type Option func(*Renderer)

// WithIndent pretty-prints the output.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// WithSanitizer overrides the policy applied to help text before it is
// embedded in the payload.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(r *Renderer) {
		if policy != nil {
			r.sanitizer = policy
		}
	}
}

// Renderer emits Payload as JSON.
type Renderer struct {
	indent    string
	sanitizer *bluemonday.Policy
}

var _ render.Renderer = (*Renderer)(nil)

func New(opts ...Option) *Renderer {
	r := &Renderer{sanitizer: bluemonday.UGCPolicy()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return "props"
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

// Render is deterministic: map keys are sorted by encoding/json and every
// visible field is present in values.
func (r *Renderer) Render(_ context.Context, spec model.FormSpec, options render.RenderOptions) ([]byte, error) {
	payload := Payload{
		Spec:         spec.Clone(),
		Values:       make(map[string]any, len(spec.Fields)),
		Errors:       map[string]string{},
		GeneralError: options.GeneralError,
		Submitting:   options.Submitting,
		Hidden:       options.Hidden,
		ActiveTab:    options.ResolveActiveTab(spec),
		Method:       strings.ToUpper(options.ResolveMethod(spec)),
	}

	for idx := range payload.Spec.Fields {
		field := &payload.Spec.Fields[idx]
		field.Help = strings.TrimSpace(r.sanitizer.Sanitize(field.Help))
	}
	for _, field := range options.VisibleFields(spec) {
		payload.Values[field.Name] = jsonValue(options.Value(field))
		if msg := options.FieldError(field.Name); msg != "" {
			payload.Errors[field.Name] = msg
		}
	}
	if hidden := render.HiddenFields(options.HiddenInputs...); len(hidden) > 0 {
		payload.HiddenInputs = make(map[string]string, len(hidden))
		for _, input := range hidden {
			payload.HiddenInputs[input.Name] = input.Value
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(true)
	if r.indent != "" {
		enc.SetIndent("", r.indent)
	}
	if err := enc.Encode(payload); err != nil {
		return nil, fmt.Errorf("props renderer: encode: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// jsonValue replaces file handles with their metadata; the handle itself has
// no JSON form.
func jsonValue(value any) any {
	if file, ok := value.(*model.File); ok {
		if file == nil {
			return nil
		}
		return map[string]any{"name": file.Name, "contentType": file.ContentType, "size": file.Size}
	}
	return value
}
