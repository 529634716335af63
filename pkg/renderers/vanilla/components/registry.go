package components

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/goliatone/go-tutordash/pkg/model"
)

// Renderer writes the markup for one field into buf.
type Renderer func(buf *bytes.Buffer, field model.Field, data FieldData) error

// FieldData carries the per-render state of a single field.
type FieldData struct {
	// Value is the draft value, already defaulted.
	Value any
	// Error is the field's current message, or "".
	Error string
	// Help is sanitized HTML shown under the control.
	Help string
	// Disabled is true when the field or the whole form is disabled.
	Disabled bool
}

// Registry maps field type tags to renderers. Lookups of unregistered tags
// resolve to Empty so a typo in a form definition drops the field instead of
// failing the whole render.
type Registry struct {
	mu        sync.RWMutex
	renderers map[model.FieldType]Renderer
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{renderers: make(map[model.FieldType]Renderer)}
}

// Clone returns a copy that can be mutated independently.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := New()
	for tag, fn := range r.renderers {
		cloned.renderers[tag] = fn
	}
	return cloned
}

// Register associates fn with a type tag, replacing any existing entry.
func (r *Registry) Register(tag model.FieldType, fn Renderer) error {
	if tag = normalize(tag); tag == "" {
		return fmt.Errorf("components: field type is required")
	}
	if fn == nil {
		return fmt.Errorf("components: renderer for %q is nil", tag)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[tag] = fn
	return nil
}

// MustRegister mirrors Register but panics on error.
func (r *Registry) MustRegister(tag model.FieldType, fn Renderer) {
	if err := r.Register(tag, fn); err != nil {
		panic(err)
	}
}

// Lookup returns the renderer for tag and whether it was registered. The
// returned renderer is never nil.
func (r *Registry) Lookup(tag model.FieldType) (Renderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.renderers[normalize(tag)]
	if !ok {
		return Empty, false
	}
	return fn, true
}

// Types returns the registered tags, sorted.
func (r *Registry) Types() []model.FieldType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]model.FieldType, 0, len(r.renderers))
	for tag := range r.renderers {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}

// Empty renders nothing.
func Empty(*bytes.Buffer, model.Field, FieldData) error {
	return nil
}

func normalize(tag model.FieldType) model.FieldType {
	return model.FieldType(strings.ToLower(strings.TrimSpace(string(tag))))
}
