package render

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrRendererNotFound is returned by Get for unknown names.
var ErrRendererNotFound = errors.New("render: renderer not found")

// Registry indexes renderers by name. The dashboard server and the CLI pick
// a renderer per request (`html`, `props`) from one shared registry.
type Registry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
	fallback  string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{renderers: make(map[string]Renderer)}
}

// Register adds a renderer under its Name. The first renderer registered
// becomes the default.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return errors.New("render: renderer is required")
	}
	name := strings.ToLower(strings.TrimSpace(renderer.Name()))
	if name == "" {
		return errors.New("render: renderer name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.renderers[name]; exists {
		return fmt.Errorf("render: renderer %q already registered", name)
	}
	r.renderers[name] = renderer
	if r.fallback == "" {
		r.fallback = name
	}
	return nil
}

// MustRegister panics when Register fails.
func (r *Registry) MustRegister(renderer Renderer) {
	if err := r.Register(renderer); err != nil {
		panic(err)
	}
}

// Get returns the named renderer; an empty name selects the default.
func (r *Registry) Get(name string) (Renderer, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	r.mu.RLock()
	defer r.mu.RUnlock()
	if name == "" {
		name = r.fallback
	}
	renderer, ok := r.renderers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRendererNotFound, name)
	}
	return renderer, nil
}

// ForContentType returns the first renderer (by name) producing the given
// media type, ignoring parameters such as charset.
func (r *Registry) ForContentType(mediaType string) (Renderer, bool) {
	want := baseMediaType(mediaType)
	for _, name := range r.List() {
		renderer, _ := r.Get(name)
		if renderer != nil && baseMediaType(renderer.ContentType()) == want {
			return renderer, true
		}
	}
	return nil, false
}

// List returns the registered names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func baseMediaType(value string) string {
	base, _, _ := strings.Cut(value, ";")
	return strings.ToLower(strings.TrimSpace(base))
}
