// Package formspec holds the dashboard's form definitions: the built-in set,
// documents loaded from YAML or JSON, and the named custom validators they
// reference.
package formspec

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/goliatone/go-tutordash/pkg/model"
	"github.com/goliatone/go-tutordash/pkg/visibility/expr"
)

// ErrFormNotFound is returned by lookups for unknown ids.
var ErrFormNotFound = errors.New("formspec: form not found")

// Store is a set of form specs keyed by id.
type Store struct {
	mu    sync.RWMutex
	forms map[string]model.FormSpec
}

func NewStore() *Store {
	return &Store{forms: make(map[string]model.FormSpec)}
}

// Add registers spec. Ids must be unique within a store.
func (s *Store) Add(spec model.FormSpec) error {
	if spec.ID == "" {
		return errors.New("formspec: form id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.forms[spec.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateForm, spec.ID)
	}
	s.forms[spec.ID] = spec.Clone()
	return nil
}

// Merge adds every form of other, with other's definitions replacing
// existing ones of the same id.
func (s *Store) Merge(other *Store) {
	if other == nil || other == s {
		return
	}
	other.mu.RLock()
	defer other.mu.RUnlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, spec := range other.forms {
		s.forms[id] = spec.Clone()
	}
}

// Get returns a copy of the form with the given id.
func (s *Store) Get(id string) (model.FormSpec, bool) {
	if s == nil {
		return model.FormSpec{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	spec, ok := s.forms[id]
	if !ok {
		return model.FormSpec{}, false
	}
	return spec.Clone(), true
}

// MustGet is Get for ids the caller knows exist.
func (s *Store) MustGet(id string) model.FormSpec {
	spec, ok := s.Get(id)
	if !ok {
		panic(fmt.Errorf("%w: %q", ErrFormNotFound, id))
	}
	return spec
}

// IDs returns the stored ids, sorted.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.forms))
	for id := range s.forms {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// WithOptions returns a copy of the form whose field carries options, for
// choice lists only known at runtime such as course categories.
func (s *Store) WithOptions(id, field string, options []model.Option) (model.FormSpec, error) {
	spec, ok := s.Get(id)
	if !ok {
		return model.FormSpec{}, fmt.Errorf("%w: %q", ErrFormNotFound, id)
	}
	for idx := range spec.Fields {
		if spec.Fields[idx].Name == field {
			spec.Fields[idx].Options = slices.Clone(options)
			return spec, nil
		}
	}
	return model.FormSpec{}, fmt.Errorf("formspec: form %q has no field %q", id, field)
}

// Check verifies the descriptor invariants and that every visibility rule
// parses.
func Check(spec model.FormSpec) error {
	errs := []error{model.ValidateFields(spec.Fields)}
	evaluator := expr.New()
	for _, field := range spec.Fields {
		if field.VisibleWhen == "" {
			continue
		}
		if _, err := evaluator.Compile(field.VisibleWhen); err != nil {
			errs = append(errs, fmt.Errorf("field %q: visibleWhen: %w", field.Name, err))
		}
	}
	for _, tab := range spec.Tabs {
		if tab.Key == "" {
			errs = append(errs, errors.New("tab key is required"))
		}
	}
	return errors.Join(errs...)
}
