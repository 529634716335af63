package form

import (
	"sync"

	"github.com/goliatone/go-tutordash/pkg/model"
)

// State is where draft values live. Exactly one State backs an Engine.
type State interface {
	Values() model.Values
	Value(name string) any
	SetValue(name string, value any)
	Replace(values model.Values)
}

// OwnedState keeps the draft inside the engine. It is the default.
type OwnedState struct {
	mu     sync.RWMutex
	values model.Values
}

// NewOwnedState seeds an owned draft with a copy of values.
func NewOwnedState(values model.Values) *OwnedState {
	return &OwnedState{values: values.Clone()}
}

func (s *OwnedState) Values() model.Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Clone()
}

func (s *OwnedState) Value(name string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[name]
}

func (s *OwnedState) SetValue(name string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = model.Values{}
	}
	s.values[name] = value
}

func (s *OwnedState) Replace(values model.Values) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = values.Clone()
}

// DelegatedState forwards every read and write to a parent owner, such as
// the auth page holding one draft for both its login and register tabs. The
// engine keeps no copy of the values.
type DelegatedState struct {
	Get func() model.Values
	Set func(model.Values)
}

func (s DelegatedState) Values() model.Values {
	return s.Get().Clone()
}

func (s DelegatedState) Value(name string) any {
	return s.Get()[name]
}

func (s DelegatedState) SetValue(name string, value any) {
	next := s.Get().Clone()
	next[name] = value
	s.Set(next)
}

func (s DelegatedState) Replace(values model.Values) {
	s.Set(values.Clone())
}

var (
	_ State = (*OwnedState)(nil)
	_ State = DelegatedState{}
)
