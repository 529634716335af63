package form

import (
	"sync"

	"github.com/goliatone/go-tutordash/pkg/model"
)

// SharedDraft owns one draft for a group of tabbed forms, such as the login
// and register tabs of an auth page. Engines opened on it delegate their
// state here; switching to another tab resets the draft to that tab's
// defaults.
type SharedDraft struct {
	mu     sync.Mutex
	values model.Values
	active string
}

// NewSharedDraft returns an empty draft with no active tab.
func NewSharedDraft() *SharedDraft {
	return &SharedDraft{values: model.Values{}}
}

// Get returns a copy of the draft.
func (d *SharedDraft) Get() model.Values {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.values.Clone()
}

// Set replaces the draft.
func (d *SharedDraft) Set(values model.Values) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.values = values.Clone()
}

// Active names the tab the draft currently belongs to.
func (d *SharedDraft) Active() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// State adapts the draft for WithDelegatedState.
func (d *SharedDraft) State() DelegatedState {
	return DelegatedState{Get: d.Get, Set: d.Set}
}

// Open builds an engine for tab over the shared draft. Opening the active
// tab again keeps the draft; opening any other tab resets it.
func (d *SharedDraft) Open(tab string, fields []model.Field, opts ...Option) (*Engine, error) {
	engine, err := New(fields, append(opts[:len(opts):len(opts)], WithDelegatedState(d.State()))...)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	switched := d.active != tab
	d.active = tab
	d.mu.Unlock()

	if switched {
		engine.Reset()
	}
	return engine, nil
}
