package main

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-tutordash/pkg/client"
	"github.com/goliatone/go-tutordash/pkg/listing"
	"github.com/goliatone/go-tutordash/pkg/renderers/tui"
)

// scriptedDriver answers menu and text prompts from fixed lists.
type scriptedDriver struct {
	choices []string
	inputs  []string
}

func (d *scriptedDriver) Select(_ context.Context, cfg tui.SelectConfig) (int, error) {
	if len(d.choices) == 0 {
		return 0, errors.New("no scripted choice left")
	}
	choice := d.choices[0]
	d.choices = d.choices[1:]
	idx := slices.Index(cfg.Options, choice)
	if idx < 0 {
		return 0, errors.New("scripted choice " + choice + " not offered")
	}
	return idx, nil
}

func (d *scriptedDriver) Input(context.Context, tui.InputConfig) (string, error) {
	if len(d.inputs) == 0 {
		return "", errors.New("no scripted input left")
	}
	answer := d.inputs[0]
	d.inputs = d.inputs[1:]
	return answer, nil
}

func (d *scriptedDriver) Password(ctx context.Context, cfg tui.InputConfig) (string, error) {
	return d.Input(ctx, cfg)
}

func (d *scriptedDriver) Confirm(context.Context, tui.ConfirmConfig) (bool, error) {
	return true, nil
}

func (d *scriptedDriver) MultiSelect(context.Context, tui.SelectConfig) ([]int, error) {
	return nil, nil
}

func (d *scriptedDriver) TextArea(ctx context.Context, cfg tui.TextAreaConfig) (string, error) {
	return d.Input(ctx, tui.InputConfig{Message: cfg.Message})
}

func (d *scriptedDriver) Info(context.Context, string) error {
	return nil
}

var _ tui.PromptDriver = (*scriptedDriver)(nil)

type contactBackend struct {
	mu       sync.Mutex
	requests []listing.Request
}

func (b *contactBackend) Fetch(_ context.Context, req listing.Request) (listing.Response[client.Contact], error) {
	b.mu.Lock()
	b.requests = append(b.requests, req)
	b.mu.Unlock()
	return listing.Response[client.Contact]{
		Items: []client.Contact{{ID: req.Page, Name: "Ada Lovelace"}},
		Stats: map[string]int{
			client.StatAllContacts:         40,
			client.StatPlatformConnections: 30,
			client.StatManualContacts:      10,
		},
		Pagination: listing.Pagination{CurrentPage: req.Page, TotalPages: 3, TotalItems: 40},
	}, nil
}

func (b *contactBackend) Requests() []listing.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.requests)
}

func TestBrowseContacts_DrivesControllerFromMenu(t *testing.T) {
	cmd, out := testCommand(t)
	backend := &contactBackend{}
	controller, err := newContactsController(cmd, backend, 5, listing.SortAlphabetical)
	require.NoError(t, err)
	t.Cleanup(controller.Close)

	driver := &scriptedDriver{
		choices: []string{actionNext, actionFilter, listing.FilterManual, actionSearch, actionAdd, actionQuit},
		inputs:  []string{"ada"},
	}
	added := 0
	add := func(context.Context) (client.Contact, error) {
		added++
		return client.Contact{ID: 99, Name: "Grace Hopper", Email: "grace@example.com"}, nil
	}

	require.NoError(t, browseContacts(context.Background(), out, driver, controller, add))

	assert.Equal(t, []listing.Request{
		{Page: 1, PageSize: 5, Sort: listing.SortAlphabetical},
		{Page: 2, PageSize: 5, Sort: listing.SortAlphabetical},
		{Page: 1, PageSize: 5, Sort: listing.SortAlphabetical, FilterType: listing.FilterManual},
		{Page: 1, PageSize: 5, Sort: listing.SortAlphabetical, FilterType: listing.FilterManual, Search: "ada"},
	}, backend.Requests(), "adding a contact must not refetch")
	assert.Equal(t, 1, added)

	state := controller.State()
	require.NotNil(t, state.Result)
	assert.Equal(t, "Grace Hopper", state.Result.Items[0].Name)
	assert.Equal(t, 11, state.Result.Stats[client.StatManualContacts])
	assert.Equal(t, 41, state.Result.Stats[client.StatAllContacts])
	assert.Contains(t, out.String(), "All 41  Platform 30  Manual 11")
	assert.Contains(t, out.String(), "grace@example.com")
}

func TestBrowseContacts_AddFailureKeepsPage(t *testing.T) {
	cmd, out := testCommand(t)
	backend := &contactBackend{}
	controller, err := newContactsController(cmd, backend, 5, listing.SortAlphabetical)
	require.NoError(t, err)
	t.Cleanup(controller.Close)

	driver := &scriptedDriver{choices: []string{actionAdd, actionQuit}}
	add := func(context.Context) (client.Contact, error) {
		return client.Contact{}, errors.New("contact-manual was not submitted (invalid)")
	}

	require.NoError(t, browseContacts(context.Background(), out, driver, controller, add))
	assert.Contains(t, out.String(), "✗ contact-manual was not submitted (invalid)")
	assert.Equal(t, 10, controller.State().Result.Stats[client.StatManualContacts])
	assert.Len(t, backend.Requests(), 1)
}
