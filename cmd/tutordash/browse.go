package main

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-tutordash/pkg/client"
	"github.com/goliatone/go-tutordash/pkg/formspec"
	"github.com/goliatone/go-tutordash/pkg/listing"
	"github.com/goliatone/go-tutordash/pkg/model"
	"github.com/goliatone/go-tutordash/pkg/renderers/tui"
)

const (
	actionNext    = "Next page"
	actionPrev    = "Previous page"
	actionFilter  = "Filter"
	actionSearch  = "Search"
	actionAdd     = "Add contact"
	actionRefresh = "Refresh"
	actionQuit    = "Quit"
)

var browseActions = []string{actionNext, actionPrev, actionFilter, actionSearch, actionAdd, actionRefresh, actionQuit}

var contactFilters = []string{listing.FilterAll, listing.FilterPlatform, listing.FilterManual}

// contactAdder collects and creates one manual contact.
type contactAdder func(ctx context.Context) (client.Contact, error)

// browseContacts prints the current page and loops over the action menu
// until the user quits. New contacts are shown at once without a refetch.
func browseContacts(ctx context.Context, out io.Writer, driver tui.PromptDriver, controller *listing.Controller[client.Contact], add contactAdder) error {
	changed := make(chan struct{}, 1)
	controller.OnChange(func(listing.State[client.Contact]) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer controller.OnChange(nil)

	controller.Refetch(ctx)
	for {
		state := controller.State()
		if state.Err != nil {
			fmt.Fprintf(out, "✗ %v\n", state.Err)
		}
		if err := printContacts(out, state.Result, false); err != nil {
			return err
		}

		choice, err := driver.Select(ctx, tui.SelectConfig{Message: "Contacts", Options: browseActions})
		if err != nil {
			return err
		}
		if choice < 0 || choice >= len(browseActions) {
			return fmt.Errorf("invalid action %d", choice)
		}

		page := state.Committed.Page
		switch browseActions[choice] {
		case actionNext:
			controller.SetPage(ctx, page+1)
		case actionPrev:
			controller.SetPage(ctx, page-1)
		case actionFilter:
			idx, err := driver.Select(ctx, tui.SelectConfig{
				Message:      "Show",
				Options:      contactFilters,
				DefaultIndex: max(slices.Index(contactFilters, state.Committed.FilterType), 0),
			})
			if err != nil {
				return err
			}
			if idx >= 0 && idx < len(contactFilters) {
				controller.SetFilter(ctx, contactFilters[idx])
			}
		case actionSearch:
			text, err := driver.Input(ctx, tui.InputConfig{Message: "Search", Default: state.Query.SearchText})
			if err != nil {
				return err
			}
			if text == state.Committed.SearchText {
				continue
			}
			controller.SetSearch(text)
			if err := awaitSearch(ctx, controller, changed, text); err != nil {
				return err
			}
		case actionAdd:
			contact, err := add(ctx)
			if err != nil {
				fmt.Fprintf(out, "✗ %v\n", err)
				continue
			}
			controller.AddOptimistic(contact, client.StatManualContacts)
			app.logger.Info("contact added", zap.Int("id", contact.ID))
		case actionRefresh:
			controller.Refetch(ctx)
		case actionQuit:
			return nil
		}
	}
}

// awaitSearch blocks until the debounced search for text has landed.
func awaitSearch(ctx context.Context, controller *listing.Controller[client.Contact], changed <-chan struct{}, text string) error {
	for {
		state := controller.State()
		if state.Committed.SearchText == text && !state.Busy() {
			return nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// promptContact fills the manual contact form and posts it, returning the
// created contact.
func promptContact(cmd *cobra.Command) contactAdder {
	return func(ctx context.Context) (client.Contact, error) {
		renderer, err := prompter(cmd, tui.OutputFormatPrettyText)
		if err != nil {
			return client.Contact{}, err
		}
		var created client.Contact
		_, _, err = fill(ctx, renderer, formTarget{id: formspec.ContactManualForm}, func(ctx context.Context, _ int, values model.Values) error {
			if err := formspec.RequireEmailOrPhone(values); err != nil {
				return err
			}
			contact, err := app.api.CreateContact(ctx, client.ContactInput{
				Name:        values.String("name"),
				Email:       values.String("email"),
				PhoneNumber: values.String("phone_number"),
			})
			if err != nil {
				return err
			}
			created = contact
			return nil
		})
		return created, err
	}
}
