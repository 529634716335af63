package listing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tutordash/pkg/listing"
	"github.com/goliatone/go-tutordash/pkg/testsupport"
)

type contact struct {
	ID   string
	Name string
}

func page(n, total int, names ...string) listing.Response[contact] {
	items := make([]contact, 0, len(names))
	for _, name := range names {
		items = append(items, contact{ID: name, Name: name})
	}
	return listing.Response[contact]{
		Items: items,
		Stats: map[string]int{"allContacts": total * 16, "platformConnections": 3, "manualContacts": 5},
		Pagination: listing.Pagination{
			CurrentPage: n,
			TotalPages:  total,
			HasNext:     n < total,
			HasPrevious: n > 1,
			TotalItems:  total * 16,
		},
	}
}

func pagedSource(total int) *testsupport.RecordingSource[contact] {
	return &testsupport.RecordingSource[contact]{
		Respond: func(req listing.Request) (listing.Response[contact], error) {
			return page(req.Page, total, "c"), nil
		},
	}
}

func newController(t *testing.T, source listing.DataSource[contact], opts ...listing.Option) *listing.Controller[contact] {
	t.Helper()
	c, err := listing.New[contact](source, opts...)
	if err != nil {
		t.Fatalf("listing.New: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestNew_RequiresSource(t *testing.T) {
	if _, err := listing.New[contact](nil); !errors.Is(err, listing.ErrNilSource) {
		t.Fatalf("expected ErrNilSource, got %v", err)
	}
}

func TestRefetch_SendsDefaults(t *testing.T) {
	source := pagedSource(3)
	c := newController(t, source)

	state := c.Refetch(context.Background())

	want := []listing.Request{{Page: 1, PageSize: 16, Sort: "alphabetical"}}
	if diff := cmp.Diff(want, source.Requests()); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
	if state.Result == nil || state.Result.CurrentPage != 1 || state.Result.TotalPages != 3 {
		t.Fatalf("unexpected result %+v", state.Result)
	}
	if state.Busy() {
		t.Fatalf("expected loading flags cleared")
	}
}

func TestSetSearch_DebouncesToLastValue(t *testing.T) {
	clock := testsupport.NewFakeClock()
	source := pagedSource(2)
	c := newController(t, source, listing.WithClock(clock))

	c.SetSearch("a")
	clock.Advance(100 * time.Millisecond)
	c.SetSearch("ab")
	clock.Advance(100 * time.Millisecond)
	c.SetSearch("abc")

	if got := c.State().Query.SearchText; got != "abc" {
		t.Fatalf("search text must update immediately, got %q", got)
	}
	if got := c.State().Committed.SearchText; got != "" {
		t.Fatalf("committed search must wait for the timer, got %q", got)
	}

	clock.Advance(299 * time.Millisecond)
	if n := len(source.Requests()); n != 0 {
		t.Fatalf("expected no fetch before the window closes, got %d", n)
	}

	clock.Advance(time.Millisecond)
	want := []listing.Request{{Page: 1, PageSize: 16, Sort: "alphabetical", Search: "abc"}}
	if diff := cmp.Diff(want, source.Requests()); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
	if clock.Pending() != 0 {
		t.Fatalf("superseded timers must not remain armed")
	}

	clock.Advance(time.Second)
	if n := len(source.Requests()); n != 1 {
		t.Fatalf("expected exactly one fetch, got %d", n)
	}
}

func TestSetSearch_FiringResetsPage(t *testing.T) {
	clock := testsupport.NewFakeClock()
	source := pagedSource(5)
	c := newController(t, source, listing.WithClock(clock))
	ctx := context.Background()

	c.Refetch(ctx)
	c.SetPage(ctx, 4)
	c.SetSearch("zo")
	clock.Advance(listing.DefaultDebounce)

	state := c.State()
	if state.Committed.Page != 1 || state.Result.CurrentPage != 1 {
		t.Fatalf("expected page 1 after search, got %+v", state.Committed)
	}
	if state.SearchLoading || state.Loading {
		t.Fatalf("expected flags cleared, got %+v", state)
	}
}

func TestSetFilter_ResetsPageAndCancelsTimer(t *testing.T) {
	clock := testsupport.NewFakeClock()
	source := pagedSource(5)
	c := newController(t, source, listing.WithClock(clock))
	ctx := context.Background()

	c.Refetch(ctx)
	c.SetPage(ctx, 3)
	c.SetSearch("zo")
	state := c.SetFilter(ctx, listing.FilterPlatform)

	if state.Query.Page != 1 || state.Query.FilterType != "platform" {
		t.Fatalf("unexpected query %+v", state.Query)
	}
	if state.Result.CurrentPage != 1 {
		t.Fatalf("expected current page 1, got %d", state.Result.CurrentPage)
	}

	requests := source.Requests()
	last := requests[len(requests)-1]
	want := listing.Request{Page: 1, PageSize: 16, Sort: "alphabetical", FilterType: "platform", Search: "zo"}
	if diff := cmp.Diff(want, last); diff != "" {
		t.Fatalf("filter request mismatch (-want +got):\n%s", diff)
	}

	clock.Advance(time.Second)
	if got := len(source.Requests()); got != len(requests) {
		t.Fatalf("cancelled timer fired: %d requests, want %d", got, len(requests))
	}

	c.SetFilter(ctx, listing.FilterAll)
	requests = source.Requests()
	if got := requests[len(requests)-1].FilterType; got != "" {
		t.Fatalf("filter_type must be omitted for all, got %q", got)
	}
}

func TestSetPage_IgnoresOutOfRange(t *testing.T) {
	source := pagedSource(3)
	c := newController(t, source)
	ctx := context.Background()

	c.SetPage(ctx, 7)
	if n := len(source.Requests()); n != 1 {
		t.Fatalf("unknown total accepts any page, got %d requests", n)
	}
	c.SetPage(ctx, 1)

	before := len(source.Requests())
	for _, p := range []int{0, -1, 4} {
		c.SetPage(ctx, p)
	}
	if got := len(source.Requests()); got != before {
		t.Fatalf("out-of-range pages must not fetch, got %d want %d", got, before)
	}
	if got := c.State().Committed.Page; got != 1 {
		t.Fatalf("page must stay 1, got %d", got)
	}
}

func TestSetPage_UsesCommittedSearch(t *testing.T) {
	clock := testsupport.NewFakeClock()
	source := pagedSource(5)
	c := newController(t, source, listing.WithClock(clock))
	ctx := context.Background()

	c.SetSearch("ann")
	clock.Advance(listing.DefaultDebounce)
	c.SetSearch("anna")
	c.SetPage(ctx, 2)

	requests := source.Requests()
	if got := requests[len(requests)-1]; got.Search != "ann" || got.Page != 2 {
		t.Fatalf("expected page 2 with committed search, got %+v", got)
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	source := testsupport.NewGatedSource[contact]()
	c := newController(t, source)
	ctx := context.Background()

	first := make(chan listing.State[contact], 1)
	go func() { first <- c.Refetch(ctx) }()
	slow := source.Next()

	second := make(chan listing.State[contact], 1)
	go func() { second <- c.SetPage(ctx, 2) }()
	fast := source.Next()

	fast.Resolve(page(2, 4, "page-two"))
	<-second
	if state := c.State(); state.Loading {
		t.Fatalf("latest response must clear loading")
	}

	slow.Resolve(page(1, 4, "page-one"))
	<-first

	state := c.State()
	if state.Result.CurrentPage != 2 {
		t.Fatalf("stale response reverted the page to %d", state.Result.CurrentPage)
	}
	if diff := cmp.Diff([]contact{{ID: "page-two", Name: "page-two"}}, state.Result.Items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
	if state.Loading {
		t.Fatalf("stale response must not resurrect loading")
	}
}

func TestLoadingFlagsFollowTheTrigger(t *testing.T) {
	clock := testsupport.NewFakeClock()
	source := testsupport.NewGatedSource[contact]()
	c := newController(t, source, listing.WithClock(clock))
	ctx := context.Background()

	c.SetSearch("a")
	searched := make(chan struct{})
	go func() {
		clock.Advance(listing.DefaultDebounce)
		close(searched)
	}()
	call := source.Next()

	state := c.State()
	if !state.SearchLoading || state.Loading {
		t.Fatalf("debounced fetch in flight: want search loading only, got loading=%v search=%v",
			state.Loading, state.SearchLoading)
	}
	call.Resolve(page(1, 2, "ada"))
	<-searched

	paged := make(chan listing.State[contact], 1)
	go func() { paged <- c.SetPage(ctx, 2) }()
	call = source.Next()

	state = c.State()
	if !state.Loading || state.SearchLoading {
		t.Fatalf("page fetch in flight: want loading only, got loading=%v search=%v",
			state.Loading, state.SearchLoading)
	}
	call.Resolve(page(2, 2, "bea"))

	if state := <-paged; state.Loading || state.SearchLoading {
		t.Fatalf("resolved fetch must clear both flags")
	}
}

func TestFetchErrorKeepsPreviousResult(t *testing.T) {
	failure := errors.New("boom")
	fail := false
	source := &testsupport.RecordingSource[contact]{
		Respond: func(req listing.Request) (listing.Response[contact], error) {
			if fail {
				return listing.Response[contact]{}, failure
			}
			return page(req.Page, 2, "kept"), nil
		},
	}
	c := newController(t, source)
	ctx := context.Background()

	c.Refetch(ctx)
	fail = true
	state := c.SetPage(ctx, 2)

	if !errors.Is(state.Err, failure) {
		t.Fatalf("expected fetch error in state, got %v", state.Err)
	}
	if state.Loading || state.SearchLoading {
		t.Fatalf("expected loading cleared after failure")
	}
	if diff := cmp.Diff([]contact{{ID: "kept", Name: "kept"}}, state.Result.Items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}

	fail = false
	if state := c.Refetch(ctx); state.Err != nil {
		t.Fatalf("success must clear the error, got %v", state.Err)
	}
}

func TestAddOptimistic(t *testing.T) {
	source := pagedSource(1)
	c := newController(t, source)
	c.Refetch(context.Background())

	state := c.AddOptimistic(contact{ID: "new", Name: "New"}, "manualContacts")

	if got := state.Result.Items[0].ID; got != "new" {
		t.Fatalf("expected new item first, got %s", got)
	}
	want := map[string]int{"allContacts": 17, "platformConnections": 3, "manualContacts": 6}
	if diff := cmp.Diff(want, state.Result.Stats); diff != "" {
		t.Fatalf("stats mismatch (-want +got):\n%s", diff)
	}
	if state.Result.TotalItems != 17 {
		t.Fatalf("expected total items 17, got %d", state.Result.TotalItems)
	}
	if got := len(source.Requests()); got != 1 {
		t.Fatalf("optimistic add must not refetch, got %d requests", got)
	}
}

func TestOnChangeAndClose(t *testing.T) {
	clock := testsupport.NewFakeClock()
	c := newController(t, pagedSource(1), listing.WithClock(clock))

	var seen []string
	c.OnChange(func(s listing.State[contact]) { seen = append(seen, s.Query.SearchText) })
	c.SetSearch("x")
	if len(seen) == 0 || seen[len(seen)-1] != "x" {
		t.Fatalf("expected change notification, got %v", seen)
	}

	c.Close()
	if clock.Pending() != 0 {
		t.Fatalf("close must stop the pending timer")
	}
	c.SetSearch("y")
	if clock.Pending() != 0 {
		t.Fatalf("closed controller must not arm timers")
	}
}

func TestRequestValues(t *testing.T) {
	req := listing.Query{Page: 2, PageSize: 16, Sort: "alphabetical", FilterType: "all"}.Request()
	if got := req.Values().Encode(); got != "page=2&page_size=16&sort=alphabetical" {
		t.Fatalf("unexpected encoding %q", got)
	}
}

func TestWithSearch_SeedsCommittedQuery(t *testing.T) {
	source := pagedSource(4)
	c := newController(t, source, listing.WithSearch("ada"), listing.WithFilter(listing.FilterManual))

	c.SetPage(context.Background(), 3)

	want := []listing.Request{{Page: 3, PageSize: 16, Sort: "alphabetical", FilterType: "manual", Search: "ada"}}
	if diff := cmp.Diff(want, source.Requests()); diff != "" {
		t.Fatalf("requests mismatch (-want +got):\n%s", diff)
	}
}
