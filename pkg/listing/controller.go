package listing

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrNilSource is returned by New without a data source.
var ErrNilSource = errors.New("listing: data source is required")

// Controller drives one paginated collection.
type Controller[T any] struct {
	source DataSource[T]
	cfg    config

	mu            sync.Mutex
	query         Query
	committed     Query
	result        *Result[T]
	loading       bool
	searchLoading bool
	err           error
	seq           uint64
	timer         Timer
	timerGen      uint64
	closed        bool
	onChange      func(State[T])
}

// New returns a controller at page 1 with the configured filter and sort.
// Nothing is fetched until Refetch or an input change.
func New[T any](source DataSource[T], opts ...Option) (*Controller[T], error) {
	if source == nil {
		return nil, ErrNilSource
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	query := Query{
		Page:       1,
		PageSize:   cfg.pageSize,
		Sort:       cfg.sort,
		FilterType: cfg.filterType,
		SearchText: cfg.search,
	}
	return &Controller[T]{
		source:    source,
		cfg:       cfg,
		query:     query,
		committed: query,
	}, nil
}

// OnChange registers a callback invoked with a fresh State after every
// transition. It runs outside the controller lock.
func (c *Controller[T]) OnChange(fn func(State[T])) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// State returns a copy of the current state.
func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller[T]) stateLocked() State[T] {
	return State[T]{
		Query:         c.query,
		Committed:     c.committed,
		Result:        c.result.clone(),
		Loading:       c.loading,
		SearchLoading: c.searchLoading,
		Err:           c.err,
	}
}

// SetFilter resets to page 1, replaces the filter and fetches immediately.
// A pending search timer is cancelled; its text rides along with this fetch.
func (c *Controller[T]) SetFilter(ctx context.Context, filter string) State[T] {
	if filter == "" {
		filter = FilterAll
	}
	c.mu.Lock()
	c.stopTimerLocked()
	c.query.Page = 1
	c.query.FilterType = filter
	c.committed = c.query
	query := c.committed
	c.mu.Unlock()

	return c.fetch(ctx, query, false)
}

// SetSearch records the text immediately and (re)arms the debounce timer.
// When the timer fires the controller jumps to page 1 and fetches.
func (c *Controller[T]) SetSearch(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.query.SearchText = text
	c.stopTimerLocked()
	gen := c.timerGen
	c.timer = c.cfg.clock.AfterFunc(c.cfg.debounce, func() { c.fireSearch(gen) })
	c.mu.Unlock()

	c.notify()
}

func (c *Controller[T]) fireSearch(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.timerGen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.query.Page = 1
	c.committed = c.query
	// Readers never see the new committed text without the loading flag.
	c.searchLoading = true
	query := c.committed
	c.mu.Unlock()

	c.fetch(c.cfg.baseCtx, query, true)
}

// SetPage moves to page and fetches with the committed search text. Pages
// below 1 or past the known total are ignored.
func (c *Controller[T]) SetPage(ctx context.Context, page int) State[T] {
	c.mu.Lock()
	if page < 1 || (c.result != nil && c.result.TotalPages > 0 && page > c.result.TotalPages) {
		state := c.stateLocked()
		c.mu.Unlock()
		c.cfg.logger.Debug("listing page out of range", zap.Int("page", page))
		return state
	}
	c.query.Page = page
	c.committed.Page = page
	query := c.committed
	c.mu.Unlock()

	return c.fetch(ctx, query, false)
}

// Refetch re-issues the committed query. It never returns an error; check
// State.Err.
func (c *Controller[T]) Refetch(ctx context.Context) State[T] {
	c.mu.Lock()
	query := c.committed
	c.mu.Unlock()
	return c.fetch(ctx, query, false)
}

func (c *Controller[T]) fetch(ctx context.Context, query Query, search bool) State[T] {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	if search {
		c.searchLoading = true
	} else {
		c.loading = true
	}
	c.mu.Unlock()
	c.notify()

	resp, err := c.source.Fetch(ctx, query.Request())

	c.mu.Lock()
	if seq != c.seq {
		latest := c.seq
		state := c.stateLocked()
		c.mu.Unlock()
		c.cfg.logger.Debug("listing discarded superseded response",
			zap.Uint64("seq", seq),
			zap.Uint64("latest", latest),
			zap.Int("page", query.Page))
		return state
	}

	c.loading = false
	c.searchLoading = false
	if err != nil {
		c.err = err
		c.cfg.logger.Warn("listing fetch failed",
			zap.Int("page", query.Page),
			zap.String("filter", query.FilterType),
			zap.Error(err))
	} else {
		if resp.Pagination.CurrentPage != 0 && resp.Pagination.CurrentPage != query.Page {
			c.cfg.logger.Warn("listing backend reported a different page",
				zap.Int("requested", query.Page),
				zap.Int("reported", resp.Pagination.CurrentPage))
		}
		c.err = nil
		committed := &Result[T]{
			Items:       resp.Items,
			TotalItems:  resp.Pagination.TotalItems,
			TotalPages:  resp.Pagination.TotalPages,
			CurrentPage: query.Page,
			HasNext:     resp.Pagination.HasNext,
			HasPrevious: resp.Pagination.HasPrevious,
			Stats:       resp.Stats,
		}
		c.result = committed.clone()
	}
	state := c.stateLocked()
	c.mu.Unlock()
	c.notify()
	return state
}

// AddOptimistic prepends item to the current page and bumps the bucket and
// total counters without refetching.
func (c *Controller[T]) AddOptimistic(item T, bucket string) State[T] {
	c.mu.Lock()
	if c.result == nil {
		c.result = &Result[T]{CurrentPage: c.committed.Page}
	}
	c.result.Items = append([]T{item}, c.result.Items...)
	if c.result.Stats == nil {
		c.result.Stats = map[string]int{}
	}
	if bucket != "" {
		c.result.Stats[bucket]++
	}
	if c.cfg.totalKey != "" && bucket != c.cfg.totalKey {
		c.result.Stats[c.cfg.totalKey]++
	}
	c.result.TotalItems++
	state := c.stateLocked()
	c.mu.Unlock()

	c.notify()
	return state
}

// Close cancels a pending search timer. Later SetSearch calls are ignored.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTimerLocked()
	c.closed = true
}

func (c *Controller[T]) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	// A callback that already started must see a stale generation.
	c.timerGen++
}

func (c *Controller[T]) notify() {
	c.mu.Lock()
	fn := c.onChange
	if fn == nil {
		c.mu.Unlock()
		return
	}
	state := c.stateLocked()
	c.mu.Unlock()
	fn(state)
}
