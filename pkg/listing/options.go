package listing

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Defaults of the network page.
const (
	DefaultPageSize = 16
	DefaultDebounce = 300 * time.Millisecond
	DefaultTotalKey = "allContacts"
)

// Option configures a Controller.
type Option func(*config)

type config struct {
	pageSize   int
	sort       string
	filterType string
	search     string
	debounce   time.Duration
	clock      Clock
	totalKey   string
	logger     *zap.Logger
	baseCtx    context.Context
}

func defaultConfig() config {
	return config{
		pageSize:   DefaultPageSize,
		sort:       SortAlphabetical,
		filterType: FilterAll,
		debounce:   DefaultDebounce,
		clock:      SystemClock{},
		totalKey:   DefaultTotalKey,
		logger:     zap.NewNop(),
		baseCtx:    context.Background(),
	}
}

// WithPageSize sets the page size sent with every request.
func WithPageSize(size int) Option {
	return func(cfg *config) {
		if size > 0 {
			cfg.pageSize = size
		}
	}
}

// WithSort sets the sort key.
func WithSort(sort string) Option {
	return func(cfg *config) {
		if sort != "" {
			cfg.sort = sort
		}
	}
}

// WithFilter sets the initial filter.
func WithFilter(filter string) Option {
	return func(cfg *config) {
		if filter != "" {
			cfg.filterType = filter
		}
	}
}

// WithSearch seeds committed search text, for controllers restored from a
// URL. It does not arm the debounce timer.
func WithSearch(text string) Option {
	return func(cfg *config) {
		cfg.search = text
	}
}

// WithDebounce sets the search debounce window.
func WithDebounce(d time.Duration) Option {
	return func(cfg *config) {
		if d >= 0 {
			cfg.debounce = d
		}
	}
}

// WithClock replaces the timer source.
func WithClock(clock Clock) Option {
	return func(cfg *config) {
		if clock != nil {
			cfg.clock = clock
		}
	}
}

// WithTotalKey names the stats bucket that counts every item. AddOptimistic
// increments it alongside the item's own bucket.
func WithTotalKey(key string) Option {
	return func(cfg *config) {
		cfg.totalKey = key
	}
}

// WithLogger sets the controller logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithContext sets the context used by debounced fetches, which fire outside
// any caller.
func WithContext(ctx context.Context) Option {
	return func(cfg *config) {
		if ctx != nil {
			cfg.baseCtx = ctx
		}
	}
}
