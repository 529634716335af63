package expr

import (
	"strings"
	"sync"

	"github.com/goliatone/go-tutordash/pkg/visibility"
)

// Evaluator interprets visibleWhen rules against draft values.
//
// Supported forms:
//   - truthiness: `has_image`, `!has_image`
//   - comparisons: `resource_type == "link"`, `count != 3`, `flag == true`
//   - membership: `resource_type in ["video_link", "link"]`
//   - composition: `a && (b || !c)`, also spelled `and`, `or`, `not`
//
// Comparing a checkbox-group value against a string tests membership. Paths
// prefixed with `extras.` read from Context.Extras. Compiled rules are cached.
type Evaluator struct {
	mu    sync.RWMutex
	cache map[string]predicate
}

// New returns an empty Evaluator.
func New() *Evaluator {
	return &Evaluator{cache: make(map[string]predicate)}
}

// Eval implements visibility.Evaluator. An empty rule is always visible.
func (e *Evaluator) Eval(_, rule string, ctx visibility.Context) (bool, error) {
	pred, err := e.Compile(rule)
	if err != nil {
		return false, err
	}
	return pred(ctx), nil
}

// Compile parses a rule, returning the cached predicate when available. Use it
// at load time to reject malformed rules early.
func (e *Evaluator) Compile(rule string) (func(visibility.Context) bool, error) {
	key := strings.TrimSpace(rule)

	e.mu.RLock()
	pred, ok := e.cache[key]
	e.mu.RUnlock()
	if ok {
		return pred, nil
	}

	pred, err := compile(key)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	e.cache[key] = pred
	e.mu.Unlock()
	return pred, nil
}

var _ visibility.Evaluator = (*Evaluator)(nil)
