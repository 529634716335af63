package visibility

import (
	"github.com/goliatone/go-tutordash/pkg/model"
)

// Evaluator decides whether a field is shown for the current draft. Hidden
// fields are neither rendered nor validated.
type Evaluator interface {
	Eval(field, rule string, ctx Context) (bool, error)
}

// Context carries the draft values plus caller supplied extras such as the
// signed-in user's roles.
type Context struct {
	Values model.Values
	Extras map[string]any
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(field, rule string, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(field, rule string, ctx Context) (bool, error) {
	return fn(field, rule, ctx)
}

// Always shows every field regardless of its rule.
var Always Evaluator = EvaluatorFunc(func(string, string, Context) (bool, error) {
	return true, nil
})
