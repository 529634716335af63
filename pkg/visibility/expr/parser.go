package expr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-tutordash/pkg/visibility"
)

// predicate is a compiled rule.
type predicate func(ctx visibility.Context) bool

type operand struct {
	kind kind
	text string
}

type parser struct {
	items []lexeme
	pos   int
}

// compile turns a rule into a predicate. Grammar:
//
//	or      = and { "||" and }
//	and     = unary { "&&" unary }
//	unary   = "!" unary | primary
//	primary = "(" or ")" | ident [ ("==" | "!=") operand | "in" list ]
func compile(rule string) (predicate, error) {
	items, err := scan(rule)
	if err != nil {
		return nil, err
	}
	p := &parser{items: items}
	if p.peek().kind == kindEOF {
		return func(visibility.Context) bool { return true }, nil
	}
	pred, err := p.or()
	if err != nil {
		return nil, err
	}
	if tail := p.peek(); tail.kind != kindEOF {
		return nil, fmt.Errorf("visibility/expr: unexpected %s at offset %d", tail, tail.pos)
	}
	return pred, nil
}

func (p *parser) peek() lexeme { return p.items[p.pos] }

func (p *parser) next() lexeme {
	item := p.items[p.pos]
	if item.kind != kindEOF {
		p.pos++
	}
	return item
}

func (p *parser) accept(k kind) bool {
	if p.peek().kind == k {
		p.pos++
		return true
	}
	return false
}

func (p *parser) or() (predicate, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.accept(kindOr) {
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		l, r := left, right
		left = func(ctx visibility.Context) bool { return l(ctx) || r(ctx) }
	}
	return left, nil
}

func (p *parser) and() (predicate, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.accept(kindAnd) {
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		l, r := left, right
		left = func(ctx visibility.Context) bool { return l(ctx) && r(ctx) }
	}
	return left, nil
}

func (p *parser) unary() (predicate, error) {
	if p.accept(kindNot) {
		inner, err := p.unary()
		if err != nil {
			return nil, err
		}
		return func(ctx visibility.Context) bool { return !inner(ctx) }, nil
	}
	return p.primary()
}

func (p *parser) primary() (predicate, error) {
	if p.accept(kindLParen) {
		inner, err := p.or()
		if err != nil {
			return nil, err
		}
		if !p.accept(kindRParen) {
			return nil, fmt.Errorf("visibility/expr: expected \")\" at offset %d", p.peek().pos)
		}
		return inner, nil
	}

	ident := p.next()
	if ident.kind != kindIdent {
		return nil, fmt.Errorf("visibility/expr: expected field name, got %s", ident)
	}
	path := ident.text

	switch {
	case p.accept(kindEq):
		want, err := p.operand()
		if err != nil {
			return nil, err
		}
		return func(ctx visibility.Context) bool { return equals(resolve(ctx, path), want) }, nil
	case p.accept(kindNeq):
		want, err := p.operand()
		if err != nil {
			return nil, err
		}
		return func(ctx visibility.Context) bool { return !equals(resolve(ctx, path), want) }, nil
	case p.accept(kindIn):
		list, err := p.list()
		if err != nil {
			return nil, err
		}
		return func(ctx visibility.Context) bool { return memberOf(resolve(ctx, path), list) }, nil
	default:
		return func(ctx visibility.Context) bool { return truthy(resolve(ctx, path)) }, nil
	}
}

func (p *parser) operand() (operand, error) {
	item := p.next()
	switch item.kind {
	case kindString, kindNumber, kindTrue, kindFalse, kindNull:
		return operand{kind: item.kind, text: item.text}, nil
	case kindIdent:
		// Unquoted words compare as strings: task_type == quiz.
		return operand{kind: kindString, text: item.text}, nil
	default:
		return operand{}, fmt.Errorf("visibility/expr: expected value, got %s", item)
	}
}

func (p *parser) list() ([]operand, error) {
	if !p.accept(kindLBracket) {
		return nil, fmt.Errorf("visibility/expr: expected \"[\" after in, got %s", p.peek())
	}
	var out []operand
	if p.accept(kindRBracket) {
		return out, nil
	}
	for {
		item, err := p.operand()
		if err != nil {
			return nil, err
		}
		out = append(out, item)
		if p.accept(kindRBracket) {
			return out, nil
		}
		if !p.accept(kindComma) {
			return nil, fmt.Errorf("visibility/expr: expected \",\" or \"]\", got %s", p.peek())
		}
	}
}

func resolve(ctx visibility.Context, path string) any {
	if rest, ok := strings.CutPrefix(path, "extras."); ok {
		return walk(ctx.Extras, rest)
	}
	return walk(ctx.Values, path)
}

func walk(values map[string]any, path string) any {
	if values == nil {
		return nil
	}
	if v, ok := values[path]; ok {
		return v
	}
	head, rest, found := strings.Cut(path, ".")
	if !found {
		return nil
	}
	switch nested := values[head].(type) {
	case map[string]any:
		return walk(nested, rest)
	case map[string]string:
		if v, ok := nested[rest]; ok {
			return v
		}
	}
	return nil
}

func equals(value any, want operand) bool {
	switch want.kind {
	case kindNull:
		return value == nil
	case kindTrue, kindFalse:
		return truthy(value) == (want.kind == kindTrue)
	case kindNumber:
		expected, _ := strconv.ParseFloat(want.text, 64)
		got, ok := number(value)
		return ok && got == expected
	default:
		if set, ok := value.([]string); ok {
			for _, entry := range set {
				if entry == want.text {
					return true
				}
			}
			return false
		}
		return text(value) == want.text
	}
}

func memberOf(value any, list []operand) bool {
	for _, item := range list {
		if equals(value, item) {
			return true
		}
	}
	return false
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		trimmed := strings.TrimSpace(v)
		return trimmed != "" && trimmed != "false"
	case []string:
		return len(v) > 0
	case []any:
		return len(v) > 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	default:
		return true
	}
}

func number(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func text(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
