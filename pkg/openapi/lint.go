package openapi

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/goliatone/go-tutordash/pkg/formspec"
)

// Violation is one problem found by Lint.
type Violation struct {
	Location string
	Message  string
}

// Lint parses raw and reports x-order values that are not numbers, request
// bodies that cannot become a form and forms that break the descriptor
// rules. Violations are sorted by location.
func Lint(ctx context.Context, raw []byte) ([]Violation, error) {
	spec, err := Parse(ctx, raw)
	if err != nil {
		return nil, err
	}
	ops := Operations(spec)
	ids := make([]string, 0, len(ops))
	for id := range ops {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var result []Violation
	for _, id := range ids {
		op := ops[id]
		base := []string{"operation", id}
		if body, _ := requestSchema(op.Operation); body != nil {
			names := make([]string, 0, len(body.Properties))
			for name := range body.Properties {
				names = append(names, name)
			}
			slices.Sort(names)
			for _, name := range names {
				ref := body.Properties[name]
				if ref == nil || ref.Value == nil {
					continue
				}
				value, present := ref.Value.Extensions[orderExtension]
				if _, ok := order(ref); present && !ok {
					result = append(result, Violation{
						Location: location(base, "requestBody", "properties."+name),
						Message:  fmt.Sprintf("%s must be a number, found %T", orderExtension, value),
					})
				}
			}
		}

		form, err := FormFromSchema(op)
		switch {
		case errors.Is(err, ErrNoRequestBody):
			continue
		case err != nil:
			result = append(result, Violation{Location: location(base), Message: err.Error()})
			continue
		}
		if err := formspec.Check(form); err != nil {
			result = append(result, Violation{Location: location(base), Message: err.Error()})
		}
	}

	slices.SortStableFunc(result, func(a, b Violation) int {
		return strings.Compare(a.Location, b.Location)
	})
	return result, nil
}

func location(base []string, segments ...string) string {
	return strings.Join(append(slices.Clone(base), segments...), " > ")
}
