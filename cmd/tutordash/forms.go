package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-tutordash/pkg/client"
	"github.com/goliatone/go-tutordash/pkg/form"
	"github.com/goliatone/go-tutordash/pkg/formspec"
	"github.com/goliatone/go-tutordash/pkg/model"
	"github.com/goliatone/go-tutordash/pkg/visibility/expr"
)

var formsCmd = &cobra.Command{
	Use:   "forms",
	Short: "List the available forms",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listForms(cmd, app.forms)
	},
}

func listForms(cmd *cobra.Command, forms *formspec.Store) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tFIELDS")
	for _, id := range forms.IDs() {
		spec := forms.MustGet(id)
		fmt.Fprintf(w, "%s\t%s\t%d\n", id, spec.Title, len(spec.Fields))
	}
	return w.Flush()
}

// formTarget names a form and the runtime inputs that shape it.
type formTarget struct {
	id           string
	courseID     int
	resourceType string
	values       model.Values
}

// resolveSpec returns the form for target. Course categories come from the
// API when it answers; material forms follow the requested resource type.
func resolveSpec(ctx context.Context, forms *formspec.Store, api *client.Client, logger *zap.Logger, target formTarget) (model.FormSpec, error) {
	switch target.id {
	case formspec.MaterialForm:
		return formspec.MaterialFormFor(target.resourceType), nil
	case formspec.CourseCreateForm:
		if api != nil {
			categories, err := api.Categories(ctx)
			if err == nil && len(categories) > 0 {
				return forms.WithOptions(target.id, "category", client.CategoryOptions(categories))
			}
			if err != nil {
				logger.Warn("course categories unavailable", zap.Error(err))
			}
		}
	}
	spec, ok := forms.Get(target.id)
	if !ok {
		return model.FormSpec{}, fmt.Errorf("%w: %q (see tutordash forms)", formspec.ErrFormNotFound, target.id)
	}
	return spec, nil
}

func newEngine(spec model.FormSpec, target formTarget, logger *zap.Logger, submit form.SubmitFunc) (*form.Engine, error) {
	initial := target.values.Clone()
	if initial == nil {
		initial = model.Values{}
	}
	if target.id == formspec.MaterialForm && target.resourceType != "" {
		initial["resource_type"] = target.resourceType
	}
	opts := []form.Option{
		form.WithVisibility(expr.New()),
		form.WithLogger(logger),
		form.WithInitialValues(initial),
	}
	if submit != nil {
		opts = append(opts, form.WithSubmit(submit))
	}
	return form.New(spec.Fields, opts...)
}

// parseValues turns repeated key=value flags into initial values. Repeating a
// key collects a list.
func parseValues(pairs []string) (model.Values, error) {
	values := model.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid value %q (expected key=value)", pair)
		}
		switch current := values[key].(type) {
		case nil:
			values[key] = value
		case string:
			values[key] = []string{current, value}
		case []string:
			values[key] = append(current, value)
		}
	}
	return values, nil
}
