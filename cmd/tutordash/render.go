package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-tutordash/internal/dashboard"
	"github.com/goliatone/go-tutordash/pkg/model"
	"github.com/goliatone/go-tutordash/pkg/openapi"
	"github.com/goliatone/go-tutordash/pkg/render"
	"github.com/goliatone/go-tutordash/pkg/renderers/props"
	"github.com/goliatone/go-tutordash/pkg/renderers/tui"
	"github.com/goliatone/go-tutordash/pkg/renderers/vanilla"
)

var renderFlags struct {
	renderer     string
	output       string
	format       string
	course       int
	resourceType string
	values       []string
	openapi      string
	operation    string
}

var renderCmd = &cobra.Command{
	Use:   "render [form-id]",
	Short: "Render a form as HTML, JSON props or serialized values",
	Long: `Render writes one form through the selected renderer without submitting it.

The form is either a known form id or, with --openapi and --operation, the
request body of an OpenAPI operation.

Example:
  tutordash render login
  tutordash render material-create --resource-type video_link --renderer props
  tutordash render --openapi api.yaml --operation createCourse -o course.html`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	flags := renderCmd.Flags()
	flags.StringVarP(&renderFlags.renderer, "renderer", "r", "vanilla", "renderer: vanilla, props or tui")
	flags.StringVarP(&renderFlags.output, "output", "o", "", "output file (stdout if empty)")
	flags.StringVar(&renderFlags.format, "format", string(tui.OutputFormatJSON), "tui output format: json, form or pretty")
	flags.IntVar(&renderFlags.course, "course", 0, "course id for course scoped forms")
	flags.StringVar(&renderFlags.resourceType, "resource-type", "", "material resource type")
	flags.StringArrayVar(&renderFlags.values, "value", nil, "initial value as key=value (repeatable)")
	flags.StringVar(&renderFlags.openapi, "openapi", "", "OpenAPI document path or URL")
	flags.StringVar(&renderFlags.operation, "operation", "", "operation id inside --openapi")
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	values, err := parseValues(renderFlags.values)
	if err != nil {
		return err
	}
	target := formTarget{courseID: renderFlags.course, resourceType: renderFlags.resourceType, values: values}

	var spec model.FormSpec
	switch {
	case renderFlags.openapi != "":
		if renderFlags.operation == "" {
			return fmt.Errorf("--operation is required with --openapi")
		}
		spec, err = operationForm(ctx, renderFlags.openapi, renderFlags.operation)
	case len(args) == 1:
		target.id = args[0]
		spec, err = resolveSpec(ctx, app.forms, app.api, app.logger, target)
	default:
		return fmt.Errorf("a form id or --openapi and --operation are required")
	}
	if err != nil {
		return err
	}
	target.id = spec.ID

	registry, err := renderers(renderFlags.format)
	if err != nil {
		return err
	}
	renderer, err := registry.Get(renderFlags.renderer)
	if err != nil {
		return err
	}
	engine, err := newEngine(spec, target, app.logger, nil)
	if err != nil {
		return err
	}
	options := engine.RenderOptions()
	if target.courseID > 0 {
		options.HiddenInputs = render.HiddenFields(render.Hidden("course_id", target.courseID))
	}

	out, err := renderer.Render(ctx, spec, options)
	if err != nil {
		return fmt.Errorf("render %s: %w", spec.ID, err)
	}
	if renderFlags.output == "" {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return err
	}
	if err := os.WriteFile(renderFlags.output, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Form written to %s\n", renderFlags.output)
	return nil
}

// renderers registers the HTML, props and serializing renderers. The HTML
// renderer carries the configured theme.
func renderers(format string) (*render.Registry, error) {
	html, err := vanilla.New(vanilla.WithTheme(dashboard.StaticTheme(
		app.cfg.Server.Theme, app.cfg.Server.ThemeVariant, app.cfg.Server.ThemeTokens,
	)))
	if err != nil {
		return nil, err
	}
	serializer, err := tui.New(tui.WithOutputFormat(tui.OutputFormat(format)), tui.WithLogger(app.logger))
	if err != nil {
		return nil, err
	}
	registry := render.NewRegistry()
	registry.MustRegister(html)
	registry.MustRegister(props.New())
	registry.MustRegister(serializer)
	return registry, nil
}

func operationForm(ctx context.Context, location, operationID string) (model.FormSpec, error) {
	src, err := openapi.ParseSource(location)
	if err != nil {
		return model.FormSpec{}, err
	}
	raw, err := openapi.NewLoader(openapi.WithHTTPFallback(app.cfg.API.Timeout)).Load(ctx, src)
	if err != nil {
		return model.FormSpec{}, err
	}
	return openapi.FormFromOperation(ctx, raw, operationID)
}
