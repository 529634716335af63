package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/goliatone/go-tutordash/internal/dashboard"
	"github.com/goliatone/go-tutordash/pkg/form"
	"github.com/goliatone/go-tutordash/pkg/model"
	"github.com/goliatone/go-tutordash/pkg/renderers/tui"
)

// errNotInteractive is returned when a prompt would read from a pipe.
var errNotInteractive = errors.New("standard input is not a terminal")

var fillFlags struct {
	course       int
	resourceType string
	values       []string
	format       string
	dryRun       bool
}

var fillCmd = &cobra.Command{
	Use:   "fill <form-id>",
	Short: "Fill in a form interactively and submit it",
	Long: `Fill prompts for each visible field of a form and submits the answers to
the platform API. Fields the API rejects are prompted again.

Forms without an API action, or any form with --dry-run, print the collected
values instead.

Example:
  tutordash fill contact-manual
  tutordash fill unit-create --course 12
  tutordash fill material-create --course 12 --resource-type pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runFill,
}

func init() {
	flags := fillCmd.Flags()
	flags.IntVar(&fillFlags.course, "course", 0, "course id for course scoped forms")
	flags.StringVar(&fillFlags.resourceType, "resource-type", "", "material resource type")
	flags.StringArrayVar(&fillFlags.values, "value", nil, "initial value as key=value (repeatable)")
	flags.StringVar(&fillFlags.format, "format", string(tui.OutputFormatPrettyText), "output format for collected values: json, form or pretty")
	flags.BoolVar(&fillFlags.dryRun, "dry-run", false, "print the values instead of submitting")
}

func runFill(cmd *cobra.Command, args []string) error {
	values, err := parseValues(fillFlags.values)
	if err != nil {
		return err
	}
	target := formTarget{
		id:           args[0],
		courseID:     fillFlags.course,
		resourceType: fillFlags.resourceType,
		values:       values,
	}
	var handler dashboard.SubmitHandler
	if !fillFlags.dryRun {
		handler = dashboard.SubmitHandlerFor(app.api, target.id)
	}
	renderer, err := prompter(cmd, tui.OutputFormat(fillFlags.format))
	if err != nil {
		return err
	}
	spec, collected, err := fill(cmd.Context(), renderer, target, handler)
	if err != nil {
		return err
	}
	if handler != nil {
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s saved\n", firstNonEmpty(spec.Title, spec.ID))
		return err
	}
	out, err := renderer.Serialize(spec.Fields, collected)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}

// prompter returns a terminal renderer writing prompts to stderr.
func prompter(cmd *cobra.Command, format tui.OutputFormat) (*tui.Renderer, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errNotInteractive
	}
	return tui.New(
		tui.WithPromptDriver(tui.NewSurveyDriver(cmd.ErrOrStderr())),
		tui.WithOutputFormat(format),
		tui.WithTheme(tui.Theme{ErrorPrefix: "✗ "}),
		tui.WithLogger(app.logger),
	)
}

// fill runs the prompt loop. With a handler the values go to the API;
// without one they are returned to the caller.
func fill(ctx context.Context, renderer *tui.Renderer, target formTarget, handler dashboard.SubmitHandler) (model.FormSpec, model.Values, error) {
	spec, err := resolveSpec(ctx, app.forms, app.api, app.logger, target)
	if err != nil {
		return model.FormSpec{}, nil, err
	}
	var collected model.Values
	engine, err := newEngine(spec, target, app.logger, func(ctx context.Context, values model.Values) error {
		collected = values
		if handler != nil {
			return handler(ctx, target.courseID, values)
		}
		return nil
	})
	if err != nil {
		return model.FormSpec{}, nil, err
	}

	outcome, err := renderer.Fill(ctx, engine)
	if err != nil {
		return spec, nil, err
	}
	if outcome != form.OutcomeSubmitted {
		return spec, nil, fmt.Errorf("%s was not submitted (%s)", spec.ID, outcome)
	}
	app.logger.Info("form submitted", zap.String("form", spec.ID), zap.Bool("api", handler != nil))
	return spec, collected, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
