package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-tutordash/pkg/formspec"
	"github.com/goliatone/go-tutordash/pkg/openapi"
)

type violation struct {
	file     string
	location string
	message  string
}

var lintCmd = &cobra.Command{
	Use:   "lint <path>...",
	Short: "Check form documents and OpenAPI files",
	Long: `Lint validates form documents (YAML or JSON, or directories of them)
against the form schema and descriptor rules, and OpenAPI documents for
request bodies that cannot become forms.

Example:
  tutordash lint forms/
  tutordash lint forms/course.yaml api/openapi.yaml`,
	Args:        cobra.MinimumNArgs(1),
	Annotations: map[string]string{skipSetup: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var all []violation
		for _, path := range args {
			found, err := lintPath(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("lint %s: %w", path, err)
			}
			all = append(all, found...)
		}
		return report(cmd.ErrOrStderr(), all)
	},
}

func lintPath(ctx context.Context, path string) ([]violation, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		if _, err := formspec.LoadFS(os.DirFS(path)); err != nil {
			return []violation{{file: path, location: "forms", message: err.Error()}}, nil
		}
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if !isOpenAPI(raw) {
		if _, err := formspec.ParseDocument(raw, path); err != nil {
			return []violation{{file: path, location: "forms", message: err.Error()}}, nil
		}
		return nil, nil
	}

	found, err := openapi.Lint(ctx, raw)
	if err != nil {
		return nil, err
	}
	result := make([]violation, 0, len(found))
	for _, v := range found {
		result = append(result, violation{file: path, location: v.Location, message: v.Message})
	}
	return result, nil
}

// isOpenAPI reports whether raw is a YAML or JSON document with a top level
// openapi key.
func isOpenAPI(raw []byte) bool {
	var head struct {
		OpenAPI string `yaml:"openapi"`
	}
	return yaml.Unmarshal(raw, &head) == nil && head.OpenAPI != ""
}

func report(out io.Writer, violations []violation) error {
	if len(violations) == 0 {
		return nil
	}
	slices.SortFunc(violations, func(a, b violation) int {
		return cmp.Or(
			cmp.Compare(a.file, b.file),
			cmp.Compare(a.location, b.location),
			cmp.Compare(a.message, b.message),
		)
	})
	for _, v := range violations {
		fmt.Fprintf(out, "%s: %s -> %s\n", v.file, v.location, v.message)
	}
	return fmt.Errorf("lint: %d problem(s)", len(violations))
}
