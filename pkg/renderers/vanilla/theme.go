package vanilla

import (
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// ThemeConfig derives renderer configuration from a resolved selection:
// variant tokens and assets override the manifest's, and every token is also
// exposed as a --token CSS variable.
func ThemeConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil {
		return nil
	}
	cfg := &theme.RendererConfig{
		Theme:   selection.Theme,
		Variant: selection.Variant,
	}

	tokens := map[string]string{}
	assets := theme.Assets{}
	partials := map[string]string{}
	if manifest := selection.Manifest; manifest != nil {
		maps.Copy(tokens, manifest.Tokens)
		maps.Copy(partials, manifest.Templates)
		assets.Prefix = manifest.Assets.Prefix
		assets.Files = maps.Clone(manifest.Assets.Files)
		if variant, ok := manifest.Variants[selection.Variant]; ok {
			maps.Copy(tokens, variant.Tokens)
			maps.Copy(partials, variant.Templates)
			if variant.Assets.Prefix != "" {
				assets.Prefix = variant.Assets.Prefix
			}
			if assets.Files == nil {
				assets.Files = map[string]string{}
			}
			maps.Copy(assets.Files, variant.Assets.Files)
		}
	}

	cfg.Tokens = tokens
	cfg.Partials = partials
	cfg.CSSVars = make(map[string]string, len(tokens))
	for key, value := range tokens {
		cfg.CSSVars["--"+strings.TrimPrefix(key, "--")] = value
	}
	cfg.AssetURL = func(key string) string {
		file := strings.TrimSpace(assets.Files[key])
		if file == "" {
			return ""
		}
		if strings.Contains(file, "://") || strings.HasPrefix(file, "/") || assets.Prefix == "" {
			return file
		}
		return strings.TrimRight(assets.Prefix, "/") + "/" + path.Clean(file)
	}
	return cfg
}

// SelectTheme resolves name/variant through selector and converts the result.
func SelectTheme(selector theme.ThemeSelector, name, variant string) (*theme.RendererConfig, error) {
	if selector == nil {
		return nil, nil
	}
	selection, err := selector.Select(name, variant)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: select theme %q: %w", name, err)
	}
	return ThemeConfig(selection), nil
}

// cssVarsStyle renders CSS variables as an inline style, sorted by name.
func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := slices.Sorted(maps.Keys(vars))
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		value := strings.TrimSpace(vars[key])
		if value == "" || strings.ContainsAny(value, ";{}") {
			continue
		}
		parts = append(parts, key+": "+value)
	}
	return strings.Join(parts, "; ")
}
