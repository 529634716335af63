package dashboard

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-tutordash/pkg/renderers/vanilla"
)

// StaticTheme builds a theme configuration from configured tokens, for
// deployments without a theme registry. An empty name yields nil.
func StaticTheme(name, variant string, tokens map[string]string) *theme.RendererConfig {
	if name == "" {
		return nil
	}
	return vanilla.ThemeConfig(&theme.Selection{
		Theme:   name,
		Variant: variant,
		Manifest: &theme.Manifest{
			Name:    name,
			Version: "1.0.0",
			Tokens:  tokens,
		},
	})
}
