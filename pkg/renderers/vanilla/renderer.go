package vanilla

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-tutordash/pkg/listing"
	"github.com/goliatone/go-tutordash/pkg/model"
	"github.com/goliatone/go-tutordash/pkg/render"
	rendertemplate "github.com/goliatone/go-tutordash/pkg/render/template"
	gotemplate "github.com/goliatone/go-tutordash/pkg/render/template/gotemplate"
	"github.com/goliatone/go-tutordash/pkg/renderers/vanilla/components"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	components       *components.Registry
	theme            *theme.RendererConfig
	sanitizer        *bluemonday.Policy
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponents replaces the field renderer registry.
func WithComponents(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.components = registry
		}
	}
}

// WithTheme applies a resolved theme: tokens become CSS variables on the
// overlay and the vanilla.stylesheet asset, when present, is linked.
func WithTheme(themeCfg *theme.RendererConfig) Option {
	return func(cfg *config) {
		cfg.theme = themeCfg
	}
}

// WithSanitizer overrides the policy applied to field help text.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(cfg *config) {
		if policy != nil {
			cfg.sanitizer = policy
		}
	}
}

// Renderer produces the modal HTML for a form spec.
type Renderer struct {
	templates  rendertemplate.TemplateRenderer
	components *components.Registry
	theme      *theme.RendererConfig
	sanitizer  *bluemonday.Policy
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.components == nil {
		cfg.components = components.NewDefaultRegistry()
	}
	if cfg.sanitizer == nil {
		cfg.sanitizer = helpSanitizer()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{
		templates:  renderer,
		components: cfg.components,
		theme:      cfg.theme,
		sanitizer:  cfg.sanitizer,
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes the modal: header, tabs, banner, visible fields in declared
// order and the action row.
func (r *Renderer) Render(ctx context.Context, spec model.FormSpec, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	fieldsHTML, err := r.renderFields(ctx, spec, options)
	if err != nil {
		return nil, err
	}

	data := map[string]any{
		"form_id":       spec.ID,
		"overlay_class": joinClasses("form-modal-overlay", spec.Class),
		"title":         spec.Title,
		"subtitle":      spec.Subtitle,
		"show_close":    spec.ShowClose,
		"close_href":    spec.CloseHref,
		"tabs":          tabData(spec, options.ResolveActiveTab(spec)),
		"general_error": options.GeneralError,
		"form_method":   strings.ToLower(options.ResolveMethod(spec)),
		"form_action":   spec.Action,
		"enctype":       enctype(spec),
		"submitting":    options.Submitting,
		"hidden_inputs": hiddenData(options.HiddenInputs),
		"fields_html":   fieldsHTML,
		"actions":       actionData(spec.Actions, options.Submitting),
	}
	r.addTheme(data)

	result, err := r.templates.RenderTemplate(modalTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) renderFields(ctx context.Context, spec model.FormSpec, options render.RenderOptions) (string, error) {
	var buf bytes.Buffer
	for _, field := range options.VisibleFields(spec) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		fn, _ := r.components.Lookup(field.Type)
		data := components.FieldData{
			Value:    options.Value(field),
			Error:    options.FieldError(field.Name),
			Help:     r.sanitizeHelp(field.Help),
			Disabled: field.Disabled || options.Submitting,
		}
		if err := fn(&buf, field, data); err != nil {
			return "", fmt.Errorf("vanilla renderer: field %q: %w", field.Name, err)
		}
		buf.WriteByte('\n')
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// PaginationOptions configures RenderPagination.
type PaginationOptions struct {
	// Action is the URL the page form submits to; empty means the current URL.
	Action string
	// Loading disables every control while a fetch is in flight.
	Loading bool
	// HiddenInputs carry the committed query (search, filter) across pages.
	HiddenInputs []render.HiddenField
}

// RenderPagination renders the page controls for a listing. Nothing is
// rendered when there is a single page or none.
func (r *Renderer) RenderPagination(_ context.Context, pagination listing.Pagination, options PaginationOptions) ([]byte, error) {
	if pagination.TotalPages <= 1 {
		return nil, nil
	}
	current := pagination.CurrentPage
	if current < 1 {
		current = 1
	}

	labels := make([]map[string]any, 0, listing.VisibleWindow+2)
	for _, label := range listing.PageLabels(current, pagination.TotalPages) {
		classes := "pagination__page-btn"
		if label.Page == current && !label.Ellipsis {
			classes += " pagination__page-btn--active"
		}
		labels = append(labels, map[string]any{
			"page":     label.Page,
			"ellipsis": label.Ellipsis,
			"classes":  classes,
			"disabled": options.Loading,
		})
	}

	result, err := r.templates.RenderTemplate(paginationTemplate, map[string]any{
		"current_page":      current,
		"total_pages":       pagination.TotalPages,
		"form_action":       options.Action,
		"hidden_inputs":     hiddenData(options.HiddenInputs),
		"labels":            labels,
		"previous_page":     strconv.Itoa(max(current-1, 1)),
		"next_page":         strconv.Itoa(min(current+1, pagination.TotalPages)),
		"previous_disabled": current <= 1 || options.Loading,
		"next_disabled":     current >= pagination.TotalPages || options.Loading,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render pagination: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) addTheme(data map[string]any) {
	if r.theme == nil {
		return
	}
	data["theme_name"] = r.theme.Theme
	data["theme_variant"] = r.theme.Variant
	data["theme_style"] = cssVarsStyle(r.theme.CSSVars)
	if r.theme.AssetURL != nil {
		data["stylesheet"] = r.theme.AssetURL(StylesheetAssetKey)
	}
}

func (r *Renderer) sanitizeHelp(help string) string {
	help = strings.TrimSpace(help)
	if help == "" {
		return ""
	}
	return strings.TrimSpace(r.sanitizer.Sanitize(help))
}

var (
	helpPolicyOnce sync.Once
	helpPolicy     *bluemonday.Policy
)

// helpSanitizer allows inline emphasis and links in help text.
func helpSanitizer() *bluemonday.Policy {
	helpPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("em", "strong", "b", "i", "code", "br", "small")
		policy.AllowStandardURLs()
		policy.AllowAttrs("href").OnElements("a")
		policy.RequireNoFollowOnLinks(true)
		helpPolicy = policy
	})
	return helpPolicy
}

func tabData(spec model.FormSpec, active string) []map[string]any {
	if len(spec.Tabs) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(spec.Tabs))
	for _, tab := range spec.Tabs {
		classes := "tab-button"
		if tab.Key == active {
			classes += " active"
		}
		out = append(out, map[string]any{
			"key":     tab.Key,
			"label":   tab.Label,
			"href":    tab.Href,
			"classes": classes,
		})
	}
	return out
}

func actionData(actions []model.Action, submitting bool) []map[string]any {
	if len(actions) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(actions))
	for _, action := range actions {
		variant := action.Variant
		if variant == "" {
			variant = model.ActionLink
		}
		loading := submitting && action.IsSubmit()
		label := action.Label
		if loading && action.LoadingLabel != "" {
			label = action.LoadingLabel
		}

		base := "btn-" + string(variant)
		classes := []string{base, base + "--medium"}
		if action.FullWidth && variant != model.ActionLink {
			classes = append(classes, base+"--full-width")
		}
		if loading && variant != model.ActionLink {
			classes = append(classes, base+"--loading")
		}

		kind := model.ActionTypeButton
		if action.IsSubmit() {
			kind = model.ActionTypeSubmit
		}
		out = append(out, map[string]any{
			"label":    label,
			"type":     string(kind),
			"classes":  strings.Join(classes, " "),
			"disabled": action.Disabled || loading,
			"href":     action.Href,
			"name":     action.Name,
		})
	}
	return out
}

func hiddenData(fields []render.HiddenField) []map[string]any {
	normalized := render.HiddenFields(fields...)
	out := make([]map[string]any, 0, len(normalized))
	for _, field := range normalized {
		out = append(out, map[string]any{"name": field.Name, "value": field.Value})
	}
	return out
}

func enctype(spec model.FormSpec) string {
	for _, field := range spec.Fields {
		if field.Type == model.FieldTypeFile {
			return "multipart/form-data"
		}
	}
	return "application/x-www-form-urlencoded"
}

func joinClasses(parts ...string) string {
	var words []string
	for _, part := range parts {
		words = append(words, strings.Fields(part)...)
	}
	return strings.Join(words, " ")
}
