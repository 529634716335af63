package gotemplate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	gotemplatepkg "github.com/goliatone/go-template"

	"github.com/goliatone/go-tutordash/pkg/render/template"
)

// Option configures an Engine.
type Option func(*config)

type config struct {
	baseDir   string
	files     fs.FS
	extension string
	filters   map[string]template.FilterFunc
	globals   map[string]any
	upstream  []gotemplatepkg.Option
}

// WithBaseDir loads templates from a directory on disk. Disk templates
// shadow embedded ones with the same name, which lets operators override the
// modal chrome without rebuilding.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from files.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.files = files
	}
}

// WithExtension sets the suffix appended to template names lacking one.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.extension = ext
	}
}

// WithFilter registers a filter when the engine is built.
func WithFilter(name string, fn template.FilterFunc) Option {
	return func(cfg *config) {
		if cfg.filters == nil {
			cfg.filters = map[string]template.FilterFunc{}
		}
		cfg.filters[strings.TrimSpace(name)] = fn
	}
}

// WithGlobalData seeds values visible to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if cfg.globals == nil {
			cfg.globals = map[string]any{}
		}
		for key, value := range data {
			cfg.globals[strings.TrimSpace(key)] = value
		}
	}
}

// WithGoTemplateOptions accepts go-template engine options so callers that
// configure both engines can share one option list. The pongo2 engine does
// not apply them; it only keeps them for UpstreamOptions.
func WithGoTemplateOptions(opts ...gotemplatepkg.Option) Option {
	return func(cfg *config) {
		cfg.upstream = append(cfg.upstream, opts...)
	}
}

// Engine is a pongo2 template set with a compiled template cache.
type Engine struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	cache     map[string]*pongo2.Template
	extension string
	upstream  []gotemplatepkg.Option
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an engine. At least one of WithFS or WithBaseDir is required.
func New(options ...Option) (*Engine, error) {
	cfg := config{extension: ".tmpl"}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.baseDir == "" && cfg.files == nil {
		return nil, errors.New("gotemplate: a template directory or fs.FS is required")
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: template dir %q: %w", cfg.baseDir, err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.files != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.files))
	}

	e := &Engine{
		set:       pongo2.NewSet("tutordash", loaders...),
		cache:     map[string]*pongo2.Template{},
		extension: cfg.extension,
		upstream:  cfg.upstream,
	}
	registerBuiltinFilters()

	if err := e.GlobalContext(cfg.globals); err != nil {
		return nil, err
	}
	for name, fn := range cfg.filters {
		if err := e.RegisterFilter(name, fn); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// UpstreamOptions returns the go-template options passed at construction.
func (e *Engine) UpstreamOptions() []gotemplatepkg.Option {
	return append([]gotemplatepkg.Option(nil), e.upstream...)
}

// RenderTemplate executes a named template.
func (e *Engine) RenderTemplate(name string, data map[string]any, out ...io.Writer) (string, error) {
	path := name
	if e.extension != "" && !strings.HasSuffix(path, e.extension) {
		path += e.extension
	}
	tmpl, err := e.lookup(path)
	if err != nil {
		return "", err
	}
	return e.execute(tmpl, path, data, out)
}

// RenderString compiles and executes an inline template. Inline templates are
// not cached.
func (e *Engine) RenderString(content string, data map[string]any, out ...io.Writer) (string, error) {
	tmpl, err := e.set.FromString(content)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse inline template: %w", err)
	}
	return e.execute(tmpl, "inline", data, out)
}

func (e *Engine) execute(tmpl *pongo2.Template, name string, data map[string]any, out []io.Writer) (string, error) {
	var buf bytes.Buffer
	e.mu.RLock()
	err := tmpl.ExecuteWriter(pongo2.Context(data), &buf)
	e.mu.RUnlock()
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute %s: %w", name, err)
	}
	for _, w := range out {
		if _, err := w.Write(buf.Bytes()); err != nil {
			return "", fmt.Errorf("gotemplate: write %s: %w", name, err)
		}
	}
	return buf.String(), nil
}

// RegisterFilter adds a process-wide pongo2 filter. Registering a name twice
// is an error.
func (e *Engine) RegisterFilter(name string, fn template.FilterFunc) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("gotemplate: filter name and function are required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: filter %q already registered", name)
	}
	return pongo2.RegisterFilter(name, func(in, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var arg any
		if param != nil {
			arg = param.Interface()
		}
		result, err := fn(in.Interface(), arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

// GlobalContext merges data into the globals of every template.
func (e *Engine) GlobalContext(data map[string]any) error {
	if len(data) == 0 {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.set.Globals == nil {
		e.set.Globals = pongo2.Context{}
	}
	e.set.Globals.Update(pongo2.Context(data))
	return nil
}

func (e *Engine) lookup(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.cache[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.cache[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load %s: %w", path, err)
	}
	e.cache[path] = tmpl
	return tmpl, nil
}

var builtinOnce sync.Once

func registerBuiltinFilters() {
	builtinOnce.Do(func() {
		if !pongo2.FilterExists("trim") {
			_ = pongo2.RegisterFilter("trim", func(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
				return pongo2.AsValue(strings.TrimSpace(in.String())), nil
			})
		}
		if !pongo2.FilterExists("classes") {
			_ = pongo2.RegisterFilter("classes", filterClasses)
		}
	})
}

// filterClasses joins the non-empty words of a list or space separated
// string: {{ parts|classes }}.
func filterClasses(in, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	var words []string
	if in.CanSlice() {
		for i := 0; i < in.Len(); i++ {
			words = append(words, strings.Fields(in.Index(i).String())...)
		}
	} else {
		words = strings.Fields(in.String())
	}
	return pongo2.AsValue(strings.Join(words, " ")), nil
}
