// Package dashboard serves the instructor dashboard over HTTP: server rendered
// form pages backed by the form engine, the paginated network page and JSON
// form descriptors for client-side runtimes.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-tutordash/pkg/client"
	"github.com/goliatone/go-tutordash/pkg/form"
	"github.com/goliatone/go-tutordash/pkg/formspec"
	"github.com/goliatone/go-tutordash/pkg/listing"
	"github.com/goliatone/go-tutordash/pkg/model"
	"github.com/goliatone/go-tutordash/pkg/render"
	gotemplate "github.com/goliatone/go-tutordash/pkg/render/template/gotemplate"
	"github.com/goliatone/go-tutordash/pkg/renderers/props"
	"github.com/goliatone/go-tutordash/pkg/renderers/vanilla"
)

// ErrNoBackend is returned by New without a backend.
var ErrNoBackend = errors.New("dashboard: backend is required")

const stylesheetPath = "/assets/" + vanilla.StylesheetName

// Backend is the part of the API client the dashboard drives.
type Backend interface {
	Authenticated() bool
	Login(ctx context.Context, usernameOrEmail, password string) (client.AuthResult, error)
	Register(ctx context.Context, input client.RegisterInput) (client.AuthResult, error)
	Contacts(ctx context.Context, req listing.Request) (listing.Response[client.Contact], error)
	CreateContact(ctx context.Context, input client.ContactInput) (client.Contact, error)
	Courses(ctx context.Context) ([]client.Course, error)
	Categories(ctx context.Context) ([]client.Category, error)
	CreateCourse(ctx context.Context, values model.Values) (client.Course, error)
	CreateUnit(ctx context.Context, courseID int, input client.UnitInput) (client.Unit, error)
	CreateGoal(ctx context.Context, courseID int, input client.GoalInput) (client.Goal, error)
	CreateMaterial(ctx context.Context, courseID int, values model.Values, linkType bool) (client.Material, error)
}

var _ Backend = (*client.Client)(nil)

// Option configures a Server.
type Option func(*Server)

// WithForms replaces the built-in form store.
func WithForms(store *formspec.Store) Option {
	return func(s *Server) {
		if store != nil {
			s.forms = store
		}
	}
}

// WithLogger sets the request and handler logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPageSize sets the network page size.
func WithPageSize(size int) Option {
	return func(s *Server) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// WithSort sets the network sort key.
func WithSort(sort string) Option {
	return func(s *Server) {
		if sort != "" {
			s.sort = sort
		}
	}
}

// WithTheme applies a resolved theme to the HTML renderer.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(s *Server) {
		s.theme = cfg
	}
}

// WithSubmitHandler registers the submit handler of a form that has no
// built-in handler, such as forms loaded from a directory or an OpenAPI
// document.
func WithSubmitHandler(formID string, fn SubmitHandler) Option {
	return func(s *Server) {
		if formID != "" && fn != nil {
			s.handlers[formID] = fn
		}
	}
}

// WithoutCSRF disables the double submit cookie check on form posts.
func WithoutCSRF() Option {
	return func(s *Server) {
		s.csrf = false
	}
}

// Server is the dashboard HTTP application.
type Server struct {
	backend  Backend
	forms    *formspec.Store
	registry *render.Registry
	html     *vanilla.Renderer
	pages    *gotemplate.Engine
	theme    *theme.RendererConfig
	handlers map[string]SubmitHandler
	auth     *form.SharedDraft
	logger   *zap.Logger
	pageSize int
	sort     string
	csrf     bool
	router   *gin.Engine
}

// New builds the server and its routes.
func New(backend Backend, opts ...Option) (*Server, error) {
	if backend == nil {
		return nil, ErrNoBackend
	}
	s := &Server{
		backend:  backend,
		forms:    formspec.Builtin(),
		handlers: map[string]SubmitHandler{},
		auth:     form.NewSharedDraft(),
		logger:   zap.NewNop(),
		pageSize: listing.DefaultPageSize,
		sort:     listing.SortAlphabetical,
		csrf:     true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	var htmlOpts []vanilla.Option
	if s.theme != nil {
		htmlOpts = append(htmlOpts, vanilla.WithTheme(s.theme))
	}
	html, err := vanilla.New(htmlOpts...)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	s.html = html

	s.registry = render.NewRegistry()
	if err := s.registry.Register(html); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	if err := s.registry.Register(props.New()); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	pages, err := gotemplate.New(gotemplate.WithFS(TemplatesFS()), gotemplate.WithExtension(".tmpl"))
	if err != nil {
		return nil, fmt.Errorf("dashboard: page templates: %w", err)
	}
	s.pages = pages
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down within grace.
func (s *Server) Run(ctx context.Context, addr string, grace time.Duration) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("dashboard: listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("dashboard: shutdown: %w", err)
	}
	return nil
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.logRequests())

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.StaticFS("/assets", http.FS(vanilla.AssetsFS()))
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/network")
	})

	router.GET("/forms/:id", s.showForm)
	router.POST("/forms/:id", s.checkCSRF, s.submitForm)
	router.GET("/network", s.showNetwork)
	router.GET("/courses", s.showCourses)

	api := router.Group("/api")
	api.GET("/forms", s.listForms)
	api.GET("/forms/:id", s.formDescriptor)

	router.NoRoute(func(c *gin.Context) {
		notFound(c, "no route for "+c.Request.URL.Path)
	})
	return router
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		s.logger.Info("http request", fields...)
	}
}

func (s *Server) renderPage(c *gin.Context, status int, title, body, notice string) {
	page, err := s.pages.RenderTemplate(pageTemplate, map[string]any{
		"title":         title,
		"stylesheet":    stylesheetPath,
		"body_html":     body,
		"notice":        notice,
		"authenticated": s.backend.Authenticated(),
	})
	if err != nil {
		s.logger.Error("render page", zap.String("title", title), zap.Error(err))
		c.String(http.StatusInternalServerError, "render page failed")
		return
	}
	c.Data(status, "text/html; charset=utf-8", []byte(page))
}
