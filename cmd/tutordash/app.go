package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"slices"

	"go.uber.org/zap"

	"github.com/goliatone/go-tutordash/internal/config"
	"github.com/goliatone/go-tutordash/internal/logging"
	"github.com/goliatone/go-tutordash/pkg/client"
	"github.com/goliatone/go-tutordash/pkg/formspec"
	"github.com/goliatone/go-tutordash/pkg/openapi"
	"github.com/goliatone/go-tutordash/pkg/session"
)

// application holds what commands share for one invocation.
type application struct {
	cfg     config.Config
	logger  *zap.Logger
	keeper  *session.Keeper
	api     *client.Client
	forms   *formspec.Store
	closers []func() error
}

func newApplication(ctx context.Context, cfg config.Config) (*application, error) {
	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	a := &application{cfg: cfg, logger: logger, closers: []func() error{closeLog}}

	store, err := openStore(ctx, cfg.Session)
	if err != nil {
		return nil, errors.Join(err, a.Close())
	}
	a.closers = append(a.closers, store.Close)

	a.keeper, err = session.Open(ctx, store, cfg.Session.Profile, session.WithLogger(logger))
	if err != nil {
		return nil, errors.Join(err, a.Close())
	}

	a.api, err = client.New(cfg.API.BaseURL,
		client.WithCredentials(a.keeper),
		client.WithLogger(logger),
		client.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
	)
	if err != nil {
		return nil, errors.Join(err, a.Close())
	}

	a.forms, err = loadForms(ctx, cfg, logger)
	if err != nil {
		return nil, errors.Join(err, a.Close())
	}
	logger.Debug("tutordash ready",
		zap.String("api", cfg.API.BaseURL),
		zap.String("profile", cfg.Session.Profile),
		zap.String("session_backend", cfg.Session.Backend),
		zap.Int("forms", len(a.forms.IDs())),
	)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *application) Close() error {
	var errs []error
	for _, closeFn := range slices.Backward(a.closers) {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func openStore(ctx context.Context, cfg config.Session) (session.Store, error) {
	switch cfg.Backend {
	case "memory":
		return session.NewMemoryStore(), nil
	case "sqlite":
		return session.OpenSQLite(ctx, cfg.SQLitePath)
	case "redis":
		return session.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, session.WithTTL(cfg.Redis.TTL))
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

// loadForms returns the built-in forms, replaced by same-id documents from
// forms.dir, plus one form per OpenAPI operation not already defined.
func loadForms(ctx context.Context, cfg config.Config, logger *zap.Logger) (*formspec.Store, error) {
	forms := formspec.Builtin()
	if cfg.Forms.Dir != "" {
		extra, err := formspec.LoadFS(os.DirFS(cfg.Forms.Dir))
		if err != nil {
			return nil, err
		}
		forms.Merge(extra)
	}
	if cfg.API.OpenAPI == "" {
		return forms, nil
	}

	src, err := openapi.ParseSource(cfg.API.OpenAPI)
	if err != nil {
		return nil, err
	}
	raw, err := openapi.NewLoader(openapi.WithHTTPFallback(cfg.API.Timeout)).Load(ctx, src)
	if err != nil {
		return nil, err
	}
	specs, err := openapi.FormsFromDocument(ctx, raw)
	if err != nil {
		return nil, err
	}
	for _, spec := range specs {
		if _, exists := forms.Get(spec.ID); exists {
			logger.Debug("openapi form shadowed", zap.String("form", spec.ID))
			continue
		}
		if err := forms.Add(spec); err != nil {
			return nil, err
		}
	}
	return forms, nil
}
