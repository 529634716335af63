package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"time"
)

// ErrHTTPDisabled is returned for URL sources when no HTTP client is set.
var ErrHTTPDisabled = errors.New("openapi: http loading disabled")

// maxDocumentSize bounds remote documents.
const maxDocumentSize = 8 << 20

// Loader fetches raw OpenAPI documents.
type Loader struct {
	fs   fs.FS
	http *http.Client
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithFileSystem resolves SourceKindFS locations against files.
func WithFileSystem(files fs.FS) LoaderOption {
	return func(l *Loader) {
		l.fs = files
	}
}

// WithHTTPClient enables URL sources through client.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		l.http = client
	}
}

// WithHTTPFallback enables URL sources with a default client and timeout.
func WithHTTPFallback(timeout time.Duration) LoaderOption {
	return func(l *Loader) {
		if l.http == nil {
			l.http = &http.Client{Timeout: timeout}
		}
	}
}

// NewLoader constructs a Loader. URL sources are disabled unless an HTTP
// option is given.
func NewLoader(options ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Load returns the bytes behind src.
func (l *Loader) Load(ctx context.Context, src Source) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if src.Location == "" {
		return nil, errors.New("openapi: source location is required")
	}

	switch src.Kind {
	case SourceKindFile:
		data, err := os.ReadFile(src.Location)
		if err != nil {
			return nil, fmt.Errorf("openapi: read %s: %w", src.Location, err)
		}
		return data, nil
	case SourceKindFS:
		if l.fs == nil {
			return nil, errors.New("openapi: filesystem is not configured")
		}
		data, err := fs.ReadFile(l.fs, src.Location)
		if err != nil {
			return nil, fmt.Errorf("openapi: read %s: %w", src.Location, err)
		}
		return data, nil
	case SourceKindURL:
		if l.http == nil {
			return nil, ErrHTTPDisabled
		}
		return l.fetch(ctx, src.Location)
	default:
		return nil, fmt.Errorf("openapi: unsupported source kind %q", src.Kind)
	}
}

func (l *Loader) fetch(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("openapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.5")

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openapi: fetch %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openapi: fetch %s: unexpected status %d", location, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("openapi: read %s: %w", location, err)
	}
	return data, nil
}
