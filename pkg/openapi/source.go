package openapi

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// SourceKind enumerates the loader modalities.
type SourceKind string

const (
	SourceKindFile SourceKind = "file"
	SourceKindFS   SourceKind = "fs"
	SourceKindURL  SourceKind = "url"
)

// Source identifies where an OpenAPI document lives.
type Source struct {
	Kind     SourceKind
	Location string
}

// SourceFromFile returns a Source pointing to a file path.
func SourceFromFile(path string) Source {
	return Source{Kind: SourceKindFile, Location: filepath.Clean(path)}
}

// SourceFromFS returns a Source identifying a resource inside an fs.FS.
func SourceFromFS(name string) Source {
	return Source{Kind: SourceKindFS, Location: name}
}

// SourceFromURL validates raw and returns a URL source.
func SourceFromURL(raw string) (Source, error) {
	if _, err := url.ParseRequestURI(raw); err != nil {
		return Source{}, fmt.Errorf("openapi: invalid URL %q: %w", raw, err)
	}
	return Source{Kind: SourceKindURL, Location: raw}, nil
}

// ParseSource picks the source kind from location: http and https URLs load
// remotely, anything else is a file path.
func ParseSource(location string) (Source, error) {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return SourceFromURL(location)
	}
	if strings.TrimSpace(location) == "" {
		return Source{}, fmt.Errorf("openapi: empty source location")
	}
	return SourceFromFile(location), nil
}
