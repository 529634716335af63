package vanilla

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

//go:embed assets/*
var embeddedAssets embed.FS

const (
	StylesheetName = "tutordash-vanilla.css"

	// StylesheetAssetKey is the theme asset key consulted for a stylesheet
	// link ahead of the modal markup.
	StylesheetAssetKey = "vanilla.stylesheet"

	modalTemplate      = "templates/modal.tmpl"
	paginationTemplate = "templates/pagination.tmpl"
)

// TemplatesFS exposes the embedded template bundle.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

// AssetsFS exposes the embedded CSS so callers can serve it over HTTP.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}
