package dashboard

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

const (
	pageTemplate    = "templates/page.tmpl"
	networkTemplate = "templates/network.tmpl"
	coursesTemplate = "templates/courses.tmpl"
)

// TemplatesFS exposes the page templates.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
