// Package template defines the template engine seam used by HTML renderers.
// The default implementation lives in the gotemplate subpackage.
package template
