// Package model defines the declarative form descriptors shared by the form
// engine, the renderers and the form definition loaders. A FormSpec bundles
// the modal chrome (title, tabs, actions) with an ordered list of Field
// descriptors; the engine owns the live values, renderers only read them.
package model
