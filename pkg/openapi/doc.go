// Package openapi turns OpenAPI operations into form descriptors. Documents
// are fetched from files, an fs.FS or HTTP, parsed with kin-openapi and the
// request body schema of one operation is mapped onto fields.
package openapi
