package openapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

var (
	// ErrOperationNotFound is returned when no operation carries the id.
	ErrOperationNotFound = errors.New("openapi: operation not found")
	// ErrNoRequestBody is returned for operations without an object body.
	ErrNoRequestBody = errors.New("openapi: operation has no object request body")
)

// Operation is one path operation of a parsed document.
type Operation struct {
	ID        string
	Method    string
	Path      string
	Operation *openapi3.Operation
}

// Parse loads and validates raw as an OpenAPI 3 document. Example values are
// not validated.
func Parse(ctx context.Context, raw []byte) (*openapi3.T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("openapi: validate: %w", err)
	}
	return spec, nil
}

// Operations indexes every operation of spec by operationId. Operations
// without an id are keyed "method:path".
func Operations(spec *openapi3.T) map[string]Operation {
	out := make(map[string]Operation)
	if spec == nil || spec.Paths == nil {
		return out
	}
	for path, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			id := op.OperationID
			if id == "" {
				id = strings.ToLower(method) + ":" + path
			}
			out[id] = Operation{ID: id, Method: strings.ToUpper(method), Path: path, Operation: op}
		}
	}
	return out
}

var bodyMediaTypes = []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"}

// requestSchema returns the object schema of the operation's request body and
// the media type it was found under.
func requestSchema(op *openapi3.Operation) (*openapi3.Schema, string) {
	if op == nil || op.RequestBody == nil || op.RequestBody.Value == nil {
		return nil, ""
	}
	content := op.RequestBody.Value.Content
	for _, mediaType := range bodyMediaTypes {
		if mt, ok := content[mediaType]; ok && mt != nil && mt.Schema != nil && mt.Schema.Value != nil {
			return mt.Schema.Value, mediaType
		}
	}
	return nil, ""
}

func schemaType(schema *openapi3.Schema) string {
	if schema == nil || schema.Type == nil {
		return ""
	}
	values := schema.Type.Slice()
	for _, value := range values {
		if value != openapi3.TypeNull {
			return value
		}
	}
	return ""
}

func methodOrPost(method string) string {
	if method == "" {
		return http.MethodPost
	}
	return method
}
