// Package client talks to the tutoring dashboard REST API.
//
// Requests carry the session's bearer token. A 401 response triggers one
// token refresh and one retry of the original request; when the refresh is
// rejected the session is cleared and ErrSessionExpired is returned. Endpoint
// methods unwrap the API's {success, data} envelope.
package client
