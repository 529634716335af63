package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"strings"
)

var (
	// ErrSessionExpired is returned when a 401 could not be recovered by a
	// token refresh. The session has been cleared.
	ErrSessionExpired = errors.New("client: session expired")
	// ErrNotAuthenticated is returned by calls that need a session when none
	// is present.
	ErrNotAuthenticated = errors.New("client: not authenticated")
)

// NonFieldKey is the payload key for form-level messages.
const NonFieldKey = "non_field_errors"

// APIError is a non-2xx response, or an envelope with success=false.
type APIError struct {
	StatusCode int
	Message    string
	// Fields maps field names to messages. Form-level messages are stored
	// under NonFieldKey.
	Fields map[string][]string
	Body   []byte
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		if nonField := e.Fields[NonFieldKey]; len(nonField) > 0 {
			msg = nonField[0]
		} else if len(e.Fields) > 0 {
			msg = "validation failed"
		}
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("client: %d: %s", e.StatusCode, msg)
}

// FieldErrors exposes the payload in the shape the form engine maps onto
// fields and the banner. A message without form-level errors is reported
// under "message".
func (e *APIError) FieldErrors() map[string][]string {
	out := make(map[string][]string, len(e.Fields)+1)
	maps.Copy(out, e.Fields)
	if e.Message != "" && len(out[NonFieldKey]) == 0 {
		out["message"] = []string{e.Message}
	}
	return out
}

// StatusCode returns the HTTP status of an APIError in err's chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

var messageKeys = []string{"message", "detail", "error"}

// decodeAPIError reads the error payload styles the API produces: an envelope
// with message and errors, or a flat object of field name to messages.
func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: body}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 && !strings.HasPrefix(text, "<") {
			apiErr.Message = text
		}
		return apiErr
	}

	for _, key := range messageKeys {
		var msg string
		if value, ok := raw[key]; ok && json.Unmarshal(value, &msg) == nil && msg != "" {
			apiErr.Message = msg
			break
		}
	}

	nested, hasNested := raw["errors"]
	if hasNested {
		var list []string
		if json.Unmarshal(nested, &list) == nil {
			apiErr.addField(NonFieldKey, list...)
		} else {
			var fields map[string]json.RawMessage
			if json.Unmarshal(nested, &fields) == nil {
				for key, value := range fields {
					apiErr.addField(key, messages(value)...)
				}
			}
		}
	}

	for key, value := range raw {
		switch key {
		case "success", "data", "errors", "message", "detail", "error", "code", "status":
			continue
		}
		apiErr.addField(key, messages(value)...)
	}
	return apiErr
}

func (e *APIError) addField(key string, msgs ...string) {
	if len(msgs) == 0 {
		return
	}
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[key] = append(e.Fields[key], msgs...)
}

// messages accepts a string or a list of strings.
func messages(value json.RawMessage) []string {
	var list []string
	if json.Unmarshal(value, &list) == nil {
		return list
	}
	var single string
	if json.Unmarshal(value, &single) == nil && single != "" {
		return []string{single}
	}
	return nil
}
