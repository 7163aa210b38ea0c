package client

import (
	"encoding/json"
	"fmt"
)

// HTTPError is a non-2xx response.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(e.Body, &errResp) == nil && errResp.Error != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, errResp.Error)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, string(e.Body))
}

// FormError is a rejected comment submission. Errors holds the server's
// "errors" value verbatim, or the whole JSON body when it has none.
type FormError struct {
	StatusCode int
	Errors     json.RawMessage
}

// Error returns the message shown to the user: "Error: " followed by the
// raw JSON.
func (e *FormError) Error() string {
	return "Error: " + string(e.Errors)
}

// formError converts a JSON error response into a FormError. It returns
// nil when the body is not JSON.
func formError(he *HTTPError) *FormError {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(he.Body, &body); err != nil {
		return nil
	}
	raw, ok := body["errors"]
	if !ok {
		raw = json.RawMessage(he.Body)
	}
	return &FormError{StatusCode: he.StatusCode, Errors: raw}
}
