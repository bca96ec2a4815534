package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a non-2xx response. Messages holds whatever the server put in
// its error body, in order.
//
// errors.Is(err, ErrUnauthorized) holds for 401/403 and
// errors.Is(err, ErrUnavailable) for 502/503/504.
type APIError struct {
	Status   int
	Messages []string
}

func (e *APIError) Error() string {
	if len(e.Messages) == 0 {
		return fmt.Sprintf("api error %d: %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api error %d: %s", e.Status, strings.Join(e.Messages, ", "))
}

func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrUnavailable:
		return e.Status == http.StatusBadGateway ||
			e.Status == http.StatusServiceUnavailable ||
			e.Status == http.StatusGatewayTimeout
	}
	return false
}

// Messages extracts the server-provided messages from err, if it is an
// *APIError.
func Messages(err error) []string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Messages
	}
	return nil
}

type errorBody struct {
	Errors json.RawMessage `json:"errors"`
	Error  string          `json:"error"`
}

// newAPIError decodes the error body. The server is inconsistent: errors
// may be a string, a list of strings, or an object carrying full_messages.
func newAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}

	var b errorBody
	if err := json.Unmarshal(body, &b); err != nil {
		return e
	}

	if len(b.Errors) > 0 {
		var s string
		var list []string
		var obj struct {
			FullMessages []string `json:"full_messages"`
		}
		switch {
		case json.Unmarshal(b.Errors, &s) == nil:
			if s != "" {
				e.Messages = []string{s}
			}
		case json.Unmarshal(b.Errors, &list) == nil:
			e.Messages = list
		case json.Unmarshal(b.Errors, &obj) == nil:
			e.Messages = obj.FullMessages
		}
	}
	if len(e.Messages) == 0 && b.Error != "" {
		e.Messages = []string{b.Error}
	}
	return e
}
