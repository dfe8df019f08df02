package flickr

import (
	"fmt"
	"net/http"
)

// HTTPError is returned for non-2xx responses
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	text := http.StatusText(e.StatusCode)
	if text == "" {
		text = e.Status
	}
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, text)
}

// DecodeError is returned when a response body is not the expected JSON
type DecodeError struct {
	Method string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Method, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// APIError is a {"stat":"fail"} body from Flickr
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("flickr error %d", e.Code)
	}
	return e.Message
}
