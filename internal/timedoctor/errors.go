package timedoctor

import (
	"errors"
	"fmt"
)

var (
	ErrAuthenticationIncomplete = errors.New("authentication incomplete")
	ErrAuthenticationFailed     = errors.New("authentication failed")
	ErrGroupNotFound            = errors.New("group not found")
	ErrUpstreamRequestFailed    = errors.New("upstream request failed")
)

// RequestError describes a failed API call. It matches ErrUpstreamRequestFailed
// with errors.Is. StatusCode is zero when no response was received.
type RequestError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	msg := fmt.Sprintf("%s %s", e.Method, e.Endpoint)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RequestError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUpstreamRequestFailed}
	}
	return []error{ErrUpstreamRequestFailed, e.Err}
}

// ServerMessage returns the message the API sent with a failed call, or the
// error text when there is none.
func ServerMessage(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	return err.Error()
}
