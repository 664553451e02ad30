package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrInvalidAPIKey    = errors.New("your API key is not valid")
	ErrAPIKeyTooShort   = errors.New("your API key is not valid: too short")
	ErrBadRequest       = errors.New("you made a bad request")
	ErrRateLimited      = errors.New("you have hit your rate limit")
	ErrServerError      = errors.New("an unexpected error occurred")
	ErrRestarting       = errors.New("NOSIBLE is currently restarting")
	ErrOverloaded       = errors.New("NOSIBLE is currently overloaded")
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// StatusError is a classified HTTP failure.
type StatusError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v (HTTP %d)", e.Err, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return e.Err }

// TransportError is a network level failure: connection refused, reset,
// timeout. Worth retrying.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Transient() bool { return true }

// Classify maps known failure statuses to sentinel errors. Other statuses
// (including 2xx) return nil.
func Classify(resp *Response) error {
	var sentinel error
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		sentinel = ErrInvalidAPIKey
	case http.StatusUnprocessableEntity:
		sentinel = ErrBadRequest
		if isTooShort(resp) {
			sentinel = ErrAPIKeyTooShort
		}
	case http.StatusTooManyRequests:
		sentinel = ErrRateLimited
	case http.StatusInternalServerError:
		sentinel = ErrServerError
	case http.StatusBadGateway:
		sentinel = ErrRestarting
	case http.StatusGatewayTimeout:
		sentinel = ErrOverloaded
	default:
		return nil
	}
	return &StatusError{StatusCode: resp.StatusCode, Body: resp.Body, Err: sentinel}
}

// Check is Classify plus a generic error for any other non-2xx status.
func Check(resp *Response) error {
	if err := Classify(resp); err != nil {
		return err
	}
	if !resp.OK() {
		return &StatusError{StatusCode: resp.StatusCode, Body: resp.Body, Err: ErrUnexpectedStatus}
	}
	return nil
}

func isTooShort(resp *Response) bool {
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		return false
	}
	var body struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return false
	}
	return body.Type == "string_too_short"
}
