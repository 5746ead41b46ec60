package http

import (
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/shapestone/shape-httpd/internal/fastparser"
)

var (
	// ErrServerClosed is returned by Serve after Shutdown.
	ErrServerClosed = errors.New("http: server closed")
	// ErrUnknownStatus is returned by the builder for a code with no reason phrase.
	ErrUnknownStatus = errors.New("http: unknown status code")
	// ErrNoHandler marks a Server built without a Handler.
	ErrNoHandler = errors.New("http: no handler")
)

// RequestError is a failure while receiving a request. Message is the text
// sent to the client in the JSON error body.
type RequestError struct {
	Status  int    // response status to answer with
	Message string // user-visible message
	Err     error  // underlying cause, if any
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("http: %d %s: %v", e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("http: %d %s", e.Status, e.Message)
}

func (e *RequestError) Unwrap() error { return e.Err }

func newRequestError(status int, msg string, err error) *RequestError {
	return &RequestError{Status: status, Message: msg, Err: err}
}

// asRequestError maps any error from the receive path to a RequestError.
// Parser errors answer 400 except for body-size overflows, which answer 500.
func asRequestError(err error) *RequestError {
	var re *RequestError
	if errors.As(err, &re) {
		return re
	}
	var pe *fastparser.Error
	if errors.As(err, &pe) {
		if errors.Is(err, fastparser.ErrBodyTooLarge) {
			return newRequestError(StatusInternalServerError, pe.Message, err)
		}
		return newRequestError(StatusBadRequest, pe.Message, err)
	}
	return newRequestError(StatusInternalServerError, StatusText(StatusInternalServerError), err)
}

type errorBody struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// ErrorContentType is the Content-Type the server sends with ErrorResponse
// bodies.
const ErrorContentType = "application/json"

// ErrorResponse builds the JSON error response for status and msg. Write it
// with ErrorOptions to label the body as JSON.
func ErrorResponse(status int, msg string) *Response {
	body, err := json.Marshal(errorBody{Error: true, Message: msg})
	if err != nil {
		body = []byte(`{"error":true}`)
	}
	return &Response{Status: status, Body: body}
}

// ErrorOptions returns opts with the Content-Type of error responses.
func ErrorOptions(opts BuildOptions) BuildOptions {
	opts.ContentType = ErrorContentType
	return opts
}
