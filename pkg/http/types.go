// Package http is a small HTTP/1.1 server written directly on top of TCP.
//
// Every connection carries exactly one request and one response; the server
// closes the connection afterwards. Request heads are parsed by a staged
// parser, bodies are framed by Content-Length only, and responses are
// assembled into a single pooled buffer and written with one call.
//
// # Thread Safety
//
// A Server is safe for concurrent use. Request and Response values belong to
// the goroutine serving their connection and must not be shared.
//
// # APIs
//
//   - NewServer/ListenAndServe/Shutdown - accept loop and connection handling
//   - Handler/HandlerFunc/AckHandler - request handling contract
//   - WriteResponse/Marshal/NewEncoder - response builder
//   - UnmarshalRequest/UnmarshalResponse/NewDecoder - wire parsing
//   - Parse/ParseReader/Render - AST-based access via shape-core
package http

import (
	"github.com/shapestone/shape-httpd/internal/fastparser"
	"github.com/shapestone/shape-httpd/internal/uri"
)

// Method is a supported request method.
type Method = fastparser.Method

// Supported request methods.
const (
	MethodOptions = fastparser.OPTIONS
	MethodGet     = fastparser.GET
	MethodHead    = fastparser.HEAD
	MethodPost    = fastparser.POST
	MethodPut     = fastparser.PUT
	MethodDelete  = fastparser.DELETE
	MethodTrace   = fastparser.TRACE
	MethodConnect = fastparser.CONNECT
)

// ParseMethod maps a method token such as "GET" to its Method.
func ParseMethod(s string) (Method, bool) {
	return fastparser.ParseMethod(s)
}

// Headers is a header table. Names compare case-insensitively and keep the
// case of their first insertion.
type Headers = fastparser.Headers

// Response header tables hold at most this many entries.
const maxResponseHeaders = 16

// NewHeaders creates an empty response header table.
func NewHeaders() *Headers {
	return fastparser.NewHeaders(maxResponseHeaders, maxResponseHeaders)
}

// Request is a fully received request: parsed head plus the complete body.
type Request struct {
	Method  Method
	Path    string   // path component of the request-target
	URI     *uri.URI // raw target plus multi-valued query
	Major   int
	Minor   int
	Headers *Headers
	Body    []byte // exactly Content-Length bytes (nil if none)
}

// Header returns the value of the named header, or "".
func (r *Request) Header(name string) string {
	if r.Headers == nil {
		return ""
	}
	v, _ := r.Headers.Fetch(name)
	return v
}

// Query returns the first value of the named query parameter, or "".
func (r *Request) Query(name string) string {
	if r.URI == nil {
		return ""
	}
	return r.URI.Get(name)
}

// QueryValues returns every value of the named query parameter in arrival order.
func (r *Request) QueryValues(name string) []string {
	if r.URI == nil {
		return nil
	}
	return r.URI.Values(name)
}

// Version returns the protocol version as "HTTP/major.minor".
func (r *Request) Version() string {
	return versionString(r.Major, r.Minor)
}

// Response is what a Handler returns. Status must be a known status code;
// Headers may be nil. The server always sets Connection, Content-Type,
// Server and Content-Length; values for those names in Headers are ignored.
type Response struct {
	Status  int
	Headers *Headers
	Body    []byte
}

// NewResponse creates a response with an empty header table.
func NewResponse(status int, body []byte) *Response {
	return &Response{Status: status, Headers: NewHeaders(), Body: body}
}

// SetHeader adds or replaces an additional header.
func (r *Response) SetHeader(name, value string) error {
	if r.Headers == nil {
		r.Headers = NewHeaders()
	}
	return r.Headers.Replace(name, value)
}

// Header returns the value of the named header, or "".
func (r *Response) Header(name string) string {
	if r.Headers == nil {
		return ""
	}
	v, _ := r.Headers.Fetch(name)
	return v
}

// Close releases the response header table.
func (r *Response) Close() {
	if r.Headers != nil {
		r.Headers.Close()
	}
}

func versionString(major, minor int) string {
	b := make([]byte, 0, 8)
	b = append(b, "HTTP/"...)
	b = appendInt(b, major)
	b = append(b, '.')
	b = appendInt(b, minor)
	return string(b)
}
