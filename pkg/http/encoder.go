package http

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shapestone/shape-httpd/internal/fastparser"
	"github.com/shapestone/shape-httpd/internal/htable"
)

// Version is the server version reported in the Server header.
const Version = "0.1.0"

// ServerName is the default Server header value.
const ServerName = "shape-httpd/" + Version

// DefaultContentType is the Content-Type sent when a response sets none.
const DefaultContentType = "text/html"

// protocolVersion is the version written on every status line.
const protocolVersion = "HTTP/1.1"

// Names of the headers every response carries, in emission order.
var requiredHeaderNames = [...]string{"Connection", "Content-Type", "Server", "Content-Length"}

// BuildOptions are the server-wide values of the required headers.
type BuildOptions struct {
	Server      string // Server header; ServerName if empty
	ContentType string // Content-Type header; DefaultContentType if empty
}

// builder assembles one response into buf.
type builder struct {
	buf     []byte
	resp    *Response
	opts    BuildOptions
	headers *Headers
}

type buildStage func(b *builder) error

// buildStages run in order. Whatever was appended before a failing stage
// stays in buf.
var buildStages = [...]buildStage{
	(*builder).statusLine,
	(*builder).requiredHeaders,
	(*builder).additionalHeaders,
	(*builder).emitHeaders,
	(*builder).body,
}

// appendResponse appends the wire form of resp to buf. On error the returned
// slice holds the bytes assembled before the failing stage.
func appendResponse(buf []byte, resp *Response, opts BuildOptions) ([]byte, error) {
	b := builder{buf: buf, resp: resp, opts: opts}
	defer func() {
		if b.headers != nil {
			b.headers.Close()
		}
	}()

	for _, run := range buildStages {
		if err := run(&b); err != nil {
			return b.buf, err
		}
	}
	return b.buf, nil
}

func (b *builder) statusLine() error {
	reason := StatusText(b.resp.Status)
	if reason == "" {
		return fmt.Errorf("%w: %d", ErrUnknownStatus, b.resp.Status)
	}
	b.buf = appendStatusLine(b.buf, protocolVersion, b.resp.Status, reason)
	return nil
}

func (b *builder) requiredHeaders() error {
	server := b.opts.Server
	if server == "" {
		server = ServerName
	}
	contentType := b.opts.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}

	// Room for the required headers plus everything the handler table can hold.
	capacity := len(requiredHeaderNames)
	if b.resp.Headers != nil {
		capacity += b.resp.Headers.Cap()
	}
	b.headers = fastparser.NewHeaders(maxResponseHeaders, capacity)
	values := [...]string{"Closed", contentType, server, strconv.Itoa(len(b.resp.Body))}
	for i, name := range requiredHeaderNames {
		if err := b.headers.Insert(name, values[i]); err != nil {
			return fmt.Errorf("http: required header %s: %w", name, err)
		}
	}
	return nil
}

// additionalHeaders merges the handler's headers; names already present are
// skipped.
func (b *builder) additionalHeaders() error {
	if b.resp.Headers == nil {
		return nil
	}
	if err := htable.Append(b.headers, b.resp.Headers, htable.Skip); err != nil {
		return fmt.Errorf("http: additional headers: %w", err)
	}
	return nil
}

func (b *builder) emitHeaders() error {
	for _, name := range requiredHeaderNames {
		v, _ := b.headers.Fetch(name)
		b.buf = appendHeader(b.buf, name, v)
	}
	for _, name := range b.headers.Keys() {
		if isRequiredHeader(name) {
			continue
		}
		v, err := b.headers.Fetch(name)
		if err != nil {
			return err
		}
		b.buf = appendHeader(b.buf, name, v)
	}
	b.buf = appendCRLF(b.buf)
	return nil
}

func (b *builder) body() error {
	b.buf = append(b.buf, b.resp.Body...)
	return nil
}

func isRequiredHeader(name string) bool {
	for _, r := range requiredHeaderNames {
		if strings.EqualFold(r, name) {
			return true
		}
	}
	return false
}
