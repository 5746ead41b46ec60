package http

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Decoder reads responses from an input stream in HTTP/1.1 wire format.
// A single Decoder is not safe for concurrent use; create one per goroutine
// or serialize access externally.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder returns a new decoder that reads from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// DecodeResponse reads the next response. The body is framed by
// Content-Length; without one it extends to EOF, which is how this server's
// single-response connections end.
func (dec *Decoder) DecodeResponse() (*Response, error) {
	var head bytes.Buffer
	contentLength := int64(-1)

	for {
		line, err := dec.r.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("http: decode: %w", err)
		}
		head.WriteString(line)

		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "" {
			break
		}
		if name, value, ok := strings.Cut(trimmed, ":"); ok && strings.EqualFold(name, "Content-Length") {
			n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("http: decode: invalid Content-Length %q", value)
			}
			contentLength = n
		}
	}

	var body []byte
	var err error
	if contentLength >= 0 {
		body = make([]byte, contentLength)
		_, err = io.ReadFull(dec.r, body)
	} else {
		body, err = io.ReadAll(dec.r)
	}
	if err != nil {
		return nil, fmt.Errorf("http: decode body: %w", err)
	}

	head.Write(body)
	return UnmarshalResponse(head.Bytes())
}
