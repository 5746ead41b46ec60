package http

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// bufPool pools []byte slices for the response builder.
var bufPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, 0, 1024)
		return &b
	},
}

// Marshal returns the HTTP/1.1 wire-format encoding of resp with the default
// Server and Content-Type values.
//
// Marshal uses a sync.Pool buffer internally and returns a copy.
func Marshal(resp *Response) ([]byte, error) {
	return MarshalWith(resp, BuildOptions{})
}

// MarshalWith is Marshal with explicit required-header values.
func MarshalWith(resp *Response, opts BuildOptions) ([]byte, error) {
	if resp == nil {
		return nil, fmt.Errorf("http: Marshal(nil)")
	}

	bp := bufPool.Get().(*[]byte)
	buf, err := appendResponse((*bp)[:0], resp, opts)

	var result []byte
	if err == nil {
		result = make([]byte, len(buf))
		copy(result, buf)
	}
	*bp = buf[:0]
	bufPool.Put(bp)
	return result, err
}

// WriteResponse assembles resp and writes it to w with a single Write.
// If a builder stage after the status line fails, the bytes assembled so
// far are still written and the stage error is returned. A failed write is
// not retried.
func WriteResponse(w io.Writer, resp *Response, opts BuildOptions) (int, error) {
	if resp == nil {
		return 0, fmt.Errorf("http: WriteResponse(nil)")
	}

	bp := bufPool.Get().(*[]byte)
	buf, buildErr := appendResponse((*bp)[:0], resp, opts)

	var n int
	var writeErr error
	if len(buf) > 0 {
		n, writeErr = w.Write(buf)
		if writeErr != nil {
			writeErr = fmt.Errorf("http: write response: %w", writeErr)
		}
	}
	*bp = buf[:0]
	bufPool.Put(bp)
	return n, errors.Join(buildErr, writeErr)
}
