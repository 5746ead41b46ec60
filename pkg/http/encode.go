package http

import (
	"io"
)

// Encoder writes responses to an output stream.
type Encoder struct {
	w    io.Writer
	opts BuildOptions
}

// NewEncoder returns a new encoder that writes to w.
func NewEncoder(w io.Writer, opts BuildOptions) *Encoder {
	return &Encoder{w: w, opts: opts}
}

// Encode writes the wire-format encoding of resp to the stream.
func (enc *Encoder) Encode(resp *Response) error {
	_, err := WriteResponse(enc.w, resp, enc.opts)
	return err
}
