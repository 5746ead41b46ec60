package http

import (
	"bytes"
	"io"

	"github.com/shapestone/shape-httpd/internal/fastparser"
)

// Validate checks that input is a request head or response this server can
// parse. It runs every head stage, including the URI and query limits; it
// does not check that a request body is complete.
// Returns nil if valid, or the parser error describing the problem.
func Validate(input string) error {
	return fastparser.Validate([]byte(input), fastparser.DefaultLimits())
}

// ValidateReader reads all data from r and validates it.
// See Validate for the validation semantics.
func ValidateReader(r io.Reader) error {
	data, err := readAll(r)
	if err != nil {
		return err
	}
	return fastparser.Validate(data, fastparser.DefaultLimits())
}

func readAll(r io.Reader) ([]byte, error) {
	var buf bytes.Buffer
	_, err := buf.ReadFrom(r)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
