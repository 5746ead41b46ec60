package fastparser

import (
	"fmt"

	"github.com/shapestone/shape-httpd/internal/tokenizer"
)

// Unmarshal auto-detects whether data is a request head or a response and
// parses it. Data starting with a version token is treated as a response.
func Unmarshal(data []byte, lim Limits) (interface{}, error) {
	if DetectMessageType(data) == "response" {
		return ParseResponse(data, lim)
	}
	return ParseHead(data, lim)
}

// DetectMessageType returns "request" or "response" based on the data prefix.
func DetectMessageType(data []byte) string {
	n := len(data)
	if n > len(tokenizer.VersionPrefix) {
		n = len(tokenizer.VersionPrefix)
	}
	if n == len(tokenizer.VersionPrefix) && tokenizer.HasVersionPrefix(string(data[:n])) {
		return "response"
	}
	return "request"
}

// Validate checks that data is a well-formed head or response.
func Validate(data []byte, lim Limits) error {
	v, err := Unmarshal(data, lim)
	if err != nil {
		return fmt.Errorf("fastparser: %w", err)
	}
	if h, ok := v.(*Head); ok && h.URI != nil {
		h.URI.Query.Close()
	}
	return nil
}
