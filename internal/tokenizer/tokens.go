// Package tokenizer classifies the pieces of a request line using Shape's
// tokenizer framework.
package tokenizer

// Token kinds produced by the matchers in this package.
const (
	TokenVersion = "Version" // HTTP/1.0, HTTP/1.1
	TokenText    = "Text"    // anything up to a line ending
	TokenCRLF    = "CRLF"    // \r\n, bare \r or bare \n
)

// VersionPrefix is the literal that starts a protocol version token.
const VersionPrefix = "HTTP/"
