package fastparser

import (
	"bytes"
	"strconv"

	"github.com/shapestone/shape-httpd/internal/tokenizer"
)

// Response is a parsed status line, its headers and a Content-Length body.
type Response struct {
	Major   int
	Minor   int
	Status  int
	Reason  string
	Headers *Headers
	Body    []byte
}

// ParseResponse parses data as a complete response. A body shorter than its
// Content-Length is an error; a missing Content-Length takes the rest of data.
func ParseResponse(data []byte, lim Limits) (*Response, error) {
	return NewParser(data, lim).ParseResponse()
}

// ParseResponse parses the parser's buffer as a response.
func (p *Parser) ParseResponse() (*Response, error) {
	resp := &Response{}
	if err := p.parseStatusLine(resp); err != nil {
		return nil, err
	}

	var h Head
	if err := p.parseHeaders(&h); err != nil {
		return nil, err
	}
	resp.Headers = h.Headers

	rest := p.data[p.pos:]
	n, ok, err := h.ContentLength()
	switch {
	case err != nil:
		return nil, err
	case !ok:
		n = int64(len(rest))
	case int64(len(rest)) < n:
		return nil, p.errorf(ErrSyntax, "Body shorter than content-length (%d < %d)!", len(rest), n)
	}
	resp.Body = append([]byte(nil), rest[:n]...)
	return resp, nil
}

func (p *Parser) parseStatusLine(resp *Response) error {
	line, ok := p.cutLine()
	if !ok && len(line) == 0 {
		return p.errorf(ErrSyntax, "Status line missing!")
	}

	version, rest, _ := bytes.Cut(line, []byte(" "))
	digits := stripVersion(version)
	if digits == "" {
		return p.errorf(ErrSyntax, "HTTP version missing!")
	}
	majorStr, minorStr, found := cutString(digits, '.')
	if !found || minorStr == "" {
		return p.errorf(ErrSyntax, "Minor HTTP version missing!")
	}
	major, errMajor := strconv.Atoi(majorStr)
	minor, errMinor := strconv.Atoi(minorStr)
	if errMajor != nil || errMinor != nil {
		return p.errorf(ErrSyntax, "HTTP version major/minor non-numerical!")
	}

	code, reason, _ := bytes.Cut(rest, []byte(" "))
	status, err := strconv.Atoi(string(code))
	if err != nil || len(code) != 3 {
		return p.errorf(ErrSyntax, "Invalid status code %q!", code)
	}

	resp.Major, resp.Minor = major, minor
	resp.Status = status
	resp.Reason = string(reason)
	return nil
}

// stripVersion requires the "HTTP/" prefix that a status line always carries.
func stripVersion(b []byte) string {
	if !tokenizer.HasVersionPrefix(string(b)) {
		return ""
	}
	return string(b[len(tokenizer.VersionPrefix):])
}
