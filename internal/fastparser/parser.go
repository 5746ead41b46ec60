// Package fastparser parses HTTP/1.1 request heads in a fixed sequence of
// stages over a single forward cursor, without building an AST.
package fastparser

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"

	"github.com/shapestone/shape-httpd/internal/htable"
	"github.com/shapestone/shape-httpd/internal/tokenizer"
	"github.com/shapestone/shape-httpd/internal/uri"
)

// Limits are the ceilings applied while parsing a head.
type Limits struct {
	HeaderSlots int // initial header table slots
	MaxHeaders  int // header lines per request
	URI         uri.Limits
}

// DefaultLimits returns the stock ceilings.
func DefaultLimits() Limits {
	return Limits{
		HeaderSlots: 16,
		MaxHeaders:  64,
		URI:         uri.DefaultLimits(),
	}
}

// Headers maps header names to values. Names compare case-insensitively.
type Headers = htable.Table[string]

// NewHeaders creates an empty header table.
func NewHeaders(slots, capacity int) *Headers {
	return htable.New[string](slots, capacity, nil, htable.FoldCase())
}

// Head is a parsed request line plus headers, and the part of the body that
// arrived together with them.
type Head struct {
	Method   Method
	URI      *uri.URI
	Headers  *Headers
	Major    int
	Minor    int
	BodyPart []byte
}

// Error is a head parse failure. Message is the text sent back to the client.
type Error struct {
	Message string
	Line    int // 1-indexed line where the failure was detected
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

var (
	// ErrSyntax marks malformed request lines and header lines.
	ErrSyntax = errors.New("fastparser: syntax error")
	// ErrCapacity marks a request exceeding a configured ceiling.
	ErrCapacity = errors.New("fastparser: capacity exceeded")
)

// Parser scans one buffered request head.
type Parser struct {
	data   []byte
	pos    int
	length int
	line   int // line the cursor is on
	last   int // line most recently returned by cutLine
	lim    Limits
}

// NewParser creates a parser over data.
func NewParser(data []byte, lim Limits) *Parser {
	return &Parser{
		data:   data,
		length: len(data),
		line:   1,
		lim:    lim,
	}
}

type stage func(p *Parser, h *Head) error

// headStages run in order; the first failure aborts the parse.
var headStages = [...]stage{
	(*Parser).parseMethod,
	(*Parser).parseURI,
	(*Parser).parseVersion,
	(*Parser).parseHeaders,
	(*Parser).parseBodyPart,
}

// ParseHead parses data as a request head.
func ParseHead(data []byte, lim Limits) (*Head, error) {
	return NewParser(data, lim).ParseHead()
}

// ParseHead runs every stage and returns the head, or nil and the first error.
func (p *Parser) ParseHead() (*Head, error) {
	h := &Head{}
	for _, run := range headStages {
		if err := run(p, h); err != nil {
			if h.URI != nil {
				h.URI.Query.Close()
			}
			return nil, err
		}
	}
	return h, nil
}

func (p *Parser) parseMethod(h *Head) error {
	token, ok := p.cutInLine(' ')
	if !ok || len(token) == 0 {
		return p.errorf(ErrSyntax, "HTTP method missing!")
	}
	m, ok := lookupMethod(token)
	if !ok {
		return p.errorf(ErrSyntax, "Unsupported HTTP method!")
	}
	h.Method = m
	return nil
}

func (p *Parser) parseURI(h *Head) error {
	token, ok := p.cutInLine(' ')
	if !ok || len(token) == 0 {
		return p.errorf(ErrSyntax, "URI missing!")
	}
	u, err := uri.Parse(string(token), p.lim.URI)
	if err != nil {
		var ue *uri.Error
		if errors.As(err, &ue) {
			return &Error{Message: ue.Message, Line: p.line, Err: err}
		}
		return p.errorf(err, "Could not parse the URI!")
	}
	h.URI = u
	return nil
}

func (p *Parser) parseVersion(h *Head) error {
	raw, ok := p.cutLine()
	if !ok || len(raw) == 0 {
		return p.lineErrorf(ErrSyntax, "HTTP version missing!")
	}

	digits := tokenizer.StripVersionPrefix(string(raw))
	majorStr, minorStr, found := cutString(digits, '.')
	if majorStr == "" {
		return p.lineErrorf(ErrSyntax, "Major HTTP version missing!")
	}
	if !found || minorStr == "" {
		return p.lineErrorf(ErrSyntax, "Minor HTTP version missing!")
	}

	major, errMajor := strconv.Atoi(majorStr)
	minor, errMinor := strconv.Atoi(minorStr)
	if errMajor != nil || errMinor != nil || major < 0 || minor < 0 {
		return p.lineErrorf(ErrSyntax, "HTTP version major/minor non-numerical!")
	}
	h.Major, h.Minor = major, minor
	return nil
}

func (p *Parser) parseHeaders(h *Head) error {
	headers := NewHeaders(p.lim.HeaderSlots, p.lim.MaxHeaders)
	h.Headers = headers

	for p.pos < p.length {
		line, _ := p.cutLine()
		if len(line) == 0 {
			// Blank line ends the head.
			return nil
		}

		sep := bytes.Index(line, []byte(": "))
		if sep <= 0 {
			return p.lineErrorf(ErrSyntax, "Malformed header!")
		}
		key := internHeaderName(line[:sep])
		value := string(line[sep+2:])

		switch err := headers.Insert(key, value); {
		case err == nil:
		case errors.Is(err, htable.ErrKeyAlreadyExists):
			return p.lineErrorf(ErrSyntax, "Duplicate header in request!")
		case errors.Is(err, htable.ErrFull):
			return p.lineErrorf(ErrCapacity, "Too many headers (max=%d)!", p.lim.MaxHeaders)
		case errors.Is(err, htable.ErrKeyTooLong):
			return p.lineErrorf(ErrCapacity, "Header name too long (max=%d)!", htable.MaxKeyLen)
		default:
			return p.lineErrorf(err, "Malformed header!")
		}
	}
	return nil
}

func (p *Parser) parseBodyPart(h *Head) error {
	if p.pos >= p.length {
		return nil
	}
	h.BodyPart = make([]byte, p.length-p.pos)
	copy(h.BodyPart, p.data[p.pos:])
	p.pos = p.length
	return nil
}

// cutInLine returns the bytes up to sep, which must occur before the end of
// the current line, and advances past sep.
func (p *Parser) cutInLine(sep byte) ([]byte, bool) {
	rest := p.data[p.pos:]
	if eol := bytes.IndexByte(rest, '\n'); eol >= 0 {
		rest = rest[:eol]
	}
	i := bytes.IndexByte(rest, sep)
	if i < 0 {
		return nil, false
	}
	token := rest[:i]
	p.pos += i + 1
	return token, true
}

// cutLine returns the current line without its CRLF or LF and advances past
// it. An unterminated last line is returned with ok == false.
func (p *Parser) cutLine() (line []byte, ok bool) {
	rest := p.data[p.pos:]
	i := bytes.IndexByte(rest, '\n')
	if i < 0 {
		p.last = p.line
		p.pos = p.length
		return bytes.TrimSuffix(rest, []byte("\r")), false
	}
	p.last = p.line
	p.pos += i + 1
	p.line++
	return bytes.TrimSuffix(rest[:i], []byte("\r")), true
}

func cutString(s string, sep byte) (before, after string, found bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}

func (p *Parser) errorf(kind error, format string, args ...interface{}) error {
	return &Error{Message: fmt.Sprintf(format, args...), Line: p.line, Err: kind}
}

// lineErrorf reports against the line cutLine last returned.
func (p *Parser) lineErrorf(kind error, format string, args ...interface{}) error {
	return &Error{Message: fmt.Sprintf(format, args...), Line: p.last, Err: kind}
}
