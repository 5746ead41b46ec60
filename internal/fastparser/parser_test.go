package fastparser

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestParseHead_Simple(t *testing.T) {
	data := []byte("GET /hello HTTP/1.1\r\nHost: localhost\r\n\r\n")
	h, err := ParseHead(data, DefaultLimits())
	if err != nil {
		t.Fatalf("ParseHead() error = %v", err)
	}

	if h.Method != GET {
		t.Errorf("Method = %v, want GET", h.Method)
	}
	if h.URI.Path != "/hello" {
		t.Errorf("Path = %q, want /hello", h.URI.Path)
	}
	if h.Major != 1 || h.Minor != 1 {
		t.Errorf("Version = %d.%d, want 1.1", h.Major, h.Minor)
	}
	if host, _ := h.Headers.Fetch("host"); host != "localhost" {
		t.Errorf("Host = %q, want localhost", host)
	}
	if len(h.BodyPart) != 0 {
		t.Errorf("BodyPart = %q, want empty", h.BodyPart)
	}
}

func TestParseHead_WithQueryAndBody(t *testing.T) {
	data := []byte("POST /submit?a=1&a=2 HTTP/1.0\r\nContent-Length: 5\r\n\r\nhello")
	h, err := ParseHead(data, DefaultLimits())
	if err != nil {
		t.Fatalf("ParseHead() error = %v", err)
	}
	if h.Method != POST {
		t.Errorf("Method = %v, want POST", h.Method)
	}
	if got := h.URI.Values("a"); len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Errorf("Values(a) = %v, want [1 2]", got)
	}
	if h.Minor != 0 {
		t.Errorf("Minor = %d, want 0", h.Minor)
	}
	if string(h.BodyPart) != "hello" {
		t.Errorf("BodyPart = %q, want hello", h.BodyPart)
	}
}

func TestParseHead_BareLF(t *testing.T) {
	h, err := ParseHead([]byte("HEAD / HTTP/1.1\nAccept: */*\n\n"), DefaultLimits())
	if err != nil {
		t.Fatalf("ParseHead() error = %v", err)
	}
	if h.Method != HEAD || h.Headers.Len() != 1 {
		t.Errorf("got %v with %d headers, want HEAD with 1", h.Method, h.Headers.Len())
	}
}

func TestParseHead_AllMethods(t *testing.T) {
	for _, name := range []string{"OPTIONS", "GET", "HEAD", "POST", "PUT", "DELETE", "TRACE", "CONNECT"} {
		h, err := ParseHead([]byte(name+" / HTTP/1.1\r\n\r\n"), DefaultLimits())
		if err != nil {
			t.Fatalf("ParseHead(%s) error = %v", name, err)
		}
		if h.Method.String() != name {
			t.Errorf("Method = %q, want %q", h.Method, name)
		}
	}
}

func TestParseHead_Errors(t *testing.T) {
	var many strings.Builder
	many.WriteString("GET / HTTP/1.1\r\n")
	for i := 0; i < 65; i++ {
		fmt.Fprintf(&many, "X-H%d: v\r\n", i)
	}
	many.WriteString("\r\n")

	tests := []struct {
		name    string
		data    string
		wantMsg string
	}{
		{"empty", "", "HTTP method missing!"},
		{"no space", "GET\r\n\r\n", "HTTP method missing!"},
		{"unknown method", "FETCH /x HTTP/1.1\r\n\r\n", "Unsupported HTTP method!"},
		{"lowercase method", "get / HTTP/1.1\r\n\r\n", "Unsupported HTTP method!"},
		{"no uri", "GET \r\n\r\n", "URI missing!"},
		{"uri without version", "GET /\r\n\r\n", "URI missing!"},
		{"relative uri", "GET x HTTP/1.1\r\n\r\n", "Could not parse the path!"},
		{"bad query", "GET /?x HTTP/1.1\r\n\r\n", "Malformed query parameter!"},
		{"no version", "GET / \r\n\r\n", "HTTP version missing!"},
		{"no minor", "GET / HTTP/1\r\n\r\n", "Minor HTTP version missing!"},
		{"non numeric", "GET / HTTP/1.x\r\n\r\n", "HTTP version major/minor non-numerical!"},
		{"malformed header", "GET / HTTP/1.1\r\nHost localhost\r\n\r\n", "Malformed header!"},
		{"duplicate header", "GET / HTTP/1.1\r\nHost: a\r\nhost: b\r\n\r\n", "Duplicate header in request!"},
		{"too many headers", many.String(), "Too many headers (max=64)!"},
		{"long header name", "GET / HTTP/1.1\r\n" + strings.Repeat("k", 129) + ": v\r\n\r\n", "Header name too long (max=128)!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ParseHead([]byte(tt.data), DefaultLimits())
			if err == nil {
				t.Fatalf("ParseHead(%q) = %+v, want error", tt.data, h)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("ParseHead(%q) message = %q, want %q", tt.data, err.Error(), tt.wantMsg)
			}
			var pe *Error
			if !errors.As(err, &pe) {
				t.Errorf("error %T is not *Error", err)
			}
		})
	}
}

func TestParseHead_ErrorLine(t *testing.T) {
	_, err := ParseHead([]byte("GET / HTTP/1.1\r\nHost: a\r\nbroken\r\n\r\n"), DefaultLimits())
	var pe *Error
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *Error", err)
	}
	if pe.Line != 3 {
		t.Errorf("Line = %d, want 3", pe.Line)
	}
	if !errors.Is(err, ErrSyntax) {
		t.Errorf("errors.Is(err, ErrSyntax) = false")
	}
}

func TestHeadEnd(t *testing.T) {
	tests := []struct {
		data string
		want int
	}{
		{"", -1},
		{"GET / HTTP/1.1\r\n", -1},
		{"GET / HTTP/1.1\r\nHost: a\r\n", -1},
		{"GET / HTTP/1.1\r\n\r\n", 18},
		{"GET / HTTP/1.1\n\n", 16},
		{"GET / HTTP/1.1\r\n\r\nbody", 18},
	}
	for _, tt := range tests {
		if got := HeadEnd([]byte(tt.data)); got != tt.want {
			t.Errorf("HeadEnd(%q) = %d, want %d", tt.data, got, tt.want)
		}
	}
}

func TestRemainingBody(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		max     int64
		want    int64
		wantMsg string
		body    string
	}{
		{"complete", "POST / HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello", 0, 0, "", "hello"},
		{"split", "POST / HTTP/1.1\r\nContent-Length: 11\r\n\r\nhello", 0, 6, "", "hello"},
		{"truncated", "PUT / HTTP/1.1\r\nContent-Length: 2\r\n\r\nhello", 0, 0, "", "he"},
		{"get empty", "GET / HTTP/1.1\r\nContent-Length: 0\r\n\r\n", 0, 0, "", ""},
		{"get missing", "GET / HTTP/1.1\r\n\r\n", 0, 0, "Could not find content-length header!", ""},
		{"delete missing", "DELETE /x HTTP/1.1\r\n\r\n", 0, 0, "Could not find content-length header!", ""},
		{"post missing", "POST / HTTP/1.1\r\n\r\nhi", 0, 0, "Could not find content-length header!", ""},
		{"not a number", "POST / HTTP/1.1\r\nContent-Length: five\r\n\r\n", 0, 0, "Could not parse content-length as an integer!", ""},
		{"negative", "POST / HTTP/1.1\r\nContent-Length: -1\r\n\r\n", 0, 0, "Could not parse content-length as an integer!", ""},
		{"over ceiling", "POST / HTTP/1.1\r\nContent-Length: 100\r\n\r\n", 10, 0, "Could not allocate space for a segment!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ParseHead([]byte(tt.data), DefaultLimits())
			if err != nil {
				t.Fatalf("ParseHead() error = %v", err)
			}
			got, err := h.RemainingBody(tt.max)
			if tt.wantMsg != "" {
				if err == nil || err.Error() != tt.wantMsg {
					t.Fatalf("RemainingBody() error = %v, want %q", err, tt.wantMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("RemainingBody() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("RemainingBody() = %d, want %d", got, tt.want)
			}
			if string(h.BodyPart) != tt.body {
				t.Errorf("BodyPart = %q, want %q", h.BodyPart, tt.body)
			}
		})
	}
}

func TestParseResponse_Simple(t *testing.T) {
	data := []byte("HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 5\r\n\r\nHello")
	resp, err := ParseResponse(data, DefaultLimits())
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}

	if resp.Major != 1 || resp.Minor != 1 {
		t.Errorf("Version = %d.%d, want 1.1", resp.Major, resp.Minor)
	}
	if resp.Status != 200 {
		t.Errorf("Status = %d, want 200", resp.Status)
	}
	if resp.Reason != "OK" {
		t.Errorf("Reason = %q, want OK", resp.Reason)
	}
	if string(resp.Body) != "Hello" {
		t.Errorf("Body = %q, want Hello", string(resp.Body))
	}
}

func TestParseResponse_MultiWordReason(t *testing.T) {
	resp, err := ParseResponse([]byte("HTTP/1.1 404 Not Found\r\nContent-Length: 0\r\n\r\n"), DefaultLimits())
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if resp.Reason != "Not Found" || len(resp.Body) != 0 {
		t.Errorf("got %q with body %q", resp.Reason, resp.Body)
	}
}

func TestParseResponse_Malformed(t *testing.T) {
	for _, data := range []string{
		"",
		"HTTP/1.1 abc OK\r\n\r\n",
		"HTTP/1 200 OK\r\n\r\n",
		"XTTP/1.1 200 OK\r\n\r\n",
		"HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\nshort",
	} {
		if _, err := ParseResponse([]byte(data), DefaultLimits()); err == nil {
			t.Errorf("ParseResponse(%q) = nil error", data)
		}
	}
}

func TestDetectMessageType(t *testing.T) {
	tests := []struct {
		data, want string
	}{
		{"HTTP/1.1 200 OK\r\n", "response"},
		{"GET / HTTP/1.1\r\n", "request"},
		{"HTTP", "request"},
		{"", "request"},
	}
	for _, tt := range tests {
		if got := DetectMessageType([]byte(tt.data)); got != tt.want {
			t.Errorf("DetectMessageType(%q) = %q, want %q", tt.data, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Validate([]byte("GET / HTTP/1.1\r\n\r\n"), DefaultLimits()); err != nil {
		t.Errorf("Validate(request) error = %v", err)
	}
	if err := Validate([]byte("HTTP/1.1 204 No Content\r\n\r\n"), DefaultLimits()); err != nil {
		t.Errorf("Validate(response) error = %v", err)
	}
	if err := Validate([]byte("BREW / HTTP/1.1\r\n\r\n"), DefaultLimits()); err == nil {
		t.Error("Validate(bad method) = nil error")
	}
}

func TestParseMethod(t *testing.T) {
	if m, ok := ParseMethod("DELETE"); !ok || m != DELETE {
		t.Errorf("ParseMethod(DELETE) = %v, %v", m, ok)
	}
	if _, ok := ParseMethod("PATCH"); ok {
		t.Error("ParseMethod(PATCH) ok = true, want false")
	}
	if Method(99).String() != "" {
		t.Errorf("Method(99).String() = %q, want empty", Method(99).String())
	}
}

func BenchmarkParseHead(b *testing.B) {
	data := []byte("GET /search?q=hello&page=1 HTTP/1.1\r\nHost: example.com\r\nUser-Agent: bench\r\nAccept: */*\r\n\r\n")
	lim := DefaultLimits()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := ParseHead(data, lim); err != nil {
			b.Fatal(err)
		}
	}
}
