package fastparser

// Method is one of the request methods the server understands.
type Method int

// Supported request methods.
const (
	OPTIONS Method = iota
	GET
	HEAD
	POST
	PUT
	DELETE
	TRACE
	CONNECT
)

var methodNames = [...]string{
	OPTIONS: "OPTIONS",
	GET:     "GET",
	HEAD:    "HEAD",
	POST:    "POST",
	PUT:     "PUT",
	DELETE:  "DELETE",
	TRACE:   "TRACE",
	CONNECT: "CONNECT",
}

// The Go compiler optimizes map lookups with string([]byte) keys to avoid
// allocating the temporary string, so lookupMethod is zero-alloc.
var methods = map[string]Method{
	"OPTIONS": OPTIONS,
	"GET":     GET,
	"HEAD":    HEAD,
	"POST":    POST,
	"PUT":     PUT,
	"DELETE":  DELETE,
	"TRACE":   TRACE,
	"CONNECT": CONNECT,
}

// String returns the method token, or "" for an unknown value.
func (m Method) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return ""
	}
	return methodNames[m]
}

// ParseMethod maps a method token to its Method.
func ParseMethod(s string) (Method, bool) {
	m, ok := methods[s]
	return m, ok
}

func lookupMethod(b []byte) (Method, bool) {
	m, ok := methods[string(b)]
	return m, ok
}

var headerNames = map[string]string{
	"Accept":            "Accept",
	"Accept-Encoding":   "Accept-Encoding",
	"Connection":        "Connection",
	"Content-Length":    "Content-Length",
	"Content-Type":      "Content-Type",
	"Host":              "Host",
	"Server":            "Server",
	"Transfer-Encoding": "Transfer-Encoding",
	"User-Agent":        "User-Agent",
}

// internHeaderName returns an interned string for common header names, avoiding allocation.
func internHeaderName(b []byte) string {
	if s, ok := headerNames[string(b)]; ok {
		return s
	}
	return string(b)
}
