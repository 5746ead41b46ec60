package http

import (
	"fmt"

	"github.com/shapestone/shape-httpd/internal/fastparser"
)

// UnmarshalRequest parses a complete request: head plus exactly
// Content-Length body bytes. Bytes beyond Content-Length are ignored.
//
// Query parameters are available through req.Query and req.QueryValues:
//
//	// GET /api/users?id=1&id=2 HTTP/1.1  →  req.QueryValues("id") = ["1", "2"]
func UnmarshalRequest(data []byte) (*Request, error) {
	head, err := fastparser.ParseHead(data, fastparser.DefaultLimits())
	if err != nil {
		return nil, err
	}
	remaining, err := head.RemainingBody(0)
	if err != nil {
		return nil, err
	}
	if remaining > 0 {
		return nil, fmt.Errorf("http: body incomplete, %d bytes missing", remaining)
	}
	return requestFromHead(head, head.BodyPart), nil
}

// UnmarshalResponse parses wire-format data as a response.
func UnmarshalResponse(data []byte) (*Response, error) {
	resp, err := fastparser.ParseResponse(data, fastparser.DefaultLimits())
	if err != nil {
		return nil, err
	}
	return responseFromParsed(resp), nil
}

// DetectMessageType returns "request" or "response" based on the data prefix.
// Data starting with "HTTP/" is detected as a response; everything else as a request.
func DetectMessageType(data []byte) string {
	return fastparser.DetectMessageType(data)
}

func requestFromHead(head *fastparser.Head, body []byte) *Request {
	req := &Request{
		Method:  head.Method,
		URI:     head.URI,
		Major:   head.Major,
		Minor:   head.Minor,
		Headers: head.Headers,
	}
	if head.URI != nil {
		req.Path = head.URI.Path
	}
	if len(body) > 0 {
		req.Body = body
	}
	return req
}

func responseFromParsed(resp *fastparser.Response) *Response {
	return &Response{Status: resp.Status, Headers: resp.Headers, Body: resp.Body}
}
