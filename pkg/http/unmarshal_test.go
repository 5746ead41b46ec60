package http

import (
	"testing"
)

func TestUnmarshalResponse(t *testing.T) {
	data := "HTTP/1.1 404 Not Found\r\n" +
		"Connection: Closed\r\n" +
		"Content-Type: application/json\r\n" +
		"Server: shape-httpd/test\r\n" +
		"Content-Length: 15\r\n" +
		"\r\n" +
		`{"error":true}` + "\n"

	resp, err := UnmarshalResponse([]byte(data))
	if err != nil {
		t.Fatalf("UnmarshalResponse() error = %v", err)
	}
	if resp.Status != StatusNotFound {
		t.Errorf("Status = %d, want 404", resp.Status)
	}
	if ct := resp.Header("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if resp.Header("server") != "shape-httpd/test" {
		t.Errorf("Server = %q", resp.Header("server"))
	}
	if len(resp.Body) != 15 {
		t.Errorf("len(Body) = %d, want 15", len(resp.Body))
	}
}

func TestUnmarshalResponse_Errors(t *testing.T) {
	for _, data := range []string{
		"",
		"GET / HTTP/1.1\r\n\r\n",
		"HTTP/1.1 2OO OK\r\n\r\n",
		"HTTP/1.1 200 OK\r\nContent-Length: 4\r\n\r\nab",
	} {
		if _, err := UnmarshalResponse([]byte(data)); err == nil {
			t.Errorf("UnmarshalResponse(%q) error = nil", data)
		}
	}
}
