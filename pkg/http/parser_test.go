package http

import (
	"strings"
	"testing"

	"github.com/shapestone/shape-core/pkg/ast"
)

func TestParse_Request(t *testing.T) {
	node, err := Parse("GET /api/users?page=2 HTTP/1.1\r\nHost: example.com\r\n\r\n")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	obj, ok := node.(*ast.ObjectNode)
	if !ok {
		t.Fatalf("expected ObjectNode, got %T", node)
	}
	props := obj.Properties()
	if v := props["method"].(*ast.LiteralNode).Value(); v != "GET" {
		t.Errorf("method = %v, want GET", v)
	}
	if v := props["path"].(*ast.LiteralNode).Value(); v != "/api/users" {
		t.Errorf("path = %v, want /api/users", v)
	}
	query := props["query"].(*ast.ObjectNode).Properties()
	if _, ok := query["page"]; !ok {
		t.Errorf("query = %v, want a page entry", query)
	}
}

func TestParse_Response(t *testing.T) {
	node, err := Parse("HTTP/1.1 200 OK\r\nContent-Length: 2\r\n\r\nok")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	props := node.(*ast.ObjectNode).Properties()
	if v := props["type"].(*ast.LiteralNode).Value(); v != "response" {
		t.Errorf("type = %v, want response", v)
	}
	if v := props["body"].(*ast.LiteralNode).Value(); v != "ok" {
		t.Errorf("body = %v, want ok", v)
	}
}

func TestParseReader(t *testing.T) {
	node, err := ParseReader(strings.NewReader("DELETE /item/7 HTTP/1.0\r\n\r\n"))
	if err != nil {
		t.Fatalf("ParseReader() error = %v", err)
	}
	props := node.(*ast.ObjectNode).Properties()
	if v := props["minor"].(*ast.LiteralNode).Value(); v != int64(0) {
		t.Errorf("minor = %v, want 0", v)
	}
}

func TestParse_Error(t *testing.T) {
	_, err := Parse("GET / HTTP/1.1\r\nHost localhost\r\n\r\n")
	if err == nil || err.Error() != "Malformed header!" {
		t.Errorf("Parse() error = %v, want Malformed header!", err)
	}
}
