// Package parser maps parsed HTTP/1.1 heads and responses to shape-core AST
// nodes (ObjectNode, LiteralNode, ArrayDataNode).
//
// A request head is mapped to an ObjectNode with the following structure:
//
//	{ "type": "request", "method": "POST", "path": "/api",
//	  "query": {"a": ["1", "2"]},
//	  "major": 1, "minor": 1,
//	  "headers": [{"key": "Host", "value": "example.com"}, ...],
//	  "bodyPart": "..." }
//
// Response:
//
//	{ "type": "response", "major": 1, "minor": 1, "statusCode": 200,
//	  "reason": "OK",
//	  "headers": [{"key": "Content-Type", "value": "text/plain"}, ...],
//	  "body": "..." }
package parser

import (
	"fmt"
	"sort"

	"github.com/shapestone/shape-core/pkg/ast"
	"github.com/shapestone/shape-httpd/internal/fastparser"
	"github.com/shapestone/shape-httpd/internal/uri"
)

var zeroPos = ast.Position{}

// Parser produces AST nodes from HTTP wire-format data.
type Parser struct {
	data []byte
	lim  fastparser.Limits
}

// NewParser creates a new AST parser for the given input.
func NewParser(data []byte) *Parser {
	return &Parser{data: data, lim: fastparser.DefaultLimits()}
}

// Parse parses the message and returns an AST ObjectNode.
func (p *Parser) Parse() (ast.SchemaNode, error) {
	v, err := fastparser.Unmarshal(p.data, p.lim)
	if err != nil {
		return nil, err
	}
	switch msg := v.(type) {
	case *fastparser.Head:
		defer msg.URI.Query.Close()
		return HeadToNode(msg), nil
	case *fastparser.Response:
		return ResponseToNode(msg), nil
	}
	return nil, fmt.Errorf("parser: unexpected message %T", v)
}

// HeadToNode maps a parsed request head to an ObjectNode.
func HeadToNode(h *fastparser.Head) ast.SchemaNode {
	props := map[string]ast.SchemaNode{
		"type":    ast.NewLiteralNode("request", zeroPos),
		"method":  ast.NewLiteralNode(h.Method.String(), zeroPos),
		"major":   ast.NewLiteralNode(int64(h.Major), zeroPos),
		"minor":   ast.NewLiteralNode(int64(h.Minor), zeroPos),
		"headers": headersToNode(h.Headers),
	}

	if h.URI != nil {
		props["path"] = ast.NewLiteralNode(h.URI.Path, zeroPos)
		props["query"] = queryToNode(h.URI.Query)
	}
	if len(h.BodyPart) > 0 {
		props["bodyPart"] = ast.NewLiteralNode(string(h.BodyPart), zeroPos)
	}

	return ast.NewObjectNode(props, zeroPos)
}

// ResponseToNode maps a parsed response to an ObjectNode.
func ResponseToNode(resp *fastparser.Response) ast.SchemaNode {
	props := map[string]ast.SchemaNode{
		"type":       ast.NewLiteralNode("response", zeroPos),
		"major":      ast.NewLiteralNode(int64(resp.Major), zeroPos),
		"minor":      ast.NewLiteralNode(int64(resp.Minor), zeroPos),
		"statusCode": ast.NewLiteralNode(int64(resp.Status), zeroPos),
		"reason":     ast.NewLiteralNode(resp.Reason, zeroPos),
		"headers":    headersToNode(resp.Headers),
	}

	if resp.Body != nil {
		props["body"] = ast.NewLiteralNode(string(resp.Body), zeroPos)
	}

	return ast.NewObjectNode(props, zeroPos)
}

// headersToNode emits headers sorted by name so the output is stable across
// table growth.
func headersToNode(headers *fastparser.Headers) ast.SchemaNode {
	if headers == nil {
		return ast.NewArrayDataNode(nil, zeroPos)
	}
	keys := headers.Keys()
	sort.Strings(keys)

	elements := make([]ast.SchemaNode, 0, len(keys))
	for _, k := range keys {
		v, err := headers.Fetch(k)
		if err != nil {
			continue
		}
		elements = append(elements, ast.NewObjectNode(map[string]ast.SchemaNode{
			"key":   ast.NewLiteralNode(k, zeroPos),
			"value": ast.NewLiteralNode(v, zeroPos),
		}, zeroPos))
	}
	return ast.NewArrayDataNode(elements, zeroPos)
}

func queryToNode(q *uri.Query) ast.SchemaNode {
	props := make(map[string]ast.SchemaNode)
	if q == nil {
		return ast.NewObjectNode(props, zeroPos)
	}
	q.Range(func(name string, values *uri.Values) bool {
		vals := values.Values()
		elements := make([]ast.SchemaNode, len(vals))
		for i, v := range vals {
			elements[i] = ast.NewLiteralNode(v, zeroPos)
		}
		props[name] = ast.NewArrayDataNode(elements, zeroPos)
		return true
	})
	return ast.NewObjectNode(props, zeroPos)
}

// NodeToInterface converts an AST node into plain Go values: objects become
// map[string]interface{}, arrays []interface{} and literals their value.
// The result is suitable for structured log fields.
func NodeToInterface(node ast.SchemaNode) interface{} {
	switch n := node.(type) {
	case *ast.ObjectNode:
		props := n.Properties()
		m := make(map[string]interface{}, len(props))
		for k, v := range props {
			m[k] = NodeToInterface(v)
		}
		return m
	case *ast.ArrayDataNode:
		elements := n.Elements()
		out := make([]interface{}, len(elements))
		for i, e := range elements {
			out[i] = NodeToInterface(e)
		}
		return out
	case *ast.LiteralNode:
		return n.Value()
	}
	return nil
}

// NodeToResponse converts an AST ObjectNode back to a fastparser.Response.
func NodeToResponse(node ast.SchemaNode) (*fastparser.Response, error) {
	obj, ok := node.(*ast.ObjectNode)
	if !ok {
		return nil, fmt.Errorf("expected ObjectNode, got %T", node)
	}

	props := obj.Properties()
	resp := &fastparser.Response{
		Major:  intProp(props, "major"),
		Minor:  intProp(props, "minor"),
		Status: intProp(props, "statusCode"),
		Reason: stringProp(props, "reason"),
	}

	lim := fastparser.DefaultLimits()
	resp.Headers = fastparser.NewHeaders(lim.HeaderSlots, lim.MaxHeaders)
	if v, ok := props["headers"]; ok {
		arr, ok := v.(*ast.ArrayDataNode)
		if !ok {
			return nil, fmt.Errorf("expected ArrayDataNode for headers, got %T", v)
		}
		for _, elem := range arr.Elements() {
			hdr, ok := elem.(*ast.ObjectNode)
			if !ok {
				continue
			}
			hp := hdr.Properties()
			if err := resp.Headers.Insert(stringProp(hp, "key"), stringProp(hp, "value")); err != nil {
				return nil, fmt.Errorf("header %q: %w", stringProp(hp, "key"), err)
			}
		}
	}
	if _, ok := props["body"]; ok {
		resp.Body = []byte(stringProp(props, "body"))
	}

	return resp, nil
}

func stringProp(props map[string]ast.SchemaNode, key string) string {
	if lit, ok := props[key].(*ast.LiteralNode); ok {
		s, _ := lit.Value().(string)
		return s
	}
	return ""
}

func intProp(props map[string]ast.SchemaNode, key string) int {
	lit, ok := props[key].(*ast.LiteralNode)
	if !ok {
		return 0
	}
	switch v := lit.Value().(type) {
	case int64:
		return int(v)
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
