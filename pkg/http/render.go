package http

import (
	"fmt"

	"github.com/shapestone/shape-core/pkg/ast"
)

// Render converts a response AST node (from Parse or ResponseToNode) back to
// wire format bytes. The reason phrase is taken from the status table, not
// from the node.
func Render(node ast.SchemaNode) ([]byte, error) {
	obj, ok := node.(*ast.ObjectNode)
	if !ok {
		return nil, fmt.Errorf("http: Render: expected ObjectNode, got %T", node)
	}

	typeLit, ok := obj.Properties()["type"].(*ast.LiteralNode)
	if !ok {
		return nil, fmt.Errorf("http: Render: missing 'type' property")
	}

	msgType, ok := typeLit.Value().(string)
	if !ok {
		return nil, fmt.Errorf("http: Render: 'type' is not a string")
	}
	if msgType != "response" {
		return nil, fmt.Errorf("http: Render: unsupported message type %q", msgType)
	}

	resp, err := NodeToResponse(node)
	if err != nil {
		return nil, fmt.Errorf("http: Render: %w", err)
	}
	opts := BuildOptions{
		Server:      resp.Header("Server"),
		ContentType: resp.Header("Content-Type"),
	}
	return MarshalWith(resp, opts)
}
