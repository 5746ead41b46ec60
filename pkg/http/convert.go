package http

import (
	"github.com/shapestone/shape-core/pkg/ast"
	"github.com/shapestone/shape-httpd/internal/fastparser"
	"github.com/shapestone/shape-httpd/internal/parser"
)

// RequestToNode converts a Request to an AST ObjectNode. The body, if any,
// appears as "bodyPart".
func RequestToNode(req *Request) ast.SchemaNode {
	return parser.HeadToNode(&fastparser.Head{
		Method:   req.Method,
		URI:      req.URI,
		Headers:  req.Headers,
		Major:    req.Major,
		Minor:    req.Minor,
		BodyPart: req.Body,
	})
}

// ResponseToNode converts a Response to an AST ObjectNode as it would
// appear on the wire, required headers included.
func ResponseToNode(resp *Response, opts BuildOptions) (ast.SchemaNode, error) {
	data, err := MarshalWith(resp, opts)
	if err != nil {
		return nil, err
	}
	parsed, err := fastparser.ParseResponse(data, fastparser.DefaultLimits())
	if err != nil {
		return nil, err
	}
	return parser.ResponseToNode(parsed), nil
}

// NodeToResponse converts an AST ObjectNode to a Response.
func NodeToResponse(node ast.SchemaNode) (*Response, error) {
	fpResp, err := parser.NodeToResponse(node)
	if err != nil {
		return nil, err
	}
	return responseFromParsed(fpResp), nil
}

// headFields renders a parsed head as plain values for a structured log field.
func headFields(head *fastparser.Head) interface{} {
	return parser.NodeToInterface(parser.HeadToNode(head))
}
