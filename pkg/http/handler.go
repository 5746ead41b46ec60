package http

// A Handler answers one request. The returned Response is written and then
// the connection is closed; returning nil answers 500.
type Handler interface {
	Serve(c *Conn, req *Request) *Response
}

// HandlerFunc adapts an ordinary function to a Handler.
type HandlerFunc func(c *Conn, req *Request) *Response

// Serve calls f(c, req).
func (f HandlerFunc) Serve(c *Conn, req *Request) *Response {
	return f(c, req)
}

// AckBody is the body AckHandler replies with.
const AckBody = "Thank you for your request! :)"

// AckHandler acknowledges every request with 200 and a fixed body. It also
// tries to set Content-Type, which the builder ignores in favour of the
// server's value.
var AckHandler Handler = HandlerFunc(func(c *Conn, req *Request) *Response {
	resp := NewResponse(StatusOK, []byte(AckBody))
	if err := resp.SetHeader("X-Custom", "Hello, world! :)"); err != nil {
		c.Logger().Warn().Err(err).Msg("ack: set header")
	}
	if err := resp.SetHeader("Content-Type", "application/json"); err != nil {
		c.Logger().Warn().Err(err).Msg("ack: set header")
	}
	return resp
})
