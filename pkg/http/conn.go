package http

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/shapestone/shape-httpd/internal/fastparser"
	"github.com/shapestone/shape-httpd/internal/refcount"
)

// State is the lifecycle stage of a server or connection.
type State int32

// Server states run Created, Bound, Listening, Closed. Connection states run
// Accepted, Serving, Closed.
const (
	StateCreated State = iota
	StateBound
	StateListening
	StateAccepted
	StateServing
	StateClosed
)

var stateNames = [...]string{
	StateCreated:   "created",
	StateBound:     "bound",
	StateListening: "listening",
	StateAccepted:  "accepted",
	StateServing:   "serving",
	StateClosed:    "closed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// errClientGone marks a connection closed before it sent a single byte.
var errClientGone = errors.New("http: client closed before sending a request")

// Conn is one accepted connection. It is owned through a reference-counted
// handle; the last release closes the socket.
type Conn struct {
	id       string
	nc       net.Conn
	srv      *Server
	log      zerolog.Logger
	arena    *refcount.Arena
	state    atomic.Int32
	accepted time.Time
}

// ID returns the connection's unique id.
func (c *Conn) ID() string { return c.id }

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr { return c.nc.RemoteAddr() }

// Logger returns the connection's logger, tagged with its id and peer.
func (c *Conn) Logger() *zerolog.Logger { return &c.log }

// State returns the connection's lifecycle stage.
func (c *Conn) State() State { return State(c.state.Load()) }

func (c *Conn) setState(st State) { c.state.Store(int32(st)) }

func (s *Server) newConn(nc net.Conn) *refcount.Handle[*Conn] {
	c := &Conn{
		id:       uuid.NewString(),
		nc:       nc,
		srv:      s,
		arena:    refcount.NewArena(),
		accepted: time.Now(),
	}
	c.log = s.log.With().Str("conn", c.id).Str("peer", nc.RemoteAddr().String()).Logger()
	c.setState(StateAccepted)

	s.connWG.Add(1)
	h := refcount.Acquire(c, (*Conn).close)
	s.conns.Store(c.id, h)
	return h
}

// close runs once, when the last reference to the connection is released.
func (c *Conn) close() {
	c.arena.Close()
	if err := c.nc.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		c.log.Debug().Err(err).Msg("close")
	}
	c.setState(StateClosed)
	c.srv.conns.Delete(c.id)
	c.log.Debug().Dur("lifetime", time.Since(c.accepted)).Msg("connection closed")
	c.srv.connWG.Done()
}

// serveConn receives one request, answers it and releases h.
func (s *Server) serveConn(h *refcount.Handle[*Conn]) {
	defer refcount.Release(&h)
	c := h.Value()
	c.setState(StateServing)

	req, err := c.readRequest()
	if errors.Is(err, errClientGone) {
		c.log.Debug().Msg("client closed without a request")
		return
	}

	var resp *Response
	var opts BuildOptions
	if err != nil {
		re := asRequestError(err)
		c.log.Warn().Err(err).Int("status", re.Status).Msg("bad request")
		c.drain()
		resp, opts = ErrorResponse(re.Status, re.Message), s.errBuild
	} else {
		resp, opts = s.handle(c, req)
	}

	c.writeResponse(resp, opts)
	if req != nil {
		c.log.Info().
			Str("method", req.Method.String()).
			Str("path", req.Path).
			Int("status", resp.Status).
			Int("body", len(req.Body)).
			Dur("elapsed", time.Since(c.accepted)).
			Msg("request served")
	}
	s.served.Inc()
}

// handle runs the handler, turning a panic or a nil response into 500.
func (s *Server) handle(c *Conn, req *Request) (resp *Response, opts BuildOptions) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Error().Interface("panic", r).Msg("handler panic")
			resp, opts = ErrorResponse(StatusInternalServerError, StatusText(StatusInternalServerError)), s.errBuild
		}
	}()

	resp = s.handler.Serve(c, req)
	if resp == nil {
		c.log.Error().Msg("handler returned no response")
		return ErrorResponse(StatusInternalServerError, StatusText(StatusInternalServerError)), s.errBuild
	}
	return resp, s.build
}

// readRequest reads segments until the head is complete, parses it and then
// reads the rest of the body.
func (c *Conn) readRequest() (*Request, error) {
	cfg := &c.srv.cfg
	seg := make([]byte, cfg.SegmentSize)

	data, eof, err := c.readHead(seg)
	if err != nil {
		return nil, err
	}

	head, err := fastparser.ParseHead(data, c.srv.lim)
	if err != nil {
		return nil, err
	}
	c.arena.Track(refcount.Acquire(head, releaseHead))

	if e := c.log.Debug(); e.Enabled() {
		e.Interface("head", headFields(head)).
			Str("headers", head.Headers.Dump(nil)).
			Msg("request head")
	}

	remaining, err := head.RemainingBody(cfg.MaxBodySize)
	if err != nil {
		return nil, err
	}

	body := refcount.AcquireSlice[byte](0, nil)
	c.arena.Track(body)
	limit := int(cfg.MaxBodySize)
	if err := refcount.Append(body, limit, head.BodyPart...); err != nil {
		return nil, newRequestError(StatusInternalServerError, "Could not allocate space for a segment!", err)
	}

	for remaining > 0 && !eof {
		chunk := seg
		if int64(len(chunk)) > remaining {
			chunk = chunk[:remaining]
		}
		n, rerr := c.readSegment(chunk)
		if n > 0 {
			if err := refcount.Append(body, limit, chunk[:n]...); err != nil {
				return nil, newRequestError(StatusInternalServerError, "Could not allocate space for a segment!", err)
			}
			remaining -= int64(n)
		}
		switch {
		case rerr == nil:
		case errors.Is(rerr, io.EOF):
			eof = true
		default:
			return nil, readError(rerr)
		}
	}
	if remaining > 0 {
		c.log.Debug().Int64("missing", remaining).Msg("body cut short by EOF")
	}

	return requestFromHead(head, body.Value()), nil
}

// readHead reads until HeadEnd finds the blank line, the peer stops
// sending, or the head outgrows MaxHeadSize. eof reports that the peer has
// closed its side.
func (c *Conn) readHead(seg []byte) (data []byte, eof bool, err error) {
	cfg := &c.srv.cfg
	data = make([]byte, 0, cfg.SegmentSize)

	for fastparser.HeadEnd(data) < 0 {
		if len(data) >= cfg.MaxHeadSize {
			return nil, false, newRequestError(StatusRequestHeaderFieldsTooLarge,
				fmt.Sprintf("Request head too large (max=%d)!", cfg.MaxHeadSize), nil)
		}

		n, rerr := c.readSegment(seg)
		data = append(data, seg[:n]...)
		switch {
		case rerr == nil:
		case errors.Is(rerr, io.EOF):
			if len(data) == 0 {
				return nil, true, errClientGone
			}
			// Parse whatever arrived; the stages report what is missing.
			return data, true, nil
		default:
			return nil, false, readError(rerr)
		}
	}
	return data, false, nil
}

func (c *Conn) readSegment(p []byte) (int, error) {
	if d := c.srv.cfg.ReadTimeout.Std(); d > 0 {
		if err := c.nc.SetReadDeadline(time.Now().Add(d)); err != nil {
			return 0, err
		}
	}
	return c.nc.Read(p)
}

func readError(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return newRequestError(StatusRequestTimeout, StatusText(StatusRequestTimeout), err)
	}
	return newRequestError(StatusInternalServerError, "Could not read the request!", err)
}

// drain discards bytes the client is still sending so that closing the
// socket does not reset the connection before the error response arrives.
// It stops after DrainTimeout without data, polling in DrainStep slices, or
// once MaxHeadSize+MaxBodySize bytes were discarded.
func (c *Conn) drain() {
	cfg := &c.srv.cfg
	idle := cfg.DrainTimeout.Std()
	if idle <= 0 {
		return
	}
	step := cfg.DrainStep.Std()
	budget := int64(cfg.MaxHeadSize) + cfg.MaxBodySize
	scratch := make([]byte, cfg.SegmentSize)

	var drained int64
	quiet := time.Duration(0)
	for quiet < idle && drained < budget {
		if err := c.nc.SetReadDeadline(time.Now().Add(step)); err != nil {
			return
		}
		n, err := c.nc.Read(scratch)
		if n > 0 {
			drained += int64(n)
			quiet = 0
			continue
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			quiet += step
			continue
		}
		break
	}
	if drained > 0 {
		c.log.Debug().Int64("bytes", drained).Msg("drained")
	}
}

func (c *Conn) writeResponse(resp *Response, opts BuildOptions) {
	defer resp.Close()
	if d := c.srv.cfg.WriteTimeout.Std(); d > 0 {
		if err := c.nc.SetWriteDeadline(time.Now().Add(d)); err != nil {
			c.log.Error().Err(err).Msg("set write deadline")
			return
		}
	}
	n, err := WriteResponse(c.nc, resp, opts)
	if err != nil {
		c.log.Error().Err(err).Int("written", n).Msg("write response")
	}
}

func releaseHead(h *fastparser.Head) {
	if h.URI != nil {
		h.URI.Query.Close()
	}
	if h.Headers != nil {
		h.Headers.Close()
	}
}
