package http

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shapestone/shape-httpd/internal/uri"
)

// Config holds the server settings. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	Addr        string `json:"addr"`         // host:port to listen on
	ContentType string `json:"content_type"` // default Content-Type of responses
	ServerName  string `json:"server_name"`  // Server header value

	SegmentSize  int   `json:"segment_size"`   // bytes per socket read
	MaxHeadSize  int   `json:"max_head_size"`  // request line plus headers
	MaxBodySize  int64 `json:"max_body_size"`  // request body
	MaxHeaders   int   `json:"max_headers"`    // header lines per request
	MaxURILength int   `json:"max_uri_length"` // raw request-target
	MaxParams    int   `json:"max_params"`     // distinct query names
	MaxValues    int   `json:"max_values"`     // values per query name

	ReadTimeout  Duration `json:"read_timeout"`  // per segment read
	WriteTimeout Duration `json:"write_timeout"` // response write
	DrainTimeout Duration `json:"drain_timeout"` // total idle time allowed while draining
	DrainStep    Duration `json:"drain_step"`    // single drain poll

	Workers   int `json:"workers"`    // 0 spawns one goroutine per connection
	QueueSize int `json:"queue_size"` // accepted connections waiting for a worker
}

// DefaultConfig returns the stock settings.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		ContentType:  DefaultContentType,
		ServerName:   ServerName,
		SegmentSize:  2048,
		MaxHeadSize:  8 << 10,
		MaxBodySize:  1 << 20,
		MaxHeaders:   64,
		MaxURILength: 1024,
		MaxParams:    128,
		MaxValues:    128,
		ReadTimeout:  Duration(10 * time.Second),
		WriteTimeout: Duration(10 * time.Second),
		DrainTimeout: Duration(50 * time.Millisecond),
		DrainStep:    Duration(5 * time.Millisecond),
		QueueSize:    128,
	}
}

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("http: invalid config")

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr is empty", ErrInvalidConfig)
	case c.SegmentSize <= 0:
		return fmt.Errorf("%w: segment_size must be positive", ErrInvalidConfig)
	case c.MaxHeadSize < c.SegmentSize:
		return fmt.Errorf("%w: max_head_size %d below segment_size %d", ErrInvalidConfig, c.MaxHeadSize, c.SegmentSize)
	case c.MaxBodySize < 0:
		return fmt.Errorf("%w: max_body_size is negative", ErrInvalidConfig)
	case c.MaxHeaders <= 0:
		return fmt.Errorf("%w: max_headers must be positive", ErrInvalidConfig)
	case c.MaxURILength <= 0 || c.MaxParams <= 0 || c.MaxValues <= 0:
		return fmt.Errorf("%w: uri limits must be positive", ErrInvalidConfig)
	case c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.DrainTimeout < 0:
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	case c.DrainTimeout > 0 && c.DrainStep <= 0:
		return fmt.Errorf("%w: drain_step must be positive", ErrInvalidConfig)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers is negative", ErrInvalidConfig)
	case c.Workers > 0 && c.QueueSize < 0:
		return fmt.Errorf("%w: queue_size is negative", ErrInvalidConfig)
	}
	return nil
}

func (c Config) uriLimits() uri.Limits {
	lim := uri.DefaultLimits()
	lim.MaxLen = c.MaxURILength
	lim.MaxParams = c.MaxParams
	lim.MaxSameParams = c.MaxValues
	if lim.MinParams > lim.MaxParams {
		lim.MinParams = lim.MaxParams
	}
	if lim.MinSameParams > lim.MaxSameParams {
		lim.MinSameParams = lim.MaxSameParams
	}
	return lim
}

func (c Config) buildOptions() BuildOptions {
	return BuildOptions{Server: c.ServerName, ContentType: c.ContentType}
}

// Duration is a time.Duration that reads and writes JSON as a string such
// as "10s", or as a number of nanoseconds.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		if len(b) < 2 || b[len(b)-1] != '"' {
			return fmt.Errorf("http: invalid duration %s", b)
		}
		v, err := time.ParseDuration(string(b[1 : len(b)-1]))
		if err != nil {
			return fmt.Errorf("http: invalid duration %s: %w", b, err)
		}
		*d = Duration(v)
		return nil
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("http: invalid duration %s: %w", b, err)
	}
	*d = Duration(n)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }
