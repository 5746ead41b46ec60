// Package uri splits a request-target into its path and a multi-valued query.
package uri

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/shapestone/shape-httpd/internal/dynarr"
	"github.com/shapestone/shape-httpd/internal/htable"
)

// Limits are the ceilings enforced while parsing.
type Limits struct {
	MaxLen        int // raw request-target length in bytes
	MinParams     int // initial query table slots
	MaxParams     int // distinct parameter names
	MinSameParams int // initial value slots per name
	MaxSameParams int // values per name
}

// DefaultLimits returns the stock ceilings.
func DefaultLimits() Limits {
	return Limits{
		MaxLen:        1024,
		MinParams:     4,
		MaxParams:     128,
		MinSameParams: 4,
		MaxSameParams: 128,
	}
}

// Values holds every value given for one parameter name, in arrival order.
type Values = dynarr.Array[string]

// Query maps parameter names to their values.
type Query = htable.Table[*Values]

// URI is a parsed request-target.
type URI struct {
	Raw   string
	Path  string
	Query *Query
}

// Error is a URI parse failure. Its message is meant to be shown to clients.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

var (
	// ErrTooLong marks a request-target over Limits.MaxLen.
	ErrTooLong = errors.New("uri: too long")
	// ErrMalformed marks a path or query that cannot be split.
	ErrMalformed = errors.New("uri: malformed")
	// ErrTooManyParams marks a query with more than Limits.MaxParams names.
	ErrTooManyParams = errors.New("uri: too many parameters")
	// ErrTooManyValues marks a name repeated more than Limits.MaxSameParams times.
	ErrTooManyValues = errors.New("uri: too many same-named parameters")
)

// Parse splits raw at the first '?' into path and query. A missing or empty
// query yields an empty, non-nil Query.
func Parse(raw string, lim Limits) (*URI, error) {
	if lim.MaxLen > 0 && len(raw) > lim.MaxLen {
		return nil, &Error{fmt.Sprintf("The URI was too long (max=%d)!", lim.MaxLen), ErrTooLong}
	}

	path, rawQuery, _ := strings.Cut(raw, "?")
	if path == "" || (path[0] != '/' && path != "*") {
		return nil, &Error{"Could not parse the path!", ErrMalformed}
	}

	query := htable.New[*Values](lim.MinParams, lim.MaxParams, (*Values).Clear)
	if err := parseQuery(query, rawQuery, lim); err != nil {
		query.Close()
		return nil, err
	}

	return &URI{Raw: raw, Path: path, Query: query}, nil
}

func parseQuery(query *Query, rawQuery string, lim Limits) error {
	if rawQuery == "" {
		return nil
	}

	segments := strings.Split(rawQuery, "&")
	for i, seg := range segments {
		if seg == "" && i == len(segments)-1 {
			break
		}
		name, value, err := splitParam(seg)
		if err != nil {
			return err
		}

		values, err := query.Fetch(name)
		if errors.Is(err, htable.ErrKeyNotFound) {
			values = dynarr.New[string](lim.MinSameParams, lim.MaxSameParams, nil)
			switch err := query.Insert(name, values); {
			case errors.Is(err, htable.ErrFull):
				return &Error{fmt.Sprintf("Too many query parameters (max=%d)!", lim.MaxParams), ErrTooManyParams}
			case err != nil:
				return &Error{"Malformed query parameter!", fmt.Errorf("%w: %w", ErrMalformed, err)}
			}
		}

		if _, err := values.Push(value); errors.Is(err, dynarr.ErrFull) {
			return &Error{fmt.Sprintf("Too many same-named query parameters (max=%d)!", lim.MaxSameParams), ErrTooManyValues}
		}
	}
	return nil
}

func splitParam(seg string) (name, value string, err error) {
	rawName, rawValue, ok := strings.Cut(seg, "=")
	if !ok || rawName == "" {
		return "", "", &Error{"Malformed query parameter!", ErrMalformed}
	}
	if name, err = url.QueryUnescape(rawName); err != nil {
		return "", "", &Error{"Malformed query parameter!", fmt.Errorf("%w: %w", ErrMalformed, err)}
	}
	if value, err = url.QueryUnescape(rawValue); err != nil {
		return "", "", &Error{"Malformed query parameter!", fmt.Errorf("%w: %w", ErrMalformed, err)}
	}
	return name, value, nil
}

// Get returns the first value of name, or "" if absent.
func (u *URI) Get(name string) string {
	if vals := u.Values(name); len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// Values returns every value of name in arrival order.
func (u *URI) Values(name string) []string {
	values, err := u.Query.Fetch(name)
	if err != nil {
		return nil
	}
	return values.Values()
}

// Names returns the distinct parameter names in table order.
func (u *URI) Names() []string {
	return u.Query.Keys()
}

// Map copies the query into a plain map.
func (u *URI) Map() map[string][]string {
	m := make(map[string][]string, u.Query.Len())
	u.Query.Range(func(name string, values *Values) bool {
		m[name] = values.Values()
		return true
	})
	return m
}
