package fastparser

import (
	"bytes"
	"errors"
	"strconv"
)

// ErrBodyTooLarge marks a Content-Length above the caller's body ceiling.
var ErrBodyTooLarge = errors.New("fastparser: body too large")

// HeadEnd returns the offset just past the blank line ending the head in
// data, or -1 if the head is not complete yet. Both CRLF and bare LF line
// endings are accepted.
func HeadEnd(data []byte) int {
	for i := 0; i < len(data); i++ {
		if data[i] != '\n' {
			continue
		}
		switch {
		case i+1 < len(data) && data[i+1] == '\n':
			return i + 2
		case i+2 < len(data) && data[i+1] == '\r' && data[i+2] == '\n':
			return i + 3
		}
	}
	return -1
}

// ContentLength returns the declared body length. A missing header reports
// ok == false.
func (h *Head) ContentLength() (n int64, ok bool, err error) {
	raw, ferr := h.Headers.Fetch("Content-Length")
	if ferr != nil {
		return 0, false, nil
	}
	n, err = strconv.ParseInt(string(bytes.TrimSpace([]byte(raw))), 10, 64)
	if err != nil || n < 0 {
		return 0, true, &Error{Message: "Could not parse content-length as an integer!", Err: ErrSyntax}
	}
	return n, true, nil
}

// RemainingBody returns how many body bytes still have to be read after the
// fragment that arrived with the head. Every request must declare a length,
// bodiless ones included. A fragment longer than the declared length is
// truncated to it. maxBody <= 0 disables the ceiling.
func (h *Head) RemainingBody(maxBody int64) (int64, error) {
	n, ok, err := h.ContentLength()
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, &Error{Message: "Could not find content-length header!", Err: ErrSyntax}
	}
	if maxBody > 0 && n > maxBody {
		return 0, &Error{Message: "Could not allocate space for a segment!", Err: ErrBodyTooLarge}
	}

	if int64(len(h.BodyPart)) >= n {
		h.BodyPart = h.BodyPart[:n]
		return 0, nil
	}
	return n - int64(len(h.BodyPart)), nil
}
