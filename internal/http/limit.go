package http

import (
	"errors"
	"io"
)

var ErrBodyTooLarge = errors.New("request body too large")

// readAllLimit reads up to n bytes and reports ErrBodyTooLarge if r holds more.
func readAllLimit(r io.Reader, n int) ([]byte, error) {
	limit := n + 1
	buf, err := io.ReadAll(io.LimitReader(r, int64(limit)))
	if err != nil {
		return buf, err
	}
	if len(buf) >= limit {
		return buf[:limit-1], ErrBodyTooLarge
	}
	return buf, nil
}
