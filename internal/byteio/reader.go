package byteio

import (
	"bufio"
	"io"
)

// Reader is an io.Reader that also supports reading, unreading, and peeking
// at bytes; *bufio.Reader is the canonical implementation.
type Reader interface {
	io.Reader
	io.ByteScanner
	Peek(n int) ([]byte, error)
}

// NewReader returns a Reader from r; if r already implements, it is simply
// returned. Otherwise bufio.Reader is used to provide byte scanning around
// the given reader.
func NewReader(r io.Reader) Reader {
	if impl, ok := r.(Reader); ok {
		return impl
	}
	return bufio.NewReader(r)
}

// IsSpace reports whether b is ASCII whitespace.
func IsSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// IsDigit reports whether b is an ASCII decimal digit.
func IsDigit(b byte) bool { return '0' <= b && b <= '9' }
