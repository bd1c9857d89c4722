// Package flushio provides buffered byte writers that must be flushed
// explicitly, such as before a program blocks reading its input.
package flushio

import (
	"bufio"
	"io"
)

// WriteFlusher is a flush-able io.Writer that can also write single bytes,
// which is all that program output ever needs.
type WriteFlusher interface {
	io.Writer
	io.ByteWriter
	Flush() error
}

// NewWriteFlusher returns w if it is already a WriteFlusher. In memory
// buffers (like bytes.Buffer and strings.Builder) and io.Discard are written
// through directly with a no-op Flush; anything else gets a bufio.Writer.
func NewWriteFlusher(w io.Writer) WriteFlusher {
	switch impl := w.(type) {
	case WriteFlusher:
		return impl
	case interface {
		io.Writer
		Len() int
		Grow(n int)
		Reset()
	}:
		return direct{w}
	}
	if w == io.Discard {
		return direct{w}
	}
	return bufio.NewWriter(w)
}

type direct struct{ io.Writer }

func (d direct) Flush() error { return nil }

func (d direct) WriteByte(c byte) error {
	if bw, ok := d.Writer.(io.ByteWriter); ok {
		return bw.WriteByte(c)
	}
	_, err := d.Writer.Write([]byte{c})
	return err
}

// Tee returns a WriteFlusher that writes to, and flushes, every one of
// wfs; nil entries are ignored. Writing stops at the first error, while
// flushing continues through all of them, returning the first error.
func Tee(wfs ...WriteFlusher) WriteFlusher {
	var t tee
	for _, wf := range wfs {
		switch impl := wf.(type) {
		case nil:
		case tee:
			t = append(t, impl...)
		default:
			t = append(t, impl)
		}
	}
	switch len(t) {
	case 0:
		return nil
	case 1:
		return t[0]
	}
	return t
}

type tee []WriteFlusher

func (t tee) Write(p []byte) (int, error) {
	for _, wf := range t {
		if n, err := wf.Write(p); err != nil {
			return n, err
		} else if n < len(p) {
			return n, io.ErrShortWrite
		}
	}
	return len(p), nil
}

func (t tee) WriteByte(c byte) error {
	for _, wf := range t {
		if err := wf.WriteByte(c); err != nil {
			return err
		}
	}
	return nil
}

func (t tee) Flush() (err error) {
	for _, wf := range t {
		if ferr := wf.Flush(); err == nil {
			err = ferr
		}
	}
	return err
}
