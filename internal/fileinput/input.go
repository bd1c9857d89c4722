package fileinput

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// StdinName is the conventional file name that refers to standard input.
const StdinName = "-"

// File is a named input stream; Close is a no-op for standard input.
type File struct {
	io.Reader
	name   string
	closer io.Closer
}

// Name returns the name that the file was opened with, or "<stdin>".
func (f *File) Name() string { return f.name }

// Close closes the underlying file, unless it is standard input.
func (f *File) Close() error {
	if f.closer != nil {
		return f.closer.Close()
	}
	return nil
}

// Open opens the named file for reading; StdinName refers to os.Stdin.
func Open(name string) (*File, error) {
	if name == StdinName {
		return &File{Reader: os.Stdin, name: "<stdin>"}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return &File{Reader: f, name: name, closer: f}, nil
}

// Source is a fully read program source.
type Source struct {
	Name string
	Data []byte
}

// String returns the source name.
func (src Source) String() string { return src.Name }

// Digest returns a hex encoded sha256 of the source data, identifying the
// program independent of its file name.
func (src Source) Digest() string {
	sum := sha256.Sum256(src.Data)
	return hex.EncodeToString(sum[:])
}

// ReadSource reads all of the named file (or standard input).
func ReadSource(name string) (src Source, err error) {
	f, err := Open(name)
	if err != nil {
		return src, err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	src.Name = f.Name()
	src.Data, err = io.ReadAll(f)
	if err != nil {
		err = fmt.Errorf("failed to read %v: %w", src.Name, err)
	}
	return src, err
}
