// Package payload implements the framing used to attach a program to the end
// of an executable file: a CBOR encoded Program followed by a fixed size
// trailer holding the encoded length and a magic marker.
package payload

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// Program is a serialized program grid along with its run configuration.
type Program struct {
	Width  int    `cbor:"1,keyasint"`
	Height int    `cbor:"2,keyasint"`
	Cells  []byte `cbor:"3,keyasint"`
	Config Config `cbor:"4,keyasint"`
}

// Config is the serialized subset of a run configuration; input streams
// are supplied by whoever runs the executable.
type Config struct {
	Standard  uint8  `cbor:"1,keyasint"`
	Metrics   bool   `cbor:"2,keyasint,omitempty"`
	Seed      uint64 `cbor:"3,keyasint,omitempty"`
	Seeded    bool   `cbor:"4,keyasint,omitempty"`
	StepLimit uint64 `cbor:"5,keyasint,omitempty"`
}

const (
	magic       = "gofunge\x00"
	trailerSize = 8 + int64(len(magic))

	// MaxSize bounds the encoded size of a Program; anything larger is
	// treated as a corrupt trailer rather than allocated.
	MaxSize = 1 << 24
)

var (
	// ErrNotFound indicates that no payload trailer is present.
	ErrNotFound = errors.New("no program payload")

	errCorrupt = errors.New("corrupt program payload")
)

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("payload: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Validate checks that the cell data agrees with the stated dimensions.
func (prog *Program) Validate() error {
	if prog.Width <= 0 || prog.Height <= 0 {
		return fmt.Errorf("%w: invalid grid size %v x %v", errCorrupt, prog.Width, prog.Height)
	}
	if n := prog.Width * prog.Height; len(prog.Cells) != n {
		return fmt.Errorf("%w: have %v cells, expected %v", errCorrupt, len(prog.Cells), n)
	}
	return nil
}

// Append writes prog to w, followed by its trailer.
func Append(w io.Writer, prog *Program) error {
	if err := prog.Validate(); err != nil {
		return err
	}
	data, err := encMode.Marshal(prog)
	if err != nil {
		return fmt.Errorf("payload: marshal program: %w", err)
	}
	var trailer [trailerSize]byte
	binary.LittleEndian.PutUint64(trailer[:8], uint64(len(data)))
	copy(trailer[8:], magic)
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write(trailer[:])
	return err
}

// Read decodes the Program attached to the end of the size byte long r.
// It returns ErrNotFound if r has no trailer, and otherwise also returns the
// size of the data that precedes the payload.
func Read(r io.ReaderAt, size int64) (*Program, int64, error) {
	n, err := dataSize(r, size)
	if err != nil {
		return nil, size, err
	}
	base := size - trailerSize - n
	data := make([]byte, n)
	if _, err := r.ReadAt(data, base); err != nil {
		return nil, size, fmt.Errorf("payload: read program: %w", err)
	}
	var prog Program
	if err := cbor.Unmarshal(data, &prog); err != nil {
		return nil, size, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	if err := prog.Validate(); err != nil {
		return nil, size, err
	}
	return &prog, base, nil
}

// BaseSize returns the size of the data preceding any payload attached to
// r; this is just size if r has no payload.
func BaseSize(r io.ReaderAt, size int64) (int64, error) {
	n, err := dataSize(r, size)
	if errors.Is(err, ErrNotFound) {
		return size, nil
	} else if err != nil {
		return 0, err
	}
	return size - trailerSize - n, nil
}

func dataSize(r io.ReaderAt, size int64) (int64, error) {
	if size < trailerSize {
		return 0, ErrNotFound
	}
	var trailer [trailerSize]byte
	if _, err := r.ReadAt(trailer[:], size-trailerSize); err != nil {
		return 0, fmt.Errorf("payload: read trailer: %w", err)
	}
	if string(trailer[8:]) != magic {
		return 0, ErrNotFound
	}
	n := binary.LittleEndian.Uint64(trailer[:8])
	if n > MaxSize || int64(n) > size-trailerSize {
		return 0, fmt.Errorf("%w: invalid length %v", errCorrupt, n)
	}
	return int64(n), nil
}
