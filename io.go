package main

import (
	"io"
	"strconv"

	"github.com/jcorbin/gofunge/internal/byteio"
)

// eofValue is pushed by "&" and "~" once input is exhausted.
const eofValue = -1

func (core *Core) writeByte(b byte) {
	core.haltif(core.out.WriteByte(b))
}

// writeInt writes val in decimal followed by a single space.
func (core *Core) writeInt(val int32) {
	var buf [12]byte
	_, err := core.out.Write(append(strconv.AppendInt(buf[:0], int64(val), 10), ' '))
	core.haltif(err)
}

// readByte returns the next input byte, or eofValue.
func (core *Core) readByte() int32 {
	core.haltif(core.out.Flush())
	b, err := core.in.ReadByte()
	if err == io.EOF {
		return eofValue
	}
	core.haltif(err)
	return int32(b)
}

// readInt scans the next decimal integer from input, skipping anything
// before it that isn't a digit or a minus sign directly followed by a
// digit. Non-numeric input is deliberately skipped rather than treated as
// an error, so "&" never halts on a malformed token. A single whitespace byte after the number is consumed; any other
// terminator is left for the next read. Returns eofValue if input ends
// before any digit; values wrap like all other arithmetic.
func (core *Core) readInt() int32 {
	core.haltif(core.out.Flush())

	neg := false
	for {
		b, err := core.in.ReadByte()
		if err == io.EOF {
			return eofValue
		}
		core.haltif(err)
		if byteio.IsDigit(b) {
			core.haltif(core.in.UnreadByte())
			break
		}
		if b == '-' {
			if next, _ := core.in.Peek(1); len(next) > 0 && byteio.IsDigit(next[0]) {
				neg = true
				break
			}
		}
	}

	var val int32
	for {
		b, err := core.in.ReadByte()
		if err == io.EOF {
			break
		}
		core.haltif(err)
		if !byteio.IsDigit(b) {
			if !byteio.IsSpace(b) {
				core.haltif(core.in.UnreadByte())
			}
			break
		}
		val = val*10 + int32(b-'0')
	}
	if neg {
		val = -val
	}
	return val
}
