package byteio

import "strconv"

// c0Names contains the classic ASCII control character mnemonics.
var c0Names = [32]string{
	"NUL", "SOH", "STX", "ETX", "EOT", "ENQ", "ACK", "BEL",
	"BS", "HT", "NL", "VT", "NP", "CR", "SO", "SI",
	"DLE", "DC1", "DC2", "DC3", "DC4", "NAK", "SYN", "ETB",
	"CAN", "EM", "SUB", "ESC", "FS", "GS", "RS", "US",
}

// ControlName returns the "<NAME>" mnemonic for a C0 control byte or DEL,
// and the empty string for any other byte.
func ControlName(b byte) string {
	if b < 0x20 {
		return "<" + c0Names[b] + ">"
	}
	if b == 0x7f {
		return "<DEL>"
	}
	return ""
}

// Glyph returns a single-width printable rendering of b: printable ASCII is
// itself, controls use the unicode control pictures block, and bytes past
// ASCII render as a middle dot.
func Glyph(b byte) string {
	switch {
	case b < 0x20:
		return string(rune(0x2400 + int(b)))
	case b == 0x7f:
		return "␡"
	case b >= 0x80:
		return "·"
	}
	return string(rune(b))
}

// Quote returns a Go-ish quoted rendering of b for trace logs, e.g. '>' or
// '\x00' or '<ESC>'.
func Quote(b byte) string {
	if name := ControlName(b); name != "" {
		return name
	}
	if b >= 0x80 {
		return "'\\x" + strconv.FormatUint(uint64(b), 16) + "'"
	}
	return strconv.QuoteRune(rune(b))
}
