package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jcorbin/gofunge/internal/byteio"
)

type vmDumper struct {
	vm  *VM
	out io.Writer

	// blankRows keeps rows that hold only spaces, which are elided by default.
	blankRows bool
}

func (dump vmDumper) dump() {
	vm := dump.vm
	fmt.Fprintf(dump.out, "# VM Dump\n")
	fmt.Fprintf(dump.out, "  ip: @%v,%v %v", vm.ip.x, vm.ip.y, vm.ip.dir)
	if vm.ip.stringMode {
		fmt.Fprintf(dump.out, " string")
	}
	if vm.halted {
		fmt.Fprintf(dump.out, " halted")
	}
	fmt.Fprintf(dump.out, "\n")
	fmt.Fprintf(dump.out, "  steps: %v\n", vm.counters.Steps)
	dump.dumpStack()
	dump.dumpGrid()
}

func (dump vmDumper) dumpStack() {
	fmt.Fprintf(dump.out, "  stack: %v\n", []int32(dump.vm.stack))
}

// dumpGrid writes each row with unprintable bytes shown as glyphs, marking
// the instruction pointer's row and column.
func (dump vmDumper) dumpGrid() {
	vm := dump.vm
	fmt.Fprintf(dump.out, "# Grid\n")

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%*sv\n", 5+vm.ip.x, "")
	buf.WriteTo(dump.out)

	skipped := 0
	for y := 0; y < gridHeight; y++ {
		row := vm.grid.Row(y)
		if !dump.blankRows && y != vm.ip.y && len(bytes.TrimRight(row, " ")) == 0 {
			skipped++
			continue
		}
		if skipped > 0 {
			fmt.Fprintf(&buf, "  ... %v blank rows\n", skipped)
			skipped = 0
		}
		mark := ' '
		if y == vm.ip.y {
			mark = '>'
		}
		fmt.Fprintf(&buf, "%c%3v ", mark, y)
		for _, c := range bytes.TrimRight(row, " ") {
			buf.WriteString(byteio.Glyph(c))
		}
		buf.WriteByte('\n')
		buf.WriteTo(dump.out)
	}
	if skipped > 0 {
		fmt.Fprintf(dump.out, "  ... %v blank rows\n", skipped)
	}
}
