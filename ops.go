package main

// opTable maps every command byte to its effect; bytes that are not
// commands map to nop. Movement after the command is handled by step, so
// direction commands only need to set the direction.
var opTable [256]func(vm *VM)

func init() {
	for i := range opTable {
		opTable[i] = (*VM).nop
	}
	for d := byte(0); d <= 9; d++ {
		val := int32(d)
		opTable['0'+d] = func(vm *VM) { vm.stack.push(val) }
	}
	for c, op := range map[byte]func(vm *VM){
		'+':  (*VM).add,
		'-':  (*VM).sub,
		'*':  (*VM).mul,
		'/':  (*VM).div,
		'%':  (*VM).mod,
		'!':  (*VM).not,
		'`':  (*VM).greater,
		'>':  (*VM).goEast,
		'<':  (*VM).goWest,
		'^':  (*VM).goNorth,
		'v':  (*VM).goSouth,
		'?':  (*VM).goAway,
		'_':  (*VM).branchHorizontal,
		'|':  (*VM).branchVertical,
		'"':  (*VM).toggleStringMode,
		':':  (*VM).dup,
		'\\': (*VM).swap,
		'$':  (*VM).drop,
		'.':  (*VM).outputInt,
		',':  (*VM).outputByte,
		'#':  (*VM).bridge,
		'p':  (*VM).put,
		'g':  (*VM).get,
		'&':  (*VM).inputInt,
		'~':  (*VM).inputByte,
		'@':  (*VM).stop,
	} {
		opTable[c] = op
	}
}

//// Arithmetic

// Binary operations pop b first, then a, and push a op b; so "52-" pushes 3.

func (vm *VM) add() { b, a := vm.stack.pop(), vm.stack.pop(); vm.stack.push(a + b) }
func (vm *VM) sub() { b, a := vm.stack.pop(), vm.stack.pop(); vm.stack.push(a - b) }
func (vm *VM) mul() { b, a := vm.stack.pop(), vm.stack.pop(); vm.stack.push(a * b) }

// div and mod truncate toward zero. A zero divisor yields 0 rather than
// asking the user for an answer, as the first language description did.
func (vm *VM) div() {
	b, a := vm.stack.pop(), vm.stack.pop()
	if b == 0 {
		vm.stack.push(0)
	} else {
		vm.stack.push(a / b)
	}
}

func (vm *VM) mod() {
	b, a := vm.stack.pop(), vm.stack.pop()
	if b == 0 {
		vm.stack.push(0)
	} else {
		vm.stack.push(a % b)
	}
}

func (vm *VM) not()     { vm.stack.push(boolCell(vm.stack.pop() == 0)) }
func (vm *VM) greater() { b, a := vm.stack.pop(), vm.stack.pop(); vm.stack.push(boolCell(a > b)) }

//// Control flow

func (vm *VM) goEast()  { vm.ip.dir = east }
func (vm *VM) goWest()  { vm.ip.dir = west }
func (vm *VM) goNorth() { vm.ip.dir = north }
func (vm *VM) goSouth() { vm.ip.dir = south }
func (vm *VM) goAway()  { vm.ip.dir = direction(vm.rng.IntN(4)) }

func (vm *VM) branchHorizontal() {
	if vm.stack.pop() == 0 {
		vm.ip.dir = east
	} else {
		vm.ip.dir = west
	}
}

func (vm *VM) branchVertical() {
	if vm.stack.pop() == 0 {
		vm.ip.dir = south
	} else {
		vm.ip.dir = north
	}
}

// bridge moves once here, and step moves again after it, skipping a cell.
func (vm *VM) bridge() { vm.ip.advance() }

func (vm *VM) stop() { vm.halted = true }

func (vm *VM) nop() {}

// While string mode is on, step pushes every cell other than the closing
// quote itself, so this only ever runs to turn it on or off.
func (vm *VM) toggleStringMode() { vm.ip.stringMode = !vm.ip.stringMode }

//// Stack manipulation

func (vm *VM) dup()  { val := vm.stack.pop(); vm.stack.push(val); vm.stack.push(val) }
func (vm *VM) swap() { b, a := vm.stack.pop(), vm.stack.pop(); vm.stack.push(b); vm.stack.push(a) }
func (vm *VM) drop() { vm.stack.pop() }

//// Grid access

// put is the self modification primitive: the written byte is executed if
// and when the instruction pointer reaches it.
func (vm *VM) put() {
	y, x, val := vm.stack.pop(), vm.stack.pop(), vm.stack.pop()
	vm.grid.Put(int(x), int(y), byte(val))
}

// get pushes the cell as a signed byte, so that -1 stored with put reads
// back as -1.
func (vm *VM) get() {
	y, x := vm.stack.pop(), vm.stack.pop()
	vm.stack.push(int32(int8(vm.grid.Get(int(x), int(y)))))
}

//// Input/Output

func (vm *VM) outputInt()  { vm.writeInt(vm.stack.pop()) }
func (vm *VM) outputByte() { vm.writeByte(byte(vm.stack.pop())) }
func (vm *VM) inputInt()   { vm.stack.push(vm.readInt()) }
func (vm *VM) inputByte()  { vm.stack.push(vm.readByte()) }

func boolCell(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
