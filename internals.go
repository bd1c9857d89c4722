package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/jcorbin/gofunge/internal/byteio"
)

// VM is a Befunge machine: a program grid, a data stack, and a single
// instruction pointer, along with its I/O Core.
type VM struct {
	Core

	grid  Grid
	stack stack
	ip    ip

	halted bool

	standard  Standard
	metrics   bool
	stepLimit uint64
	rng       *rand.Rand

	counters Counters
}

// stepBatch is how many steps run between context checks.
const stepBatch = 1 << 14

var errStepLimit = errors.New("step limit reached")

// step executes the cell under the IP and then moves it; once the program
// has halted the IP stays on the "@" cell.
func (vm *VM) step() {
	vm.counters.Steps++
	c := vm.grid.cells[vm.ip.y*gridWidth+vm.ip.x]
	if vm.logfn != nil {
		vm.logf(">", "@%v,%v %v %v -- s:%v", vm.ip.x, vm.ip.y, vm.ip.dir, byteio.Quote(c), []int32(vm.stack))
	}
	if vm.ip.stringMode && c != '"' {
		vm.stack.push(int32(c))
	} else if opTable[c](vm); vm.halted {
		return
	}
	vm.ip.advance()
}

// runSteps executes at most n steps, stopping early on halt, and returns
// how many ran.
func (vm *VM) runSteps(n uint64) (ran uint64) {
	for ; ran < n && !vm.halted; ran++ {
		vm.step()
	}
	return ran
}

// budget returns how many more steps may run before the step limit.
func (vm *VM) budget() uint64 {
	if vm.stepLimit == 0 {
		return ^uint64(0)
	}
	if vm.counters.Steps >= vm.stepLimit {
		return 0
	}
	return vm.stepLimit - vm.counters.Steps
}

func (vm *VM) exec(ctx context.Context) ExitStatus {
	if vm.logfn != nil {
		defer vm.withLogPrefix("	")()
	}
	for !vm.halted {
		n := vm.budget()
		if n == 0 {
			vm.logf("#", "%v after %v steps", errStepLimit, vm.counters.Steps)
			return ExitStepLimit
		}
		if n > stepBatch {
			n = stepBatch
		}
		vm.runSteps(n)
		vm.haltif(ctx.Err())
	}
	return ExitHalted
}

// positionError annotates an engine error with where the IP was.
type positionError struct {
	x, y int
	err  error
}

func (pe positionError) Error() string {
	return fmt.Sprintf("error at (%v,%v): %v", pe.x, pe.y, pe.err)
}

func (pe positionError) Unwrap() error { return pe.err }
