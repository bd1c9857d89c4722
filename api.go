package main

import (
	"context"
	"errors"
	"io"
	"math/rand/v2"
	"time"

	"github.com/jcorbin/gofunge/internal/panicerr"
)

// ExitStatus tells how a run ended without error.
type ExitStatus uint8

const (
	// ExitHalted means the program reached "@".
	ExitHalted ExitStatus = iota
	// ExitStepLimit means the configured step limit ran out first.
	ExitStepLimit
)

func (status ExitStatus) String() string {
	switch status {
	case ExitHalted:
		return "halted"
	case ExitStepLimit:
		return "step limit"
	default:
		return "invalid"
	}
}

// New creates a VM that will run a copy of grid; a nil grid is blank.
func New(grid *Grid, opts ...VMOption) *VM {
	var vm VM
	if grid != nil {
		vm.grid = *grid
	} else {
		vm.grid.clear()
	}
	defaultOptions.apply(&vm)
	VMOptions(opts...).apply(&vm)
	if vm.rng == nil {
		vm.rng = newRand(uint64(time.Now().UnixNano()))
	}
	return &vm
}

// Run executes until the program halts, the step limit runs out, or ctx is
// done. Output is flushed before Run returns.
func (vm *VM) Run(ctx context.Context) (status ExitStatus, err error) {
	if vm.halted {
		return ExitHalted, nil
	}
	if vm.counters.Start.IsZero() {
		vm.counters.begin(vm.metrics)
	}
	err = panicerr.Recover("VM", func() error {
		status = vm.exec(ctx)
		return nil
	})
	vm.counters.end(vm.metrics)
	return status, vm.runError(err)
}

// Step executes at most n more steps, never exceeding the step limit, and
// reports whether the program has halted. Output is flushed before Step
// returns, so callers may interleave Step with reading what was written.
func (vm *VM) Step(n uint64) (halted bool, err error) {
	if vm.counters.Start.IsZero() {
		vm.counters.begin(vm.metrics)
	}
	if b := vm.budget(); n > b {
		n = b
	}
	err = panicerr.Catch("VM", func() error {
		vm.runSteps(n)
		return nil
	})
	if vm.halted {
		vm.counters.end(vm.metrics)
	}
	return vm.halted, vm.runError(err)
}

func (vm *VM) runError(err error) error {
	if ferr := vm.out.Flush(); err == nil {
		err = ferr
	}
	var he haltError
	if errors.As(err, &he) {
		err = he.error
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return positionError{vm.ip.x, vm.ip.y, err}
}

// Counters returns the performance counters so far.
func (vm *VM) Counters() Counters { return vm.counters }

// Grid returns a copy of the program grid in its current state.
func (vm *VM) Grid() *Grid { return vm.grid.Clone() }

// Position returns the instruction pointer's cell.
func (vm *VM) Position() (x, y int) { return vm.ip.x, vm.ip.y }

// Stack returns a copy of the stack, top last.
func (vm *VM) Stack() []int32 {
	values := make([]int32, len(vm.stack))
	copy(values, vm.stack)
	return values
}

// Halted reports whether the program has executed "@".
func (vm *VM) Halted() bool { return vm.halted }

// Standard returns the language standard the VM runs under.
func (vm *VM) Standard() Standard { return vm.standard }

// Run runs grid to completion under cfg, reading program input from in and
// writing output to out; either may be nil.
func Run(ctx context.Context, grid *Grid, cfg RunConfig, in io.Reader, out io.Writer, opts ...VMOption) (ExitStatus, Counters, error) {
	all := []VMOption{cfg}
	if in != nil {
		all = append(all, WithInput(in))
	}
	if out != nil {
		all = append(all, WithOutput(out))
	}
	vm := New(grid, append(all, opts...)...)
	status, err := vm.Run(ctx)
	if cerr := vm.Close(); err == nil {
		err = cerr
	}
	return status, vm.Counters(), err
}

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func WithInput(r io.Reader) VMOption     { return withInput(r) }
func WithOutput(w io.Writer) VMOption    { return withOutput(w) }
func WithTee(w io.Writer) VMOption       { return withTee(w) }
func WithStepLimit(n uint64) VMOption    { return stepLimitOption(n) }
func WithSeed(seed uint64) VMOption      { return seedOption(seed) }
func WithStandard(std Standard) VMOption { return std }
func WithMetrics(enabled bool) VMOption  { return metricsOption(enabled) }

func WithLogf(logfn func(mess string, args ...interface{})) VMOption { return withLogfn(logfn) }
