package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jcorbin/gofunge/internal/logio"
)

type vmTestCases []vmTestCase

func (vmts vmTestCases) run(t *testing.T) {
	{
		var exclusive []vmTestCase
		for _, vmt := range vmts {
			if vmt.exclusive {
				exclusive = append(exclusive, vmt)
			}
		}
		if len(exclusive) > 0 {
			vmts = exclusive
		}
	}
	for _, vmt := range vmts {
		if !t.Run(vmt.name, vmt.run) {
			return
		}
	}
}

func vmTest(name string) (vmt vmTestCase) {
	vmt.name = name
	return vmt
}

type optFunc func(vm *VM)

func (f optFunc) apply(vm *VM) { f(vm) }

type vmTestCase struct {
	name    string
	src     string
	opts    []interface{}
	steps   uint64
	expect  []func(t *testing.T, vm *VM)
	timeout time.Duration
	wantErr error

	exclusive bool
}

func (vmt vmTestCase) exclusiveTest() vmTestCase {
	vmt.exclusive = true
	return vmt
}

func (vmt vmTestCase) withSource(lines ...string) vmTestCase {
	vmt.src = strings.Join(lines, "\n")
	return vmt
}

func (vmt vmTestCase) withOptions(opts ...VMOption) vmTestCase {
	for _, opt := range opts {
		vmt.opts = append(vmt.opts, opt)
	}
	return vmt
}

func (vmt vmTestCase) withStack(values ...int32) vmTestCase {
	vmt.opts = append(vmt.opts, optFunc(func(vm *VM) {
		vm.stack = append(vm.stack, values...)
	}))
	return vmt
}

func (vmt vmTestCase) withInput(input string) vmTestCase {
	vmt.opts = append(vmt.opts, WithInput(strings.NewReader(input)))
	return vmt
}

func (vmt vmTestCase) withStepLimit(n uint64) vmTestCase {
	vmt.opts = append(vmt.opts, WithStepLimit(n))
	return vmt
}

// withSteps runs the VM with Step(n) rather than Run.
func (vmt vmTestCase) withSteps(n uint64) vmTestCase {
	vmt.steps = n
	return vmt
}

func (vmt vmTestCase) withTimeout(timeout time.Duration) vmTestCase {
	vmt.timeout = timeout
	return vmt
}

func (vmt vmTestCase) withTestOutput() vmTestCase {
	vmt.opts = append(vmt.opts, func(t *testing.T) VMOption {
		return WithTee(&logio.Writer{Logf: func(mess string, args ...interface{}) {
			t.Logf("out: "+mess, args...)
		}})
	})
	return vmt
}

func (vmt vmTestCase) expectError(err error) vmTestCase {
	vmt.wantErr = err
	return vmt
}

func (vmt vmTestCase) expectStack(values ...int32) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		if values == nil {
			values = []int32{}
		}
		assert.Equal(t, values, vm.Stack(), "expected stack values")
	})
	return vmt
}

func (vmt vmTestCase) expectOutput(output string) vmTestCase {
	var out strings.Builder
	vmt.opts = append(vmt.opts, WithOutput(&out))
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Equal(t, output, out.String(), "expected output")
	})
	return vmt
}

func (vmt vmTestCase) expectPosition(x, y int) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		ax, ay := vm.Position()
		assert.Equal(t, [2]int{x, y}, [2]int{ax, ay}, "expected IP position")
	})
	return vmt
}

func (vmt vmTestCase) expectDirection(dir direction) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Equal(t, dir, vm.ip.dir, "expected IP direction")
	})
	return vmt
}

func (vmt vmTestCase) expectStringMode(on bool) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Equal(t, on, vm.ip.stringMode, "expected string mode")
	})
	return vmt
}

func (vmt vmTestCase) expectHalted(halted bool) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Equal(t, halted, vm.Halted(), "expected halted")
	})
	return vmt
}

func (vmt vmTestCase) expectSteps(n uint64) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Equal(t, n, vm.Counters().Steps, "expected step count")
	})
	return vmt
}

func (vmt vmTestCase) expectStatus(status ExitStatus) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Equal(t, status.String(), runStatus(vm).String(), "expected exit status")
	})
	return vmt
}

func (vmt vmTestCase) expectCell(x, y int, b byte) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		assert.Equal(t, string(rune(b)), string(rune(vm.grid.Get(x, y))), "expected cell @%v,%v", x, y)
	})
	return vmt
}

func (vmt vmTestCase) expectDump(dump string) vmTestCase {
	vmt.expect = append(vmt.expect, func(t *testing.T, vm *VM) {
		var out strings.Builder
		vmDumper{
			vm:  vm,
			out: &out,
		}.dump()
		assert.Equal(t, dump, out.String(), "expected dump")
	})
	return vmt
}

// runStatus infers how a run that ended without error stopped.
func runStatus(vm *VM) ExitStatus {
	if vm.Halted() {
		return ExitHalted
	}
	return ExitStepLimit
}

func (vmt vmTestCase) run(t *testing.T) {
	defer func(then time.Time) {
		label := "PASS"
		if t.Failed() {
			label = "FAIL"
		}
		t.Logf("%v\t%v\t%v", label, t.Name(), time.Now().Sub(then))
	}(time.Now())

	var trace traceLog
	vm := vmt.buildVM(t, WithLogf(trace.logf))
	vmt.runVMTest(context.Background(), t, vm)
	if t.Failed() {
		trace.dumpTo(t)
	}
}

func (vmt vmTestCase) runVMTest(ctx context.Context, t *testing.T, vm *VM) {
	const defaultTimeout = time.Second
	timeout := vmt.timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if t.Failed() {
			vmt.dumpToTest(t, vm)
		}
	}()

	if err := vmt.runVM(ctx, vm); vmt.wantErr != nil {
		assert.True(t, errors.Is(err, vmt.wantErr), "expected error: %v\ngot: %+v", vmt.wantErr, err)
	} else {
		assert.NoError(t, err, "unexpected VM run error")
	}

	if !t.Failed() {
		for _, expect := range vmt.expect {
			expect(t, vm)
		}
	}
}

func (vmt vmTestCase) runVM(ctx context.Context, vm *VM) (rerr error) {
	defer func() {
		if err := vm.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("vm.Close failed: %w", err)
		}
	}()
	if vmt.steps != 0 {
		_, err := vm.Step(vmt.steps)
		return err
	}
	_, err := vm.Run(ctx)
	return err
}

func (vmt vmTestCase) buildVM(t *testing.T, extra ...VMOption) *VM {
	opts := extra
	for _, o := range vmt.opts {
		switch impl := o.(type) {
		case func(t *testing.T) VMOption:
			opts = append(opts, impl(t))
		case VMOption:
			opts = append(opts, impl)
		default:
			t.Logf("unsupported vmTestCase opt type %T", o)
			t.FailNow()
		}
	}
	return New(Load([]byte(vmt.src)), opts...)
}

func (vmt vmTestCase) dumpToTest(t *testing.T, vm *VM) {
	lw := logio.Writer{Logf: t.Logf}
	defer lw.Close()
	vmDumper{vm: vm, out: &lw}.dump()
}

//// utilities

// traceLog retains the last few trace lines of a run, to be logged only if
// the test fails.
type traceLog struct {
	lines []string
}

const traceLogSize = 256

func (tl *traceLog) logf(mess string, args ...interface{}) {
	if len(tl.lines) == traceLogSize {
		copy(tl.lines, tl.lines[1:])
		tl.lines = tl.lines[:traceLogSize-1]
	}
	tl.lines = append(tl.lines, fmt.Sprintf(mess, args...))
}

func (tl *traceLog) dumpTo(t *testing.T) {
	for _, line := range tl.lines {
		t.Logf("trace: %v", line)
	}
}

func lines(parts ...string) string {
	return strings.Join(parts, "\n") + "\n"
}
