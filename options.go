package main

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/jcorbin/gofunge/internal/byteio"
	"github.com/jcorbin/gofunge/internal/flushio"
)

type VMOption interface{ apply(vm *VM) }

// VMOptions combines several options into one, applied in order.
func VMOptions(opts ...VMOption) VMOption {
	var res options
	for _, opt := range opts {
		switch impl := opt.(type) {
		case nil:
		case options:
			res = append(res, impl...)
		default:
			res = append(res, impl)
		}
	}
	if len(res) == 1 {
		return res[0]
	}
	return res
}

type options []VMOption

func (opts options) apply(vm *VM) {
	for _, opt := range opts {
		opt.apply(vm)
	}
}

var defaultOptions = VMOptions(
	withInput(bytes.NewReader(nil)),
	withOutput(io.Discard),
	WithStandard(Befunge93),
)

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(vm *VM) {
	vm.logfn = logfn
}

type inputOption struct{ io.Reader }
type outputOption struct{ io.Writer }
type teeOption struct{ io.Writer }
type stepLimitOption uint64
type seedOption uint64
type metricsOption bool

func withInput(r io.Reader) inputOption   { return inputOption{r} }
func withOutput(w io.Writer) outputOption { return outputOption{w} }
func withTee(w io.Writer) teeOption       { return teeOption{w} }

func (i inputOption) apply(vm *VM) {
	vm.in = byteio.NewReader(i.Reader)
}

func (o outputOption) apply(vm *VM) {
	if vm.out != nil {
		vm.out.Flush()
	}
	vm.out = flushio.NewWriteFlusher(o.Writer)
}

func (o teeOption) apply(vm *VM) {
	vm.out = flushio.Tee(vm.out, flushio.NewWriteFlusher(o.Writer))
}

func (lim stepLimitOption) apply(vm *VM) { vm.stepLimit = uint64(lim) }
func (m metricsOption) apply(vm *VM)     { vm.metrics = bool(m) }

func (seed seedOption) apply(vm *VM) { vm.rng = newRand(uint64(seed)) }

func (std Standard) apply(vm *VM) { vm.standard = std }

// Standard is the language standard a program is written for.
type Standard uint8

const (
	Befunge93 Standard = 93
	Befunge98 Standard = 98
)

func (std Standard) String() string {
	return strconv.Itoa(int(std))
}

// Valid reports whether std names a known standard.
func (std Standard) Valid() bool {
	return std == Befunge93 || std == Befunge98
}

// UnmarshalText parses "93" or "98"; it lets a Standard be read from TOML.
func (std *Standard) UnmarshalText(text []byte) error {
	n, err := strconv.ParseUint(string(text), 10, 8)
	if err != nil || !Standard(n).Valid() {
		return fmt.Errorf("invalid standard %q, expected 93 or 98", text)
	}
	*std = Standard(n)
	return nil
}

// Set implements flag.Value.
func (std *Standard) Set(s string) error { return std.UnmarshalText([]byte(s)) }

// RunConfig is the serializable configuration of a run: everything other
// than the program grid and its I/O streams.
type RunConfig struct {
	Standard  Standard
	Metrics   bool
	Seed      uint64
	Seeded    bool
	StepLimit uint64
}

func (cfg RunConfig) apply(vm *VM) {
	if cfg.Standard != 0 {
		vm.standard = cfg.Standard
	}
	vm.metrics = cfg.Metrics
	vm.stepLimit = cfg.StepLimit
	if cfg.Seeded {
		seedOption(cfg.Seed).apply(vm)
	}
}
