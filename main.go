package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tliron/commonlog"
	"github.com/tliron/commonlog/simple"

	"github.com/jcorbin/gofunge/internal/benchdb"
	"github.com/jcorbin/gofunge/internal/config"
	"github.com/jcorbin/gofunge/internal/fileinput"
	"github.com/jcorbin/gofunge/internal/logio"
	"github.com/jcorbin/gofunge/internal/panicerr"
	"github.com/jcorbin/gofunge/internal/payload"
)

const (
	exitError     = 1
	exitStepLimit = 2
)

func main() {
	ctx := context.Background()

	grid, cfg, err := embeddedProgram()
	if err == nil {
		os.Exit(runEmbedded(ctx, grid, cfg))
	} else if !errors.Is(err, payload.ErrNotFound) {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(exitError)
	}

	cmd := command{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	os.Exit(cmd.main(ctx, os.Args[0], os.Args[1:]))
}

// runEmbedded runs a program attached to this executable against the
// process's standard streams.
func runEmbedded(ctx context.Context, grid *Grid, cfg RunConfig) int {
	status, counters, err := Run(ctx, grid, cfg, os.Stdin, os.Stdout)
	if cfg.Metrics {
		fmt.Fprintln(os.Stderr, counters)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return exitError
	}
	if status == ExitStepLimit {
		return exitStepLimit
	}
	return 0
}

type command struct {
	log logio.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	standard   Standard
	metrics    bool
	inputPath  string
	seed       uint64
	stepLimit  uint64
	timeout    time.Duration
	trace      bool
	dump       bool
	dumpAll    bool
	emitPath   string
	verify     bool
	recordPath string
	history    int

	seeded bool
}

func (cmd *command) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cmd.stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %v [options] <program.bf | ->\n", name)
		fs.PrintDefaults()
	}
	cmd.standard = Befunge93
	fs.StringVar(&cmd.configPath, "config", "", "load default options from a TOML file")
	fs.Var(&cmd.standard, "std", "language standard: 93 or 98")
	fs.BoolVar(&cmd.metrics, "p", false, "print performance counters after the run")
	fs.StringVar(&cmd.inputPath, "i", "", "read program input from a file instead of stdin")
	fs.Uint64Var(&cmd.seed, "seed", 0, "seed the random direction command")
	fs.Uint64Var(&cmd.stepLimit, "step-limit", 0, "stop after this many steps")
	fs.DurationVar(&cmd.timeout, "timeout", 0, "specify a time limit")
	fs.BoolVar(&cmd.trace, "trace", false, "enable trace logging")
	fs.BoolVar(&cmd.dump, "dump", false, "dump VM state after the run")
	fs.BoolVar(&cmd.dumpAll, "dump-all", false, "like -dump, but keep blank grid rows")
	fs.StringVar(&cmd.emitPath, "o", "", "emit a standalone executable instead of running")
	fs.BoolVar(&cmd.verify, "verify", false, "after -o, check the executable against the interpreter")
	fs.StringVar(&cmd.recordPath, "record", "", "record run counters into a SQLite database")
	fs.IntVar(&cmd.history, "history", 0, "print the last N recorded runs of the program instead of running it")
	return fs
}

func (cmd *command) main(ctx context.Context, name string, args []string) int {
	cmd.log.SetOutput(cmd.stderr)
	fs := cmd.flags(name)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return exitError
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	cmd.seeded = set["seed"]

	if cmd.configPath != "" {
		if err := cmd.loadConfig(set); err != nil {
			cmd.log.ErrorIf(err)
			return cmd.log.ExitCode()
		}
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitError
	}
	if cmd.standard == Befunge98 {
		cmd.log.Printf("WARN", "befunge-98 extensions are not implemented, running with befunge-93 semantics")
	}

	cmd.log.ErrorIf(cmd.run(ctx, fs.Arg(0)))
	return cmd.log.ExitCode()
}

// loadConfig fills in any option not explicitly set by a flag.
func (cmd *command) loadConfig(set map[string]bool) error {
	f, err := config.Load(cmd.configPath)
	if err != nil {
		return err
	}
	if !set["std"] && f.Standard != "" {
		if err := cmd.standard.Set(f.Standard); err != nil {
			return fmt.Errorf("%v: %w", f.Path, err)
		}
	}
	if !set["p"] && f.Metrics {
		cmd.metrics = true
	}
	if !set["seed"] && f.Seed != nil {
		cmd.seed, cmd.seeded = *f.Seed, true
	}
	if !set["step-limit"] && f.StepLimit != 0 {
		cmd.stepLimit = f.StepLimit
	}
	if !set["timeout"] {
		if cmd.timeout, err = f.TimeoutDuration(); err != nil {
			return err
		}
	}
	if !set["i"] && f.Stdin != "" {
		cmd.inputPath = f.Stdin
	}
	if !set["record"] && f.Record != "" {
		cmd.recordPath = f.Record
	}
	if !set["trace"] && f.Trace {
		cmd.trace = true
	}
	return nil
}

// traceLogger routes commonlog debug messages to the command's stderr.
func (cmd *command) traceLogger() commonlog.Logger {
	backend := simple.NewBackend()
	backend.Buffered = false
	backend.Configure(2, nil)
	backend.Writer = cmd.stderr
	commonlog.SetBackend(backend)
	return commonlog.GetLogger("gofunge")
}

func (cmd *command) runConfig() RunConfig {
	return RunConfig{
		Standard:  cmd.standard,
		Metrics:   cmd.metrics,
		Seed:      cmd.seed,
		Seeded:    cmd.seeded,
		StepLimit: cmd.stepLimit,
	}
}

func (cmd *command) run(ctx context.Context, srcName string) error {
	src, err := fileinput.ReadSource(srcName)
	if err != nil {
		return err
	}
	grid := Load(src.Data)

	if cmd.history > 0 {
		return cmd.printHistory(ctx, src)
	}
	if cmd.emitPath != "" {
		return cmd.emit(ctx, grid)
	}

	if cmd.timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.timeout)
		defer cancel()
	}

	var in io.Reader = cmd.stdin
	if cmd.inputPath != "" {
		f, err := fileinput.Open(cmd.inputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	opts := []VMOption{
		cmd.runConfig(),
		WithInput(in),
		WithOutput(cmd.stdout),
		// recording needs timing even when it isn't printed
		WithMetrics(cmd.metrics || cmd.recordPath != ""),
	}
	if cmd.trace {
		opts = append(opts, WithLogf(cmd.traceLogger().Debugf))
	}

	vm := New(grid, opts...)
	status, err := vm.Run(ctx)
	if cerr := vm.Close(); err == nil {
		err = cerr
	}

	if stack := panicerr.PanicStack(err); stack != "" && cmd.trace {
		cmd.log.Leveledf("DEBUG")("panic stack: %s", stack)
	}
	if cmd.dump || cmd.dumpAll {
		vmDumper{vm: vm, out: cmd.stderr, blankRows: cmd.dumpAll}.dump()
	}
	counters := vm.Counters()
	if cmd.metrics {
		fmt.Fprintln(cmd.stderr, counters)
	}
	if cmd.recordPath != "" {
		statusName := status.String()
		if err != nil {
			statusName = "error"
		}
		if rerr := cmd.record(ctx, src, benchdb.Run{
			Status:  statusName,
			Steps:   counters.Steps,
			Elapsed: counters.Elapsed(),
		}); err == nil {
			err = rerr
		}
	}
	if err == nil && status == ExitStepLimit {
		cmd.log.Printf("WARN", "step limit reached after %v steps", counters.Steps)
		cmd.log.SetExitCode(exitStepLimit)
	}
	return err
}

func (cmd *command) emit(ctx context.Context, grid *Grid) error {
	cfg := cmd.runConfig()
	if err := EmitExecutable(cmd.emitPath, grid, cfg); err != nil {
		return fmt.Errorf("failed to emit %v: %w", cmd.emitPath, err)
	}
	if !cmd.verify {
		return nil
	}
	var input []byte
	if cmd.inputPath != "" {
		src, err := fileinput.ReadSource(cmd.inputPath)
		if err != nil {
			return err
		}
		input = src.Data
	}
	err := verifyEmitted(ctx, cmd.emitPath, grid, cfg, input)
	if errors.Is(err, errUnverifiable) {
		cmd.log.Printf("WARN", "cannot verify %v: %v, use -seed", cmd.emitPath, err)
		return nil
	}
	return err
}

func (cmd *command) record(ctx context.Context, src fileinput.Source, run benchdb.Run) error {
	db, err := benchdb.Open(cmd.recordPath)
	if err != nil {
		return err
	}
	defer db.Close()
	run.Program = src.Digest()
	run.Name = src.Name
	run.Standard = cmd.standard.String()
	run.At = time.Now()
	_, err = db.Record(ctx, run)
	return err
}

func (cmd *command) printHistory(ctx context.Context, src fileinput.Source) error {
	if cmd.recordPath == "" {
		return errors.New("-history needs a -record database")
	}
	db, err := benchdb.Open(cmd.recordPath)
	if err != nil {
		return err
	}
	defer db.Close()
	runs, err := db.History(ctx, src.Digest(), cmd.history)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		cmd.log.Printf("WARN", "no runs of %v recorded in %v", src.Name, db.Path())
	}
	for _, run := range runs {
		fmt.Fprintf(cmd.stdout, "%v %v std=%v %v %v steps in %v (%.3f Msteps/s)\n",
			run.At.Format(time.RFC3339), run.Name, run.Standard, run.Status,
			run.Steps, run.Elapsed, run.Rate()/1e6)
	}
	return nil
}
