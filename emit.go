package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/jcorbin/gofunge/internal/payload"
)

// An emitted executable is a copy of this program's own binary with a
// payload (the program grid and its RunConfig) appended; at startup main
// looks for that payload and, if present, runs it instead of parsing
// arguments. Both paths share the same VM, so they agree by construction.

var errUnverifiable = errors.New("output depends on unseeded randomness")

// Emit copies base to dst, then appends grid and cfg as a payload.
func Emit(dst io.Writer, base io.Reader, grid *Grid, cfg RunConfig) error {
	if _, err := io.Copy(dst, base); err != nil {
		return fmt.Errorf("failed to copy executable: %w", err)
	}
	return payload.Append(dst, programPayload(grid, cfg))
}

// EmitExecutable writes a standalone executable to path that runs grid
// under cfg, reading program input from its stdin.
func EmitExecutable(path string, grid *Grid, cfg RunConfig) (rerr error) {
	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("cannot locate own executable: %w", err)
	}
	if same, _ := samePath(self, path); same {
		return fmt.Errorf("refusing to overwrite running executable %v", self)
	}

	base, err := os.Open(self)
	if err != nil {
		return err
	}
	defer base.Close()
	info, err := base.Stat()
	if err != nil {
		return err
	}
	// an emitted executable may itself emit, so drop any payload it carries
	size, err := payload.BaseSize(base, info.Size())
	if err != nil {
		return err
	}

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); rerr == nil {
			rerr = cerr
		}
	}()
	return Emit(out, io.NewSectionReader(base, 0, size), grid, cfg)
}

func samePath(a, b string) (bool, error) {
	ai, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	return os.SameFile(ai, bi), nil
}

// embeddedProgram returns the program attached to the running executable,
// or payload.ErrNotFound.
func embeddedProgram() (*Grid, RunConfig, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, RunConfig{}, err
	}
	f, err := os.Open(self)
	if err != nil {
		return nil, RunConfig{}, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, RunConfig{}, err
	}
	prog, _, err := payload.Read(f, info.Size())
	if err != nil {
		return nil, RunConfig{}, err
	}
	return programFromPayload(prog)
}

func programPayload(grid *Grid, cfg RunConfig) *payload.Program {
	w, h := grid.Size()
	return &payload.Program{
		Width:  w,
		Height: h,
		Cells:  grid.Bytes(),
		Config: payload.Config{
			Standard:  uint8(cfg.Standard),
			Metrics:   cfg.Metrics,
			Seed:      cfg.Seed,
			Seeded:    cfg.Seeded,
			StepLimit: cfg.StepLimit,
		},
	}
}

func programFromPayload(prog *payload.Program) (*Grid, RunConfig, error) {
	grid, err := gridFromCells(prog.Width, prog.Height, prog.Cells)
	if err != nil {
		return nil, RunConfig{}, fmt.Errorf("embedded program: %w", err)
	}
	cfg := RunConfig{
		Standard:  Standard(prog.Config.Standard),
		Metrics:   prog.Config.Metrics,
		Seed:      prog.Config.Seed,
		Seeded:    prog.Config.Seeded,
		StepLimit: prog.Config.StepLimit,
	}
	if cfg.Standard == 0 {
		cfg.Standard = Befunge93
	} else if !cfg.Standard.Valid() {
		return nil, RunConfig{}, fmt.Errorf("embedded program: invalid standard %v", cfg.Standard)
	}
	return grid, cfg, nil
}

// verifyEmitted runs the executable at path and the in-process VM
// concurrently on the same input, and fails unless their outputs match.
// Any env entries are added to the executable's environment.
func verifyEmitted(ctx context.Context, path string, grid *Grid, cfg RunConfig, input []byte, env ...string) error {
	if !cfg.Seeded && bytes.IndexByte(grid.Bytes(), '?') >= 0 {
		return errUnverifiable
	}

	var emitted, direct bytes.Buffer
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		cmd := exec.CommandContext(ctx, abs)
		cmd.Stdin = bytes.NewReader(input)
		cmd.Stdout = &emitted
		cmd.Stderr = os.Stderr
		if len(env) > 0 {
			cmd.Env = append(os.Environ(), env...)
		}
		if err := cmd.Run(); err != nil {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) || exitErr.ExitCode() != exitStepLimit {
				return fmt.Errorf("%v failed: %w", path, err)
			}
		}
		return nil
	})

	eg.Go(func() error {
		_, _, err := Run(ctx, grid, cfg, bytes.NewReader(input), &direct)
		return err
	})

	if err := eg.Wait(); err != nil {
		return err
	}
	if !bytes.Equal(emitted.Bytes(), direct.Bytes()) {
		return fmt.Errorf("emitted executable output differs: got %q, expected %q", emitted.Bytes(), direct.Bytes())
	}
	return nil
}
