// Package loader is the bridge from Pebble source text to a runnable
// vm.VM, the way the teacher's loader.LoadProgramIntoVM bridges a
// parsed assembly program into VM memory
// (lookbusy1344/arm-emulator loader/loader.go). Pebble has no
// addresses, segments, or literal pools to place — compiling straight
// to a label-indexed ir.Program replaces all of that — so this
// package is a thin pipeline rather than a placement algorithm.
package loader

import (
	"fmt"
	"io"
	"os"

	"github.com/pebblelang/pebble/ir"
	"github.com/pebblelang/pebble/parser"
	"github.com/pebblelang/pebble/vm"
)

// Result bundles everything one compile produces: the raw IR text (for
// "pebble ir" and "pebble run"), the parser's per-function metadata,
// and the parsed ir.Program the VM actually runs.
type Result struct {
	Filename string
	Source   string
	IRText   string
	Info     map[string]*parser.FunctionInfo
	Program  *ir.Program
}

// Compile runs the full pipeline — lex, parse-and-emit, re-parse the
// emitted IR — over in-memory source, with no array-size limit. The
// first error stops the pipeline, preserving spec.md §7's
// fatal-on-first-error policy end to end: lex and parse errors are
// returned unwrapped, and a failure to re-parse the emitted IR is
// wrapped as an internal error.
func Compile(source, filename string) (*Result, error) {
	return CompileWithLimits(source, filename, 0)
}

// CompileWithLimits is Compile with maxArraySize enforced against every
// `int[N]` declaration (0 means unlimited), wiring config.Config's
// Execution.MaxArraySize through to the parser.
func CompileWithLimits(source, filename string, maxArraySize int) (*Result, error) {
	p, err := parser.New(source, filename)
	if err != nil {
		return nil, err
	}
	p.MaxArraySize = maxArraySize
	prog, err := p.Parse()
	if err != nil {
		return nil, err
	}
	irProg, err := ir.Parse(prog.IR)
	if err != nil {
		return nil, fmt.Errorf("internal error re-parsing generated IR: %w", err)
	}
	return &Result{
		Filename: filename,
		Source:   source,
		IRText:   prog.IR,
		Info:     prog.Functions,
		Program:  irProg,
	}, nil
}

// CompileFile reads path and compiles it, with no array-size limit.
func CompileFile(path string) (*Result, error) {
	return CompileFileWithLimits(path, 0)
}

// CompileFileWithLimits is CompileFile with maxArraySize enforced; see
// CompileWithLimits.
func CompileFileWithLimits(path string, maxArraySize int) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return CompileWithLimits(string(data), path, maxArraySize)
}

// NewVM builds a vm.VM ready to Run a compiled Result, wiring the
// given I/O streams to %input and %out.
func NewVM(res *Result, stdin io.Reader, stdout io.Writer) *vm.VM {
	return vm.New(res.Program, stdin, stdout)
}

// RunFile compiles and runs a single source file end to end —
// the operation the CLI's default "run" invocation performs.
func RunFile(path string, stdin io.Reader, stdout io.Writer) (*Result, error) {
	res, err := CompileFile(path)
	if err != nil {
		return nil, err
	}
	m := NewVM(res, stdin, stdout)
	if err := m.Run(); err != nil {
		return res, err
	}
	return res, nil
}
