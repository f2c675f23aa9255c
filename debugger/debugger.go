package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pebblelang/pebble/ir"
	"github.com/pebblelang/pebble/vm"
)

// Debugger holds debugger state laid over a running vm.VM: breakpoints,
// watchpoints, command history, and the expression evaluator used by
// print/watch/conditions — grounded on the teacher's Debugger
// (lookbusy1344/arm-emulator debugger/debugger.go), with ARM
// registers/memory/addresses replaced throughout by Pebble's
// (function, IR line) locations and frame-scoped variables.
type Debugger struct {
	VM *vm.VM

	Breakpoints *BreakpointManager
	Watchpoints *WatchpointManager
	History     *CommandHistory
	Evaluator   *ExpressionEvaluator

	Running  bool
	StepMode StepMode

	// StepOverDepth is the call-stack depth to return to before
	// pausing again; used by both "next" (step over calls) and
	// "finish" (step out of the current function).
	StepOverDepth int

	LastCommand string
	Output      strings.Builder
}

// StepMode is the debugger's current single-stepping mode.
type StepMode int

const (
	StepNone   StepMode = iota // not stepping; run until breakpoint/watchpoint/halt
	StepSingle                 // pause after exactly one IR instruction
	StepOver                   // pause once the call stack returns to StepOverDepth or shallower
	StepOut                    // pause once the call stack is shallower than StepOverDepth
)

// NewDebugger creates a new debugger wrapping machine.
func NewDebugger(machine *vm.VM) *Debugger {
	return &Debugger{
		VM:          machine,
		Breakpoints: NewBreakpointManager(),
		Watchpoints: NewWatchpointManager(),
		History:     NewCommandHistory(),
		Evaluator:   NewExpressionEvaluator(),
		StepMode:    StepNone,
	}
}

// CurrentLocation returns the Location of the instruction about to
// execute in the topmost frame, or the zero Location if the VM isn't
// running.
func (d *Debugger) CurrentLocation() (Location, bool) {
	frame := d.VM.Current()
	if frame == nil {
		return Location{}, false
	}
	if frame.PC >= len(frame.Func.Body) {
		return Location{Func: frame.Func.Name, Line: -1}, true
	}
	return Location{Func: frame.Func.Name, Line: frame.Func.Body[frame.PC].Line}, true
}

// ResolveLocation parses a breakpoint target of the form "func:line",
// "line" (meaning the current frame's function), or a bare function
// name (meaning the first line of that function's body).
func (d *Debugger) ResolveLocation(spec string) (Location, error) {
	if fn, line, ok := strings.Cut(spec, ":"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			return Location{}, fmt.Errorf("invalid line number: %s", line)
		}
		return Location{Func: fn, Line: n}, nil
	}

	if n, err := strconv.Atoi(spec); err == nil {
		frame := d.VM.Current()
		if frame == nil {
			return Location{}, fmt.Errorf("no current function to resolve line %d against", n)
		}
		return Location{Func: frame.Func.Name, Line: n}, nil
	}

	fn, ok := d.VM.Program.Functions[spec]
	if !ok {
		return Location{}, fmt.Errorf("unknown function: %s", spec)
	}
	if len(fn.Body) == 0 {
		return Location{}, fmt.Errorf("function %q has an empty body", spec)
	}
	return Location{Func: fn.Name, Line: fn.Body[0].Line}, nil
}

// ExecuteCommand parses and runs one command line, repeating the last
// command on empty input (gdb-style, handy for repeated "step").
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}
	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}

	cmd := strings.ToLower(parts[0])
	return d.handleCommand(cmd, parts[1:])
}

func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "run", "r":
		return d.cmdRun(args)
	case "continue", "c":
		return d.cmdContinue(args)
	case "step", "s":
		return d.cmdStep(args)
	case "next", "n":
		return d.cmdNext(args)
	case "finish", "fin":
		return d.cmdFinish(args)

	case "break", "b":
		return d.cmdBreak(args)
	case "tbreak", "tb":
		return d.cmdTBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)

	case "watch", "w":
		return d.cmdWatch(args)
	case "rwatch":
		return d.cmdRWatch(args)
	case "awatch":
		return d.cmdAWatch(args)

	case "print", "p":
		return d.cmdPrint(args)
	case "info", "i":
		return d.cmdInfo(args)
	case "backtrace", "bt", "where":
		return d.cmdBacktrace(args)
	case "list", "l":
		return d.cmdList(args)

	case "set":
		return d.cmdSet(args)

	case "reset":
		return d.cmdReset(args)

	case "help", "h", "?":
		return d.cmdHelp(args)

	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// ShouldBreak reports whether execution should pause before the next
// Step, and why.
func (d *Debugger) ShouldBreak() (bool, string) {
	loc, running := d.CurrentLocation()
	if !running {
		return false, ""
	}
	depth := len(d.VM.Stack)

	switch d.StepMode {
	case StepSingle:
		d.StepMode = StepNone
		return true, "single step"

	case StepOver:
		if depth <= d.StepOverDepth {
			d.StepMode = StepNone
			return true, "step over complete"
		}

	case StepOut:
		if depth < d.StepOverDepth {
			d.StepMode = StepNone
			return true, "step out complete"
		}
	}

	if bp := d.Breakpoints.GetBreakpoint(loc); bp != nil {
		if !bp.Enabled {
			return false, ""
		}

		if bp.Condition != "" {
			result, err := d.Evaluator.Evaluate(bp.Condition, d.VM.Current())
			if err != nil {
				return true, fmt.Sprintf("breakpoint %d (condition error: %v)", bp.ID, err)
			}
			if !result {
				return false, ""
			}
		}

		hit := d.Breakpoints.ProcessHit(loc)
		return true, fmt.Sprintf("breakpoint %d", hit.ID)
	}

	if wp, changed := d.Watchpoints.CheckWatchpoints(d.VM, d.Evaluator); wp != nil && changed {
		return true, fmt.Sprintf("watchpoint %d: %s", wp.ID, wp.Expression)
	}

	return false, ""
}

// GetOutput returns and clears the output buffer.
func (d *Debugger) GetOutput() string {
	output := d.Output.String()
	d.Output.Reset()
	return output
}

// Printf writes formatted output to the output buffer.
func (d *Debugger) Printf(format string, args ...interface{}) {
	d.Output.WriteString(fmt.Sprintf(format, args...))
}

// Println writes a line to the output buffer.
func (d *Debugger) Println(args ...interface{}) {
	d.Output.WriteString(fmt.Sprintln(args...))
}

// SetStepOver configures the debugger to step over the instruction at
// the current location: if it's a %call, run until the stack returns
// to the caller's depth; otherwise it's equivalent to a single step.
func (d *Debugger) SetStepOver() {
	frame := d.VM.Current()
	if frame == nil || frame.PC >= len(frame.Func.Body) {
		d.StepMode = StepSingle
		d.Running = true
		return
	}

	if frame.Func.Body[frame.PC].Op == ir.OpCall {
		d.StepOverDepth = len(d.VM.Stack)
		d.StepMode = StepOver
	} else {
		d.StepMode = StepSingle
	}
	d.Running = true
}

// SetStepOut configures the debugger to run until the current
// function returns to its caller.
func (d *Debugger) SetStepOut() {
	d.StepOverDepth = len(d.VM.Stack)
	d.StepMode = StepOut
	d.Running = true
}
