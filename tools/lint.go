package tools

import (
	"fmt"

	"github.com/pebblelang/pebble/ir"
)

// LintLevel is the severity of a lint finding.
type LintLevel int

const (
	LintError   LintLevel = iota // would fail at runtime or is otherwise unambiguous
	LintWarning                  // likely a mistake but not fatal
)

func (l LintLevel) String() string {
	switch l {
	case LintError:
		return "error"
	case LintWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// LintIssue is a single finding, tied to the IR line it came from.
type LintIssue struct {
	Level   LintLevel
	Func    string
	Line    int
	Message string
	Code    string
}

func (i *LintIssue) String() string {
	return fmt.Sprintf("%s:%d: %s: %s [%s]", i.Func, i.Line, i.Level, i.Message, i.Code)
}

// Lint analyzes prog for undefined jump targets, undefined function
// calls, unused labels, and code unreachable after an unconditional
// jump or return — the static checks the interpreter itself would
// otherwise only discover mid-run.
func Lint(prog *ir.Program) []*LintIssue {
	var issues []*LintIssue

	for _, name := range prog.Order {
		fn := prog.Functions[name]
		issues = append(issues, lintFunction(prog, fn)...)
	}
	return issues
}

func lintFunction(prog *ir.Program, fn *ir.Function) []*LintIssue {
	var issues []*LintIssue

	referenced := make(map[string]bool)

	for _, stmt := range fn.Body {
		switch stmt.Op {
		case ir.OpJmp, ir.OpBranchIf, ir.OpBranchIfn:
			referenced[stmt.Label] = true
			if _, ok := fn.Labels[stmt.Label]; !ok {
				issues = append(issues, &LintIssue{
					Level: LintError, Func: fn.Name, Line: stmt.Line,
					Message: fmt.Sprintf("jump target %q is never defined", stmt.Label),
					Code:    "UNDEF_LABEL",
				})
			}

		case ir.OpCall:
			if _, ok := prog.Functions[stmt.Func]; !ok {
				issues = append(issues, &LintIssue{
					Level: LintError, Func: fn.Name, Line: stmt.Line,
					Message: fmt.Sprintf("call to undefined function %q", stmt.Func),
					Code:    "UNDEF_FUNCTION",
				})
			}
		}
	}

	for label := range fn.Labels {
		if !referenced[label] {
			issues = append(issues, &LintIssue{
				Level: LintWarning, Func: fn.Name, Line: fn.Body[fn.Labels[label]].Line,
				Message: fmt.Sprintf("label %q is defined but never referenced", label),
				Code:    "UNUSED_LABEL",
			})
		}
	}

	issues = append(issues, lintUnreachable(fn)...)
	return issues
}

// lintUnreachable flags statements following an unconditional %jmp or
// %ret that aren't themselves a label (i.e. can never be reached by
// falling through or by any jump, since only label-targeted jumps
// can re-enter the statement stream).
func lintUnreachable(fn *ir.Function) []*LintIssue {
	var issues []*LintIssue
	dead := false

	for _, stmt := range fn.Body {
		if stmt.Op == ir.OpLabel {
			dead = false
			continue
		}
		if dead {
			issues = append(issues, &LintIssue{
				Level: LintWarning, Func: fn.Name, Line: stmt.Line,
				Message: "unreachable code after an unconditional jump or return",
				Code:    "UNREACHABLE_CODE",
			})
		}
		if stmt.Op == ir.OpJmp || stmt.Op == ir.OpRet {
			dead = true
		}
	}
	return issues
}

// HasErrors reports whether any finding in issues is LintError-level.
func HasErrors(issues []*LintIssue) bool {
	for _, i := range issues {
		if i.Level == LintError {
			return true
		}
	}
	return false
}
