// Package tools provides static analysis and pretty-printing over a
// compiled Pebble program's IR, the way the teacher's tools package
// formats and lints ARM assembly (lookbusy1344/arm-emulator
// tools/format.go, tools/lint.go). Pebble's IR has no operand/comment
// columns to align — it's already a flat instruction stream — so
// Format here re-renders canonical indentation and blank-line spacing
// rather than aligning assembler-style columns.
package tools

import (
	"fmt"
	"strings"

	"github.com/pebblelang/pebble/ir"
)

// FormatOptions controls how Format renders a Program back to text.
type FormatOptions struct {
	IndentSize   int  // spaces used to indent instructions under a label/function
	BlankBetween bool // blank line between functions
}

// DefaultFormatOptions returns the formatter's default style.
func DefaultFormatOptions() *FormatOptions {
	return &FormatOptions{IndentSize: 4, BlankBetween: true}
}

// Format renders prog back to canonical IR text, in the Order the
// functions were originally declared.
func Format(prog *ir.Program, opts *FormatOptions) string {
	if opts == nil {
		opts = DefaultFormatOptions()
	}
	indent := strings.Repeat(" ", opts.IndentSize)

	var out strings.Builder
	for i, name := range prog.Order {
		fn := prog.Functions[name]
		out.WriteString(formatFuncHeader(fn))
		out.WriteString("\n")
		for _, stmt := range fn.Body {
			out.WriteString(formatStatement(stmt, indent))
			out.WriteString("\n")
		}
		out.WriteString("%endfunc\n")
		if opts.BlankBetween && i < len(prog.Order)-1 {
			out.WriteString("\n")
		}
	}
	return out.String()
}

func formatFuncHeader(fn *ir.Function) string {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = "%int " + p
	}
	return fmt.Sprintf("%%func %s (%s)", fn.Name, strings.Join(params, ", "))
}

func formatStatement(s ir.Statement, indent string) string {
	if s.Op == ir.OpLabel {
		return ":" + s.Label
	}

	switch s.Op {
	case ir.OpDeclInt:
		return fmt.Sprintf("%s%%int %s", indent, s.Dst)
	case ir.OpDeclArray:
		return fmt.Sprintf("%s%%int[] %s, %d", indent, s.Dst, s.Size)
	case ir.OpMov:
		return fmt.Sprintf("%s%%mov %s, %s", indent, s.Dst, s.A)
	case ir.OpJmp:
		return fmt.Sprintf("%s%%jmp :%s", indent, s.Label)
	case ir.OpBranchIf:
		return fmt.Sprintf("%s%%branch_if %s, :%s", indent, s.Dst, s.Label)
	case ir.OpBranchIfn:
		return fmt.Sprintf("%s%%branch_ifn %s, :%s", indent, s.Dst, s.Label)
	case ir.OpCall:
		args := make([]string, len(s.Args))
		for i, a := range s.Args {
			args[i] = a.String()
		}
		return fmt.Sprintf("%s%%call %s, %s(%s)", indent, s.Dst, s.Func, strings.Join(args, ", "))
	case ir.OpRet:
		return fmt.Sprintf("%s%%ret %s", indent, s.Dst)
	case ir.OpOut:
		return fmt.Sprintf("%s%%out %s", indent, s.Dst)
	case ir.OpInput:
		return fmt.Sprintf("%s%%input %s", indent, s.Dst)
	default:
		return fmt.Sprintf("%s%%%s %s, %s, %s", indent, s.Op, s.Dst, s.A, s.B)
	}
}
