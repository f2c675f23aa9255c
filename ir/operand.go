package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// OperandKind classifies one operand of an IR instruction.
type OperandKind int

const (
	OperandName    OperandKind = iota // a declared scalar or temp
	OperandConst                      // an integer literal
	OperandIndexed                    // "[base + index]"
)

// Operand is one value an instruction reads or writes. Indexed
// operands nest one level (the index itself is a name or a constant;
// Pebble has no arrays-of-arrays, so deeper nesting never occurs).
type Operand struct {
	Kind  OperandKind
	Name  string   // OperandName, and the array name for OperandIndexed
	Const int32    // OperandConst
	Index *Operand // OperandIndexed
}

func (o Operand) String() string {
	switch o.Kind {
	case OperandConst:
		return strconv.FormatInt(int64(o.Const), 10)
	case OperandIndexed:
		return fmt.Sprintf("[%s + %s]", o.Name, o.Index.String())
	default:
		return o.Name
	}
}

// parseOperand recognizes a plain name, an integer literal, or an
// indexed array reference "[name + operand]".
func parseOperand(text string) (Operand, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Operand{}, fmt.Errorf("empty operand")
	}

	if strings.HasPrefix(text, "[") {
		if !strings.HasSuffix(text, "]") {
			return Operand{}, fmt.Errorf("malformed indexed operand %q", text)
		}
		inner := text[1 : len(text)-1]
		parts := strings.SplitN(inner, "+", 2)
		if len(parts) != 2 {
			return Operand{}, fmt.Errorf("malformed indexed operand %q", text)
		}
		base := strings.TrimSpace(parts[0])
		idx, err := parseOperand(parts[1])
		if err != nil {
			return Operand{}, err
		}
		return Operand{Kind: OperandIndexed, Name: base, Index: &idx}, nil
	}

	if v, err := strconv.ParseInt(text, 10, 32); err == nil {
		return Operand{Kind: OperandConst, Const: int32(v)}, nil
	}
	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		// Out-of-int32-range literal: truncate the way the lexer's own
		// wrapping accumulator would, rather than rejecting it here.
		return Operand{Kind: OperandConst, Const: int32(v)}, nil
	}

	return Operand{Kind: OperandName, Name: text}, nil
}
