package debugger

import (
	"fmt"

	"github.com/pebblelang/pebble/vm"
)

// ExpressionEvaluator evaluates print/watch/condition expressions
// against a VM frame's scalars and arrays, and keeps the $1, $2, ...
// value history that "print" builds up.
type ExpressionEvaluator struct {
	valueHistory []int32
	valueNumber  int
}

// NewExpressionEvaluator creates a new expression evaluator.
func NewExpressionEvaluator() *ExpressionEvaluator {
	return &ExpressionEvaluator{}
}

// EvaluateExpression evaluates expr against frame and records the
// result in the value history.
func (e *ExpressionEvaluator) EvaluateExpression(expr string, frame *vm.Frame) (int32, error) {
	result, err := e.evaluate(expr, frame)
	if err != nil {
		return 0, err
	}
	e.valueHistory = append(e.valueHistory, result)
	e.valueNumber = len(e.valueHistory)
	return result, nil
}

// Evaluate evaluates expr as a boolean condition (nonzero is true),
// without touching the value history — used for breakpoint/watchpoint
// conditions, which shouldn't pollute $N.
func (e *ExpressionEvaluator) Evaluate(expr string, frame *vm.Frame) (bool, error) {
	result, err := e.evaluate(expr, frame)
	if err != nil {
		return false, err
	}
	return result != 0, nil
}

// Value evaluates expr and returns its raw int32 result, without
// touching the value history — used by watchpoints to sample a
// variable's current value each step.
func (e *ExpressionEvaluator) Value(expr string, frame *vm.Frame) (int32, error) {
	return e.evaluate(expr, frame)
}

// GetValueNumber returns the most recently assigned $N.
func (e *ExpressionEvaluator) GetValueNumber() int {
	return e.valueNumber
}

// GetValue returns a value from the history by number.
func (e *ExpressionEvaluator) GetValue(number int) (int32, error) {
	if number < 1 || number > len(e.valueHistory) {
		return 0, fmt.Errorf("value $%d not in history", number)
	}
	return e.valueHistory[number-1], nil
}

func (e *ExpressionEvaluator) evaluate(expr string, frame *vm.Frame) (int32, error) {
	if expr == "" {
		return 0, fmt.Errorf("empty expression")
	}
	tokens := NewExprLexer(expr).TokenizeAll()
	return NewExprParser(tokens, frame, e).Parse()
}

// Reset clears the value history.
func (e *ExpressionEvaluator) Reset() {
	e.valueHistory = e.valueHistory[:0]
	e.valueNumber = 0
}
