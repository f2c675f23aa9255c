package parser

import (
	"fmt"

	"github.com/pebblelang/pebble/lexer"
)

// Position re-exports lexer.Position so callers outside this package
// never need to import lexer just to read an error's location.
type Position = lexer.Position

// Error is a parse error (syntax or semantic, spec.md §7) with
// position information, grounded on the teacher's parser.Error
// (lookbusy1344/arm-emulator parser/errors.go). Pebble has a single
// fatal-on-first-error policy, so unlike the teacher there is no
// ErrorList accumulation across the whole parse — the first Error
// returned by any parse* method aborts the pipeline.
type Error struct {
	Pos     Position
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(pos Position, format string, args ...any) *Error {
	return &Error{Pos: pos, Message: fmt.Sprintf(format, args...)}
}
