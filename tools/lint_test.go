package tools

import (
	"testing"

	"github.com/pebblelang/pebble/ir"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, text string) *ir.Program {
	t.Helper()
	prog, err := ir.Parse(text)
	require.NoError(t, err)
	return prog
}

func TestLintCleanProgramHasNoIssues(t *testing.T) {
	prog := mustParse(t, `
%func main ()
%int x
%mov x, 1
%out x
%endfunc
`)
	issues := Lint(prog)
	require.Empty(t, issues)
}

func TestLintFlagsUndefinedJumpTarget(t *testing.T) {
	prog := mustParse(t, `
%func main ()
%jmp :nowhere
%endfunc
`)
	issues := Lint(prog)
	require.True(t, HasErrors(issues))
	require.Contains(t, issues[0].Code, "UNDEF_LABEL")
}

func TestLintFlagsUndefinedFunctionCall(t *testing.T) {
	prog := mustParse(t, `
%func main ()
%int r
%call r, mystery()
%endfunc
`)
	issues := Lint(prog)
	require.True(t, HasErrors(issues))

	var found bool
	for _, i := range issues {
		if i.Code == "UNDEF_FUNCTION" {
			found = true
		}
	}
	require.True(t, found)
}

func TestLintFlagsUnusedLabel(t *testing.T) {
	prog := mustParse(t, `
%func main ()
:dead
%out 1
%endfunc
`)
	issues := Lint(prog)
	var found bool
	for _, i := range issues {
		if i.Code == "UNUSED_LABEL" {
			found = true
			require.Equal(t, LintWarning, i.Level)
		}
	}
	require.True(t, found)
}

func TestLintFlagsUnreachableCode(t *testing.T) {
	prog := mustParse(t, `
%func main ()
%int x
%ret x
%out x
%endfunc
`)
	issues := Lint(prog)
	var found bool
	for _, i := range issues {
		if i.Code == "UNREACHABLE_CODE" {
			found = true
		}
	}
	require.True(t, found)
}
