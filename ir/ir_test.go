package ir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSimpleFunction(t *testing.T) {
	prog, err := Parse(`
%func main ()
%int x
%mov x, 5
%out x
%endfunc
`)
	require.NoError(t, err)
	require.Contains(t, prog.Functions, "main")

	fn := prog.Functions["main"]
	require.Equal(t, OpDeclInt, fn.Body[0].Op)
	require.Equal(t, OpMov, fn.Body[1].Op)
	require.Equal(t, OperandConst, fn.Body[1].A.Kind)
	require.EqualValues(t, 5, fn.Body[1].A.Const)
	require.Equal(t, OpOut, fn.Body[2].Op)
}

func TestParseLabelsAndJumps(t *testing.T) {
	prog, err := Parse(`
%func main ()
:beginloop1
%lt _temp1, i, 10
%branch_ifn _temp1, :endloop1
%jmp :beginloop1
:endloop1
%endfunc
`)
	require.NoError(t, err)
	fn := prog.Functions["main"]
	require.Contains(t, fn.Labels, "beginloop1")
	require.Contains(t, fn.Labels, "endloop1")

	var branch, jmp *Statement
	for i := range fn.Body {
		switch fn.Body[i].Op {
		case OpBranchIfn:
			branch = &fn.Body[i]
		case OpJmp:
			jmp = &fn.Body[i]
		}
	}
	require.NotNil(t, branch)
	require.Equal(t, "endloop1", branch.Label)
	require.NotNil(t, jmp)
	require.Equal(t, "beginloop1", jmp.Label)
}

func TestParseArrayAndIndexedOperand(t *testing.T) {
	prog, err := Parse(`
%func main ()
%int[] a, 5
%mov [a + 0], 10
%mov _temp1, [a + i]
%endfunc
`)
	require.NoError(t, err)
	fn := prog.Functions["main"]
	require.Equal(t, OpDeclArray, fn.Body[0].Op)
	require.EqualValues(t, 5, fn.Body[0].Size)

	require.Equal(t, OperandIndexed, fn.Body[1].Dst.Kind)
	require.Equal(t, "a", fn.Body[1].Dst.Name)
	require.Equal(t, OperandConst, fn.Body[1].Dst.Index.Kind)

	require.Equal(t, OperandIndexed, fn.Body[2].A.Kind)
	require.Equal(t, OperandName, fn.Body[2].A.Index.Kind)
	require.Equal(t, "i", fn.Body[2].A.Index.Name)
}

func TestParseFunctionWithParamsAndCall(t *testing.T) {
	prog, err := Parse(`
%func add (%int a, %int b)
%add _temp1, a, b
%ret _temp1
%endfunc

%func main ()
%int r
%int _temp2
%call _temp2, add(1, 2)
%mov r, _temp2
%out r
%endfunc
`)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, prog.Functions["add"].Params)

	main := prog.Functions["main"]
	var call *Statement
	for i := range main.Body {
		if main.Body[i].Op == OpCall {
			call = &main.Body[i]
		}
	}
	require.NotNil(t, call)
	require.Equal(t, "add", call.Func)
	require.Len(t, call.Args, 2)
	require.EqualValues(t, 1, call.Args[0].Const)
	require.EqualValues(t, 2, call.Args[1].Const)
}

func TestParseRejectsInstructionOutsideFunction(t *testing.T) {
	_, err := Parse("%out x\n")
	require.Error(t, err)
}

func TestParseRejectsUnknownOpcode(t *testing.T) {
	_, err := Parse("%func main ()\n%frobnicate x\n%endfunc\n")
	require.Error(t, err)
}

func TestParseRejectsUnterminatedFunction(t *testing.T) {
	_, err := Parse("%func main ()\n%out x\n")
	require.Error(t, err)
}
