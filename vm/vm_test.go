package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pebblelang/pebble/ir"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, source, stdin string) (string, error) {
	t.Helper()
	prog, err := ir.Parse(source)
	require.NoError(t, err)

	var out bytes.Buffer
	m := New(prog, strings.NewReader(stdin), &out)
	err = m.Run()
	return out.String(), err
}

func TestMovWithoutOutPrintsNothing(t *testing.T) {
	out, err := run(t, `
%func main ()
%int x
%mov x, 7
%endfunc
`, "")
	require.NoError(t, err)
	require.Equal(t, "", out)
}

func TestPrintsComputedValue(t *testing.T) {
	out, err := run(t, `
%func main ()
%int x
%int y
%mov x, 3
%mov y, 4
%add x, x, y
%out x
%endfunc
`, "")
	require.NoError(t, err)
	require.Equal(t, "7\n", out)
}

func TestWhileLoopWithBreak(t *testing.T) {
	out, err := run(t, `
%func main ()
%int i
%mov i, 0
:beginloop1
%int _t1
%lt _t1, i, 5
%branch_ifn _t1, :endloop1
%int _t2
%eq _t2, i, 3
%branch_if _t2, :endloop1
%int _t3
%add _t3, i, 1
%mov i, _t3
%jmp :beginloop1
:endloop1
%out i
%endfunc
`, "")
	require.NoError(t, err)
	require.Equal(t, "3\n", out)
}

func TestArrayReadWrite(t *testing.T) {
	out, err := run(t, `
%func main ()
%int[] a, 3
%mov [a + 0], 10
%mov [a + 1], 20
%int sum
%int t
%mov t, [a + 0]
%mov sum, t
%mov t, [a + 1]
%add sum, sum, t
%out sum
%endfunc
`, "")
	require.NoError(t, err)
	require.Equal(t, "30\n", out)
}

func TestFunctionCallAndReturn(t *testing.T) {
	out, err := run(t, `
%func add (%int a, %int b)
%int t
%add t, a, b
%ret t
%endfunc

%func main ()
%int r
%int t2
%call t2, add(2, 3)
%mov r, t2
%out r
%endfunc
`, "")
	require.NoError(t, err)
	require.Equal(t, "5\n", out)
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	_, err := run(t, `
%func main ()
%int x
%int z
%mov z, 0
%div x, 1, z
%endfunc
`, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "division by zero")
}

func TestArrayOutOfBoundsIsRuntimeError(t *testing.T) {
	_, err := run(t, `
%func main ()
%int[] a, 2
%mov [a + 5], 1
%endfunc
`, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "out of bounds")
}

func TestReadFromStdin(t *testing.T) {
	out, err := run(t, `
%func main ()
%int x
%input x
%out x
%endfunc
`, "42\n")
	require.NoError(t, err)
	require.Equal(t, "42\n", out)
}

func TestNonMainFallingOffEndWithoutReturnIsAnError(t *testing.T) {
	_, err := run(t, `
%func helper (%int a)
%int _t1
%gt _t1, a, 0
%branch_ifn _t1, :else1
%ret 1
:else1
%endfunc

%func main ()
%int r
%int t2
%call t2, helper(0)
%mov r, t2
%out r
%endfunc
`, "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "fell off end of function without return")
}

func TestMaxCallDepthIsEnforced(t *testing.T) {
	prog, err := ir.Parse(`
%func recurse (%int n)
%int t
%call t, recurse(n)
%ret t
%endfunc

%func main ()
%int r
%int t2
%call t2, recurse(0)
%mov r, t2
%endfunc
`)
	require.NoError(t, err)

	m := New(prog, strings.NewReader(""), &bytes.Buffer{})
	m.MaxCallDepth = 3
	err = m.Run()
	require.Error(t, err)
	require.Contains(t, err.Error(), "maximum call depth")
}

func TestMissingMainIsAnError(t *testing.T) {
	_, err := run(t, `
%func helper ()
%ret 0
%endfunc
`, "")
	require.Error(t, err)
}
