package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func parseOK(t *testing.T, source string) *Program {
	t.Helper()
	p, err := New(source, "test")
	require.NoError(t, err)
	prog, err := p.Parse()
	require.NoError(t, err)
	return prog
}

func parseErr(t *testing.T, source string) error {
	t.Helper()
	p, err := New(source, "test")
	if err != nil {
		return err
	}
	_, err = p.Parse()
	require.Error(t, err)
	return err
}

func TestArithmeticAndPrint(t *testing.T) {
	prog := parseOK(t, `
		func main() {
			int x;
			x = 1 + 2 * 3;
			print(x);
		}
	`)
	require.Contains(t, prog.IR, "%func main ()")
	require.Contains(t, prog.IR, "%mult")
	require.Contains(t, prog.IR, "%add")
	require.Contains(t, prog.IR, "%out x")
	require.Contains(t, prog.IR, "%endfunc")
}

func TestWhileWithBreak(t *testing.T) {
	prog := parseOK(t, `
		func main() {
			int i;
			i = 0;
			while i < 10 {
				if i == 5 {
					break;
				}
				i = i + 1;
			}
			print(i);
		}
	`)
	require.Contains(t, prog.IR, "beginloop1")
	require.Contains(t, prog.IR, "endloop1")
	require.Contains(t, prog.IR, "%branch_ifn")
	require.Contains(t, prog.IR, "%jmp :endloop1")
}

func TestContinueTargetsLoopBegin(t *testing.T) {
	prog := parseOK(t, `
		func main() {
			int i;
			i = 0;
			while i < 10 {
				i = i + 1;
				if i == 3 {
					continue;
				}
				print(i);
			}
		}
	`)
	require.Contains(t, prog.IR, "%jmp :beginloop1")
}

func TestIfElse(t *testing.T) {
	prog := parseOK(t, `
		func main() {
			int x;
			x = 1;
			if x == 1 {
				print(1);
			} else {
				print(0);
			}
		}
	`)
	require.Contains(t, prog.IR, "iftrue1")
	require.Contains(t, prog.IR, "else1")
	require.Contains(t, prog.IR, "endif1")
}

func TestArraySum(t *testing.T) {
	prog := parseOK(t, `
		func main() {
			int[5] a;
			int i;
			int sum;
			i = 0;
			sum = 0;
			a[0] = 10;
			while i < 5 {
				sum = sum + a[i];
				i = i + 1;
			}
			print(sum);
		}
	`)
	require.Contains(t, prog.IR, "%int[] a, 5")
	require.Contains(t, prog.IR, "%mov [a + 0], 10")
	require.Contains(t, prog.IR, "[a + ")
}

func TestFunctionCall(t *testing.T) {
	prog := parseOK(t, `
		func add(int a, int b) {
			return a + b;
		}
		func main() {
			int r;
			r = add(1, 2);
			print(r);
		}
	`)
	require.Contains(t, prog.IR, "%func add (%int a, %int b)")
	require.Contains(t, prog.IR, "%call")
	require.Contains(t, prog.IR, "add(1, 2)")
}

func TestMissingMainIsAnError(t *testing.T) {
	err := parseErr(t, `
		func helper() {
			return 0;
		}
	`)
	require.Contains(t, strings.ToLower(err.Error()), "main")
}

func TestUndeclaredVariableIsAnError(t *testing.T) {
	err := parseErr(t, `
		func main() {
			print(y);
		}
	`)
	require.Contains(t, err.Error(), "undeclared")
}

func TestDuplicateDeclarationIsAnError(t *testing.T) {
	err := parseErr(t, `
		func main() {
			int x;
			int x;
		}
	`)
	require.Contains(t, err.Error(), "duplicate declaration")
}

func TestDuplicateDeclarationAcrossNamespacesIsAnError(t *testing.T) {
	err := parseErr(t, `
		func main() {
			int x;
			int[3] x;
		}
	`)
	require.Contains(t, err.Error(), "duplicate declaration")
}

func TestBreakOutsideLoopIsAnError(t *testing.T) {
	err := parseErr(t, `
		func main() {
			break;
		}
	`)
	require.Contains(t, err.Error(), "not within a loop")
}

func TestContinueOutsideLoopIsAnError(t *testing.T) {
	err := parseErr(t, `
		func main() {
			continue;
		}
	`)
	require.Contains(t, err.Error(), "not within a loop")
}

func TestZeroSizeArrayIsAnError(t *testing.T) {
	err := parseErr(t, `
		func main() {
			int[0] a;
		}
	`)
	require.Contains(t, err.Error(), "positive")
}

func TestArraySizeOverMaxIsAnError(t *testing.T) {
	p, err := New(`
		func main() {
			int[10] a;
		}
	`, "test")
	require.NoError(t, err)
	p.MaxArraySize = 5

	_, err = p.Parse()
	require.Error(t, err)
	require.Contains(t, err.Error(), "exceeds the maximum")
}

func TestArraySizeAtMaxIsAllowed(t *testing.T) {
	p, err := New(`
		func main() {
			int[5] a;
		}
	`, "test")
	require.NoError(t, err)
	p.MaxArraySize = 5

	_, err = p.Parse()
	require.NoError(t, err)
}

func TestDuplicateFunctionIsAnError(t *testing.T) {
	err := parseErr(t, `
		func f() {
			return 0;
		}
		func f() {
			return 1;
		}
		func main() {
			int x;
			x = 0;
		}
	`)
	require.Contains(t, err.Error(), "already defined")
}

func TestCallArityMismatchIsAnError(t *testing.T) {
	err := parseErr(t, `
		func add(int a, int b) {
			return a + b;
		}
		func main() {
			int r;
			r = add(1);
		}
	`)
	require.Contains(t, err.Error(), "argument")
}

func TestUnknownCharacterIsAnError(t *testing.T) {
	err := parseErr(t, `
		func main() {
			int x;
			x = 1 @ 2;
		}
	`)
	require.Contains(t, err.Error(), "Unidentified symbol")
}

func TestParamShadowingIsDuplicateDeclaration(t *testing.T) {
	err := parseErr(t, `
		func f(int a) {
			int a;
			return a;
		}
		func main() {
			int x;
			x = f(1);
		}
	`)
	require.Contains(t, err.Error(), "duplicate declaration")
}
