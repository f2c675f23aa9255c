package tools

import (
	"testing"

	"github.com/pebblelang/pebble/ir"
	"github.com/stretchr/testify/require"
)

func TestFormatRoundTrips(t *testing.T) {
	prog, err := ir.Parse(`
%func main ()
%int x
%mov x, 5
%out x
%endfunc
`)
	require.NoError(t, err)

	text := Format(prog, nil)
	require.Contains(t, text, "%func main ()")
	require.Contains(t, text, "%int x")
	require.Contains(t, text, "%mov x, 5")
	require.Contains(t, text, "%out x")
	require.Contains(t, text, "%endfunc")

	reparsed, err := ir.Parse(text)
	require.NoError(t, err)
	require.Contains(t, reparsed.Functions, "main")
}

func TestFormatPreservesLabelsAndCalls(t *testing.T) {
	prog, err := ir.Parse(`
%func add (%int a, %int b)
%int t
%add t, a, b
%ret t
%endfunc

%func main ()
:beginloop1
%int r
%call r, add(1, 2)
%jmp :beginloop1
%endfunc
`)
	require.NoError(t, err)

	text := Format(prog, nil)
	require.Contains(t, text, ":beginloop1")
	require.Contains(t, text, "%call r, add(1, 2)")
	require.Contains(t, text, "%jmp :beginloop1")
}
