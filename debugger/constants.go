package debugger

// DisplayUpdateFrequency is a step interval for TUI redraws during
// continuous execution. No code refers to it: runUntilPause redraws the
// panes once, after execution pauses.
const DisplayUpdateFrequency = 100

// Code View Context Constants
const (
	// CodeContextLinesBefore/CodeContextLinesAfter are IR line counts for
	// a full-size source view. No code refers to them; the TUI source
	// pane uses the compact pair below.
	CodeContextLinesBefore = 20
	CodeContextLinesAfter  = 80

	// CodeContextLinesBeforeCompact/AfterCompact bound the TUI source
	// pane's window (see UpdateSourceView). The "list" command uses its
	// own fixed window of 3 lines on each side (see cmdList).
	CodeContextLinesBeforeCompact = 5
	CodeContextLinesAfterCompact  = 10
)

// CallStackViewRows is the fixed height of the call-stack panel.
const CallStackViewRows = 9

// VariablesViewMaxEntries caps how many scalar/array entries the variables
// panel renders per frame, so a program with hundreds of locals doesn't
// blow out the TUI layout.
const VariablesViewMaxEntries = 64
