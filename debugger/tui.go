package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TUI is the text user interface for the debugger, grounded on the
// teacher's tview/tcell layout (lookbusy1344/arm-emulator debugger/tui.go),
// with the register/memory/stack/disassembly panes replaced by panes over
// Pebble's actual runtime state: source, call stack, and variables.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	SourceView      *tview.TextView
	VariablesView   *tview.TextView
	CallStackView   *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField
}

// NewTUI creates a new text user interface wrapping dbg.
func NewTUI(dbg *Debugger) *TUI {
	tui := &TUI{
		Debugger: dbg,
		App:      tview.NewApplication(),
	}

	tui.initializeViews()
	tui.buildLayout()
	tui.setupKeyBindings()

	return tui
}

// NewTUIWithScreen creates a TUI bound to a caller-supplied tcell.Screen
// rather than the real terminal — used by tests to drive the app against
// a tcell.SimulationScreen.
func NewTUIWithScreen(dbg *Debugger, screen tcell.Screen) *TUI {
	tui := &TUI{
		Debugger: dbg,
		App:      tview.NewApplication(),
	}
	tui.App.SetScreen(screen)

	tui.initializeViews()
	tui.buildLayout()
	tui.setupKeyBindings()

	return tui
}

func (t *TUI) initializeViews() {
	t.SourceView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.SourceView.SetBorder(true).SetTitle(" Source ")

	t.VariablesView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.VariablesView.SetBorder(true).SetTitle(" Variables ")

	t.CallStackView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.CallStackView.SetBorder(true).SetTitle(" Call Stack ")

	t.BreakpointsView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints/Watchpoints ")

	t.OutputView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().
		SetLabel("> ").
		SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	t.LeftPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.SourceView, 0, 3, false).
		AddItem(t.CallStackView, CallStackViewRows, 0, false)

	t.RightPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.VariablesView, 0, 2, false).
		AddItem(t.BreakpointsView, 0, 1, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.LeftPanel, 0, 2, false).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().
		AddPage("main", t.MainLayout, true, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF9:
			t.executeCommand("break")
			return nil
		case tcell.KeyF10:
			t.executeCommand("next")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key == tcell.KeyEnter {
		cmd := t.CommandInput.GetText()
		if cmd != "" {
			t.executeCommand(cmd)
			t.CommandInput.SetText("")
		}
	}
}

func (t *TUI) executeCommand(cmd string) {
	t.Debugger.Output.Reset()

	err := t.Debugger.ExecuteCommand(cmd)
	output := t.Debugger.GetOutput()

	if err != nil {
		t.WriteOutput(fmt.Sprintf("[red]Error:[white] %v\n", err))
	}
	if output != "" {
		t.WriteOutput(output)
	}

	if t.Debugger.Running {
		t.runUntilPause()
	}

	t.RefreshAll()
}

// runUntilPause steps the VM until ShouldBreak fires or the program halts,
// mirroring the batch loop in RunCLI but for the TUI's own command cycle.
func (t *TUI) runUntilPause() {
	dbg := t.Debugger
	for dbg.Running {
		if shouldBreak, reason := dbg.ShouldBreak(); shouldBreak {
			dbg.Running = false
			t.WriteOutput(fmt.Sprintf("Stopped: %s\n", reason))
			break
		}

		halted, err := dbg.VM.Step()
		if err != nil {
			t.WriteOutput(fmt.Sprintf("Runtime error: %v\n", err))
			dbg.Running = false
			break
		}
		if halted {
			t.WriteOutput("Program halted\n")
			dbg.Running = false
			break
		}
	}
}

// WriteOutput writes to the output view.
func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

// RefreshAll refreshes every view panel.
func (t *TUI) RefreshAll() {
	t.UpdateSourceView()
	t.UpdateVariablesView()
	t.UpdateCallStackView()
	t.UpdateBreakpointsView()
	t.App.Draw()
}

// UpdateSourceView renders the current frame's IR around its instruction
// pointer, marking the current line and any breakpoints.
func (t *TUI) UpdateSourceView() {
	t.SourceView.Clear()

	frame := t.Debugger.VM.Current()
	if frame == nil {
		t.SourceView.SetText("[yellow]Program is not running[white]")
		return
	}

	start := frame.PC - CodeContextLinesBeforeCompact
	if start < 0 {
		start = 0
	}
	end := frame.PC + CodeContextLinesAfterCompact
	if end >= len(frame.Func.Body) {
		end = len(frame.Func.Body) - 1
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("[yellow]%s[white]", frame.Func.Name))
	for i := start; i <= end; i++ {
		stmt := frame.Func.Body[i]

		marker := "  "
		color := "white"
		if i == frame.PC {
			marker = "->"
			color = "yellow"
		}
		if t.Debugger.Breakpoints.GetBreakpoint(Location{Func: frame.Func.Name, Line: stmt.Line}) != nil {
			marker = "* "
		}

		lines = append(lines, fmt.Sprintf("[%s]%s %4d: %s[white]", color, marker, stmt.Line, stmt.Op))
	}

	t.SourceView.SetText(strings.Join(lines, "\n"))
}

// UpdateVariablesView renders the current frame's scalars and arrays.
func (t *TUI) UpdateVariablesView() {
	t.VariablesView.Clear()

	frame := t.Debugger.VM.Current()
	if frame == nil {
		t.VariablesView.SetText("[yellow]Program is not running[white]")
		return
	}

	var lines []string
	count := 0
	for name, val := range frame.Scalars {
		if count >= VariablesViewMaxEntries {
			break
		}
		lines = append(lines, fmt.Sprintf("%s = %d", name, val))
		count++
	}
	for name, vals := range frame.Arrays {
		if count >= VariablesViewMaxEntries {
			break
		}
		lines = append(lines, fmt.Sprintf("%s = %v", name, vals))
		count++
	}

	t.VariablesView.SetText(strings.Join(lines, "\n"))
}

// UpdateCallStackView renders the whole call stack, innermost frame first.
func (t *TUI) UpdateCallStackView() {
	t.CallStackView.Clear()

	stack := t.Debugger.VM.Stack
	if len(stack) == 0 {
		t.CallStackView.SetText("[yellow]No stack (program not running)[white]")
		return
	}

	var lines []string
	for i := len(stack) - 1; i >= 0; i-- {
		frame := stack[i]
		line := -1
		if frame.PC < len(frame.Func.Body) {
			line = frame.Func.Body[frame.PC].Line
		}
		lines = append(lines, fmt.Sprintf("#%d  %s:%d", len(stack)-1-i, frame.Func.Name, line))
	}

	t.CallStackView.SetText(strings.Join(lines, "\n"))
}

// UpdateBreakpointsView renders every breakpoint and watchpoint.
func (t *TUI) UpdateBreakpointsView() {
	t.BreakpointsView.Clear()

	var lines []string

	bps := t.Debugger.Breakpoints.GetAllBreakpoints()
	if len(bps) > 0 {
		lines = append(lines, "[yellow]Breakpoints:[white]")
		for _, bp := range bps {
			status, color := "enabled", "green"
			if !bp.Enabled {
				status, color = "disabled", "red"
			}

			line := fmt.Sprintf("  %d: [%s]%s[white] %s:%d", bp.ID, color, status, bp.At.Func, bp.At.Line)
			if bp.Condition != "" {
				line += fmt.Sprintf(" if %s", bp.Condition)
			}
			line += fmt.Sprintf(" (hits: %d)", bp.HitCount)
			lines = append(lines, line)
		}
	} else {
		lines = append(lines, "[yellow]No breakpoints set[white]")
	}

	lines = append(lines, "")

	wps := t.Debugger.Watchpoints.GetAllWatchpoints()
	if len(wps) > 0 {
		lines = append(lines, "[yellow]Watchpoints:[white]")
		for _, wp := range wps {
			typeStr := "watch"
			if wp.Type == WatchRead {
				typeStr = "rwatch"
			} else if wp.Type == WatchReadWrite {
				typeStr = "awatch"
			}
			lines = append(lines, fmt.Sprintf("  %d: %s %s = %d", wp.ID, typeStr, wp.Expression, wp.LastValue))
		}
	}

	t.BreakpointsView.SetText(strings.Join(lines, "\n"))
}

// Run starts the TUI application's event loop.
func (t *TUI) Run() error {
	t.RefreshAll()

	t.WriteOutput("[green]Pebble Debugger[white]\n")
	t.WriteOutput("Press F1 for help, F5 to continue, F10 to step over, F11 to step\n")
	t.WriteOutput("Type 'help' for the command list\n\n")

	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

// Stop stops the TUI application.
func (t *TUI) Stop() {
	t.App.Stop()
}
