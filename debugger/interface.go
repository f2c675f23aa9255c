package debugger

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// singleKeyCommands maps a bare keystroke to the command it stands in
// for, so a TTY user can step without typing a command and pressing
// Enter each time — grounded on the raw-mode key reader in minzc's
// interactive REPL (oisee-minz/minzc cmd/repl/main.go).
var singleKeyCommands = map[rune]string{
	's': "step",
	'n': "next",
	'c': "continue",
	'f': "finish",
	'p': "info frame",
	'h': "help",
}

// RunCLI runs the line-oriented command-line debugger interface. When
// stdin is a terminal it additionally accepts the single keystrokes in
// singleKeyCommands without waiting for Enter; anything else drops back
// to reading a full command line.
func RunCLI(dbg *Debugger) error {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		return runCLIRaw(dbg, fd)
	}
	return runCLILine(dbg, bufio.NewScanner(os.Stdin))
}

func runCLILine(dbg *Debugger, scanner *bufio.Scanner) error {
	for {
		fmt.Print("(pebble-dbg) ")

		if !scanner.Scan() {
			break
		}

		cmdLine := strings.TrimSpace(scanner.Text())
		if quitCommand(cmdLine) {
			break
		}

		runOneCommand(dbg, cmdLine)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}

	return nil
}

// runCLIRaw drives the same command loop as runCLILine, but reads one
// keystroke at a time from a raw terminal: a recognized key in
// singleKeyCommands fires immediately, anything else restores cooked
// mode just long enough to read a full Enter-terminated command.
func runCLIRaw(dbg *Debugger, fd int) error {
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return runCLILine(dbg, bufio.NewScanner(os.Stdin))
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("\r\n(pebble-dbg) ")

		r, _, err := reader.ReadRune()
		if err != nil {
			break
		}

		if cmd, ok := singleKeyCommands[r]; ok {
			fmt.Printf("%c\r\n", r)
			runOneCommand(dbg, cmd)
			continue
		}

		if r == 'q' {
			fmt.Print("q\r\n")
			break
		}

		if r == escRune {
			if cmdLine, ok := readHistoryRecall(dbg, reader); ok {
				if cmdLine == "" {
					continue
				}
				fmt.Printf("%s\r\n", cmdLine)
				runOneCommand(dbg, cmdLine)
				continue
			}
		}

		// Not a recognized single key: restore cooked mode to read a
		// full command line, then go back to raw mode.
		_ = term.Restore(fd, oldState)
		fmt.Printf("%c", r)
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		cmdLine := strings.TrimSpace(string(r) + line)

		if _, rawErr := term.MakeRaw(fd); rawErr != nil {
			return runCLILine(dbg, bufio.NewScanner(os.Stdin))
		}

		if quitCommand(cmdLine) {
			break
		}
		runOneCommand(dbg, cmdLine)
	}

	return nil
}

func quitCommand(cmdLine string) bool {
	return cmdLine == "quit" || cmdLine == "q" || cmdLine == "exit"
}

// escRune is the ESC byte that begins an ANSI cursor-key escape sequence
// ("\x1b[A" for Up, "\x1b[B" for Down).
const escRune = 0x1b

// readHistoryRecall consumes the rest of a cursor-key escape sequence
// after an ESC has already been read, walking dbg.History the same way
// an Up/Down arrow recalls a previous line in a readline-backed shell.
// ok is false if the escape sequence wasn't a recognized cursor key, in
// which case the caller should treat r as an ordinary character instead.
func readHistoryRecall(dbg *Debugger, reader *bufio.Reader) (cmdLine string, ok bool) {
	bracket, _, err := reader.ReadRune()
	if err != nil || bracket != '[' {
		return "", false
	}

	key, _, err := reader.ReadRune()
	if err != nil {
		return "", false
	}

	switch key {
	case 'A': // Up
		return dbg.History.Previous(), true
	case 'B': // Down
		return dbg.History.Next(), true
	default:
		return "", false
	}
}

// runOneCommand executes cmdLine, prints its output, and — if it left
// the VM running (continue/step/next/finish) — drives execution until
// ShouldBreak fires or the program halts.
func runOneCommand(dbg *Debugger, cmdLine string) {
	if err := dbg.ExecuteCommand(cmdLine); err != nil {
		fmt.Printf("Error: %v\r\n", err)
	}

	if output := dbg.GetOutput(); output != "" {
		fmt.Print(strings.ReplaceAll(output, "\n", "\r\n"))
	}

	for dbg.Running {
		if shouldBreak, reason := dbg.ShouldBreak(); shouldBreak {
			dbg.Running = false
			loc, _ := dbg.CurrentLocation()
			fmt.Printf("Stopped: %s at %s:%d\r\n", reason, loc.Func, loc.Line)
			break
		}

		halted, err := dbg.VM.Step()
		if err != nil {
			fmt.Printf("Runtime error: %v\r\n", err)
			dbg.Running = false
			break
		}
		if halted {
			dbg.Running = false
			fmt.Print("Program halted\r\n")
			break
		}
	}
}

// RunTUI runs the full-screen TUI debugger.
func RunTUI(dbg *Debugger) error {
	tui := NewTUI(dbg)
	return tui.Run()
}
