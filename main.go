// Command pebble is the Pebble compiler and interpreter CLI, grounded
// on the teacher's flag-rich main.go (lookbusy1344/arm-emulator
// main.go) and on minzc's cobra root command
// (oisee-minz/minzc cmd/minzc/main.go): a default "run" action plus
// check/ir/debug/tui subcommands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pebblelang/pebble/config"
	"github.com/pebblelang/pebble/debugger"
	"github.com/pebblelang/pebble/loader"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "pebble [file]",
	Short:         "Pebble compiler and interpreter",
	Version:       Version,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		runRun(args)
	},
}

var checkManifest string

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Parse one file, or every file in a --manifest, reporting errors without executing",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if checkManifest != "" {
			checkManifestFiles(checkManifest)
			return
		}
		if len(args) != 1 {
			fmt.Println("Please provide an input file.")
			os.Exit(1)
		}
		if _, err := loader.CompileFileWithLimits(args[0], cfg.Execution.MaxArraySize); err != nil {
			printFramedError(err)
			os.Exit(1)
		}
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkManifest, "manifest", "", "pebble.toml program manifest listing files to check together")
}

// checkManifestFiles lints every file named in a program manifest,
// reporting each failure without stopping at the first one, then exits
// non-zero if any file failed — the batch counterpart to checking a
// single file, for projects with more than one Pebble source file.
func checkManifestFiles(path string) {
	manifest, err := config.LoadManifest(path)
	if err != nil {
		printFramedError(err)
		os.Exit(1)
	}

	failed := 0
	for _, file := range manifest.Files {
		if _, err := loader.CompileFileWithLimits(file, cfg.Execution.MaxArraySize); err != nil {
			fmt.Printf("%s: %v\n", file, err)
			failed++
			continue
		}
		fmt.Printf("%s: ok\n", file)
	}

	if failed > 0 {
		fmt.Printf("%d of %d file(s) failed\n", failed, len(manifest.Files))
		os.Exit(1)
	}
}

var irCmd = &cobra.Command{
	Use:   "ir <file>",
	Short: "Compile a source file and print its generated IR without executing it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		res, err := loader.CompileFileWithLimits(args[0], cfg.Execution.MaxArraySize)
		if err != nil {
			printFramedError(err)
			os.Exit(1)
		}
		printFramed("Generated Code:", res.IRText)
	},
}

var debugCmd = &cobra.Command{
	Use:   "debug <file>",
	Short: "Compile a file and launch the line-oriented debugger",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		launchDebugger(args[0], false)
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui <file>",
	Short: "Compile a file and launch the full-screen TUI debugger",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		launchDebugger(args[0], true)
	},
}

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.DefaultConfig()
	}

	rootCmd.AddCommand(checkCmd, irCmd, debugCmd, tuiCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runRun implements the default "pebble <file>" action: spec.md §6.3's
// argument-count and read-error messages, then the framed
// "Generated Code:" block, then execution.
func runRun(args []string) {
	switch len(args) {
	case 0:
		fmt.Println("Please provide an input file.")
		os.Exit(1)
	case 1:
		// proceed
	default:
		fmt.Println("Too many commandline arguments.")
		os.Exit(1)
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("**Error. File %q: %s\n", path, readErrorReason(err))
		os.Exit(1)
	}

	res, err := loader.CompileWithLimits(string(data), path, cfg.Execution.MaxArraySize)
	if err != nil {
		printFramedError(err)
		os.Exit(1)
	}

	printFramed("Generated Code:", res.IRText)

	machine := loader.NewVM(res, os.Stdin, os.Stdout)
	machine.MaxSteps = cfg.Execution.MaxSteps
	machine.MaxCallDepth = cfg.Execution.MaxCallDepth

	if err := machine.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// readErrorReason strips the Go-idiomatic "open <path>: " prefix os.ReadFile
// wraps its errors in, so the printed reason matches spec.md §6.3's
// "**Error. File "<path>": <reason>" exactly rather than repeating the path.
func readErrorReason(err error) string {
	if pathErr, ok := err.(*os.PathError); ok {
		return pathErr.Err.Error()
	}
	return err.Error()
}

func printFramed(title, body string) {
	fmt.Println(title)
	fmt.Println("----------------------")
	fmt.Print(body)
	if len(body) == 0 || body[len(body)-1] != '\n' {
		fmt.Println()
	}
	fmt.Println("----------------------")
}

func printFramedError(err error) {
	printFramed("**Error**", err.Error())
}

// launchDebugger compiles path and hands the resulting VM to one of
// the two debugger front ends (§5.4).
func launchDebugger(path string, tui bool) {
	res, err := loader.CompileFileWithLimits(path, cfg.Execution.MaxArraySize)
	if err != nil {
		printFramedError(err)
		os.Exit(1)
	}

	machine := loader.NewVM(res, os.Stdin, os.Stdout)
	machine.MaxSteps = cfg.Execution.MaxSteps
	machine.MaxCallDepth = cfg.Execution.MaxCallDepth
	dbg := debugger.NewDebugger(machine)

	if tui {
		if err := debugger.RunTUI(dbg); err != nil {
			fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println("Pebble Debugger - type 'help' for commands")
	fmt.Printf("Program loaded: %s\n", path)
	fmt.Println()

	if err := debugger.RunCLI(dbg); err != nil {
		fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
		os.Exit(1)
	}
}
