package main

import (
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	verbose := false
	for _, arg := range os.Args[1:] {
		if arg == "-v" || arg == "--verbose" {
			verbose = true
		}
	}

	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	if verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	os.Exit(run(os.Args[1:], DefaultDeps()))
}

// run dispatches the top-level command and returns the process exit
// code. Split from main for testability.
func run(args []string, deps *Dependencies) int {
	if len(args) == 0 {
		printUsage(deps.Stderr)
		return ExitUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "convert":
		return runConvertCmd(rest, deps)
	case "info":
		return runInfoCmd(rest, deps)
	case "doctor":
		return runDoctorCmd(rest, deps)
	case "version", "--version":
		fmt.Fprintf(deps.Stdout, "office2png %s\n", Version)
		return ExitSuccess
	case "help", "-h", "--help":
		runHelp(rest, deps)
		return ExitSuccess
	default:
		fmt.Fprintf(deps.Stderr, "Unknown command: %s\n", cmd)
		printUsage(deps.Stderr)
		return ExitUsage
	}
}
