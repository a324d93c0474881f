package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: office2png <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert    Convert Office documents to PNG page images")
	fmt.Fprintln(w, "  info       Show page count and dimensions of a PDF")
	fmt.Fprintln(w, "  doctor     Check LibreOffice installation and environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'office2png help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: office2png convert <input>... [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert Office documents (docx, doc, xlsx, xls) to PNG page images.")
	fmt.Fprintln(w, "Directory arguments are searched recursively.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --out <dir>           Output directory (default \"out\")")
	fmt.Fprintln(w, "      --prefix <s>          Output filename prefix (default: input stem)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "      --dpi <n>             Output resolution in DPI (1-1200, default 300)")
	fmt.Fprintln(w, "      --compression <n>     PNG compression level (0-9, default 6)")
	fmt.Fprintln(w, "      --alpha               Keep alpha channel instead of white background")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Worker Pool:")
	fmt.Fprintln(w, "  -w, --workers <n>         LibreOffice instances (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-document timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --soffice <path>      Explicit path to the soffice binary")
	fmt.Fprintln(w, "  -P, --parallel <n>        Convert up to n documents concurrently")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "      --progress            Show per-page progress")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed timing")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  OFFICE2PNG_CONFIG, OFFICE2PNG_SOFFICE, OFFICE2PNG_TIMEOUT,")
	fmt.Fprintln(w, "  OFFICE2PNG_WORKERS, OFFICE2PNG_DPI")
}

// printInfoUsage prints usage for the info command.
func printInfoUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: office2png info <file.pdf> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Show page count and page dimensions of a PDF without rendering.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --dpi <n>             Also report pixel dimensions at this DPI")
}

// runHelp prints help for a specific command.
func runHelp(args []string, deps *Dependencies) {
	if len(args) == 0 {
		printUsage(deps.Stdout)
		return
	}

	switch args[0] {
	case "convert":
		printConvertUsage(deps.Stdout)
	case "info":
		printInfoUsage(deps.Stdout)
	case "doctor":
		fmt.Fprintln(deps.Stdout, "Usage: office2png doctor [--json]")
		fmt.Fprintln(deps.Stdout)
		fmt.Fprintln(deps.Stdout, "Check LibreOffice installation and environment.")
	case "version":
		fmt.Fprintln(deps.Stdout, "Usage: office2png version")
		fmt.Fprintln(deps.Stdout)
		fmt.Fprintln(deps.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(deps.Stdout, "Usage: office2png help [command]")
		fmt.Fprintln(deps.Stdout)
		fmt.Fprintln(deps.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(deps.Stderr, "Unknown command: %s\n", args[0])
		printUsage(deps.Stderr)
	}
}
