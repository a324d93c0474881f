package main

import (
	"fmt"

	office2png "github.com/officepix/go-office2png"
)

// runInfoCmd inspects a PDF's pages without rendering it.
func runInfoCmd(args []string, deps *Dependencies) int {
	flags, positional, err := parseInfoFlags(args)
	if err != nil {
		fmt.Fprintln(deps.Stderr, err)
		return ExitUsage
	}

	if len(positional) != 1 {
		printInfoUsage(deps.Stderr)
		return ExitUsage
	}

	cfg := office2png.DefaultConfig()
	renderer, err := office2png.NewRenderer(cfg.Render)
	if err != nil {
		fmt.Fprintln(deps.Stderr, err)
		return exitCodeFor(err)
	}

	info, err := renderer.DocumentInfo(positional[0])
	if err != nil {
		fmt.Fprintln(deps.Stderr, err)
		return exitCodeFor(err)
	}

	fmt.Fprintf(deps.Stdout, "%s: %d pages\n", positional[0], info.PageCount)
	for _, page := range info.Pages {
		if flags.dpi > 0 {
			fmt.Fprintf(deps.Stdout, "  page %d: %.1f x %.1f pt (%d x %d px @ %d DPI)\n",
				page.PageNumber, page.WidthPoints, page.HeightPoints,
				page.WidthPixels(flags.dpi), page.HeightPixels(flags.dpi), flags.dpi)
		} else {
			fmt.Fprintf(deps.Stdout, "  page %d: %.1f x %.1f pt\n",
				page.PageNumber, page.WidthPoints, page.HeightPoints)
		}
	}
	return ExitSuccess
}
