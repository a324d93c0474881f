package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// renderFlags holds rendering flags.
type renderFlags struct {
	dpi         int
	compression int
	alpha       bool
}

// poolFlags holds worker pool flags.
type poolFlags struct {
	workers int
	timeout string
	soffice string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common   commonFlags
	output   string
	prefix   string
	parallel int
	progress bool
	render   renderFlags
	pool     poolFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed timing")
}

// addRenderFlags adds rendering flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.IntVar(&f.dpi, "dpi", 0, "output resolution in DPI (1-1200)")
	fs.IntVar(&f.compression, "compression", -1, "PNG compression level (0-9)")
	fs.BoolVar(&f.alpha, "alpha", false, "keep alpha channel instead of white background")
}

// addPoolFlags adds worker pool flags to a FlagSet.
func addPoolFlags(fs *flag.FlagSet, f *poolFlags) {
	fs.IntVarP(&f.workers, "workers", "w", 0, "LibreOffice instances (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-document timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.soffice, "soffice", "", "explicit path to the soffice binary")
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	f := &convertFlags{}

	fs.StringVarP(&f.output, "out", "o", "", "output directory (default \"out\")")
	fs.StringVar(&f.prefix, "prefix", "", "output filename prefix (default: input stem)")
	fs.IntVarP(&f.parallel, "parallel", "P", 0, "convert up to n documents concurrently")
	fs.BoolVar(&f.progress, "progress", false, "show per-page progress")

	addCommonFlags(fs, &f.common)
	addRenderFlags(fs, &f.render)
	addPoolFlags(fs, &f.pool)

	fs.Usage = func() { printConvertUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// infoFlags holds flags for the info command.
type infoFlags struct {
	dpi int
}

// parseInfoFlags parses info command flags and returns positional args.
func parseInfoFlags(args []string) (*infoFlags, []string, error) {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	f := &infoFlags{}

	fs.IntVar(&f.dpi, "dpi", 0, "report pixel dimensions at this DPI")

	fs.Usage = func() { printInfoUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
