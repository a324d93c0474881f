package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	office2png "github.com/officepix/go-office2png"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput        = errors.New("no input specified")
	ErrInvalidTimeout = errors.New("invalid timeout")
)

const defaultOutputDir = "out"

// runConvertCmd parses flags and executes the convert command.
func runConvertCmd(args []string, deps *Dependencies) int {
	flags, positional, err := parseConvertFlags(args)
	if err != nil {
		fmt.Fprintln(deps.Stderr, err)
		return ExitUsage
	}

	ctx, stop := notifyContext(context.Background())
	defer stop()

	if err := runConvert(ctx, positional, flags, deps); err != nil {
		fmt.Fprintln(deps.Stderr, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positional []string, flags *convertFlags, deps *Dependencies) error {
	warnUnknownEnvVars(deps.Stderr)

	cfg, err := buildConfig(flags)
	if err != nil {
		return err
	}

	inputs, err := discoverInputs(positional)
	if err != nil {
		return err
	}

	outputDir := flags.output
	if outputDir == "" {
		outputDir = defaultOutputDir
	}

	requests := make([]office2png.ConversionRequest, len(inputs))
	for i, input := range inputs {
		requests[i] = office2png.ConversionRequest{
			InputPath: input,
			OutputDir: outputDir,
			Prefix:    flags.prefix,
		}
	}

	conv, err := office2png.NewConverter(cfg, office2png.WithLogger(cliLogger(flags, deps)))
	if err != nil {
		return err
	}
	defer func() { _ = conv.Close() }()

	var batch *office2png.BatchResult
	switch {
	case flags.parallel > 1:
		batch = conv.ConvertParallel(ctx, requests, flags.parallel)
	case flags.progress && !flags.common.quiet:
		batch = conv.ConvertBatchWithProgress(ctx, requests, progressPrinter(deps.Stderr))
	default:
		batch = conv.ConvertBatch(ctx, requests)
	}

	printResults(batch, flags, deps)

	if len(batch.Failed) > 0 {
		return fmt.Errorf("%d conversion(s) failed", len(batch.Failed))
	}
	return nil
}

// buildConfig layers configuration sources: defaults, then config
// file, then environment variables, then CLI flags. CLI wins.
func buildConfig(flags *convertFlags) (office2png.Config, error) {
	env := loadEnvConfig()

	cfg := office2png.DefaultConfig()

	configName := flags.common.config
	if configName == "" {
		configName = env.ConfigPath
	}
	if configName != "" {
		loaded, err := loadConfigFile(configName)
		if err != nil {
			return cfg, fmt.Errorf("loading config: %w", err)
		}
		cfg = *loaded
	}

	applyEnvConfig(env, &cfg)
	if err := mergeFlags(flags, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *office2png.Config) error {
	if flags.pool.workers != 0 {
		cfg.Pool.PoolSize = office2png.ResolvePoolSize(flags.pool.workers)
	}
	if flags.pool.timeout != "" {
		d, err := time.ParseDuration(flags.pool.timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: %q", ErrInvalidTimeout, flags.pool.timeout)
		}
		cfg.Pool.Timeout = d
	}
	if flags.pool.soffice != "" {
		cfg.Pool.SofficePath = flags.pool.soffice
	}
	if flags.render.dpi != 0 {
		cfg.Render.DPI = flags.render.dpi
	}
	if flags.render.compression >= 0 {
		cfg.Render.Compression = flags.render.compression
	}
	if flags.render.alpha {
		cfg.Render.Alpha = true
	}
	return nil
}

// discoverInputs expands positional arguments into a sorted list of
// supported documents. Directory arguments are walked recursively.
func discoverInputs(positional []string) ([]string, error) {
	if len(positional) == 0 {
		return nil, ErrNoInput
	}

	var inputs []string
	for _, arg := range positional {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", office2png.ErrInputNotFound, arg)
		}

		if !info.IsDir() {
			if !office2png.IsSupportedExtension(filepath.Ext(arg)) {
				return nil, fmt.Errorf("%w: %s (supported: %s)",
					office2png.ErrUnsupportedFormat, arg,
					strings.Join(office2png.SupportedExtensions, ", "))
			}
			inputs = append(inputs, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			// Skip LibreOffice lock files left by open documents.
			if strings.HasPrefix(filepath.Base(path), ".~lock.") {
				return nil
			}
			if office2png.IsSupportedExtension(filepath.Ext(path)) {
				inputs = append(inputs, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("discovering files in %s: %w", arg, err)
		}
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no supported documents found", ErrNoInput)
	}

	sort.Strings(inputs)
	return inputs, nil
}

// progressPrinter renders page-level progress as carriage-return
// updated lines.
func progressPrinter(w io.Writer) office2png.ProgressFunc {
	return func(p office2png.ConversionProgress) {
		name := filepath.Base(p.CurrentFile)
		switch p.Stage {
		case office2png.StageConvertingToPDF:
			fmt.Fprintf(w, "[%d/%d] %s: converting to PDF...\n", p.FileIndex+1, p.TotalFiles, name)
		case office2png.StageRenderingPages:
			if p.TotalPages > 0 {
				fmt.Fprintf(w, "\r[%d/%d] %s: page %d/%d",
					p.FileIndex+1, p.TotalFiles, name, p.PagesCompleted, p.TotalPages)
			}
		case office2png.StageCompleted:
			fmt.Fprintf(w, "\r[%d/%d] %s: done (%d pages)\n",
				p.FileIndex+1, p.TotalFiles, name, p.TotalPages)
		case office2png.StageFailed:
			fmt.Fprintf(w, "\r[%d/%d] %s: failed\n", p.FileIndex+1, p.TotalFiles, name)
		}
	}
}

// printResults writes the batch summary, honoring quiet/verbose.
func printResults(batch *office2png.BatchResult, flags *convertFlags, deps *Dependencies) {
	if !flags.common.quiet {
		for _, ok := range batch.Successful {
			if flags.common.verbose {
				fmt.Fprintf(deps.Stdout, "OK   %s (%d pages, %s)\n",
					ok.InputPath, ok.PageCount, ok.Duration.Round(time.Millisecond))
			} else {
				fmt.Fprintf(deps.Stdout, "OK   %s (%d pages)\n", ok.InputPath, ok.PageCount)
			}
		}
	}
	for _, failed := range batch.Failed {
		fmt.Fprintf(deps.Stderr, "FAIL %s: %s\n", failed.InputPath, failed.Error)
	}
	if !flags.common.quiet {
		fmt.Fprintf(deps.Stdout, "%d converted, %d failed, %d pages in %s\n",
			len(batch.Successful), len(batch.Failed), batch.TotalPages,
			batch.TotalDuration.Round(time.Millisecond))
	}
}

// cliLogger builds the library logger from verbosity flags, writing to
// stderr so stdout stays clean for results.
func cliLogger(flags *convertFlags, deps *Dependencies) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(deps.Stderr)
	switch {
	case flags.common.quiet:
		logger.SetLevel(logrus.ErrorLevel)
	case flags.common.verbose:
		logger.SetLevel(logrus.DebugLevel)
	default:
		logger.SetLevel(logrus.WarnLevel)
	}
	return logger
}
