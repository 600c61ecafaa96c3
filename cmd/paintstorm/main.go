// Package main is the entry point for paintstorm, a batch image editor
// driven by edit scripts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/paintstorm/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, code, ok := parseFlags(args)
	if !ok {
		return code
	}

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return 130
		}
		var list *app.ErrorList
		if errors.As(err, &list) {
			for _, e := range list.Errors() {
				fmt.Fprintf(os.Stderr, "Error: %v\n", e)
			}
			return 1
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

// parseFlags returns the options, or ok=false with the exit code when the
// program should stop.
func parseFlags(args []string) (opts app.Options, code int, ok bool) {
	fs := flag.NewFlagSet("paintstorm", flag.ContinueOnError)

	var showVersion bool
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&opts.ScriptPath, "script", "", "Edit script to apply to each file")
	fs.StringVar(&opts.ScriptPath, "s", "", "Edit script (shorthand)")
	fs.StringVar(&opts.Output, "o", "", "Output file, or directory for several inputs")
	fs.StringVar(&opts.Format, "format", "", "Output format (png, jpeg, gif, bmp, tiff)")
	fs.BoolVar(&opts.Watch, "watch", false, "Re-run the script when an input file changes")
	fs.StringVar(&opts.PaletteExport, "palette-export", "", "Write the palette to a .gpl or .yaml file")
	fs.BoolVar(&opts.Remember, "remember", false, "Record recent files in the settings file")
	fs.BoolVar(&showVersion, "version", false, "Show version information")
	fs.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "paintstorm - scriptable image editor\n\n")
		fmt.Fprintf(out, "Usage: paintstorm [options] [files...]\n\n")
		fmt.Fprintf(out, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(out, "\nExamples:\n")
		fmt.Fprintf(out, "  paintstorm a.png b.jpg                  Describe images\n")
		fmt.Fprintf(out, "  paintstorm -s thumb.yaml -o out *.png   Apply a script, write to out/\n")
		fmt.Fprintf(out, "  paintstorm -s fix.yaml -watch a.png     Re-apply on every change\n")
		fmt.Fprintf(out, "  paintstorm -palette-export colors.gpl   Export the palette for GIMP\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, 0, false
		}
		return opts, 2, false
	}

	if showVersion {
		fmt.Printf("paintstorm %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		return opts, 0, false
	}

	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		return opts, 2, false
	}

	if opts.Watch && opts.ScriptPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -watch requires -script")
		return opts, 2, false
	}

	opts.Files = fs.Args()
	return opts, 0, true
}
