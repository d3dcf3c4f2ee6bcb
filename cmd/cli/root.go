// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X ctxbundle/cmd/cli.Version=...".
var Version = "dev"

var (
	statusColor     = color.New(color.FgCyan)
	errorColor      = color.New(color.FgRed)
	successColor    = color.New(color.FgGreen)
	identifierColor = color.New(color.FgBlue)
)

var (
	// ErrNoOutput is returned when -o/--output is missing.
	ErrNoOutput = errors.New("missing required flag -o/--output <path>")

	// ErrNoInputs is returned when no input files are given.
	ErrNoInputs = errors.New("no input files specified")
)

type options struct {
	output     string
	project    string
	configPath string
	verbose    bool
	compress   bool
	jobs       int
}

// NewRootCmd builds the ctxbundle command. Each call returns an independent
// command so runs never share flag state.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "ctxbundle <input-file>... -o <output>",
		Short: "Bundle source files and their local imports into one context file",
		Long: `Concatenates the given entry files and every local file they import
(import, export ... from, import() and require()) into a single text file.

Each file is minified (comments stripped, whitespace collapsed) and written once,
wrapped in "// Begin <path>" and "// End <path>" markers relative to the project
root. Path aliases are read from the project's tsconfig.json (compilerOptions.baseUrl
and compilerOptions.paths). Files inside node_modules are never included.`,
		Example: `  ctxbundle src/index.ts -o context.txt
  ctxbundle src/main.tsx src/worker.ts -o out/context.txt -p ./web --verbose
  ctxbundle src/index.ts -o context.txt.gz --compress`,
		Version:       Version,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBundle(cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "", "destination for the bundled file (required)")
	flags.StringVarP(&opts.project, "project", "p", "", "project root used for headers and tsconfig.json (default: current directory)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log each file as it is processed")
	flags.BoolVar(&opts.compress, "compress", false, "gzip the bundle after all files are written")
	flags.IntVarP(&opts.jobs, "jobs", "j", 0, "number of files read concurrently; 1 gives a deterministic order (default from settings, 8)")
	flags.StringVar(&opts.configPath, "config", "", "settings file (default: $XDG_CONFIG_HOME/ctxbundle/config.yaml)")

	cmd.SetVersionTemplate("ctxbundle {{.Version}}\n")
	return cmd
}

// RunCLI executes the root command and exits non-zero on any error.
func RunCLI() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
