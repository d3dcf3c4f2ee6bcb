// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ctxbundle/internal/bundler"
	"ctxbundle/internal/config"
	"ctxbundle/internal/logger"
	"ctxbundle/internal/output"
	"ctxbundle/internal/resolver"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

// runBundle validates the invocation, then builds the bundle for args.
func runBundle(cmd *cobra.Command, opts *options, args []string) error {
	if opts.output == "" {
		return ErrNoOutput
	}
	if len(args) == 0 {
		return ErrNoInputs
	}

	logger.InitLoggerTo(cmd.ErrOrStderr(), opts.verbose)

	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("jobs") {
		cfg.Jobs = opts.jobs
	}
	if cmd.Flags().Changed("compress") {
		cfg.Compress = opts.compress
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	root, err := projectRoot(opts.project)
	if err != nil {
		return err
	}
	outPath, err := absPath(opts.output)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}

	artifact, err := output.Create(outPath, cfg.Compress)
	if err != nil {
		return err
	}

	project := config.NewProjectCache(root, cfg.ProjectConfig, func(err error) {
		if opts.verbose {
			logger.Warnf("Project configuration unavailable, continuing without path aliases: %v", err)
		}
	})
	r := resolver.New(project, resolver.Options{Extensions: cfg.Extensions, VendorDir: cfg.VendorDir})
	engine := bundler.New(r, artifact, bundler.Options{Root: root, Jobs: cfg.Jobs})

	if opts.verbose {
		statusColor.Fprintf(cmd.ErrOrStderr(), "Bundling %d input file(s) from %s\n", len(args), identifierColor.Sprint(root))
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	_ = s.Color("cyan")
	s.Suffix = " Bundling files..."
	if !opts.verbose {
		s.Start()
	}

	stats, runErr := engine.Run(cmd.Context(), args)
	closeErr := artifact.Close()
	s.Stop()

	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return closeErr
	}
	if err := cmd.Context().Err(); err != nil {
		return fmt.Errorf("bundling interrupted: %w", err)
	}

	successColor.Fprintf(cmd.OutOrStdout(), "Bundled %d file(s) into %s\n", artifact.Records(), identifierColor.Sprint(outPath))
	if stats.Skipped > 0 {
		errorColor.Fprintf(cmd.ErrOrStderr(), "Skipped %d unreadable file(s)\n", stats.Skipped)
	}
	logger.Info("Bundle complete",
		"bundled", stats.Bundled,
		"skipped", stats.Skipped,
		"vendored", stats.Vendored,
		"unresolved", stats.Unresolved,
		"compressed", cfg.Compress)
	return nil
}

// projectRoot returns the absolute project directory, defaulting to the
// working directory.
func projectRoot(project string) (string, error) {
	if project == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not determine working directory: %w", err)
		}
		return wd, nil
	}

	root, err := absPath(project)
	if err != nil {
		return "", fmt.Errorf("invalid project path: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("project directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("project path %s is not a directory", root)
	}
	return root, nil
}

func absPath(path string) (string, error) {
	resolved, err := config.ResolvePath(path)
	if err != nil {
		return "", err
	}
	return filepath.Abs(resolved)
}
