// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package bundler walks entry files and everything they import, emitting each
// reachable local file exactly once. Branches of the import graph are walked
// concurrently; a shared visited set makes cycles and diamonds terminate.
package bundler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"ctxbundle/internal/config"
	"ctxbundle/internal/imports"
	"ctxbundle/internal/logger"
	"ctxbundle/internal/minify"

	"golang.org/x/sync/semaphore"
)

// Resolver maps an import specifier to a file on disk.
type Resolver interface {
	Resolve(specifier, importer string) (string, bool)
	IsVendored(path string) bool
}

// Sink receives one record per bundled file.
type Sink interface {
	Append(name, content string) error
}

// Options configures an Engine.
type Options struct {
	// Root is the project root; record names are relative to it
	Root string

	// Jobs bounds concurrent file reads, defaulting to config.DefaultJobs.
	// With 1 the walk is sequential and records follow depth-first
	// discovery order.
	Jobs int
}

// Stats summarises a run.
type Stats struct {
	Bundled    int64 // files appended to the sink
	Skipped    int64 // files that could not be read
	Vendored   int64 // entry files inside the vendored directory
	Unresolved int64 // specifiers that matched no file
}

// Engine performs a single bundling run. Create one per run.
type Engine struct {
	root     string
	jobs     int
	resolver Resolver
	sink     Sink
	sem      *semaphore.Weighted

	visited sync.Map
	wg      sync.WaitGroup

	bundled    atomic.Int64
	skipped    atomic.Int64
	vendored   atomic.Int64
	unresolved atomic.Int64

	failed  atomic.Bool
	errOnce sync.Once
	err     error
}

// New creates an Engine.
func New(r Resolver, sink Sink, opts Options) *Engine {
	jobs := opts.Jobs
	if jobs < 1 {
		jobs = config.DefaultJobs
	}
	return &Engine{
		root:     opts.Root,
		jobs:     jobs,
		resolver: r,
		sink:     sink,
		sem:      semaphore.NewWeighted(int64(jobs)),
	}
}

// Run bundles every input and everything reachable from it, then waits for
// all branches to finish. Unreadable files are logged and skipped; only a
// failure to write the sink is returned as an error.
func (e *Engine) Run(ctx context.Context, inputs []string) (Stats, error) {
	for _, input := range inputs {
		path, err := filepath.Abs(input)
		if err != nil {
			logger.Error("Failed to resolve input path", "path", input, "error", err)
			e.skipped.Add(1)
			continue
		}
		e.dispatch(ctx, path)
	}
	e.wg.Wait()

	stats := Stats{
		Bundled:    e.bundled.Load(),
		Skipped:    e.skipped.Load(),
		Vendored:   e.vendored.Load(),
		Unresolved: e.unresolved.Load(),
	}
	return stats, e.err
}

func (e *Engine) dispatch(ctx context.Context, path string) {
	if e.jobs == 1 {
		e.visit(ctx, path)
		return
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		e.visit(ctx, path)
	}()
}

// claim marks path as visited and reports whether the caller owns it.
func (e *Engine) claim(path string) bool {
	_, loaded := e.visited.LoadOrStore(path, struct{}{})
	return !loaded
}

func (e *Engine) visit(ctx context.Context, path string) {
	path = filepath.Clean(path)
	if !e.claim(path) {
		return
	}
	if e.failed.Load() || ctx.Err() != nil {
		return
	}
	if e.resolver.IsVendored(path) {
		e.vendored.Add(1)
		return
	}

	name := e.displayName(path)
	logger.Info("Processing file", "path", name)

	content, err := e.read(ctx, path)
	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			logger.Error("Failed to read file", "path", name, "error", err)
		}
		e.skipped.Add(1)
		return
	}

	normalized := minify.Normalize(string(content))
	if err := e.sink.Append(name, normalized); err != nil {
		e.fail(err)
		return
	}
	e.bundled.Add(1)

	for _, specifier := range imports.Extract(normalized) {
		resolved, ok := e.resolver.Resolve(specifier, path)
		if !ok {
			e.unresolved.Add(1)
			continue
		}
		e.dispatch(ctx, resolved)
	}
}

func (e *Engine) read(ctx context.Context, path string) ([]byte, error) {
	if err := e.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer e.sem.Release(1)
	return os.ReadFile(path)
}

func (e *Engine) fail(err error) {
	e.errOnce.Do(func() {
		e.err = fmt.Errorf("writing bundle: %w", err)
		e.failed.Store(true)
	})
}

// displayName is path relative to the project root, slash separated.
func (e *Engine) displayName(path string) string {
	if e.root == "" {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(e.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
