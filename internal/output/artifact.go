// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package output writes the bundle artifact: one Begin/End delimited record per
// file, optionally replaced by its gzip encoding once the run completes.
package output

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// Artifact is an append-only bundle file. Appends are safe for concurrent use.
type Artifact struct {
	path     string
	compress bool

	mu      sync.Mutex
	file    *os.File
	text    bytes.Buffer // retained only when compressing
	records int
	closed  bool
}

// Create truncates or creates the file at path. When compress is set, the
// plain text is kept in memory so Close can replace the file with its gzip
// encoding.
func Create(path string, compress bool) (*Artifact, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}
	return &Artifact{path: path, compress: compress, file: file}, nil
}

// Record formats one bundle entry for the file shown as name.
func Record(name, content string) string {
	return "// Begin " + name + "\n" + content + "\n// End " + name + "\n"
}

// Append writes one record.
func (a *Artifact) Append(name, content string) error {
	record := Record(name, content)

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return fmt.Errorf("append to closed artifact %s", a.path)
	}
	if _, err := a.file.WriteString(record); err != nil {
		return fmt.Errorf("failed to write to output file %s: %w", a.path, err)
	}
	if a.compress {
		a.text.WriteString(record)
	}
	a.records++
	return nil
}

// Records returns the number of records appended so far.
func (a *Artifact) Records() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.records
}

// Close finishes the artifact, compressing it if requested.
func (a *Artifact) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	if err := a.file.Close(); err != nil {
		return fmt.Errorf("failed to close output file %s: %w", a.path, err)
	}
	if !a.compress {
		return nil
	}

	compressed, err := Compress(a.text.Bytes())
	if err != nil {
		return err
	}
	if err := os.WriteFile(a.path, compressed, 0644); err != nil {
		return fmt.Errorf("failed to write compressed output %s: %w", a.path, err)
	}
	return nil
}

// Compress returns the gzip encoding of data.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress output: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to compress output: %w", err)
	}
	return buf.Bytes(), nil
}
