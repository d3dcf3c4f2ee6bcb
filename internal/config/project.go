// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// PathAlias maps a specifier pattern (at most one '*') to ordered target
// templates that may reuse the wildcard capture.
type PathAlias struct {
	Pattern string
	Targets []string
}

// Project is the alias configuration of the project being bundled.
type Project struct {
	// BaseDir is the absolute directory alias targets are relative to
	BaseDir string

	// Aliases preserves the declaration order of the configuration file
	Aliases []PathAlias
}

// EmptyProject is the degraded configuration: no aliases, base = root.
func EmptyProject(root string) Project {
	return Project{BaseDir: root}
}

type tsconfigFile struct {
	CompilerOptions struct {
		BaseURL string       `json:"baseUrl"`
		Paths   orderedPaths `json:"paths"`
	} `json:"compilerOptions"`
}

// orderedPaths decodes a JSON object while keeping key order, which
// encoding/json maps do not.
type orderedPaths []PathAlias

func (o *orderedPaths) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("paths must be an object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected paths key %v", tok)
		}
		var targets []string
		if err := dec.Decode(&targets); err != nil {
			return fmt.Errorf("paths entry %q: %w", key, err)
		}
		*o = append(*o, PathAlias{Pattern: key, Targets: targets})
	}

	_, err = dec.Token()
	return err
}

// LoadProject reads fileName from root. On any failure it returns
// EmptyProject(root) together with the error so callers can report it.
func LoadProject(root, fileName string) (Project, error) {
	configPath := filepath.Join(root, fileName)

	data, err := os.ReadFile(configPath)
	if err != nil {
		return EmptyProject(root), fmt.Errorf("failed to read project config %s: %w", configPath, err)
	}

	var raw tsconfigFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return EmptyProject(root), fmt.Errorf("failed to parse project config %s: %w", configPath, err)
	}

	baseDir := raw.CompilerOptions.BaseURL
	if !filepath.IsAbs(baseDir) {
		baseDir = filepath.Join(root, baseDir)
	}

	project := Project{
		BaseDir: filepath.Clean(baseDir),
		Aliases: []PathAlias(raw.CompilerOptions.Paths),
	}
	return project, nil
}

// ProjectCache loads the project configuration on first use and serves the
// same value for the rest of the run.
type ProjectCache struct {
	root     string
	fileName string
	onError  func(error)

	once    sync.Once
	project Project
}

// NewProjectCache prepares a lazy loader. onError, if non-nil, is called once
// when loading degrades to the empty configuration.
func NewProjectCache(root, fileName string, onError func(error)) *ProjectCache {
	return &ProjectCache{root: root, fileName: fileName, onError: onError}
}

// Get returns the cached project configuration, loading it if needed.
func (c *ProjectCache) Get() Project {
	c.once.Do(func() {
		project, err := LoadProject(c.root, c.fileName)
		if err != nil && c.onError != nil {
			c.onError(err)
		}
		c.project = project
	})
	return c.project
}
