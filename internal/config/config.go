// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package config handles application configuration: the user-level settings
// file that tunes how bundles are built, and the per-project path alias
// configuration read from the project's tsconfig.json.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultVendorDir is the directory name whose contents are never bundled.
	DefaultVendorDir = "node_modules"

	// DefaultProjectConfig is the file name of the project alias configuration.
	DefaultProjectConfig = "tsconfig.json"

	// DefaultJobs bounds the number of files read concurrently.
	DefaultJobs = 8
)

// DefaultExtensions is the extension inference order, most specific first.
var DefaultExtensions = []string{".ts", ".tsx", ".js", ".jsx"}

// Config represents the top-level application settings.
type Config struct {
	// VendorDir is the path segment marking third-party packages
	VendorDir string `yaml:"vendor_dir,omitempty"`

	// Extensions is the ordered list of extensions tried during inference
	Extensions []string `yaml:"extensions,omitempty"`

	// Jobs is the number of files read concurrently (1 gives deterministic output)
	Jobs int `yaml:"jobs,omitempty"`

	// Compress gzips the artifact unless overridden on the command line
	Compress bool `yaml:"compress,omitempty"`

	// ProjectConfig is the alias configuration file name inside the project root
	ProjectConfig string `yaml:"project_config,omitempty"`
}

// Default returns the settings used when no settings file exists.
func Default() Config {
	return Config{
		VendorDir:     DefaultVendorDir,
		Extensions:    append([]string(nil), DefaultExtensions...),
		Jobs:          DefaultJobs,
		ProjectConfig: DefaultProjectConfig,
	}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "ctxbundle", "config.yaml"), nil
}

// LoadConfig reads the settings file at configPath, or at DefaultConfigPath
// when configPath is empty. A missing file yields Default().
func LoadConfig(configPath string) (Config, error) {
	if configPath == "" {
		var err error
		configPath, err = DefaultConfigPath()
		if err != nil {
			return Default(), nil
		}
	}

	configPath, err := ResolvePath(configPath)
	if err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.VendorDir == "" {
		c.VendorDir = DefaultVendorDir
	}
	if len(c.Extensions) == 0 {
		c.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if c.Jobs == 0 {
		c.Jobs = DefaultJobs
	}
	if c.ProjectConfig == "" {
		c.ProjectConfig = DefaultProjectConfig
	}
}

// Validate reports settings that would make a run meaningless.
func (c Config) Validate() error {
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with '.'", ext)
		}
	}
	if strings.ContainsAny(c.VendorDir, `/\`) {
		return fmt.Errorf("vendor_dir %q must be a single path segment", c.VendorDir)
	}
	return nil
}

// ResolvePath expands a leading "~/" to the user's home directory.
func ResolvePath(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path, fmt.Errorf("could not get user home directory to resolve path '%s': %w", path, err)
	}

	return filepath.Join(homeDir, path[2:]), nil
}
