// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package resolver turns import specifiers into files on disk. It understands
// relative paths, extension inference, directory index files and the path
// aliases of the project configuration.
package resolver

import (
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"

	"ctxbundle/internal/config"

	lru "github.com/hashicorp/golang-lru/v2"
)

// probeCacheSize bounds the number of memoised stat results per resolver.
const probeCacheSize = 4096

type fileKind uint8

const (
	kindMissing fileKind = iota
	kindFile
	kindDir
	kindOther
)

// Options configures a Resolver.
type Options struct {
	// Extensions is the inference order; config.DefaultExtensions when empty
	Extensions []string

	// VendorDir is the path segment that is never resolved into
	VendorDir string
}

// Resolver resolves specifiers for a single run. It is safe for concurrent use.
type Resolver struct {
	project    *config.ProjectCache
	extensions []string
	vendorDir  string

	probes *lru.Cache[string, fileKind]

	matchersOnce sync.Once
	matchers     []aliasMatcher
}

type aliasMatcher struct {
	re      *regexp.Regexp
	targets []string
}

// New creates a Resolver backed by the given lazily loaded project configuration.
func New(project *config.ProjectCache, opts Options) *Resolver {
	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = config.DefaultExtensions
	}
	vendorDir := opts.VendorDir
	if vendorDir == "" {
		vendorDir = config.DefaultVendorDir
	}

	// Only fails for a non-positive size.
	probes, _ := lru.New[string, fileKind](probeCacheSize)

	return &Resolver{
		project:    project,
		extensions: slices.Clone(extensions),
		vendorDir:  vendorDir,
		probes:     probes,
	}
}

// Resolve returns the absolute path of the file specifier refers to when
// imported from importer. The boolean is false when nothing matches.
func (r *Resolver) Resolve(specifier, importer string) (string, bool) {
	var resolved string
	var ok bool

	if strings.HasPrefix(specifier, ".") {
		candidate := filepath.Join(filepath.Dir(importer), specifier)
		resolved, ok = r.withExtension(candidate)
	} else {
		resolved, ok = r.resolveAlias(specifier)
	}

	if !ok || r.IsVendored(resolved) {
		return "", false
	}
	return resolved, true
}

// IsVendored reports whether path lies inside the vendored-dependencies directory.
func (r *Resolver) IsVendored(path string) bool {
	for _, segment := range strings.Split(filepath.ToSlash(path), "/") {
		if segment == r.vendorDir {
			return true
		}
	}
	return false
}

func (r *Resolver) resolveAlias(specifier string) (string, bool) {
	baseDir := r.project.Get().BaseDir

	for _, m := range r.aliasMatchers() {
		match := m.re.FindStringSubmatch(specifier)
		if match == nil {
			continue
		}
		captured := ""
		if len(match) > 1 {
			captured = match[1]
		}
		for _, target := range m.targets {
			candidate := filepath.Join(baseDir, strings.Replace(target, "*", captured, 1))
			if resolved, ok := r.withExtension(candidate); ok {
				return resolved, true
			}
		}
	}
	return "", false
}

func (r *Resolver) aliasMatchers() []aliasMatcher {
	r.matchersOnce.Do(func() {
		for _, alias := range r.project.Get().Aliases {
			r.matchers = append(r.matchers, aliasMatcher{
				re:      patternToRegexp(alias.Pattern),
				targets: alias.Targets,
			})
		}
	})
	return r.matchers
}

// patternToRegexp anchors pattern and turns its first '*' into a capture group.
func patternToRegexp(pattern string) *regexp.Regexp {
	prefix, suffix, found := strings.Cut(pattern, "*")
	if !found {
		return regexp.MustCompile("^" + regexp.QuoteMeta(pattern) + "$")
	}
	return regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + "(.*)" + regexp.QuoteMeta(suffix) + "$")
}

// withExtension applies extension inference to candidate.
func (r *Resolver) withExtension(candidate string) (string, bool) {
	candidate = filepath.Clean(candidate)

	switch r.probe(candidate) {
	case kindFile:
		return candidate, true
	case kindDir:
		for _, ext := range r.extensions {
			index := filepath.Join(candidate, "index"+ext)
			if r.probe(index) == kindFile {
				return index, true
			}
		}
	case kindMissing:
		for _, ext := range r.extensions {
			withExt := candidate + ext
			if r.probe(withExt) == kindFile {
				return withExt, true
			}
		}
	}
	return "", false
}

// probe stats path, treating every error as "missing".
func (r *Resolver) probe(path string) fileKind {
	if kind, ok := r.probes.Get(path); ok {
		return kind
	}

	kind := kindMissing
	if info, err := os.Stat(path); err == nil {
		switch {
		case info.Mode().IsRegular():
			kind = kindFile
		case info.IsDir():
			kind = kindDir
		default:
			kind = kindOther
		}
	}
	r.probes.Add(path, kind)
	return kind
}
