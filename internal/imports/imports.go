// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

// Package imports extracts module specifiers from normalized JavaScript and
// TypeScript source using a fixed set of patterns.
package imports

import "regexp"

// patterns are applied in this order; the order is part of the output contract.
var patterns = []*regexp.Regexp{
	// import x from '...', import { a, b } from '...', import * as ns from '...'
	regexp.MustCompile(`import\s+[\w$*{}\s,]+?\s+from\s+['"]([^'"]+)['"]`),
	// import('...')
	regexp.MustCompile(`import\(\s*['"]([^'"]+)['"]\s*\)`),
	// require('...')
	regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`),
	// export { a } from '...', export * from '...'
	regexp.MustCompile(`export\s+[\w$*{}\s,]+?\s+from\s+['"]([^'"]+)['"]`),
}

// Extract returns every specifier found in content, grouped by pattern and in
// match order within each pattern. Duplicates are kept.
func Extract(content string) []string {
	var specifiers []string
	for _, re := range patterns {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			specifiers = append(specifiers, m[1])
		}
	}
	return specifiers
}
