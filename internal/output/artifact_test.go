// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Mufeed Ali

package output

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gunzip(t *testing.T, data []byte) string {
	t.Helper()
	zr, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	return string(plain)
}

func TestRecordFormat(t *testing.T) {
	assert.Equal(t, "// Begin src/a.ts\nconst a = 1;\n// End src/a.ts\n", Record("src/a.ts", "const a = 1;"))
}

func TestArtifactTruncatesAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "bundle.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	a, err := Create(path, false)
	require.NoError(t, err)
	require.NoError(t, a.Append("a.ts", "A"))
	require.NoError(t, a.Append("b.ts", "B"))
	require.NoError(t, a.Close())
	assert.Equal(t, 2, a.Records())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Record("a.ts", "A")+Record("b.ts", "B"), string(data))

	assert.Error(t, a.Append("c.ts", "C"))
	assert.NoError(t, a.Close())
}

func TestArtifactCreatesMissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "bundle.txt")
	a, err := Create(path, false)
	require.NoError(t, err)
	require.NoError(t, a.Close())
	assert.FileExists(t, path)
}

func TestArtifactCompressRoundTrip(t *testing.T) {
	dir := t.TempDir()
	plainPath := filepath.Join(dir, "plain.txt")
	gzPath := filepath.Join(dir, "bundle.gz")

	plain, err := Create(plainPath, false)
	require.NoError(t, err)
	compressed, err := Create(gzPath, true)
	require.NoError(t, err)

	for i := range 5 {
		name := fmt.Sprintf("f%d.ts", i)
		body := strings.Repeat("x", i*10)
		require.NoError(t, plain.Append(name, body))
		require.NoError(t, compressed.Append(name, body))
	}
	require.NoError(t, plain.Close())
	require.NoError(t, compressed.Close())

	want, err := os.ReadFile(plainPath)
	require.NoError(t, err)
	got, err := os.ReadFile(gzPath)
	require.NoError(t, err)
	assert.Equal(t, string(want), gunzip(t, got))
}

func TestArtifactConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.txt")
	a, err := Create(path, false)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, a.Append(fmt.Sprintf("f%d.ts", i), "body"))
		}()
	}
	wg.Wait()
	require.NoError(t, a.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 50, strings.Count(string(data), "// Begin "))
	assert.Equal(t, 50, strings.Count(string(data), "// End "))
}

func TestCreateFailsForDirectoryPath(t *testing.T) {
	_, err := Create(t.TempDir(), false)
	assert.ErrorContains(t, err, "failed to create output file")
}
