package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codiehq/codesight/internal/contract"
	"github.com/codiehq/codesight/schema"
)

// writeTree lays out a small project for collection tests.
func writeTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"app.py":           "import os\n",
		"sub/util.go":      "package sub\n",
		"vendor/dep.py":    "import vendored\n",
		".git/hook.py":     "import hook\n",
		"README.txt":       "docs only\n",
		"assets/logo.png":  "\x89PNG",
		"assets/helper.js": "export {}\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestCollectPaths(t *testing.T) {
	dir := writeTree(t)
	cfg := newTestConfig()
	cfg.Paths = []string{dir}
	cfg.Excludes = []string{"vendor/"}

	files, err := CollectPaths(cfg)
	require.NoError(t, err)

	want := []string{
		filepath.ToSlash(filepath.Join(dir, "app.py")),
		filepath.ToSlash(filepath.Join(dir, "assets/helper.js")),
		filepath.ToSlash(filepath.Join(dir, "sub/util.go")),
	}
	assert.Equal(t, want, files)
}

// Explicit file arguments bypass the exclude and extension filters.
func TestCollectPathsExplicitFile(t *testing.T) {
	dir := writeTree(t)
	readme := filepath.Join(dir, "README.txt")
	cfg := newTestConfig()
	cfg.Paths = []string{readme, readme}

	files, err := CollectPaths(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.ToSlash(readme)}, files)
}

func TestCollectPathsMissing(t *testing.T) {
	cfg := newTestConfig()
	cfg.Paths = []string{filepath.Join(t.TempDir(), "nope")}

	_, err := CollectPaths(cfg)
	assert.Error(t, err)
}

func TestReadSamples(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.py")
	require.NoError(t, os.WriteFile(good, []byte("import os\n"), 0o644))
	missing := filepath.Join(dir, "missing.py")

	samples, failed := ReadSamples([]string{good, missing}, "")

	require.Len(t, samples, 1)
	assert.Equal(t, good, samples[0].Path)
	assert.Equal(t, "import os\n", samples[0].Content)
	assert.Equal(t, schema.LangPython, samples[0].Language)

	require.Len(t, failed, 1)
	require.NotNil(t, failed[0].Err)
	assert.Equal(t, missing, failed[0].Err.Path)
	assert.Equal(t, schema.ErrKindExtraction, failed[0].Err.Kind)
}

func TestReadSamplesForcedLanguage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.txt")
	require.NoError(t, os.WriteFile(path, []byte("def f():\n    pass\n"), 0o644))

	samples, failed := ReadSamples([]string{path}, schema.LangPython)

	assert.Empty(t, failed)
	require.Len(t, samples, 1)
	assert.Equal(t, schema.LangPython, samples[0].Language)
}

func TestShouldIgnorePatterns(t *testing.T) {
	cases := []struct {
		path     string
		excludes []string
		want     bool
	}{
		{"src/app.py", nil, false},
		{"vendor/dep.py", []string{"vendor/"}, true},
		{"deep/vendor/dep.py", []string{"vendor/"}, true},
		{"src/app_test.py", []string{"*_test.py"}, true},
		{"src/app.py", []string{"*.go"}, false},
		{"build/out.py", []string{"build"}, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, contract.ShouldIgnore(tc.path, tc.excludes), "path %s excludes %v", tc.path, tc.excludes)
	}
}
