//go:build basic

// Package integration contains integration tests for codesight.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags basic ./integration
// Database-backed tests need Docker: go test -tags database ./integration
package integration

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// insightRow mirrors the JSON shape of one analyze result row.
type insightRow struct {
	Index   int    `json:"index"`
	Label   string `json:"label"`
	Insight *struct {
		Path     string            `json:"path"`
		Language string            `json:"language"`
		Slots    map[string]string `json:"slots"`
		Meta     struct {
			SchemaVersion int  `json:"schema_version"`
			RawBytes      int  `json:"raw_bytes"`
			Truncated     bool `json:"truncated"`
		} `json:"meta"`
	} `json:"insight"`
	Error *struct {
		Path string `json:"path"`
		Kind string `json:"kind"`
	} `json:"error"`
}

// runCodesight runs the shared codesight binary in workDir and returns its combined output.
func runCodesight(t *testing.T, workDir string, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(getCodesightBinary(), args...)
	cmd.Dir = workDir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), out.String())
	}
	return out.String(), err
}

// writeFixtureTree builds a small source tree with a known set of Python
// files plus noise that the collector must skip: non-source files and a
// dot-directory.
func writeFixtureTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"app.py":          "import os\nimport pickle\n\ndef handler(payload):\n    data = pickle.loads(payload)\n    return eval(data)\n",
		"util.py":         "def add(a, b):\n    return a + b\n",
		"pkg/helpers.py":  "def greet(name):\n    return 'hello ' + name\n",
		"README.md":       "# fixture\n",
		"notes.txt":       "not source code\n",
		".hidden/skip.py": "def hidden():\n    pass\n",
	}
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// countPythonSources walks the tree the same way a reviewer would by hand:
// every .py file outside dot-directories counts.
func countPythonSources(t *testing.T, root string) int {
	t.Helper()
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".py") {
			count++
		}
		return nil
	})
	require.NoError(t, err)
	return count
}

// TestVersionCommand verifies the binary reports its identity.
func TestVersionCommand(t *testing.T) {
	out, err := runCodesight(t, ".", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "codesight CLI")
}

// TestAnalyzeCountVerification runs analyze over a fixture tree and verifies
// the reported files against an independent walk of the same tree.
func TestAnalyzeCountVerification(t *testing.T) {
	fixture := writeFixtureTree(t)
	outFile := filepath.Join(t.TempDir(), "out.json")

	_, err := runCodesight(t, fixture, "analyze", ".",
		"--store-backend", "none",
		"--output", "json",
		"--output-file", outFile)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var rows []insightRow
	require.NoError(t, json.Unmarshal(data, &rows))

	// The analyzed file count must match what a manual walk finds.
	expected := countPythonSources(t, fixture)
	require.Len(t, rows, expected)

	for i, row := range rows {
		assert.Equal(t, i+1, row.Index)
		require.NotNil(t, row.Insight, "row %d should carry an insight", i)
		assert.Nil(t, row.Error)

		// Each reported path must point at a real file on disk with the
		// size the insight metadata claims.
		info, err := os.Stat(row.Insight.Path)
		require.NoError(t, err, "reported path %s should exist", row.Insight.Path)
		assert.True(t, strings.HasSuffix(row.Insight.Path, ".py"))
		assert.Equal(t, "python", row.Insight.Language)
		assert.Equal(t, int(info.Size()), row.Insight.Meta.RawBytes)
		assert.False(t, row.Insight.Meta.Truncated)

		// Without a model store there is no generation, so every model
		// slot is unavailable and no risk label can be assigned.
		assert.Equal(t, "-", row.Label)
		for model, state := range row.Insight.Slots {
			assert.Equal(t, "unavailable", state, "slot for %s", model)
		}
	}
}

// TestFeaturesVectorVerification extracts features from a file with known
// content and verifies the volume metrics against directly computed values.
func TestFeaturesVectorVerification(t *testing.T) {
	content := "import os\n\ndef main():\n    os.system(\"ls\")\n"
	dir := t.TempDir()
	target := filepath.Join(dir, "sample.py")
	require.NoError(t, os.WriteFile(target, []byte(content), 0o644))

	outFile := filepath.Join(dir, "features.json")
	_, err := runCodesight(t, dir, "features", target,
		"--store-backend", "none",
		"--output", "json",
		"--output-file", outFile)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var ext struct {
		Path     string    `json:"path"`
		Language string    `json:"language"`
		Vector   []float64 `json:"vector"`
		Meta     struct {
			SchemaVersion int  `json:"schema_version"`
			RawBytes      int  `json:"raw_bytes"`
			Truncated     bool `json:"truncated"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(data, &ext))

	assert.Equal(t, "python", ext.Language)
	assert.Len(t, ext.Vector, 20)
	assert.False(t, ext.Meta.Truncated)

	// Ground truth computed independently of the extractor: the content is
	// newline-terminated so lines equal newline count, raw bytes equal the
	// written length and the character count for pure ASCII.
	assert.Equal(t, float64(strings.Count(content, "\n")), ext.Vector[0], "loc")
	assert.Equal(t, float64(len(content)), ext.Vector[1], "chars")
	assert.Equal(t, len(content), ext.Meta.RawBytes)
}

// TestFeatureDefinitions lists the feature schema without a target file and
// verifies the layout metadata.
func TestFeatureDefinitions(t *testing.T) {
	dir := t.TempDir()
	outFile := filepath.Join(dir, "schema.json")

	_, err := runCodesight(t, dir, "features",
		"--store-backend", "none",
		"--output", "json",
		"--output-file", outFile)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var desc struct {
		Version int `json:"version"`
		Fields  []struct {
			Index int    `json:"index"`
			Name  string `json:"name"`
			Group string `json:"group"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(data, &desc))

	assert.Equal(t, 1, desc.Version)
	require.Len(t, desc.Fields, 20)
	assert.Equal(t, "loc", desc.Fields[0].Name)
	for i, f := range desc.Fields {
		assert.Equal(t, i, f.Index)
		assert.NotEmpty(t, f.Group)
	}
}

// TestTrainModelsLifecycle trains a generation into a SQLite store under a
// scratch home directory, checks the store on disk, analyzes with the
// trained models and then clears the store again.
func TestTrainModelsLifecycle(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dbFile := filepath.Join(home, ".codesight_models.db")

	corpusPath := writeTrainingCorpus(t, t.TempDir())

	// Train: all four models should come out active.
	out, err := runCodesight(t, home, "train", "--corpus", corpusPath)
	require.NoError(t, err)
	assert.Contains(t, out, "vulnerability")
	assert.Contains(t, out, "active")

	// The store file must exist where the default SQLite backend puts it.
	_, err = os.Stat(dbFile)
	require.NoError(t, err, "training should create %s", dbFile)

	// Status reflects the promoted generation.
	out, err = runCodesight(t, home, "models", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Generation:")
	assert.Contains(t, out, "Active Models: 4")
	assert.Contains(t, out, "Store Backend: sqlite")
	assert.Contains(t, out, "Connected: true")

	// Analysis now runs with every model slot populated.
	fixture := writeFixtureTree(t)
	outFile := filepath.Join(t.TempDir(), "trained.json")
	_, err = runCodesight(t, fixture, "analyze", ".",
		"--output", "json",
		"--output-file", outFile)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	var rows []insightRow
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, countPythonSources(t, fixture))
	for _, row := range rows {
		require.NotNil(t, row.Insight)
		assert.NotEqual(t, "-", row.Label)
		assert.Equal(t, "available", row.Insight.Slots["vulnerability"])
	}

	// Clearing removes the database file.
	out, err = runCodesight(t, home, "models", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Model store cleared successfully")
	_, err = os.Stat(dbFile)
	assert.True(t, os.IsNotExist(err), "store file should be gone after clear")
}
