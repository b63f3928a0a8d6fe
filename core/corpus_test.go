package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codiehq/codesight/internal/parquet"
	"github.com/codiehq/codesight/schema"
)

func TestLoadCorpusJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")
	body := `[
	{"path": "vuln/eval.py", "content": "eval(input())\n", "vulnerable": true},
	{"path": "clean/util.rb", "content": "def helper; end\n", "language": "ruby", "quality": 88.5}
]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	examples, err := LoadCorpus(path)
	require.NoError(t, err)
	require.Len(t, examples, 2)

	assert.Equal(t, "vuln/eval.py", examples[0].Path)
	assert.Equal(t, schema.LangPython, examples[0].Language, "missing language falls back to extension detection")
	require.NotNil(t, examples[0].Vulnerable)
	assert.True(t, *examples[0].Vulnerable)
	assert.Nil(t, examples[0].Quality)

	assert.Equal(t, schema.LangRuby, examples[1].Language)
	require.NotNil(t, examples[1].Quality)
	assert.InDelta(t, 88.5, *examples[1].Quality, 1e-9)
	assert.Nil(t, examples[1].Vulnerable)
}

func TestLoadCorpusParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.parquet")
	vulnerable := true
	rows := []parquet.CorpusExample{
		{Path: "vuln/exec.py", Content: "exec(cmd)\n", Vulnerable: &vulnerable},
		{Path: "clean/main.go", Content: "package main\n"},
	}
	require.NoError(t, parquet.WriteCorpusParquet(rows, path))

	examples, err := LoadCorpus(path)
	require.NoError(t, err)
	require.Len(t, examples, 2)

	assert.Equal(t, schema.LangPython, examples[0].Language)
	require.NotNil(t, examples[0].Vulnerable)
	assert.True(t, *examples[0].Vulnerable)

	assert.Equal(t, schema.LangGo, examples[1].Language)
	assert.Equal(t, "package main\n", examples[1].Content)
	assert.Nil(t, examples[1].Vulnerable)
}

func TestLoadCorpusInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadCorpus(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse corpus JSON")
}

func TestLoadCorpusMissing(t *testing.T) {
	_, err := LoadCorpus(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
