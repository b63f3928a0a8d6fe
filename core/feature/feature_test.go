package feature

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codiehq/codesight/schema"
)

// TestExtractEmptyContent ensures empty content yields a well-formed zero vector.
func TestExtractEmptyContent(t *testing.T) {
	e := NewExtractor(0, nil)
	vec, meta := e.Extract(context.Background(), schema.CodeSample{Path: "empty.py", Language: schema.LangPython})

	require.Len(t, vec, VectorDim)
	for i, v := range vec {
		assert.Zero(t, v, "slot %d should be zero", i)
	}
	assert.Equal(t, SchemaVersion, meta.SchemaVersion)
	assert.False(t, meta.Truncated)
	assert.Zero(t, meta.RawBytes)
}

// TestExtractPythonSample checks the volume and declaration slots.
func TestExtractPythonSample(t *testing.T) {
	content := "import os\n" +
		"\n" +
		"# entry point\n" +
		"def main():\n" +
		"    print('hi')\n" +
		"\n" +
		"def helper():\n" +
		"    return 1\n"
	e := NewExtractor(0, nil)
	vec, meta := e.Extract(context.Background(), schema.CodeSample{Path: "app.py", Content: content, Language: schema.LangPython})

	assert.Equal(t, 8.0, vec[FeatLOC])
	assert.Equal(t, 2.0, vec[FeatFunctions])
	assert.Equal(t, 0.0, vec[FeatClasses])
	assert.InDelta(t, 1.0/8.0, vec[FeatCommentRatio], 1e-9)
	assert.InDelta(t, 2.0/8.0, vec[FeatEmptyRatio], 1e-9)
	assert.InDelta(t, 4.0, vec[FeatAvgFnLen], 1e-9)
	assert.False(t, meta.Truncated)
}

// TestExtractSecurityTokens confirms each dangerous token lands in its slot.
func TestExtractSecurityTokens(t *testing.T) {
	tests := []struct {
		name    string
		content string
		slot    int
		count   float64
	}{
		{
			name:    "eval call",
			content: "x = eval(user_input)\n",
			slot:    FeatTokEval,
			count:   1,
		},
		{
			name:    "os system call",
			content: "os.system(cmd)\nos.system(other)\n",
			slot:    FeatTokOSSystem,
			count:   2,
		},
		{
			name:    "pickle load",
			content: "data = pickle.loads(blob)\n",
			slot:    FeatTokPickle,
			count:   1,
		},
		{
			name:    "subprocess call",
			content: "subprocess.call(['ls'])\n",
			slot:    FeatTokSubprocess,
			count:   1,
		},
		{
			name:    "hardcoded secret",
			content: "password = \"hunter22\"\n",
			slot:    FeatTokSecret,
			count:   1,
		},
	}

	e := NewExtractor(0, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vec, _ := e.Extract(context.Background(), schema.CodeSample{Path: "s.py", Content: tt.content, Language: schema.LangPython})
			assert.Equal(t, tt.count, vec[tt.slot])
		})
	}
}

// TestExtractTruncation checks the byte cap and the truncation marker.
func TestExtractTruncation(t *testing.T) {
	e := NewExtractor(64, nil)
	content := strings.Repeat("def f():\n    pass\n", 50)
	vec, meta := e.Extract(context.Background(), schema.CodeSample{Path: "big.py", Content: content, Language: schema.LangPython})

	assert.True(t, meta.Truncated)
	assert.Equal(t, len(content), meta.RawBytes)
	// Features reflect only the truncated prefix.
	assert.LessOrEqual(t, vec[FeatChars], 64.0)
}

// TestExtractTruncationRuneBoundary ensures truncation never splits a rune.
func TestExtractTruncationRuneBoundary(t *testing.T) {
	// Four 3-byte runes; a cap of 7 must cut back to 6 bytes.
	content := "日本語字"
	got := truncateAtRune(content, 7)
	assert.Equal(t, "日本", got)
}

// TestExtractDeterminism verifies identical input yields identical vectors.
func TestExtractDeterminism(t *testing.T) {
	content := "import pickle\ndata = pickle.loads(x)\n# risky\n"
	sample := schema.CodeSample{Path: "d.py", Content: content, Language: schema.LangPython}
	e := NewExtractor(0, nil)

	first, _ := e.Extract(context.Background(), sample)
	for range 5 {
		again, _ := e.Extract(context.Background(), sample)
		assert.Equal(t, first, again)
	}
}

// TestExtractGenericFallback checks that unknown languages use the generic table.
func TestExtractGenericFallback(t *testing.T) {
	e := NewExtractor(0, nil)
	vec, _ := e.Extract(context.Background(), schema.CodeSample{
		Path:     "script.sh",
		Content:  "eval(something)\nsystem(cmd)\n",
		Language: schema.LangGeneric,
	})
	assert.Equal(t, 1.0, vec[FeatTokEval])
	assert.Equal(t, 1.0, vec[FeatTokOSSystem])
}

// TestExtractTypeScriptUsesJavaScriptTokens ensures TypeScript samples get
// the full JavaScript token treatment instead of the generic fallback.
func TestExtractTypeScriptUsesJavaScriptTokens(t *testing.T) {
	content := "class Session {\n" +
		"}\n" +
		"function login(user) {\n" +
		"    return eval(user.payload)\n" +
		"}\n" +
		"const parse = (raw) => JSON.parse(raw)\n"
	e := NewExtractor(0, nil)

	ts, _ := e.Extract(context.Background(), schema.CodeSample{Path: "auth.ts", Content: content, Language: schema.LangTypeScript})
	js, _ := e.Extract(context.Background(), schema.CodeSample{Path: "auth.js", Content: content, Language: schema.LangJavaScript})

	assert.Equal(t, js, ts)
	assert.Equal(t, 2.0, ts[FeatFunctions])
	assert.Equal(t, 1.0, ts[FeatClasses])
	assert.Equal(t, 1.0, ts[FeatTokEval])
}

// TestCountDecisionPoints covers the cyclomatic marker counter.
func TestCountDecisionPoints(t *testing.T) {
	tests := []struct {
		name    string
		content string
		lang    schema.Language
		want    int
	}{
		{
			name:    "straight line code",
			content: "x = 1\ny = 2\n",
			lang:    schema.LangPython,
			want:    0,
		},
		{
			name:    "branches and loops",
			content: "if x:\n    pass\nwhile y:\n    pass\nfor i in r:\n    pass\n",
			lang:    schema.LangPython,
			want:    3,
		},
		{
			name:    "go conditions",
			content: "if a && b {\n}\nfor i := range n {\n}\n",
			lang:    schema.LangGo,
			want:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountDecisionPoints(tt.content, tt.lang))
		})
	}
}

// TestDuplicateLinePct covers the duplicate line percentage.
func TestDuplicateLinePct(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    float64
	}{
		{
			name:    "no duplicates",
			content: "a\nb\nc\n",
			want:    0,
		},
		{
			name:    "half duplicates",
			content: "a\na\nb\nb\n",
			want:    50,
		},
		{
			name:    "empty lines dilute but never duplicate",
			content: "a\n\n\na\n",
			want:    25,
		},
		{
			name:    "single line",
			content: "a",
			want:    0,
		},
		{
			name:    "empty content",
			content: "",
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DuplicateLinePct(tt.content), 1e-9)
		})
	}
}

// TestSplitLines checks trailing newline handling.
func TestSplitLines(t *testing.T) {
	assert.Len(t, SplitLines("a\nb\n"), 2)
	assert.Len(t, SplitLines("a\nb"), 2)
	assert.Empty(t, SplitLines(""))
}

// fakeStructural returns fixed structural metrics for testing.
type fakeStructural struct {
	metrics schema.StructuralMetrics
	err     error
}

func (f *fakeStructural) StructuralMetrics(_ context.Context, _ schema.CodeSample) (schema.StructuralMetrics, error) {
	return f.metrics, f.err
}

// TestExtractStructuralProvider checks provider wiring and failure fallback.
func TestExtractStructuralProvider(t *testing.T) {
	sample := schema.CodeSample{Path: "x.py", Content: "def f():\n    pass\n", Language: schema.LangPython}

	t.Run("provider fills slots", func(t *testing.T) {
		e := NewExtractor(0, &fakeStructural{metrics: schema.StructuralMetrics{MaxNesting: 3, BranchCount: 7, CallCount: 11}})
		vec, _ := e.Extract(context.Background(), sample)
		assert.Equal(t, 3.0, vec[FeatMaxNesting])
		assert.Equal(t, 7.0, vec[FeatBranches])
		assert.Equal(t, 11.0, vec[FeatCalls])
	})

	t.Run("provider failure leaves zeros", func(t *testing.T) {
		e := NewExtractor(0, &fakeStructural{err: assert.AnError})
		vec, _ := e.Extract(context.Background(), sample)
		assert.Zero(t, vec[FeatMaxNesting])
		assert.Zero(t, vec[FeatBranches])
		assert.Zero(t, vec[FeatCalls])
	})

	t.Run("nil provider leaves zeros", func(t *testing.T) {
		e := NewExtractor(0, nil)
		vec, _ := e.Extract(context.Background(), sample)
		assert.Zero(t, vec[FeatMaxNesting])
	})
}

// BenchmarkExtract benchmarks feature extraction on a medium sample.
func BenchmarkExtract(b *testing.B) {
	content := strings.Repeat("import os\ndef handler(req):\n    if req.ok:\n        os.system(req.cmd)\n    return req\n", 200)
	sample := schema.CodeSample{Path: "bench.py", Content: content, Language: schema.LangPython}
	e := NewExtractor(0, nil)
	ctx := context.Background()

	for b.Loop() {
		e.Extract(ctx, sample)
	}
}
