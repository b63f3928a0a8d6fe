package feature

import (
	"context"
	"testing"

	"github.com/codiehq/codesight/schema"
)

// FuzzExtract fuzzes the extractor with arbitrary content and languages.
// Extraction must never panic and must always return a full-width vector.
func FuzzExtract(f *testing.F) {
	seeds := []struct {
		content string
		lang    string
	}{
		{"def main():\n    pass\n", "python"},
		{"", "python"},
		{"eval(eval(eval(", "python"},
		{"func main() {}\n", "go"},
		{"\x00\xff\xfe binary-ish", "generic"},
		{"日本語のコメント # テスト\n", "python"},
	}
	for _, seed := range seeds {
		f.Add(seed.content, seed.lang)
	}

	f.Fuzz(func(t *testing.T, content string, lang string) {
		e := NewExtractor(1<<16, nil)
		vec, meta := e.Extract(context.Background(), schema.CodeSample{
			Path:     "fuzz.src",
			Content:  content,
			Language: schema.Language(lang),
		})
		if len(vec) != VectorDim {
			t.Fatalf("vector has %d slots, want %d", len(vec), VectorDim)
		}
		if meta.SchemaVersion != SchemaVersion {
			t.Fatalf("meta schema version %d, want %d", meta.SchemaVersion, SchemaVersion)
		}
		if meta.RawBytes != len(content) {
			t.Fatalf("raw bytes %d, want %d", meta.RawBytes, len(content))
		}
	})
}

// FuzzTruncateAtRune checks the cut never splits a rune or grows the string.
func FuzzTruncateAtRune(f *testing.F) {
	f.Add("hello", 3)
	f.Add("日本語", 4)
	f.Add("", 0)
	f.Add("mixed 日本 text", 9)

	f.Fuzz(func(t *testing.T, s string, maxBytes int) {
		if maxBytes < 0 {
			maxBytes = 0
		}
		got := truncateAtRune(s, maxBytes)
		if len(got) > len(s) {
			t.Fatalf("truncation grew string: %d > %d", len(got), len(s))
		}
		if len(s) <= maxBytes && got != s {
			t.Fatalf("content under cap was modified")
		}
	})
}
