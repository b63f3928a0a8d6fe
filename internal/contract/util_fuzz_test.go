package contract

import (
	"strings"
	"testing"
)

// FuzzShouldIgnore fuzzes the ShouldIgnore function with random paths and exclude patterns.
func FuzzShouldIgnore(f *testing.F) {
	seeds := []struct {
		path     string
		excludes string // comma-separated
	}{
		{"app.py", "*.log"},
		{"node_modules/pkg/index.js", "node_modules/"},
		{"static/site.min.js", "*.min.js"},
		{"uv.lock", "uv.lock"},
		{"", ""},
		{"very/long/path/to/module.py", "**/tmp/**"},
	}
	for _, seed := range seeds {
		f.Add(seed.path, seed.excludes)
	}

	f.Fuzz(func(_ *testing.T, path string, excludesStr string) {
		excludes := []string{}
		if excludesStr != "" {
			// Simple split, may not handle complex cases but good for fuzzing
			for ex := range strings.SplitSeq(excludesStr, ",") {
				if trimmed := strings.TrimSpace(ex); trimmed != "" {
					excludes = append(excludes, trimmed)
				}
			}
		}
		_ = ShouldIgnore(path, excludes)
	})
}

// FuzzTruncatePath fuzzes the path truncation with arbitrary paths and widths.
func FuzzTruncatePath(f *testing.F) {
	f.Add("src/app.py", 40)
	f.Add("a/very/long/nested/path/to/some/module.py", 12)
	f.Add("", 0)
	f.Add("αβγδε", 4)

	f.Fuzz(func(t *testing.T, path string, maxWidth int) {
		result := TruncatePath(path, maxWidth)
		if result == path {
			return
		}
		// Any truncated result is exactly maxWidth runes with an ellipsis prefix.
		if !strings.HasPrefix(result, "...") {
			t.Errorf("truncated path %q lacks ellipsis prefix", result)
		}
		if n := len([]rune(result)); n != maxWidth {
			t.Errorf("truncated path %q has %d runes, want %d", result, n, maxWidth)
		}
	})
}
