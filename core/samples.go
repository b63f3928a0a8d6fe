package core

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/codiehq/codesight/internal/contract"
	"github.com/codiehq/codesight/schema"
)

// CollectPaths expands the configured paths into the list of files to
// analyze, in lexical order. Directories are walked recursively with
// dot-directories skipped, exclude rules applied and only recognized
// source extensions kept. Explicitly listed files bypass all filtering.
func CollectPaths(cfg *contract.Config) ([]string, error) {
	seen := make(map[string]struct{})
	files := []string{}

	add := func(path string) {
		path = filepath.ToSlash(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, root := range cfg.Paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			rel := filepath.ToSlash(path)
			if contract.ShouldIgnore(rel, cfg.Excludes) {
				return nil
			}
			if schema.DetectLanguage(rel) == schema.LangGeneric {
				return nil
			}
			add(path)
			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("walk %s: %w", root, walkErr)
		}
	}

	sort.Strings(files)
	return files, nil
}

// ReadSamples loads file contents into code samples. Unreadable files come
// back as extraction outcomes so callers can report them alongside batch
// results instead of aborting the run.
func ReadSamples(paths []string, forced schema.Language) ([]schema.CodeSample, []schema.FileOutcome) {
	samples := make([]schema.CodeSample, 0, len(paths))
	failed := []schema.FileOutcome{}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			failed = append(failed, schema.FileOutcome{Err: &schema.FileError{
				Path: path,
				Kind: schema.ErrKindExtraction,
				Err:  err.Error(),
			}})
			continue
		}
		lang := forced
		if lang == "" {
			lang = schema.DetectLanguage(path)
		}
		samples = append(samples, schema.CodeSample{
			Path:     path,
			Content:  string(data),
			Language: lang,
		})
	}
	return samples, failed
}
