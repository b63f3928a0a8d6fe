package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/codiehq/codesight/core/feature"
	"github.com/codiehq/codesight/internal/contract"
	"github.com/codiehq/codesight/internal/outwriter"
	"github.com/codiehq/codesight/schema"
)

// NewServiceFromManager builds the engine service on an initialized store
// and restores the newest persisted generation into the registry.
func NewServiceFromManager(cfg *contract.Config, mgr contract.StoreManager) (*Service, error) {
	svc := NewService(cfg, mgr.GetModelStore(), nil, nil)
	if err := svc.LoadActiveGeneration(); err != nil {
		return nil, err
	}
	return svc, nil
}

// progressf prints a run progress line. Text mode only, so JSON, CSV and
// Parquet stdout stays machine-parseable.
func progressf(cfg *contract.Config, emoji, format string, args ...any) {
	if cfg.Output != schema.TextOut {
		return
	}
	if cfg.UseEmojis {
		format = emoji + " " + format
	}
	fmt.Printf(format+"\n", args...)
}

// ExecuteAnalyze runs the per-file analysis over the configured paths and
// prints one row per outcome. Unreadable files are reported as failed
// outcomes after the analyzed ones instead of aborting the run.
// It serves as the main entry point for the 'analyze' command.
func ExecuteAnalyze(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()

	svc, err := NewServiceFromManager(cfg, mgr)
	if err != nil {
		return err
	}

	paths, err := CollectPaths(cfg)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no source files found under %v", cfg.Paths)
	}
	samples, failed := ReadSamples(paths, cfg.Language)

	progressf(cfg, "🔍", "Analyzing %d files with %d workers...", len(samples), cfg.Workers)

	outcomes := svc.AnalyzeBatch(ctx, samples)
	outcomes = append(outcomes, failed...)

	return outwriter.PrintInsightResults(outcomes, cfg, time.Since(start))
}

// ExecuteProject runs the project-level analysis over the configured paths
// and prints the aggregated report.
// It serves as the main entry point for the 'project' command.
func ExecuteProject(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()

	svc, err := NewServiceFromManager(cfg, mgr)
	if err != nil {
		return err
	}

	paths, err := CollectPaths(cfg)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no source files found under %v", cfg.Paths)
	}
	samples, failed := ReadSamples(paths, cfg.Language)

	progressf(cfg, "🔍", "Scanning %d files for project hotspots...", len(samples))
	if len(failed) > 0 {
		progressf(cfg, "⚠️", "Skipped %d unreadable files", len(failed))
	}

	report, err := svc.AnalyzeProject(ctx, samples)
	if err != nil {
		return err
	}

	return outwriter.PrintProjectReport(*report, cfg, time.Since(start))
}

// ExecuteTrain loads the training corpus, fits a candidate generation and
// prints the resulting model records.
// It serves as the main entry point for the 'train' command.
func ExecuteTrain(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()

	if cfg.CorpusPath == "" {
		return errors.New("--corpus is required for train command")
	}

	svc, err := NewServiceFromManager(cfg, mgr)
	if err != nil {
		return err
	}

	examples, err := LoadCorpus(cfg.CorpusPath)
	if err != nil {
		return err
	}

	progressf(cfg, "🧠", "Training %d models on %d examples...", len(schema.AllModelNames), len(examples))

	records, err := svc.TrainModels(ctx, examples)
	if err != nil {
		return err
	}

	ordered := make([]schema.ModelRecord, 0, len(records))
	promoted := 0
	for _, name := range schema.AllModelNames {
		rec, ok := records[name]
		if !ok {
			continue
		}
		ordered = append(ordered, rec)
		if rec.Status == schema.StatusActive {
			promoted++
		}
	}

	if err := outwriter.PrintModelRecords(ordered, cfg); err != nil {
		return err
	}
	progressf(cfg, "✅", "Training finished in %v: %d/%d models promoted", time.Since(start), promoted, len(ordered))
	return nil
}

// ExecuteFeatures prints the feature schema layout, or the extracted
// vector when the configured path is a single file. No store or model
// generation is involved either way.
// It serves as the main entry point for the 'features' command.
func ExecuteFeatures(ctx context.Context, cfg *contract.Config) error {
	desc := feature.Describe()

	if len(cfg.Paths) > 0 {
		target := cfg.Paths[0]
		info, err := os.Stat(target)
		if err != nil {
			return fmt.Errorf("stat %s: %w", target, err)
		}
		if !info.IsDir() {
			return dumpFeatureVector(ctx, cfg, desc, target)
		}
	}
	return outwriter.PrintFeatureDefinitions(desc, cfg)
}

// dumpFeatureVector extracts and prints the vector for one file.
func dumpFeatureVector(ctx context.Context, cfg *contract.Config, desc schema.FeatureSchemaDescription, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	sample := schema.CodeSample{Path: path, Content: string(data), Language: cfg.Language}
	if sample.Language == "" {
		sample.Language = schema.DetectLanguage(path)
	}

	extractor := feature.NewExtractor(cfg.MaxContentBytes, nil)
	vec, meta := extractor.Extract(ctx, sample)

	ext := schema.FeatureExtraction{
		Path:     path,
		Language: sample.Language,
		Vector:   vec,
		Meta:     meta,
	}
	return outwriter.PrintFeatureVector(desc, ext, cfg)
}
