// Package main provides a performance benchmarking tool for the codesight CLI.
// It measures analysis times across generated source trees of different sizes,
// running each phase multiple times, treating the first run against the trained
// store as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - codesight binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Scratch directory for generated trees and the model store
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-models average, cold run and average of warm runs).
type BenchmarkResult struct {
	Tree         string
	Command      string
	NoModelsTime string
	ColdTime     string
	WarmTime     string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir      string
	Timeout      time.Duration
	Workers      int
	NoModelsRuns int
	TrainedRuns  int
	TreeSizes    []string
	TreeFiles    map[string]int
	CorpusSizes  map[string]int
}

func main() {
	// Parse command line arguments
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}
	workDir := os.Args[1]

	config := BenchmarkConfig{
		WorkDir:      workDir,
		Timeout:      5 * time.Minute,
		Workers:      8,
		NoModelsRuns: 3,
		TrainedRuns:  4,
		TreeSizes:    []string{"small", "medium", "large"},
		TreeFiles: map[string]int{
			"small":  100,
			"medium": 500,
			"large":  2000,
		},
		CorpusSizes: map[string]int{
			"small":  64,
			"medium": 256,
			"large":  1024,
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	// Keep the model store isolated from the user's real home directory.
	home := filepath.Join(config.WorkDir, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		fmt.Printf("Failed to create scratch home: %v\n", err)
		os.Exit(1)
	}
	_ = os.Setenv("HOME", home)

	// Clear any previous store and train one generation for the warm phases.
	fmt.Printf("Clearing model store...\n")
	clearCmd := exec.Command("codesight", "models", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear store: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Model store cleared successfully\n")
	}

	corpusPath := filepath.Join(config.WorkDir, "train_corpus.json")
	if err := generateCorpus(corpusPath, 64); err != nil {
		fmt.Printf("Failed to generate training corpus: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Training models for the trained phases...\n")
	trainCmd := exec.Command("codesight", "train", "--corpus", corpusPath)
	if output, err := trainCmd.CombinedOutput(); err != nil {
		fmt.Printf("Training failed: %v\nOutput: %s\n", err, string(output))
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the codesight binary and work directory are usable
func checkPrerequisites(config BenchmarkConfig) error {
	// Check if codesight is available
	if _, err := exec.LookPath("codesight"); err != nil {
		return fmt.Errorf("codesight binary not found in PATH")
	}

	if err := os.MkdirAll(config.WorkDir, 0o755); err != nil {
		return fmt.Errorf("cannot create work directory %s: %w", config.WorkDir, err)
	}

	return nil
}

// runBenchmarks executes all benchmark tests across generated source trees
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d tree sizes, %v timeout, %d workers, no-models: %d runs, trained: %d runs\n",
		len(config.TreeSizes), config.Timeout, config.Workers, config.NoModelsRuns, config.TrainedRuns)

	for _, tree := range config.TreeSizes {
		fmt.Printf("Benchmarking %s tree\n", tree)

		treePath := filepath.Join(config.WorkDir, "tree_"+tree)
		if err := generateTree(treePath, config.TreeFiles[tree]); err != nil {
			fmt.Printf("Failed to generate %s tree: %v\n", tree, err)
			continue
		}

		// Per-file analysis
		result := runBenchmarkSuite(config, tree, treePath, "analyze", "per-file analysis")
		results = append(results, result)

		// Project report
		result = runBenchmarkSuite(config, tree, treePath, "project", "project report")
		results = append(results, result)
	}

	// Training scales with corpus size rather than tree size.
	for _, size := range config.TreeSizes {
		examples := config.CorpusSizes[size]
		fmt.Printf("Benchmarking training on %d examples\n", examples)

		corpusPath := filepath.Join(config.WorkDir, fmt.Sprintf("corpus_%s.json", size))
		if err := generateCorpus(corpusPath, examples); err != nil {
			fmt.Printf("Failed to generate %s corpus: %v\n", size, err)
			continue
		}
		results = append(results, runTrainBenchmark(config, size, corpusPath))
	}

	return results
}

// runBenchmarkSuite runs both no-models and trained benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, tree, treePath, command, description string) BenchmarkResult {
	fmt.Printf("Running %s on %s tree\n", description, tree)

	// Helper to run a benchmark phase
	runPhase := func(storeBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, treePath, command, storeBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avg := sum / float64(len(times))
			avgTime = fmt.Sprintf("%.3fs", avg)
		}
		return cold, avgTime
	}

	// Phase 1: No-models runs
	_, noModelsAvg := runPhase("none", config.NoModelsRuns, "No-models")

	// Phase 2: Trained runs
	coldTime, warmAvg := runPhase("sqlite", config.TrainedRuns, "Trained")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-models average: %s, Cold time: %s, Warm average: %s\n", noModelsAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Tree:         tree,
		Command:      command,
		NoModelsTime: noModelsAvg,
		ColdTime:     coldTimeStr,
		WarmTime:     warmAvg,
	}
}

// runBenchmark executes a codesight command multiple times with the specified store backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, treePath, command, storeBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	// Prepare command arguments
	args := []string{command, ".",
		"--store-backend", storeBackend,
		"--workers", strconv.Itoa(config.Workers)}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("codesight", args...)
		cmd.Dir = treePath

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// runTrainBenchmark times full training runs over one corpus without persistence.
func runTrainBenchmark(config BenchmarkConfig, size, corpusPath string) BenchmarkResult {
	var times []float64
	for run := 1; run <= config.NoModelsRuns; run++ {
		start := time.Now()

		cmd := exec.Command("codesight", "train",
			"--corpus", corpusPath,
			"--store-backend", "none",
			"--workers", strconv.Itoa(config.Workers))
		cmd.Dir = config.WorkDir

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && strings.Contains(string(output), "Training finished in") {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			// Timeout - don't add to times
		}
	}

	avg := "TIMEOUT"
	if len(times) > 0 {
		var sum float64
		for _, t := range times {
			sum += t
		}
		avg = fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}
	fmt.Printf("  Training average: %s\n", avg)

	return BenchmarkResult{
		Tree:         size,
		Command:      "train",
		NoModelsTime: avg,
		ColdTime:     "-",
		WarmTime:     "-",
	}
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	outputStr := string(output)

	var completionPhrase string
	if command == "project" {
		completionPhrase = "Report completed in"
	} else {
		completionPhrase = "Analysis completed in"
	}

	return strings.Contains(outputStr, completionPhrase) &&
		strings.Contains(outputStr, "workers")
}

// generateTree writes a synthetic Python tree with count files spread over
// subpackages. Every tenth file carries injection and deserialization
// markers so the trained phases score a mix of risk levels.
func generateTree(dir string, count int) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		sub := filepath.Join(dir, fmt.Sprintf("pkg_%02d", i%20))
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return err
		}

		var content string
		if i%10 == 0 {
			content = fmt.Sprintf(`import os
import pickle

token = "secret%d"

def handle(payload, cmd):
    data = pickle.loads(payload)
    os.system(cmd)
    return eval(data)
`, i)
		} else {
			content = fmt.Sprintf(`def compute_%d(values):
    total = 0
    for v in values:
        if v > %d:
            total += v
    return total
`, i, i%7)
		}

		path := filepath.Join(sub, fmt.Sprintf("mod_%04d.py", i))
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// generateCorpus writes a balanced labeled JSON corpus with count examples.
func generateCorpus(path string, count int) error {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < count; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		if i%2 == 0 {
			sb.WriteString(fmt.Sprintf(`{"path":"bad_%d.py","language":"python","vulnerable":true,`+
				`"content":"import os\nimport pickle\n\npassword = \"hunter%d\"\n\ndef run(payload, cmd):\n    data = pickle.loads(payload)\n    result = eval(data)\n    os.system(cmd)\n    exec(result)\n    return result\n"}`, i, i))
		} else {
			sb.WriteString(fmt.Sprintf(`{"path":"ok_%d.py","language":"python","vulnerable":false,"quality":85,`+
				`"content":"def add_%d(a, b):\n    return a + b\n"}`, i, i))
		}
	}
	sb.WriteString("]")
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/codesight_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	if err := writer.Write([]string{"tree", "cmd", "no_models_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	// Write results
	for _, result := range results {
		if err := writer.Write([]string{result.Tree, result.Command, result.NoModelsTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "analyze", "Per-file Analysis:")
	printCommandSummary(results, "project", "Project Report:")
	printCommandSummary(results, "train", "Training:")

	fmt.Printf("Benchmark script completed successfully\n")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-12s: No-models: %s, Cold: %s, Warm: %s\n", result.Tree, result.NoModelsTime, result.ColdTime, result.WarmTime)
		}
	}
}
