package modelstore

import (
	"errors"
	"fmt"

	"github.com/codiehq/codesight/internal/parquet"
)

// ExecuteModelExport performs the actual export of model store data to Parquet files.
func ExecuteModelExport(outputFile string) error {
	// Validate that output file is specified
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	// Get the model store
	store := Manager.GetModelStore()

	// Check if there's any data to export
	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get model store status: %w", err)
	}

	if status.TotalArtifacts == 0 {
		return errors.New("no model data found to export")
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Total model artifacts: %d\n", status.TotalArtifacts)
	fmt.Printf("Total training runs: %d\n", status.TotalRuns)

	// Retrieve all model artifacts
	artifacts, err := store.GetAllArtifacts()
	if err != nil {
		return fmt.Errorf("failed to retrieve model artifacts: %w", err)
	}

	// Retrieve all training runs
	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve training runs: %w", err)
	}

	// Convert to Parquet format
	parquetArtifacts := parquet.ConvertArtifactRecords(artifacts)
	parquetRuns := parquet.ConvertRunRecords(runs)

	// Write model artifacts to Parquet
	artifactsFile := outputFile + ".model_artifacts.parquet"
	if err := parquet.WriteArtifactsParquet(parquetArtifacts, artifactsFile); err != nil {
		return fmt.Errorf("failed to write model artifacts: %w", err)
	}
	fmt.Printf("Exported %d model artifacts to: %s\n", len(parquetArtifacts), artifactsFile)

	// Write training runs to Parquet
	runsFile := outputFile + ".training_runs.parquet"
	if err := parquet.WriteRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write training runs: %w", err)
	}
	fmt.Printf("Exported %d training runs to: %s\n", len(parquetRuns), runsFile)

	fmt.Println("\nExport complete! The Parquet files can be used with:")
	fmt.Println("  - Apache Spark")
	fmt.Println("  - Apache Arrow")
	fmt.Println("  - Pandas (via pyarrow)")
	fmt.Println("  - DuckDB")
	fmt.Println("  - Any other Parquet-compatible tool")

	return nil
}
